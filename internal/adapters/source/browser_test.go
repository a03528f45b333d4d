package source

import (
	"testing"

	"github.com/chromedp/cdproto/target"
	"github.com/stretchr/testify/assert"
)

func TestPickTab(t *testing.T) {
	targets := []*target.Info{
		{TargetID: "worker", Type: "service_worker", URL: "https://mail.google.com/sw.js"},
		{TargetID: "news", Type: "page", URL: "https://news.example/"},
		{TargetID: "mail", Type: "page", URL: "https://mail.google.com/mail/u/0/#inbox/1"},
		{TargetID: "mail2", Type: "page", URL: "https://mail.google.com/mail/u/1/"},
	}

	assert.Equal(t, target.ID("mail"), pickTab(targets, "mail.google.com").TargetID)
	assert.Equal(t, target.ID("news"), pickTab(targets, "").TargetID)
	assert.Nil(t, pickTab(targets, "outlook.live.com"))
	assert.Nil(t, pickTab(nil, ""))
}
