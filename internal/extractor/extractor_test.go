package extractor

import (
	"errors"
	"strings"
	"testing"

	"github.com/mikey/llm-phish-detector/internal/core"
	"github.com/mikey/llm-phish-detector/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const gmailURL = "https://mail.google.com/mail/u/0/#inbox/FMfcgzQXJ"

const messagePage = `<html><body>
<div role="main">
  <h2 data-thread-perm-id="thread-f:1790">  Urgent: verify your account  </h2>
  <span class="gD" email="alerts@paypa1.example" name="PayPal">PayPal</span>
  <div class="a3s aiL">
    <p>Dear customer,</p>
    <p>Click <a href="https://paypa1.example/login">https://paypa1.example/login</a> now.</p>
    <p>Or visit http://Bit.ly/abc</p>
  </div>
</div>
</body></html>`

func newTestExtractor() *GmailExtractor {
	logger := zap.NewNop()
	return NewGmailExtractor(Selectors{}, utils.NewTextProcessor(logger), logger)
}

func TestIsGmail(t *testing.T) {
	assert.True(t, IsGmail(gmailURL))
	assert.True(t, IsGmail("https://mail.google.com/"))
	assert.False(t, IsGmail("https://outlook.live.com/mail/0/"))
	assert.False(t, IsGmail(""))
}

func TestGmailExtractor_Extract(t *testing.T) {
	t.Run("full message view", func(t *testing.T) {
		record, err := newTestExtractor().Extract(&core.Document{URL: gmailURL, HTML: messagePage})
		require.NoError(t, err)

		assert.Equal(t, "Urgent: verify your account", record.Subject)
		assert.Equal(t, "PayPal", record.Sender.Name)
		assert.Equal(t, "alerts@paypa1.example", record.Sender.Email)
		assert.Equal(t, "paypa1.example", record.Sender.Domain)
		assert.Contains(t, record.Body, "Dear customer,")
		assert.Equal(t, []string{"paypa1.example", "bit.ly"}, record.URLs)
	})

	t.Run("sender without address", func(t *testing.T) {
		page := `<h2 data-thread-perm-id="x">Hello</h2><span class="gD" name="Bob">Bob</span>`
		record, err := newTestExtractor().Extract(&core.Document{URL: gmailURL, HTML: page})
		require.NoError(t, err)

		assert.Equal(t, "Bob", record.Sender.Name)
		assert.Empty(t, record.Sender.Email)
		assert.Empty(t, record.Sender.Domain)
		assert.Empty(t, record.Body)
		assert.NotNil(t, record.URLs)
		assert.Empty(t, record.URLs)
	})

	t.Run("inbox without open message", func(t *testing.T) {
		page := `<html><body><div class="inbox"><span>3 unread</span></div></body></html>`
		_, err := newTestExtractor().Extract(&core.Document{URL: gmailURL, HTML: page})
		assert.True(t, errors.Is(err, core.ErrExtractionFailed))
	})

	t.Run("nil document", func(t *testing.T) {
		_, err := newTestExtractor().Extract(nil)
		assert.True(t, errors.Is(err, core.ErrExtractionFailed))
	})

	t.Run("custom selectors", func(t *testing.T) {
		logger := zap.NewNop()
		ext := NewGmailExtractor(Selectors{Subject: "h1.subject"}, utils.NewTextProcessor(logger), logger)

		record, err := ext.Extract(&core.Document{URL: gmailURL, HTML: `<h1 class="subject">Quarterly report</h1>`})
		require.NoError(t, err)
		assert.Equal(t, "Quarterly report", record.Subject)
	})
}

func TestExtractURLs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "hostnames in order",
			text: "Go to https://Example.COM/path?q=1 then http://sub.test.org:8080/x",
			want: []string{"example.com", "sub.test.org"},
		},
		{
			name: "duplicates kept",
			text: "https://a.example/1 https://a.example/2",
			want: []string{"a.example", "a.example"},
		},
		{
			name: "unparseable match is kept verbatim",
			text: "broken http://[::1 link",
			want: []string{"http://[::1"},
		},
		{
			name: "match without host is kept verbatim",
			text: "odd http:///only-path here",
			want: []string{"http:///only-path"},
		},
		{
			name: "no urls",
			text: "nothing to see here, www.example.com is not matched",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractURLs(tt.text))
		})
	}
}

func TestGmailExtractor_FromMIME(t *testing.T) {
	t.Run("plain text message", func(t *testing.T) {
		raw := strings.Join([]string{
			`From: "PayPal Service" <service@paypa1.example>`,
			"To: victim@example.org",
			"Subject: Account locked",
			"MIME-Version: 1.0",
			"Content-Type: text/plain; charset=utf-8",
			"",
			"Your account is locked. Visit https://paypa1.example/unlock today.",
			"",
		}, "\r\n")

		record, err := newTestExtractor().FromMIME(strings.NewReader(raw))
		require.NoError(t, err)

		assert.Equal(t, "Account locked", record.Subject)
		assert.Equal(t, "PayPal Service", record.Sender.Name)
		assert.Equal(t, "service@paypa1.example", record.Sender.Email)
		assert.Equal(t, "paypa1.example", record.Sender.Domain)
		assert.Equal(t, []string{"paypa1.example"}, record.URLs)
	})

	t.Run("html only message", func(t *testing.T) {
		raw := strings.Join([]string{
			"From: billing@vendor.example",
			"Subject: Invoice",
			"MIME-Version: 1.0",
			"Content-Type: text/html; charset=utf-8",
			"",
			"<html><body><p>Hello <b>there</b>, your invoice is attached.</p></body></html>",
			"",
		}, "\r\n")

		record, err := newTestExtractor().FromMIME(strings.NewReader(raw))
		require.NoError(t, err)

		assert.Equal(t, "billing@vendor.example", record.Sender.Email)
		assert.Contains(t, record.Body, "your invoice is attached")
		assert.NotContains(t, record.Body, "<p>")
	})

	t.Run("empty message", func(t *testing.T) {
		raw := "From: someone@example.org\r\n\r\n"
		_, err := newTestExtractor().FromMIME(strings.NewReader(raw))
		assert.True(t, errors.Is(err, core.ErrExtractionFailed))
	})
}
