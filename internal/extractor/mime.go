package extractor

import (
	"fmt"
	"io"
	"strings"

	"github.com/jaytaylor/html2text"
	"github.com/jhillyerd/enmime"
	"github.com/mikey/llm-phish-detector/internal/core"
)

// FromMIME reads a raw RFC 5322 message and builds an EmailRecord from it
func (e *GmailExtractor) FromMIME(r io.Reader) (*core.EmailRecord, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrExtractionFailed, err)
	}
	return e.FromEnvelope(env)
}

// FromEnvelope builds an EmailRecord from a parsed MIME envelope
func (e *GmailExtractor) FromEnvelope(env *enmime.Envelope) (*core.EmailRecord, error) {
	record := &core.EmailRecord{
		Subject: strings.TrimSpace(env.GetHeader("Subject")),
		URLs:    []string{},
	}

	if from, err := env.AddressList("From"); err == nil && len(from) > 0 {
		record.Sender.Name = from[0].Name
		record.Sender.Email = from[0].Address
	} else if raw := strings.TrimSpace(env.GetHeader("From")); strings.Contains(raw, "@") {
		record.Sender.Email = strings.Trim(raw, "<>")
	}
	record.Sender.Domain = core.DomainOf(record.Sender.Email)

	body := env.Text
	if strings.TrimSpace(body) == "" && env.HTML != "" {
		if text, err := html2text.FromString(env.HTML, textOptions); err == nil {
			body = text
		}
	}
	record.Body = e.textProcessor.Normalize(strings.TrimSpace(body))
	if record.Body != "" {
		record.URLs = ExtractURLs(record.Body)
	}

	if !record.Usable() {
		e.logger.Warn("MIME message has no subject or body")
		return nil, core.ErrExtractionFailed
	}
	return record, nil
}
