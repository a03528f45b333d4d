package extractor

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jaytaylor/html2text"
	"github.com/mikey/llm-phish-detector/internal/core"
	"github.com/mikey/llm-phish-detector/internal/utils"
	"go.uber.org/zap"
)

const gmailHost = "mail.google.com"

var urlExpr = regexp.MustCompile(`https?://\S+`)

var textOptions = html2text.Options{OmitLinks: true, TextOnly: true}

// Selectors locate the parts of a Gmail message view
type Selectors struct {
	Subject string
	Sender  string
	Body    string
}

// DefaultSelectors match the Gmail web client message view
var DefaultSelectors = Selectors{
	Subject: "h2[data-thread-perm-id]",
	Sender:  ".gD",
	Body:    ".a3s.aiL",
}

// GmailExtractor reads an EmailRecord out of a Gmail message page
type GmailExtractor struct {
	selectors     Selectors
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
}

// NewGmailExtractor creates an extractor. Empty selectors fall back to DefaultSelectors.
func NewGmailExtractor(selectors Selectors, textProcessor *utils.TextProcessor, logger *zap.Logger) *GmailExtractor {
	if selectors.Subject == "" {
		selectors.Subject = DefaultSelectors.Subject
	}
	if selectors.Sender == "" {
		selectors.Sender = DefaultSelectors.Sender
	}
	if selectors.Body == "" {
		selectors.Body = DefaultSelectors.Body
	}
	return &GmailExtractor{
		selectors:     selectors,
		textProcessor: textProcessor,
		logger:        logger,
	}
}

// IsGmail reports whether pageURL belongs to the Gmail web client
func IsGmail(pageURL string) bool {
	return strings.Contains(pageURL, gmailHost)
}

// Extract reads subject, sender and body from the document. It returns
// core.ErrExtractionFailed when the page holds no usable email or cannot be read.
func (e *GmailExtractor) Extract(doc *core.Document) (record *core.EmailRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Error extracting email data", zap.Any("panic", r))
			record, err = nil, core.ErrExtractionFailed
		}
	}()

	if doc == nil {
		return nil, core.ErrExtractionFailed
	}

	page, err := goquery.NewDocumentFromReader(strings.NewReader(doc.HTML))
	if err != nil {
		e.logger.Error("Error parsing document", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", core.ErrExtractionFailed, err)
	}

	record = &core.EmailRecord{URLs: []string{}}

	if subject := page.Find(e.selectors.Subject).First(); subject.Length() > 0 {
		record.Subject = strings.TrimSpace(subject.Text())
	}

	if sender := page.Find(e.selectors.Sender).First(); sender.Length() > 0 {
		record.Sender.Name = sender.AttrOr("name", "")
		record.Sender.Email = sender.AttrOr("email", "")
		record.Sender.Domain = core.DomainOf(record.Sender.Email)
	}

	if body := page.Find(e.selectors.Body).First(); body.Length() > 0 {
		record.Body = e.textProcessor.Normalize(e.renderedText(body))
		record.URLs = ExtractURLs(record.Body)
	}

	if !record.Usable() {
		e.logger.Warn("Could not find email content", zap.String("url", doc.URL))
		return nil, core.ErrExtractionFailed
	}

	e.logger.Debug("Extracted email",
		zap.String("sender_domain", record.Sender.Domain),
		zap.Int("body_size", len(record.Body)),
		zap.Int("url_count", len(record.URLs)))

	return record, nil
}

// renderedText approximates innerText: block elements become line breaks
func (e *GmailExtractor) renderedText(sel *goquery.Selection) string {
	text, err := html2text.FromHTMLNode(sel.Get(0), textOptions)
	if err != nil {
		e.logger.Debug("Falling back to raw text content", zap.Error(err))
		return sel.Text()
	}
	return text
}

// ExtractURLs returns the hostname of every URL in text, in order of appearance.
// Matches that do not parse to a host are returned verbatim.
func ExtractURLs(text string) []string {
	matches := urlExpr.FindAllString(text, -1)
	hosts := make([]string, 0, len(matches))
	for _, m := range matches {
		hosts = append(hosts, hostnameOf(m))
	}
	return hosts
}

func hostnameOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return strings.ToLower(u.Hostname())
}
