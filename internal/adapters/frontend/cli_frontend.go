package frontend

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mikey/llm-phish-detector/internal/core"
	"github.com/mikey/llm-phish-detector/internal/messaging"
	"github.com/mikey/llm-phish-detector/internal/render"
	"go.uber.org/zap"
)

// MIMEExtractor builds an EmailRecord from a raw message
type MIMEExtractor interface {
	FromMIME(r io.Reader) (*core.EmailRecord, error)
}

// CLIFrontend runs one analysis from the command line and prints the report
type CLIFrontend struct {
	popup     *messaging.Popup
	extractor MIMEExtractor
	analyzer  messaging.Analyzer
	logger    *zap.Logger
	out       io.Writer
	format    render.Format
	verbose   bool
}

// NewCLIFrontend creates a new CLI frontend writing to out
func NewCLIFrontend(
	popup *messaging.Popup,
	ext MIMEExtractor,
	analyzer messaging.Analyzer,
	logger *zap.Logger,
	out io.Writer,
	format render.Format,
	verbose bool,
) *CLIFrontend {
	return &CLIFrontend{
		popup:     popup,
		extractor: ext,
		analyzer:  analyzer,
		logger:    logger,
		out:       out,
		format:    format,
		verbose:   verbose,
	}
}

// AnalyzePage sends a popup request for the page held by the agent's source, or for
// doc when it is not nil.
func (f *CLIFrontend) AnalyzePage(ctx context.Context, doc *core.Document) (*core.AnalysisResult, error) {
	start := time.Now()
	resp := f.popup.AnalyzeCurrentEmail(ctx, doc)

	result := resp.Result
	if result == nil {
		result = core.Normalize(core.Failure{Kind: core.KindExtractionFailed, Message: resp.Error})
	}

	f.logger.Debug("Page analysis finished", zap.Duration("elapsed", time.Since(start)))
	return result, render.Write(f.out, f.format, result)
}

// AnalyzeMessage analyses a raw RFC 5322 message such as a saved .eml file
func (f *CLIFrontend) AnalyzeMessage(ctx context.Context, r io.Reader) (*core.AnalysisResult, error) {
	record, err := f.extractor.FromMIME(r)
	if err != nil {
		f.logger.Error("Failed to read message", zap.Error(err))
		result := core.FailureResult(err)
		return result, render.Write(f.out, f.format, result)
	}

	if f.verbose && f.format == render.FormatText {
		fmt.Fprintf(f.out, "\n=== Email Summary ===\n")
		fmt.Fprintf(f.out, "From: %s <%s>\n", record.Sender.Name, record.Sender.Email)
		fmt.Fprintf(f.out, "Subject: %s\n", record.Subject)
		fmt.Fprintf(f.out, "Body length: %d bytes\n", len(record.Body))
		fmt.Fprintf(f.out, "URLs found: %d\n", len(record.URLs))

		preview := []rune(record.Body)
		if len(preview) > 500 {
			preview = append(preview[:500], []rune("...")...)
		}
		fmt.Fprintf(f.out, "\nBody preview:\n%s\n", string(preview))
	}

	start := time.Now()
	result := f.analyzer.Analyze(ctx, record)
	f.logger.Debug("Message analysis finished", zap.Duration("elapsed", time.Since(start)))

	return result, render.Write(f.out, f.format, result)
}
