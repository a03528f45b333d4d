package frontend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/jhillyerd/enmime"
	"github.com/mikey/llm-phish-detector/internal/config"
	"github.com/mikey/llm-phish-detector/internal/core"
	"github.com/mikey/llm-phish-detector/internal/messaging"
	"go.uber.org/zap"
)

// EnvelopeExtractor turns a parsed MIME message into an EmailRecord
type EnvelopeExtractor interface {
	FromEnvelope(env *enmime.Envelope) (*core.EmailRecord, error)
}

// Values of the status header
const (
	StatusPhishing = "phishing"
	StatusClean    = "clean"
	StatusError    = "error"
)

// SMTPIntake is a content filter: it receives mail over SMTP, stamps the verdict
// into X-Phishing headers and relays the message to the next hop.
type SMTPIntake struct {
	analyzer  messaging.Analyzer
	extractor EnvelopeExtractor
	logger    *zap.Logger
	cfg       config.SMTPConfig

	server   *smtp.Server
	listener net.Listener
}

// NewSMTPIntake creates a new SMTP intake
func NewSMTPIntake(analyzer messaging.Analyzer, ext EnvelopeExtractor, logger *zap.Logger, cfg config.SMTPConfig) *SMTPIntake {
	return &SMTPIntake{
		analyzer:  analyzer,
		extractor: ext,
		logger:    logger,
		cfg:       cfg,
	}
}

// Start starts accepting mail in the background
func (f *SMTPIntake) Start() error {
	ln, err := net.Listen("tcp", f.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", f.cfg.ListenAddress, err)
	}
	f.listener = ln

	f.server = smtp.NewServer(&smtpBackend{intake: f})
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024
	f.server.MaxRecipients = 50

	f.logger.Info("SMTP intake starting", zap.String("address", ln.Addr().String()))

	go func() {
		if err := f.server.Serve(ln); err != nil && !errors.Is(err, smtp.ErrServerClosed) {
			f.logger.Error("SMTP server error", zap.Error(err))
		}
	}()
	return nil
}

// Addr returns the bound address once the intake has started
func (f *SMTPIntake) Addr() string {
	if f.listener == nil {
		return f.cfg.ListenAddress
	}
	return f.listener.Addr().String()
}

// Stop stops the SMTP intake
func (f *SMTPIntake) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// Inspect analyses a raw message and returns the verdict with the stamped message
func (f *SMTPIntake) Inspect(ctx context.Context, raw []byte) (*core.AnalysisResult, []byte) {
	var result *core.AnalysisResult

	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		f.logger.Warn("Failed to parse message", zap.Error(err))
		result = core.FailureResult(fmt.Errorf("%w: %v", core.ErrExtractionFailed, err))
	} else if record, err := f.extractor.FromEnvelope(env); err != nil {
		result = core.FailureResult(err)
	} else {
		if f.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, f.cfg.Timeout)
			defer cancel()
		}
		result = f.analyzer.Analyze(ctx, record)
	}

	return result, f.stamp(result, raw)
}

// shouldReject reports whether the message is refused instead of relayed
func (f *SMTPIntake) shouldReject(result *core.AnalysisResult) bool {
	return f.cfg.BlockPhishing &&
		!result.Failed() &&
		result.IsPhishing &&
		result.RiskLevel.Normalized() == core.RiskHigh
}

// stamp prepends the verdict headers to the untouched original message
func (f *SMTPIntake) stamp(result *core.AnalysisResult, raw []byte) []byte {
	var out bytes.Buffer

	fmt.Fprintf(&out, "%s: %s\r\n", f.cfg.StatusHeader, statusOf(result))
	fmt.Fprintf(&out, "%s: %s\r\n", f.cfg.RiskHeader, result.RiskLevel.Normalized())
	fmt.Fprintf(&out, "%s: %s\r\n", f.cfg.ScoreHeader, strconv.FormatFloat(result.ConfidenceScore, 'f', -1, 64))
	if len(result.Reasons) > 0 {
		fmt.Fprintf(&out, "%s: %s\r\n", f.cfg.ReasonHeader, headerValue(strings.Join(result.Reasons, "; ")))
	}

	out.Write(raw)
	return out.Bytes()
}

func statusOf(result *core.AnalysisResult) string {
	switch {
	case result.Failed():
		return StatusError
	case result.IsPhishing:
		return StatusPhishing
	default:
		return StatusClean
	}
}

// headerValue folds a free text value onto a single header line
func headerValue(s string) string {
	s = strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
	const maxLen = 900
	if len(s) > maxLen {
		s = strings.ToValidUTF8(s[:maxLen], "") + "..."
	}
	return s
}

// relay hands the stamped message to the next hop
func (f *SMTPIntake) relay(sender string, recipients []string, data []byte) error {
	addr := net.JoinHostPort(f.cfg.RelayAddress, strconv.Itoa(f.cfg.RelayPort))

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	accepted := 0
	for _, rcpt := range recipients {
		if err := c.Rcpt(rcpt, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", rcpt),
				zap.Error(err))
			continue
		}
		accepted++
	}
	if accepted == 0 {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send message data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}
	return nil
}

type smtpBackend struct {
	intake *SMTPIntake
}

func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{intake: b.intake}, nil
}

type smtpSession struct {
	intake     *SMTPIntake
	sender     string
	recipients []string
}

func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

func (s *smtpSession) Logout() error {
	return nil
}

func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

func (s *smtpSession) Data(r io.Reader) error {
	f := s.intake

	raw, err := io.ReadAll(r)
	if err != nil {
		f.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	result, stamped := f.Inspect(context.Background(), raw)

	if f.shouldReject(result) {
		f.logger.Info("Rejecting phishing email",
			zap.String("from", s.sender),
			zap.Float64("confidence", result.ConfidenceScore),
			zap.Strings("reasons", result.Reasons))
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 7, 1},
			Message:      "Rejected as phishing",
		}
	}

	if f.cfg.RelayEnabled {
		if err := f.relay(s.sender, s.recipients, stamped); err != nil {
			f.logger.Error("Failed to relay message",
				zap.Error(err),
				zap.String("from", s.sender))
			return err
		}
	} else {
		f.logger.Warn("Relay disabled, message accepted without delivery")
	}

	f.logger.Info("Processed email",
		zap.String("from", s.sender),
		zap.String("status", statusOf(result)),
		zap.String("risk_level", string(result.RiskLevel)),
		zap.Float64("confidence", result.ConfidenceScore))
	return nil
}
