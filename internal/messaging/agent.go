package messaging

import (
	"context"
	"errors"
	"sync"

	"github.com/mikey/llm-phish-detector/internal/core"
	"github.com/mikey/llm-phish-detector/internal/extractor"
	"go.uber.org/zap"
)

// ActionAnalyzeEmail asks the agent to analyze the email currently on screen
const ActionAnalyzeEmail = "analyzeEmail"

const (
	msgNotGmail         = "This tool only works on Gmail"
	msgExtractionFailed = "Could not extract email data. Make sure you have an email open."
)

// Request is sent from the popup to the page agent
type Request struct {
	Action string `json:"action"`
	// Document overrides the agent's document source when set
	Document *core.Document `json:"-"`
}

// Response is the single reply to a Request
type Response struct {
	Result *core.AnalysisResult `json:"result,omitempty"`
	Error  string               `json:"error,omitempty"`
}

// Analyzer runs the analysis of one email
type Analyzer interface {
	Analyze(ctx context.Context, email *core.EmailRecord) *core.AnalysisResult
}

type envelope struct {
	ctx   context.Context
	req   Request
	reply chan Response
}

// Agent is the page side task: it owns the document and answers popup requests
type Agent struct {
	source    core.DocumentSource
	extractor core.Extractor
	analyzer  Analyzer
	logger    *zap.Logger

	requests chan envelope
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewAgent creates a page agent. source may be nil when every request carries its own document.
func NewAgent(source core.DocumentSource, ext core.Extractor, analyzer Analyzer, logger *zap.Logger) *Agent {
	return &Agent{
		source:    source,
		extractor: ext,
		analyzer:  analyzer,
		logger:    logger,
		requests:  make(chan envelope),
		stopCh:    make(chan struct{}),
	}
}

// Start runs the agent loop until Stop is called or ctx is done
func (a *Agent) Start(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		for {
			select {
			case env := <-a.requests:
				a.wg.Add(1)
				go func() {
					defer a.wg.Done()
					a.serve(env)
				}()
			case <-ctx.Done():
				a.Stop()
				return
			case <-a.stopCh:
				return
			}
		}
	}()
}

// Stop ends the agent loop. Requests already accepted still get their reply.
func (a *Agent) Stop() {
	a.stopOnce.Do(func() {
		close(a.stopCh)
	})
}

// Wait blocks until the loop and every in-flight request have finished
func (a *Agent) Wait() {
	a.wg.Wait()
}

// Popup returns a client bound to this agent
func (a *Agent) Popup() *Popup {
	return &Popup{requests: a.requests, stopped: a.stopCh, logger: a.logger}
}

func (a *Agent) serve(env envelope) {
	resp, ok := a.handle(env.ctx, env.req)
	if !ok {
		close(env.reply)
		return
	}
	env.reply <- resp
}

// handle processes one request. ok is false when the request gets no reply.
func (a *Agent) handle(ctx context.Context, req Request) (resp Response, ok bool) {
	if req.Action != ActionAnalyzeEmail {
		a.logger.Debug("Ignoring unsupported action", zap.String("action", req.Action))
		return Response{}, false
	}
	a.logger.Info("Received analyzeEmail request")

	doc := req.Document
	if doc == nil {
		if a.source == nil {
			return Response{Error: "No document source is configured"}, true
		}
		var err error
		doc, err = a.source.Current(ctx)
		if err != nil {
			a.logger.Error("Failed to read current document", zap.Error(err))
			return Response{Error: "Could not read the current page: " + err.Error()}, true
		}
	}

	if !extractor.IsGmail(doc.URL) {
		return Response{Error: msgNotGmail}, true
	}

	email, err := a.extractor.Extract(doc)
	if err != nil {
		if !errors.Is(err, core.ErrExtractionFailed) {
			a.logger.Error("Unexpected extraction error", zap.Error(err))
		}
		return Response{Error: msgExtractionFailed}, true
	}

	result := a.analyzer.Analyze(ctx, email)
	a.logger.Info("Analysis complete, sending response")
	return Response{Result: result, Error: result.Error}, true
}
