package messaging

import (
	"context"
	"errors"

	"github.com/mikey/llm-phish-detector/internal/core"
	"go.uber.org/zap"
)

var (
	// ErrDisconnected is returned when the agent cannot be reached
	ErrDisconnected = errors.New("page agent is not reachable")
	// ErrNoResponse is returned when the agent dropped the request without answering
	ErrNoResponse = errors.New("no response from page agent")
)

const (
	msgDisconnected = "Error communicating with the page. Please make sure you have an email open and refresh the page."
	msgNoResponse   = "No response received from the page agent. Please refresh the page and try again."
)

// Popup is the UI side client of an Agent
type Popup struct {
	requests chan<- envelope
	stopped  <-chan struct{}
	logger   *zap.Logger
}

// Send delivers req to the agent and waits for its single reply
func (p *Popup) Send(ctx context.Context, req Request) (*Response, error) {
	reply := make(chan Response, 1)
	env := envelope{ctx: ctx, req: req, reply: reply}

	select {
	case p.requests <- env:
	case <-p.stopped:
		return nil, ErrDisconnected
	case <-ctx.Done():
		return nil, ErrDisconnected
	}

	select {
	case resp, ok := <-reply:
		if !ok {
			return nil, ErrNoResponse
		}
		return &resp, nil
	case <-ctx.Done():
		return nil, ErrDisconnected
	}
}

// AnalyzeCurrentEmail asks the agent for a verdict on the open email. doc may be nil
// to let the agent read its own document source. Transport problems are reported
// through Response.Error.
func (p *Popup) AnalyzeCurrentEmail(ctx context.Context, doc *core.Document) *Response {
	resp, err := p.Send(ctx, Request{Action: ActionAnalyzeEmail, Document: doc})
	switch {
	case errors.Is(err, ErrNoResponse):
		p.logger.Error("No response from page agent")
		return &Response{Error: msgNoResponse}
	case err != nil:
		p.logger.Error("Runtime error", zap.Error(err))
		return &Response{Error: msgDisconnected}
	}
	return resp
}
