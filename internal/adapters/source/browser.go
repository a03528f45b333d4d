package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/mikey/llm-phish-detector/internal/core"
)

// ErrNoMatchingTab is returned when no open tab matches the configured filter
var ErrNoMatchingTab = errors.New("no matching browser tab found")

// BrowserSource reads the open mail tab of a running Chrome instance through
// its remote debugging endpoint.
type BrowserSource struct {
	debugURL string
	tabMatch string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewBrowserSource creates a source attached to the browser at debugURL.
// Chrome must be started with --remote-debugging-port.
func NewBrowserSource(debugURL, tabMatch string, timeout time.Duration, logger *zap.Logger) *BrowserSource {
	return &BrowserSource{
		debugURL: debugURL,
		tabMatch: tabMatch,
		timeout:  timeout,
		logger:   logger,
	}
}

// Current returns the URL and rendered markup of the first matching tab
func (s *BrowserSource) Current(ctx context.Context) (*core.Document, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	allocCtx, cancel := chromedp.NewRemoteAllocator(ctx, s.debugURL)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	targets, err := chromedp.Targets(browserCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to list browser tabs: %w", err)
	}

	tab := pickTab(targets, s.tabMatch)
	if tab == nil {
		return nil, ErrNoMatchingTab
	}

	s.logger.Debug("Attaching to browser tab",
		zap.String("target_id", string(tab.TargetID)),
		zap.String("url", tab.URL))

	tabCtx, cancel := chromedp.NewContext(browserCtx, chromedp.WithTargetID(tab.TargetID))
	defer cancel()

	var location, markup string
	if err := chromedp.Run(tabCtx,
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &markup, chromedp.ByQuery),
	); err != nil {
		return nil, fmt.Errorf("failed to read tab %s: %w", tab.TargetID, err)
	}

	return &core.Document{URL: location, HTML: markup}, nil
}

// pickTab returns the first page target whose URL contains match
func pickTab(targets []*target.Info, match string) *target.Info {
	for _, t := range targets {
		if t.Type != "page" {
			continue
		}
		if match == "" || strings.Contains(t.URL, match) {
			return t
		}
	}
	return nil
}
