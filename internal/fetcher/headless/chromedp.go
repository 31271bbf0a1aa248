// Package headless provides rendering sessions backed by headless Chrome.
package headless

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/rpineda26/facultyscraper/internal/scraper"
)

// Config controls the behavior of rendering sessions.
type Config struct {
	UserAgent         string
	NavigationTimeout time.Duration
}

// Factory creates one browser tab per profile worker from a shared exec
// allocator, so all sessions run in a single Chrome process.
type Factory struct {
	cfg         Config
	allocator   context.Context
	allocCancel context.CancelFunc
}

// NewFactory starts the exec allocator.
func NewFactory(cfg Config) *Factory {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 45 * time.Second
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &Factory{
		cfg:         cfg,
		allocator:   allocCtx,
		allocCancel: allocCancel,
	}
}

// Close tears down the allocator and every tab created from it.
func (f *Factory) Close() {
	f.allocCancel()
}

// NewRenderer opens a tab and warms it up so browser launch failures surface
// at worker start instead of on the first navigation.
func (f *Factory) NewRenderer(ctx context.Context) (scraper.Renderer, error) {
	tabCtx, tabCancel := chromedp.NewContext(f.allocator)

	warmup := chromedp.Tasks{network.Enable()}
	if f.cfg.UserAgent != "" {
		warmup = append(warmup, emulation.SetUserAgentOverride(f.cfg.UserAgent))
	}
	if err := chromedp.Run(tabCtx, warmup); err != nil {
		tabCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}
	select {
	case <-ctx.Done():
		tabCancel()
		return nil, ctx.Err()
	default:
	}

	return &session{
		ctx:     tabCtx,
		cancel:  tabCancel,
		timeout: f.cfg.NavigationTimeout,
	}, nil
}

// session is a single stateful tab. It handles one navigation at a time and
// belongs to exactly one worker.
type session struct {
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
}

// Navigate loads rawURL and waits for the document body to be ready.
func (s *session) Navigate(ctx context.Context, rawURL string) error {
	taskCtx, cancelTask := context.WithTimeout(s.ctx, s.timeout)
	defer cancelTask()
	stop := forwardCancel(ctx, cancelTask)
	defer stop()

	actions := chromedp.Tasks{
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if err := chromedp.Run(taskCtx, actions); err != nil {
		return fmt.Errorf("navigate %s: %w", rawURL, err)
	}
	return nil
}

// Settle waits the fixed delay that gives dynamic content time to render.
func (s *session) Settle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// VisibleText returns the rendered page's full visible body text.
func (s *session) VisibleText(ctx context.Context) (string, error) {
	taskCtx, cancelTask := context.WithTimeout(s.ctx, s.timeout)
	defer cancelTask()
	stop := forwardCancel(ctx, cancelTask)
	defer stop()

	var text string
	if err := chromedp.Run(taskCtx, chromedp.Text("body", &text, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("extract visible text: %w", err)
	}
	return text, nil
}

// Close releases the tab.
func (s *session) Close() error {
	s.cancel()
	return nil
}

func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
