package headless

import (
	"context"
	"errors"
	"time"

	"github.com/rpineda26/facultyscraper/internal/scraper"
)

// Noop is a RendererFactory for builds and runs where headless browsing is
// unavailable. Navigation always fails, so every profile ends up recorded as
// incomplete instead of blocking the pipeline.
type Noop struct{}

// NewNoop creates a Noop factory.
func NewNoop() *Noop {
	return &Noop{}
}

// NewRenderer returns a stub session.
func (Noop) NewRenderer(_ context.Context) (scraper.Renderer, error) {
	return noopSession{}, nil
}

type noopSession struct{}

func (noopSession) Navigate(_ context.Context, _ string) error {
	return errors.New("headless rendering not available")
}

func (noopSession) Settle(_ context.Context, _ time.Duration) error { return nil }

func (noopSession) VisibleText(_ context.Context) (string, error) { return "", nil }

func (noopSession) Close() error { return nil }
