package scraper

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Fetcher retrieves a URL with a plain document fetch and returns the parsed
// markup.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*goquery.Document, error)
}

// Renderer is a single scriptable browsing session. Sessions are stateful and
// handle one navigation at a time, so each profile worker owns exactly one.
type Renderer interface {
	Navigate(ctx context.Context, rawURL string) error
	Settle(ctx context.Context, d time.Duration) error
	VisibleText(ctx context.Context) (string, error)
	Close() error
}

// RendererFactory creates one Renderer per profile worker.
type RendererFactory interface {
	NewRenderer(ctx context.Context) (Renderer, error)
}

// SiteParser encodes the site-specific selector rules the pipeline depends
// on. Keeping them behind an interface isolates the stages from layout rot.
type SiteParser interface {
	// Navigation walks the root page's main menu down to the per-program
	// links. It fails when any expected menu level is absent.
	Navigation(doc *goquery.Document) ([]CollegeMenu, error)
	// FacultyLink returns the first anchor on a program page that points at a
	// faculty directory, or false when the page has none.
	FacultyLink(doc *goquery.Document) (string, bool)
	// DirectoryCards extracts person cards from a faculty-directory page,
	// trying the layout strategies in order.
	DirectoryCards(doc *goquery.Document, program string) []PersonCard
}

// ResultWriter persists completed contact records as they are produced.
type ResultWriter interface {
	Write(record *ContactRecord) error
	Close() error
}

// SnapshotWriter records the end-of-run statistics snapshot.
type SnapshotWriter interface {
	Append(snap Snapshot) error
}

// Clock returns the current time (swappable in tests).
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }
