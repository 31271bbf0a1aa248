package scraper

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

// fakeFetcher serves canned HTML by URL.
type fakeFetcher struct {
	mu     sync.Mutex
	pages  map[string]string
	errs   map[string]error
	visits []string
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) (*goquery.Document, error) {
	f.mu.Lock()
	f.visits = append(f.visits, rawURL)
	html, ok := f.pages[rawURL]
	err := f.errs[rawURL]
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no page for %s", rawURL)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func (f *fakeFetcher) visited() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.visits...)
}

// slowFetcher delays configured URLs before delegating, counting fetches that
// were cut short by their context.
type slowFetcher struct {
	inner   *fakeFetcher
	delays  map[string]time.Duration
	ctxErrs atomic.Int32
}

func (f *slowFetcher) Fetch(ctx context.Context, rawURL string) (*goquery.Document, error) {
	if d := f.delays[rawURL]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			f.ctxErrs.Add(1)
			return nil, ctx.Err()
		}
	}
	return f.inner.Fetch(ctx, rawURL)
}

// fakeParser returns scripted menus and reads marker classes from the served
// HTML so one instance can answer for many pages.
type fakeParser struct {
	menus  []CollegeMenu
	navErr error
}

func (p *fakeParser) Navigation(*goquery.Document) ([]CollegeMenu, error) {
	return p.menus, p.navErr
}

func (p *fakeParser) FacultyLink(doc *goquery.Document) (string, bool) {
	anchor := doc.Find("a.faculty-link").First()
	if anchor.Length() == 0 {
		return "", false
	}
	return anchor.AttrOr("href", ""), true
}

func (p *fakeParser) DirectoryCards(doc *goquery.Document, _ string) []PersonCard {
	var cards []PersonCard
	doc.Find("div.person").Each(func(_ int, el *goquery.Selection) {
		anchor := el.Find("a").First()
		cards = append(cards, PersonCard{
			Name: strings.TrimSpace(anchor.Text()),
			Href: anchor.AttrOr("href", ""),
		})
	})
	return cards
}

// fakeRendererFactory hands out sessions that return canned visible text for
// the last navigated URL.
type fakeRendererFactory struct {
	mu      sync.Mutex
	texts   map[string]string
	navErrs map[string]error
	err     error
	created int
}

func (f *fakeRendererFactory) NewRenderer(context.Context) (Renderer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.created++
	return &fakeRenderer{factory: f}, nil
}

type fakeRenderer struct {
	factory *fakeRendererFactory
	current string
	closed  bool
}

func (r *fakeRenderer) Navigate(_ context.Context, rawURL string) error {
	r.factory.mu.Lock()
	err := r.factory.navErrs[rawURL]
	r.factory.mu.Unlock()
	if err != nil {
		return err
	}
	r.current = rawURL
	return nil
}

func (r *fakeRenderer) Settle(context.Context, time.Duration) error { return nil }

func (r *fakeRenderer) VisibleText(context.Context) (string, error) {
	r.factory.mu.Lock()
	defer r.factory.mu.Unlock()
	return r.factory.texts[r.current], nil
}

func (r *fakeRenderer) Close() error {
	r.closed = true
	return nil
}

// memResults collects written records in memory.
type memResults struct {
	mu       sync.Mutex
	records  []*ContactRecord
	writeErr error
	closed   bool
}

func (m *memResults) Write(record *ContactRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.records = append(m.records, record)
	return nil
}

func (m *memResults) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *memResults) all() []*ContactRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*ContactRecord(nil), m.records...)
}

// memSnapshots collects appended snapshots in memory.
type memSnapshots struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (m *memSnapshots) Append(snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps = append(m.snaps, snap)
	return nil
}

// stepClock returns a time that jumps forward by step on every read.
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// fixedClock always returns the same instant until moved.
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testConfig() Config {
	return Config{
		BaseURL:     "https://campus.test/",
		Workers:     1,
		RunDuration: 30 * time.Second,
		QueueDepth:  32,
		SettleDelay: 0,
		JoinTimeout: 2 * time.Second,
	}
}

type testHarness struct {
	engine    *Engine
	fetcher   *fakeFetcher
	renderers *fakeRendererFactory
	results   *memResults
	snapshots *memSnapshots
}

func newTestEngine(t *testing.T, cfg Config, parser SiteParser, clock Clock) *testHarness {
	t.Helper()

	h := &testHarness{
		fetcher:   &fakeFetcher{pages: map[string]string{}, errs: map[string]error{}},
		renderers: &fakeRendererFactory{texts: map[string]string{}, navErrs: map[string]error{}},
		results:   &memResults{},
		snapshots: &memSnapshots{},
	}
	engine, err := NewEngine(cfg, h.fetcher, h.renderers, parser, h.results, h.snapshots, clock, nil)
	require.NoError(t, err)
	h.engine = engine
	return h
}
