package scraper

import "sync"

// Deduplicator tracks which (url, program) pairs have already produced work.
// The same directory or profile URL may legitimately be processed again for a
// different program, since some directory pages are shared across programs.
type Deduplicator struct {
	mu       sync.Mutex
	programs map[string]map[string]struct{}
}

// NewDeduplicator returns an empty index.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{programs: make(map[string]map[string]struct{})}
}

// TryClaim registers url for program. It returns true exactly once per
// distinct (url, program) pair for the lifetime of the run; the caller skips
// the work when it returns false.
func (d *Deduplicator) TryClaim(url, program string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	set, seen := d.programs[url]
	if !seen {
		d.programs[url] = map[string]struct{}{program: {}}
		return true
	}
	if _, claimed := set[program]; claimed {
		return false
	}
	set[program] = struct{}{}
	return true
}

// Reset drops every recorded claim.
func (d *Deduplicator) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.programs = make(map[string]map[string]struct{})
}
