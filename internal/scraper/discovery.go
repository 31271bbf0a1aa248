package scraper

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rpineda26/facultyscraper/internal/metrics"
)

// discover walks the root page's navigation and seeds the program queue with
// every (college, program, url) triple it finds. It runs once, single
// threaded, while the program workers drain the queue it fills; ctx bounds the
// seeding when the queue backs up. A missing menu level fails the whole step;
// the structure is a hard dependency on the target site and it is better to
// fail loudly than to guess.
func (e *Engine) discover(ctx context.Context) (map[string][]string, error) {
	e.logger.Info("Scraping college and program URLs", zap.String("base_url", e.cfg.BaseURL))

	doc, err := e.fetcher.Fetch(ctx, e.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("fetch root page: %w", err)
	}
	metrics.ObservePage(stageDiscovery)

	menus, err := e.parser.Navigation(doc)
	if err != nil {
		return nil, fmt.Errorf("walk navigation: %w", err)
	}

	collegePrograms := make(map[string][]string)
	total := 0
	for _, menu := range menus {
		// Colleges without a program submenu are skipped and not counted,
		// matching the statistics file's historical meaning of the counter.
		if menu.Programs == nil {
			continue
		}
		urls := make([]string, 0, len(menu.Programs))
		for _, program := range menu.Programs {
			programURL, err := resolveAgainst(e.base, program.URL)
			if err != nil {
				e.logger.Warn("Skipping malformed program link",
					zap.String("college", menu.College),
					zap.String("program", program.Name),
					zap.Error(err),
				)
				continue
			}
			item := ProgramItem{College: menu.College, Program: program.Name, URL: programURL}
			if err := e.enqueueProgram(ctx, item); err != nil {
				return collegePrograms, fmt.Errorf("seed program queue: %w", err)
			}
			urls = append(urls, programURL)
			total++
		}
		collegePrograms[menu.College] = urls
		e.stats.RecordCollege()
	}

	e.logger.Info("Discovery complete",
		zap.Int("colleges", len(collegePrograms)),
		zap.Int("programs", total),
	)
	return collegePrograms, nil
}
