package scraper

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rpineda26/facultyscraper/internal/metrics"
)

// runProgramWorker is one member of the program-stage pool. It resolves each
// program page to its faculty-directory URL. No per-item failure ends the
// loop; only a sentinel, the deadline, or cancellation does.
func (e *Engine) runProgramWorker(ctx context.Context, id int) {
	log := e.logger.With(zap.String("worker", fmt.Sprintf("program-%d", id)))
	log.Info("Starting program worker")
	metrics.IncActiveWorkers(stageProgram)
	defer metrics.DecActiveWorkers(stageProgram)

	for e.keepWorking() {
		item, ok := e.programQ.Get(ctx)
		if !ok {
			break
		}
		e.processProgramItem(ctx, item, log)
		e.itemDone()
	}

	if remaining := e.programQ.Len(); remaining == 0 {
		log.Info("Exiting program worker after processing all program pages")
	} else {
		log.Info("Exiting program worker with program pages remaining",
			zap.Int("remaining", remaining),
		)
	}
}

func (e *Engine) processProgramItem(ctx context.Context, item ProgramItem, log *zap.Logger) {
	e.stats.RecordProgramVisit()
	log.Info("Scraping faculty directory link",
		zap.String("program", item.Program),
		zap.String("url", item.URL),
	)

	doc, err := e.fetcher.Fetch(ctx, item.URL)
	if err != nil {
		e.stats.RecordFacultyURLFailure(item.Program)
		metrics.ObserveFailure(stageProgram, "fetch")
		log.Error("Fetch program page failed",
			zap.String("url", item.URL),
			zap.Error(err),
		)
		return
	}
	metrics.ObservePage(stageProgram)

	href, found := e.parser.FacultyLink(doc)
	if !found {
		e.stats.RecordFacultyURLFailure(item.Program)
		metrics.ObserveFailure(stageProgram, "no_faculty_link")
		log.Warn("No faculty link found",
			zap.String("program", item.Program),
			zap.String("url", item.URL),
		)
		return
	}

	facultyURL, err := resolveAgainst(e.base, href)
	if err != nil {
		e.stats.RecordFacultyURLFailure(item.Program)
		metrics.ObserveFailure(stageProgram, "bad_link")
		log.Warn("Malformed faculty link",
			zap.String("program", item.Program),
			zap.Error(err),
		)
		return
	}

	// Duplicate claims are a normal outcome, not a failure: a directory page
	// shared by several programs is processed once per program.
	if !e.dedup.TryClaim(facultyURL, item.Program) {
		log.Info("Skipping duplicate faculty URL",
			zap.String("program", item.Program),
			zap.String("faculty_url", facultyURL),
		)
		return
	}

	e.stats.RecordFacultyURLSuccess(item.Program)
	log.Info("Found faculty URL", zap.String("faculty_url", facultyURL))

	out := DirectoryItem{College: item.College, Program: item.Program, FacultyURL: facultyURL}
	if err := e.enqueueDirectory(ctx, out); err != nil {
		log.Warn("Directory enqueue canceled", zap.Error(err))
	}
}
