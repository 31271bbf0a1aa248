package scraper

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/rpineda26/facultyscraper/internal/metrics"
)

// runDirectoryWorker is one member of the directory-stage pool. It parses
// faculty-directory pages into contact stubs for the profile stage.
func (e *Engine) runDirectoryWorker(ctx context.Context, id int) {
	log := e.logger.With(zap.String("worker", fmt.Sprintf("directory-%d", id)))
	log.Info("Starting directory worker")
	metrics.IncActiveWorkers(stageDirectory)
	defer metrics.DecActiveWorkers(stageDirectory)

	for e.keepWorking() {
		item, ok := e.directoryQ.Get(ctx)
		if !ok {
			break
		}
		e.processDirectoryItem(ctx, item, log)
		e.itemDone()
	}

	if remaining := e.directoryQ.Len(); remaining == 0 {
		log.Info("Exiting directory worker after processing all faculty pages")
	} else {
		log.Info("Exiting directory worker with faculty pages remaining",
			zap.Int("remaining", remaining),
		)
	}
}

func (e *Engine) processDirectoryItem(ctx context.Context, item DirectoryItem, log *zap.Logger) {
	log.Info("Processing faculty directory",
		zap.String("program", item.Program),
		zap.String("url", item.FacultyURL),
	)

	doc, err := e.fetcher.Fetch(ctx, item.FacultyURL)
	if err != nil {
		metrics.ObserveFailure(stageDirectory, "fetch")
		log.Error("Fetch directory page failed",
			zap.String("url", item.FacultyURL),
			zap.Error(err),
		)
		return
	}
	metrics.ObservePage(stageDirectory)

	cards := e.parser.DirectoryCards(doc, item.Program)
	if len(cards) == 0 {
		metrics.ObserveFailure(stageDirectory, "no_layout")
		log.Warn("No faculty members found in any layout",
			zap.String("program", item.Program),
			zap.String("url", item.FacultyURL),
		)
		return
	}

	pageURL, err := url.Parse(item.FacultyURL)
	if err != nil {
		metrics.ObserveFailure(stageDirectory, "bad_url")
		log.Error("Unparseable directory URL", zap.String("url", item.FacultyURL), zap.Error(err))
		return
	}

	enqueued := 0
	for _, card := range cards {
		profileURL, err := resolveAgainst(pageURL, card.Href)
		if err != nil {
			continue
		}
		if !e.dedup.TryClaim(profileURL, item.Program) {
			continue
		}
		contact := &ContactRecord{
			Name:       card.Name,
			Office:     item.College,
			Department: item.Program,
			ProfileURL: profileURL,
		}
		e.stats.RecordPersonnelFound(item.Program)
		if err := e.enqueueProfile(ctx, contact); err != nil {
			log.Warn("Profile enqueue canceled", zap.Error(err))
			return
		}
		enqueued++
	}

	if enqueued == 0 {
		log.Info("No new contacts for program",
			zap.String("program", item.Program),
			zap.String("url", item.FacultyURL),
		)
		return
	}
	log.Info("Found contacts",
		zap.String("program", item.Program),
		zap.Int("count", enqueued),
	)
}
