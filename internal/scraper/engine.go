package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/rpineda26/facultyscraper/internal/metrics"
)

// Stage labels used for logging and metrics.
const (
	stageDiscovery = "discovery"
	stageProgram   = "program"
	stageDirectory = "directory"
	stageProfile   = "profile"
)

const monitorInterval = 250 * time.Millisecond

// Engine owns the stage queues, the worker pools, the shared deadline, and
// the shutdown sequence.
type Engine struct {
	cfg       Config
	fetcher   Fetcher
	renderers RendererFactory
	parser    SiteParser
	results   ResultWriter
	snapshots SnapshotWriter
	clock     Clock
	logger    *zap.Logger

	dedup *Deduplicator
	stats *Statistics
	base  *url.URL

	programQ   *workQueue[ProgramItem]
	directoryQ *workQueue[DirectoryItem]
	profileQ   *workQueue[*ContactRecord]
	resultQ    *workQueue[*ContactRecord]

	// active is the cooperative shutdown flag; inFlight counts items that
	// have been enqueued anywhere but not yet fully processed.
	active   atomic.Bool
	inFlight atomic.Int64
	deadline time.Time
}

// NewEngine constructs an Engine. A nil clock falls back to the system clock
// and a nil logger to a no-op logger.
func NewEngine(
	cfg Config,
	fetcher Fetcher,
	renderers RendererFactory,
	parser SiteParser,
	results ResultWriter,
	snapshots SnapshotWriter,
	clock Clock,
	logger *zap.Logger,
) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.JoinTimeout <= 0 {
		cfg.JoinTimeout = 5 * time.Second
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", cfg.BaseURL, err)
	}
	if clock == nil {
		clock = SystemClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()

	minutes := int(cfg.RunDuration.Round(time.Minute) / time.Minute)
	return &Engine{
		cfg:        cfg,
		fetcher:    fetcher,
		renderers:  renderers,
		parser:     parser,
		results:    results,
		snapshots:  snapshots,
		clock:      clock,
		logger:     logger,
		dedup:      NewDeduplicator(),
		stats:      NewStatistics(cfg.BaseURL, cfg.Workers, minutes),
		base:       base,
		programQ:   newWorkQueue[ProgramItem](cfg.QueueDepth),
		directoryQ: newWorkQueue[DirectoryItem](cfg.QueueDepth),
		profileQ:   newWorkQueue[*ContactRecord](cfg.QueueDepth),
		resultQ:    newWorkQueue[*ContactRecord](cfg.QueueDepth),
	}, nil
}

// Statistics exposes the run's statistics aggregator.
func (e *Engine) Statistics() *Statistics { return e.stats }

// Run executes one scrape: discovery, then the worker pools until the time
// budget expires, the pipeline drains, or ctx is canceled. It always finishes
// with the cooperative shutdown sequence and a statistics snapshot.
func (e *Engine) Run(ctx context.Context) error {
	e.deadline = e.clock.Now().Add(e.cfg.RunDuration)
	e.active.Store(true)

	// Workers stop on sentinels, the deadline, or the cleared active flag.
	// Their context is detached from ctx so external cancellation never aborts
	// an in-flight fetch; cancelWorkers is the join-timeout escalation only.
	workCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	sinkCtx, cancelSink := context.WithCancel(context.Background())
	defer cancelSink()

	var workers, sink sync.WaitGroup
	for i := 0; i < e.cfg.Workers; i++ {
		workers.Add(3)
		go func(id int) {
			defer workers.Done()
			e.runProgramWorker(workCtx, id)
		}(i)
		go func(id int) {
			defer workers.Done()
			e.runDirectoryWorker(workCtx, id)
		}(i)
		go func(id int) {
			defer workers.Done()
			e.runProfileWorker(workCtx, id)
		}(i)
	}
	sink.Add(1)
	go func() {
		defer sink.Done()
		e.runResultSink(sinkCtx)
	}()

	// Seeding competes with the running program workers for queue space, so a
	// navigation wider than the queue depth drains instead of blocking. The
	// deadline bounds it either way, and interruption unblocks it.
	seedCtx, cancelSeed := context.WithDeadline(ctx, e.deadline)
	if _, err := e.discover(seedCtx); err != nil {
		e.logger.Error("Discovery failed; nothing to scrape", zap.Error(err))
	}
	cancelSeed()

	e.monitor(ctx)
	e.shutdown(cancelWorkers, cancelSink, &workers, &sink)

	if err := e.snapshots.Append(e.stats.Snapshot()); err != nil {
		e.logger.Error("Write statistics snapshot", zap.Error(err))
	}
	if err := e.results.Close(); err != nil {
		e.logger.Error("Close result writer", zap.Error(err))
	}
	e.logger.Info("Scraping complete",
		zap.Int("emails_recorded", e.stats.TotalEmailsRecorded()),
	)
	return nil
}

// monitor blocks until a run-ending condition: deadline expiry, a drained
// pipeline, or external cancellation.
func (e *Engine) monitor(ctx context.Context) {
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Interrupt received, shutting down")
			return
		case <-ticker.C:
			metrics.SetQueueDepth("program", e.programQ.Len())
			metrics.SetQueueDepth("directory", e.directoryQ.Len())
			metrics.SetQueueDepth("profile", e.profileQ.Len())
			metrics.SetQueueDepth("result", e.resultQ.Len())
			if !e.clock.Now().Before(e.deadline) {
				e.logger.Info("Time budget exhausted, shutting down")
				return
			}
			if e.inFlight.Load() == 0 {
				e.logger.Info("Pipeline drained, shutting down")
				return
			}
		}
	}
}

// shutdown clears the active flag, pushes one sentinel per worker onto each
// stage queue, joins the pools with a bounded timeout, and finally drains the
// result queue into the sink.
func (e *Engine) shutdown(
	cancelWorkers, cancelSink context.CancelFunc,
	workers, sink *sync.WaitGroup,
) {
	e.active.Store(false)

	stopCtx, cancel := context.WithTimeout(context.Background(), e.cfg.JoinTimeout)
	defer cancel()
	for i := 0; i < e.cfg.Workers; i++ {
		_ = e.programQ.Poison(stopCtx)
		_ = e.directoryQ.Poison(stopCtx)
		_ = e.profileQ.Poison(stopCtx)
	}

	if !waitTimeout(workers, e.cfg.JoinTimeout) {
		e.logger.Warn("Workers still running at join timeout, canceling")
		cancelWorkers()
		workers.Wait()
	}

	// The sink drains everything queued ahead of the sentinel before it
	// stops, so records produced mid-shutdown are not lost.
	if err := e.resultQ.Poison(stopCtx); err != nil {
		cancelSink()
	}
	if !waitTimeout(sink, e.cfg.JoinTimeout) {
		e.logger.Warn("Result sink still running at join timeout, canceling")
		cancelSink()
		sink.Wait()
	}
}

// runResultSink is the single consumer of the result queue. It writes each
// record as produced; the writer flushes per record so a crash loses at most
// the in-flight row.
func (e *Engine) runResultSink(ctx context.Context) {
	for {
		record, ok := e.resultQ.Get(ctx)
		if !ok {
			return
		}
		if err := e.results.Write(record); err != nil {
			e.logger.Error("Write contact record",
				zap.String("profile_url", record.ProfileURL),
				zap.Error(err),
			)
		} else {
			metrics.ObserveRecordWritten()
			e.logger.Info("Recorded contact",
				zap.String("email", record.Email),
				zap.String("department", record.Department),
			)
		}
		e.inFlight.Add(-1)
	}
}

func (e *Engine) enqueueProgram(ctx context.Context, item ProgramItem) error {
	e.inFlight.Add(1)
	if err := e.programQ.Put(ctx, item); err != nil {
		e.inFlight.Add(-1)
		return err
	}
	return nil
}

func (e *Engine) enqueueDirectory(ctx context.Context, item DirectoryItem) error {
	e.inFlight.Add(1)
	if err := e.directoryQ.Put(ctx, item); err != nil {
		e.inFlight.Add(-1)
		return err
	}
	return nil
}

func (e *Engine) enqueueProfile(ctx context.Context, record *ContactRecord) error {
	e.inFlight.Add(1)
	if err := e.profileQ.Put(ctx, record); err != nil {
		e.inFlight.Add(-1)
		return err
	}
	return nil
}

func (e *Engine) enqueueResult(ctx context.Context, record *ContactRecord) error {
	e.inFlight.Add(1)
	if err := e.resultQ.Put(ctx, record); err != nil {
		e.inFlight.Add(-1)
		return err
	}
	return nil
}

// itemDone is called by every stage worker to release its dequeued item.
func (e *Engine) itemDone() { e.inFlight.Add(-1) }

func (e *Engine) keepWorking() bool {
	return e.active.Load() && e.clock.Now().Before(e.deadline)
}

func resolveAgainst(base *url.URL, href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", fmt.Errorf("empty href")
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parse href %q: %w", href, err)
	}
	return base.ResolveReference(ref).String(), nil
}

func waitTimeout(wg *sync.WaitGroup, d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(d):
		return false
	}
}
