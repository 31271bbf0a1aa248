package scraper

import (
	"context"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/rpineda26/facultyscraper/internal/metrics"
)

// emailPattern matches the first email address in a profile page's visible
// text: printable local part, '@', dotted domain, 2+ character TLD.
var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// runProfileWorker is one member of the profile-stage pool. Each worker owns
// a private rendering session for its whole lifetime; sessions are stateful
// and handle one navigation at a time, so they are never shared.
func (e *Engine) runProfileWorker(ctx context.Context, id int) {
	log := e.logger.With(zap.String("worker", fmt.Sprintf("profile-%d", id)))
	log.Info("Starting profile worker")
	metrics.IncActiveWorkers(stageProfile)
	defer metrics.DecActiveWorkers(stageProfile)

	renderer, err := e.renderers.NewRenderer(ctx)
	if err != nil {
		log.Error("Failed to start rendering session", zap.Error(err))
		return
	}
	defer func() {
		if cerr := renderer.Close(); cerr != nil {
			log.Warn("Close rendering session", zap.Error(cerr))
		}
	}()

	for e.keepWorking() {
		contact, ok := e.profileQ.Get(ctx)
		if !ok {
			break
		}
		e.processProfileItem(ctx, renderer, contact, log)
		e.itemDone()
	}

	if remaining := e.profileQ.Len(); remaining == 0 {
		log.Info("Exiting profile worker after processing all profiles")
	} else {
		log.Info("Exiting profile worker with profiles remaining",
			zap.Int("remaining", remaining),
		)
	}
}

func (e *Engine) processProfileItem(
	ctx context.Context,
	renderer Renderer,
	contact *ContactRecord,
	log *zap.Logger,
) {
	if err := renderer.Navigate(ctx, contact.ProfileURL); err != nil {
		e.incompleteRecord(contact, "navigate", log, err)
		return
	}
	if err := renderer.Settle(ctx, e.cfg.SettleDelay); err != nil {
		e.incompleteRecord(contact, "settle", log, err)
		return
	}
	text, err := renderer.VisibleText(ctx)
	if err != nil {
		e.incompleteRecord(contact, "extract", log, err)
		return
	}
	metrics.ObservePage(stageProfile)

	email := emailPattern.FindString(text)
	if email == "" {
		e.incompleteRecord(contact, "no_email", log, nil)
		return
	}

	contact.Email = email
	e.stats.RecordCompleteRecord(contact.Department)
	metrics.ObserveEmail()
	log.Info("Found email",
		zap.String("email", email),
		zap.String("profile_url", contact.ProfileURL),
	)
	if err := e.enqueueResult(ctx, contact); err != nil {
		log.Warn("Result enqueue canceled", zap.Error(err))
	}
}

func (e *Engine) incompleteRecord(contact *ContactRecord, reason string, log *zap.Logger, err error) {
	e.stats.RecordIncompleteRecord(contact.Department)
	metrics.ObserveFailure(stageProfile, reason)
	if err != nil {
		log.Error("Profile page failed",
			zap.String("profile_url", contact.ProfileURL),
			zap.String("reason", reason),
			zap.Error(err),
		)
		return
	}
	log.Warn("No email found on profile page",
		zap.String("profile_url", contact.ProfileURL),
	)
}
