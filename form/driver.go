package form

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DriverConfig tunes a Driver.
type DriverConfig struct {
	SubmitLabels  []string
	SubmitTimeout time.Duration
	ChoiceSettle  time.Duration
	SubmitSettle  time.Duration
}

// Report describes the outcome of one submission.
type Report struct {
	RunID      string
	Resolved   []Answer
	Unresolved []Answer
	Skipped    []Answer
	Submitted  bool
}

// Driver loads a form, answers every question and presses submit.
type Driver struct {
	page     Page
	resolver *Resolver
	cfg      DriverConfig
	logger   *slog.Logger
}

func NewDriver(page Page, cfg DriverConfig, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		page:     page,
		resolver: NewResolver(page, cfg.ChoiceSettle, logger),
		cfg:      cfg,
		logger:   logger,
	}
}

// Submit fills the form at url in answer order. Unresolved answers do not
// stop the run. A submit control that does not appear within the timeout is
// logged and reported through Report.Submitted; only a failure to load the
// form is returned as an error.
func (d *Driver) Submit(ctx context.Context, url string, answers []Answer) (Report, error) {
	rep := Report{RunID: uuid.NewString()}
	log := d.logger.With("run_id", rep.RunID)

	if err := d.page.Open(ctx, url); err != nil {
		return rep, fmt.Errorf("open form: %w", err)
	}
	log.Info("filling form", "url", url, "answers", len(answers))

	for _, a := range answers {
		if a.Value == "" {
			log.Info("skipping empty answer", "label", a.Label)
			rep.Skipped = append(rep.Skipped, a)
			continue
		}
		if d.resolver.ResolveAndFill(ctx, a.Label, a.Value) {
			log.Debug("answer entered", "label", a.Label)
			rep.Resolved = append(rep.Resolved, a)
			continue
		}
		log.Warn("no field found for question", "label", a.Label)
		rep.Unresolved = append(rep.Unresolved, a)
	}

	rep.Submitted = d.submit(ctx, log)
	return rep, nil
}

func (d *Driver) submit(ctx context.Context, log *slog.Logger) bool {
	wctx := ctx
	if d.cfg.SubmitTimeout > 0 {
		var cancel context.CancelFunc
		wctx, cancel = context.WithTimeout(ctx, d.cfg.SubmitTimeout)
		defer cancel()
	}
	btn, err := d.page.SubmitControl(wctx, d.cfg.SubmitLabels)
	if err != nil {
		log.Error("submit button not available", "labels", d.cfg.SubmitLabels, "error", err)
		return false
	}
	if err := btn.Click(ctx); err != nil {
		log.Error("click submit", "error", err)
		return false
	}
	log.Info("form submitted")
	_ = sleep(ctx, d.cfg.SubmitSettle)
	return true
}
