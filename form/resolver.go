package form

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Resolver maps a question label to a control and enters the answer.
type Resolver struct {
	page   Page
	settle time.Duration
	logger *slog.Logger
}

// NewResolver returns a Resolver that waits settle between scrolling a
// choice into view and clicking it.
func NewResolver(page Page, settle time.Duration, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{page: page, settle: settle, logger: logger}
}

// ResolveAndFill tries the text field of the question first, then a choice
// option equal to value. It reports whether either succeeded; lookup and
// browser errors are logged, never returned.
func (r *Resolver) ResolveAndFill(ctx context.Context, label, value string) bool {
	if r.fillText(ctx, label, value) {
		return true
	}
	return r.selectChoice(ctx, label, value)
}

func (r *Resolver) fillText(ctx context.Context, label, value string) bool {
	c, err := r.page.TextControl(ctx, label)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			r.logger.Warn("text field lookup failed", "label", label, "error", err)
		}
		return false
	}
	if err := c.Fill(ctx, value); err != nil {
		r.logger.Warn("fill text field", "label", label, "error", err)
		return false
	}
	return true
}

func (r *Resolver) selectChoice(ctx context.Context, label, value string) bool {
	c, err := r.page.ChoiceControl(ctx, label, value)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			r.logger.Warn("choice lookup failed", "label", label, "value", value, "error", err)
		}
		return false
	}
	if err := c.Reveal(ctx); err != nil {
		r.logger.Warn("scroll choice into view", "label", label, "error", err)
		return false
	}
	if err := sleep(ctx, r.settle); err != nil {
		return false
	}
	if err := c.Click(ctx); err != nil {
		r.logger.Warn("click choice", "label", label, "value", value, "error", err)
		return false
	}
	return true
}
