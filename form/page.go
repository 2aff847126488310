package form

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no control matches.
var ErrNotFound = errors.New("control not found")

// Page is a loaded form. Question containers carry a heading whose text
// identifies the question; label matching is a case-sensitive substring
// match and the first container in document order wins, so a label that is
// contained in an earlier question's heading binds to that question.
type Page interface {
	Open(ctx context.Context, url string) error
	// TextControl finds the first visible text input of the question.
	TextControl(ctx context.Context, label string) (Control, error)
	// ChoiceControl finds the radio or checkbox option of the question
	// whose label or visible text equals value.
	ChoiceControl(ctx context.Context, label, value string) (Control, error)
	// SubmitControl waits, bounded by ctx, for a button showing one of labels.
	SubmitControl(ctx context.Context, labels []string) (Control, error)
}

// Control is an element of a Page.
type Control interface {
	// Fill clears the current value and types value.
	Fill(ctx context.Context, value string) error
	// Reveal scrolls the control into view.
	Reveal(ctx context.Context) error
	Click(ctx context.Context) error
}

// textInputTypes are the input types treated as free text.
var textInputTypes = []string{"text", "email", "number", "tel", "url", "search", "date", "time", "password"}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
