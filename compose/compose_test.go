package compose

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	calls []Draft
	err   error
}

func (r *recordingSender) SendMessage(_ context.Context, to, subject, body string) error {
	r.calls = append(r.calls, Draft{Recipient: to, Subject: subject, Body: body})
	return r.err
}

func feed(t *testing.T, s *Session, inputs ...string) {
	t.Helper()
	for _, in := range inputs {
		require.NoError(t, s.Input(context.Background(), in))
	}
}

func TestHappyPath(t *testing.T) {
	snd := &recordingSender{}
	s := New(snd)
	assert.Equal(t, AwaitingRecipient, s.State())

	feed(t, s, "bob@example.com")
	assert.Equal(t, AwaitingSubject, s.State())
	assert.Equal(t, "bob@example.com", s.Draft().Recipient)

	feed(t, s, "Hello")
	assert.Equal(t, AwaitingBody, s.State())
	assert.Empty(t, snd.calls)

	feed(t, s, "See you")
	assert.Equal(t, Sent, s.State())
	assert.Equal(t, []Draft{{Recipient: "bob@example.com", Subject: "Hello", Body: "See you"}}, snd.calls)
	assert.NoError(t, s.SendErr())

	assert.ErrorIs(t, s.Input(context.Background(), "more"), ErrFinished)
	assert.ErrorIs(t, s.Cancel(), ErrFinished)
}

func TestSendFailureStillEndsSent(t *testing.T) {
	snd := &recordingSender{err: errors.New("quota exceeded")}
	s := New(snd)

	feed(t, s, "a@b.c", "subj", "body")
	assert.EqualError(t, s.SendErr(), "quota exceeded")
	assert.Equal(t, Sent, s.State())
	assert.Len(t, snd.calls, 1)
}

func TestCancelAtEachState(t *testing.T) {
	for steps := 0; steps <= 2; steps++ {
		snd := &recordingSender{}
		s := New(snd)
		feed(t, s, []string{"r@x.y", "subject"}[:steps]...)

		require.NoError(t, s.Cancel())
		assert.Equal(t, Cancelled, s.State())
		assert.Equal(t, Draft{}, s.Draft())
		assert.Empty(t, snd.calls)

		assert.ErrorIs(t, s.Input(context.Background(), "late"), ErrFinished)
	}
}

func TestCancelAtSubjectLeavesNoResidue(t *testing.T) {
	snd := &recordingSender{}
	s := New(snd)
	feed(t, s, "first@example.com")
	require.Equal(t, AwaitingSubject, s.State())
	require.NoError(t, s.Cancel())
	assert.Empty(t, s.Draft().Recipient)

	next := New(snd)
	assert.Equal(t, AwaitingRecipient, next.State())
	assert.Equal(t, Draft{}, next.Draft())
}

func TestEmptyInputDoesNotAdvance(t *testing.T) {
	s := New(&recordingSender{})
	assert.ErrorIs(t, s.Input(context.Background(), "   "), ErrEmptyInput)
	assert.Equal(t, AwaitingRecipient, s.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "awaiting_body", AwaitingBody.String())
	assert.Equal(t, "unknown", State(42).String())
	assert.True(t, Cancelled.Terminal())
	assert.False(t, AwaitingSubject.Terminal())
}
