// Package compose implements the linear recipient, subject, body flow used
// to write an outgoing message.
package compose

import (
	"context"
	"errors"
	"strings"
)

// State of a composition session.
type State int

const (
	AwaitingRecipient State = iota
	AwaitingSubject
	AwaitingBody
	Sent
	Cancelled
)

func (s State) String() string {
	switch s {
	case AwaitingRecipient:
		return "awaiting_recipient"
	case AwaitingSubject:
		return "awaiting_subject"
	case AwaitingBody:
		return "awaiting_body"
	case Sent:
		return "sent"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// Terminal reports whether no further input is accepted.
func (s State) Terminal() bool {
	return s == Sent || s == Cancelled
}

var (
	ErrFinished   = errors.New("composition already finished")
	ErrEmptyInput = errors.New("empty input")
)

// Sender delivers a completed draft.
type Sender interface {
	SendMessage(ctx context.Context, to, subject, body string) error
}

// Draft holds the fields collected so far.
type Draft struct {
	Recipient string
	Subject   string
	Body      string
}

// Session is not safe for concurrent use; one conversation drives it.
type Session struct {
	state   State
	draft   Draft
	sender  Sender
	sendErr error
}

// New starts a session awaiting the recipient.
func New(sender Sender) *Session {
	return &Session{state: AwaitingRecipient, sender: sender}
}

func (s *Session) State() State { return s.state }

func (s *Session) Draft() Draft { return s.draft }

// SendErr is the delivery error of a Sent session, nil on success.
func (s *Session) SendErr() error { return s.sendErr }

// Input consumes one free-text answer for the current state and advances.
// The body input triggers the send; the session ends in Sent whether or not
// delivery succeeded, and the outcome is available from SendErr.
func (s *Session) Input(ctx context.Context, text string) error {
	if s.state.Terminal() {
		return ErrFinished
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyInput
	}

	switch s.state {
	case AwaitingRecipient:
		s.draft.Recipient = text
		s.state = AwaitingSubject
	case AwaitingSubject:
		s.draft.Subject = text
		s.state = AwaitingBody
	case AwaitingBody:
		s.draft.Body = text
		d := s.draft
		s.draft = Draft{}
		s.state = Sent
		s.sendErr = s.sender.SendMessage(ctx, d.Recipient, d.Subject, d.Body)
	}
	return nil
}

// Cancel discards every collected field.
func (s *Session) Cancel() error {
	if s.state.Terminal() {
		return ErrFinished
	}
	s.draft = Draft{}
	s.state = Cancelled
	return nil
}
