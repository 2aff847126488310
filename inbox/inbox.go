// Package inbox lists recent messages under short display indices, mirrors
// them into the local record store and renders full message text.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/dulchik/mailbot/gmail"
	"github.com/dulchik/mailbot/internal/parser"
	"github.com/dulchik/mailbot/store"
)

const (
	// MaxListing bounds the number of messages in one listing.
	MaxListing = 5

	// Unreadable is returned by FetchFullText when a message has no textual part.
	Unreadable = "Could not recognise the text of this message (it may be an image)."

	defaultSubject = "(no subject)"
	defaultSender  = "(unknown sender)"
)

// ErrStale is returned when a display index is not part of the current listing.
var ErrStale = errors.New("display index not in current listing")

// Mailbox is the mail provider collaborator.
type Mailbox interface {
	ListMessages(ctx context.Context, label string, max int64) ([]gmail.Summary, error)
	GetMessage(ctx context.Context, id string) (*gmail.Part, error)
}

// Recorder persists listed messages.
type Recorder interface {
	Insert(ctx context.Context, rec store.EmailRecord) (bool, error)
}

// Service is the inbox index cache. It holds no per-conversation state:
// every listing yields a fresh Index owned by the caller.
type Service struct {
	mail   Mailbox
	rec    Recorder
	label  string
	logger *slog.Logger
	gen    atomic.Uint64
}

func New(mail Mailbox, rec Recorder, label string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if label == "" {
		label = "INBOX"
	}
	return &Service{mail: mail, rec: rec, label: label, logger: logger}
}

// ListRecent returns up to n summaries, most recent first, and the Index
// mapping 1..len(summaries) to their message ids. Each summary is recorded
// in the store; store failures are logged and do not fail the listing.
func (s *Service) ListRecent(ctx context.Context, n int) ([]gmail.Summary, *Index, error) {
	if n < 1 {
		n = 1
	}
	if n > MaxListing {
		n = MaxListing
	}

	summaries, err := s.mail.ListMessages(ctx, s.label, int64(n))
	if err != nil {
		return nil, nil, fmt.Errorf("list %s: %w", s.label, err)
	}
	if len(summaries) > n {
		summaries = summaries[:n]
	}

	ids := make([]string, 0, len(summaries))
	for i := range summaries {
		sum := &summaries[i]
		if strings.TrimSpace(sum.Subject) == "" {
			sum.Subject = defaultSubject
		}
		if strings.TrimSpace(sum.From) == "" {
			sum.From = defaultSender
		}
		s.record(ctx, *sum)
		ids = append(ids, sum.ID)
	}
	return summaries, &Index{gen: s.gen.Add(1), ids: ids}, nil
}

func (s *Service) record(ctx context.Context, sum gmail.Summary) {
	if s.rec == nil {
		return
	}
	_, err := s.rec.Insert(ctx, store.EmailRecord{
		GmailID:      sum.ID,
		Sender:       sum.From,
		Recipient:    sum.To,
		Subject:      sum.Subject,
		Body:         sum.Snippet,
		Folder:       s.label,
		ReceivedDate: sum.Received,
	})
	if err != nil {
		s.logger.Error("failed to record email", "message_id", sum.ID, "error", err)
	}
}

// FetchFullText returns the untruncated text of a message, preferring a
// plain text part over HTML. Messages without any textual part yield
// Unreadable.
func (s *Service) FetchFullText(ctx context.Context, messageID string) (string, error) {
	root, err := s.mail.GetMessage(ctx, messageID)
	if err != nil {
		return "", err
	}
	part, ok := gmail.FindText(root)
	if !ok {
		return Unreadable, nil
	}
	if part.MimeType != gmail.MimeTextHTML {
		return part.Text, nil
	}
	text, err := parser.HTMLToText(part.Text)
	if err != nil {
		return "", fmt.Errorf("render html of %s: %w", messageID, err)
	}
	return text, nil
}
