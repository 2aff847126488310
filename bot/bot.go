// Package bot exposes the Gmail inbox and the composition flow over Telegram.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dulchik/mailbot/compose"
	"github.com/dulchik/mailbot/gmail"
	"github.com/dulchik/mailbot/inbox"
)

// API is the subset of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Inbox lists and reads messages. See inbox.Service.
type Inbox interface {
	ListRecent(ctx context.Context, n int) ([]gmail.Summary, *inbox.Index, error)
	FetchFullText(ctx context.Context, messageID string) (string, error)
}

// Bot routes Telegram updates. A nil Inbox or Sender means Gmail could not be
// initialised; the matching features then reply with an authorization error.
type Bot struct {
	api      API
	inbox    Inbox
	sender   compose.Sender
	sessions *Sessions
	listSize int
	logger   *slog.Logger
}

func New(api API, ib Inbox, sender compose.Sender, listSize int, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	if listSize < 1 || listSize > inbox.MaxListing {
		listSize = inbox.MaxListing
	}
	return &Bot{
		api:      api,
		inbox:    ib,
		sender:   sender,
		sessions: NewSessions(),
		listSize: listSize,
		logger:   logger,
	}
}

// Sessions exposes the per-conversation store.
func (b *Bot) Sessions() *Sessions { return b.sessions }

// Run handles updates until ctx is cancelled or the channel closes.
// Updates are processed one at a time.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, u)
		}
	}
}

// HandleUpdate dispatches a single update.
func (b *Bot) HandleUpdate(ctx context.Context, u tgbotapi.Update) {
	if u.CallbackQuery != nil {
		b.handleCallback(ctx, u.CallbackQuery)
		return
	}
	msg := u.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.sessions.ClearDraft(chatID)
			b.reply(chatID, textMenu, mainKeyboard())
		case "inbox":
			b.checkInbox(ctx, chatID)
		case "compose":
			b.startCompose(chatID)
		case "cancel":
			b.cancel(chatID)
		default:
			b.reply(chatID, textMenu, mainKeyboard())
		}
		return
	}

	if d := b.sessions.Draft(chatID); d != nil {
		b.composeInput(ctx, chatID, d, msg.Text)
		return
	}

	switch msg.Text {
	case buttonInbox:
		b.checkInbox(ctx, chatID)
	case buttonCompose:
		b.startCompose(chatID)
	default:
		b.reply(chatID, textMenu, mainKeyboard())
	}
}

func (b *Bot) checkInbox(ctx context.Context, chatID int64) {
	if b.inbox == nil {
		b.reply(chatID, textAuthError, nil)
		return
	}
	b.reply(chatID, textChecking, nil)

	summaries, idx, err := b.inbox.ListRecent(ctx, b.listSize)
	if err != nil {
		b.logger.Error("failed to list inbox", "chat_id", chatID, "error", err)
		b.reply(chatID, textProviderError, nil)
		return
	}
	b.sessions.SetListing(chatID, idx)
	if len(summaries) == 0 {
		b.reply(chatID, textInboxEmpty, nil)
		return
	}

	m := tgbotapi.NewMessage(chatID, listingText(summaries))
	m.ParseMode = tgbotapi.ModeHTML
	m.ReplyMarkup = listingButtons(idx.Generation(), len(summaries))
	b.send(m)
}

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		b.logger.Warn("failed to answer callback", "error", err)
	}
	if q.Message == nil || q.Message.Chat == nil {
		return
	}
	chatID := q.Message.Chat.ID

	gen, pos, ok := parseReadData(q.Data)
	if !ok {
		b.logger.Warn("unknown callback data", "chat_id", chatID, "data", q.Data)
		return
	}
	if b.inbox == nil {
		b.reply(chatID, textAuthError, nil)
		return
	}

	id, err := b.sessions.Listing(chatID).Resolve(gen, pos)
	if err != nil {
		b.send(tgbotapi.NewEditMessageText(chatID, q.Message.MessageID, textStale))
		return
	}

	b.reply(chatID, textLoading, nil)
	text, err := b.inbox.FetchFullText(ctx, id)
	if err != nil {
		b.logger.Error("failed to fetch message", "chat_id", chatID, "message_id", id, "error", err)
		b.reply(chatID, textProviderError, nil)
		return
	}
	b.reply(chatID, fmt.Sprintf("📄 Message #%d\n\n%s", pos, Truncate(text, MaxTextLen)), nil)
}

func (b *Bot) startCompose(chatID int64) {
	if b.sender == nil {
		b.reply(chatID, textAuthError, nil)
		return
	}
	b.sessions.SetDraft(chatID, compose.New(b.sender))
	b.reply(chatID, textAskRecipient, tgbotapi.NewRemoveKeyboard(true))
}

func (b *Bot) composeInput(ctx context.Context, chatID int64, d *compose.Session, text string) {
	if d.State() == compose.AwaitingBody && strings.TrimSpace(text) != "" {
		b.reply(chatID, textSending, nil)
	}
	if err := d.Input(ctx, text); err != nil {
		if errors.Is(err, compose.ErrEmptyInput) {
			b.reply(chatID, textEmptyInput, nil)
			return
		}
		b.sessions.ClearDraft(chatID)
		b.reply(chatID, textMenu, mainKeyboard())
		return
	}

	switch d.State() {
	case compose.AwaitingSubject:
		b.reply(chatID, textAskSubject, nil)
	case compose.AwaitingBody:
		b.reply(chatID, textAskBody, nil)
	case compose.Sent:
		b.sessions.ClearDraft(chatID)
		if err := d.SendErr(); err != nil {
			b.logger.Error("failed to send message", "chat_id", chatID, "error", err)
			b.reply(chatID, textSendFailed, mainKeyboard())
			return
		}
		b.logger.Info("message sent", "chat_id", chatID)
		b.reply(chatID, textSent, mainKeyboard())
	}
}

func (b *Bot) cancel(chatID int64) {
	if d := b.sessions.Draft(chatID); d != nil {
		_ = d.Cancel()
	}
	b.sessions.ClearDraft(chatID)
	b.reply(chatID, textCancelled, mainKeyboard())
}

func (b *Bot) reply(chatID int64, text string, markup any) {
	m := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		m.ReplyMarkup = markup
	}
	b.send(m)
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.logger.Error("failed to send telegram message", "error", err)
	}
}
