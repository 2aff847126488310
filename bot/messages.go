package bot

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dulchik/mailbot/gmail"
)

const (
	buttonInbox   = "📩 Inbox"
	buttonCompose = "✍️ Compose"

	// MaxTextLen is the display budget for a full message.
	MaxTextLen      = 4000
	truncatedMarker = "\n\n[text truncated]"
	previewLen      = 50

	readPrefix = "read_"

	textMenu          = "Hi! I am your Gmail bot. What shall we do?"
	textAuthError     = "❌ Gmail authorization failed."
	textChecking      = "🔄 Checking mail..."
	textInboxEmpty    = "📭 Inbox is empty."
	textProviderError = "❌ Could not reach Gmail. Try again later."
	textStale         = "⚠️ This list is stale. Refresh the inbox."
	textLoading       = "🔄 Loading full text..."
	textAskRecipient  = "Enter the recipient email:"
	textAskSubject    = "Enter the subject:"
	textAskBody       = "Enter the message text:"
	textEmptyInput    = "Please send some text."
	textSending       = "🚀 Sending..."
	textSent          = "✅ Message sent!"
	textSendFailed    = "❌ Failed to send the message."
	textCancelled     = "Cancelled."
)

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(buttonInbox),
		tgbotapi.NewKeyboardButton(buttonCompose),
	))
	kb.ResizeKeyboard = true
	return kb
}

// Truncate cuts text to limit UTF-16 code units, the unit Telegram measures
// message length in, appending a marker when cut.
func Truncate(text string, limit int) string {
	units := 0
	for i, r := range text {
		n := utf16.RuneLen(r)
		if units+n > limit {
			return text[:i] + truncatedMarker
		}
		units += n
	}
	return text
}

func preview(s string) string {
	if utf8.RuneCountInString(s) > previewLen {
		s = string([]rune(s)[:previewLen])
	}
	return s + "..."
}

// listingText renders the listing in Telegram HTML. Gmail snippets arrive
// entity-encoded, so they are decoded before cutting and escaped once.
func listingText(summaries []gmail.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📬 <b>Latest %d messages:</b>\n\n", len(summaries))
	for i, m := range summaries {
		fmt.Fprintf(&b, "%d. 👤 <b>From:</b> %s\n📝 <b>Subject:</b> %s\n📎 %s\n\n",
			i+1, html.EscapeString(m.From), html.EscapeString(m.Subject), html.EscapeString(preview(html.UnescapeString(m.Snippet))))
	}
	b.WriteString("👇 <i>Tap a number to read the full message:</i>")
	return b.String()
}

func listingButtons(gen uint64, n int) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, n)
	for i := 1; i <= n; i++ {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("📖 %d", i), readData(gen, i)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func readData(gen uint64, i int) string {
	return fmt.Sprintf("%s%d_%d", readPrefix, gen, i)
}

// parseReadData decodes "read_<generation>_<index>".
func parseReadData(data string) (gen uint64, i int, ok bool) {
	rest, found := strings.CutPrefix(data, readPrefix)
	if !found {
		return 0, 0, false
	}
	genStr, idxStr, found := strings.Cut(rest, "_")
	if !found {
		return 0, 0, false
	}
	gen, err := strconv.ParseUint(genStr, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	i, err = strconv.Atoi(idxStr)
	if err != nil {
		return 0, 0, false
	}
	return gen, i, true
}
