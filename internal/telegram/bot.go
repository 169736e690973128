package telegram

import (
	"fmt"
	"strings"

	"go-locator/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// sender is the part of tgbotapi.BotAPI the bot uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api    sender
	chatID int64
}

func NewBot(token string, chatID int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &Bot{api: api, chatID: chatID}, nil
}

func newBotWith(api sender, chatID int64) *Bot {
	return &Bot{api: api, chatID: chatID}
}

var markdownReplacer = strings.NewReplacer(
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
	")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
	"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
	"}", "\\}", ".", "\\.", "!", "\\!",
)

func escapeMarkdown(text string) string {
	return markdownReplacer.Replace(text)
}

// FormatListing renders a listing as a MarkdownV2 message body.
func FormatListing(l models.Listing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n", escapeMarkdown(l.Title))
	if l.Company != "" {
		fmt.Fprintf(&b, "🏢 %s\n", escapeMarkdown(l.Company))
	}
	if l.Category == models.CategoryAccommodation {
		price := l.Price
		if price == "" {
			price = models.NotAvailable
		}
		fmt.Fprintf(&b, "💰 %s\n", escapeMarkdown(price))
	}

	loc := l.Location
	if loc == "" {
		loc = models.NotAvailable
	}
	fmt.Fprintf(&b, "📍 %s", escapeMarkdown(loc))
	if l.Distance != "" && l.Distance != models.NotAvailable {
		fmt.Fprintf(&b, " \\(%s\\)", escapeMarkdown(l.Distance))
	}
	b.WriteString("\n")

	if l.PostedDate != nil {
		fmt.Fprintf(&b, "📅 %s\n", escapeMarkdown(*l.PostedDate))
	}
	fmt.Fprintf(&b, "🔖 Source: %s\n", escapeMarkdown(l.Source))
	return b.String()
}

func (b *Bot) SendListing(l models.Listing) error {
	msg := tgbotapi.NewMessage(b.chatID, FormatListing(l))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if strings.HasPrefix(l.Link, "http") {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("🔗 View Listing", l.Link)),
		)
	}
	_, err := b.api.Send(msg)
	return err
}

// SendHTML sends a message formatted with Telegram's HTML subset.
func (b *Bot) SendHTML(text string) error {
	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendError(err error) error {
	msg := tgbotapi.NewMessage(b.chatID, fmt.Sprintf("❌ Error: %v", err))
	_, sendErr := b.api.Send(msg)
	return sendErr
}

func (b *Bot) SendStatus(message string) error {
	msg := tgbotapi.NewMessage(b.chatID, "ℹ️ "+message)
	_, err := b.api.Send(msg)
	return err
}
