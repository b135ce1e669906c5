package notify

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mikey/llm-review-triage/internal/core"
	"go.uber.org/zap"
)

// telegramMessageLimit is the maximum message length accepted by the Bot API
const telegramMessageLimit = 4096

// MessageSender is the part of the Bot API the notifier needs
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts reply drafts to a Telegram chat
type TelegramNotifier struct {
	bot    MessageSender
	chatID int64
	logger *zap.Logger
}

// NewTelegramNotifier connects to the Bot API with the given token
func NewTelegramNotifier(token string, chatID int64, logger *zap.Logger) (*TelegramNotifier, error) {
	if token == "" {
		return nil, errors.New("telegram bot token is required")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return NewTelegramNotifierWithSender(bot, chatID, logger)
}

// NewTelegramNotifierWithSender creates a notifier around an existing sender
func NewTelegramNotifierWithSender(bot MessageSender, chatID int64, logger *zap.Logger) (*TelegramNotifier, error) {
	if chatID == 0 {
		return nil, errors.New("telegram chat id is required")
	}
	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
		logger: logger,
	}, nil
}

// Notify sends the draft as a plain-text chat message
func (n *TelegramNotifier) Notify(ctx context.Context, draft *core.ReplyDraft) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, truncate(Subject(draft)+"\n\n"+Body(draft), telegramMessageLimit))
	msg.DisableWebPagePreview = true

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	n.logger.Info("Reply draft posted to telegram",
		zap.Int("review_id", draft.Review.ID),
		zap.Int64("chat_id", n.chatID))
	return nil
}

// truncate cuts s to at most limit runes, marking the cut with an ellipsis
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}
