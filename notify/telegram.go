package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// MaxTelegramMessage is the Telegram limit for one text message
const MaxTelegramMessage = 4096

// MessageSender is the part of *tgbotapi.BotAPI the notifier needs
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier sends the message to a fixed list of chats
type TelegramNotifier struct {
	bot     MessageSender
	chatIDs []int64
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewTelegramNotifier creates a notifier throttled to one message per second with a small burst
func NewTelegramNotifier(bot MessageSender, chatIDs []int64, logger *zap.Logger) *TelegramNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TelegramNotifier{
		bot:     bot,
		chatIDs: chatIDs,
		limiter: rate.NewLimiter(rate.Every(time.Second), 3),
		logger:  logger,
	}
}

// SetRateLimit replaces the outbound throttle
func (n *TelegramNotifier) SetRateLimit(limit rate.Limit, burst int) {
	n.limiter = rate.NewLimiter(limit, burst)
}

// Notify sends text to every chat, split into chunks Telegram accepts
func (n *TelegramNotifier) Notify(ctx context.Context, text string) error {
	var errs []error
	for _, chatID := range n.chatIDs {
		if err := n.SendText(ctx, chatID, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SendText sends text to one chat
func (n *TelegramNotifier) SendText(ctx context.Context, chatID int64, text string) error {
	for i, chunk := range SplitMessage(text, MaxTelegramMessage) {
		if err := n.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("failed to wait for telegram rate limit: %w", err)
		}
		if _, err := n.bot.Send(tgbotapi.NewMessage(chatID, chunk)); err != nil {
			return fmt.Errorf("failed to send telegram message to %d (part %d): %w", chatID, i+1, err)
		}
	}
	n.logger.Info("telegram message sent", zap.Int64("chat_id", chatID))
	return nil
}
