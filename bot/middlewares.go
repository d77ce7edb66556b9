package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// IsAdmin reports whether the sender of msg is the configured admin.
func (b *Bot) IsAdmin(msg *tgbotapi.Message) bool {
	return msg.From != nil && msg.From.ID == b.AdminID
}

// LoggingMiddleware ثبت اطلاعات
func LoggingMiddleware(logger *zap.Logger, update *tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		logger.Debug("message received",
			zap.Int("update_id", update.UpdateID),
			zap.Int64("chat_id", chatIDOf(update.Message)),
			zap.Int64("from", update.Message.From.ID),
			zap.String("command", update.Message.Command()))
	case update.CallbackQuery != nil:
		logger.Debug("callback received",
			zap.Int("update_id", update.UpdateID),
			zap.Int64("from", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data))
	default:
		logger.Debug("update ignored", zap.Int("update_id", update.UpdateID))
	}
}

func chatIDOf(msg *tgbotapi.Message) int64 {
	if msg.Chat != nil {
		return msg.Chat.ID
	}
	return msg.From.ID
}
