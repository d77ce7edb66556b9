package bot

import (
	"context"
	"fmt"
	"runtime/debug"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"filelinkbot/database"
	"filelinkbot/services"
)

// Client is the part of *tgbotapi.BotAPI the bot uses.
type Client interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	SendMediaGroup(config tgbotapi.MediaGroupConfig) ([]tgbotapi.Message, error)
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
}

// UpdateSource delivers updates by long polling.
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Ingest interface {
	Submit(ctx context.Context, adminID int64, file services.SubmittedFile) (services.ReceiveResult, error)
	BeginBatch(ctx context.Context, adminID int64) (int, error)
	FinalizeBatch(ctx context.Context, adminID int64, caption string) (services.FinalizeResult, error)
	CancelBatch(ctx context.Context, adminID int64) (int, bool, error)
	Status(ctx context.Context, adminID int64) (database.AdminState, error)
}

type Batches interface {
	Resolve(ctx context.Context, batchID string) (*database.Batch, error)
	RecordView(ctx context.Context, batchID string) error
}

type Channels interface {
	List(ctx context.Context) ([]database.ForceSubChannel, error)
	Add(ctx context.Context, channelID int64, inviteLink string) error
	Remove(ctx context.Context, channelID int64) error
}

type Users interface {
	Touch(ctx context.Context, telegramID int64, firstName string) error
}

// Deps wires the bot to telegram and the services.
type Deps struct {
	Client   Client
	Username string
	AdminID  int64
	Ingest   Ingest
	Batches  Batches
	Channels Channels
	Users    Users
	Logger   *zap.Logger
}

type Bot struct {
	Deps
}

func New(deps Deps) *Bot {
	return &Bot{Deps: deps}
}

// HandleUpdate processes a single update. Errors are returned only for
// failures the user could not be told about.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.Logger.Error("panic recovered in HandleUpdate",
				zap.Any("panic_value", r),
				zap.String("stack", string(debug.Stack())))
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	LoggingMiddleware(b.Logger, &update)

	if update.Message == nil || update.Message.From == nil {
		return nil
	}
	return b.handleMessage(ctx, update.Message)
}

// Poll reads updates from src and handles them in order until ctx is
// cancelled. It returns only after the last started update is done.
func (b *Bot) Poll(ctx context.Context, src UpdateSource) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	// an update that started is finished even if shutdown begins meanwhile
	handleCtx := context.WithoutCancel(ctx)

	updates := src.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			src.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			// one at a time: uploads must reach the batch in the order sent
			if err := b.HandleUpdate(handleCtx, update); err != nil {
				b.Logger.Error("handle update", zap.Int("update_id", update.UpdateID), zap.Error(err))
			}
		}
	}
}

// RegisterWebhook points telegram at url. A non-empty secret is echoed by
// telegram in the X-Telegram-Bot-Api-Secret-Token header of every update.
func RegisterWebhook(client Client, url, secret string) error {
	if secret == "" {
		wh, err := tgbotapi.NewWebhook(url)
		if err != nil {
			return fmt.Errorf("build webhook config: %w", err)
		}
		if _, err := client.Request(wh); err != nil {
			return fmt.Errorf("set webhook: %w", err)
		}
		return nil
	}

	// the v5 WebhookConfig has no secret_token field
	params := tgbotapi.Params{"url": url, "secret_token": secret}
	if _, err := client.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	return nil
}

// RemoveWebhook is required before long polling can receive updates.
func RemoveWebhook(client Client) error {
	if _, err := client.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	return nil
}

// SendMessage ارسال پیام
func (b *Bot) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.Client.Send(msg)
	return err
}

// SendMarkdown sends text rendered with telegram's legacy Markdown.
func (b *Bot) SendMarkdown(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	_, err := b.Client.Send(msg)
	return err
}

// SendWithButtons ارسال پیام با دکمه‌ها
func (b *Bot) SendWithButtons(chatID int64, text string, buttons [][]tgbotapi.InlineKeyboardButton) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	_, err := b.Client.Send(msg)
	return err
}
