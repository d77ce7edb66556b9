package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"filelinkbot/database"
	"filelinkbot/services"
	"filelinkbot/utils"
)

// mediaGroupSize is telegram's upper bound for one sendMediaGroup call.
const mediaGroupSize = 10

// handleStart greets the user or, for a batch deep link, delivers the files
// once every force sub channel has been joined.
func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := chatIDOf(msg)
	user := msg.From

	if err := b.Users.Touch(ctx, user.ID, user.FirstName); err != nil {
		b.Logger.Warn("record user", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	payload := strings.TrimSpace(msg.CommandArguments())

	pending, err := b.pendingChannels(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("force sub check: %w", err)
	}
	if len(pending) > 0 {
		return b.sendJoinPrompt(chatID, pending, payload)
	}

	batchID, ok := utils.ParseBatchPayload(payload)
	if !ok {
		return b.SendMessage(chatID, fmt.Sprintf("👋 Welcome %s!\nI am a bot to store and share files.", user.FirstName))
	}

	batch, err := b.Batches.Resolve(ctx, batchID)
	if errors.Is(err, services.ErrNotFound) {
		return b.SendMessage(chatID, "❌ Link Expired.")
	}
	if err != nil {
		return fmt.Errorf("resolve batch %s: %w", batchID, err)
	}

	if err := b.deliver(chatID, batch); err != nil {
		return fmt.Errorf("deliver batch %s: %w", batchID, err)
	}

	if err := b.Batches.RecordView(ctx, batch.BatchID); err != nil {
		b.Logger.Warn("record view", zap.String("batch_id", batch.BatchID), zap.Error(err))
	}
	return nil
}

// pendingChannels returns the force sub channels userID has not joined.
// Channels the bot cannot inspect are skipped.
func (b *Bot) pendingChannels(ctx context.Context, userID int64) ([]database.ForceSubChannel, error) {
	channels, err := b.Channels.List(ctx)
	if err != nil {
		return nil, err
	}

	var pending []database.ForceSubChannel
	for _, ch := range channels {
		member, err := b.Client.GetChatMember(tgbotapi.GetChatMemberConfig{
			ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
				ChatID: ch.ChannelID,
				UserID: userID,
			},
		})
		if err != nil {
			if isBadRequest(err) {
				b.Logger.Warn("cannot check channel membership, skipping",
					zap.Int64("channel_id", ch.ChannelID), zap.Error(err))
				continue
			}
			return nil, fmt.Errorf("get chat member in %d: %w", ch.ChannelID, err)
		}

		switch member.Status {
		case "left", "kicked":
			pending = append(pending, ch)
		}
	}
	return pending, nil
}

func (b *Bot) sendJoinPrompt(chatID int64, pending []database.ForceSubChannel, payload string) error {
	buttons := make([][]tgbotapi.InlineKeyboardButton, 0, len(pending)+1)
	for _, ch := range pending {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("Join Here", ch.InviteLink),
		))
	}
	buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonURL("🔄 Try Again", utils.StartLink(b.Username, payload)),
	))

	return b.SendWithButtons(chatID, "⚠️ *Please join our channels first!*", buttons)
}

// deliver sends the batch files to chatID. The caption, if any, goes on
// the first file only.
func (b *Bot) deliver(chatID int64, batch *database.Batch) error {
	caption := ""
	if batch.Caption != nil {
		caption = *batch.Caption
	}

	for start := 0; start < len(batch.FileIDs); start += mediaGroupSize {
		end := start + mediaGroupSize
		if end > len(batch.FileIDs) {
			end = len(batch.FileIDs)
		}
		chunk := batch.FileIDs[start:end]

		chunkCaption := ""
		if start == 0 {
			chunkCaption = caption
		}

		// a media group needs at least two items
		if len(chunk) == 1 {
			doc := tgbotapi.NewDocument(chatID, tgbotapi.FileID(chunk[0]))
			doc.Caption = chunkCaption
			if _, err := b.Client.Send(doc); err != nil {
				return err
			}
			continue
		}

		media := make([]interface{}, 0, len(chunk))
		for i, fileID := range chunk {
			item := tgbotapi.NewInputMediaDocument(tgbotapi.FileID(fileID))
			if i == 0 {
				item.Caption = chunkCaption
			}
			media = append(media, item)
		}
		if _, err := b.Client.SendMediaGroup(tgbotapi.NewMediaGroup(chatID, media)); err != nil {
			return err
		}
	}
	return nil
}

func isBadRequest(err error) bool {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusBadRequest
	}
	var apiErrVal tgbotapi.Error
	if errors.As(err, &apiErrVal) {
		return apiErrVal.Code == http.StatusBadRequest
	}
	return false
}
