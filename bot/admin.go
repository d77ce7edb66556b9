package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"filelinkbot/database"
	"filelinkbot/services"
	"filelinkbot/utils"
)

const adminHelp = "🛠 *Admin Commands*\n" +
	"-------------------\n" +
	"• `/batch start` - Start batch\n" +
	"• `/batch done [caption]` - Finish batch\n" +
	"• `/batch cancel` - Drop the open batch\n" +
	"• `/batch status` - Show the open batch\n" +
	"• `/addchannel <id> <link>` - Add force sub\n" +
	"• `/delchannel <id>` - Remove force sub\n" +
	"• `/channels` - List force sub channels\n" +
	"• `/publish <id> <caption>` - Post (Reply to link)\n" +
	"• `/stat <batch_id>` - Check views"

const batchUsage = "Usage:\n" +
	"`/batch start` - Start collecting files\n" +
	"`/batch done` - Create link\n" +
	"`/batch cancel` - Discard collected files\n" +
	"`/batch status` - Show collected files"

// handleFile backs up an admin upload and records it.
func (b *Bot) handleFile(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := chatIDOf(msg)
	file := services.SubmittedFile{
		ChatID:    chatID,
		MessageID: msg.MessageID,
		FileID:    fileIDOf(msg),
		Caption:   msg.Caption,
	}

	res, err := b.Ingest.Submit(ctx, b.AdminID, file)
	var backupErr *services.BackupError
	switch {
	case errors.As(err, &backupErr):
		return b.SendMessage(chatID, fmt.Sprintf("⚠️ Backup Failed: %v\nCheck channel permissions!", backupErr.Err))
	case err != nil:
		return b.reportError(chatID, "receive file", err)
	}

	if res.Mode == database.ModeBatching {
		return b.SendMessage(chatID, fmt.Sprintf("➕ Added to Batch. (Total: %d)", res.Pending))
	}

	link := utils.DeepLink(b.Username, res.BatchID)
	return b.SendMarkdown(chatID, fmt.Sprintf(
		"✅ *File Saved & Backed Up!*\n\n🔗 `%s`\n\nReply with `/publish <channel_id>` to post this.", link))
}

func (b *Bot) handleBatch(ctx context.Context, msg *tgbotapi.Message, args []string) error {
	chatID := chatIDOf(msg)
	if len(args) == 0 {
		return b.SendMarkdown(chatID, batchUsage)
	}

	switch strings.ToLower(args[0]) {
	case "start":
		discarded, err := b.Ingest.BeginBatch(ctx, b.AdminID)
		if errors.Is(err, services.ErrBatchInProgress) {
			return b.SendMarkdown(chatID, "⚠️ A batch is already open. Use `/batch done` or `/batch cancel` first.")
		}
		if err != nil {
			return b.reportError(chatID, "begin batch", err)
		}
		text := "🟢 *Batch Mode ON*.\nSend your files now. They will be auto-backed up."
		if discarded > 0 {
			text += fmt.Sprintf("\n(%d files from the previous batch were discarded)", discarded)
		}
		return b.SendMarkdown(chatID, text)

	case "done":
		caption := strings.Join(args[1:], " ")
		res, err := b.Ingest.FinalizeBatch(ctx, b.AdminID, caption)
		if errors.Is(err, services.ErrInvalidState) {
			return b.SendMessage(chatID, "⚠️ You are not in batch mode or no files sent.")
		}
		if err != nil {
			return b.reportError(chatID, "finalize batch", err)
		}
		link := utils.DeepLink(b.Username, res.BatchID)
		return b.SendMarkdown(chatID, fmt.Sprintf(
			"🏁 *Batch Created!* (%d files)\n🔗 `%s`\n\nReply with `/publish <channel_id>` to post.", res.Files, link))

	case "cancel":
		discarded, cancelled, err := b.Ingest.CancelBatch(ctx, b.AdminID)
		if err != nil {
			return b.reportError(chatID, "cancel batch", err)
		}
		if !cancelled {
			return b.SendMessage(chatID, "ℹ️ No batch in progress.")
		}
		return b.SendMessage(chatID, fmt.Sprintf("❌ Batch cancelled. (%d files discarded)", discarded))

	case "status":
		st, err := b.Ingest.Status(ctx, b.AdminID)
		if err != nil {
			return b.reportError(chatID, "batch status", err)
		}
		if st.Mode != database.ModeBatching {
			return b.SendMessage(chatID, "ℹ️ No batch in progress.")
		}
		return b.SendMessage(chatID, fmt.Sprintf("📦 Batch open with %d files.", len(st.PendingFiles)))
	}

	return b.SendMarkdown(chatID, batchUsage)
}

// handlePublish posts the link found in the replied-to message to a channel.
func (b *Bot) handlePublish(msg *tgbotapi.Message, args []string) error {
	chatID := chatIDOf(msg)
	reply := msg.ReplyToMessage
	if reply == nil {
		return b.SendMessage(chatID, "⚠️ Reply to a message containing the link/file you want to publish.")
	}
	if len(args) == 0 {
		return b.SendMarkdown(chatID, "⚠️ Usage: `/publish <channel_id> <Optional Caption>`")
	}

	channelID, err := utils.ParseChatID(args[0])
	if err != nil {
		return b.SendMessage(chatID, fmt.Sprintf("❌ Error: %v", err))
	}

	source := reply.Text
	if source == "" {
		source = reply.Caption
	}
	link, ok := utils.ExtractTelegramLink(source)
	if !ok {
		return b.SendMessage(chatID, "❌ Could not find a link in the replied message.")
	}

	text := publishText(strings.Join(args[1:], " "), link)

	var post tgbotapi.Chattable
	if len(reply.Photo) > 0 {
		photo := tgbotapi.NewPhoto(channelID, tgbotapi.FileID(reply.Photo[len(reply.Photo)-1].FileID))
		photo.Caption = text
		photo.ParseMode = tgbotapi.ModeMarkdown
		post = photo
	} else {
		m := tgbotapi.NewMessage(channelID, text)
		m.ParseMode = tgbotapi.ModeMarkdown
		post = m
	}

	if _, err := b.Client.Send(post); err != nil {
		b.Logger.Warn("publish failed", zap.Int64("channel_id", channelID), zap.Error(err))
		return b.SendMessage(chatID, fmt.Sprintf("❌ Error: %v", err))
	}
	return b.SendMarkdown(chatID, fmt.Sprintf("✅ Posted to `%d`!", channelID))
}

func publishText(caption, link string) string {
	if caption != "" {
		return fmt.Sprintf("%s\n\n📥 *Download:* [Click Here](%s)", caption, link)
	}
	return fmt.Sprintf("🎬 *New File Uploaded*\n\n📥 *Download:* [Click Here](%s)", link)
}

func (b *Bot) handleAddChannel(ctx context.Context, msg *tgbotapi.Message, args []string) error {
	chatID := chatIDOf(msg)
	if len(args) != 2 {
		return b.SendMarkdown(chatID, "⚠️ Usage: `/addchannel <channel_id> <invite_link>`")
	}

	channelID, err := utils.ParseChatID(args[0])
	if err != nil {
		return b.SendMessage(chatID, fmt.Sprintf("❌ Error: %v", err))
	}

	err = b.Channels.Add(ctx, channelID, args[1])
	if errors.Is(err, services.ErrInvalidChannel) {
		return b.SendMessage(chatID, fmt.Sprintf("❌ Error: %v", err))
	}
	if err != nil {
		return b.reportError(chatID, "add channel", err)
	}
	return b.SendMarkdown(chatID, fmt.Sprintf("✅ Force sub channel `%d` saved.", channelID))
}

func (b *Bot) handleRemoveChannel(ctx context.Context, msg *tgbotapi.Message, args []string) error {
	chatID := chatIDOf(msg)
	if len(args) != 1 {
		return b.SendMarkdown(chatID, "⚠️ Usage: `/delchannel <channel_id>`")
	}

	channelID, err := utils.ParseChatID(args[0])
	if err != nil {
		return b.SendMessage(chatID, fmt.Sprintf("❌ Error: %v", err))
	}

	err = b.Channels.Remove(ctx, channelID)
	if errors.Is(err, services.ErrNotFound) {
		return b.SendMessage(chatID, "ℹ️ That channel is not in the list.")
	}
	if err != nil {
		return b.reportError(chatID, "remove channel", err)
	}
	return b.SendMarkdown(chatID, fmt.Sprintf("🗑 Force sub channel `%d` removed.", channelID))
}

func (b *Bot) handleListChannels(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := chatIDOf(msg)
	channels, err := b.Channels.List(ctx)
	if err != nil {
		return b.reportError(chatID, "list channels", err)
	}
	if len(channels) == 0 {
		return b.SendMessage(chatID, "ℹ️ No force sub channels configured.")
	}

	var sb strings.Builder
	sb.WriteString("📢 Force sub channels:\n")
	for _, ch := range channels {
		fmt.Fprintf(&sb, "• %d - %s\n", ch.ChannelID, ch.InviteLink)
	}
	return b.SendMessage(chatID, sb.String())
}

func (b *Bot) handleStat(ctx context.Context, msg *tgbotapi.Message, args []string) error {
	chatID := chatIDOf(msg)
	if len(args) != 1 {
		return b.SendMarkdown(chatID, "⚠️ Usage: `/stat <batch_id>`")
	}

	batchID := args[0]
	if id, ok := utils.ParseBatchPayload(batchID); ok {
		batchID = id
	}

	batch, err := b.Batches.Resolve(ctx, batchID)
	if errors.Is(err, services.ErrNotFound) {
		return b.SendMessage(chatID, "❌ No batch with that id.")
	}
	if err != nil {
		return b.reportError(chatID, "batch stats", err)
	}
	return b.SendMarkdown(chatID, fmt.Sprintf("📊 Batch `%s`\nFiles: %d\nViews: %d",
		batch.BatchID, len(batch.FileIDs), batch.Views))
}

// reportError tells the admin that op failed and logs err.
func (b *Bot) reportError(chatID int64, op string, err error) error {
	b.Logger.Error("admin operation failed", zap.String("operation", op), zap.Error(err))
	if errors.Is(err, services.ErrStoreUnavailable) {
		return b.SendMessage(chatID, fmt.Sprintf("⚠️ Storage unavailable: %v", err))
	}
	return b.SendMessage(chatID, fmt.Sprintf("❌ Error: %v", err))
}
