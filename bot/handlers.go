package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.IsCommand() {
		return b.handleCommand(ctx, msg)
	}

	if fileIDOf(msg) != "" && b.IsAdmin(msg) {
		return b.handleFile(ctx, msg)
	}

	return nil
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.Command() == "start" {
		return b.handleStart(ctx, msg)
	}

	// everything else is admin only and silently ignored for others
	if !b.IsAdmin(msg) {
		return nil
	}

	args := strings.Fields(msg.CommandArguments())
	switch msg.Command() {
	case "batch":
		return b.handleBatch(ctx, msg, args)
	case "publish":
		return b.handlePublish(msg, args)
	case "addchannel":
		return b.handleAddChannel(ctx, msg, args)
	case "delchannel":
		return b.handleRemoveChannel(ctx, msg, args)
	case "channels":
		return b.handleListChannels(ctx, msg)
	case "stat":
		return b.handleStat(ctx, msg, args)
	case "admin":
		return b.SendMarkdown(chatIDOf(msg), adminHelp)
	}
	return nil
}

// fileIDOf returns the id of the document, video, audio or largest photo
// attached to msg.
func fileIDOf(msg *tgbotapi.Message) string {
	switch {
	case msg.Document != nil:
		return msg.Document.FileID
	case msg.Video != nil:
		return msg.Video.FileID
	case msg.Audio != nil:
		return msg.Audio.FileID
	case len(msg.Photo) > 0:
		return msg.Photo[len(msg.Photo)-1].FileID
	}
	return ""
}
