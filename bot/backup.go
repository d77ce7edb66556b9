package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"filelinkbot/services"
)

// ChannelBackup forwards uploaded files to a fixed backup channel.
type ChannelBackup struct {
	client    Client
	channelID int64
}

func NewChannelBackup(client Client, channelID int64) *ChannelBackup {
	return &ChannelBackup{client: client, channelID: channelID}
}

func (c *ChannelBackup) Forward(ctx context.Context, file services.SubmittedFile) (services.BackupReceipt, error) {
	if err := ctx.Err(); err != nil {
		return services.BackupReceipt{}, err
	}

	fwd := tgbotapi.NewForward(c.channelID, file.ChatID, file.MessageID)
	sent, err := c.client.Send(fwd)
	if err != nil {
		return services.BackupReceipt{}, err
	}

	return services.BackupReceipt{
		FileID:          file.FileID,
		Caption:         file.Caption,
		BackupMessageID: sent.MessageID,
	}, nil
}
