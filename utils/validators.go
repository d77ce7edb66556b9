package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// BatchPayloadPrefix prefixes a batch id in a /start deep-link payload.
const BatchPayloadPrefix = "batch_"

var (
	telegramLinkRe = regexp.MustCompile(`https?://t\.me/\S+`)
	inviteLinkRe   = regexp.MustCompile(`^https://t\.me/\S+$`)
)

// DeepLink builds the link that makes the bot deliver batchID on /start.
func DeepLink(botUsername, batchID string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s%s", botUsername, BatchPayloadPrefix, batchID)
}

// StartLink rebuilds the bot entry link for a /start payload, or the bare
// bot link when payload is empty.
func StartLink(botUsername, payload string) string {
	if payload == "" {
		return "https://t.me/" + botUsername
	}
	return fmt.Sprintf("https://t.me/%s?start=%s", botUsername, payload)
}

// ParseBatchPayload extracts the batch id from a "batch_<id>" payload.
func ParseBatchPayload(payload string) (string, bool) {
	if !strings.HasPrefix(payload, BatchPayloadPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(payload, BatchPayloadPrefix)
	if id == "" {
		return "", false
	}
	return id, true
}

// ExtractTelegramLink returns the first t.me link found in text.
func ExtractTelegramLink(text string) (string, bool) {
	link := telegramLinkRe.FindString(text)
	return link, link != ""
}

// ParseChatID parses a numeric telegram chat id such as -1001234567890.
func ParseChatID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chat id %q", s)
	}
	if id == 0 {
		return 0, fmt.Errorf("invalid chat id %q", s)
	}
	return id, nil
}

// ValidateInviteLink اعتبارسنجی لینک دعوت کانال
func ValidateInviteLink(link string) bool {
	return inviteLinkRe.MatchString(strings.TrimSpace(link))
}
