package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBatchID(t *testing.T) {
	re := regexp.MustCompile(`^[0-9a-f]{8}$`)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewBatchID()
		require.Regexp(t, re, id)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 90)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "s3cret"))
	assert.False(t, VerifyPassword(hash, "wrong"))
}

func TestNormalizeText(t *testing.T) {
	// "e" + combining acute accent composes to a single code point.
	assert.Equal(t, "caf\u00e9", NormalizeText("  cafe\u0301 "))
	assert.Equal(t, "", NormalizeText("   "))
}

func TestDeepLinks(t *testing.T) {
	assert.Equal(t, "https://t.me/filebot?start=batch_ab12cd34", DeepLink("filebot", "ab12cd34"))
	assert.Equal(t, "https://t.me/filebot?start=batch_x", StartLink("filebot", "batch_x"))
	assert.Equal(t, "https://t.me/filebot", StartLink("filebot", ""))
}

func TestParseBatchPayload(t *testing.T) {
	tests := []struct {
		in     string
		wantID string
		wantOK bool
	}{
		{"batch_ab12cd34", "ab12cd34", true},
		{"batch_", "", false},
		{"ab12cd34", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		id, ok := ParseBatchPayload(tc.in)
		assert.Equal(t, tc.wantOK, ok, tc.in)
		assert.Equal(t, tc.wantID, id, tc.in)
	}
}

func TestExtractTelegramLink(t *testing.T) {
	link, ok := ExtractTelegramLink("✅ Saved!\n\n🔗 https://t.me/filebot?start=batch_1 and https://t.me/other")
	require.True(t, ok)
	assert.Equal(t, "https://t.me/filebot?start=batch_1", link)

	_, ok = ExtractTelegramLink("no links here")
	assert.False(t, ok)
}

func TestParseChatID(t *testing.T) {
	id, err := ParseChatID(" -1001234567890 ")
	require.NoError(t, err)
	assert.Equal(t, int64(-1001234567890), id)

	_, err = ParseChatID("@channel")
	assert.Error(t, err)
	_, err = ParseChatID("0")
	assert.Error(t, err)
}

func TestValidateInviteLink(t *testing.T) {
	assert.True(t, ValidateInviteLink("https://t.me/+AbCdEf"))
	assert.True(t, ValidateInviteLink("https://t.me/mychannel"))
	assert.False(t, ValidateInviteLink("http://t.me/mychannel"))
	assert.False(t, ValidateInviteLink("https://example.com"))
}

func TestNewLogger(t *testing.T) {
	l, err := NewLogger("debug")
	require.NoError(t, err)
	require.NotNil(t, l)

	_, err = NewLogger("loud")
	assert.Error(t, err)
}
