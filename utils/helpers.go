package utils

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"
)

// BatchIDLength is the number of characters in a generated batch id.
const BatchIDLength = 8

// HashPassword هش کردن رمز عبور
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// VerifyPassword بررسی رمز عبور
func VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// NewBatchID returns the first BatchIDLength hex characters of a random UUID.
func NewBatchID() string {
	return uuid.NewString()[:BatchIDLength]
}

// NormalizeText trims s and converts it to Unicode NFC.
func NormalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
