package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"filelinkbot/utils"
)

const tokenTTL = 24 * time.Hour

// AuthService issues and checks tokens for the HTTP admin panel. There is a
// single admin account configured through the environment.
type AuthService struct {
	username     string
	passwordHash string
	secret       []byte
	now          func() time.Time
}

func NewAuthService(username, passwordHash, secret string) *AuthService {
	return &AuthService{
		username:     username,
		passwordHash: passwordHash,
		secret:       []byte(secret),
		now:          time.Now,
	}
}

// Login checks the credentials and returns a signed token.
func (s *AuthService) Login(username, password string) (string, error) {
	if s.passwordHash == "" || username != s.username {
		return "", ErrBadCredentials
	}
	if !utils.VerifyPassword(s.passwordHash, password) {
		return "", ErrBadCredentials
	}
	return s.GenerateJWT(username)
}

// GenerateJWT تولید JWT token
func (s *AuthService) GenerateJWT(username string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  username,
		"role": "admin",
		"exp":  now.Add(tokenTTL).Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyJWT تایید JWT token
func (s *AuthService) VerifyJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	if role, _ := claims["role"].(string); role != "admin" {
		return "", ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub != s.username {
		return "", ErrInvalidToken
	}
	return sub, nil
}
