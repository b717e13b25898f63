// Package auth issues and verifies identity tokens, resolves the identity of
// each inbound request, and enforces ownership of resources.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"looplane/internal/apperrors"
	"looplane/internal/config"

	"github.com/dgrijalva/jwt-go"
)

var (
	ErrEmptyToken     = errors.New("token is empty")
	ErrMissingSubject = errors.New("token has no subject")
)

// Claims is the identity payload carried by a token. It never holds password
// material.
type Claims struct {
	SubjectID string `json:"sub"`
	Username  string `json:"username"`
	Email     string `json:"email"`
}

type tokenClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.StandardClaims
}

// Issue signs claims with secret using HS256. No expiry or issue time is
// embedded, so identical inputs produce identical tokens.
func Issue(claims Claims, secret []byte) (string, error) {
	if claims.SubjectID == "" {
		return "", ErrMissingSubject
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Username:       claims.Username,
		Email:          claims.Email,
		StandardClaims: jwt.StandardClaims{Subject: claims.SubjectID},
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the token signature against secret and returns its claims.
// Every failure is a JWT_DECODE_ERROR.
func Verify(token string, secret []byte) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, apperrors.JWTDecode(ErrEmptyToken)
	}

	parsed := &tokenClaims{}
	tok, err := jwt.ParseWithClaims(token, parsed, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return Claims{}, apperrors.JWTDecode(err)
	}
	if !tok.Valid {
		return Claims{}, apperrors.JWTDecode(errors.New("token is not valid"))
	}
	if parsed.Subject == "" {
		return Claims{}, apperrors.JWTDecode(ErrMissingSubject)
	}

	return Claims{
		SubjectID: parsed.Subject,
		Username:  parsed.Username,
		Email:     parsed.Email,
	}, nil
}

// TokenService binds Issue and Verify to the configured signing secret.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService using cfg.JWTSecret.
func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{secret: []byte(cfg.JWTSecret)}
}

func (s *TokenService) Issue(claims Claims) (string, error) {
	return Issue(claims, s.secret)
}

func (s *TokenService) Verify(token string) (Claims, error) {
	return Verify(token, s.secret)
}
