package session

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kirillkom/claimsense/internal/core/domain"
)

const tokenIssuer = "claimsense"

// JWTIssuer signs HS256 tokens whose subject is the server-side session id.
// The token carries no profile data; the session store is the source of truth.
type JWTIssuer struct {
	key    []byte
	parser *jwt.Parser
}

// NewJWTIssuer uses key, or a random per-process key when key is empty.
func NewJWTIssuer(key string) (*JWTIssuer, error) {
	secret := []byte(strings.TrimSpace(key))
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate session signing key: %w", err)
		}
	}
	return &JWTIssuer{
		key: secret,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(tokenIssuer),
			jwt.WithExpirationRequired(),
		),
	}, nil
}

func (j *JWTIssuer) Issue(session domain.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   session.ID,
		IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.key)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (j *JWTIssuer) Parse(token string) (string, error) {
	var claims jwt.RegisteredClaims
	if _, err := j.parser.ParseWithClaims(strings.TrimSpace(token), &claims, func(*jwt.Token) (any, error) {
		return j.key, nil
	}); err != nil {
		return "", fmt.Errorf("parse session token: %w", err)
	}
	if claims.Subject == "" {
		return "", errors.New("parse session token: empty subject")
	}
	return claims.Subject, nil
}
