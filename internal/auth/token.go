package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Rqwannn/Moodiary/internal/config"
)

const (
	defaultAccessTokenDuration  = 30 * time.Minute
	defaultRefreshTokenDuration = 72 * time.Hour
	defaultAlgorithm            = "HS256"
)

type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

// Subject identifies the account a session token was issued to.
type Subject struct {
	Email     string
	AccountID uuid.UUID
}

// Claims is the signed payload of a session token. The subject email travels in "sub".
type Claims struct {
	UserID string    `json:"user_id"`
	Kind   TokenKind `json:"type"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies typed session tokens with a symmetric secret.
type TokenCodec struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenCodec(cfg *config.AuthConfig) (*TokenCodec, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret is required")
	}

	alg := cfg.Algorithm
	if alg == "" {
		alg = defaultAlgorithm
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", alg)
	}

	accessTTL := cfg.AccessTokenDuration
	if accessTTL == 0 {
		accessTTL = defaultAccessTokenDuration
	}
	refreshTTL := cfg.RefreshTokenDuration
	if refreshTTL == 0 {
		refreshTTL = defaultRefreshTokenDuration
	}

	return &TokenCodec{
		secret:     []byte(cfg.JWTSecret),
		method:     method,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

func (c *TokenCodec) IssueAccess(sub Subject) (string, error) {
	return c.issue(sub, AccessToken, c.accessTTL)
}

func (c *TokenCodec) IssueRefresh(sub Subject) (string, error) {
	return c.issue(sub, RefreshToken, c.refreshTTL)
}

func (c *TokenCodec) issue(sub Subject, kind TokenKind, ttl time.Duration) (string, error) {
	now := c.now()
	claims := &Claims{
		UserID: sub.AccountID.String(),
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.Email,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(c.method, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Verify checks signature, expiry, required claims and kind, in that order.
// Every failure is reported as ErrInvalidToken.
func (c *TokenCodec) Verify(tokenString string, expected TokenKind) (Subject, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, c.keyFunc,
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !token.Valid {
		return Subject{}, ErrInvalidToken
	}

	if claims.Subject == "" || claims.Kind != expected {
		return Subject{}, ErrInvalidToken
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Subject{}, ErrInvalidToken
	}

	return Subject{Email: claims.Subject, AccountID: id}, nil
}

func (c *TokenCodec) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method.Alg() != c.method.Alg() {
		return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
	}
	return c.secret, nil
}
