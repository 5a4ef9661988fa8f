package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rqwannn/Moodiary/internal/config"
)

func newTestCodec(t *testing.T) *TokenCodec {
	codec, err := NewTokenCodec(newTestConfig())
	require.NoError(t, err)
	return codec
}

func testSubject() Subject {
	return Subject{Email: testEmail, AccountID: uuid.New()}
}

func TestNewTokenCodec(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.AuthConfig)
		wantErr bool
	}{
		{name: "defaults"},
		{name: "empty algorithm falls back to HS256", mutate: func(c *config.AuthConfig) { c.Algorithm = "" }},
		{name: "HS512", mutate: func(c *config.AuthConfig) { c.Algorithm = "HS512" }},
		{name: "missing secret", mutate: func(c *config.AuthConfig) { c.JWTSecret = "" }, wantErr: true},
		{name: "asymmetric algorithm", mutate: func(c *config.AuthConfig) { c.Algorithm = "RS256" }, wantErr: true},
		{name: "unknown algorithm", mutate: func(c *config.AuthConfig) { c.Algorithm = "none" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			codec, err := NewTokenCodec(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, codec)
		})
	}
}

func TestTokenCodec_DefaultLifetimes(t *testing.T) {
	cfg := newTestConfig()
	cfg.AccessTokenDuration = 0
	cfg.RefreshTokenDuration = 0

	codec, err := NewTokenCodec(cfg)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, codec.accessTTL)
	assert.Equal(t, 72*time.Hour, codec.refreshTTL)
}

func TestTokenCodec_KindIsEnforced(t *testing.T) {
	codec := newTestCodec(t)
	sub := testSubject()

	access, err := codec.IssueAccess(sub)
	require.NoError(t, err)
	refresh, err := codec.IssueRefresh(sub)
	require.NoError(t, err)

	tests := []struct {
		name     string
		token    string
		expected TokenKind
		wantErr  bool
	}{
		{name: "access as access", token: access, expected: AccessToken},
		{name: "refresh as refresh", token: refresh, expected: RefreshToken},
		{name: "access as refresh", token: access, expected: RefreshToken, wantErr: true},
		{name: "refresh as access", token: refresh, expected: AccessToken, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := codec.Verify(tt.token, tt.expected)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, sub, got)
		})
	}
}

func TestTokenCodec_Expiry(t *testing.T) {
	codec := newTestCodec(t)
	clock := &testClock{now: time.Now()}
	codec.now = clock.Now
	sub := testSubject()

	access, err := codec.IssueAccess(sub)
	require.NoError(t, err)
	refresh, err := codec.IssueRefresh(sub)
	require.NoError(t, err)

	clock.Advance(29 * time.Minute)
	_, err = codec.Verify(access, AccessToken)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = codec.Verify(access, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Refresh tokens outlive access tokens.
	_, err = codec.Verify(refresh, RefreshToken)
	require.NoError(t, err)

	clock.Advance(72 * time.Hour)
	_, err = codec.Verify(refresh, RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenCodec_Tampering(t *testing.T) {
	codec := newTestCodec(t)
	token, err := codec.IssueAccess(testSubject())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	flip := func(s string, i int) string {
		b := []byte(s)
		if b[i] == 'a' {
			b[i] = 'b'
		} else {
			b[i] = 'a'
		}
		return string(b)
	}

	tests := map[string]string{
		"header":    flip(parts[0], 5) + "." + parts[1] + "." + parts[2],
		"payload":   parts[0] + "." + flip(parts[1], 10) + "." + parts[2],
		"signature": parts[0] + "." + parts[1] + "." + flip(parts[2], 0),
		"truncated": parts[0] + "." + parts[1],
		"garbage":   "invalid.token.here",
		"empty":     "",
	}

	for name, tampered := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Verify(tampered, AccessToken)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenCodec_WrongSecretOrAlgorithm(t *testing.T) {
	codec := newTestCodec(t)
	sub := testSubject()

	otherCfg := newTestConfig()
	otherCfg.JWTSecret = "another-secret"
	other, err := NewTokenCodec(otherCfg)
	require.NoError(t, err)
	foreign, err := other.IssueAccess(sub)
	require.NoError(t, err)

	_, err = codec.Verify(foreign, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	strongerCfg := newTestConfig()
	strongerCfg.Algorithm = "HS512"
	stronger, err := NewTokenCodec(strongerCfg)
	require.NoError(t, err)
	hs512, err := stronger.IssueAccess(sub)
	require.NoError(t, err)

	_, err = codec.Verify(hs512, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID: sub.AccountID.String(),
		Kind:   AccessToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.Email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = codec.Verify(unsigned, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenCodec_MissingClaims(t *testing.T) {
	codec := newTestCodec(t)
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name   string
		claims *Claims
	}{
		{
			name: "missing subject",
			claims: &Claims{
				UserID:           uuid.NewString(),
				Kind:             AccessToken,
				RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp},
			},
		},
		{
			name: "missing user id",
			claims: &Claims{
				Kind:             AccessToken,
				RegisteredClaims: jwt.RegisteredClaims{Subject: testEmail, ExpiresAt: exp},
			},
		},
		{
			name: "malformed user id",
			claims: &Claims{
				UserID:           "not-a-uuid",
				Kind:             AccessToken,
				RegisteredClaims: jwt.RegisteredClaims{Subject: testEmail, ExpiresAt: exp},
			},
		},
		{
			name: "missing kind",
			claims: &Claims{
				UserID:           uuid.NewString(),
				RegisteredClaims: jwt.RegisteredClaims{Subject: testEmail, ExpiresAt: exp},
			},
		},
		{
			name: "missing expiry",
			claims: &Claims{
				UserID:           uuid.NewString(),
				Kind:             AccessToken,
				RegisteredClaims: jwt.RegisteredClaims{Subject: testEmail},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tt.claims).SignedString(codec.secret)
			require.NoError(t, err)

			_, err = codec.Verify(token, AccessToken)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
