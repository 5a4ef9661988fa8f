package auth

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Define a custom type for context keys
type contextKey string

const (
	// SubjectContextKey is the key used to store the verified token subject in the context
	SubjectContextKey contextKey = "subject"
	// TokenContextKey is the key used to store the raw bearer token in the context
	TokenContextKey contextKey = "token"
)

type AuthMiddleware struct {
	tokens *TokenCodec
}

func NewAuthMiddleware(tokens *TokenCodec) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
	}
}

// AuthenticationMiddleware accepts "authorization: Bearer <access token>" metadata.
// Refresh tokens are rejected.
func (m *AuthMiddleware) AuthenticationMiddleware(ctx context.Context) (context.Context, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing metadata")
	}

	values := md.Get("authorization")
	if len(values) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	token := bearerToken(values[0])
	if token == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	sub, err := m.tokens.Verify(token, AccessToken)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	ctx = context.WithValue(ctx, SubjectContextKey, sub)
	return context.WithValue(ctx, TokenContextKey, token), nil
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

// GetSubjectFromContext returns the subject stored by AuthenticationMiddleware.
func GetSubjectFromContext(ctx context.Context) (Subject, error) {
	sub, ok := ctx.Value(SubjectContextKey).(Subject)
	if !ok {
		return Subject{}, errors.New("subject not found in context")
	}
	return sub, nil
}

func GetTokenFromContext(ctx context.Context) (string, error) {
	token, ok := ctx.Value(TokenContextKey).(string)
	if !ok || token == "" {
		return "", errors.New("token not found in context")
	}
	return token, nil
}
