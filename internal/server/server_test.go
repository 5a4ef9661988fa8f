package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/Rqwannn/Moodiary/internal/api"
	"github.com/Rqwannn/Moodiary/internal/auth"
	"github.com/Rqwannn/Moodiary/internal/config"
)

func newTestAppConfig() *config.AppConfig {
	return &config.AppConfig{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: "0"},
		GRPC: config.GRPCConfig{
			MaxReceiveMessageSize: 4 << 20,
			MaxSendMessageSize:    4 << 20,
		},
		Auth: config.AuthConfig{
			JWTSecret:            "server-test-secret",
			Algorithm:            "HS256",
			AccessTokenDuration:  30 * time.Minute,
			RefreshTokenDuration: 72 * time.Hour,
			MaxLoginAttempts:     5,
			LockoutDuration:      30 * time.Minute,
			BcryptCost:           bcrypt.MinCost,
			MaxConcurrentHashes:  2,
		},
	}
}

// startTestServer serves the auth API over an in-memory listener and returns a client for it.
func startTestServer(t *testing.T) *api.AuthClient {
	t.Helper()

	cfg := newTestAppConfig()
	log := zap.NewNop()

	svc, err := auth.NewService(&cfg.Auth, log, auth.NewMemoryRepository(), auth.NewMetrics(prometheus.NewRegistry()))
	require.NoError(t, err)

	srv := NewServer(Params{
		Config:         cfg,
		Logger:         log,
		AuthHandler:    auth.NewHandler(svc, log),
		AuthMiddleware: auth.NewAuthMiddleware(svc.Tokens()),
	})

	lis := bufconn.Listen(1 << 20)
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return api.NewAuthClient(conn)
}

func withBearer(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

func TestServer_AuthFlow(t *testing.T) {
	client := startTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	account, err := client.Register(ctx, &api.RegisterRequest{
		Email:           "a@b.com",
		Password:        "Abcdef1!",
		ConfirmPassword: "Abcdef1!",
		Name:            "Alice",
		PersonalityType: "INFJ",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, account.UID)
	assert.Equal(t, "a@b.com", account.Email)
	assert.True(t, account.IsActive)

	login, err := client.Login(ctx, &api.LoginRequest{Credential: "a@b.com", Password: "Abcdef1!"})
	require.NoError(t, err)
	assert.Equal(t, account.UID, login.UID)
	assert.Equal(t, "bearer", login.TokenType)

	validated, err := client.ValidateToken(ctx, &api.ValidateTokenRequest{Token: login.AccessToken})
	require.NoError(t, err)
	assert.True(t, validated.Valid)
	assert.Equal(t, "a@b.com", validated.Email)
	assert.Equal(t, account.UID, validated.UID)

	refreshed, err := client.RefreshToken(ctx, &api.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.Equal(t, login.RefreshToken, refreshed.RefreshToken)

	me, err := client.Me(withBearer(ctx, refreshed.AccessToken), &api.MeRequest{})
	require.NoError(t, err)
	assert.Equal(t, account.UID, me.UID)
	assert.NotNil(t, me.LastLogin)

	name := "Alice Cooper"
	updated, err := client.UpdateProfile(withBearer(ctx, login.AccessToken), &api.UpdateProfileRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)

	profile, err := client.GetProfile(withBearer(ctx, login.AccessToken), &api.GetProfileRequest{Email: "a@b.com"})
	require.NoError(t, err)
	assert.Equal(t, name, profile.Name)
}

func TestServer_ProtectedEndpointsRequireAccessToken(t *testing.T) {
	client := startTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := client.Register(ctx, &api.RegisterRequest{
		Email: "a@b.com", Password: "Abcdef1!", ConfirmPassword: "Abcdef1!", Name: "Alice",
	})
	require.NoError(t, err)
	login, err := client.Login(ctx, &api.LoginRequest{Credential: "a@b.com", Password: "Abcdef1!"})
	require.NoError(t, err)

	tests := []struct {
		name string
		ctx  context.Context
	}{
		{name: "no token", ctx: ctx},
		{name: "refresh token", ctx: withBearer(ctx, login.RefreshToken)},
		{name: "garbage token", ctx: withBearer(ctx, "not.a.token")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Me(tt.ctx, &api.MeRequest{})
			assert.Equal(t, codes.Unauthenticated, status.Code(err))

			_, err = client.GetProfile(tt.ctx, &api.GetProfileRequest{Email: "a@b.com"})
			assert.Equal(t, codes.Unauthenticated, status.Code(err))

			name := "Mallory"
			_, err = client.UpdateProfile(tt.ctx, &api.UpdateProfileRequest{Name: &name})
			assert.Equal(t, codes.Unauthenticated, status.Code(err))
		})
	}
}

func TestServer_ErrorCodes(t *testing.T) {
	client := startTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req := &api.RegisterRequest{
		Email: "a@b.com", Password: "Abcdef1!", ConfirmPassword: "Abcdef1!", Name: "Alice",
	}
	_, err := client.Register(ctx, req)
	require.NoError(t, err)

	_, err = client.Register(ctx, req)
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = client.Login(ctx, &api.LoginRequest{Credential: "a@b.com", Password: "nope"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = client.RefreshToken(ctx, &api.RefreshTokenRequest{RefreshToken: "bogus"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	resp, err := client.ValidateToken(ctx, &api.ValidateTokenRequest{Token: "bogus"})
	require.NoError(t, err)
	assert.False(t, resp.Valid)
}

func TestIsProtectedEndpoint(t *testing.T) {
	assert.False(t, isProtectedEndpoint(api.AuthLogin))
	assert.False(t, isProtectedEndpoint(api.AuthRegister))
	assert.False(t, isProtectedEndpoint(api.AuthRefreshToken))
	assert.False(t, isProtectedEndpoint(api.AuthValidateToken))
	assert.True(t, isProtectedEndpoint(api.AuthMe))
	assert.True(t, isProtectedEndpoint(api.AuthUpdateProfile))
	assert.True(t, isProtectedEndpoint(api.AuthGetProfile))
	assert.True(t, isProtectedEndpoint("/unknown.Service/Method"))
}
