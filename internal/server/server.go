package server

import (
	"context"
	"fmt"
	"net"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/Rqwannn/Moodiary/internal/api"
	"github.com/Rqwannn/Moodiary/internal/auth"
	"github.com/Rqwannn/Moodiary/internal/config"
)

type Server struct {
	config         *config.AppConfig
	log            *zap.Logger
	grpcServer     *grpc.Server
	authHandler    *auth.Handler
	authMiddleware *auth.AuthMiddleware
}

type Params struct {
	fx.In

	Config         *config.AppConfig
	Logger         *zap.Logger
	AuthHandler    *auth.Handler
	AuthMiddleware *auth.AuthMiddleware
}

func isProtectedEndpoint(method string) bool {
	isPublic, exists := api.PublicEndpoints[method]
	return !exists || !isPublic
}

func NewServer(p Params) *Server {
	authInterceptor := func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		// Skip authentication for non-protected endpoints
		if !isProtectedEndpoint(info.FullMethod) {
			return handler(ctx, req)
		}

		newCtx, err := p.AuthMiddleware.AuthenticationMiddleware(ctx)
		if err != nil {
			p.Logger.Warn("authentication failed",
				zap.String("method", info.FullMethod),
				zap.Error(err))
			return nil, status.Error(codes.Unauthenticated, "authentication required")
		}

		return handler(newCtx, req)
	}

	opts := []grpc.ServerOption{
		grpc.UnaryInterceptor(authInterceptor),
	}
	if p.Config.GRPC.MaxReceiveMessageSize > 0 {
		opts = append(opts, grpc.MaxRecvMsgSize(p.Config.GRPC.MaxReceiveMessageSize))
	}
	if p.Config.GRPC.MaxSendMessageSize > 0 {
		opts = append(opts, grpc.MaxSendMsgSize(p.Config.GRPC.MaxSendMessageSize))
	}

	grpcServer := grpc.NewServer(opts...)

	server := &Server{
		config:         p.Config,
		log:            p.Logger,
		grpcServer:     grpcServer,
		authHandler:    p.AuthHandler,
		authMiddleware: p.AuthMiddleware,
	}

	api.RegisterAuthServer(grpcServer, p.AuthHandler)

	if p.Config.GRPC.EnableReflection {
		reflection.Register(grpcServer)
	}

	return server
}

func (s *Server) Start() error {
	addr := net.JoinHostPort(s.config.Server.Host, s.config.Server.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.log.Info("Starting gRPC server",
		zap.String("address", addr),
		zap.Object("config", serverConfigToField(s.config)),
	)

	return s.Serve(lis)
}

// Serve accepts connections on lis until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	if err := s.grpcServer.Serve(lis); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

func serverConfigToField(config *config.AppConfig) zapcore.ObjectMarshaler {
	return zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
		enc.AddString("environment", os.Getenv("APP_ENV"))
		enc.AddBool("reflection_enabled", config.GRPC.EnableReflection)
		enc.AddInt("max_receive_size", config.GRPC.MaxReceiveMessageSize)
		enc.AddInt("max_send_size", config.GRPC.MaxSendMessageSize)
		enc.AddString("token_algorithm", config.Auth.Algorithm)
		enc.AddDuration("access_token_duration", config.Auth.AccessTokenDuration)
		enc.AddDuration("refresh_token_duration", config.Auth.RefreshTokenDuration)
		enc.AddInt("max_login_attempts", config.Auth.MaxLoginAttempts)
		return nil
	})
}

func (s *Server) Stop() {
	s.log.Info("shutting down gRPC server")
	s.grpcServer.GracefulStop()
}
