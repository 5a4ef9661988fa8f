package auth

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Rqwannn/Moodiary/internal/api"
)

type Handler struct {
	service  *Service
	log      *zap.Logger
	validate *validator.Validate
}

var _ api.AuthServer = (*Handler)(nil)

func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{
		service:  service,
		log:      log,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) Register(ctx context.Context, req *api.RegisterRequest) (*api.Account, error) {
	if err := h.validateRequest(req); err != nil {
		h.log.Warn("invalid register request", zap.Error(err))
		return nil, err
	}

	account, err := h.service.Register(ctx, Registration{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Name:            req.Name,
		PersonalityType: req.PersonalityType,
	})
	if err != nil {
		return nil, h.toStatus("register", err)
	}

	return toAccountMessage(account), nil
}

func (h *Handler) Login(ctx context.Context, req *api.LoginRequest) (*api.TokenResponse, error) {
	if err := h.validateRequest(req); err != nil {
		return nil, err
	}

	pair, err := h.service.Authenticate(ctx, req.Credential, req.Password)
	if err != nil {
		return nil, h.toStatus("login", err)
	}

	return toTokenResponse(pair), nil
}

func (h *Handler) RefreshToken(ctx context.Context, req *api.RefreshTokenRequest) (*api.TokenResponse, error) {
	if err := h.validateRequest(req); err != nil {
		return nil, err
	}

	pair, err := h.service.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, h.toStatus("refresh token", err)
	}

	resp := toTokenResponse(pair)
	resp.UID = ""
	return resp, nil
}

func (h *Handler) ValidateToken(_ context.Context, req *api.ValidateTokenRequest) (*api.ValidateTokenResponse, error) {
	if req.Token == "" {
		return &api.ValidateTokenResponse{
			Valid:   false,
			Message: "token is required",
		}, nil
	}

	sub, err := h.service.VerifyAccessToken(req.Token)
	if err != nil {
		return &api.ValidateTokenResponse{
			Valid:   false,
			Message: ErrInvalidToken.Error(),
		}, nil
	}

	return &api.ValidateTokenResponse{
		Valid:   true,
		Email:   sub.Email,
		UID:     sub.AccountID.String(),
		Message: "Token is valid",
	}, nil
}

// UpdateProfile only edits the caller's own account. An empty uid means the caller.
func (h *Handler) UpdateProfile(ctx context.Context, req *api.UpdateProfileRequest) (*api.Account, error) {
	if err := h.validateRequest(req); err != nil {
		return nil, err
	}

	sub, err := GetSubjectFromContext(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "authentication required")
	}

	id := sub.AccountID
	if req.UID != "" {
		requested, err := uuid.Parse(req.UID)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, "invalid uid")
		}
		if requested != sub.AccountID {
			return nil, status.Error(codes.PermissionDenied, "cannot edit another account")
		}
	}

	account, err := h.service.UpdateProfile(ctx, id, ProfileUpdate{
		Email:           nonEmpty(req.Email),
		Password:        nonEmpty(req.Password),
		Name:            nonEmpty(req.Name),
		PersonalityType: nonEmpty(req.PersonalityType),
	})
	if err != nil {
		return nil, h.toStatus("update profile", err)
	}

	return toAccountMessage(account), nil
}

// GetProfile only reads the caller's own account. Unknown emails and other accounts get
// the same PermissionDenied.
func (h *Handler) GetProfile(ctx context.Context, req *api.GetProfileRequest) (*api.Account, error) {
	if err := h.validateRequest(req); err != nil {
		return nil, err
	}

	sub, err := GetSubjectFromContext(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "authentication required")
	}

	account, err := h.service.GetProfile(ctx, req.Email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, h.toStatus("get profile", err)
	}
	if account == nil || account.ID != sub.AccountID {
		return nil, status.Error(codes.PermissionDenied, "cannot read another account")
	}

	return toAccountMessage(account), nil
}

func (h *Handler) Me(ctx context.Context, _ *api.MeRequest) (*api.Account, error) {
	token, err := GetTokenFromContext(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "authentication required")
	}

	account, err := h.service.CurrentAccount(ctx, token)
	if err != nil {
		return nil, h.toStatus("current account", err)
	}

	return toAccountMessage(account), nil
}

func (h *Handler) validateRequest(req interface{}) error {
	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return status.Errorf(codes.InvalidArgument, "%s is invalid (%s)", verrs[0].Field(), verrs[0].Tag())
		}
		return status.Error(codes.InvalidArgument, "invalid request")
	}
	return nil
}

// toStatus maps service errors to gRPC status codes. Anything unrecognised is logged
// and reported as Internal without details.
func (h *Handler) toStatus(op string, err error) error {
	var locked *LockedError
	switch {
	case errors.As(err, &locked):
		return status.Error(codes.FailedPrecondition, locked.Error())
	case errors.Is(err, ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, ErrInvalidCredentials.Error())
	case errors.Is(err, ErrInvalidToken):
		return status.Error(codes.Unauthenticated, ErrInvalidToken.Error())
	case errors.Is(err, ErrAccountDeactivated):
		return status.Error(codes.PermissionDenied, ErrAccountDeactivated.Error())
	case errors.Is(err, ErrPasswordMismatch),
		errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrWeakPassword):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrDuplicateEmail):
		return status.Error(codes.AlreadyExists, ErrDuplicateEmail.Error())
	case errors.Is(err, ErrNotFound):
		return status.Error(codes.NotFound, ErrNotFound.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	}

	h.log.Error(op+" failed", zap.Error(err))
	return status.Error(codes.Internal, op+" failed")
}

// nonEmpty treats an empty patch field as absent.
func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func toAccountMessage(a *Account) *api.Account {
	return &api.Account{
		UID:             a.ID.String(),
		Name:            a.Name,
		Email:           a.Email,
		PersonalityType: a.PersonalityType,
		IsActive:        a.Active,
		IsVerified:      a.Verified,
		CreatedAt:       a.CreatedAt,
		LastLogin:       a.LastLogin,
	}
}

func toTokenResponse(pair *TokenPair) *api.TokenResponse {
	return &api.TokenResponse{
		UID:          pair.AccountID.String(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	}
}
