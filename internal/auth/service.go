package auth

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/Rqwannn/Moodiary/internal/config"
)

// dummyPassword is hashed once at startup and verified against when a login names an
// unknown email, so both paths cost one bcrypt comparison.
const dummyPassword = "moodiary-timing-equalizer"

type Service struct {
	config     *config.AuthConfig
	log        *zap.Logger
	repository Repository
	hasher     Hasher
	tokens     *TokenCodec
	lockout    LockoutPolicy
	metrics    *Metrics
	hashSlots  *semaphore.Weighted
	dummyHash  string
	now        func() time.Time
}

// Registration is the input of Register.
type Registration struct {
	Email           string
	Password        string
	ConfirmPassword string
	Name            string
	PersonalityType string
}

// ProfileUpdate lists the fields to change; nil fields are left untouched.
type ProfileUpdate struct {
	Email           *string
	Password        *string
	Name            *string
	PersonalityType *string
}

// TokenPair is returned by Authenticate and Refresh.
type TokenPair struct {
	AccountID    uuid.UUID
	AccessToken  string
	RefreshToken string
}

func NewService(cfg *config.AuthConfig, log *zap.Logger, repo Repository, metrics *Metrics) (*Service, error) {
	hasher, err := NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	tokens, err := NewTokenCodec(cfg)
	if err != nil {
		return nil, err
	}

	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, err
	}

	slots := cfg.MaxConcurrentHashes
	if slots <= 0 {
		slots = runtime.NumCPU()
	}

	return &Service{
		config:     cfg,
		log:        log,
		repository: repo,
		hasher:     hasher,
		tokens:     tokens,
		lockout:    NewLockoutPolicy(cfg.MaxLoginAttempts, cfg.LockoutDuration),
		metrics:    metrics,
		hashSlots:  semaphore.NewWeighted(int64(slots)),
		dummyHash:  dummyHash,
		now:        time.Now,
	}, nil
}

// hashPassword and checkPassword bound how many bcrypt computations run at once.
func (s *Service) hashPassword(ctx context.Context, password string) (string, error) {
	if err := s.hashSlots.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer s.hashSlots.Release(1)

	return s.hasher.Hash(password)
}

func (s *Service) checkPassword(ctx context.Context, password, hash string) (bool, error) {
	if err := s.hashSlots.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer s.hashSlots.Release(1)

	return s.hasher.Verify(password, hash), nil
}

func (s *Service) Register(ctx context.Context, reg Registration) (*Account, error) {
	if reg.Password != reg.ConfirmPassword {
		s.metrics.registration(OutcomeRejected)
		return nil, ErrPasswordMismatch
	}
	if !ValidEmail(reg.Email) {
		s.metrics.registration(OutcomeRejected)
		return nil, ErrInvalidEmail
	}
	if !ValidatePasswordStrength(reg.Password) {
		s.metrics.registration(OutcomeRejected)
		return nil, ErrWeakPassword
	}

	var account *Account
	err := s.repository.Transaction(ctx, func(repo Repository) error {
		taken, err := repo.EmailTaken(ctx, reg.Email, uuid.Nil)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if taken {
			return ErrDuplicateEmail
		}

		hash, err := s.hashPassword(ctx, reg.Password)
		if err != nil {
			return err
		}

		now := s.now()
		account = &Account{
			ID:              uuid.New(),
			Email:           reg.Email,
			Name:            reg.Name,
			PersonalityType: reg.PersonalityType,
			PasswordHash:    hash,
			Active:          true,
			Verified:        false,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		return repo.CreateAccount(ctx, account)
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			s.metrics.registration(OutcomeRejected)
			return nil, ErrDuplicateEmail
		}
		s.metrics.registration(OutcomeError)
		return nil, fmt.Errorf("register account: %w", err)
	}

	s.metrics.registration(OutcomeSuccess)
	s.log.Info("account registered", zap.String("account_id", account.ID.String()))
	return account.withoutSecret(), nil
}

// Authenticate checks credential and password and issues an access/refresh token pair.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, credential, password string) (*TokenPair, error) {
	var (
		pair    *TokenPair
		outcome error
	)

	err := s.repository.Transaction(ctx, func(repo Repository) error {
		var account *Account
		if ValidEmail(credential) {
			found, err := repo.GetAccountByEmail(ctx, credential)
			if err != nil && !errors.Is(err, ErrNotFound) {
				return fmt.Errorf("load account: %w", err)
			}
			account = found
		}

		if account == nil {
			if _, err := s.checkPassword(ctx, password, s.dummyHash); err != nil {
				return err
			}
			outcome = ErrInvalidCredentials
			return nil
		}

		now := s.now()
		if s.lockout.Locked(account, now) {
			outcome = &LockedError{Until: *account.LockedUntil}
			return nil
		}

		ok, err := s.checkPassword(ctx, password, account.PasswordHash)
		if err != nil {
			return err
		}
		if !ok {
			if s.lockout.RecordFailure(account, now) {
				s.metrics.lockout()
				s.log.Warn("account locked after failed logins",
					zap.String("account_id", account.ID.String()),
					zap.Int("failed_attempts", account.FailedLoginAttempts),
					zap.Time("locked_until", *account.LockedUntil))
			}
			account.UpdatedAt = now
			if err := repo.SaveAccount(ctx, account); err != nil {
				return fmt.Errorf("record failed login: %w", err)
			}
			outcome = ErrInvalidCredentials
			return nil
		}

		if !account.Active {
			outcome = ErrAccountDeactivated
			return nil
		}

		s.lockout.RecordSuccess(account)
		account.LastLogin = &now
		account.UpdatedAt = now
		if err := repo.SaveAccount(ctx, account); err != nil {
			return fmt.Errorf("record login: %w", err)
		}

		pair, err = s.issuePair(account)
		return err
	})
	if err != nil {
		s.metrics.login(OutcomeError)
		return nil, err
	}
	if outcome != nil {
		s.metrics.login(loginOutcome(outcome))
		return nil, outcome
	}

	s.metrics.login(OutcomeSuccess)
	s.log.Info("login succeeded", zap.String("account_id", pair.AccountID.String()))
	return pair, nil
}

func loginOutcome(err error) string {
	switch {
	case errors.Is(err, ErrAccountLocked):
		return OutcomeLocked
	case errors.Is(err, ErrAccountDeactivated):
		return OutcomeDeactivated
	default:
		return OutcomeInvalidCredentials
	}
}

func (s *Service) issuePair(account *Account) (*TokenPair, error) {
	sub := Subject{Email: account.Email, AccountID: account.ID}

	access, err := s.tokens.IssueAccess(sub)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefresh(sub)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccountID:    account.ID,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// Refresh issues a new access token for a valid refresh token. The refresh token itself
// is returned unchanged and stays valid until it expires.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	sub, err := s.tokens.Verify(refreshToken, RefreshToken)
	if err != nil {
		s.metrics.refresh(OutcomeInvalidToken)
		return nil, ErrInvalidToken
	}

	account, err := s.repository.GetAccountByEmail(ctx, sub.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.metrics.refresh(OutcomeInvalidToken)
			return nil, ErrInvalidToken
		}
		s.metrics.refresh(OutcomeError)
		return nil, fmt.Errorf("load account: %w", err)
	}
	if !account.Active {
		s.metrics.refresh(OutcomeInvalidToken)
		return nil, ErrInvalidToken
	}

	access, err := s.tokens.IssueAccess(Subject{Email: account.Email, AccountID: account.ID})
	if err != nil {
		s.metrics.refresh(OutcomeError)
		return nil, err
	}

	s.metrics.refresh(OutcomeSuccess)
	return &TokenPair{
		AccountID:    account.ID,
		AccessToken:  access,
		RefreshToken: refreshToken,
	}, nil
}

func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*Account, error) {
	var account *Account
	err := s.repository.Transaction(ctx, func(repo Repository) error {
		found, err := repo.GetAccountByID(ctx, id)
		if err != nil {
			return err
		}

		if update.Email != nil {
			if !ValidEmail(*update.Email) {
				return ErrInvalidEmail
			}
			taken, err := repo.EmailTaken(ctx, *update.Email, id)
			if err != nil {
				return fmt.Errorf("check email: %w", err)
			}
			if taken {
				return ErrDuplicateEmail
			}
			found.Email = *update.Email
		}

		if update.Password != nil {
			if !ValidatePasswordStrength(*update.Password) {
				return ErrWeakPassword
			}
			hash, err := s.hashPassword(ctx, *update.Password)
			if err != nil {
				return err
			}
			found.PasswordHash = hash
		}

		if update.Name != nil {
			found.Name = *update.Name
		}
		if update.PersonalityType != nil {
			found.PersonalityType = *update.PersonalityType
		}

		found.UpdatedAt = s.now()
		if err := repo.SaveAccount(ctx, found); err != nil {
			return err
		}
		account = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("profile updated", zap.String("account_id", account.ID.String()))
	return account.withoutSecret(), nil
}

func (s *Service) GetProfile(ctx context.Context, email string) (*Account, error) {
	account, err := s.repository.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return account.withoutSecret(), nil
}

// VerifyAccessToken resolves the subject of a bearer access token.
func (s *Service) VerifyAccessToken(token string) (Subject, error) {
	return s.tokens.Verify(token, AccessToken)
}

// CurrentAccount loads the account named by an access token.
func (s *Service) CurrentAccount(ctx context.Context, token string) (*Account, error) {
	sub, err := s.tokens.Verify(token, AccessToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	account, err := s.repository.GetAccountByID(ctx, sub.AccountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return account.withoutSecret(), nil
}

// Tokens exposes the codec so the request middleware verifies with the same settings.
func (s *Service) Tokens() *TokenCodec {
	return s.tokens
}
