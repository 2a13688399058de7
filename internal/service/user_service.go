package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"notekeeper/internal/config"
	"notekeeper/internal/domain"
	"notekeeper/internal/repository"
)

// UserService encapsula el registro y la verificacion de credenciales.
type UserService struct {
	logger    *zap.Logger
	users     repository.UserRepository
	hasher    *PasswordHasher
	policy    config.PasswordPolicy
	limiter   LoginRateLimiter
	validate  *validator.Validate
	dummyHash string
}

// NewUserService crea el servicio. Con limiter nil no se limitan los logins.
func NewUserService(logger *zap.Logger, users repository.UserRepository, hasher *PasswordHasher, policy config.PasswordPolicy, limiter LoginRateLimiter) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	// Hash contra el que se compara cuando el email no existe: ambos fallos cuestan un bcrypt.
	dummyHash, err := hasher.Hash(uuid.NewString())
	if err != nil {
		logger.Warn("dummy hash init failed", zap.Error(err))
	}
	return &UserService{
		logger:    logger,
		users:     users,
		hasher:    hasher,
		policy:    policy,
		limiter:   limiter,
		validate:  validator.New(),
		dummyHash: dummyHash,
	}
}

type RegisterInput struct {
	Handle   string
	Email    string
	Password string
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	handle := strings.TrimSpace(input.Handle)
	email := normalizeEmail(input.Email)
	password := input.Password

	verr := &ValidationError{}
	if utf8.RuneCountInString(handle) < s.policy.MinHandleLength {
		verr.add("handle", fmt.Sprintf("must be at least %d characters", s.policy.MinHandleLength))
	}
	if err := s.validate.Var(email, "required,email"); err != nil {
		verr.add("email", "must be a valid email address")
	}
	switch {
	case utf8.RuneCountInString(password) < s.policy.MinPasswordLength:
		verr.add("password", fmt.Sprintf("must be at least %d characters", s.policy.MinPasswordLength))
	case len(password) > maxPasswordBytes:
		verr.add("password", fmt.Sprintf("must be at most %d bytes", maxPasswordBytes))
	}
	if err := verr.errOrNil(); err != nil {
		return domain.User{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Handle:       handle,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.logger.Info("registration rejected: duplicate identity", zap.Error(err))
			return domain.User{}, ErrDuplicateIdentity
		}
		return domain.User{}, fmt.Errorf("%w: create user: %w", ErrStorageUnavailable, err)
	}
	return user, nil
}

// Authenticate devuelve ErrInvalidCredentials tanto para email desconocido
// como para password incorrecto. Solo esos fallos cuentan para el limitador.
func (s *UserService) Authenticate(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	if s.limiter != nil && !s.limiter.Allow(ctx, emailAddr) {
		return domain.User{}, ErrRateLimited
	}

	user, err := s.checkCredentials(ctx, emailAddr, password)
	if s.limiter != nil {
		switch {
		case err == nil:
			s.limiter.Reset(ctx, emailAddr)
		case errors.Is(err, ErrInvalidCredentials):
			s.limiter.Fail(ctx, emailAddr)
		}
	}
	return user, err
}

func (s *UserService) checkCredentials(ctx context.Context, emailAddr, password string) (domain.User, error) {
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.Verify(s.dummyHash, password)
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, fmt.Errorf("%w: lookup user: %w", ErrStorageUnavailable, err)
	}
	if !s.hasher.Verify(user.PasswordHash, password) {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.User{}, ErrNotFound
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, fmt.Errorf("%w: get user: %w", ErrStorageUnavailable, err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
