package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"notekeeper/internal/config"
	"notekeeper/internal/domain"
	"notekeeper/internal/repository"
)

type failingUserRepo struct {
	err error
}

func (f failingUserRepo) Create(context.Context, domain.User) error { return f.err }
func (f failingUserRepo) GetByID(context.Context, string) (domain.User, error) {
	return domain.User{}, f.err
}
func (f failingUserRepo) GetByEmail(context.Context, string) (domain.User, error) {
	return domain.User{}, f.err
}

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(context.Context, string) bool { return false }
func (denyAllLimiter) Fail(context.Context, string)       {}
func (denyAllLimiter) Reset(context.Context, string)      {}

func newTestUserService(repo repository.UserRepository, limiter LoginRateLimiter) *UserService {
	return NewUserService(zap.NewNop(), repo, NewPasswordHasher(bcrypt.MinCost), config.DefaultPasswordPolicy(), limiter)
}

func TestUserService_Register(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	svc := newTestUserService(repo, nil)

	user, err := svc.Register(context.Background(), RegisterInput{Handle: "alice", Email: " A@X.com ", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == "" || user.Email != "a@x.com" || user.Handle != "alice" {
		t.Fatalf("unexpected user %+v", user)
	}
	if user.PasswordHash == "" || strings.Contains(user.PasswordHash, "secret1") {
		t.Fatalf("password must be stored hashed")
	}
	stored, err := repo.GetByEmail(context.Background(), "a@x.com")
	if err != nil || stored.ID != user.ID {
		t.Fatalf("expected stored identity, got %+v, %v", stored, err)
	}
}

func TestUserService_RegisterDuplicate(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	svc := newTestUserService(repo, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Handle: "alice", Email: "a@x.com", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	cases := []RegisterInput{
		{Handle: "alice2", Email: "a@x.com", Password: "secret1"},
		{Handle: "alice2", Email: "A@X.COM", Password: "secret1"},
		{Handle: "alice", Email: "other@x.com", Password: "secret1"},
	}
	for _, in := range cases {
		if _, err := svc.Register(ctx, in); !errors.Is(err, ErrDuplicateIdentity) {
			t.Fatalf("expected ErrDuplicateIdentity for %+v, got %v", in, err)
		}
	}
	if repo.Count() != 1 {
		t.Fatalf("duplicate registration must not create records, have %d", repo.Count())
	}
}

func TestUserService_RegisterValidationListsEveryField(t *testing.T) {
	svc := newTestUserService(repository.NewMemoryUserRepository(), nil)

	_, err := svc.Register(context.Background(), RegisterInput{Handle: "al", Email: "not-an-email", Password: "1234"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	got := map[string]bool{}
	for _, f := range verr.Fields {
		got[f.Field] = true
	}
	for _, field := range []string{"handle", "email", "password"} {
		if !got[field] {
			t.Fatalf("expected %s in validation errors, got %+v", field, verr.Fields)
		}
	}
}

func TestUserService_RegisterPolicyIsConfigurable(t *testing.T) {
	policy := config.PasswordPolicy{MinHandleLength: 1, MinPasswordLength: 12}
	svc := NewUserService(zap.NewNop(), repository.NewMemoryUserRepository(), NewPasswordHasher(bcrypt.MinCost), policy, nil)

	if _, err := svc.Register(context.Background(), RegisterInput{Handle: "a", Email: "a@x.com", Password: "secret1"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected short password rejected under stricter policy, got %v", err)
	}
	if _, err := svc.Register(context.Background(), RegisterInput{Handle: "a", Email: "a@x.com", Password: "a-much-longer-secret"}); err != nil {
		t.Fatalf("expected one-char handle accepted, got %v", err)
	}
}

func TestUserService_RegisterStorageFailure(t *testing.T) {
	svc := newTestUserService(failingUserRepo{err: errors.New("db down")}, nil)
	_, err := svc.Register(context.Background(), RegisterInput{Handle: "alice", Email: "a@x.com", Password: "secret1"})
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestUserService_Authenticate(t *testing.T) {
	svc := newTestUserService(repository.NewMemoryUserRepository(), nil)
	ctx := context.Background()
	registered, err := svc.Register(ctx, RegisterInput{Handle: "alice", Email: "a@x.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	user, err := svc.Authenticate(ctx, "A@x.com", "secret1")
	if err != nil || user.ID != registered.ID {
		t.Fatalf("expected login success, got %+v, %v", user, err)
	}

	_, wrongPassword := svc.Authenticate(ctx, "a@x.com", "wrong-pass")
	_, unknownEmail := svc.Authenticate(ctx, "nobody@x.com", "secret1")
	if !errors.Is(wrongPassword, ErrInvalidCredentials) || !errors.Is(unknownEmail, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", wrongPassword, unknownEmail)
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Fatalf("login failures must be indistinguishable: %q vs %q", wrongPassword, unknownEmail)
	}
}

func TestUserService_AuthenticateRateLimited(t *testing.T) {
	svc := newTestUserService(repository.NewMemoryUserRepository(), denyAllLimiter{})
	if _, err := svc.Authenticate(context.Background(), "a@x.com", "secret1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestUserService_CorrectPasswordNeverLocksOut(t *testing.T) {
	svc := newTestUserService(repository.NewMemoryUserRepository(), NewLoginRateLimiter(10*time.Minute, 3))
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterInput{Handle: "alice", Email: "a@x.com", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	for i := 1; i <= 6; i++ {
		if _, err := svc.Authenticate(ctx, "a@x.com", "secret1"); err != nil {
			t.Fatalf("login #%d with correct password: %v", i, err)
		}
	}
}

func TestUserService_FailuresLockOutUntilSuccessResets(t *testing.T) {
	svc := newTestUserService(repository.NewMemoryUserRepository(), NewLoginRateLimiter(10*time.Minute, 3))
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterInput{Handle: "alice", Email: "a@x.com", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := svc.Authenticate(ctx, "a@x.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	}
	if _, err := svc.Authenticate(ctx, "a@x.com", "secret1"); err != nil {
		t.Fatalf("login below the limit: %v", err)
	}
	// el exito limpio los fallos previos: quedan tres intentos de nuevo
	for i := 0; i < 3; i++ {
		if _, err := svc.Authenticate(ctx, "a@x.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}
	if _, err := svc.Authenticate(ctx, "a@x.com", "secret1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited after three failures, got %v", err)
	}
}

func TestUserService_GetByID(t *testing.T) {
	svc := newTestUserService(repository.NewMemoryUserRepository(), nil)
	ctx := context.Background()
	registered, _ := svc.Register(ctx, RegisterInput{Handle: "alice", Email: "a@x.com", Password: "secret1"})

	got, err := svc.GetByID(ctx, registered.ID)
	if err != nil || got.Email != "a@x.com" {
		t.Fatalf("unexpected lookup %+v, %v", got, err)
	}
	if _, err := svc.GetByID(ctx, "not-a-uuid"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
