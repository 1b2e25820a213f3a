package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lingko/shadow_service/internal/errors"
	"github.com/lingko/shadow_service/internal/repository"
)

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	users map[string]*repository.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*repository.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *repository.User) error {
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	return f.users[email], nil
}

func TestAuthService_RegisterLoginValidate(t *testing.T) {
	t.Parallel()

	svc := NewAuthService(newFakeUserRepo(), "test-secret", time.Hour)
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterReq{
		Email:       "learner@example.com",
		Password:    "hunter22",
		DisplayName: "Learner",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.Token == "" {
		t.Fatal("Register: empty token")
	}

	login, err := svc.Login(ctx, LoginReq{Email: "learner@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	userID, err := svc.ValidateToken(login.Token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if userID != reg.User.ID.String() {
		t.Errorf("ValidateToken subject = %q, want %q", userID, reg.User.ID)
	}
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	svc := NewAuthService(newFakeUserRepo(), "test-secret", time.Hour)
	ctx := context.Background()

	req := RegisterReq{Email: "dup@example.com", Password: "hunter22"}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	_, err := svc.Register(ctx, req)
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Code != errors.ErrConflict {
		t.Errorf("second Register error = %v, want CONFLICT", err)
	}
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	t.Parallel()

	svc := NewAuthService(newFakeUserRepo(), "test-secret", time.Hour)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterReq{Email: "a@example.com", Password: "correct1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err := svc.Login(ctx, LoginReq{Email: "a@example.com", Password: "wrong"})
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Code != errors.ErrUnauthorized {
		t.Errorf("Login error = %v, want UNAUTHORIZED", err)
	}

	// Unknown email must look identical to a wrong password.
	_, err = svc.Login(ctx, LoginReq{Email: "nobody@example.com", Password: "whatever"})
	appErr, ok = err.(*errors.AppError)
	if !ok || appErr.Code != errors.ErrUnauthorized {
		t.Errorf("Login unknown email error = %v, want UNAUTHORIZED", err)
	}
}

func TestAuthService_ValidateTokenRejectsTampering(t *testing.T) {
	t.Parallel()

	svc := NewAuthService(newFakeUserRepo(), "test-secret", time.Hour)
	other := NewAuthService(newFakeUserRepo(), "other-secret", time.Hour)
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterReq{Email: "b@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := other.ValidateToken(reg.Token); err == nil {
		t.Error("ValidateToken accepted a token signed with a different secret")
	}
	if _, err := svc.ValidateToken("not.a.jwt"); err == nil {
		t.Error("ValidateToken accepted garbage")
	}
}
