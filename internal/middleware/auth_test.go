package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lingko/shadow_service/internal/repository"
	"github.com/lingko/shadow_service/internal/service"
)

type stubUserRepo struct {
	user *repository.User
}

func (s *stubUserRepo) Create(ctx context.Context, user *repository.User) error {
	user.ID = uuid.New()
	s.user = user
	return nil
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	if s.user != nil && s.user.Email == email {
		return s.user, nil
	}
	return nil, nil
}

func TestAuth(t *testing.T) {
	t.Parallel()

	authService := service.NewAuthService(&stubUserRepo{}, "test-secret", time.Hour)
	reg, err := authService.Register(context.Background(), service.RegisterReq{
		Email:    "learner@example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	var gotUserID string
	handler := Auth(authService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid bearer token", "Bearer " + reg.Token, http.StatusOK},
		{"lowercase bearer", "bearer " + reg.Token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + reg.Token, http.StatusUnauthorized},
		{"no token", "Bearer", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUserID = ""
			req := httptest.NewRequest(http.MethodGet, "/api/v1/lessons", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && gotUserID != reg.User.ID.String() {
				t.Errorf("user id in context = %q, want %q", gotUserID, reg.User.ID)
			}
		})
	}
}

func TestGetUserID_MissingValue(t *testing.T) {
	t.Parallel()

	if got := GetUserID(context.Background()); got != "" {
		t.Errorf("GetUserID on empty context = %q, want empty", got)
	}
}
