package errors

import (
	stderrors "errors"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrValidation, http.StatusBadRequest},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrNotFound, http.StatusNotFound},
		{ErrConflict, http.StatusConflict},
		{ErrRateLimit, http.StatusTooManyRequests},
		{ErrTimeout, http.StatusGatewayTimeout},
		{ErrInternal, http.StatusInternalServerError},
		{ErrDatabase, http.StatusInternalServerError},
		{ErrSpeechService, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := New(tt.code, "msg").HTTPStatus(); got != tt.want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("connection refused")
	err := Wrap(ErrDatabase, "failed to get lesson", cause)

	if !stderrors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
	if got := err.Error(); got != "DATABASE_ERROR: failed to get lesson: connection refused" {
		t.Errorf("Error() = %q", got)
	}
}

func TestErrorWithoutCause(t *testing.T) {
	t.Parallel()

	err := NotFound("lesson")
	if got := err.Error(); got != "NOT_FOUND: lesson not found" {
		t.Errorf("Error() = %q", got)
	}
	if err.Unwrap() != nil {
		t.Error("Unwrap() on bare error should be nil")
	}
}
