package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without wrapped error",
			err:  New(CodeProductNotFound, "product not found", http.StatusNotFound),
			want: "PRODUCT_NOT_FOUND: product not found",
		},
		{
			name: "with wrapped error",
			err:  Wrap(fmt.Errorf("connection refused"), CodeStoreUnavailable, "store unreachable", http.StatusServiceUnavailable),
			want: "STORE_UNAVAILABLE: store unreachable: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap(inner, "CODE", "msg", 500)

	if !errors.Is(appErr, inner) {
		t.Error("errors.Is should match inner error")
	}
}

func TestIsAppError(t *testing.T) {
	appErr := NotFound(CodeProductNotFound, "product not found")
	wrapped := fmt.Errorf("wrapped: %w", appErr)

	got, ok := IsAppError(wrapped)
	if !ok {
		t.Fatal("IsAppError should return true for wrapped AppError")
	}
	if got.Code != CodeProductNotFound {
		t.Errorf("Code = %q, want %q", got.Code, CodeProductNotFound)
	}
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name          string
		err           *AppError
		wantStatus    int
		wantRetryable bool
	}{
		{"NotFound", NotFound("NF", "not found"), http.StatusNotFound, false},
		{"BadRequest", BadRequest("BR", "bad request"), http.StatusBadRequest, false},
		{"Conflict", Conflict("CF", "conflict"), http.StatusConflict, false},
		{"Unavailable", Unavailable("UN", "unavailable"), http.StatusServiceUnavailable, true},
		{"BadGateway", BadGateway("BG", "bad gateway"), http.StatusBadGateway, true},
		{"Internal", Internal("IE", "internal"), http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.HTTPStatus != tt.wantStatus {
				t.Errorf("HTTPStatus = %d, want %d", tt.err.HTTPStatus, tt.wantStatus)
			}
			if tt.err.Retryable != tt.wantRetryable {
				t.Errorf("Retryable = %v, want %v", tt.err.Retryable, tt.wantRetryable)
			}
		})
	}
}
