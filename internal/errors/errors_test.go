package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestNetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkError("health check", "/health", cause)

	expected := "network error during health check at /health: connection refused"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	if !errors.Is(err, cause) {
		t.Error("Expected NetworkError to unwrap to its cause")
	}

	if errors.Is(err, ErrCancelled) {
		t.Error("Plain transport failure should not match ErrCancelled")
	}

	noEndpoint := NewNetworkError("chat", "", cause)
	if noEndpoint.Error() != "network error during chat: connection refused" {
		t.Errorf("unexpected message without endpoint: %s", noEndpoint.Error())
	}
}

func TestNetworkError_Cancelled(t *testing.T) {
	err := NewNetworkError("chat", "/chat", context.Canceled)

	if !errors.Is(err, ErrCancelled) {
		t.Error("Expected cancelled NetworkError to match ErrCancelled")
	}
	if !IsCancelled(err) {
		t.Error("IsCancelled should be true")
	}
	if !IsNetworkError(err) {
		t.Error("IsNetworkError should be true")
	}
}

func TestAPIError(t *testing.T) {
	err := NewAPIError(400, "/chat", "HTTP error! status: 400")

	expected := "API error [400] at /chat: HTTP error! status: 400"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	noStatus := NewAPIError(0, "/chat", "bad")
	if noStatus.Error() != "API error at /chat: bad" {
		t.Errorf("unexpected message without status: %s", noStatus.Error())
	}

	withBody := NewAPIErrorWithBody(500, "/upload-document", "upload failed", `{"detail":"boom"}`)
	if withBody.Body != `{"detail":"boom"}` {
		t.Errorf("Body = %q", withBody.Body)
	}
}

func TestUploadError(t *testing.T) {
	cause := errors.New("Upload failed")
	err := NewUploadError("notes.md", cause)

	if err.Error() != "Error uploading notes.md: Upload failed" {
		t.Errorf("Error() = %s", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("Expected UploadError to unwrap to its cause")
	}
	if !IsUploadError(fmt.Errorf("wrapped: %w", err)) {
		t.Error("IsUploadError should see through wrapping")
	}
}

func TestValidationError(t *testing.T) {
	empty := NewEmptyInputError("message")
	if !errors.Is(empty, ErrEmptyInput) {
		t.Error("empty-input ValidationError should match ErrEmptyInput")
	}
	if empty.Error() != "validation failed: message: input cannot be empty" {
		t.Errorf("Error() = %s", empty.Error())
	}

	other := NewValidationError("model", "unknown model")
	if errors.Is(other, ErrEmptyInput) {
		t.Error("non-empty ValidationError should not match ErrEmptyInput")
	}

	bare := NewValidationError("", "nope")
	if bare.Error() != "validation failed: nope" {
		t.Errorf("Error() = %s", bare.Error())
	}
}

func TestHelpers(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantAuth   bool
		wantNet    bool
		wantAPI    bool
	}{
		{"nil", nil, 0, false, false, false},
		{"plain", errors.New("x"), 0, false, false, false},
		{"401", NewAPIError(401, "/chat", "unauthorized"), 401, true, false, true},
		{"403 wrapped", fmt.Errorf("ctx: %w", NewAPIError(403, "/chat", "forbidden")), 403, true, false, true},
		{"500", NewAPIError(500, "/chat", "server"), 500, false, false, true},
		{"network", NewNetworkError("chat", "/chat", errors.New("eof")), 0, false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetHTTPStatus(tt.err); got != tt.wantStatus {
				t.Errorf("GetHTTPStatus() = %d, want %d", got, tt.wantStatus)
			}
			if got := IsAuthError(tt.err); got != tt.wantAuth {
				t.Errorf("IsAuthError() = %v, want %v", got, tt.wantAuth)
			}
			if got := IsNetworkError(tt.err); got != tt.wantNet {
				t.Errorf("IsNetworkError() = %v, want %v", got, tt.wantNet)
			}
			if got := IsAPIError(tt.err); got != tt.wantAPI {
				t.Errorf("IsAPIError() = %v, want %v", got, tt.wantAPI)
			}
		})
	}
}
