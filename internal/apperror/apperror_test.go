package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFromKeepsClassifiedErrors(t *testing.T) {
	wrapped := fmt.Errorf("resolve: %w", SessionNotFound("s1"))

	got := From(wrapped)
	if got.Kind != KindSessionNotFound {
		t.Fatalf("expected kind %q, got %q", KindSessionNotFound, got.Kind)
	}
	if got.Status != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", got.Status)
	}
}

func TestFromWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("boom")

	got := From(cause)
	if got.Kind != KindUnexpected {
		t.Fatalf("expected kind %q, got %q", KindUnexpected, got.Kind)
	}
	if got.Status != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", got.Status)
	}
	if got.Message != "boom" {
		t.Fatalf("expected cause message, got %q", got.Message)
	}
	if !errors.Is(got, cause) {
		t.Fatalf("expected unwrap to reach cause")
	}
}

func TestFromNil(t *testing.T) {
	if From(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}

func TestConstructorsStatusCodes(t *testing.T) {
	tests := []struct {
		err    *Error
		kind   Kind
		status int
	}{
		{MissingInput("x"), KindMissingInput, http.StatusBadRequest},
		{UnsupportedFormat("x", nil), KindUnsupportedFormat, http.StatusBadRequest},
		{RateLimitExceeded(2), KindRateLimitExceeded, http.StatusTooManyRequests},
		{GlobalRateLimitExceeded(10), KindGlobalRateLimitExceeded, http.StatusTooManyRequests},
		{UpstreamFetch("x", nil), KindUpstreamFetch, http.StatusBadRequest},
		{StoreUnavailable(nil), KindStoreUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if tt.err.Kind != tt.kind || tt.err.Status != tt.status {
				t.Fatalf("got %s/%d, want %s/%d", tt.err.Kind, tt.err.Status, tt.kind, tt.status)
			}
			if tt.err.Suggestion == "" {
				t.Fatalf("expected a suggestion for %s", tt.kind)
			}
		})
	}
}

func TestErrorStringDoesNotRepeatCause(t *testing.T) {
	if got := Unexpected(errors.New("model down")).Error(); got != "unexpected_failure: model down" {
		t.Fatalf("unexpected error string %q", got)
	}

	got := UpstreamFetch("download failed", errors.New("dial tcp: refused")).Error()
	if got != "upstream_fetch_error: download failed: dial tcp: refused" {
		t.Fatalf("unexpected error string %q", got)
	}
}
