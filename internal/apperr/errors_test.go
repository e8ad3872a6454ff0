package apperr

import (
	"fmt"
	"strings"
	"testing"
)

func TestProviderError_Wrapped(t *testing.T) {
	err := fmt.Errorf("embed batch: %w", &ProviderError{Status: 429, Message: "rate limited"})
	if !IsProviderError(err) {
		t.Fatal("wrapped provider error not detected")
	}
	if !strings.Contains(err.Error(), "status 429") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestIsProviderError_Other(t *testing.T) {
	if IsProviderError(ErrNotFound) {
		t.Error("sentinel should not be a provider error")
	}
}
