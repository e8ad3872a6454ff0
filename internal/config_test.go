package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestChunkingConfig_MinAboveTarget(t *testing.T) {
	cfg := ChunkingConfig{TargetTokens: 100, MinTokens: 200, CharsPerToken: 4}
	if err := cfg.Validate(); err == nil {
		t.Fatal("min above target should fail")
	}
}

func TestSearchConfig_ZeroWeights(t *testing.T) {
	cfg := SearchConfig{DefaultLimit: 10}
	if err := cfg.Validate(); err == nil {
		t.Fatal("all-zero weights should fail")
	}
	cfg = SearchConfig{LexicalWeight: 1, DefaultLimit: 500}
	if err := cfg.Validate(); err == nil {
		t.Fatal("default limit above maximum should fail")
	}
}

func TestEmbeddingConfig_EmptyKeyAllowed(t *testing.T) {
	cfg := NewDefaultConfig().Embedding
	cfg.APIKey = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty api key should be allowed: %v", err)
	}
	cfg.BatchSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero batch size should fail")
	}
}

func TestCollections_Validation(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Collections = []CollectionConfig{{Name: "a", Path: "/x"}, {Name: "a", Path: "/y"}}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("duplicate names should fail, got %v", err)
	}
	cfg.Collections = []CollectionConfig{{Name: "a"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing path should fail")
	}
}
