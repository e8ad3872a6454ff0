package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Token string `yaml:"token"`
	Port  int    `yaml:"port"`
}

var errNoName = errors.New("name is required")

func (s *sample) Validate() error {
	if s.Name == "" {
		return errNoName
	}
	return nil
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("SEEKR_TEST_TOKEN", "secret")

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "name: demo\ntoken: ${SEEKR_TEST_TOKEN}\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := sample{Port: 8080}
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Token != "secret" {
		t.Errorf("token = %q, want secret", cfg.Token)
	}
	if cfg.Port != 8080 {
		t.Errorf("port = %d, want default 8080 kept", cfg.Port)
	}
}

func TestParseFallback(t *testing.T) {
	t.Setenv("SEEKR_TEST_UNSET", "")

	var cfg sample
	if err := Parse("inline", []byte("name: ${SEEKR_TEST_UNSET:-fallback}\n"), &cfg); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Name != "fallback" {
		t.Errorf("name = %q, want fallback", cfg.Name)
	}
}

func TestParseRunsValidator(t *testing.T) {
	var cfg sample
	err := Parse("inline", []byte("port: 1\n"), &cfg)
	if !errors.Is(err, errNoName) {
		t.Fatalf("err = %v, want errNoName", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	var cfg sample
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &cfg); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadOptional(t *testing.T) {
	cfg := sample{Name: "preset"}
	found, err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &cfg)
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if found {
		t.Error("found = true for missing file")
	}
	if cfg.Name != "preset" {
		t.Errorf("name = %q, want preset", cfg.Name)
	}

	empty := sample{}
	if _, err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &empty); !errors.Is(err, errNoName) {
		t.Errorf("err = %v, want validation error", err)
	}
}
