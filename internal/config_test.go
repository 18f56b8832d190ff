package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/tonote/pkg/config"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

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
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestAudioConfig(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*AudioConfig)
		wantErr bool
	}{
		{"defaults", func(*AudioConfig) {}, false},
		{"empty backend defaults", func(c *AudioConfig) { c.Backend = "" }, false},
		{"portaudio", func(c *AudioConfig) { c.Backend = AudioBackendPortAudio }, false},
		{"unknown backend", func(c *AudioConfig) { c.Backend = "alsa" }, true},
		{"sample rate too low", func(c *AudioConfig) { c.SampleRate = 4000 }, true},
		{"three channels", func(c *AudioConfig) { c.Channels = 3 }, true},
		{"no scratch dir", func(c *AudioConfig) { c.ScratchDir = "" }, true},
		{"tone above nyquist", func(c *AudioConfig) { c.ToneHz = 7000 }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig().Audio
			tc.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
			if err == nil && cfg.Backend == "" {
				t.Error("backend should be defaulted")
			}
		})
	}
}

func TestSearchConfig(t *testing.T) {
	cfg := SearchConfig{Name: "", Limit: 10}
	if err := cfg.Validate(); err == nil {
		t.Error("empty name should fail")
	}
	cfg = SearchConfig{Name: "x", Limit: 0}
	if err := cfg.Validate(); err == nil {
		t.Error("zero limit should fail")
	}
}

func TestEventsConfigRejectsNegativeThrottle(t *testing.T) {
	cfg := EventsConfig{ElapsedThrottle: -time.Second}
	if err := cfg.Validate(); err == nil {
		t.Error("negative throttle should fail")
	}
}

func TestLoadYAMLOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("TONOTE_TEST_TOKEN", "s3cret")
	yaml := `
app:
  log_level: debug
  http:
    port: 9090
auth:
  mode: token
  token: ${TONOTE_TEST_TOKEN}
audio:
  sample_rate: 16000
events:
  elapsed_throttle: 250ms
seed: false
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.HTTP.Port != 9090 || cfg.App.LogLevel.String() != "DEBUG" {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Auth.Token != "s3cret" {
		t.Errorf("token = %q, want env expansion", cfg.Auth.Token)
	}
	if cfg.Audio.SampleRate != 16000 || cfg.Audio.Channels != 1 {
		t.Errorf("audio = %+v", cfg.Audio)
	}
	if cfg.Events.ElapsedThrottle != 250*time.Millisecond {
		t.Errorf("throttle = %v", cfg.Events.ElapsedThrottle)
	}
	if cfg.Seed {
		t.Error("seed should be false")
	}
	if cfg.Search.Name != "tonote" {
		t.Errorf("search name = %q, want default", cfg.Search.Name)
	}
}
