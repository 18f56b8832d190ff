package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Audio backends.
const (
	AudioBackendSimulated = "simulated"
	AudioBackendPortAudio = "portaudio"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Auth   AuthConfig        `yaml:"auth"`
	Search SearchConfig      `yaml:"search"`
	Audio  AudioConfig       `yaml:"audio"`
	Events EventsConfig      `yaml:"events"`
	// Seed fills the store with the demo lists on start.
	Seed bool `yaml:"seed"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Search.Validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	return c.Events.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// SearchConfig configures the in-memory search index.
type SearchConfig struct {
	// Name identifies the shared in-memory SQLite database.
	Name  string `yaml:"name"`
	Limit int    `yaml:"limit"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Limit, validation.Required, validation.Min(1), validation.Max(500)),
	)
}

// AudioConfig configures voice capture and playback.
type AudioConfig struct {
	Backend    string  `yaml:"backend"`
	SampleRate int     `yaml:"sample_rate"`
	Channels   int     `yaml:"channels"`
	ScratchDir string  `yaml:"scratch_dir"`
	ToneHz     float64 `yaml:"tone_hz"`
}

// Validate validates the audio configuration.
func (c *AudioConfig) Validate() error {
	if c.Backend == "" {
		c.Backend = AudioBackendSimulated
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.In(AudioBackendSimulated, AudioBackendPortAudio)),
		validation.Field(&c.SampleRate, validation.Required, validation.Min(8000), validation.Max(192000)),
		validation.Field(&c.Channels, validation.Required, validation.In(1, 2)),
		validation.Field(&c.ScratchDir, validation.Required),
		validation.Field(&c.ToneHz, validation.Min(0.0), validation.Max(float64(c.SampleRate)/2)),
	)
}

// EventsConfig configures the SSE broker.
type EventsConfig struct {
	ElapsedThrottle time.Duration `yaml:"elapsed_throttle"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ElapsedThrottle, validation.Min(0*time.Millisecond)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Search: SearchConfig{
			Name:  "tonote",
			Limit: 20,
		},
		Audio: AudioConfig{
			Backend:    AudioBackendSimulated,
			SampleRate: 12000,
			Channels:   1,
			ScratchDir: filepath.Join(os.TempDir(), "tonote"),
			ToneHz:     440,
		},
		Events: EventsConfig{
			ElapsedThrottle: 500 * time.Millisecond,
		},
		Seed: true,
	}
}
