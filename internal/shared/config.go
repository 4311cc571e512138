package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

//go:embed config.example.toml
var exampleConf []byte

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("loopback", isLoopback); err != nil {
		panic(fmt.Sprintf("failed to register loopback validation: %v", err))
	}
	return v
}

// isLoopback accepts IP addresses on the local machine only, so the token endpoint is never reachable from the network.
func isLoopback(fl validator.FieldLevel) bool {
	ip := net.ParseIP(fl.Field().String())
	return ip != nil && ip.IsLoopback()
}

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Spotify  SpotifyConfig  `toml:"spotify"`
	Server   ServerConfig   `toml:"server"`
	Fetch    FetchConfig    `toml:"fetch"`
	Database DatabaseConfig `toml:"database"`
}

// SpotifyConfig contains the registered application and the endpoints it talks to.
type SpotifyConfig struct {
	ClientID string   `toml:"client_id" validate:"required"`
	Scopes   []string `toml:"scopes" validate:"required,min=1,dive,required"`
	AuthURL  string   `toml:"auth_url" validate:"required,url"`
	APIURL   string   `toml:"api_url" validate:"required,url"`
}

// ServerConfig contains the loopback listener address.
//
// The port must match a redirect URI registered with the provider, so it is only read from the config file.
type ServerConfig struct {
	Host string `toml:"host" validate:"required,ip,loopback"`
	Port int    `toml:"port" validate:"required,min=1,max=65535"`
}

// FetchConfig controls page requests against the API.
type FetchConfig struct {
	MaxAttempts int      `toml:"max_attempts" validate:"min=1"`
	RetryDelay  Duration `toml:"retry_delay"`
	Timeout     Duration `toml:"timeout" validate:"gt=0"`
	PageSize    int      `toml:"page_size" validate:"min=1,max=100"`
	RateLimit   float64  `toml:"rate_limit" validate:"gte=0"` // requests per second, 0 disables pacing
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// Duration is a [time.Duration] that decodes from strings such as "2s" or "1m30s".
type Duration time.Duration

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a [time.Duration].
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// RedirectURI returns the URI the provider redirects to after authorization.
func (s ServerConfig) RedirectURI() string {
	return "http://" + s.Addr() + "/redirect"
}

// Addr returns the host:port the loopback listener binds.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// LoadConfig reads a TOML configuration file layered over the embedded defaults.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadConfigOrDefault loads path when it exists and falls back to [DefaultConfig] otherwise.
func LoadConfigOrDefault(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
