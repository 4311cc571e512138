package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./spotx.db" {
			t.Errorf("expected database path ./spotx.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 43019 {
			t.Errorf("expected server port 43019, got %d", config.Server.Port)
		}

		if config.Server.RedirectURI() != "http://127.0.0.1:43019/redirect" {
			t.Errorf("unexpected redirect URI %s", config.Server.RedirectURI())
		}

		if config.Fetch.MaxAttempts != 3 {
			t.Errorf("expected 3 attempts, got %d", config.Fetch.MaxAttempts)
		}

		if config.Fetch.RetryDelay.Std() != 2*time.Second {
			t.Errorf("expected retry delay 2s, got %v", config.Fetch.RetryDelay.Std())
		}

		if len(config.Spotify.Scopes) != 3 {
			t.Errorf("expected 3 default scopes, got %v", config.Spotify.Scopes)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate, got %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[spotify]
client_id = "test_client_id"

[fetch]
max_attempts = 5
retry_delay = "250ms"

[database]
path = "/custom/path.db"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected client_id test_client_id, got %s", config.Spotify.ClientID)
		}
		if config.Fetch.MaxAttempts != 5 {
			t.Errorf("expected 5 attempts, got %d", config.Fetch.MaxAttempts)
		}
		if config.Fetch.RetryDelay.Std() != 250*time.Millisecond {
			t.Errorf("expected 250ms delay, got %v", config.Fetch.RetryDelay.Std())
		}
		if config.Server.Port != 43019 {
			t.Errorf("expected default port to survive partial config, got %d", config.Server.Port)
		}
		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
	})

	t.Run("LoadConfig rejects invalid values", func(t *testing.T) {
		tc := []struct {
			name string
			body string
		}{
			{name: "zero attempts", body: "[fetch]\nmax_attempts = 0\n"},
			{name: "bad host", body: "[server]\nhost = \"localhost:80\"\n"},
			{name: "all interfaces", body: "[server]\nhost = \"0.0.0.0\"\n"},
			{name: "lan address", body: "[server]\nhost = \"192.168.1.10\"\n"},
			{name: "ipv6 all interfaces", body: "[server]\nhost = \"::\"\n"},
			{name: "page size too large", body: "[fetch]\npage_size = 500\n"},
			{name: "empty client id", body: "[spotify]\nclient_id = \"\"\n"},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				configPath := filepath.Join(t.TempDir(), "config.toml")
				if err := os.WriteFile(configPath, []byte(tt.body), 0644); err != nil {
					t.Fatalf("failed to write test config: %v", err)
				}

				_, err := LoadConfig(configPath)
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})

	t.Run("loopback hosts", func(t *testing.T) {
		tc := []struct {
			host, addr string
		}{
			{"127.0.0.1", "127.0.0.1:43019"},
			{"127.0.0.2", "127.0.0.2:43019"},
			{"::1", "[::1]:43019"},
		}
		for _, tt := range tc {
			t.Run(tt.host, func(t *testing.T) {
				config := DefaultConfig()
				config.Server.Host = tt.host
				if err := config.Validate(); err != nil {
					t.Fatalf("expected loopback host to be valid, got %v", err)
				}
				if config.Server.Addr() != tt.addr {
					t.Errorf("expected %s, got %s", tt.addr, config.Server.Addr())
				}
				if config.Server.RedirectURI() != "http://"+tt.addr+"/redirect" {
					t.Errorf("unexpected redirect URI %s", config.Server.RedirectURI())
				}
			})
		}
	})

	t.Run("LoadConfig rejects bad durations", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[fetch]\nretry_delay = \"soon\"\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected parse error for invalid duration")
		}
	})

	t.Run("LoadConfigOrDefault", func(t *testing.T) {
		config, err := LoadConfigOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
		if err != nil {
			t.Fatalf("expected defaults for missing file, got %v", err)
		}
		if config.Server.Port != 43019 {
			t.Errorf("expected default port, got %d", config.Server.Port)
		}
	})
}
