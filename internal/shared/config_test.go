package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "amx.db" {
			t.Errorf("expected database path amx.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if config.Credentials.Google.RedirectURI != "http://localhost:8080/oauth2callback" {
			t.Errorf("unexpected redirect URI: %s", config.Credentials.Google.RedirectURI)
		}

		if config.Source.UserAgent == "" {
			t.Error("expected a default browser user agent")
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[server]
host = "0.0.0.0"
port = 9000

[source]
user_agent = "test-agent"

[credentials.google]
client_id = "test_client_id"
client_secret = "test_secret"
redirect_uri = "http://localhost:9000/oauth2callback"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("unexpected database path: %s", config.Database.Path)
		}
		if config.Server.Port != 9000 {
			t.Errorf("unexpected server port: %d", config.Server.Port)
		}
		if config.Credentials.Google.ClientID != "test_client_id" {
			t.Errorf("unexpected client ID: %s", config.Credentials.Google.ClientID)
		}
		if config.Source.UserAgent != "test-agent" {
			t.Errorf("unexpected user agent: %s", config.Source.UserAgent)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("SaveConfig round-trips", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		config := DefaultConfig()
		config.Credentials.Google.AccessToken = "access-123"
		config.Credentials.Google.RefreshToken = "refresh-456"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}
		if loaded.Credentials.Google.AccessToken != "access-123" {
			t.Errorf("access token not persisted: %s", loaded.Credentials.Google.AccessToken)
		}
		if loaded.Credentials.Google.RefreshToken != "refresh-456" {
			t.Errorf("refresh token not persisted: %s", loaded.Credentials.Google.RefreshToken)
		}
	})
}
