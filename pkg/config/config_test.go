package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDefaultConfig verifies that DefaultConfig returns valid defaults.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Expected default host 0.0.0.0, got %s", cfg.Server.Host)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("Expected default postgres port 5432, got %d", cfg.Database.Port)
	}
	if cfg.Database.Database != "natalscope" {
		t.Errorf("Expected database natalscope, got %s", cfg.Database.Database)
	}
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("Expected max open conns 25, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Ephemeris.Provider != "table" {
		t.Errorf("Expected table ephemeris provider, got %s", cfg.Ephemeris.Provider)
	}
	if cfg.Geocoder.RateLimitSeconds != 1.0 {
		t.Errorf("Expected 1.0s geocoder rate limit, got %f", cfg.Geocoder.RateLimitSeconds)
	}
	if cfg.Auth.TokenDurationHours != 24 {
		t.Errorf("Expected 24h token duration, got %d", cfg.Auth.TokenDurationHours)
	}
	if cfg.Chart.HouseSystem != "whole_sign" {
		t.Errorf("Expected whole_sign house system, got %s", cfg.Chart.HouseSystem)
	}
	if cfg.Chart.Ayanamsa != "lahiri" {
		t.Errorf("Expected lahiri ayanamsa, got %s", cfg.Chart.Ayanamsa)
	}
	if cfg.Chart.AscendantMethod != "spherical" {
		t.Errorf("Expected spherical ascendant method, got %s", cfg.Chart.AscendantMethod)
	}
}

// TestLoadNonExistentFile tests that Load returns default config when file doesn't exist.
func TestLoadNonExistentFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.json")
	if err != nil {
		t.Fatalf("Expected no error for non-existent file, got: %v", err)
	}
	if cfg == nil {
		t.Fatal("Expected default config, got nil")
	}
	if cfg.Server.Port != "8080" {
		t.Error("Did not get default config for non-existent file")
	}
}

// TestLoadInvalidJSON tests error handling for malformed JSON.
func TestLoadInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.json")

	if err := os.WriteFile(configPath, []byte("{ invalid json }"), 0644); err != nil {
		t.Fatalf("Failed to write invalid config: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("Expected error for invalid JSON, got nil")
	}
}

// TestSaveConfigCreatesDirectory tests that Save creates missing directories.
func TestSaveConfigCreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "dir", "config.json")

	cfg := DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Failed to save config with nested directory: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file was not created")
	}
}

// TestConfigRoundTrip tests saving and loading config preserves data.
func TestConfigRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "roundtrip.json")

	original := DefaultConfig()
	original.Server.Port = "3000"
	original.Chart.HouseSystem = "placidus"
	original.Chart.Ayanamsa = "krishnamurti"
	original.Ephemeris.Provider = "jpl"
	original.Ephemeris.DEFilePath = "/data/de440.bin"
	original.Geocoder.RateLimitSeconds = 2.5

	if err := original.Save(configPath); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}

	if loaded.Server.Port != original.Server.Port {
		t.Error("Port not preserved in round trip")
	}
	if loaded.Chart.HouseSystem != original.Chart.HouseSystem {
		t.Error("House system not preserved in round trip")
	}
	if loaded.Chart.Ayanamsa != original.Chart.Ayanamsa {
		t.Error("Ayanamsa not preserved in round trip")
	}
	if loaded.Ephemeris.DEFilePath != original.Ephemeris.DEFilePath {
		t.Error("DE file path not preserved in round trip")
	}
	if loaded.Geocoder.RateLimitSeconds != original.Geocoder.RateLimitSeconds {
		t.Error("Geocoder rate limit not preserved in round trip")
	}
}

// TestEnvironmentOverrides tests environment variable overrides.
func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("NATALSCOPE_PORT", "7777")
	t.Setenv("NATALSCOPE_DB_PASSWORD", "env-password")
	t.Setenv("NATALSCOPE_OPENCAGE_API_KEY", "env-geo-key")
	t.Setenv("NATALSCOPE_JWT_SECRET", "env-jwt-secret")
	t.Setenv("NATALSCOPE_DE_FILE", "/data/de421.bin")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")
	testCfg := DefaultConfig()
	testCfg.Server.Port = "8080"
	testCfg.Database.Password = "original-password"
	if err := testCfg.Save(configPath); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != "7777" {
		t.Errorf("Expected port 7777 from env, got %s", cfg.Server.Port)
	}
	if cfg.Database.Password != "env-password" {
		t.Errorf("Expected env-password from env, got %s", cfg.Database.Password)
	}
	if cfg.Geocoder.APIKey != "env-geo-key" {
		t.Errorf("Expected geocoder API key from env, got %s", cfg.Geocoder.APIKey)
	}
	if cfg.Auth.JWTSecret != "env-jwt-secret" {
		t.Errorf("Expected JWT secret from env, got %s", cfg.Auth.JWTSecret)
	}
	if cfg.Ephemeris.DEFilePath != "/data/de421.bin" {
		t.Errorf("Expected DE path from env, got %s", cfg.Ephemeris.DEFilePath)
	}
	if cfg.Ephemeris.Provider != "jpl" {
		t.Errorf("Expected DE override to switch provider to jpl, got %s", cfg.Ephemeris.Provider)
	}
}
