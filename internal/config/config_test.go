package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// DEFAULTS AND PERSISTENCE
// =============================================================================

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PALLETSCAN_URL", "PALLETSCAN_DB", "PALLETSCAN_LOGIN", "PALLETSCAN_PASSWORD", "PALLETSCAN_LANG"} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Scan.Route != "/stock_barcode/update_pallet" {
		t.Errorf("expected default route, got %s", cfg.Scan.Route)
	}
	if cfg.GetResultTTL() != 5*time.Second {
		t.Errorf("expected 5s result TTL, got %v", cfg.GetResultTTL())
	}
	if cfg.UI.Language != "en" {
		t.Errorf("expected language=en, got %s", cfg.UI.Language)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Server.URL = "https://erp.example.com"
	cfg.Server.Database = "depot"
	cfg.Server.Login = "scanner"
	cfg.Lines = []LineConfig{{ResID: 42, Name: "PACK-1"}}

	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://erp.example.com", loaded.Server.URL)
	assert.Equal(t, "depot", loaded.Server.Database)
	assert.Equal(t, []LineConfig{{ResID: 42, Name: "PACK-1"}}, loaded.Lines)
	assert.True(t, loaded.HasCredentials())
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [broken"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PALLETSCAN_URL", "http://erp:8069")
	t.Setenv("PALLETSCAN_DB", "prod")
	t.Setenv("PALLETSCAN_LOGIN", "gun-07")
	t.Setenv("PALLETSCAN_PASSWORD", "secret")
	t.Setenv("PALLETSCAN_LANG", "zh")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, "http://erp:8069", cfg.Server.URL)
	assert.Equal(t, "prod", cfg.Server.Database)
	assert.Equal(t, "gun-07", cfg.Server.Login)
	assert.Equal(t, "secret", cfg.Server.Password)
	assert.Equal(t, "zh", cfg.UI.Language)
}

// =============================================================================
// GETTERS AND VALIDATION
// =============================================================================

func TestDurationFallbacks(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Timeout = "garbage"
	cfg.Scan.ResultTTL = "-1s"

	assert.Equal(t, 30*time.Second, cfg.GetServerTimeout())
	assert.Equal(t, 5*time.Second, cfg.GetResultTTL())
	assert.Equal(t, UpdatePalletRoute, cfg.GetRoute())

	cfg.Scan.ResultTTL = "250ms"
	assert.Equal(t, 250*time.Millisecond, cfg.GetResultTTL())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty url", func(c *Config) { c.Server.URL = "" }},
		{"relative url", func(c *Config) { c.Server.URL = "erp.local" }},
		{"bad scheme", func(c *Config) { c.Server.URL = "ftp://erp.local" }},
		{"login without database", func(c *Config) { c.Server.Login = "x" }},
		{"unknown language", func(c *Config) { c.UI.Language = "fr" }},
		{"zero res_id", func(c *Config) { c.Lines = []LineConfig{{ResID: 0}} }},
		{"duplicate res_id", func(c *Config) { c.Lines = []LineConfig{{ResID: 1}, {ResID: 1}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestParseLineFlag(t *testing.T) {
	line, err := ParseLineFlag("42=PACK-99")
	require.NoError(t, err)
	assert.Equal(t, LineConfig{ResID: 42, Name: "PACK-99"}, line)

	line, err = ParseLineFlag(" 7 ")
	require.NoError(t, err)
	assert.Equal(t, LineConfig{ResID: 7, Name: "#7"}, line)

	for _, bad := range []string{"", "abc", "-3=X", "0"} {
		_, err := ParseLineFlag(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestLoggingConfig_IsCategoryEnabled(t *testing.T) {
	lc := LoggingConfig{}
	assert.False(t, lc.IsCategoryEnabled("scan"))

	lc.DebugMode = true
	assert.True(t, lc.IsCategoryEnabled("scan"))

	lc.Categories = map[string]bool{"scan": false}
	assert.False(t, lc.IsCategoryEnabled("scan"))
	assert.True(t, lc.IsCategoryEnabled("rpc"))
}
