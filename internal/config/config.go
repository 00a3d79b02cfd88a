package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DirName is the per-workspace state directory.
const DirName = ".palletscan"

// UpdatePalletRoute is the ERP route that assigns a pallet to a package destination.
const UpdatePalletRoute = "/stock_barcode/update_pallet"

// Config holds all palletscan configuration.
type Config struct {
	// ERP connection
	Server ServerConfig `yaml:"server"`

	// Scan workflow behaviour
	Scan ScanConfig `yaml:"scan"`

	// Scan history
	Journal JournalConfig `yaml:"journal"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Terminal UI
	UI UIConfig `yaml:"ui"`

	// Package lines shown on the station when none are given on the command line
	Lines []LineConfig `yaml:"lines"`
}

// ServerConfig configures the ERP JSON-RPC endpoint.
type ServerConfig struct {
	URL      string `yaml:"url"`
	Database string `yaml:"database"`
	Login    string `yaml:"login"`
	Password string `yaml:"password"`
	Timeout  string `yaml:"timeout"`
}

// ScanConfig configures the pallet scan workflow.
type ScanConfig struct {
	Route        string `yaml:"route"`
	ResultTTL    string `yaml:"result_ttl"`    // how long a result stays on screen
	CheckEnabled bool   `yaml:"check_enabled"` // ask the ERP whether pallet scanning is enabled per line
}

// JournalConfig configures the SQLite scan history.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// UIConfig configures the terminal station.
type UIConfig struct {
	Language string `yaml:"language"` // en, zh
	Theme    string `yaml:"theme"`    // light, dark, "" = detect
}

// LineConfig is one package line (stock.package.destination record).
type LineConfig struct {
	ResID int64  `yaml:"res_id"`
	Name  string `yaml:"name"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:     "http://localhost:8069",
			Timeout: "30s",
		},
		Scan: ScanConfig{
			Route:     UpdatePalletRoute,
			ResultTTL: "5s",
		},
		Journal: JournalConfig{
			Enabled: true,
			Path:    filepath.Join(DirName, "journal.db"),
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   filepath.Join(DirName, "logs"),
		},
		UI: UIConfig{
			Language: "en",
		},
	}
}

// DefaultConfigPath returns the default path to .palletscan/config.yaml.
func DefaultConfigPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return filepath.Join(DirName, "config.yaml")
	}
	return filepath.Join(cwd, DirName, "config.yaml")
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Missing file: defaults plus environment
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}

	// Holds the ERP password
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PALLETSCAN_URL"); v != "" {
		c.Server.URL = v
	}
	if v := os.Getenv("PALLETSCAN_DB"); v != "" {
		c.Server.Database = v
	}
	if v := os.Getenv("PALLETSCAN_LOGIN"); v != "" {
		c.Server.Login = v
	}
	if v := os.Getenv("PALLETSCAN_PASSWORD"); v != "" {
		c.Server.Password = v
	}
	if v := os.Getenv("PALLETSCAN_LANG"); v != "" {
		c.UI.Language = v
	}
}

// GetServerTimeout returns the RPC timeout as a duration.
func (c *Config) GetServerTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// GetResultTTL returns how long a scan result stays displayed.
func (c *Config) GetResultTTL() time.Duration {
	d, err := time.ParseDuration(c.Scan.ResultTTL)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// GetRoute returns the update route, falling back to the standard one.
func (c *Config) GetRoute() string {
	if strings.TrimSpace(c.Scan.Route) == "" {
		return UpdatePalletRoute
	}
	return c.Scan.Route
}

// HasCredentials reports whether a session login should be attempted.
func (c *Config) HasCredentials() bool {
	return c.Server.Database != "" && c.Server.Login != ""
}

// ValidLanguages lists the supported UI languages.
var ValidLanguages = []string{"en", "zh"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server URL not configured (set server.url or PALLETSCAN_URL)")
	}
	u, err := url.Parse(c.Server.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid server URL: %q", c.Server.URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid server URL scheme: %s", u.Scheme)
	}

	if c.Server.Login != "" && c.Server.Database == "" {
		return fmt.Errorf("server.database is required when server.login is set")
	}

	validLang := false
	for _, l := range ValidLanguages {
		if c.UI.Language == l {
			validLang = true
			break
		}
	}
	if !validLang {
		return fmt.Errorf("invalid UI language: %s (valid: %v)", c.UI.Language, ValidLanguages)
	}

	seen := make(map[int64]bool, len(c.Lines))
	for _, line := range c.Lines {
		if line.ResID <= 0 {
			return fmt.Errorf("invalid line res_id: %d", line.ResID)
		}
		if seen[line.ResID] {
			return fmt.Errorf("duplicate line res_id: %d", line.ResID)
		}
		seen[line.ResID] = true
	}

	return nil
}

// ParseLineFlag parses a --line value of the form "ID" or "ID=NAME".
func ParseLineFlag(s string) (LineConfig, error) {
	idPart, name, _ := strings.Cut(strings.TrimSpace(s), "=")
	id, err := strconv.ParseInt(strings.TrimSpace(idPart), 10, 64)
	if err != nil || id <= 0 {
		return LineConfig{}, fmt.Errorf("invalid line %q: want ID or ID=NAME", s)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("#%d", id)
	}
	return LineConfig{ResID: id, Name: name}, nil
}
