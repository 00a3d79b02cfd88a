package config

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level"`       // debug, info, warn, error
	Dir        string          `yaml:"dir"`         // log directory
	JSONFormat bool            `yaml:"json_format"` // structured JSON lines
	DebugMode  bool            `yaml:"debug_mode"`  // master toggle; false = no logging
	Categories map[string]bool `yaml:"categories"`  // per-category toggles, missing = enabled
}

// IsCategoryEnabled returns whether logging is enabled for a category.
// Returns false if debug_mode is false (production mode).
// Returns true if debug_mode is true and category is enabled (or not specified).
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	if !c.DebugMode {
		return false
	}
	if c.Categories == nil {
		return true // All enabled by default in debug mode
	}
	enabled, exists := c.Categories[category]
	if !exists {
		return true // Enable by default if not specified
	}
	return enabled
}
