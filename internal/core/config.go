package core

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/focusvault/pomo/pkg/models"
)

// ConfigurationManager loads and validates the vault configuration from
// .pomo.yaml at the vault root.
type ConfigurationManager interface {
	Load() (*models.VaultConfig, error)
	Validate(cfg *models.VaultConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading the YAML configuration file.
type viperConfigManager struct {
	// vaultRoot is the directory where .pomo.yaml resides.
	vaultRoot string
}

// NewConfigurationManager creates a ConfigurationManager that reads
// configuration relative to vaultRoot.
func NewConfigurationManager(vaultRoot string) ConfigurationManager {
	return &viperConfigManager{vaultRoot: vaultRoot}
}

// defaultVaultConfig returns a VaultConfig populated with sensible defaults.
func defaultVaultConfig() *models.VaultConfig {
	return &models.VaultConfig{
		Dialect: models.DialectTasksEmoji,
		Query: models.QueryConfig{
			MaxAttempts: 3,
			BaseDelayMS: 200,
		},
		Focus: models.FocusConfig{Minutes: 25},
	}
}

// Load reads .pomo.yaml from the vault root. A missing file yields the
// defaults, not an error.
func (cm *viperConfigManager) Load() (*models.VaultConfig, error) {
	cfg := defaultVaultConfig()

	v := viper.New()
	v.SetConfigName(".pomo")
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.vaultRoot)

	// Set Viper defaults so missing keys fall back gracefully.
	v.SetDefault("dialect", string(cfg.Dialect))
	v.SetDefault("query.max_attempts", cfg.Query.MaxAttempts)
	v.SetDefault("query.base_delay_ms", cfg.Query.BaseDelayMS)
	v.SetDefault("sources.preview_scrape", false)
	v.SetDefault("focus.minutes", cfg.Focus.Minutes)
	v.SetDefault("notifications.enabled", false)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading .pomo.yaml: %w", err)
	}

	cfg.Dialect = models.Dialect(v.GetString("dialect"))
	cfg.Query.Command = v.GetString("query.command")
	cfg.Query.Args = v.GetStringSlice("query.args")
	cfg.Query.ResultsFile = v.GetString("query.results_file")
	cfg.Sources.PreviewScrape = v.GetBool("sources.preview_scrape")
	cfg.Log.File = v.GetString("log.file")
	cfg.Notifications.Enabled = v.GetBool("notifications.enabled")
	cfg.Notifications.WebhookURL = v.GetString("notifications.webhook_url")

	// Use IsSet to distinguish "not set" from "explicitly set to 0".
	if v.IsSet("query.max_attempts") {
		cfg.Query.MaxAttempts = v.GetInt("query.max_attempts")
	}
	if v.IsSet("query.base_delay_ms") {
		cfg.Query.BaseDelayMS = v.GetInt("query.base_delay_ms")
	}
	if v.IsSet("focus.minutes") {
		cfg.Focus.Minutes = v.GetInt("focus.minutes")
	}

	return cfg, nil
}

// validDialects is the set of allowed dialect values.
var validDialects = map[models.Dialect]bool{
	models.DialectTasksEmoji: true,
	models.DialectDataview:   true,
}

// Validate checks the configuration for invalid values and returns a
// clear error message identifying every problem found.
func (cm *viperConfigManager) Validate(cfg *models.VaultConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if !validDialects[cfg.Dialect] {
		errs = append(errs, fmt.Sprintf(
			"dialect %q is invalid, must be one of: tasks-emoji, dataview", cfg.Dialect))
	}

	if cfg.Focus.Minutes < 1 || cfg.Focus.Minutes > 240 {
		errs = append(errs, fmt.Sprintf(
			"focus.minutes %d is invalid, must be between 1 and 240", cfg.Focus.Minutes))
	}

	if cfg.Query.MaxAttempts < 1 || cfg.Query.MaxAttempts > 10 {
		errs = append(errs, fmt.Sprintf(
			"query.max_attempts %d is invalid, must be between 1 and 10", cfg.Query.MaxAttempts))
	}

	if cfg.Query.BaseDelayMS < 0 {
		errs = append(errs, fmt.Sprintf(
			"query.base_delay_ms must be non-negative, got %d", cfg.Query.BaseDelayMS))
	}

	if cfg.Sources.PreviewScrape && cfg.Query.ResultsFile == "" {
		errs = append(errs, "sources.preview_scrape requires query.results_file")
	}

	if cfg.Notifications.Enabled && cfg.Notifications.WebhookURL == "" {
		errs = append(errs, "notifications.enabled requires notifications.webhook_url")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
