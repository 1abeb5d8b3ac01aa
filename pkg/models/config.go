package models

// VaultConfig holds the pomo configuration read from .pomo.yaml at the
// vault root. Zero values mean "use defaults"; the configuration manager
// fills defaults before handing the struct out.
type VaultConfig struct {
	// Dialect selects how task metadata is encoded in document text.
	Dialect Dialect `yaml:"dialect"`

	// Query configures the optional external query engine.
	Query QueryConfig `yaml:"query"`

	// Sources toggles the lower-trust task sources.
	Sources SourcesConfig `yaml:"sources"`

	// Focus configures the work-session timer.
	Focus FocusConfig `yaml:"focus"`

	// Log configures the optional markdown session log.
	Log LogConfig `yaml:"log"`

	// Notifications configures the completed-session webhook.
	Notifications NotificationConfig `yaml:"notifications"`
}

// QueryConfig describes the external command that produces task records
// as JSON, plus the bounded retry policy applied while its index catches up.
type QueryConfig struct {
	Command     string   `yaml:"command"`
	Args        []string `yaml:"args"`
	ResultsFile string   `yaml:"results_file"`
	MaxAttempts int      `yaml:"max_attempts"`
	BaseDelayMS int      `yaml:"base_delay_ms"`
}

// SourcesConfig enables or disables optional task sources.
type SourcesConfig struct {
	// PreviewScrape enables scraping task lines from a rendered query
	// results document. Off by default; never a silent fallback.
	PreviewScrape bool `yaml:"preview_scrape"`
}

// FocusConfig holds timer settings.
type FocusConfig struct {
	Minutes int `yaml:"minutes"`
}

// LogConfig points at the vault document that receives one appended
// bullet per completed session. Empty means no session log.
type LogConfig struct {
	File string `yaml:"file"`
}

// NotificationConfig holds webhook notification settings.
type NotificationConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}
