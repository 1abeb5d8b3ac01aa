package models

import "time"

// SelectionState is the persisted form of the active task selection,
// stored as .pomo_state.yaml at the vault root so one-shot CLI commands
// can pick up where the previous invocation left off. The anchor is the
// durable handle; line numbers are recomputed on load.
type SelectionState struct {
	Version     string    `yaml:"version"`
	SourcePath  string    `yaml:"source_path"`
	BlockAnchor string    `yaml:"block_anchor"`
	DisplayName string    `yaml:"display_name,omitempty"`
	Pinned      bool      `yaml:"pinned"`
	SelectedAt  time.Time `yaml:"selected_at"`

	// SessionsAtSelect records the counter value observed when the task
	// was selected, used only for display deltas.
	SessionsAtSelect int `yaml:"sessions_at_select"`
}
