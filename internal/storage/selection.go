package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/focusvault/pomo/pkg/models"
)

const selectionStateFile = ".pomo_state.yaml"

// SelectionStore persists the active task selection across process
// restarts as YAML at the vault root.
type SelectionStore interface {
	// Load returns the persisted selection, or nil when none exists.
	Load() (*models.SelectionState, error)
	Save(state *models.SelectionState) error
	Clear() error
}

type fileSelectionStore struct {
	vaultRoot string
}

// NewSelectionStore creates a SelectionStore writing to
// .pomo_state.yaml under vaultRoot.
func NewSelectionStore(vaultRoot string) SelectionStore {
	return &fileSelectionStore{vaultRoot: vaultRoot}
}

func (s *fileSelectionStore) statePath() string {
	return filepath.Join(s.vaultRoot, selectionStateFile)
}

func (s *fileSelectionStore) Load() (*models.SelectionState, error) {
	data, err := os.ReadFile(s.statePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading selection state: %w", err)
	}

	var state models.SelectionState
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing selection state: %w", err)
	}
	if state.SourcePath == "" || state.BlockAnchor == "" {
		// A state file without its identity fields is useless; treat it
		// as absent rather than erroring.
		return nil, nil
	}
	return &state, nil
}

func (s *fileSelectionStore) Save(state *models.SelectionState) error {
	if state == nil {
		return fmt.Errorf("selection state is nil")
	}
	if state.Version == "" {
		state.Version = "1.0"
	}

	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshalling selection state: %w", err)
	}

	tmp := s.statePath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing selection state: %w", err)
	}
	if err := os.Rename(tmp, s.statePath()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing selection state: %w", err)
	}
	return nil
}

func (s *fileSelectionStore) Clear() error {
	if err := os.Remove(s.statePath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing selection state: %w", err)
	}
	return nil
}
