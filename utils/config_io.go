package utils

import (
	"elk-bot/model"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FlagStore persists the runtime feature flags. The file is read on every
// Load so edits made outside the bot take effect immediately.
type FlagStore struct {
	path string
	mu   sync.Mutex
}

func NewFlagStore(path string) *FlagStore {
	return &FlagStore{path: path}
}

// Load reads the flags file. A missing file yields the zero flags.
func (f *FlagStore) Load() (*model.Flags, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *FlagStore) load() (*model.Flags, error) {
	fileData, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.Flags{}, nil
		}
		return nil, fmt.Errorf("error reading flags file %s: %w", f.path, err)
	}

	var flags model.Flags
	if err := json.Unmarshal(fileData, &flags); err != nil {
		return nil, fmt.Errorf("error unmarshalling flags from %s: %w", f.path, err)
	}
	return &flags, nil
}

func (f *FlagStore) save(flags *model.Flags) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("error creating directory for %s: %w", f.path, err)
	}

	jsonData, err := json.MarshalIndent(flags, "", "    ")
	if err != nil {
		return fmt.Errorf("error marshalling flags to JSON: %w", err)
	}

	if err := os.WriteFile(f.path, jsonData, 0644); err != nil {
		return fmt.Errorf("error writing flags to file %s: %w", f.path, err)
	}
	return nil
}

// ToggleTranslation flips translation_enabled, saves, and returns the new state.
func (f *FlagStore) ToggleTranslation() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	flags, err := f.load()
	if err != nil {
		return false, err
	}
	flags.TranslationEnabled = !flags.TranslationEnabled
	if err := f.save(flags); err != nil {
		return false, err
	}
	return flags.TranslationEnabled, nil
}
