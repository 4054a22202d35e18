package canon

import (
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"

	"shop-assistant-be/internal/pkg/logger"
)

// LoadFile reads a dictionary artifact produced by the offline canonicalization job.
func LoadFile(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read canon dictionary %s: %w", path, err)
	}

	var d Dictionary
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse canon dictionary %s: %w", path, err)
	}
	return &d, nil
}

// Store publishes the active snapshot. Readers never block; reloads swap wholesale.
type Store struct {
	current atomic.Pointer[Dictionary]
	logger  logger.ILogger
}

// NewStore creates a store seeded with the compiled-in table.
func NewStore(log logger.ILogger) *Store {
	s := &Store{logger: log}
	s.current.Store(Default())
	return s
}

// Current returns the active snapshot. Callers must treat it as read-only.
func (s *Store) Current() *Dictionary {
	return s.current.Load()
}

// Swap validates d and publishes it, replacing the previous snapshot.
func (s *Store) Swap(d *Dictionary) error {
	defaulted, err := d.Validate()
	if err != nil {
		return err
	}
	if len(defaulted) > 0 {
		s.logger.Warn("Canon", "Categories missing from categoryCanon were defaulted", map[string]interface{}{
			"categories": defaulted,
		})
	}
	s.current.Store(d)
	return nil
}

// LoadOrDefault loads path into the store. Any failure keeps (or restores) the
// compiled-in table; the error is logged and returned for callers that care.
func (s *Store) LoadOrDefault(path string) error {
	if path == "" {
		s.current.Store(Default())
		return nil
	}

	d, err := LoadFile(path)
	if err == nil {
		err = s.Swap(d)
	}
	if err != nil {
		s.logger.Error("Canon", "Failed to load dictionary, using default table", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		s.current.Store(Default())
		return err
	}

	s.logger.Info("Canon", "Dictionary loaded", map[string]interface{}{
		"path":   path,
		"tokens": d.Size(),
	})
	return nil
}

// Reload re-reads path and swaps only on success, keeping the last good snapshot otherwise.
func (s *Store) Reload(path string) error {
	d, err := LoadFile(path)
	if err != nil {
		s.logger.Warn("Canon", "Reload failed, keeping current dictionary", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return err
	}
	if err := s.Swap(d); err != nil {
		s.logger.Warn("Canon", "Reloaded dictionary rejected", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return err
	}
	s.logger.Info("Canon", "Dictionary reloaded", map[string]interface{}{
		"path":   path,
		"tokens": d.Size(),
	})
	return nil
}
