package history

import (
	"encoding/json"
	"os"
	"path/filepath"
)

func (s *Store) ensureLoaded() {
	s.loadOnce.Do(func() {
		raw, err := os.ReadFile(s.path)
		if err != nil {
			return
		}
		var records []Record
		if err := json.Unmarshal(raw, &records); err != nil {
			return
		}
		s.mu.Lock()
		s.records = records
		s.mu.Unlock()
	})
}

func (s *Store) appendFile(rec Record) error {
	s.ensureLoaded()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	return s.persistLocked()
}

func (s *Store) recentFile(limit int) []Record {
	s.ensureLoaded()
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Record{}
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i])
	}
	return out
}

func (s *Store) persistLocked() error {
	raw, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, raw, 0o644)
}
