package sink

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rpineda26/facultyscraper/internal/scraper"
)

// StatsFile appends one snapshot per run to a JSON file, preserving the
// snapshots of earlier runs.
type StatsFile struct {
	path string
}

// NewStatsFile returns a writer for path. The file is only touched when a
// snapshot is appended.
func NewStatsFile(path string) *StatsFile {
	return &StatsFile{path: path}
}

// Append reads the existing history, adds snap, and rewrites the file as an
// indented JSON list. A legacy single-object file is wrapped into a list; an
// unreadable file starts a fresh history.
func (s *StatsFile) Append(snap scraper.Snapshot) error {
	history := s.loadHistory()

	entry, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	history = append(history, entry)

	out, err := json.MarshalIndent(history, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := os.WriteFile(s.path, out, 0o644); err != nil {
		return fmt.Errorf("write statistics file %s: %w", s.path, err)
	}
	return nil
}

func (s *StatsFile) loadHistory() []json.RawMessage {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	var history []json.RawMessage
	if err := json.Unmarshal(data, &history); err == nil {
		return history
	}
	if json.Valid(data) {
		return []json.RawMessage{json.RawMessage(data)}
	}
	return nil
}
