package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tempoapp/tempo/internal/track"
)

// Document is the on-disk backup format: the same payloads the core keeps
// under its persisted keys, wrapped in one JSON object.
type Document struct {
	Version    int               `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Projects   []track.Project   `json:"projects"`
	Entries    []track.TimeEntry `json:"entries"`
	Timer      track.TimerState  `json:"timer"`
}

const formatVersion = 1

// Export writes the tracker's full state to path as indented JSON.
func Export(tr *track.Tracker, path string) error {
	doc := Document{
		Version:    formatVersion,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Projects:   tr.Projects().All(),
		Entries:    tr.Entries().All(),
		Timer:      tr.Timer(),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal backup: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}

// Import reads a backup file and replaces the tracker's state with it.
// The tracker resyncs its ID counter before returning, so IDs allocated
// after an import can never collide with imported data. A file that fails
// to parse leaves the tracker untouched.
func Import(tr *track.Tracker, path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse backup: %w", err)
	}
	if doc.Version > formatVersion {
		return nil, fmt.Errorf("unsupported backup version %d", doc.Version)
	}

	tr.Import(doc.Projects, doc.Entries, doc.Timer)
	return &doc, nil
}
