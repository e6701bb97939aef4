package track

import (
	"encoding/json"
	"time"

	"github.com/tempoapp/tempo/internal/kv"
	"github.com/tempoapp/tempo/internal/logger"
)

// EntryStore owns the list of time entries. The in-memory slice is the
// source of truth; every mutation is mirrored to the persisted store
// best-effort. A failed write is logged and otherwise ignored; it never
// rolls back the in-memory mutation.
type EntryStore struct {
	store   kv.Store
	log     *logger.Logger
	ids     *IDGenerator
	entries []TimeEntry
}

func NewEntryStore(store kv.Store, log *logger.Logger, ids *IDGenerator) *EntryStore {
	s := &EntryStore{store: store, log: log, ids: ids}
	s.load()
	return s
}

func (s *EntryStore) load() {
	data, ok, err := s.store.Get(kv.KeyEntries)
	if err != nil {
		s.log.Warn("entries load failed", logger.F("err", err))
		return
	}
	if !ok {
		return
	}
	var entries []TimeEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		// Corrupt data degrades to an empty collection.
		s.log.Warn("entries corrupt, starting empty", logger.F("err", err))
		return
	}
	s.entries = entries
}

func (s *EntryStore) persist() {
	data, err := json.Marshal(s.entries)
	if err != nil {
		s.log.Error("entries marshal failed", logger.F("err", err))
		return
	}
	if err := s.store.Set(kv.KeyEntries, data); err != nil {
		s.log.Warn("entries persist failed", logger.F("err", err))
	}
}

// All returns a copy of the entries. Callers may sort or filter it freely
// without affecting the store's own order.
func (s *EntryStore) All() []TimeEntry {
	return append([]TimeEntry(nil), s.entries...)
}

// ByID returns the entry with the given ID, or nil.
func (s *EntryStore) ByID(id int64) *TimeEntry {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return &s.entries[i]
		}
	}
	return nil
}

// ForProject returns all entries belonging to a project.
func (s *EntryStore) ForProject(projectID int64) []TimeEntry {
	var out []TimeEntry
	for _, e := range s.entries {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	return out
}

// Add creates a new entry with a freshly allocated ID. New entries carry the
// AutoEdit hint so the UI can open the note editor once.
func (s *EntryStore) Add(projectID int64, durationMs int64, note string, start time.Time) *TimeEntry {
	entry := TimeEntry{
		ID:        s.ids.Next(),
		ProjectID: projectID,
		Start:     start,
		Duration:  durationMs,
		Note:      note,
		AutoEdit:  true,
	}
	s.entries = append(s.entries, entry)
	s.persist()
	return s.ByID(entry.ID)
}

// addActive creates an already-active entry in a single persisted write.
// Used by the timer coordinator so starting a run costs exactly one entry
// store write.
func (s *EntryStore) addActive(projectID int64, note string, start time.Time) *TimeEntry {
	entry := TimeEntry{
		ID:        s.ids.Next(),
		ProjectID: projectID,
		Start:     start,
		Note:      note,
		Active:    true,
		AutoEdit:  true,
	}
	s.entries = append(s.entries, entry)
	s.persist()
	return s.ByID(entry.ID)
}

// Update applies fn to the entry with the given ID. Missing ID is a no-op.
func (s *EntryStore) Update(id int64, fn func(*TimeEntry)) {
	for i := range s.entries {
		if s.entries[i].ID == id {
			fn(&s.entries[i])
			s.persist()
			return
		}
	}
}

// AddDuration folds additional elapsed milliseconds into an entry.
func (s *EntryStore) AddDuration(id int64, ms int64) {
	s.Update(id, func(e *TimeEntry) { e.Duration += ms })
}

// SetActive flips the active flag on an entry.
func (s *EntryStore) SetActive(id int64, active bool) {
	s.Update(id, func(e *TimeEntry) { e.Active = active })
}

// ClearAutoEdit consumes the one-shot auto-edit hint.
func (s *EntryStore) ClearAutoEdit(id int64) {
	s.Update(id, func(e *TimeEntry) { e.AutoEdit = false })
}

// Delete removes an entry. Deleting a non-existent ID is a no-op.
func (s *EntryStore) Delete(id int64) {
	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			s.persist()
			return
		}
	}
}

// DeleteForProject removes every entry belonging to a project and reports
// how many were removed.
func (s *EntryStore) DeleteForProject(projectID int64) int {
	kept := s.entries[:0]
	removed := 0
	for _, e := range s.entries {
		if e.ProjectID == projectID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	if removed > 0 {
		s.entries = kept
		s.persist()
	}
	return removed
}

// ChangeProject reassigns an entry to another project.
func (s *EntryStore) ChangeProject(id, projectID int64) {
	s.Update(id, func(e *TimeEntry) { e.ProjectID = projectID })
}

// Replace swaps in a whole new collection (import path).
func (s *EntryStore) Replace(entries []TimeEntry) {
	s.entries = entries
	s.persist()
}
