package track

import (
	"encoding/json"
	"time"

	"github.com/tempoapp/tempo/internal/kv"
	"github.com/tempoapp/tempo/internal/logger"
)

// ProjectStore owns the list of projects. Like EntryStore, memory is the
// source of truth and persistence is a best-effort mirror.
//
// Remove deletes only the project row. The entry cascade and timer reset
// live in Tracker.DeleteProject, the single code path every caller must
// use for project deletion.
type ProjectStore struct {
	store    kv.Store
	log      *logger.Logger
	ids      *IDGenerator
	now      func() time.Time
	projects []Project
}

func NewProjectStore(store kv.Store, log *logger.Logger, ids *IDGenerator) *ProjectStore {
	s := &ProjectStore{store: store, log: log, ids: ids, now: time.Now}
	s.load()
	return s
}

func (s *ProjectStore) load() {
	data, ok, err := s.store.Get(kv.KeyProjects)
	if err != nil {
		s.log.Warn("projects load failed", logger.F("err", err))
		return
	}
	if !ok {
		return
	}
	var projects []Project
	if err := json.Unmarshal(data, &projects); err != nil {
		s.log.Warn("projects corrupt, starting empty", logger.F("err", err))
		return
	}
	s.projects = projects
}

func (s *ProjectStore) persist() {
	data, err := json.Marshal(s.projects)
	if err != nil {
		s.log.Error("projects marshal failed", logger.F("err", err))
		return
	}
	if err := s.store.Set(kv.KeyProjects, data); err != nil {
		s.log.Warn("projects persist failed", logger.F("err", err))
	}
}

// All returns a copy of the projects in display order. Callers may reorder
// it without affecting the store.
func (s *ProjectStore) All() []Project {
	return append([]Project(nil), s.projects...)
}

// ByID returns the project with the given ID, or nil.
func (s *ProjectStore) ByID(id int64) *Project {
	for i := range s.projects {
		if s.projects[i].ID == id {
			return &s.projects[i]
		}
	}
	return nil
}

// Exists reports whether a project with the given ID is present.
func (s *ProjectStore) Exists(id int64) bool {
	return id != 0 && s.ByID(id) != nil
}

// Add creates a project. A colliding name is silently suffixed rather than
// rejected: "Name", "Name 1", "Name 2", …
func (s *ProjectStore) Add(baseName string) *Project {
	p := Project{
		ID:        s.ids.Next(),
		Name:      UniqueProjectName(baseName, s.projects),
		UpdatedAt: s.now(),
	}
	s.projects = append(s.projects, p)
	s.persist()
	return s.ByID(p.ID)
}

// Rename changes a project's name, suffixing against the other projects if
// needed. Renaming to the current name, or a missing ID, is a no-op.
func (s *ProjectStore) Rename(id int64, newName string) {
	p := s.ByID(id)
	if p == nil || p.Name == newName {
		return
	}

	others := make([]Project, 0, len(s.projects)-1)
	for _, o := range s.projects {
		if o.ID != id {
			others = append(others, o)
		}
	}

	p.Name = UniqueProjectName(newName, others)
	p.UpdatedAt = s.now()
	s.persist()
}

// Update replaces a project's fields wholesale, bumping UpdatedAt. Missing
// ID is a no-op.
func (s *ProjectStore) Update(updated Project) {
	p := s.ByID(updated.ID)
	if p == nil {
		return
	}
	updated.UpdatedAt = s.now()
	*p = updated
	s.persist()
}

// Remove deletes the project row only. Use Tracker.DeleteProject for the
// full cascade.
func (s *ProjectStore) Remove(id int64) {
	for i := range s.projects {
		if s.projects[i].ID == id {
			s.projects = append(s.projects[:i], s.projects[i+1:]...)
			s.persist()
			return
		}
	}
}

// Reorder moves the project at fromIdx to toIdx. Out-of-range indices are
// a no-op.
func (s *ProjectStore) Reorder(fromIdx, toIdx int) {
	n := len(s.projects)
	if fromIdx < 0 || fromIdx >= n || toIdx < 0 || toIdx >= n || fromIdx == toIdx {
		return
	}
	p := s.projects[fromIdx]
	s.projects = append(s.projects[:fromIdx], s.projects[fromIdx+1:]...)
	rest := append([]Project{}, s.projects[toIdx:]...)
	s.projects = append(append(s.projects[:toIdx], p), rest...)
	s.persist()
}

// Replace swaps in a whole new collection (import path).
func (s *ProjectStore) Replace(projects []Project) {
	s.projects = projects
	s.persist()
}
