package track

import (
	"encoding/json"
	"time"

	"github.com/tempoapp/tempo/internal/kv"
	"github.com/tempoapp/tempo/internal/logger"
)

// Tracker coordinates the entry store, the project store and the single
// live timer. It is the one place that enforces the single-active-entry
// invariant, the duration fold on stop, and the cascade rules around
// deletes and reassignment.
//
// All methods assume the app's single event loop: one user action runs to
// completion before the next is processed, so no locking is needed, but
// ordering inside each method matters.
type Tracker struct {
	store    kv.Store
	log      *logger.Logger
	ids      *IDGenerator
	entries  *EntryStore
	projects *ProjectStore
	timer    TimerState

	now func() time.Time // swappable clock for tests
}

func NewTracker(store kv.Store, log *logger.Logger) *Tracker {
	ids := NewIDGenerator(store, log)
	t := &Tracker{
		store:    store,
		log:      log,
		ids:      ids,
		entries:  NewEntryStore(store, log, ids),
		projects: NewProjectStore(store, log, ids),
		now:      time.Now,
	}
	t.loadTimer()
	t.ids.Resync(t.projects.All(), t.entries.All())
	return t
}

func (t *Tracker) loadTimer() {
	data, ok, err := t.store.Get(kv.KeyTimer)
	if err != nil {
		t.log.Warn("timer state load failed", logger.F("err", err))
		return
	}
	if !ok {
		return
	}
	var st TimerState
	if err := json.Unmarshal(data, &st); err != nil {
		t.log.Warn("timer state corrupt, resetting", logger.F("err", err))
		return
	}
	t.timer = st
}

func (t *Tracker) persistTimer() {
	data, err := json.Marshal(t.timer)
	if err != nil {
		t.log.Error("timer state marshal failed", logger.F("err", err))
		return
	}
	if err := t.store.Set(kv.KeyTimer, data); err != nil {
		t.log.Warn("timer state persist failed", logger.F("err", err))
	}
}

// Entries exposes the entry store for read paths and plain entry edits.
func (t *Tracker) Entries() *EntryStore { return t.entries }

// Projects exposes the project store for read paths and non-delete edits.
// Project deletion must go through Tracker.DeleteProject.
func (t *Tracker) Projects() *ProjectStore { return t.projects }

// IDs exposes the ID generator (the import path calls Resync on it).
func (t *Tracker) IDs() *IDGenerator { return t.ids }

// Timer returns the current timer state.
func (t *Tracker) Timer() TimerState { return t.timer }

// Running reports whether the live timer is running.
func (t *Tracker) Running() bool { return t.timer.Running }

// ElapsedMs returns milliseconds since the current run started, for display
// only. It never mutates Duration.
func (t *Tracker) ElapsedMs() int64 {
	if !t.timer.Running || t.timer.Start == nil {
		return 0
	}
	ms := t.now().Sub(*t.timer.Start).Milliseconds()
	if ms < 0 {
		return 0
	}
	return ms
}

// LastUsedEntry returns the entry the timer last ran against, if it still
// exists.
func (t *Tracker) LastUsedEntry() *TimeEntry {
	if t.timer.LastEntryID == 0 {
		return nil
	}
	return t.entries.ByID(t.timer.LastEntryID)
}

// Start begins a timer run. With entryID set, that existing entry is
// reopened; otherwise a fresh entry is created on projectID with the given
// note. Exactly one entry store write and one timer state persist.
func (t *Tracker) Start(projectID, entryID int64, note string) {
	now := t.now()

	if entryID != 0 {
		t.entries.SetActive(entryID, true)
	} else {
		entryID = t.entries.addActive(projectID, note, now).ID
	}

	t.timer = TimerState{
		Running:       true,
		Start:         &now,
		LastEntryID:   entryID,
		LastProjectID: projectID,
	}
	t.persistTimer()
}

// Stop folds the elapsed run into the active entry and stops the timer.
// Idempotent: a second call is a pure no-op. The clock is read exactly once
// and reused for both the duration fold and the state transition, so the
// two can never drift apart.
func (t *Tracker) Stop() {
	if !t.timer.Running || t.timer.Start == nil {
		return
	}

	now := t.now()
	elapsed := now.Sub(*t.timer.Start).Milliseconds()

	if entry := t.entries.ByID(t.timer.LastEntryID); entry != nil {
		t.entries.Update(entry.ID, func(e *TimeEntry) {
			e.Duration += elapsed
			e.Active = false
		})
	}

	t.timer.Running = false
	t.timer.Start = nil
	// LastEntryID/LastProjectID survive for resume.
	t.persistTimer()
}

// Toggle stops the timer when running; otherwise it consults the resume
// policy and starts whatever it picks. When the policy yields no target the
// call is a no-op. The UI hides the affordance, but a stray invocation
// must still be safe.
func (t *Tracker) Toggle() {
	if t.timer.Running {
		t.Stop()
		return
	}

	d := Decide(false, t.timer.LastEntryID, t.entries.All(), t.timer.LastProjectID, t.projects.All(), t.now())
	switch d.Kind {
	case DecisionResumeEntry:
		t.Start(d.Entry.ProjectID, d.Entry.ID, "")
	case DecisionStartFresh:
		t.Start(d.ProjectID, 0, d.Note)
	}
}

// CanResume reports whether a start/resume affordance should be offered.
// It calls the same policy Toggle acts on.
func (t *Tracker) CanResume() bool {
	d := Decide(t.timer.Running, t.timer.LastEntryID, t.entries.All(), t.timer.LastProjectID, t.projects.All(), t.now())
	return d.Kind != DecisionNone
}

// ResumeEntry restarts the timer against a specific entry the user picked.
// A running timer is stopped (and folded) first. Callers are responsible
// for only offering entries whose project still exists.
func (t *Tracker) ResumeEntry(entry TimeEntry) {
	if t.timer.Running {
		t.Stop()
	}
	t.Start(entry.ProjectID, entry.ID, "")
}

// StartOnProject starts a fresh entry on a project the user picked.
func (t *Tracker) StartOnProject(projectID int64) {
	if t.timer.Running {
		t.Stop()
	}
	t.Start(projectID, 0, "")
}

// DeleteEntry removes an entry. If it is the one the running timer points
// at, the timer is stopped first so the elapsed time is folded into an
// entry that still exists at fold time.
func (t *Tracker) DeleteEntry(id int64) {
	if t.timer.Running && t.timer.LastEntryID == id {
		t.Stop()
	}
	t.entries.Delete(id)
}

// ChangeEntryProject reassigns an entry. The timer's project pointer is
// updated before the entry store write, so a toggle observing intermediate
// state can never resume onto the old project.
func (t *Tracker) ChangeEntryProject(id, projectID int64) {
	if t.timer.LastEntryID == id {
		t.timer.LastProjectID = projectID
		t.persistTimer()
	}
	t.entries.ChangeProject(id, projectID)
}

// DeleteProject is the single cascade path for project deletion: it removes
// the project's entries and the project row, and invalidates the timer in
// the same logical step. When the timer's last project is the one being
// deleted, the whole state resets: both pointers are dangling, even if
// LastEntryID referenced a different entry under this project.
func (t *Tracker) DeleteProject(id int64) {
	// A running timer always has LastProjectID equal to its entry's
	// project (ChangeEntryProject keeps them in sync), so this one check
	// also covers the running case.
	if t.timer.LastProjectID == id {
		t.timer = TimerState{}
		t.persistTimer()
	}

	t.entries.DeleteForProject(id)
	t.projects.Remove(id)
}

// Import replaces all collections from a backup and resyncs the ID counter
// before any new allocation can happen.
func (t *Tracker) Import(projects []Project, entries []TimeEntry, timer TimerState) {
	t.projects.Replace(projects)
	t.entries.Replace(entries)
	t.timer = timer
	t.persistTimer()
	t.ids.Resync(projects, entries)
}
