package track

import (
	"errors"
	"testing"
	"time"

	"github.com/tempoapp/tempo/internal/kv"
	"github.com/tempoapp/tempo/internal/logger"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	return NewTracker(kv.NewMemory(), logger.Discard())
}

// setClock pins the tracker's clock to a fixed instant and returns a way to
// advance it.
func setClock(tr *Tracker, at time.Time) func(d time.Duration) {
	current := at
	tr.now = func() time.Time { return current }
	return func(d time.Duration) { current = current.Add(d) }
}

func activeCount(tr *Tracker) int {
	n := 0
	for _, e := range tr.Entries().All() {
		if e.Active {
			n++
		}
	}
	return n
}

// faultyStore fails every write, for verifying the swallow-and-log policy.
type faultyStore struct {
	kv.Store
}

func (f faultyStore) Set(key string, value []byte) error {
	return errors.New("disk on fire")
}

// ============================================================
// ID generator
// ============================================================

func TestIDGeneratorSequential(t *testing.T) {
	g := NewIDGenerator(kv.NewMemory(), logger.Discard())
	if g.Next() != 1 || g.Next() != 2 || g.Next() != 3 {
		t.Fatal("IDs should be sequential from 1")
	}
}

func TestIDGeneratorPersistsCounter(t *testing.T) {
	store := kv.NewMemory()
	g := NewIDGenerator(store, logger.Discard())
	g.Next()
	g.Next()

	g2 := NewIDGenerator(store, logger.Discard())
	if got := g2.Next(); got != 3 {
		t.Fatalf("counter should survive reload: got %d, want 3", got)
	}
}

func TestIDGeneratorResync(t *testing.T) {
	g := NewIDGenerator(kv.NewMemory(), logger.Discard())
	projects := []Project{{ID: 7}, {ID: 12}}
	entries := []TimeEntry{{ID: 40}, {ID: 3}}

	g.Resync(projects, entries)
	if got := g.Next(); got != 41 {
		t.Fatalf("after resync next ID should be 41, got %d", got)
	}
}

func TestIDGeneratorResyncNoRegression(t *testing.T) {
	g := NewIDGenerator(kv.NewMemory(), logger.Discard())
	g.Reset(100)
	g.Resync([]Project{{ID: 5}}, nil)
	if got := g.Next(); got != 100 {
		t.Fatalf("resync must never move the counter backwards: got %d", got)
	}
}

func TestIDGeneratorNextBeforeResync(t *testing.T) {
	// Next is valid before Resync completes; it uses the in-memory counter.
	g := NewIDGenerator(kv.NewMemory(), logger.Discard())
	if g.Next() != 1 {
		t.Fatal("Next before Resync should fall back to the loaded counter")
	}
}

func TestIDGeneratorCorruptCounter(t *testing.T) {
	store := kv.NewMemory()
	store.Set(kv.KeyIDCounter, []byte(`"nonsense"`))
	g := NewIDGenerator(store, logger.Discard())
	if g.Next() != 1 {
		t.Fatal("corrupt counter should degrade to 1")
	}
}

// ============================================================
// Unique project names
// ============================================================

func TestUniqueProjectName(t *testing.T) {
	cases := []struct {
		name     string
		base     string
		existing []string
		want     string
	}{
		{"no collision", "X", nil, "X"},
		{"first collision", "X", []string{"X"}, "X 1"},
		{"second collision", "X", []string{"X", "X 1"}, "X 2"},
		{"numbered base", "Name 1", []string{"Name 1"}, "Name 2"},
		{"numbered base chain", "Name 1", []string{"Name 1", "Name 2"}, "Name 3"},
		{"gap is reused", "X", []string{"X", "X 2"}, "X 1"},
		{"empty base", "", nil, "New Project"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var projects []Project
			for i, n := range tc.existing {
				projects = append(projects, Project{ID: int64(i + 1), Name: n})
			}
			if got := UniqueProjectName(tc.base, projects); got != tc.want {
				t.Fatalf("UniqueProjectName(%q) = %q, want %q", tc.base, got, tc.want)
			}
		})
	}
}

func TestProjectNameSuffixingOnCreateAndRename(t *testing.T) {
	tr := newTestTracker(t)
	a := tr.Projects().Add("X")
	b := tr.Projects().Add("X")
	c := tr.Projects().Add("Y")

	if a.Name != "X" || b.Name != "X 1" {
		t.Fatalf("expected X / X 1, got %q / %q", a.Name, b.Name)
	}

	tr.Projects().Rename(c.ID, "X")
	if got := tr.Projects().ByID(c.ID).Name; got != "X 2" {
		t.Fatalf("rename collision should yield X 2, got %q", got)
	}
}

func TestRenameToSameNameIsNoop(t *testing.T) {
	tr := newTestTracker(t)
	p := tr.Projects().Add("Work")
	before := tr.Projects().ByID(p.ID).UpdatedAt
	tr.Projects().Rename(p.ID, "Work")
	if !tr.Projects().ByID(p.ID).UpdatedAt.Equal(before) {
		t.Fatal("renaming to the current name should not bump UpdatedAt")
	}
	if tr.Projects().ByID(p.ID).Name != "Work" {
		t.Fatal("name changed unexpectedly")
	}
}

// ============================================================
// Project store
// ============================================================

func TestProjectReorder(t *testing.T) {
	tr := newTestTracker(t)
	tr.Projects().Add("A")
	tr.Projects().Add("B")
	tr.Projects().Add("C")

	tr.Projects().Reorder(0, 2)
	names := []string{}
	for _, p := range tr.Projects().All() {
		names = append(names, p.Name)
	}
	if names[0] != "B" || names[1] != "C" || names[2] != "A" {
		t.Fatalf("unexpected order after reorder: %v", names)
	}

	// Out-of-range indices are a no-op.
	tr.Projects().Reorder(-1, 5)
	if tr.Projects().All()[0].Name != "B" {
		t.Fatal("out-of-range reorder should not mutate")
	}
}

func TestProjectUpdateBumpsUpdatedAt(t *testing.T) {
	tr := newTestTracker(t)
	advance := setClock(tr, time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local))
	tr.Projects().now = tr.now

	p := tr.Projects().Add("Work")
	before := tr.Projects().ByID(p.ID).UpdatedAt

	advance(time.Minute)
	updated := *tr.Projects().ByID(p.ID)
	updated.BillableRate = &BillableRate{Amount: 120, Currency: "EUR"}
	tr.Projects().Update(updated)

	got := tr.Projects().ByID(p.ID)
	if !got.UpdatedAt.After(before) {
		t.Fatal("Update should bump UpdatedAt")
	}
	if got.BillableRate == nil || got.BillableRate.Amount != 120 {
		t.Fatal("billable rate not stored")
	}
}

// ============================================================
// Timer: start / stop / fold
// ============================================================

func TestStartCreatesActiveEntry(t *testing.T) {
	tr := newTestTracker(t)
	p := tr.Projects().Add("Dev")

	tr.Start(p.ID, 0, "writing tests")

	timer := tr.Timer()
	if !timer.Running || timer.Start == nil {
		t.Fatal("timer should be running with a start time")
	}
	if timer.LastProjectID != p.ID {
		t.Fatal("LastProjectID not set")
	}

	entry := tr.Entries().ByID(timer.LastEntryID)
	if entry == nil {
		t.Fatal("entry not created")
	}
	if !entry.Active || entry.Duration != 0 || entry.Note != "writing tests" {
		t.Fatalf("unexpected new entry: %+v", entry)
	}
	if !entry.AutoEdit {
		t.Fatal("new entries should carry the auto-edit hint")
	}
}

func TestStopFoldsExactElapsed(t *testing.T) {
	tr := newTestTracker(t)
	advance := setClock(tr, time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local))
	p := tr.Projects().Add("Dev")

	tr.Start(p.ID, 0, "")
	id := tr.Timer().LastEntryID

	advance(95 * time.Minute)
	tr.Stop()

	entry := tr.Entries().ByID(id)
	if entry.Duration != (95 * time.Minute).Milliseconds() {
		t.Fatalf("fold should be millisecond-exact: got %d", entry.Duration)
	}
	if entry.Active {
		t.Fatal("stopped entry should not be active")
	}

	timer := tr.Timer()
	if timer.Running || timer.Start != nil {
		t.Fatal("timer should be stopped")
	}
	if timer.LastEntryID != id || timer.LastProjectID != p.ID {
		t.Fatal("stop must preserve the last entry/project pointers")
	}
}

func TestStopAccumulatesOntoExistingDuration(t *testing.T) {
	tr := newTestTracker(t)
	advance := setClock(tr, time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local))
	p := tr.Projects().Add("Dev")

	entry := tr.Entries().Add(p.ID, (30 * time.Minute).Milliseconds(), "", tr.now())
	tr.Start(p.ID, entry.ID, "")
	advance(10 * time.Minute)
	tr.Stop()

	got := tr.Entries().ByID(entry.ID).Duration
	want := (40 * time.Minute).Milliseconds()
	if got != want {
		t.Fatalf("duration should accumulate: got %d, want %d", got, want)
	}
}

func TestStopIdempotent(t *testing.T) {
	tr := newTestTracker(t)
	advance := setClock(tr, time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local))
	p := tr.Projects().Add("Dev")

	tr.Start(p.ID, 0, "")
	id := tr.Timer().LastEntryID
	advance(time.Minute)
	tr.Stop()

	first := tr.Entries().ByID(id).Duration
	advance(time.Hour)
	tr.Stop() // second call must be a pure no-op

	if got := tr.Entries().ByID(id).Duration; got != first {
		t.Fatalf("second stop changed duration: %d -> %d", first, got)
	}
	if tr.Timer().Running {
		t.Fatal("still running after stop")
	}
}

func TestSingleActiveInvariant(t *testing.T) {
	tr := newTestTracker(t)
	advance := setClock(tr, time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local))
	p1 := tr.Projects().Add("A")
	p2 := tr.Projects().Add("B")

	check := func(step string) {
		t.Helper()
		if n := activeCount(tr); n > 1 {
			t.Fatalf("after %s: %d active entries", step, n)
		}
	}

	tr.Toggle()
	check("toggle start")
	advance(time.Minute)
	tr.Stop()
	check("stop")
	tr.StartOnProject(p1.ID)
	check("start on project")
	advance(time.Minute)
	e := tr.Entries().Add(p2.ID, 0, "", tr.now())
	tr.ResumeEntry(*e)
	check("resume while running")
	tr.DeleteEntry(tr.Timer().LastEntryID)
	check("delete running entry")
	tr.Toggle()
	check("toggle resume")
	tr.DeleteProject(p2.ID)
	check("delete project")
}

func TestElapsedMsDisplayOnly(t *testing.T) {
	tr := newTestTracker(t)
	advance := setClock(tr, time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local))
	p := tr.Projects().Add("Dev")

	if tr.ElapsedMs() != 0 {
		t.Fatal("elapsed should be 0 when stopped")
	}

	tr.Start(p.ID, 0, "")
	id := tr.Timer().LastEntryID
	advance(42 * time.Second)

	if got := tr.ElapsedMs(); got != (42 * time.Second).Milliseconds() {
		t.Fatalf("elapsed = %d", got)
	}
	// Reading elapsed must not fold anything.
	if tr.Entries().ByID(id).Duration != 0 {
		t.Fatal("ElapsedMs mutated Duration")
	}
}

// ============================================================
// Resume policy
// ============================================================

func mkProjects(ids ...int64) []Project {
	var out []Project
	for _, id := range ids {
		out = append(out, Project{ID: id})
	}
	return out
}

func TestDecideRunningWins(t *testing.T) {
	now := time.Now()
	d := Decide(true, 1, []TimeEntry{{ID: 1, ProjectID: 1, Start: now}}, 1, mkProjects(1), now)
	if d.Kind != DecisionNone {
		t.Fatal("running timer must always decide none")
	}
}

func TestDecideResumeSameDayEntry(t *testing.T) {
	now := time.Date(2026, 3, 2, 15, 0, 0, 0, time.Local)
	entries := []TimeEntry{{ID: 5, ProjectID: 2, Start: now.Add(-2 * time.Hour), Note: "morning work"}}

	d := Decide(false, 5, entries, 2, mkProjects(2), now)
	if d.Kind != DecisionResumeEntry || d.Entry.ID != 5 {
		t.Fatalf("expected resume of entry 5, got %+v", d)
	}
}

func TestDecideStaleEntryStartsFreshWithNote(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	yesterday := now.Add(-20 * time.Hour) // previous local day
	entries := []TimeEntry{{ID: 5, ProjectID: 2, Start: yesterday, Note: "carryover"}}

	d := Decide(false, 5, entries, 2, mkProjects(2), now)
	if d.Kind != DecisionStartFresh || d.ProjectID != 2 || d.Note != "carryover" {
		t.Fatalf("stale entry should start fresh carrying the note, got %+v", d)
	}
}

func TestDecideFallsBackToLastProject(t *testing.T) {
	now := time.Now()
	// Entry 5 gone; last project still exists.
	d := Decide(false, 5, nil, 3, mkProjects(1, 3), now)
	if d.Kind != DecisionStartFresh || d.ProjectID != 3 {
		t.Fatalf("expected fresh start on last project, got %+v", d)
	}
}

func TestDecideEntryWithDeadProjectPrefersLastProject(t *testing.T) {
	now := time.Now()
	// Entry exists but its project is gone; lastProjectId resolves.
	entries := []TimeEntry{{ID: 5, ProjectID: 99, Start: now, Note: "orphan note"}}
	d := Decide(false, 5, entries, 3, mkProjects(1, 3), now)
	if d.Kind != DecisionStartFresh || d.ProjectID != 3 {
		t.Fatalf("expected fresh start on last project, got %+v", d)
	}
	if d.Note != "orphan note" {
		t.Fatal("note of the unusable last entry should carry over")
	}
}

func TestDecideSingleProjectFallback(t *testing.T) {
	now := time.Now()
	// Both pointers dangle; exactly one project remains.
	d := Decide(false, 5, nil, 9, mkProjects(4), now)
	if d.Kind != DecisionStartFresh || d.ProjectID != 4 {
		t.Fatalf("single remaining project should win, got %+v", d)
	}
}

func TestDecideAmbiguousIsNone(t *testing.T) {
	now := time.Now()
	d := Decide(false, 0, nil, 0, mkProjects(1, 2), now)
	if d.Kind != DecisionNone {
		t.Fatal("multiple projects without history must decide none")
	}
}

func TestDecideNoProjects(t *testing.T) {
	d := Decide(false, 0, nil, 0, nil, time.Now())
	if d.Kind != DecisionNone {
		t.Fatal("no projects must decide none")
	}
}

// ============================================================
// Toggle and CanResume agree
// ============================================================

func TestToggleResumesLastEntry(t *testing.T) {
	tr := newTestTracker(t)
	advance := setClock(tr, time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local))
	p := tr.Projects().Add("Dev")

	tr.Start(p.ID, 0, "")
	id := tr.Timer().LastEntryID
	advance(time.Minute)
	tr.Toggle() // stop

	advance(time.Minute)
	if !tr.CanResume() {
		t.Fatal("resume should be available")
	}
	tr.Toggle() // resume same-day entry

	timer := tr.Timer()
	if !timer.Running || timer.LastEntryID != id {
		t.Fatalf("toggle should have resumed entry %d, got %+v", id, timer)
	}
	if len(tr.Entries().All()) != 1 {
		t.Fatal("resuming a same-day entry must not create a new one")
	}
}

func TestToggleStaleEntryCreatesNewWithNote(t *testing.T) {
	tr := newTestTracker(t)
	advance := setClock(tr, time.Date(2026, 3, 1, 22, 0, 0, 0, time.Local))
	p := tr.Projects().Add("Dev")

	tr.Start(p.ID, 0, "late night")
	oldID := tr.Timer().LastEntryID
	advance(30 * time.Minute)
	tr.Stop()

	advance(12 * time.Hour) // next local day
	tr.Toggle()

	timer := tr.Timer()
	if !timer.Running {
		t.Fatal("toggle should have started")
	}
	if timer.LastEntryID == oldID {
		t.Fatal("yesterday's entry must not be reopened")
	}
	fresh := tr.Entries().ByID(timer.LastEntryID)
	if fresh.Note != "late night" {
		t.Fatalf("new entry should carry the old note, got %q", fresh.Note)
	}
	old := tr.Entries().ByID(oldID)
	if old.Active {
		t.Fatal("old entry must stay inactive")
	}
}

func TestTogglePrecedenceAfterCascade(t *testing.T) {
	// lastEntryId's project deleted, lastProjectId invalid, exactly one
	// project remains: policy step 4 fires, not step 5.
	tr := newTestTracker(t)
	advance := setClock(tr, time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local))
	doomed := tr.Projects().Add("Doomed")
	keeper := tr.Projects().Add("Keeper")

	tr.Start(doomed.ID, 0, "")
	advance(time.Minute)
	tr.Stop()
	tr.DeleteProject(doomed.ID)

	tr.Toggle()
	timer := tr.Timer()
	if !timer.Running || timer.LastProjectID != keeper.ID {
		t.Fatalf("expected fresh start on the one remaining project, got %+v", timer)
	}
}

func TestToggleNoopWhenAmbiguous(t *testing.T) {
	tr := newTestTracker(t)
	tr.Projects().Add("A")
	tr.Projects().Add("B")

	if tr.CanResume() {
		t.Fatal("no usable history and two projects: affordance must be hidden")
	}
	tr.Toggle() // must tolerate being invoked anyway
	if tr.Running() {
		t.Fatal("toggle should have been a no-op")
	}
}

func TestToggleAndCanResumeAgree(t *testing.T) {
	// Across a spread of states, Toggle starts something iff CanResume
	// reports true.
	states := []func(tr *Tracker, advance func(time.Duration)){
		func(tr *Tracker, _ func(time.Duration)) {}, // empty
		func(tr *Tracker, _ func(time.Duration)) { tr.Projects().Add("Solo") },
		func(tr *Tracker, _ func(time.Duration)) { tr.Projects().Add("A"); tr.Projects().Add("B") },
		func(tr *Tracker, advance func(time.Duration)) {
			p := tr.Projects().Add("A")
			tr.Projects().Add("B")
			tr.Start(p.ID, 0, "")
			advance(time.Minute)
			tr.Stop()
		},
		func(tr *Tracker, advance func(time.Duration)) {
			p := tr.Projects().Add("A")
			tr.Projects().Add("B")
			tr.Start(p.ID, 0, "")
			advance(time.Minute)
			tr.Stop()
			tr.DeleteEntry(tr.Timer().LastEntryID)
		},
	}

	for i, setup := range states {
		tr := newTestTracker(t)
		advance := setClock(tr, time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local))
		setup(tr, advance)

		can := tr.CanResume()
		tr.Toggle()
		if tr.Running() != can {
			t.Fatalf("state %d: CanResume=%v but toggle running=%v", i, can, tr.Running())
		}
	}
}

// ============================================================
// Delete / reassign cascades
// ============================================================

func TestDeleteRunningEntryStopsFirst(t *testing.T) {
	tr := newTestTracker(t)
	advance := setClock(tr, time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local))
	p := tr.Projects().Add("Dev")

	tr.Start(p.ID, 0, "")
	id := tr.Timer().LastEntryID
	advance(time.Minute)
	tr.DeleteEntry(id)

	if tr.Running() {
		t.Fatal("timer should have been stopped before the delete")
	}
	if tr.Entries().ByID(id) != nil {
		t.Fatal("entry should be gone")
	}
	// Pointers survive an entry delete (resume falls back to the project).
	if tr.Timer().LastProjectID != p.ID {
		t.Fatal("LastProjectID should survive entry deletion")
	}
}

func TestDeleteNonExistentEntryIsNoop(t *testing.T) {
	tr := newTestTracker(t)
	tr.DeleteEntry(999) // must not panic or error
}

func TestChangeEntryProjectUpdatesTimerPointer(t *testing.T) {
	tr := newTestTracker(t)
	advance := setClock(tr, time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local))
	p1 := tr.Projects().Add("A")
	p2 := tr.Projects().Add("B")

	tr.Start(p1.ID, 0, "")
	id := tr.Timer().LastEntryID
	advance(time.Minute)
	tr.Stop()

	tr.ChangeEntryProject(id, p2.ID)

	if tr.Timer().LastProjectID != p2.ID {
		t.Fatal("timer pointer should follow the reassignment")
	}
	if tr.Entries().ByID(id).ProjectID != p2.ID {
		t.Fatal("entry not reassigned")
	}

	// A toggle right after must resume into the new project.
	tr.Toggle()
	if tr.Timer().LastProjectID != p2.ID {
		t.Fatal("toggle resumed onto the old project")
	}
}

func TestChangeOtherEntryProjectLeavesTimerAlone(t *testing.T) {
	tr := newTestTracker(t)
	advance := setClock(tr, time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local))
	p1 := tr.Projects().Add("A")
	p2 := tr.Projects().Add("B")

	tr.Start(p1.ID, 0, "")
	advance(time.Minute)
	tr.Stop()
	other := tr.Entries().Add(p1.ID, 0, "", tr.now())

	tr.ChangeEntryProject(other.ID, p2.ID)
	if tr.Timer().LastProjectID != p1.ID {
		t.Fatal("reassigning an unrelated entry must not touch the timer")
	}
}

func TestDeleteProjectCascadeAtomicity(t *testing.T) {
	tr := newTestTracker(t)
	advance := setClock(tr, time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local))
	p := tr.Projects().Add("Doomed")
	tr.Entries().Add(p.ID, 1000, "old", tr.now())

	tr.Start(p.ID, 0, "")
	advance(time.Minute)
	tr.DeleteProject(p.ID)

	timer := tr.Timer()
	if timer.Running || timer.Start != nil || timer.LastEntryID != 0 || timer.LastProjectID != 0 {
		t.Fatalf("timer state should be fully reset, got %+v", timer)
	}
	if len(tr.Entries().ForProject(p.ID)) != 0 {
		t.Fatal("project entries should be gone")
	}
	if tr.Projects().Exists(p.ID) {
		t.Fatal("project should be gone")
	}
}

func TestDeleteProjectResetsEvenWhenLastEntryElsewhere(t *testing.T) {
	// lastProjectId matches the deleted project while lastEntryId points at
	// a different (also deleted) entry under it: both pointers reset.
	tr := newTestTracker(t)
	advance := setClock(tr, time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local))
	p := tr.Projects().Add("Doomed")

	tr.Start(p.ID, 0, "")
	advance(time.Minute)
	tr.Stop()
	tr.Entries().Add(p.ID, 0, "sibling", tr.now())

	tr.DeleteProject(p.ID)
	timer := tr.Timer()
	if timer.LastEntryID != 0 || timer.LastProjectID != 0 {
		t.Fatalf("pointers should be cleared, got %+v", timer)
	}
}

func TestDeleteOtherProjectKeepsTimer(t *testing.T) {
	tr := newTestTracker(t)
	advance := setClock(tr, time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local))
	p1 := tr.Projects().Add("Mine")
	p2 := tr.Projects().Add("Other")

	tr.Start(p1.ID, 0, "")
	advance(time.Minute)
	tr.DeleteProject(p2.ID)

	if !tr.Running() || tr.Timer().LastProjectID != p1.ID {
		t.Fatal("deleting an unrelated project must not disturb the timer")
	}
}

func TestDeleteProjectWhileRunningAfterReassignment(t *testing.T) {
	// The running entry was reassigned into the doomed project; LastProjectID
	// followed it, so deleting that project must take the full-reset path and
	// never leave the timer pointing at a deleted entry.
	tr := newTestTracker(t)
	advance := setClock(tr, time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local))
	p1 := tr.Projects().Add("A")
	p2 := tr.Projects().Add("B")

	tr.Start(p1.ID, 0, "")
	id := tr.Timer().LastEntryID
	tr.ChangeEntryProject(id, p2.ID)
	advance(time.Minute)

	tr.DeleteProject(p2.ID)
	if tr.Running() {
		t.Fatal("timer left running against a deleted entry")
	}
	if tr.Timer().LastEntryID != 0 || tr.Timer().LastProjectID != 0 {
		t.Fatal("pointers should be cleared with the project")
	}
}

// ============================================================
// ResumeEntry / direct UI surface
// ============================================================

func TestResumeEntryStopsCurrentRunFirst(t *testing.T) {
	tr := newTestTracker(t)
	advance := setClock(tr, time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local))
	p := tr.Projects().Add("Dev")

	tr.Start(p.ID, 0, "")
	firstID := tr.Timer().LastEntryID
	advance(10 * time.Minute)

	other := tr.Entries().Add(p.ID, 0, "other", tr.now())
	tr.ResumeEntry(*other)

	first := tr.Entries().ByID(firstID)
	if first.Active {
		t.Fatal("previous entry should have been deactivated")
	}
	if first.Duration != (10 * time.Minute).Milliseconds() {
		t.Fatal("previous run should have been folded before switching")
	}
	if tr.Timer().LastEntryID != other.ID || !tr.Running() {
		t.Fatal("timer should now run against the picked entry")
	}
}

// ============================================================
// Persistence behavior
// ============================================================

func TestStateSurvivesReload(t *testing.T) {
	store := kv.NewMemory()
	tr := NewTracker(store, logger.Discard())
	advance := setClock(tr, time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local))
	p := tr.Projects().Add("Dev")
	tr.Start(p.ID, 0, "persist me")
	advance(time.Minute)
	tr.Stop()

	tr2 := NewTracker(store, logger.Discard())
	if len(tr2.Entries().All()) != 1 || len(tr2.Projects().All()) != 1 {
		t.Fatal("collections did not survive reload")
	}
	timer := tr2.Timer()
	if timer.Running || timer.LastEntryID == 0 || timer.LastProjectID != p.ID {
		t.Fatalf("timer state did not survive reload: %+v", timer)
	}
	if tr2.LastUsedEntry() == nil || tr2.LastUsedEntry().Note != "persist me" {
		t.Fatal("last used entry lost")
	}
}

func TestRunningTimerSurvivesReload(t *testing.T) {
	store := kv.NewMemory()
	tr := NewTracker(store, logger.Discard())
	p := tr.Projects().Add("Dev")
	tr.Start(p.ID, 0, "")

	tr2 := NewTracker(store, logger.Discard())
	if !tr2.Running() {
		t.Fatal("a running timer should still be running after reload")
	}
	if tr2.Entries().ByID(tr2.Timer().LastEntryID) == nil {
		t.Fatal("running entry missing after reload")
	}
}

func TestCorruptDataDegradesToEmpty(t *testing.T) {
	store := kv.NewMemory()
	store.Set(kv.KeyEntries, []byte(`{not json`))
	store.Set(kv.KeyProjects, []byte(`42`))
	store.Set(kv.KeyTimer, []byte(`[]`))

	tr := NewTracker(store, logger.Discard())
	if len(tr.Entries().All()) != 0 || len(tr.Projects().All()) != 0 {
		t.Fatal("corrupt collections should degrade to empty")
	}
	if tr.Running() {
		t.Fatal("corrupt timer state should degrade to defaults")
	}
}

func TestWriteFailuresDoNotBlockMutations(t *testing.T) {
	// Every persist fails; in-memory state must stay correct and further
	// operations must keep working.
	tr := NewTracker(faultyStore{kv.NewMemory()}, logger.Discard())
	advance := setClock(tr, time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local))

	p := tr.Projects().Add("Dev")
	tr.Start(p.ID, 0, "")
	advance(time.Minute)
	tr.Stop()

	if len(tr.Entries().All()) != 1 {
		t.Fatal("in-memory entry lost on persist failure")
	}
	if got := tr.Entries().All()[0].Duration; got != time.Minute.Milliseconds() {
		t.Fatalf("fold should survive persist failure, got %d", got)
	}
	if activeCount(tr) != 0 {
		t.Fatal("invariant broken after persist failure")
	}
}

// ============================================================
// Import path
// ============================================================

func TestImportResyncsIDs(t *testing.T) {
	tr := newTestTracker(t)
	tr.Import(
		[]Project{{ID: 10, Name: "Imported"}},
		[]TimeEntry{{ID: 57, ProjectID: 10, Start: time.Now(), Duration: 1000}},
		TimerState{},
	)

	p := tr.Projects().Add("Fresh")
	if p.ID <= 57 {
		t.Fatalf("post-import ID %d collides with imported data", p.ID)
	}
}

// ============================================================
// Accessor isolation
// ============================================================

func TestAllReturnsIsolatedCopies(t *testing.T) {
	tr := newTestTracker(t)
	dev := tr.Projects().Add("Dev")
	ops := tr.Projects().Add("Ops")
	first := tr.Entries().Add(dev.ID, 1000, "", time.Now())
	second := tr.Entries().Add(ops.ID, 2000, "", time.Now())

	// Reversing what All returns must not touch the store's own order,
	// which is what gets persisted and exported.
	entries := tr.Entries().All()
	entries[0], entries[1] = entries[1], entries[0]
	projects := tr.Projects().All()
	projects[0], projects[1] = projects[1], projects[0]

	if got := tr.Entries().All(); got[0].ID != first.ID || got[1].ID != second.ID {
		t.Fatalf("entry order mutated through All: got [%d %d]", got[0].ID, got[1].ID)
	}
	if got := tr.Projects().All(); got[0].ID != dev.ID || got[1].ID != ops.ID {
		t.Fatalf("project order mutated through All: got [%d %d]", got[0].ID, got[1].ID)
	}
}
