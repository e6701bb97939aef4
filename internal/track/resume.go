package track

import "time"

// DecisionKind says what a start/resume action should do.
type DecisionKind int

const (
	// DecisionNone: no eligible target; the affordance should be hidden and
	// a toggle is a no-op.
	DecisionNone DecisionKind = iota
	// DecisionResumeEntry: reopen Entry, accumulating onto it.
	DecisionResumeEntry
	// DecisionStartFresh: create a new entry on ProjectID, carrying Note.
	DecisionStartFresh
)

// Decision is the outcome of the resume policy.
type Decision struct {
	Kind      DecisionKind
	Entry     *TimeEntry // set for DecisionResumeEntry
	ProjectID int64      // set for DecisionStartFresh
	Note      string     // carried note for DecisionStartFresh
}

// Decide is the resume policy: a pure function consulted both by the UI (to
// gate the start/resume affordance) and by Tracker.Toggle (to pick the
// actual action), so the two always agree.
//
// Precedence, first match wins:
//  1. timer already running: none
//  2. last entry and its project both resolve: resume that entry; but if
//     the entry started on a different local day, start a fresh entry on
//     the same project carrying the old note instead of reopening it
//  3. last project resolves: start fresh on it
//  4. exactly one project exists: start fresh on it
//  5. none: multiple projects and no usable history, the caller must ask
//
// A last entry whose project is gone still contributes its note to steps
// 3 and 4.
func Decide(running bool, lastEntryID int64, entries []TimeEntry, lastProjectID int64, projects []Project, now time.Time) Decision {
	if running {
		return Decision{Kind: DecisionNone}
	}

	var lastEntry *TimeEntry
	for i := range entries {
		if lastEntryID != 0 && entries[i].ID == lastEntryID {
			lastEntry = &entries[i]
			break
		}
	}

	if lastEntry != nil && projectByID(projects, lastEntry.ProjectID) != nil {
		if sameLocalDay(lastEntry.Start, now) {
			return Decision{Kind: DecisionResumeEntry, Entry: lastEntry}
		}
		// Stale-dated entry: a multi-day-old entry must not silently
		// accumulate a new day's time under its original timestamp.
		return Decision{Kind: DecisionStartFresh, ProjectID: lastEntry.ProjectID, Note: lastEntry.Note}
	}

	carriedNote := ""
	if lastEntry != nil {
		carriedNote = lastEntry.Note
	}

	if lastProjectID != 0 && projectByID(projects, lastProjectID) != nil {
		return Decision{Kind: DecisionStartFresh, ProjectID: lastProjectID, Note: carriedNote}
	}

	if len(projects) == 1 {
		return Decision{Kind: DecisionStartFresh, ProjectID: projects[0].ID, Note: carriedNote}
	}

	return Decision{Kind: DecisionNone}
}

func projectByID(projects []Project, id int64) *Project {
	for i := range projects {
		if projects[i].ID == id {
			return &projects[i]
		}
	}
	return nil
}

func sameLocalDay(a, b time.Time) bool {
	al, bl := a.Local(), b.Local()
	return al.Year() == bl.Year() && al.Month() == bl.Month() && al.Day() == bl.Day()
}
