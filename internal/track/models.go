package track

import "time"

// TimeEntry is one recorded block of work against a project.
//
// Duration holds accumulated milliseconds and excludes the currently-running
// interval: only Tracker.Stop folds elapsed time in. At most one entry in
// the collection has Active=true at any time.
type TimeEntry struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"projectId"`
	Start     time.Time `json:"start"`
	Duration  int64     `json:"duration"` // milliseconds
	Note      string    `json:"note,omitempty"`
	Active    bool      `json:"active,omitempty"`
	AutoEdit  bool      `json:"autoEdit,omitempty"` // one-shot UI hint, cleared after first use
}

// BillableRate is an optional per-project rate. Inert to the tracking core.
type BillableRate struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type Project struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	UpdatedAt    time.Time     `json:"updatedAt"`
	BillableRate *BillableRate `json:"billableRate,omitempty"`
}

// TimerState is the persisted state of the single live timer.
//
// LastEntryID and LastProjectID survive stop/start cycles so a later resume
// can recover the last work context; zero means "none".
type TimerState struct {
	Running       bool       `json:"running"`
	Start         *time.Time `json:"start"`
	LastEntryID   int64      `json:"lastEntryId,omitempty"`
	LastProjectID int64      `json:"lastProjectId,omitempty"`
}
