package model

// UnitStatus describes the outcome of one unit of pipeline work.
type UnitStatus string

const (
	// UnitAttempted means the unit ran against the external boundary,
	// successfully or not, and its result (possibly empty) was recorded.
	UnitAttempted UnitStatus = "attempted"
	// UnitFailed means the external boundary failed; the unit was still
	// marked processed with unknown/empty results.
	UnitFailed UnitStatus = "failed"
	// UnitReplayed means a checkpoint already covered the unit and its
	// cached result was replayed without any external call.
	UnitReplayed UnitStatus = "replayed"
	// UnitSkipped means the run stopped before reaching the unit
	// (quota exhaustion or interruption).
	UnitSkipped UnitStatus = "skipped"
)

// UnitResult records the typed outcome of one (company, title) search
// or one company resolution. Failures carry a reason instead of being
// silently swallowed.
type UnitResult struct {
	Company string     `json:"company"`
	Title   string     `json:"title,omitempty"`
	Status  UnitStatus `json:"status"`
	Found   int        `json:"found"`
	Reason  string     `json:"reason,omitempty"`
}

// RunSummary aggregates unit results for one orchestrator run.
type RunSummary struct {
	RunID         string       `json:"run_id"`
	Units         []UnitResult `json:"units"`
	Companies     int          `json:"companies"`
	ContactsFound int          `json:"contacts_found"`
	QuotaStopped  bool         `json:"quota_stopped"`
	Interrupted   bool         `json:"interrupted"`
}

// Add appends a unit result and updates the aggregate counters.
func (s *RunSummary) Add(u UnitResult) {
	s.Units = append(s.Units, u)
	s.ContactsFound += u.Found
}
