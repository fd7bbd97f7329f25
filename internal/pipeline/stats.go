package pipeline

// UnitStatus is the terminal state of one work unit.
type UnitStatus int

const (
	StatusSucceeded UnitStatus = iota
	StatusSkipped
	StatusFailed
)

func (s UnitStatus) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// UnitResult is the recorded outcome of one work unit, in processing order.
type UnitResult struct {
	Index   int    // 1-based position in discovery order.
	Name    string // Movie name.
	Status  UnitStatus
	Stage   string // Stage that failed or caused the skip; empty on success.
	Detail  string // Captured tool output or error text.
	Hint    string // Classified failure hint, when recognized.
	Partial bool   // Unit came from a short trailing group.
}

// RunStats tracks aggregate counters, byte totals, and the ordered per-unit
// results across a batch run.
type RunStats struct {
	RunID string

	Total         int
	Current       int
	Succeeded     int
	Skipped       int
	Failed        int
	PartialGroups int

	TotalInputBytes  int64
	TotalStoredBytes int64

	Results []UnitResult
}

// SpaceSaved returns the aggregate byte difference between raw input and the
// archived artifacts. Positive means the archive is smaller.
func (s *RunStats) SpaceSaved() int64 {
	return s.TotalInputBytes - s.TotalStoredBytes
}

// record appends a unit result and bumps the matching counter.
func (s *RunStats) record(r UnitResult) {
	s.Results = append(s.Results, r)
	switch r.Status {
	case StatusSucceeded:
		s.Succeeded++
	case StatusSkipped:
		s.Skipped++
	case StatusFailed:
		s.Failed++
	}
}
