package collection

import (
	"time"
)

// Collection types recorded in the audit log.
const (
	TypeTeams   = "teams"
	TypeMatches = "matches"
)

// Run states as a collection run advances. A run only ever moves
// forward; StateFailed and StateDone are terminal.
const (
	StatePending    = "PENDING"
	StateFetching   = "FETCHING"
	StateValidating = "VALIDATING"
	StateStoring    = "STORING"
	StateDone       = "DONE"
	StateFailed     = "FAILED"
)

// Stats accumulates counters over one collection run. A run that fails
// mid-way still carries the counters accumulated up to the failure, so
// partial progress is visible in the audit log.
type Stats struct {
	StartedAt        time.Time  `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	RecordsFetched   int        `json:"records_fetched"`
	RecordsProcessed int        `json:"records_processed"`
	RecordsFailed    int        `json:"records_failed"`
	ErrorMessage     *string    `json:"error_message,omitempty"`
}

func NewStats(startedAt time.Time) *Stats {
	return &Stats{StartedAt: startedAt.UTC()}
}

func (s *Stats) AddFetched(n int) {
	s.RecordsFetched += n
}

func (s *Stats) AddProcessed(n int) {
	s.RecordsProcessed += n
}

func (s *Stats) AddFailed(n int) {
	s.RecordsFailed += n
}

// Fail records the failure message. The first message wins; later
// failures in the same run do not overwrite it.
func (s *Stats) Fail(message string) {
	if s.ErrorMessage != nil {
		return
	}
	s.ErrorMessage = &message
}

// Finalize stamps the completion time. Idempotent: only the first call
// sets it.
func (s *Stats) Finalize(completedAt time.Time) {
	if s.CompletedAt != nil {
		return
	}
	at := completedAt.UTC()
	s.CompletedAt = &at
}

func (s *Stats) Duration() time.Duration {
	if s.CompletedAt == nil {
		return 0
	}
	return s.CompletedAt.Sub(s.StartedAt)
}

func (s *Stats) Succeeded() bool {
	return s.ErrorMessage == nil
}

// UpsertResult reports how a batch of records landed in storage.
// Inserted+Updated+Failed equals the number of records offered.
type UpsertResult struct {
	Inserted int
	Updated  int
	Failed   int
}

func (r UpsertResult) Stored() int {
	return r.Inserted + r.Updated
}

func (r *UpsertResult) Merge(other UpsertResult) {
	r.Inserted += other.Inserted
	r.Updated += other.Updated
	r.Failed += other.Failed
}

// Run is one append-only audit log entry for a finished collection run.
type Run struct {
	ID             int64
	SourceName     string
	CollectionType string
	State          string
	Stats          Stats
	CreatedAt      time.Time
}
