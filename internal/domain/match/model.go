package match

import (
	"fmt"
	"strings"
	"time"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusTimed     = "TIMED"
	StatusInPlay    = "IN_PLAY"
	StatusPaused    = "PAUSED"
	StatusPostponed = "POSTPONED"
	StatusSuspended = "SUSPENDED"
	StatusCancelled = "CANCELLED"
	StatusFinished  = "FINISHED"
)

const (
	ResultHome = "H"
	ResultDraw = "D"
	ResultAway = "A"
)

// Match is one fixture as reported by the upstream source, keyed on the
// provider-assigned ExternalID. Scores stay nil until the provider
// reports them; Result is derived from the scores and never stored
// independently of them.
type Match struct {
	ExternalID         int64
	CompetitionID      int64
	Season             string
	Matchday           int
	Status             string
	UTCDate            time.Time
	HomeTeamExternalID int64
	AwayTeamExternalID int64
	HomeScore          *int
	AwayScore          *int
	Result             *string
}

func (m Match) Validate() error {
	if m.ExternalID <= 0 {
		return fmt.Errorf("match external id is required")
	}
	if m.CompetitionID <= 0 {
		return fmt.Errorf("match competition id is required")
	}
	if m.UTCDate.IsZero() {
		return fmt.Errorf("match utc date is required")
	}
	if m.HomeTeamExternalID <= 0 || m.AwayTeamExternalID <= 0 {
		return fmt.Errorf("match team references are required")
	}

	return nil
}

// DeriveResult computes the H/D/A outcome from a score pair. Both
// scores must be present for an outcome to exist.
func DeriveResult(homeScore, awayScore *int) *string {
	if homeScore == nil || awayScore == nil {
		return nil
	}

	var result string
	switch {
	case *homeScore > *awayScore:
		result = ResultHome
	case *awayScore > *homeScore:
		result = ResultAway
	default:
		result = ResultDraw
	}
	return &result
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

func IsFinishedStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFinished, "FT", "AET", "PEN":
		return true
	default:
		return false
	}
}

func IsLiveStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusInPlay, StatusPaused, "LIVE", "HT":
		return true
	default:
		return false
	}
}
