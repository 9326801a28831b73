package usecase

import (
	"context"
	"time"

	"github.com/matchpulse/collector/internal/domain/match"
	"github.com/matchpulse/collector/internal/domain/team"
)

// ExternalCompetition is a provider competition the configured token
// may collect.
type ExternalCompetition struct {
	ExternalID int64
	Name       string
	Code       string
	Area       string
}

// ExternalTeamBatch is one fetched batch of teams. Dropped counts
// payload rows that failed basic shape checks and never reached the
// pipeline.
type ExternalTeamBatch struct {
	Teams   []team.Team
	Dropped int
}

// ExternalMatchBatch is one fetched batch of matches.
type ExternalMatchBatch struct {
	Matches []match.Match
	Dropped int
}

// MatchDataSource is the upstream provider contract the orchestrator
// collects from. Close releases provider connections and must be
// reached on every shutdown path.
type MatchDataSource interface {
	SourceName() string
	FetchCompetitions(ctx context.Context) ([]ExternalCompetition, error)
	FetchTeams(ctx context.Context, competitionID int64) (ExternalTeamBatch, error)
	FetchMatches(ctx context.Context, competitionID int64, dateFrom, dateTo time.Time) (ExternalMatchBatch, error)
	Close()
}
