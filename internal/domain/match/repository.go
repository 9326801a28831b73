package match

import (
	"context"

	"github.com/matchpulse/collector/internal/domain/collection"
)

// Repository describes match persistence needs from use cases.
type Repository interface {
	UpsertMatches(ctx context.Context, items []Match) (collection.UpsertResult, error)
	GetByExternalID(ctx context.Context, externalID int64) (Match, bool, error)
	QualityStats(ctx context.Context) (QualityStats, error)
}

// QualityStats is the read-only aggregate surfaced by health checks.
type QualityStats struct {
	TotalMatches          int64   `json:"total_matches"`
	FinishedMatches       int64   `json:"finished_matches"`
	FinishedMissingScores int64   `json:"finished_missing_scores"`
	TeamsCount            int64   `json:"teams_count"`
	StaleFraction         float64 `json:"stale_fraction"`
}
