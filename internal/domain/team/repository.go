package team

import (
	"context"

	"github.com/matchpulse/collector/internal/domain/collection"
)

// Repository describes team persistence needs from use cases.
type Repository interface {
	UpsertTeams(ctx context.Context, items []Team) (collection.UpsertResult, error)
	GetByExternalID(ctx context.Context, externalID int64) (Team, bool, error)
	Count(ctx context.Context) (int64, error)
}
