package collection

import "context"

// LogRepository is the append-only audit log of collection runs.
type LogRepository interface {
	Append(ctx context.Context, run Run) (int64, error)
	ListBySource(ctx context.Context, sourceName string, limit int) ([]Run, error)
	LastSuccessful(ctx context.Context, sourceName string) (Run, bool, error)
}
