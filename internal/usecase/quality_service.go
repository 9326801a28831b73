package usecase

import (
	"context"
	"fmt"

	"github.com/matchpulse/collector/internal/domain/collection"
	"github.com/matchpulse/collector/internal/domain/match"
	"github.com/matchpulse/collector/internal/platform/logging"
	"github.com/matchpulse/collector/internal/platform/ratelimit"
)

const qualityRunHistoryLimit = 20

// QualityReport aggregates the health of collected data for the
// internal quality endpoint.
type QualityReport struct {
	Matches      match.QualityStats `json:"matches"`
	RecentRuns   []collection.Run   `json:"recent_runs"`
	SourceDelays map[string]float64 `json:"source_delays_seconds"`
}

// QualityService serves read-only data-quality summaries. It never
// mutates collected data.
type QualityService struct {
	logger    *logging.Logger
	matchRepo match.Repository
	logRepo   collection.LogRepository
	limiter   *ratelimit.SourceLimiter
}

func NewQualityService(
	logger *logging.Logger,
	matchRepo match.Repository,
	logRepo collection.LogRepository,
	limiter *ratelimit.SourceLimiter,
) *QualityService {
	if logger == nil {
		logger = logging.Default()
	}
	return &QualityService{
		logger:    logger,
		matchRepo: matchRepo,
		logRepo:   logRepo,
		limiter:   limiter,
	}
}

func (s *QualityService) GetQualityReport(ctx context.Context, sourceNames []string) (QualityReport, error) {
	ctx, span := startUsecaseSpan(ctx, "QualityService.GetQualityReport")
	defer span.End()

	stats, err := s.matchRepo.QualityStats(ctx)
	if err != nil {
		return QualityReport{}, fmt.Errorf("load match quality stats: %w", err)
	}

	report := QualityReport{
		Matches:      stats,
		SourceDelays: make(map[string]float64, len(sourceNames)),
	}

	for _, name := range sourceNames {
		if s.limiter != nil {
			report.SourceDelays[name] = s.limiter.Delay(name)
		}

		runs, err := s.logRepo.ListBySource(ctx, name, qualityRunHistoryLimit)
		if err != nil {
			s.logger.WarnContext(ctx, "list collection runs failed", "source", name, "error", err)
			continue
		}
		report.RecentRuns = append(report.RecentRuns, runs...)
	}

	return report, nil
}
