package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/matchpulse/collector/internal/config"
	"github.com/matchpulse/collector/internal/dataquality"
	"github.com/matchpulse/collector/internal/domain/collection"
	"github.com/matchpulse/collector/internal/domain/match"
	"github.com/matchpulse/collector/internal/domain/team"
	"github.com/matchpulse/collector/internal/platform/logging"
)

const (
	defaultCollectWorkers    = 4
	defaultMinReliability    = 0.5
	sourceOutcomeSuccess     = "success"
	sourceOutcomeFailed      = "failed"
	sourceOutcomeSkipped     = "skipped"
	interruptedFailureFormat = "competition_id=%d: collection interrupted"
)

// CollectionInput selects what one run collects. An empty Competitions
// list makes the run discover the competitions visible to the source's
// token.
type CollectionInput struct {
	SourceName   string
	Competitions []int64
	DateFrom     time.Time
	DateTo       time.Time
}

// LeagueOutcome is the per-competition result inside a run summary.
type LeagueOutcome struct {
	CompetitionID int64  `json:"competition_id"`
	Teams         int    `json:"teams"`
	Matches       int    `json:"matches"`
	Inserted      int    `json:"inserted"`
	Updated       int    `json:"updated"`
	Failed        int    `json:"failed"`
	Error         string `json:"error,omitempty"`
}

// RunSummary reports one collection run. Per-competition failures are
// carried as data; the run itself only errors on unusable input.
type RunSummary struct {
	SourceName   string          `json:"source_name"`
	State        string          `json:"state"`
	Leagues      int             `json:"leagues"`
	TeamsTotal   int             `json:"teams_total"`
	MatchesTotal int             `json:"matches_total"`
	Failures     []string        `json:"failures,omitempty"`
	PerLeague    []LeagueOutcome `json:"per_league"`
}

// MultiSourceInput drives one parallel collection across every
// registered source.
type MultiSourceInput struct {
	Competitions []int64
	DateFrom     time.Time
	DateTo       time.Time
	MaxWorkers   int
}

type SourceOutcome struct {
	SourceName string     `json:"source_name"`
	Status     string     `json:"status"`
	Summary    RunSummary `json:"summary"`
	Message    string     `json:"message,omitempty"`
}

type MultiSourceResult struct {
	SourceCount  int             `json:"source_count"`
	SuccessCount int             `json:"success_count"`
	FailedCount  int             `json:"failed_count"`
	SkippedCount int             `json:"skipped_count"`
	WorkerCount  int             `json:"worker_count"`
	Outcomes     []SourceOutcome `json:"outcomes"`
}

type registeredSource struct {
	cfg    config.DataSourceConfig
	source MatchDataSource
}

// CollectionService orchestrates collection runs: rate-limited fetch,
// contract validation, idempotent storage, append-only audit logging.
type CollectionService struct {
	logger        *logging.Logger
	teamRepo      team.Repository
	matchRepo     match.Repository
	logRepo       collection.LogRepository
	teamContract  dataquality.Contract
	matchContract dataquality.Contract

	mu             sync.RWMutex
	sources        map[string]registeredSource
	minReliability float64
}

func NewCollectionService(
	logger *logging.Logger,
	teamRepo team.Repository,
	matchRepo match.Repository,
	logRepo collection.LogRepository,
) *CollectionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &CollectionService{
		logger:         logger,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		logRepo:        logRepo,
		teamContract:   dataquality.TeamsContract(),
		matchContract:  dataquality.MatchesContract(),
		sources:        make(map[string]registeredSource),
		minReliability: defaultMinReliability,
	}
}

// SetContracts replaces the default feature contracts, typically with
// contracts loaded from configuration. Safe to call while runs are in
// flight; a running competition keeps the contracts it started with.
func (s *CollectionService) SetContracts(teams, matches dataquality.Contract) error {
	if err := teams.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := matches.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.teamContract = teams
	s.matchContract = matches
	return nil
}

func (s *CollectionService) contracts() (dataquality.Contract, dataquality.Contract) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.teamContract, s.matchContract
}

func (s *CollectionService) SetMinReliability(threshold float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.minReliability = threshold
}

// RegisterSource installs one upstream source under its configured
// name. Re-registering replaces the previous entry.
func (s *CollectionService) RegisterSource(cfg config.DataSourceConfig, source MatchDataSource) error {
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		return fmt.Errorf("%w: source name is required", ErrInvalidInput)
	}
	if source == nil {
		return fmt.Errorf("%w: source client is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[name] = registeredSource{cfg: cfg, source: source}
	return nil
}

// Close releases every registered source's provider connections.
func (s *CollectionService) Close() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, entry := range s.sources {
		entry.source.Close()
	}
}

func (s *CollectionService) lookupSource(name string) (registeredSource, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.sources[strings.TrimSpace(name)]
	return entry, ok
}

// Collect runs the full pipeline for one source: for every target
// competition it fetches teams and matches, validates the normalized
// tables against the feature contracts, and upserts what passed. A
// competition that fails is recorded in the summary and the loop moves
// on; cancellation is honored at the top of every iteration.
func (s *CollectionService) Collect(ctx context.Context, input CollectionInput) (RunSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "CollectionService.Collect")
	defer span.End()

	entry, ok := s.lookupSource(input.SourceName)
	if !ok {
		return RunSummary{}, fmt.Errorf("%w: unknown source %q", ErrInvalidInput, input.SourceName)
	}

	summary := RunSummary{
		SourceName: entry.cfg.Name,
		State:      collection.StatePending,
	}

	competitions := input.Competitions
	if len(competitions) == 0 {
		discovered, err := entry.source.FetchCompetitions(ctx)
		if err != nil {
			return RunSummary{}, fmt.Errorf("discover competitions source=%s: %w", entry.cfg.Name, err)
		}
		for _, item := range discovered {
			competitions = append(competitions, item.ExternalID)
		}
	}
	if len(competitions) == 0 {
		return RunSummary{}, fmt.Errorf("%w: no competitions to collect for source %q", ErrInvalidInput, entry.cfg.Name)
	}

	summary.Leagues = len(competitions)
	now := time.Now().UTC()
	teamStats := collection.NewStats(now)
	matchStats := collection.NewStats(now)

	succeeded := 0
	for _, competitionID := range competitions {
		if err := ctx.Err(); err != nil {
			message := fmt.Sprintf(interruptedFailureFormat, competitionID)
			summary.Failures = append(summary.Failures, message)
			summary.State = collection.StateFailed
			teamStats.Fail(ErrCollectionInterrupted.Error())
			matchStats.Fail(ErrCollectionInterrupted.Error())
			break
		}

		outcome := s.collectCompetition(ctx, entry, competitionID, input, &summary, teamStats, matchStats)
		summary.PerLeague = append(summary.PerLeague, outcome)
		summary.TeamsTotal += outcome.Teams
		summary.MatchesTotal += outcome.Matches
		if outcome.Error != "" {
			summary.Failures = append(summary.Failures,
				fmt.Sprintf("competition_id=%d: %s", competitionID, outcome.Error))
			continue
		}
		succeeded++
	}

	finished := time.Now().UTC()
	teamStats.Finalize(finished)
	matchStats.Finalize(finished)

	if summary.State != collection.StateFailed {
		if succeeded == 0 {
			summary.State = collection.StateFailed
		} else {
			summary.State = collection.StateDone
		}
	}

	s.appendRun(ctx, entry.cfg.Name, collection.TypeTeams, summary.State, *teamStats)
	s.appendRun(ctx, entry.cfg.Name, collection.TypeMatches, summary.State, *matchStats)

	s.logger.InfoContext(ctx, "collection run finished",
		"source", entry.cfg.Name,
		"state", summary.State,
		"leagues", summary.Leagues,
		"teams_total", summary.TeamsTotal,
		"matches_total", summary.MatchesTotal,
		"failures", len(summary.Failures),
	)

	return summary, nil
}

// collectCompetition runs one competition through the pipeline phases,
// advancing the run summary state as each phase starts.
func (s *CollectionService) collectCompetition(
	ctx context.Context,
	entry registeredSource,
	competitionID int64,
	input CollectionInput,
	summary *RunSummary,
	teamStats *collection.Stats,
	matchStats *collection.Stats,
) LeagueOutcome {
	outcome := LeagueOutcome{CompetitionID: competitionID}

	summary.State = collection.StateFetching
	teamBatch, err := entry.source.FetchTeams(ctx, competitionID)
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	teamStats.AddFetched(len(teamBatch.Teams) + teamBatch.Dropped)
	teamStats.AddFailed(teamBatch.Dropped)

	matchBatch, err := entry.source.FetchMatches(ctx, competitionID, input.DateFrom, input.DateTo)
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	matchStats.AddFetched(len(matchBatch.Matches) + matchBatch.Dropped)
	matchStats.AddFailed(matchBatch.Dropped)

	summary.State = collection.StateValidating
	teamContract, matchContract := s.contracts()
	if ok, violations := dataquality.Validate(teamContract, dataquality.DescribeTeamsTable()); !ok {
		outcome.Error = fmt.Sprintf("%v: %s", ErrValidationFailed, strings.Join(violations, "; "))
		return outcome
	}
	if ok, violations := dataquality.Validate(matchContract, dataquality.DescribeMatchesTable()); !ok {
		outcome.Error = fmt.Sprintf("%v: %s", ErrValidationFailed, strings.Join(violations, "; "))
		return outcome
	}

	summary.State = collection.StateStoring
	teamResult, err := s.teamRepo.UpsertTeams(ctx, teamBatch.Teams)
	if err != nil {
		outcome.Error = fmt.Sprintf("store teams: %v", err)
		return outcome
	}
	teamStats.AddProcessed(teamResult.Stored())
	teamStats.AddFailed(teamResult.Failed)

	matchResult, err := s.matchRepo.UpsertMatches(ctx, matchBatch.Matches)
	if err != nil {
		outcome.Error = fmt.Sprintf("store matches: %v", err)
		return outcome
	}
	matchStats.AddProcessed(matchResult.Stored())
	matchStats.AddFailed(matchResult.Failed)

	outcome.Teams = teamResult.Stored()
	outcome.Matches = matchResult.Stored()
	outcome.Inserted = teamResult.Inserted + matchResult.Inserted
	outcome.Updated = teamResult.Updated + matchResult.Updated
	outcome.Failed = teamResult.Failed + matchResult.Failed + teamBatch.Dropped + matchBatch.Dropped
	return outcome
}

// appendRun records the audit row. Best effort: a log failure never
// undoes stored data.
func (s *CollectionService) appendRun(ctx context.Context, sourceName, collectionType, state string, stats collection.Stats) {
	if s.logRepo == nil {
		return
	}

	run := collection.Run{
		SourceName:     sourceName,
		CollectionType: collectionType,
		State:          state,
		Stats:          stats,
	}
	if _, err := s.logRepo.Append(ctx, run); err != nil {
		s.logger.WarnContext(ctx, "append collection run failed",
			"source", sourceName, "collection_type", collectionType, "error", err)
	}
}

// CollectSources fans one collection out across every registered
// source on a bounded worker pool. Disabled sources and sources below
// the reliability threshold are skipped, not failed.
func (s *CollectionService) CollectSources(ctx context.Context, input MultiSourceInput) (MultiSourceResult, error) {
	ctx, span := startUsecaseSpan(ctx, "CollectionService.CollectSources")
	defer span.End()

	s.mu.RLock()
	entries := make([]registeredSource, 0, len(s.sources))
	for _, entry := range s.sources {
		entries = append(entries, entry)
	}
	threshold := s.minReliability
	s.mu.RUnlock()

	if len(entries) == 0 {
		return MultiSourceResult{}, fmt.Errorf("%w: no sources registered", ErrInvalidInput)
	}

	workerCount := input.MaxWorkers
	if workerCount <= 0 {
		workerCount = defaultCollectWorkers
	}
	if workerCount > len(entries) {
		workerCount = len(entries)
	}

	result := MultiSourceResult{
		SourceCount: len(entries),
		WorkerCount: workerCount,
	}

	outcomes := make(chan SourceOutcome, len(entries))
	var successCount atomic.Int32
	var failedCount atomic.Int32
	var skippedCount atomic.Int32

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return MultiSourceResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, entry := range entries {
		entry := entry
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			row := SourceOutcome{SourceName: entry.cfg.Name}
			if !entry.cfg.Enabled || entry.cfg.ReliabilityScore < threshold {
				row.Status = sourceOutcomeSkipped
				row.Message = fmt.Sprintf("reliability=%.2f enabled=%t", entry.cfg.ReliabilityScore, entry.cfg.Enabled)
				skippedCount.Add(1)
				outcomes <- row
				return
			}

			summary, runErr := s.Collect(ctx, CollectionInput{
				SourceName:   entry.cfg.Name,
				Competitions: input.Competitions,
				DateFrom:     input.DateFrom,
				DateTo:       input.DateTo,
			})
			row.Summary = summary
			if runErr != nil {
				row.Status = sourceOutcomeFailed
				row.Message = runErr.Error()
				failedCount.Add(1)
				outcomes <- row
				return
			}
			if summary.State == collection.StateFailed {
				row.Status = sourceOutcomeFailed
				failedCount.Add(1)
				outcomes <- row
				return
			}

			row.Status = sourceOutcomeSuccess
			successCount.Add(1)
			outcomes <- row
		}); err != nil {
			workers.Done()
			return MultiSourceResult{}, fmt.Errorf("submit source to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(outcomes)

	for row := range outcomes {
		result.Outcomes = append(result.Outcomes, row)
	}
	sort.SliceStable(result.Outcomes, func(i, j int) bool {
		return result.Outcomes[i].SourceName < result.Outcomes[j].SourceName
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())
	result.SkippedCount = int(skippedCount.Load())
	return result, nil
}
