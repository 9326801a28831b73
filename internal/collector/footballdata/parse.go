package footballdata

import (
	"sort"
	"strings"
	"time"

	"github.com/matchpulse/collector/internal/domain/match"
	"github.com/matchpulse/collector/internal/domain/team"
	"github.com/matchpulse/collector/internal/usecase"
)

func parseCompetitions(envelope competitionsEnvelope) []usecase.ExternalCompetition {
	out := make([]usecase.ExternalCompetition, 0, len(envelope.Competitions))
	for _, item := range envelope.Competitions {
		if item.ID <= 0 || strings.TrimSpace(item.Name) == "" {
			continue
		}
		out = append(out, usecase.ExternalCompetition{
			ExternalID: item.ID,
			Name:       strings.TrimSpace(item.Name),
			Code:       strings.TrimSpace(item.Code),
			Area:       strings.TrimSpace(item.Area.Name),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].ExternalID < out[j].ExternalID })
	return out
}

func parseTeams(envelope teamsEnvelope) usecase.ExternalTeamBatch {
	page := usecase.ExternalTeamBatch{Teams: make([]team.Team, 0, len(envelope.Teams))}
	for _, item := range envelope.Teams {
		mapped := team.Team{
			ExternalID: item.ID,
			Name:       strings.TrimSpace(item.Name),
			ShortName:  strings.TrimSpace(item.ShortName),
			TLA:        strings.ToUpper(strings.TrimSpace(item.TLA)),
		}
		if err := mapped.Validate(); err != nil {
			page.Dropped++
			continue
		}
		page.Teams = append(page.Teams, mapped)
	}

	sort.SliceStable(page.Teams, func(i, j int) bool { return page.Teams[i].ExternalID < page.Teams[j].ExternalID })
	return page
}

func parseMatches(envelope matchesEnvelope) usecase.ExternalMatchBatch {
	page := usecase.ExternalMatchBatch{Matches: make([]match.Match, 0, len(envelope.Matches))}
	for _, item := range envelope.Matches {
		utcDate := parseProviderDate(item.UTCDate)
		mapped := match.Match{
			ExternalID:         item.ID,
			CompetitionID:      item.Competition.ID,
			Season:             seasonFromStartDate(item.Season.StartDate),
			Matchday:           item.Matchday,
			Status:             match.NormalizeStatus(item.Status),
			HomeTeamExternalID: item.HomeTeam.ID,
			AwayTeamExternalID: item.AwayTeam.ID,
			HomeScore:          item.Score.FullTime.Home,
			AwayScore:          item.Score.FullTime.Away,
		}
		if utcDate != nil {
			mapped.UTCDate = *utcDate
		}
		mapped.Result = match.DeriveResult(mapped.HomeScore, mapped.AwayScore)

		if err := mapped.Validate(); err != nil {
			page.Dropped++
			continue
		}
		page.Matches = append(page.Matches, mapped)
	}

	sort.SliceStable(page.Matches, func(i, j int) bool {
		if !page.Matches[i].UTCDate.Equal(page.Matches[j].UTCDate) {
			return page.Matches[i].UTCDate.Before(page.Matches[j].UTCDate)
		}
		return page.Matches[i].ExternalID < page.Matches[j].ExternalID
	})
	return page
}

func parseProviderDate(raw string) *time.Time {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			v := parsed.UTC()
			return &v
		}
	}
	return nil
}

// seasonFromStartDate reduces "2025-08-15" to the season label "2025".
func seasonFromStartDate(raw string) string {
	value := strings.TrimSpace(raw)
	if len(value) < 4 {
		return value
	}
	return value[:4]
}
