package match

import (
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func TestDeriveResult(t *testing.T) {
	cases := []struct {
		name string
		home *int
		away *int
		want string
		nil_ bool
	}{
		{name: "home win", home: intPtr(3), away: intPtr(1), want: ResultHome},
		{name: "away win", home: intPtr(0), away: intPtr(2), want: ResultAway},
		{name: "draw", home: intPtr(1), away: intPtr(1), want: ResultDraw},
		{name: "missing home score", home: nil, away: intPtr(1), nil_: true},
		{name: "missing away score", home: intPtr(1), away: nil, nil_: true},
		{name: "both missing", home: nil, away: nil, nil_: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveResult(tc.home, tc.away)
			if tc.nil_ {
				if got != nil {
					t.Fatalf("expected nil result, got %q", *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("expected %q, got nil", tc.want)
			}
			if *got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, *got)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := Match{
		ExternalID:         501,
		CompetitionID:      2021,
		Season:             "2025",
		Status:             StatusFinished,
		UTCDate:            time.Date(2025, 8, 16, 14, 0, 0, 0, time.UTC),
		HomeTeamExternalID: 64,
		AwayTeamExternalID: 57,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid match rejected: %v", err)
	}

	broken := valid
	broken.ExternalID = 0
	if err := broken.Validate(); err == nil {
		t.Fatal("expected error for missing external id")
	}

	broken = valid
	broken.HomeTeamExternalID = 0
	if err := broken.Validate(); err == nil {
		t.Fatal("expected error for missing team reference")
	}
}

func TestStatusHelpers(t *testing.T) {
	if NormalizeStatus("  finished ") != StatusFinished {
		t.Fatal("expected normalized FINISHED")
	}
	if NormalizeStatus("") != StatusScheduled {
		t.Fatal("expected empty status to default to SCHEDULED")
	}
	if !IsFinishedStatus("FT") {
		t.Fatal("expected FT to count as finished")
	}
	if IsFinishedStatus(StatusTimed) {
		t.Fatal("TIMED is not finished")
	}
	if !IsLiveStatus(StatusPaused) {
		t.Fatal("PAUSED counts as live")
	}
}
