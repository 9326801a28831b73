package dataquality

// Canonical dtype names used by contracts.
const (
	DTypeInt64    = "int64"
	DTypeFloat64  = "float64"
	DTypeObject   = "object"
	DTypeDatetime = "datetime64[ns]"
	DTypeBool     = "bool"
)

// TeamsContract is the default contract for the normalized teams
// table.
func TeamsContract() Contract {
	return Contract{
		Name: "teams",
		Features: []Feature{
			{Name: "external_id", DType: DTypeInt64},
			{Name: "name", DType: DTypeObject},
			{Name: "short_name", DType: DTypeObject},
			{Name: "tla", DType: DTypeObject},
		},
	}
}

// MatchesContract is the default contract for the normalized matches
// table. Scores are float64 because they are nullable.
func MatchesContract() Contract {
	return Contract{
		Name: "matches",
		Features: []Feature{
			{Name: "external_id", DType: DTypeInt64},
			{Name: "competition_id", DType: DTypeInt64},
			{Name: "season", DType: DTypeObject},
			{Name: "matchday", DType: DTypeInt64},
			{Name: "status", DType: DTypeObject},
			{Name: "utc_date", DType: DTypeDatetime},
			{Name: "home_team_external_id", DType: DTypeInt64},
			{Name: "away_team_external_id", DType: DTypeInt64},
			{Name: "home_score", DType: DTypeFloat64},
			{Name: "away_score", DType: DTypeFloat64},
			{Name: "result", DType: DTypeObject},
		},
	}
}

// DescribeTeamsTable reports the column shape the team normalizer
// emits.
func DescribeTeamsTable() Table {
	return NewTable().
		SetColumn("external_id", DTypeInt64).
		SetColumn("name", DTypeObject).
		SetColumn("short_name", DTypeObject).
		SetColumn("tla", DTypeObject)
}

// DescribeMatchesTable reports the column shape the match normalizer
// emits.
func DescribeMatchesTable() Table {
	return NewTable().
		SetColumn("external_id", DTypeInt64).
		SetColumn("competition_id", DTypeInt64).
		SetColumn("season", DTypeObject).
		SetColumn("matchday", DTypeInt64).
		SetColumn("status", DTypeObject).
		SetColumn("utc_date", DTypeDatetime).
		SetColumn("home_team_external_id", DTypeInt64).
		SetColumn("away_team_external_id", DTypeInt64).
		SetColumn("home_score", DTypeFloat64).
		SetColumn("away_score", DTypeFloat64).
		SetColumn("result", DTypeObject)
}
