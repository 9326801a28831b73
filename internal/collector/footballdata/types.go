package footballdata

// Wire envelopes for the provider's v4 API. Only the fields the
// pipeline consumes are declared; everything else is dropped at decode
// time.

type competitionsEnvelope struct {
	Count        int               `json:"count"`
	Competitions []competitionItem `json:"competitions"`
}

type competitionItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
	Area struct {
		Name string `json:"name"`
	} `json:"area"`
}

type teamsEnvelope struct {
	Count int        `json:"count"`
	Teams []teamItem `json:"teams"`
}

type teamItem struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	TLA       string `json:"tla"`
}

type matchesEnvelope struct {
	ResultSet struct {
		Count int `json:"count"`
	} `json:"resultSet"`
	Matches []matchItem `json:"matches"`
}

type matchItem struct {
	ID          int64  `json:"id"`
	UTCDate     string `json:"utcDate"`
	Status      string `json:"status"`
	Matchday    int    `json:"matchday"`
	Competition struct {
		ID int64 `json:"id"`
	} `json:"competition"`
	Season struct {
		StartDate string `json:"startDate"`
	} `json:"season"`
	HomeTeam struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"homeTeam"`
	AwayTeam struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"awayTeam"`
	Score struct {
		FullTime struct {
			Home *int `json:"home"`
			Away *int `json:"away"`
		} `json:"fullTime"`
	} `json:"score"`
}
