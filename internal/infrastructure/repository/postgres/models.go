package postgres

import (
	"database/sql"
	"time"
)

type teamTableModel struct {
	ExternalID int64          `db:"external_id"`
	Name       string         `db:"name"`
	ShortName  sql.NullString `db:"short_name"`
	TLA        sql.NullString `db:"tla"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

type teamInsertModel struct {
	ExternalID int64   `db:"external_id"`
	Name       string  `db:"name"`
	ShortName  *string `db:"short_name"`
	TLA        *string `db:"tla"`
}

type matchTableModel struct {
	ExternalID         int64          `db:"external_id"`
	CompetitionID      int64          `db:"competition_id"`
	Season             string         `db:"season"`
	Matchday           int            `db:"matchday"`
	Status             string         `db:"status"`
	UTCDate            time.Time      `db:"utc_date"`
	HomeTeamExternalID int64          `db:"home_team_external_id"`
	AwayTeamExternalID int64          `db:"away_team_external_id"`
	HomeScore          sql.NullInt64  `db:"home_score"`
	AwayScore          sql.NullInt64  `db:"away_score"`
	Result             sql.NullString `db:"result"`
	CreatedAt          time.Time      `db:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at"`
}

type matchInsertModel struct {
	ExternalID         int64     `db:"external_id"`
	CompetitionID      int64     `db:"competition_id"`
	Season             string    `db:"season"`
	Matchday           int       `db:"matchday"`
	Status             string    `db:"status"`
	UTCDate            time.Time `db:"utc_date"`
	HomeTeamExternalID int64     `db:"home_team_external_id"`
	AwayTeamExternalID int64     `db:"away_team_external_id"`
	HomeScore          *int      `db:"home_score"`
	AwayScore          *int      `db:"away_score"`
	Result             *string   `db:"result"`
}

type collectionLogTableModel struct {
	ID             int64     `db:"id"`
	SourceName     string    `db:"source_name"`
	CollectionType string    `db:"collection_type"`
	State          string    `db:"state"`
	Stats          []byte    `db:"stats"`
	CreatedAt      time.Time `db:"created_at"`
}

type collectionLogInsertModel struct {
	SourceName     string `db:"source_name"`
	CollectionType string `db:"collection_type"`
	State          string `db:"state"`
	Stats          []byte `db:"stats"`
}
