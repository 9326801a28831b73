package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("external_id", "name").
		From("teams").
		Where(Eq("external_id", int64(64))).
		OrderBy("external_id").
		ToSQL()
	if err != nil {
		t.Fatalf("build select: %v", err)
	}

	want := "SELECT external_id, name FROM teams WHERE external_id = $1 ORDER BY external_id"
	if query != want {
		t.Fatalf("unexpected query:\n got=%s\nwant=%s", query, want)
	}
	if len(args) != 1 || args[0].(int64) != 64 {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestInsertBuilder_SuffixPlaceholdersContinueNumbering(t *testing.T) {
	query, args, err := InsertInto("teams").
		Columns("external_id", "name").
		Values(int64(64), "Liverpool FC").
		Suffix("ON CONFLICT (external_id) DO UPDATE SET name = EXCLUDED.name").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert: %v", err)
	}

	want := "INSERT INTO teams (external_id, name) VALUES ($1, $2) ON CONFLICT (external_id) DO UPDATE SET name = EXCLUDED.name"
	if query != want {
		t.Fatalf("unexpected query:\n got=%s\nwant=%s", query, want)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestInsertModel(t *testing.T) {
	type row struct {
		ExternalID int64  `db:"external_id"`
		Name       string `db:"name"`
		Ignored    string `db:"-"`
	}

	query, args, err := InsertModel("teams", row{ExternalID: 64, Name: "Liverpool FC", Ignored: "x"}, "")
	if err != nil {
		t.Fatalf("build insert model: %v", err)
	}

	want := "INSERT INTO teams (external_id, name) VALUES ($1, $2)"
	if query != want {
		t.Fatalf("unexpected query:\n got=%s\nwant=%s", query, want)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestInCondition_EmptyValues(t *testing.T) {
	query, _, err := Select("*").From("matches").Where(In("status", nil)).ToSQL()
	if err != nil {
		t.Fatalf("build select: %v", err)
	}
	if query != "SELECT * FROM matches WHERE 1=0" {
		t.Fatalf("unexpected query: %s", query)
	}
}
