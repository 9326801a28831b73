package dataquality

import (
	"reflect"
	"testing"
)

func matchContract() Contract {
	return Contract{
		Name: "matches",
		Features: []Feature{
			{Name: "league_id", DType: "int64"},
			{Name: "home_team", DType: "object"},
			{Name: "away_team", DType: "object"},
			{Name: "odds_h", DType: "float64"},
		},
	}
}

func TestValidate_Passes(t *testing.T) {
	table := NewTable().
		SetColumn("league_id", "int64").
		SetColumn("home_team", "object").
		SetColumn("away_team", "object").
		SetColumn("odds_h", "float64").
		SetColumn("extra_column", "bool")

	ok, errs := Validate(matchContract(), table)
	if !ok {
		t.Fatalf("expected pass, got violations: %v", errs)
	}
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidate_MissingColumnAndWrongDType(t *testing.T) {
	table := NewTable().
		SetColumn("home_team", "object").
		SetColumn("away_team", "object").
		SetColumn("odds_h", "int64")

	ok, errs := Validate(matchContract(), table)
	if ok {
		t.Fatal("expected validation to fail")
	}

	want := []string{
		"Missing columns in DataFrame: {'league_id'}",
		"Invalid dtype for column 'odds_h': expected 'float64', got 'int64'",
	}
	if !reflect.DeepEqual(errs, want) {
		t.Fatalf("unexpected errors:\n got=%v\nwant=%v", errs, want)
	}
}

func TestValidate_MissingColumnsSorted(t *testing.T) {
	contract := Contract{
		Name: "matches",
		Features: []Feature{
			{Name: "odds_h", DType: "float64"},
			{Name: "league_id", DType: "int64"},
		},
	}

	ok, errs := Validate(contract, NewTable())
	if ok {
		t.Fatal("expected validation to fail")
	}
	if len(errs) != 1 {
		t.Fatalf("expected one aggregated error, got %v", errs)
	}
	if errs[0] != "Missing columns in DataFrame: {'league_id', 'odds_h'}" {
		t.Fatalf("unexpected message: %s", errs[0])
	}
}

func TestContractValidate(t *testing.T) {
	if err := matchContract().Validate(); err != nil {
		t.Fatalf("valid contract rejected: %v", err)
	}

	dup := Contract{Name: "bad", Features: []Feature{
		{Name: "league_id", DType: "int64"},
		{Name: "league_id", DType: "int64"},
	}}
	if err := dup.Validate(); err == nil {
		t.Fatal("expected duplicate feature rejection")
	}

	empty := Contract{Name: "empty"}
	if err := empty.Validate(); err == nil {
		t.Fatal("expected empty contract rejection")
	}
}
