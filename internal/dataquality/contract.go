// Package dataquality checks collected tables against a feature
// contract before they are allowed into storage. The contract names
// the columns a downstream consumer depends on and the dtype each one
// must carry.
package dataquality

import "fmt"

// Feature is one contracted column.
type Feature struct {
	Name  string `json:"name"  validate:"required"`
	DType string `json:"dtype" validate:"required"`
}

// Contract is the full set of features a table must satisfy.
type Contract struct {
	Name     string    `json:"name"`
	Features []Feature `json:"features" validate:"required,min=1,dive"`
}

func (c Contract) Validate() error {
	if len(c.Features) == 0 {
		return fmt.Errorf("contract %q has no features", c.Name)
	}
	seen := make(map[string]struct{}, len(c.Features))
	for _, f := range c.Features {
		if f.Name == "" {
			return fmt.Errorf("contract %q has a feature without a name", c.Name)
		}
		if f.DType == "" {
			return fmt.Errorf("contract %q feature %q has no dtype", c.Name, f.Name)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("contract %q names feature %q twice", c.Name, f.Name)
		}
		seen[f.Name] = struct{}{}
	}

	return nil
}

// Table is the columnar view the validator inspects: column name to
// the dtype the column actually carries.
type Table struct {
	Columns map[string]string
}

func NewTable() Table {
	return Table{Columns: make(map[string]string)}
}

func (t Table) SetColumn(name, dtype string) Table {
	t.Columns[name] = dtype
	return t
}
