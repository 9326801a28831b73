package dataquality

import (
	"fmt"
	"sort"
	"strings"
)

// Validate checks the table against the contract and returns whether
// it passed plus every violation found. It never stops at the first
// problem: all missing columns and all dtype mismatches are reported
// in one pass so a single run surfaces the whole gap.
func Validate(contract Contract, table Table) (bool, []string) {
	var missing []string
	var violations []string

	for _, feature := range contract.Features {
		dtype, ok := table.Columns[feature.Name]
		if !ok {
			missing = append(missing, feature.Name)
			continue
		}
		if dtype != feature.DType {
			violations = append(violations, fmt.Sprintf(
				"Invalid dtype for column '%s': expected '%s', got '%s'",
				feature.Name, feature.DType, dtype,
			))
		}
	}

	var errs []string
	if len(missing) > 0 {
		errs = append(errs, fmt.Sprintf("Missing columns in DataFrame: %s", renderSet(missing)))
	}
	errs = append(errs, violations...)

	return len(errs) == 0, errs
}

// renderSet formats column names as a braced, quoted, sorted set so
// the same violation always produces the same message.
func renderSet(names []string) string {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)

	quoted := make([]string, len(sorted))
	for i, name := range sorted {
		quoted[i] = "'" + name + "'"
	}
	return "{" + strings.Join(quoted, ", ") + "}"
}
