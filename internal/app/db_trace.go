package app

import (
	"regexp"
	"strings"
)

// Match upsert batches carry multi-line SQL; span attributes get a
// single-line, capped rendering so trace payloads stay small.
const spanQueryMaxLen = 400

var sqlWhitespace = regexp.MustCompile(`\s+`)

func spanQueryText(query string) string {
	flat := sqlWhitespace.ReplaceAllString(strings.TrimSpace(query), " ")
	if len(flat) > spanQueryMaxLen {
		return flat[:spanQueryMaxLen] + "..."
	}
	return flat
}
