// Package source holds the adapters that pull candidate records from the
// public scholarly and funding APIs. Each adapter speaks one upstream schema
// and emits loosely-typed records; normalization into leads happens later in
// the pipeline.
package source

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Source is one upstream provider of candidate records.
type Source interface {
	// ID returns the stable identifier used in merge provenance and reports.
	ID() model.SourceID

	// Fetch retrieves up to maxResults raw records for the keywords. Partial
	// results with a nil error are valid; a non-nil error with partial
	// results marks the source degraded, not failed.
	Fetch(ctx context.Context, keywords []string, maxResults int) ([]model.RawRecord, error)
}

// parseAffiliation splits a free-text affiliation into organization, person
// location, and HQ. Affiliation strings are comma-delimited with the
// institution first and geography last.
func parseAffiliation(affiliation string) (company, personLocation, companyHQ string) {
	var parts []string
	for _, p := range strings.Split(affiliation, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	switch {
	case len(parts) >= 3:
		company = parts[0]
		personLocation = parts[len(parts)-2]
		companyHQ = parts[len(parts)-1]
	case len(parts) == 2:
		company = parts[0]
		personLocation = parts[1]
		companyHQ = parts[1]
	case len(parts) == 1:
		company = parts[0]
	default:
		company = affiliation
	}

	return truncate(company, 100), personLocation, companyHQ
}

// joinLocation assembles "city, state[, country]" skipping empty segments.
func joinLocation(segments ...string) string {
	var kept []string
	for _, s := range segments {
		if s = strings.TrimSpace(s); s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, ", ")
}

// truncate caps a display string at n bytes without splitting a rune.
// Affiliations and topics are frequently non-ASCII.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// quoteKeywords wraps each of the first max keywords in double quotes.
func quoteKeywords(keywords []string, max int) []string {
	if len(keywords) > max {
		keywords = keywords[:max]
	}
	quoted := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		quoted = append(quoted, `"`+kw+`"`)
	}
	return quoted
}
