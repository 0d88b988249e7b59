package source

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestParseAffiliation(t *testing.T) {
	tests := []struct {
		in                  string
		company, person, hq string
	}{
		{"Harvard Medical School, Department of Medicine, Boston, MA", "Harvard Medical School", "Boston", "MA"},
		{"Emulate Inc, Boston", "Emulate Inc", "Boston", "Boston"},
		{"Karolinska Institutet", "Karolinska Institutet", "", ""},
		{"", "", "", ""},
	}
	for _, tt := range tests {
		company, person, hq := parseAffiliation(tt.in)
		assert.Equal(t, tt.company, company, tt.in)
		assert.Equal(t, tt.person, person, tt.in)
		assert.Equal(t, tt.hq, hq, tt.in)
	}
}

func TestParseAffiliationCapsCompany(t *testing.T) {
	long := strings.Repeat("x", 150)
	company, _, _ := parseAffiliation(long)
	assert.Len(t, company, 100)
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	assert.Equal(t, "abc", truncate("abcdef", 3))
	assert.Equal(t, "short", truncate("short", 100))

	// Cutting inside the two-byte "é" backs off to the previous boundary.
	s := "Universit" + strings.Repeat("é", 50)
	got := truncate(s, 10)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "Universit", got)
}

func TestParseAffiliationCapsOnRuneBoundary(t *testing.T) {
	company, _, _ := parseAffiliation("Zü" + strings.Repeat("r", 99))
	assert.True(t, utf8.ValidString(company))
	assert.LessOrEqual(t, len(company), 100)
}

func TestJoinLocation(t *testing.T) {
	assert.Equal(t, "Boston, MA, USA", joinLocation("Boston", "MA", "USA"))
	assert.Equal(t, "Boston", joinLocation("Boston", "", ""))
	assert.Empty(t, joinLocation("", "", ""))
}

func TestQuoteKeywords(t *testing.T) {
	assert.Equal(t, []string{`"a"`, `"b"`}, quoteKeywords([]string{"a", "b", "c"}, 2))
}
