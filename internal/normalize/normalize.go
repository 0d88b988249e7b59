package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/model"
)

var (
	honorifics = regexp.MustCompile(
		`(?i)\b(dr|prof|professor|mr|mrs|ms|phd|md|msc|bsc)\b\.?\s*`)

	// Org suffixes stripped from the company comparison alias. Display form
	// keeps them. The suffix must be its own trailing word so short company
	// names are never truncated.
	orgSuffixes = regexp.MustCompile(
		`(?i)[\s,]+(university|institute|institut|hospital|college|` +
			`inc\.?|incorporated|corp\.?|corporation|co\.?|company|` +
			`ltd\.?|limited|llc|gmbh|ag|plc)\s*\.?\s*$`)

	punctuation = regexp.MustCompile(`[^\p{L}\p{N} ]+`)
	multiSpace  = regexp.MustCompile(`\s{2,}`)

	// Corporate suffixes match as whole words only; "Lincoln" and
	// "Princeton" must never read as "Inc".
	industrySuffix = regexp.MustCompile(
		`(?i)\b(inc|incorporated|corp|corporation|llc|gmbh|ltd|limited|plc)\b`)

	// Folds diacritics so "José" and "Jose" produce the same key.
	foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Clean trims and collapses internal whitespace runs to one space.
func Clean(s string) string {
	return strings.TrimSpace(multiSpace.ReplaceAllString(strings.TrimSpace(s), " "))
}

// NameKey builds the comparison-only alias of a person name: lowercased,
// honorifics and punctuation stripped, diacritics folded.
func NameKey(name string) string {
	n := strings.ToLower(Clean(name))
	if folded, _, err := transform.String(foldMarks, n); err == nil {
		n = folded
	}
	n = honorifics.ReplaceAllString(n, "")
	n = punctuation.ReplaceAllString(n, " ")
	return Clean(n)
}

// CompanyKey builds the comparison-only alias of an institution name:
// lowercased, common org suffixes and punctuation stripped, whitespace
// collapsed.
func CompanyKey(company string) string {
	c := strings.ToLower(Clean(company))
	if folded, _, err := transform.String(foldMarks, c); err == nil {
		c = folded
	}
	// Suffixes can stack ("Harvard Medical School, Inc."), so strip until fixed.
	for {
		stripped := orgSuffixes.ReplaceAllString(c, "")
		if stripped == c {
			break
		}
		c = stripped
	}
	c = punctuation.ReplaceAllString(c, " ")
	return Clean(c)
}

// UsesInVitro reports whether any configured in-vitro keyword appears
// case-insensitively in the text.
func UsesInVitro(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// InferWorkMode classifies the organization from its name, falling back to
// trial-registry provenance.
func InferWorkMode(company string, source model.SourceID) model.WorkMode {
	lower := strings.ToLower(company)
	for _, kw := range []string{"university", "institute", "institut", "hospital", "college", "school of medicine", "academy"} {
		if strings.Contains(lower, kw) {
			return model.WorkModeAcademic
		}
	}
	if industrySuffix.MatchString(company) {
		return model.WorkModeIndustry
	}
	for _, kw := range []string{"pharma", "biotech", "therapeutics"} {
		if strings.Contains(lower, kw) {
			return model.WorkModeIndustry
		}
	}
	if source == model.SourceClinicalTrials {
		return model.WorkModeClinical
	}
	return model.WorkModeUnknown
}

// Normalize maps a raw adapter record to a CandidateLead. The second return
// is false when the record lacks a usable name; such records are skipped,
// never treated as errors.
func Normalize(raw model.RawRecord, source model.SourceID, cfg *config.Config) (model.CandidateLead, bool) {
	name := Clean(raw.Str("name"))
	if name == "" {
		return model.CandidateLead{}, false
	}

	company := Clean(raw.Str("company"))
	title := Clean(raw.Str("title"))
	personLoc := Clean(raw.Str("person_location"))
	companyHQ := Clean(raw.Str("company_hq"))
	funding := Clean(raw.Str("funding_stage"))
	if strings.EqualFold(funding, "unknown") {
		funding = ""
	}
	topic := Clean(raw.Str("publication_topic"))

	// Adapters pass abstracts, grant terms, and similar free text through
	// raw_text; it feeds keyword detection but is never displayed.
	rawText := strings.Join([]string{name, title, company, personLoc, companyHQ, funding, topic, raw.Str("raw_text")}, " ")

	usesInVitro := UsesInVitro(rawText, cfg.Keywords.InVitro)
	if b, ok := raw["uses_invitro"].(bool); ok && b {
		usesInVitro = true
	}

	return model.CandidateLead{
		Name:             name,
		Title:            title,
		Company:          company,
		PersonLocation:   personLoc,
		CompanyHQ:        companyHQ,
		FundingStage:     funding,
		PublicationTopic: topic,
		PublicationYear:  raw.Int("publication_year"),
		UsesInVitro:      usesInVitro,
		WorkMode:         InferWorkMode(company, source),
		Email:            Clean(raw.Str("email")),
		Source:           source,
		RawText:          rawText,
		NameKey:          NameKey(name),
		CompanyKey:       CompanyKey(company),
	}, true
}
