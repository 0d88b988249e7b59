// Package email produces best-guess contact addresses for merged leads. It
// is a pure string transform on name and company; deliverability is never
// verified.
package email

import (
	"regexp"
	"strings"
)

// knownDomains maps institution-name fragments to their mail domains.
var knownDomains = []struct {
	fragment string
	domain   string
}{
	{"pfizer", "pfizer.com"},
	{"novartis", "novartis.com"},
	{"roche", "roche.com"},
	{"merck", "merck.com"},
	{"johnson", "jnj.com"},
	{"astrazeneca", "astrazeneca.com"},
	{"glaxosmithkline", "gsk.com"},
	{"gsk", "gsk.com"},
	{"sanofi", "sanofi.com"},
	{"abbvie", "abbvie.com"},
	{"bristol", "bms.com"},
	{"eli lilly", "lilly.com"},
	{"lilly", "lilly.com"},
	{"amgen", "amgen.com"},
	{"gilead", "gilead.com"},
	{"biogen", "biogen.com"},
	{"regeneron", "regeneron.com"},
	{"moderna", "modernatx.com"},
	{"biontech", "biontech.de"},
	{"takeda", "takeda.com"},
	{"boehringer", "boehringer-ingelheim.com"},
	{"harvard", "harvard.edu"},
	{"mit", "mit.edu"},
	{"stanford", "stanford.edu"},
	{"yale", "yale.edu"},
	{"columbia", "columbia.edu"},
	{"johns hopkins", "jhu.edu"},
	{"nih", "nih.gov"},
	{"fda", "fda.hhs.gov"},
	{"emulate", "emulatebio.com"},
	{"organovo", "organovo.com"},
	{"insphero", "insphero.com"},
}

var universityPatterns = []struct {
	re     *regexp.Regexp
	suffix string
}{
	{regexp.MustCompile(`university of (\w+)`), ".edu"},
	{regexp.MustCompile(`(\w+) university`), ".edu"},
	{regexp.MustCompile(`(\w+) college`), ".edu"},
	{regexp.MustCompile(`(\w+) institute`), ".edu"},
}

var honorifics = map[string]bool{
	"dr": true, "prof": true, "professor": true,
	"mr": true, "mrs": true, "ms": true, "phd": true, "md": true,
}

var nonAlpha = regexp.MustCompile(`[^a-z]`)
var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// Generate returns a best-guess address for the person, or "" when no
// confident guess exists. An existing address is returned unchanged.
func Generate(name, company, existing string) string {
	if strings.Contains(existing, "@") {
		return existing
	}

	first, last := splitName(name)
	if first == "" || last == "" {
		return ""
	}

	domain := guessDomain(company)
	if domain == "" {
		return ""
	}

	return first + "." + last + "@" + domain
}

// splitName extracts lowercase first and last name parts, dropping
// honorific tokens and non-letter characters.
func splitName(name string) (string, string) {
	var parts []string
	for _, tok := range strings.Fields(strings.ToLower(name)) {
		tok = strings.Trim(tok, ".,")
		if tok == "" || honorifics[tok] {
			continue
		}
		parts = append(parts, tok)
	}
	if len(parts) < 2 {
		return "", ""
	}

	first := nonAlpha.ReplaceAllString(parts[0], "")
	last := nonAlpha.ReplaceAllString(parts[len(parts)-1], "")
	if first == "" || last == "" {
		return "", ""
	}
	return first, last
}

// guessDomain resolves a mail domain from the known-domain table, then
// university naming patterns, then the first company word.
func guessDomain(company string) string {
	if company == "" {
		return ""
	}
	lower := strings.ToLower(company)

	for _, kd := range knownDomains {
		if strings.Contains(lower, kd.fragment) {
			return kd.domain
		}
	}

	for _, up := range universityPatterns {
		if m := up.re.FindStringSubmatch(lower); m != nil {
			return m[1] + up.suffix
		}
	}

	words := strings.Fields(lower)
	if len(words) == 0 {
		return ""
	}
	base := nonAlnum.ReplaceAllString(words[0], "")
	if len(base) < 3 {
		return ""
	}
	return base + ".com"
}
