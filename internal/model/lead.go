package model

import (
	"fmt"
	"strings"
)

// SourceID identifies which adapter produced a record.
type SourceID string

const (
	SourcePubMed         SourceID = "pubmed"
	SourceEuropePMC      SourceID = "europepmc"
	SourceNIH            SourceID = "nih"
	SourceClinicalTrials SourceID = "clinicaltrials"
	SourceScholar        SourceID = "scholar"
)

// RawRecord is the pre-merge shape emitted by a source adapter. The schema is
// source-defined; the core only requires an extractable name.
type RawRecord map[string]any

// Str returns the value for key as a trimmed string, or "" when absent.
func (r RawRecord) Str(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprintf("%v", v))
}

// Int returns the value for key as an int, or 0 when absent or unparseable.
func (r RawRecord) Int(key string) int {
	switch n := r[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		var v int
		if _, err := fmt.Sscanf(strings.TrimSpace(n), "%d", &v); err == nil {
			return v
		}
	}
	return 0
}

// WorkMode classifies the kind of organization a lead works in.
type WorkMode string

const (
	WorkModeAcademic WorkMode = "Academic"
	WorkModeIndustry WorkMode = "Industry"
	WorkModeClinical WorkMode = "Clinical"
	WorkModeUnknown  WorkMode = "Unknown"
)

// CandidateLead is a normalized single-source record, the intermediate shape
// between raw adapter output and the merged Lead.
type CandidateLead struct {
	Name             string   `json:"name"`
	Title            string   `json:"title"`
	Company          string   `json:"company"`
	PersonLocation   string   `json:"person_location"`
	CompanyHQ        string   `json:"company_hq"`
	FundingStage     string   `json:"funding_stage"`
	PublicationTopic string   `json:"publication_topic"`
	PublicationYear  int      `json:"publication_year,omitempty"`
	UsesInVitro      bool     `json:"uses_invitro"`
	WorkMode         WorkMode `json:"work_mode"`
	Email            string   `json:"email,omitempty"`
	Source           SourceID `json:"source"`
	RawText          string   `json:"-"`

	// Comparison-only aliases; display casing lives in Name/Company.
	NameKey    string `json:"-"`
	CompanyKey string `json:"-"`
}

// Lead is a deduplicated, merged entity representing one researcher or
// organization of interest.
type Lead struct {
	Name             string     `json:"name"`
	Title            string     `json:"title"`
	Company          string     `json:"company"`
	PersonLocation   string     `json:"person_location"`
	CompanyHQ        string     `json:"company_hq"`
	FundingStage     string     `json:"funding_stage"`
	PublicationTopic string     `json:"publication_topic"`
	PublicationYear  int        `json:"publication_year,omitempty"`
	UsesInVitro      bool       `json:"uses_invitro"`
	WorkMode         WorkMode   `json:"work_mode"`
	RawText          string     `json:"-"`
	MergedFrom       []SourceID `json:"merged_from"`

	NameKey    string `json:"-"`
	CompanyKey string `json:"-"`

	Email            string  `json:"email,omitempty"`
	ProbabilityScore float64 `json:"probability_score"`
	Rank             int     `json:"rank,omitempty"`
}

// IdentityKey is the normalized (name, company) pair used to decide whether
// two records refer to the same entity.
func (l Lead) IdentityKey() string {
	return l.NameKey + "|" + l.CompanyKey
}
