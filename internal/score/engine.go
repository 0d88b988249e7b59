package score

import (
	"strings"
	"time"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Engine computes probability scores for merged leads. Scoring is a pure
// function of the lead and the profile; the engine holds no mutable state.
type Engine struct {
	profile     Profile
	currentYear int
}

// NewEngine creates a scoring engine for the given profile.
func NewEngine(profile Profile) *Engine {
	return &Engine{
		profile:     profile,
		currentYear: time.Now().Year(),
	}
}

// WithCurrentYear fixes the reference year for recency decay, for testing.
func (e *Engine) WithCurrentYear(year int) *Engine {
	e.currentYear = year
	return e
}

// Score computes the weighted probability score in [0, 100]. Each feature is
// normalized to [0, 1] and the weighted sum is normalized against the total
// weight mass, so the scale holds regardless of the configured magnitudes.
// Missing data scores 0 for its feature but stays in the denominator:
// incomplete records rank below complete ones with equal confirmed signal.
func (e *Engine) Score(lead model.Lead) float64 {
	w := e.profile.Weights

	weighted := w.TitleMatch*e.titleMatch(lead.Title) +
		w.FundingStage*e.fundingStage(lead.FundingStage) +
		w.UsesInVitro*e.usesInVitro(lead.UsesInVitro) +
		w.LocationHub*e.locationHub(lead.PersonLocation, lead.CompanyHQ) +
		w.RecentPublication*e.recentPublication(lead.PublicationYear)

	return clamp(100*weighted/w.Sum(), 0, 100)
}

// ScoreAll assigns probability scores in place.
func (e *Engine) ScoreAll(leads []model.Lead) {
	for i := range leads {
		leads[i].ProbabilityScore = e.Score(leads[i])
	}
}

// InHub reports whether either location matches the configured hub list.
// Exposed for the exporter's company_in_hub column.
func (e *Engine) InHub(lead model.Lead) bool {
	return e.locationHub(lead.PersonLocation, lead.CompanyHQ) > 0
}

// titleMatch returns the fraction of configured title keywords present in
// the title, or 1.0 outright when a strong seniority keyword matches.
func (e *Engine) titleMatch(title string) float64 {
	if title == "" {
		return 0
	}
	lower := strings.ToLower(title)

	for _, kw := range e.profile.StrongTitleKeywords {
		if containsFold(lower, kw) {
			return 1.0
		}
	}

	matched := 0
	for _, kw := range e.profile.TitleKeywords {
		if containsFold(lower, kw) {
			matched++
		}
	}
	if len(e.profile.TitleKeywords) == 0 {
		return 0
	}
	return float64(matched) / float64(len(e.profile.TitleKeywords))
}

// fundingStage scores 1.0 for an active-grant match, 0.5 for any other
// non-empty stage, 0 when absent.
func (e *Engine) fundingStage(stage string) float64 {
	if stage == "" {
		return 0
	}
	lower := strings.ToLower(stage)
	for _, p := range e.profile.ActiveGrantPatterns {
		if containsFold(lower, p) {
			return 1.0
		}
	}
	return 0.5
}

func (e *Engine) usesInVitro(uses bool) float64 {
	if uses {
		return 1.0
	}
	return 0
}

func (e *Engine) locationHub(personLocation, companyHQ string) float64 {
	locations := strings.ToLower(personLocation + " " + companyHQ)
	for _, hub := range e.profile.HubLocations {
		if hub != "" && containsFold(locations, hub) {
			return 1.0
		}
	}
	return 0
}

// recentPublication decays linearly from 1.0 (current year) to 0.0 over the
// configured window. Absent years score 0.
func (e *Engine) recentPublication(year int) float64 {
	if year <= 0 {
		return 0
	}
	age := e.currentYear - year
	if age < 0 {
		age = 0
	}
	v := 1.0 - float64(age)/float64(e.profile.RecencyWindowYears)
	if v < 0 {
		return 0
	}
	return v
}

func containsFold(lowerHaystack, needle string) bool {
	return strings.Contains(lowerHaystack, strings.ToLower(needle))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
