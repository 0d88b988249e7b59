package dedupe

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/normalize"
)

var testPriority = []string{"pubmed", "europepmc", "nih", "clinicaltrials", "scholar"}

func candidate(name, company string, source model.SourceID) model.CandidateLead {
	return model.CandidateLead{
		Name:       name,
		Company:    company,
		Source:     source,
		NameKey:    normalize.NameKey(name),
		CompanyKey: normalize.CompanyKey(company),
	}
}

func TestMergeCrossSourceDuplicates(t *testing.T) {
	pubmed := candidate("Dr. Jane Smith", "Harvard Medical School", model.SourcePubMed)
	pubmed.Title = "Principal Investigator"
	pubmed.FundingStage = "NIH R01"
	pubmed.PublicationYear = 2024

	epmc := candidate("jane smith", "harvard medical school.", model.SourceEuropePMC)
	epmc.Title = "PI"

	leads := NewMerger(testPriority).Merge([]model.CandidateLead{pubmed, epmc})
	require.Len(t, leads, 1)

	lead := leads[0]
	assert.Equal(t, "Dr. Jane Smith", lead.Name)
	assert.Equal(t, "Principal Investigator", lead.Title)
	assert.Equal(t, "NIH R01", lead.FundingStage)
	assert.Equal(t, 2024, lead.PublicationYear)
	assert.Equal(t, []model.SourceID{model.SourcePubMed, model.SourceEuropePMC}, lead.MergedFrom)
}

func TestMergeCommutative(t *testing.T) {
	a := candidate("Dr. Jane Smith", "Harvard Medical School", model.SourcePubMed)
	a.FundingStage = "NIH R01"
	a.PublicationYear = 2023
	b := candidate("jane smith", "Harvard Medical School", model.SourceEuropePMC)
	b.PublicationYear = 2024
	c := candidate("Jane Smith", "harvard medical school", model.SourceNIH)
	c.Title = "Professor"
	c.UsesInVitro = true
	d := candidate("Bob Jones", "Acme Biotech Inc", model.SourceNIH)

	base := NewMerger(testPriority).Merge([]model.CandidateLead{a, b, c, d})

	rng := rand.New(rand.NewSource(7))
	for range 10 {
		perm := []model.CandidateLead{a, b, c, d}
		rng.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })

		got := NewMerger(testPriority).Merge(perm)
		assert.Equal(t, base, got)
	}
}

func TestMergeNoDuplicateIdentities(t *testing.T) {
	var in []model.CandidateLead
	for range 3 {
		in = append(in,
			candidate("Jane Smith", "Harvard University", model.SourcePubMed),
			candidate("Bob Jones", "Acme Inc", model.SourceNIH),
		)
	}

	leads := NewMerger(testPriority).Merge(in)
	require.Len(t, leads, 2)

	seen := map[string]bool{}
	for _, l := range leads {
		assert.False(t, seen[l.IdentityKey()], "duplicate identity %q", l.IdentityKey())
		seen[l.IdentityKey()] = true
	}
}

func TestMergeKeepsDistinctEntities(t *testing.T) {
	// Same person name, different institutions: two leads.
	a := candidate("Jane Smith", "Harvard University", model.SourcePubMed)
	b := candidate("Jane Smith", "Stanford University", model.SourceEuropePMC)

	leads := NewMerger(testPriority).Merge([]model.CandidateLead{a, b})
	assert.Len(t, leads, 2)
}

func TestMergeMostCompleteWins(t *testing.T) {
	sparse := candidate("jane smith", "Harvard University", model.SourcePubMed)
	sparse.Title = "Author"

	full := candidate("Dr. Jane Smith", "Harvard University", model.SourceScholar)
	full.Title = "Director of Liver Research"
	full.PersonLocation = "Boston"
	full.CompanyHQ = "Boston, MA"
	full.FundingStage = "Series B"

	leads := NewMerger(testPriority).Merge([]model.CandidateLead{sparse, full})
	require.Len(t, leads, 1)

	// The scholar record is more complete, so it supplies contested fields
	// despite pubmed's higher source priority.
	assert.Equal(t, "Director of Liver Research", leads[0].Title)
	assert.Equal(t, "Boston", leads[0].PersonLocation)
}

func TestMergeSourcePriorityBreaksCompletenessTie(t *testing.T) {
	a := candidate("Jane Smith", "Harvard University", model.SourceScholar)
	a.Title = "Author"
	b := candidate("Jane Smith", "Harvard University", model.SourcePubMed)
	b.Title = "Researcher"

	leads := NewMerger(testPriority).Merge([]model.CandidateLead{a, b})
	require.Len(t, leads, 1)
	assert.Equal(t, "Researcher", leads[0].Title)
}

func TestMergeYearMaxAndInVitroOr(t *testing.T) {
	a := candidate("Jane Smith", "Harvard University", model.SourcePubMed)
	a.PublicationYear = 2021
	a.UsesInVitro = false
	b := candidate("Jane Smith", "Harvard University", model.SourceEuropePMC)
	b.PublicationYear = 2024
	b.UsesInVitro = true

	leads := NewMerger(testPriority).Merge([]model.CandidateLead{a, b})
	require.Len(t, leads, 1)
	assert.Equal(t, 2024, leads[0].PublicationYear)
	assert.True(t, leads[0].UsesInVitro)
}

func TestMergeUnknownSourceRanksLast(t *testing.T) {
	m := NewMerger([]string{"pubmed"})
	assert.Equal(t, 0, m.sourceRank(model.SourcePubMed))
	assert.Equal(t, 1, m.sourceRank(model.SourceID("mystery")))
}

func TestCompleteness(t *testing.T) {
	c := candidate("Jane", "Acme", model.SourceNIH)
	base := Completeness(c)

	c.Title = "Director"
	c.PublicationYear = 2024
	assert.Equal(t, base+2, Completeness(c))
}

func TestWithKeyer(t *testing.T) {
	// A keyer that buckets everything together merges all records.
	m := NewMerger(testPriority).WithKeyer(func(model.CandidateLead) string { return "all" })

	leads := m.Merge([]model.CandidateLead{
		candidate("Jane Smith", "Harvard University", model.SourcePubMed),
		candidate("Bob Jones", "Acme Inc", model.SourceNIH),
	})
	assert.Len(t, leads, 1)
}
