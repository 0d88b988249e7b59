package normalize

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/model"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestClean(t *testing.T) {
	assert.Equal(t, "Jane Smith", Clean("  Jane   Smith \n"))
	assert.Equal(t, "", Clean("   "))
	assert.Equal(t, "a b c", Clean("a\tb  c"))
}

func TestNameKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Dr. Jane Smith", "jane smith"},
		{"jane smith", "jane smith"},
		{"Prof. José García-López", "jose garcia lopez"},
		{"Jane Smith, PhD", "jane smith"},
		{"  JANE   SMITH ", "jane smith"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NameKey(tt.in), "input %q", tt.in)
	}
}

func TestCompanyKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Harvard Medical School", "harvard medical school"},
		{"harvard medical school.", "harvard medical school"},
		{"Acme Biotech, Inc.", "acme biotech"},
		{"Oxford University", "oxford"},
		{"InSphero AG", "insphero"},
		{"Roche Ltd", "roche"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CompanyKey(tt.in), "input %q", tt.in)
	}
}

func TestCompanyKeyMatchesAcrossSources(t *testing.T) {
	// The motivating pair: same institution, different source formatting.
	assert.Equal(t, CompanyKey("Harvard Medical School"), CompanyKey("harvard medical school."))
}

func TestUsesInVitro(t *testing.T) {
	keywords := []string{"in vitro", "organoid", "3D model", "spheroid", "microphysiological"}

	assert.True(t, UsesInVitro("Hepatic Spheroid cultures for DILI", keywords))
	assert.True(t, UsesInVitro("novel IN VITRO assay", keywords))
	assert.False(t, UsesInVitro("mouse liver study", keywords))
	assert.False(t, UsesInVitro("", keywords))
}

func TestInferWorkMode(t *testing.T) {
	tests := []struct {
		company string
		source  model.SourceID
		want    model.WorkMode
	}{
		{"Harvard University", model.SourcePubMed, model.WorkModeAcademic},
		{"Massachusetts General Hospital", model.SourcePubMed, model.WorkModeAcademic},
		{"Acme Pharma Inc", model.SourceNIH, model.WorkModeIndustry},
		{"Emulate Biotech", model.SourceEuropePMC, model.WorkModeIndustry},
		{"Some Sponsor", model.SourceClinicalTrials, model.WorkModeClinical},
		{"Some Group", model.SourcePubMed, model.WorkModeUnknown},
		{"Genentech, Inc.", model.SourcePubMed, model.WorkModeIndustry},
		// "inc" inside a word is not a corporate suffix.
		{"Lincoln Laboratory", model.SourcePubMed, model.WorkModeUnknown},
		{"Princeton Plasma Physics Lab", model.SourcePubMed, model.WorkModeUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InferWorkMode(tt.company, tt.source), "company %q", tt.company)
	}
}

func TestNormalize(t *testing.T) {
	cfg := testConfig(t)

	raw := model.RawRecord{
		"name":              "  Dr. Jane   Smith ",
		"title":             "Principal Investigator",
		"company":           "Harvard Medical School",
		"person_location":   "Boston, MA",
		"company_hq":        "Boston, MA, USA",
		"funding_stage":     "NIH R01",
		"publication_topic": "Hepatic spheroid models of DILI",
		"publication_year":  "2024",
	}

	lead, ok := Normalize(raw, model.SourcePubMed, cfg)
	require.True(t, ok)

	assert.Equal(t, "Dr. Jane Smith", lead.Name)
	assert.Equal(t, "jane smith", lead.NameKey)
	assert.Equal(t, "harvard medical school", lead.CompanyKey)
	assert.Equal(t, 2024, lead.PublicationYear)
	assert.True(t, lead.UsesInVitro)
	assert.Equal(t, model.WorkModeAcademic, lead.WorkMode)
	assert.Equal(t, model.SourcePubMed, lead.Source)
	assert.NotEmpty(t, lead.RawText)
}

func TestNormalizeDropsEmptyName(t *testing.T) {
	cfg := testConfig(t)

	_, ok := Normalize(model.RawRecord{"name": "   ", "company": "Acme"}, model.SourceNIH, cfg)
	assert.False(t, ok)

	_, ok = Normalize(model.RawRecord{"company": "Acme"}, model.SourceNIH, cfg)
	assert.False(t, ok)
}

func TestNormalizeUnknownFundingCleared(t *testing.T) {
	cfg := testConfig(t)

	lead, ok := Normalize(model.RawRecord{"name": "Jane", "funding_stage": "Unknown"}, model.SourceScholar, cfg)
	require.True(t, ok)
	assert.Empty(t, lead.FundingStage)
}

func TestNormalizeAdapterInVitroFlag(t *testing.T) {
	cfg := testConfig(t)

	lead, ok := Normalize(model.RawRecord{"name": "Jane", "uses_invitro": true}, model.SourceNIH, cfg)
	require.True(t, ok)
	assert.True(t, lead.UsesInVitro)
}
