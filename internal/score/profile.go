package score

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/leadgen-cli/internal/config"
)

// Profile is the complete scoring model: weights plus the keyword and
// location lists the feature extractors match against. It is data, loaded
// before a run starts, and never mutated by the engine.
type Profile struct {
	Weights             config.Weights `yaml:"weights"`
	TitleKeywords       []string       `yaml:"title_keywords"`
	StrongTitleKeywords []string       `yaml:"strong_title_keywords"`
	ActiveGrantPatterns []string       `yaml:"active_grant_patterns"`
	HubLocations        []string       `yaml:"hub_locations"`
	RecencyWindowYears  int            `yaml:"recency_window_years"`
}

// DefaultProfile builds a profile from the application configuration.
func DefaultProfile(cfg *config.Config) Profile {
	return Profile{
		Weights:       cfg.Scoring.Weights,
		TitleKeywords: cfg.Keywords.Title,
		StrongTitleKeywords: []string{
			"director", "principal investigator", "chief", "vp", "vice president", "head",
		},
		ActiveGrantPatterns: []string{
			"series a", "series b", "series c",
			"grant", "nih", "r01", "funded", "clinical trial",
		},
		HubLocations:       cfg.Scoring.HubLocations,
		RecencyWindowYears: cfg.Scoring.RecencyWindowYears,
	}
}

// LoadProfile reads a scoring profile from a YAML file. Fields absent from
// the file keep the values of the base profile.
func LoadProfile(path string, base Profile) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, eris.Wrapf(err, "score: read profile %s", path)
	}

	var wrapper struct {
		Scoring Profile `yaml:"scoring"`
	}
	wrapper.Scoring = base
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return Profile{}, eris.Wrap(err, "score: parse profile")
	}

	return wrapper.Scoring, nil
}

// Validate rejects profiles the engine cannot score with.
func (p Profile) Validate() error {
	if p.Weights.Sum() <= 0 {
		return eris.New("score: profile weights must have a positive sum")
	}
	if p.RecencyWindowYears < 1 {
		return eris.New("score: recency window must be >= 1 year")
	}
	if len(p.TitleKeywords) == 0 {
		return eris.New("score: title keyword list must not be empty")
	}
	return nil
}
