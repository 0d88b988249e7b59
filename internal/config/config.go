package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Sources  SourcesConfig  `yaml:"sources" mapstructure:"sources"`
	Keywords KeywordsConfig `yaml:"keywords" mapstructure:"keywords"`
	Scoring  ScoringConfig  `yaml:"scoring" mapstructure:"scoring"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Export   ExportConfig   `yaml:"export" mapstructure:"export"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// SourcesConfig configures the source adapters.
type SourcesConfig struct {
	MaxResults         int      `yaml:"max_results" mapstructure:"max_results"`
	RequestTimeoutSecs int      `yaml:"request_timeout_secs" mapstructure:"request_timeout_secs"`
	RequestDelayMS     int      `yaml:"request_delay_ms" mapstructure:"request_delay_ms"`
	UserAgent          string   `yaml:"user_agent" mapstructure:"user_agent"`
	ContactEmail       string   `yaml:"contact_email" mapstructure:"contact_email"`
	Priority           []string `yaml:"priority" mapstructure:"priority"`
}

// KeywordsConfig holds the keyword lists driving search and feature extraction.
type KeywordsConfig struct {
	Research []string `yaml:"research" mapstructure:"research"`
	Title    []string `yaml:"title" mapstructure:"title"`
	Role     []string `yaml:"role" mapstructure:"role"`
	InVitro  []string `yaml:"invitro" mapstructure:"invitro"`
}

// ScoringConfig holds the weighted relevance model inputs.
type ScoringConfig struct {
	Weights            Weights  `yaml:"weights" mapstructure:"weights"`
	HubLocations       []string `yaml:"hub_locations" mapstructure:"hub_locations"`
	RecencyWindowYears int      `yaml:"recency_window_years" mapstructure:"recency_window_years"`
	ProfilePath        string   `yaml:"profile_path" mapstructure:"profile_path"`
}

// Weights are the five named feature weights. They are data, not code, and
// need not sum to 1.
type Weights struct {
	TitleMatch        float64 `yaml:"title_match" mapstructure:"title_match"`
	FundingStage      float64 `yaml:"funding_stage" mapstructure:"funding_stage"`
	UsesInVitro       float64 `yaml:"uses_invitro" mapstructure:"uses_invitro"`
	LocationHub       float64 `yaml:"location_hub" mapstructure:"location_hub"`
	RecentPublication float64 `yaml:"recent_publication" mapstructure:"recent_publication"`
}

// Sum returns the total weight mass, the denominator of the combined score.
func (w Weights) Sum() float64 {
	return w.TitleMatch + w.FundingStage + w.UsesInVitro + w.LocationHub + w.RecentPublication
}

// PipelineConfig configures the run orchestrator.
type PipelineConfig struct {
	TimeoutSecs int  `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	SkipScholar bool `yaml:"skip_scholar" mapstructure:"skip_scholar"`
}

// ExportConfig configures output file generation.
type ExportConfig struct {
	Dir     string   `yaml:"dir" mapstructure:"dir"`
	Formats []string `yaml:"formats" mapstructure:"formats"`
}

// StoreConfig configures the run-history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("sources.max_results", 50)
	v.SetDefault("sources.request_timeout_secs", 30)
	v.SetDefault("sources.request_delay_ms", 1000)
	v.SetDefault("sources.user_agent", "leadgen-cli/1.0")
	v.SetDefault("sources.contact_email", "leads@sellsadvisors.com")
	v.SetDefault("sources.priority", []string{"pubmed", "europepmc", "nih", "clinicaltrials", "scholar"})
	v.SetDefault("keywords.research", []string{
		"3D cell culture toxicology",
		"3D in vitro liver",
		"organ-on-chip liver",
		"hepatic spheroids",
		"liver toxicity models",
		"hepatotoxicity in vitro",
	})
	v.SetDefault("keywords.title", []string{
		"director", "vp", "vice president", "head", "chief",
		"senior", "principal", "lead", "manager",
	})
	v.SetDefault("keywords.role", []string{
		"toxicology", "toxicologist", "safety", "hepatic",
		"preclinical", "liver", "dmpk", "adme",
	})
	v.SetDefault("keywords.invitro", []string{
		"in vitro", "organoid", "3d model", "spheroid", "microphysiological",
	})
	v.SetDefault("scoring.weights.title_match", 0.30)
	v.SetDefault("scoring.weights.funding_stage", 0.20)
	v.SetDefault("scoring.weights.uses_invitro", 0.15)
	v.SetDefault("scoring.weights.location_hub", 0.10)
	v.SetDefault("scoring.weights.recent_publication", 0.40)
	v.SetDefault("scoring.hub_locations", []string{
		"boston", "cambridge", "massachusetts",
		"san francisco", "bay area", "palo alto",
		"san diego", "la jolla",
		"basel", "zurich", "switzerland",
		"london", "oxford", "united kingdom",
		"munich", "germany",
		"new jersey", "princeton",
		"research triangle", "north carolina",
		"maryland", "bethesda",
	})
	v.SetDefault("scoring.recency_window_years", 5)
	v.SetDefault("pipeline.timeout_secs", 300)
	v.SetDefault("export.dir", "output")
	v.SetDefault("export.formats", []string{"csv", "xlsx"})
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "leadgen.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the configuration surface the pipeline depends on. It runs
// before any adapter and a failure here is fatal.
func (c *Config) Validate() error {
	var problems []string

	for name, w := range map[string]float64{
		"title_match":        c.Scoring.Weights.TitleMatch,
		"funding_stage":      c.Scoring.Weights.FundingStage,
		"uses_invitro":       c.Scoring.Weights.UsesInVitro,
		"location_hub":       c.Scoring.Weights.LocationHub,
		"recent_publication": c.Scoring.Weights.RecentPublication,
	} {
		if w < 0 {
			problems = append(problems, "scoring.weights."+name+" must be >= 0")
		}
	}
	if c.Scoring.Weights.Sum() <= 0 {
		problems = append(problems, "scoring.weights must have a positive sum")
	}
	if c.Scoring.RecencyWindowYears < 1 {
		problems = append(problems, "scoring.recency_window_years must be >= 1")
	}
	if len(c.Scoring.HubLocations) == 0 {
		problems = append(problems, "scoring.hub_locations must not be empty")
	}
	if len(c.Keywords.Research) == 0 {
		problems = append(problems, "keywords.research must not be empty")
	}
	if len(c.Keywords.Title) == 0 {
		problems = append(problems, "keywords.title must not be empty")
	}
	if len(c.Keywords.InVitro) == 0 {
		problems = append(problems, "keywords.invitro must not be empty")
	}
	if len(c.Sources.Priority) == 0 {
		problems = append(problems, "sources.priority must not be empty")
	}
	if c.Sources.MaxResults < 1 {
		problems = append(problems, "sources.max_results must be >= 1")
	}
	if c.Pipeline.TimeoutSecs < 1 {
		problems = append(problems, "pipeline.timeout_secs must be >= 1")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, "server.port must be between 1 and 65535")
	}

	if len(problems) > 0 {
		return eris.New("config: invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
