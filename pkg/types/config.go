package types

import "time"

// HTTPConfig holds shared HTTP settings for stages that make network requests.
type HTTPConfig struct {
	// Timeout is the per-request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "manuscript-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// StateConfig holds settings for the workflow state store.
type StateConfig struct {
	// LockTimeout bounds the wait for the state file's advisory lock.
	// Acquisition never blocks indefinitely (default 5s).
	LockTimeout time.Duration `json:"lock_timeout" yaml:"lock_timeout" mapstructure:"lock_timeout"`

	// LockRetryDelay is the interval between lock attempts (default 100ms).
	LockRetryDelay time.Duration `json:"lock_retry_delay" yaml:"lock_retry_delay" mapstructure:"lock_retry_delay"`
}

// ValidationConfig holds settings for evidence validation.
type ValidationConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Workers is the number of concurrent DOI checks (default 4).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// BatchDeadline bounds a whole validation run. Records whose check
	// has not completed by the deadline finalize as unknown (default 2m).
	BatchDeadline time.Duration `json:"batch_deadline" yaml:"batch_deadline" mapstructure:"batch_deadline"`

	// FreshYears and StaleYears set the freshness band edges: fresh
	// under FreshYears, stale up to StaleYears, old beyond (defaults 5, 10).
	FreshYears int `json:"fresh_years" yaml:"fresh_years" mapstructure:"fresh_years"`
	StaleYears int `json:"stale_years" yaml:"stale_years" mapstructure:"stale_years"`
}

// ScoringConfig holds the compatibility scorer's constants. The weights
// and bands are conventions carried from the guideline catalog, not
// derived values, so they stay configurable.
type ScoringConfig struct {
	// KeywordWeight and StructureWeight combine the two sub-scores
	// (defaults 0.5 and 0.5).
	KeywordWeight   float64 `json:"keyword_weight" yaml:"keyword_weight" mapstructure:"keyword_weight"`
	StructureWeight float64 `json:"structure_weight" yaml:"structure_weight" mapstructure:"structure_weight"`

	// NegativePenalty scales the fraction of negative keywords found
	// before it is subtracted from the positive fraction (default 0.5).
	NegativePenalty float64 `json:"negative_penalty" yaml:"negative_penalty" mapstructure:"negative_penalty"`

	// ExcellentBand, GoodBand, and ModerateBand are the lower edges of
	// the reporting bands (defaults 0.75, 0.60, 0.45).
	ExcellentBand float64 `json:"excellent_band" yaml:"excellent_band" mapstructure:"excellent_band"`
	GoodBand      float64 `json:"good_band" yaml:"good_band" mapstructure:"good_band"`
	ModerateBand  float64 `json:"moderate_band" yaml:"moderate_band" mapstructure:"moderate_band"`
}

// AssemblyConfig holds settings for manuscript assembly.
type AssemblyConfig struct {
	// OutputFile is the assembled manuscript filename (default
	// "manuscript.md").
	OutputFile string `json:"output_file" yaml:"output_file" mapstructure:"output_file"`

	// ManifestFile is the manifest filename (default
	// "assembly_manifest.json").
	ManifestFile string `json:"manifest_file" yaml:"manifest_file" mapstructure:"manifest_file"`
}

// EngineConfig groups all component configurations.
type EngineConfig struct {
	State      StateConfig      `json:"state" yaml:"state" mapstructure:"state"`
	Validation ValidationConfig `json:"validation" yaml:"validation" mapstructure:"validation"`
	Scoring    ScoringConfig    `json:"scoring" yaml:"scoring" mapstructure:"scoring"`
	Assembly   AssemblyConfig   `json:"assembly" yaml:"assembly" mapstructure:"assembly"`
}

// DefaultEngineConfig returns the documented defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		State: StateConfig{
			LockTimeout:    5 * time.Second,
			LockRetryDelay: 100 * time.Millisecond,
		},
		Validation: ValidationConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   5 * time.Second,
				UserAgent: "manuscript-engine/0.1",
			},
			Workers:       4,
			BatchDeadline: 2 * time.Minute,
			FreshYears:    5,
			StaleYears:    10,
		},
		Scoring: ScoringConfig{
			KeywordWeight:   0.5,
			StructureWeight: 0.5,
			NegativePenalty: 0.5,
			ExcellentBand:   0.75,
			GoodBand:        0.60,
			ModerateBand:    0.45,
		},
		Assembly: AssemblyConfig{
			OutputFile:   "manuscript.md",
			ManifestFile: "assembly_manifest.json",
		},
	}
}
