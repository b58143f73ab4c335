// Package config holds the experiment configuration. An Experiment is
// constructed once (from flags or a YAML spec file), validated, and passed
// by pointer; nothing in here mutates after Load returns.
package config

import (
	"fmt"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"suspect/internal/models"
	"suspect/internal/prompt"
)

// TemplateNames maps a template id to the directory name its results are
// stored under.
var TemplateNames = map[int]string{
	1: "trace_aware",
	2: "trace_expected_behavior",
	3: "flexfl_style",
}

// Experiment describes one inference run end to end.
type Experiment struct {
	Model    string      `yaml:"model"`
	Endpoint string      `yaml:"endpoint"`
	Template int         `yaml:"template"`
	Mode     models.Mode `yaml:"mode"`

	TopK           int `yaml:"top_k"`
	TimeoutSeconds int `yaml:"timeout_seconds"`
	MaxTokens      int `yaml:"max_tokens"`

	PromptsDir string `yaml:"prompts_dir"`
	OutputsDir string `yaml:"outputs_dir"`

	Projects []string `yaml:"projects"`
	BugIDs   []int    `yaml:"bug_ids"`

	// Strategy carries mode-specific options; its shape depends on Mode.
	// Decoded on demand via ZeroShotOptions / ConsistencyOptions.
	Strategy map[string]any `yaml:"strategy"`
}

// ZeroShotOptions tunes the iterative convergence loop.
type ZeroShotOptions struct {
	MaxIterations int     `mapstructure:"max_iterations"`
	Temperature   float64 `mapstructure:"temperature"`
}

// ConsistencyOptions tunes the self-consistency sampler.
type ConsistencyOptions struct {
	Runs        int     `mapstructure:"runs"`
	Temperature float64 `mapstructure:"temperature"`
	MaxInFlight int64   `mapstructure:"max_in_flight"`
}

// Default returns an Experiment with every tunable at its documented
// default. The model id has no default and must be set by the caller.
func Default() *Experiment {
	return &Experiment{
		Endpoint:       "http://localhost:11434",
		Template:       1,
		Mode:           models.ModeZeroShot,
		TopK:           5,
		TimeoutSeconds: 1800,
		MaxTokens:      1024,
		PromptsDir:     "prompts",
		OutputsDir:     "outputs",
	}
}

// Load reads a YAML experiment spec, applies defaults for omitted fields
// and validates the result.
func Load(path string) (*Experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading experiment spec: %w", err)
	}
	exp := Default()
	if err := yaml.Unmarshal(data, exp); err != nil {
		return nil, fmt.Errorf("parsing experiment spec %s: %w", path, err)
	}
	if err := exp.Validate(); err != nil {
		return nil, fmt.Errorf("experiment spec %s: %w", path, err)
	}
	return exp, nil
}

// Validate checks the configuration for internal consistency.
func (e *Experiment) Validate() error {
	if e.Model == "" {
		return &models.ConfigurationError{Msg: "model is required"}
	}
	if e.Endpoint == "" {
		return &models.ConfigurationError{Msg: "endpoint is required"}
	}
	if e.Template < 1 || e.Template > prompt.TemplateCount {
		return &models.ConfigurationError{Msg: fmt.Sprintf("template must be between 1 and %d, got %d", prompt.TemplateCount, e.Template)}
	}
	if !e.Mode.Valid() {
		return &models.ConfigurationError{Msg: fmt.Sprintf("unknown mode %q", e.Mode)}
	}
	if e.TopK < 1 {
		return &models.ConfigurationError{Msg: "top_k must be at least 1"}
	}
	if e.TimeoutSeconds < 1 {
		return &models.ConfigurationError{Msg: "timeout_seconds must be positive"}
	}
	switch e.Mode {
	case models.ModeZeroShot:
		_, err := e.ZeroShot()
		return err
	case models.ModeSelfConsistency:
		_, err := e.Consistency()
		return err
	}
	return nil
}

// TemplateName returns the storage directory name for the configured
// template.
func (e *Experiment) TemplateName() string {
	return TemplateNames[e.Template]
}

// ZeroShot decodes the strategy block as zero-shot options, with defaults
// for anything unset.
func (e *Experiment) ZeroShot() (ZeroShotOptions, error) {
	opts := ZeroShotOptions{MaxIterations: 10, Temperature: 0.2}
	if err := e.decodeStrategy(&opts); err != nil {
		return opts, err
	}
	if opts.MaxIterations < 1 {
		return opts, &models.ConfigurationError{Msg: "strategy.max_iterations must be at least 1"}
	}
	return opts, nil
}

// Consistency decodes the strategy block as self-consistency options, with
// defaults for anything unset.
func (e *Experiment) Consistency() (ConsistencyOptions, error) {
	opts := ConsistencyOptions{Runs: 5, Temperature: 0.7, MaxInFlight: 1}
	if err := e.decodeStrategy(&opts); err != nil {
		return opts, err
	}
	if opts.Runs < 1 || opts.Runs > 7 {
		return opts, &models.ConfigurationError{Msg: fmt.Sprintf("strategy.runs must be between 1 and 7, got %d", opts.Runs)}
	}
	if opts.MaxInFlight < 1 {
		return opts, &models.ConfigurationError{Msg: "strategy.max_in_flight must be at least 1"}
	}
	return opts, nil
}

func (e *Experiment) decodeStrategy(target any) error {
	if len(e.Strategy) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      target,
		ErrorUnused: false,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(e.Strategy); err != nil {
		return &models.ConfigurationError{Msg: fmt.Sprintf("strategy options: %v", err)}
	}
	return nil
}
