package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrInvalidWeights is returned by Validate when a weight or threshold is
// negative or the thresholds are out of order.
var ErrInvalidWeights = errors.New("config: invalid weights")

// Config holds every tunable of the analysis pipeline and its servers,
// loaded from codesense.yml.
type Config struct {
	Scoring Scoring `yaml:"scoring"`
	Lint    Lint    `yaml:"lint"`
	Review  Review  `yaml:"review"`
	Server  Server  `yaml:"server"`
}

// Scoring maps issue severities to score penalties and sets the metric
// thresholds the dispatcher turns into issues.
type Scoring struct {
	LowPenalty    int `yaml:"lowPenalty"`
	MediumPenalty int `yaml:"mediumPenalty"`
	HighPenalty   int `yaml:"highPenalty"`

	// A function above ModerateComplexity gets a medium issue, above
	// HighComplexity a high one.
	ModerateComplexity int `yaml:"moderateComplexity"`
	HighComplexity     int `yaml:"highComplexity"`

	// Comment density below this fraction yields a Low Documentation issue.
	MinCommentDensity float64 `yaml:"minCommentDensity"`
}

// Lint holds the size limits used by the structural and pattern linters.
type Lint struct {
	MaxFunctionLines     int `yaml:"maxFunctionLines"`
	MaxConditionOperands int `yaml:"maxConditionOperands"`
	MaxLoopStatements    int `yaml:"maxLoopStatements"`
	IncludeGuardWindow   int `yaml:"includeGuardWindow"`
	IncludeGuardMinLines int `yaml:"includeGuardMinLines"`
	MaxFileLines         int `yaml:"maxFileLines"`
}

// Review holds the kind-based weights and readability limits of the review
// aggregator.
type Review struct {
	ErrorWeight   int `yaml:"errorWeight"`   // kinds naming syntax or error
	SevereWeight  int `yaml:"severeWeight"`  // kinds naming high, complex or raw pointer
	MinorWeight   int `yaml:"minorWeight"`   // kinds naming missing, unused or deprecated
	DefaultWeight int `yaml:"defaultWeight"` // everything else

	MaxMeanLineLength int `yaml:"maxMeanLineLength"`
	MaxLines          int `yaml:"maxLines"`
}

// Server configures the outer surfaces.
type Server struct {
	Addr         string `yaml:"addr"`
	MCPAddr      string `yaml:"mcpAddr,omitempty"`
	Store        string `yaml:"store"` // "memory" or "kuzu"
	KuzuPath     string `yaml:"kuzuPath,omitempty"`
	HistoryLimit int    `yaml:"historyLimit"`
}

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	return &Config{
		Scoring: Scoring{
			LowPenalty:         1,
			MediumPenalty:      3,
			HighPenalty:        7,
			ModerateComplexity: 10,
			HighComplexity:     20,
			MinCommentDensity:  0.05,
		},
		Lint: Lint{
			MaxFunctionLines:     50,
			MaxConditionOperands: 3,
			MaxLoopStatements:    20,
			IncludeGuardWindow:   20,
			IncludeGuardMinLines: 10,
			MaxFileLines:         2000,
		},
		Review: Review{
			ErrorWeight:       10,
			SevereWeight:      7,
			MinorWeight:       3,
			DefaultWeight:     1,
			MaxMeanLineLength: 90,
			MaxLines:          300,
		},
		Server: Server{
			Addr:         ":8080",
			Store:        "memory",
			KuzuPath:     ".codesense/history.kuzu",
			HistoryLimit: 20,
		},
	}
}

// Load reads codesense.yml or codesense.yaml from dir and overlays it on
// Default. A missing file is not an error.
func Load(dir string) (*Config, error) {
	for _, name := range []string{"codesense.yml", "codesense.yaml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return LoadFile(path)
	}
	return Default(), nil
}

// LoadFile overlays the YAML file at path on Default and validates the
// result. Unlike Load, the file must exist.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that weights and thresholds are usable.
func (c *Config) Validate() error {
	s := c.Scoring
	weights := []struct {
		name  string
		value int
	}{
		{"scoring.lowPenalty", s.LowPenalty},
		{"scoring.mediumPenalty", s.MediumPenalty},
		{"scoring.highPenalty", s.HighPenalty},
		{"review.errorWeight", c.Review.ErrorWeight},
		{"review.severeWeight", c.Review.SevereWeight},
		{"review.minorWeight", c.Review.MinorWeight},
		{"review.defaultWeight", c.Review.DefaultWeight},
	}
	for _, w := range weights {
		if w.value < 0 {
			return fmt.Errorf("%w: %s is negative (%d)", ErrInvalidWeights, w.name, w.value)
		}
	}
	if s.ModerateComplexity < 1 || s.HighComplexity < s.ModerateComplexity {
		return fmt.Errorf("%w: complexity thresholds must satisfy 1 <= moderate (%d) <= high (%d)",
			ErrInvalidWeights, s.ModerateComplexity, s.HighComplexity)
	}
	if s.MinCommentDensity < 0 || s.MinCommentDensity > 1 {
		return fmt.Errorf("%w: scoring.minCommentDensity must be within [0,1], got %v",
			ErrInvalidWeights, s.MinCommentDensity)
	}
	return nil
}
