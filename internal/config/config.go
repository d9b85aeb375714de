package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultMembers is the portfolio used when none is configured
var DefaultMembers = []string{"WorkerRush", "LightRush", "RangedRush", "HeavyRush", "Expand", "BuildBarracks"}

// Config is the root configuration structure
type Config struct {
	Portfolio PortfolioConfig `yaml:"portfolio"`
	RL        RLConfig        `yaml:"rl"`
	Runner    RunnerConfig    `yaml:"runner"`
	Logging   LogConfig       `yaml:"logging"`
}

// PortfolioConfig lists the sub-policies the agent chooses between
type PortfolioConfig struct {
	Members MemberList `yaml:"members"`
}

// MemberList accepts either a YAML sequence or a comma-separated string
type MemberList []string

func (m *MemberList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var out []string
		for _, s := range strings.Split(node.Value, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		*m = out
		return nil
	case yaml.SequenceNode:
		var out []string
		if err := node.Decode(&out); err != nil {
			return err
		}
		*m = out
		return nil
	default:
		return fmt.Errorf("line %d: portfolio.members must be a list or a comma-separated string", node.Line)
	}
}

// RLConfig holds the learner's parameters
type RLConfig struct {
	Random        RandomConfig   `yaml:"random"`
	Epsilon       ScheduleConfig `yaml:"epsilon"`
	Alpha         ScheduleConfig `yaml:"alpha"`
	Gamma         float64        `yaml:"gamma"`
	Lambda        float64        `yaml:"lambda"` // accepted, unused by Sarsa(0)
	Feature       FeatureConfig  `yaml:"feature"`
	Weights       WeightsConfig  `yaml:"weights"`
	StickyActions int            `yaml:"sticky_actions"` // frames per decision
	BinInput      string         `yaml:"bin_input"`
	SaveBin       bool           `yaml:"save_weights_bin"`
	SaveHuman     bool           `yaml:"save_weights_human"`
	WorkingDir    string         `yaml:"workingdir"`
	WeightsDB     string         `yaml:"weights_db"` // sqlite snapshot history, empty disables
}

// RandomConfig seeds the agent's random source
type RandomConfig struct {
	Seed int64 `yaml:"seed"`
}

// ScheduleConfig is an initial value with a per-match multiplicative decay
type ScheduleConfig struct {
	Initial float64 `yaml:"initial"`
	Decay   float64 `yaml:"decay"`
}

// FeatureConfig selects the feature extractor
type FeatureConfig struct {
	Extractor ExtractorConfig `yaml:"extractor"`
}

// ExtractorConfig parameterizes the quadrant extractor
type ExtractorConfig struct {
	QuadrantDivision int `yaml:"quadrant_division"`
}

// WeightsConfig controls weight initialization
type WeightsConfig struct {
	InitMethod string `yaml:"init_method"` // fixed_interval|parameterized
}

// RunnerConfig controls per-match summary output
type RunnerConfig struct {
	Output      string `yaml:"output"`       // csv path, empty disables
	OutputJSONL string `yaml:"output_jsonl"` // jsonl path, empty disables
}

// LogConfig controls structured logging
type LogConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // text|json
}

// Default returns the configuration used for unset keys
func Default() *Config {
	return &Config{
		Portfolio: PortfolioConfig{Members: append(MemberList(nil), DefaultMembers...)},
		RL: RLConfig{
			Random:        RandomConfig{Seed: 1337},
			Epsilon:       ScheduleConfig{Initial: 0.1, Decay: 1.0},
			Alpha:         ScheduleConfig{Initial: 0.1, Decay: 1.0},
			Gamma:         0.9,
			Feature:       FeatureConfig{Extractor: ExtractorConfig{QuadrantDivision: 3}},
			Weights:       WeightsConfig{InitMethod: "fixed_interval"},
			StickyActions: 100,
			WorkingDir:    "weights/",
		},
		Logging: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads a YAML config file and returns a validated Config
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills keys that were present but left empty
func applyDefaults(cfg *Config) {
	if len(cfg.Portfolio.Members) == 0 {
		cfg.Portfolio.Members = append(MemberList(nil), DefaultMembers...)
	}
	if cfg.RL.Weights.InitMethod == "" {
		cfg.RL.Weights.InitMethod = "fixed_interval"
	}
	if cfg.RL.WorkingDir == "" {
		cfg.RL.WorkingDir = "weights/"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// Validate checks ranges and enumerations
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Portfolio.Members))
	for _, m := range c.Portfolio.Members {
		key := strings.ToLower(strings.TrimSpace(m))
		if key == "" {
			return fmt.Errorf("portfolio.members: empty name")
		}
		if seen[key] {
			return fmt.Errorf("portfolio.members: duplicate %q", m)
		}
		seen[key] = true
	}
	probabilities := []struct {
		key string
		v   float64
	}{
		{"rl.epsilon.initial", c.RL.Epsilon.Initial},
		{"rl.epsilon.decay", c.RL.Epsilon.Decay},
		{"rl.alpha.initial", c.RL.Alpha.Initial},
		{"rl.alpha.decay", c.RL.Alpha.Decay},
		{"rl.gamma", c.RL.Gamma},
		{"rl.lambda", c.RL.Lambda},
	}
	for _, p := range probabilities {
		if p.v < 0 || p.v > 1 {
			return fmt.Errorf("%s: %g outside [0,1]", p.key, p.v)
		}
	}
	if c.RL.Feature.Extractor.QuadrantDivision < 1 {
		return fmt.Errorf("rl.feature.extractor.quadrant_division: must be >= 1, got %d", c.RL.Feature.Extractor.QuadrantDivision)
	}
	if c.RL.StickyActions < 1 {
		return fmt.Errorf("rl.sticky_actions: must be >= 1, got %d", c.RL.StickyActions)
	}
	switch c.RL.Weights.InitMethod {
	case "fixed_interval", "parameterized":
	default:
		return fmt.Errorf("rl.weights.init_method: unknown %q", c.RL.Weights.InitMethod)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format: unknown %q", c.Logging.Format)
	}
	return nil
}

// StickyDuration is how many extra frames a chosen member is kept
func (c *Config) StickyDuration() int {
	return c.RL.StickyActions - 1
}
