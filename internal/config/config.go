package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"studyflow/internal/stats"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used for ICS export timestamps
	// (e.g. "Asia/Jakarta"). Record date keys themselves live in a single
	// fixed calendar and are never converted.
	Timezone string `yaml:"timezone" json:"timezone"`

	// FixedGrid pads the month grid to a full 6x7 block for stable UI
	// height instead of leaving the final week ragged.
	FixedGrid bool `yaml:"fixed_grid" json:"fixed_grid"`

	// UncategorizedLabel is the category bucket for tasks without one.
	UncategorizedLabel string `yaml:"uncategorized_label" json:"uncategorized_label"`

	// RollupCron is a cron-style schedule for capturing the daily
	// productivity score into the history (e.g. "55 23 * * *").
	RollupCron string `yaml:"rollup_cron" json:"rollup_cron"`

	// Score is the productivity score weighting. The split between task,
	// pomodoro and sleep signals is a product knob, so it lives here.
	//
	// A score block with all three weights zero is treated as absent and
	// replaced with the defaults by Normalize. To silence individual
	// signals, zero only their weights and keep at least one non-zero.
	Score stats.ScoreWeights `yaml:"score" json:"score"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:             "127.0.0.1:8080",
		Timezone:           "Asia/Jakarta",
		FixedGrid:          false,
		UncategorizedLabel: "Uncategorized",
		RollupCron:         "55 23 * * *",
		Score:              stats.DefaultScoreWeights(),
		BasicAuth:          nil,
	}
}

// Normalize fills in missing/zero values with defaults so partially-filled
// configs from older versions still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "Asia/Jakarta"
	}
	if c.UncategorizedLabel == "" {
		c.UncategorizedLabel = "Uncategorized"
	}
	if c.RollupCron == "" {
		c.RollupCron = "55 23 * * *"
	}
	// An all-zero weight block means the section was absent (see the
	// Score field comment); a partially-set block is kept as written and
	// only the session target is normalized.
	if c.Score.Task == 0 && c.Score.Pomodoro == 0 && c.Score.Sleep == 0 {
		weights := stats.DefaultScoreWeights()
		weights.TargetSessions = c.Score.TargetSessions
		c.Score = weights
	}
	if c.Score.TargetSessions <= 0 {
		c.Score.TargetSessions = stats.DefaultScoreWeights().TargetSessions
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist: create parent directory if needed, write
//     a default config with 0600 perms, and return the default config.
//   - If the file exists: read YAML, unmarshal, normalize defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path: parent dir 0700, atomic temp-file + rename,
// final permissions 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".studyflow-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method delegating to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
