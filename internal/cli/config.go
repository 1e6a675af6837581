package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// Config holds all configuration options.
type Config struct {
	DataPath                 string  `json:"data_path"`
	Sampler                  string  `json:"sampler"`
	KeyProb                  float64 `json:"key_prob"`
	ScoresPath               string  `json:"scores_path,omitempty"`
	CollapseRepeatInsertions bool    `json:"collapse_repeat_insertions"`
	NRepetitions             int     `json:"n_repetitions"`
}

// Sampler names accepted in config and flags.
const (
	SamplerExponential = "exponential"
	SamplerPossible    = "possible"
	SamplerUncertain   = "uncertain"
)

// ConfigFileName is the default project config file name.
const ConfigFileName = ".chordpref.json"

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DataPath:                 ".",
		Sampler:                  SamplerExponential,
		KeyProb:                  0.6,
		CollapseRepeatInsertions: true,
		NRepetitions:             5,
	}
}

// fileOverlay is a parsed config file plus the set of keys it actually
// declared, so absent fields never clobber lower-precedence values.
type fileOverlay struct {
	cfg     Config
	present map[string]bool
}

// LoadConfigInput bundles the sources LoadConfig layers.
type LoadConfigInput struct {
	// ConfigPath is an explicit config file; it must exist when set.
	ConfigPath string

	// DataPathOverride wins over every file and the environment.
	DataPathOverride string

	// Env is the process environment as a map. DATA_PATH overrides the
	// config files.
	Env map[string]string
}

// LoadConfig loads configuration with the following precedence
// (highest wins): defaults, global user config
// ($XDG_CONFIG_HOME/chordpref/config.json or ~/.config/chordpref),
// project config (.chordpref.json) or explicit file, DATA_PATH from the
// environment, CLI overrides.
func LoadConfig(in LoadConfigInput) (Config, error) {
	cfg := DefaultConfig()

	globalPath := globalConfigPath(in.Env)
	if globalPath != "" {
		overlay, loaded, err := loadConfigFile(globalPath, false)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg = mergeConfig(cfg, overlay)
		}
	}

	projectPath := in.ConfigPath
	mustExist := projectPath != ""

	if projectPath == "" {
		projectPath = ConfigFileName
	}

	overlay, loaded, err := loadConfigFile(projectPath, mustExist)
	if err != nil {
		return Config{}, err
	}

	if loaded {
		cfg = mergeConfig(cfg, overlay)
	}

	if dp := in.Env["DATA_PATH"]; dp != "" {
		cfg.DataPath = dp
	}

	if in.DataPathOverride != "" {
		cfg.DataPath = in.DataPathOverride
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// globalConfigPath returns the global config file path, or empty when no
// home directory is available.
func globalConfigPath(env map[string]string) string {
	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, "chordpref", "config.json")
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "chordpref", "config.json")
	}

	home, err := os.UserHomeDir()
	if err == nil {
		return filepath.Join(home, ".config", "chordpref", "config.json")
	}

	return ""
}

// loadConfigFile loads a JSONC config file. When mustExist is false a
// missing file is not an error.
func loadConfigFile(path string, mustExist bool) (fileOverlay, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return fileOverlay{}, false, nil
		}

		if mustExist {
			return fileOverlay{}, false, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
		}

		return fileOverlay{}, false, nil
	}

	overlay, parseErr := parseConfig(data)
	if parseErr != nil {
		return fileOverlay{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, parseErr)
	}

	return overlay, true, nil
}

func parseConfig(data []byte) (fileOverlay, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileOverlay{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return fileOverlay{}, fmt.Errorf("invalid JSON: %w", err)
	}

	var raw map[string]json.RawMessage

	_ = json.Unmarshal(standardized, &raw)

	present := make(map[string]bool, len(raw))
	for k := range raw {
		present[k] = true
	}

	return fileOverlay{cfg: cfg, present: present}, nil
}

func mergeConfig(base Config, o fileOverlay) Config {
	if o.present["data_path"] {
		base.DataPath = o.cfg.DataPath
	}

	if o.present["sampler"] {
		base.Sampler = o.cfg.Sampler
	}

	if o.present["key_prob"] {
		base.KeyProb = o.cfg.KeyProb
	}

	if o.present["scores_path"] {
		base.ScoresPath = o.cfg.ScoresPath
	}

	if o.present["collapse_repeat_insertions"] {
		base.CollapseRepeatInsertions = o.cfg.CollapseRepeatInsertions
	}

	if o.present["n_repetitions"] {
		base.NRepetitions = o.cfg.NRepetitions
	}

	return base
}

func validateConfig(cfg Config) error {
	if cfg.DataPath == "" {
		return ErrDataPathEmpty
	}

	switch cfg.Sampler {
	case SamplerExponential, SamplerPossible, SamplerUncertain:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSampler, cfg.Sampler)
	}

	if cfg.KeyProb < 0 || cfg.KeyProb >= 1 {
		return fmt.Errorf("%w: %v", ErrBadKeyProb, cfg.KeyProb)
	}

	if cfg.NRepetitions <= 0 {
		return fmt.Errorf("%w: %d", ErrBadRepetitions, cfg.NRepetitions)
	}

	return nil
}
