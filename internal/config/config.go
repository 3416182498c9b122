package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

// Config is the static process-start configuration. It is built once and
// passed by reference; nothing mutates it after Load returns.
type Config struct {
	Feeds    []string `yaml:"feeds"`
	Keywords Keywords `yaml:"keywords"`
	MinScore int      `yaml:"min_score"`
	Fetch    Fetch    `yaml:"fetch"`
	Output   Output   `yaml:"output"`
}

// Keywords holds the two weighted keyword groups. Both are ordered lists,
// not maps: rule iteration order is the configuration order.
type Keywords struct {
	Primary []Keyword `yaml:"primary"`
	Context []Keyword `yaml:"context"`
}

// Keyword is one term with its relevance weight.
type Keyword struct {
	Term   string `yaml:"term"`
	Weight int    `yaml:"weight"`
}

type Fetch struct {
	// DelaySeconds is the politeness pause between consecutive feed fetches.
	DelaySeconds int `yaml:"delay_seconds"`
}

type Output struct {
	DataDir     string `yaml:"data_dir"`
	ReportLimit int    `yaml:"report_limit"`
}

// ConfigDir returns the XDG config directory for scholarfeed.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "scholarfeed")
}

// DataDir returns the XDG data directory for scholarfeed.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "scholarfeed")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/scholarfeed/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'scholarfeed init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		MinScore: 3,
		Fetch:    Fetch{DelaySeconds: 1},
		Output:   Output{ReportLimit: 20},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.MinScore < 0 {
		return nil, fmt.Errorf("min_score must not be negative, got %d", cfg.MinScore)
	}
	if cfg.Output.ReportLimit < 1 {
		return nil, fmt.Errorf("report_limit must be positive, got %d", cfg.Output.ReportLimit)
	}

	return cfg, nil
}

// FetchDelay returns the politeness delay as a duration.
func (c *Config) FetchDelay() time.Duration {
	return time.Duration(c.Fetch.DelaySeconds) * time.Second
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// DatabasePath returns the path of the SQLite article store.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.GetDataDir(), "scholarfeed.db")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
