package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pevans/ytexport/control"
	"github.com/pevans/ytexport/extractor"
	"github.com/pevans/ytexport/loader"
	"github.com/pevans/ytexport/logger"
	"github.com/pevans/ytexport/scanner"
	"github.com/pevans/ytexport/video"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// AgentConfig represents the page agent settings.
type AgentConfig struct {
	Addr         string        `yaml:"addr"`
	URL          string        `yaml:"url"`
	StartupDelay time.Duration `yaml:"startup_delay"`
	Timeout      time.Duration `yaml:"timeout"`
}

// SessionConfig represents the control session timing.
type SessionConfig struct {
	GraceDelay  time.Duration `yaml:"grace_delay"`
	RetryDelay  time.Duration `yaml:"retry_delay"`
	PreviewSize int           `yaml:"preview_size"`
}

// LoaderConfig represents the incremental loading limits.
type LoaderConfig struct {
	MaxScrolls  int           `yaml:"max_scrolls"`
	SettleDelay time.Duration `yaml:"settle_delay"`
}

// ScannerConfig represents the card selectors tried on each page, in order.
// An empty list uses the built-in groups.
type ScannerConfig struct {
	Groups []string `yaml:"groups"`
}

// FileConfig represents the structure of ~/.ytexport/config.yaml.
type FileConfig struct {
	Agent   AgentConfig   `yaml:"agent"`
	Site    video.Site    `yaml:"site"`
	Scanner ScannerConfig `yaml:"scanner"`
	Session SessionConfig `yaml:"session"`
	Loader  LoaderConfig  `yaml:"loader"`
	Export  struct {
		Dir     string        `yaml:"dir"`
		Options video.Options `yaml:"options"`
	} `yaml:"export"`
	Storage struct {
		DSN string `yaml:"dsn"`
	} `yaml:"storage"`
	Logging logger.Config `yaml:"logging"`
}

// Default returns the configuration used when no file is present. Values set
// in a file override these.
func Default() *FileConfig {
	session := control.DefaultConfig()
	load := loader.DefaultConfig()

	cfg := &FileConfig{
		Agent: AgentConfig{
			Addr:         "127.0.0.1:8765",
			URL:          "http://127.0.0.1:8765",
			StartupDelay: time.Second,
			Timeout:      2 * time.Minute,
		},
		Site: session.Site,
		Session: SessionConfig{
			GraceDelay:  session.GraceDelay,
			RetryDelay:  session.RetryDelay,
			PreviewSize: session.PreviewSize,
		},
		Loader: LoaderConfig{
			MaxScrolls:  load.MaxScrolls,
			SettleDelay: load.SettleDelay,
		},
	}
	cfg.Export.Dir = "."
	cfg.Export.Options = video.DefaultOptions()
	if dir, err := DefaultDir(); err == nil {
		cfg.Storage.DSN = filepath.Join(dir, "ytexport.db")
	}
	cfg.Logging.SetDefaults()
	return cfg
}

// DefaultDir returns ~/.ytexport.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".ytexport"), nil
}

// LoadConfigFile loads configuration from path, or from
// ~/.ytexport/config.yaml when path is empty. A missing default file is not an
// error and yields Default(); a missing explicit path is.
func LoadConfigFile(path string) (*FileConfig, error) {
	explicit := path != ""
	if !explicit {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "config.yaml")
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the values that cannot be defaulted.
func (c *FileConfig) Validate() error {
	if err := c.Site.Validate(); err != nil {
		return fmt.Errorf("site: %w", err)
	}
	if c.Loader.MaxScrolls < 0 {
		return fmt.Errorf("loader.max_scrolls must not be negative")
	}
	for _, g := range c.Scanner.Groups {
		if strings.TrimSpace(g) == "" {
			return fmt.Errorf("scanner.groups must not contain empty selectors")
		}
	}
	if c.Session.PreviewSize <= 0 {
		return fmt.Errorf("session.preview_size must be positive")
	}
	return nil
}

// ControlConfig returns the control session configuration.
func (c *FileConfig) ControlConfig() *control.Config {
	return &control.Config{
		Site:        c.Site,
		GraceDelay:  c.Session.GraceDelay,
		RetryDelay:  c.Session.RetryDelay,
		PreviewSize: c.Session.PreviewSize,
	}
}

// NewScanner builds the scanner for the configured site and card groups.
func (c *FileConfig) NewScanner(logger *zap.Logger) (*scanner.Scanner, error) {
	ext, err := extractor.New(c.Site)
	if err != nil {
		return nil, err
	}
	s := scanner.New(ext, logger)
	if len(c.Scanner.Groups) > 0 {
		s = s.WithGroups(c.Scanner.Groups)
	}
	return s, nil
}

// LoadMoreConfig returns the incremental loader configuration.
func (c *FileConfig) LoadMoreConfig() *loader.Config {
	return &loader.Config{
		MaxScrolls:  c.Loader.MaxScrolls,
		SettleDelay: c.Loader.SettleDelay,
	}
}
