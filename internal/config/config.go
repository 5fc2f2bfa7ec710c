package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sigreer/drives/internal/collector"
	"github.com/sigreer/drives/internal/mounts"
)

// DefaultDatabase is where snapshots are stored unless configured otherwise
const DefaultDatabase = "/var/lib/drives/snapshots.db"

type Config struct {
	Paths Paths `yaml:"paths"`
	// GPT toggles the partition-table UUID overlay; nil means enabled.
	GPT      *bool  `yaml:"gpt,omitempty"`
	Database string `yaml:"database,omitempty"`
	Log      Log    `yaml:"log"`
}

type Paths struct {
	DeviceRoot string `yaml:"device_root,omitempty"`
	MountTable string `yaml:"mount_table,omitempty"`
	DevDir     string `yaml:"dev_dir,omitempty"`
}

type Log struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// defaultConfig provides the standard Linux locations
var defaultConfig = Config{
	Paths: Paths{
		DeviceRoot: collector.DefaultDeviceRoot,
		MountTable: mounts.DefaultPath,
		DevDir:     collector.DefaultDevDir,
	},
	Database: DefaultDatabase,
	Log: Log{
		Level:  "info",
		Format: "text",
	},
}

// candidates are searched in order when no explicit path is given
func candidates() []string {
	return []string{
		"/etc/drives/config.yaml",
		filepath.Join(os.Getenv("HOME"), ".config/drives/config.yaml"),
		"config.yaml",
	}
}

// Load reads the YAML config at path, or the first existing default
// location, then applies DRIVES_* environment overrides (a .env file in the
// working directory is honoured) and fills in defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		for _, c := range candidates() {
			if _, err := os.Stat(c); err == nil {
				path = c
				break
			}
		}
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	// a missing .env is the normal case
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setString("DRIVES_DEVICE_ROOT", &c.Paths.DeviceRoot)
	setString("DRIVES_MOUNT_TABLE", &c.Paths.MountTable)
	setString("DRIVES_DEV_DIR", &c.Paths.DevDir)
	setString("DRIVES_DATABASE", &c.Database)
	setString("DRIVES_LOG_LEVEL", &c.Log.Level)
	setString("DRIVES_LOG_FORMAT", &c.Log.Format)

	if v, ok := os.LookupEnv("DRIVES_GPT"); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DRIVES_GPT value %q: %w", v, err)
		}
		c.GPT = &enabled
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Paths.DeviceRoot == "" {
		c.Paths.DeviceRoot = defaultConfig.Paths.DeviceRoot
	}
	if c.Paths.MountTable == "" {
		c.Paths.MountTable = defaultConfig.Paths.MountTable
	}
	if c.Paths.DevDir == "" {
		c.Paths.DevDir = defaultConfig.Paths.DevDir
	}
	if c.Database == "" {
		c.Database = defaultConfig.Database
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultConfig.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaultConfig.Log.Format
	}
}

// GPTEnabled reports whether the partition-table overlay should run.
func (c *Config) GPTEnabled() bool {
	return c.GPT == nil || *c.GPT
}

// Options converts the config into discovery options.
func (c *Config) Options() collector.Options {
	return collector.Options{
		DeviceRoot: c.Paths.DeviceRoot,
		MountTable: c.Paths.MountTable,
		DevDir:     c.Paths.DevDir,
		GPT:        c.GPTEnabled(),
	}
}
