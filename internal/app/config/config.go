package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Peer   PeerConfig   `yaml:"peer"`
	Probes ProbesConfig `yaml:"probes"`
	Export ExportConfig `yaml:"export"`
	Ops    OpsConfig    `yaml:"ops"`
}

type PeerConfig struct {
	Endpoint       string        `yaml:"endpoint"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type ProbesConfig struct {
	CPUInterval  time.Duration `yaml:"cpu_interval"`
	DiskInterval time.Duration `yaml:"disk_interval"`
	DiskMount    string        `yaml:"disk_mount"`
	WarmupDelay  time.Duration `yaml:"warmup_delay"`
}

type ExportConfig struct {
	Interval   time.Duration `yaml:"interval"`
	StatsEvery int           `yaml:"stats_every"`
}

type OpsConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads the YAML config at path, layers environment overrides on top
// (a .env file in the working directory is honored), applies defaults, and
// validates the result.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv lets deployment environments override the file without editing it.
func (c *Config) applyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("TLINK_PEER_ENDPOINT"); v != "" {
		c.Peer.Endpoint = v
	}
	if v := os.Getenv("TLINK_DISK_MOUNT"); v != "" {
		c.Probes.DiskMount = v
	}
}

func (c *Config) applyDefaults() {
	if c.Peer.RequestTimeout == 0 {
		c.Peer.RequestTimeout = 2 * time.Second
	}
	if c.Probes.CPUInterval == 0 {
		c.Probes.CPUInterval = 50 * time.Millisecond
	}
	if c.Probes.DiskInterval == 0 {
		c.Probes.DiskInterval = 75 * time.Millisecond
	}
	if c.Probes.DiskMount == "" {
		c.Probes.DiskMount = "/"
	}
	if c.Probes.WarmupDelay == 0 {
		c.Probes.WarmupDelay = time.Second
	}
	if c.Export.Interval == 0 {
		c.Export.Interval = 100 * time.Millisecond
	}
	if c.Export.StatsEvery == 0 {
		c.Export.StatsEvery = 50
	}
	if c.Ops.Addr == "" {
		c.Ops.Addr = ":9100"
	}
}

func (c *Config) validate() error {
	if c.Peer.Endpoint == "" {
		return fmt.Errorf("peer.endpoint is required")
	}
	if c.Peer.RequestTimeout < 0 {
		return fmt.Errorf("peer.request_timeout must be positive")
	}
	if c.Probes.CPUInterval < 0 || c.Probes.DiskInterval < 0 {
		return fmt.Errorf("probe intervals must be positive")
	}
	if c.Export.Interval < 0 {
		return fmt.Errorf("export.interval must be positive")
	}
	return nil
}
