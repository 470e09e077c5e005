package infra

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"shopwarden/internal/domain"

	"gopkg.in/yaml.v3"
)

// Config holds every application setting. Sensitive and deploy-specific
// values can be overridden through environment variables after load.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Gateway struct {
		// URL of the world server's shop gateway. Empty means embedded
		// mode: the registry is seeded from the shops fixture instead.
		URL   string `yaml:"url"`
		Token string `yaml:"token"`
	} `yaml:"gateway"`

	Warden struct {
		TickIntervalSec int    `yaml:"tick_interval_sec"`
		InboxSize       int    `yaml:"inbox_size"`
		CatalogPath     string `yaml:"catalog_path"`
		ShopsFixture    string `yaml:"shops_fixture"`
	} `yaml:"warden"`

	Admin struct {
		Addr string `yaml:"addr"`
	} `yaml:"admin"`

	Storage struct {
		// Path overrides the default DB location under the user config dir.
		Path string `yaml:"path"`
	} `yaml:"storage"`

	Icons struct {
		SyncEnabled bool   `yaml:"sync_enabled"`
		CDNURL      string `yaml:"cdn_url"`
	} `yaml:"icons"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the YAML configuration file, applies
// environment overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, path)
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.Gateway.URL != "" && !strings.HasPrefix(c.Gateway.URL, "ws://") && !strings.HasPrefix(c.Gateway.URL, "wss://") {
		return fmt.Errorf("invalid gateway URL: %s", c.Gateway.URL)
	}

	if c.Warden.TickIntervalSec <= 0 {
		return fmt.Errorf("tick interval must be positive")
	}
	if c.Warden.CatalogPath == "" {
		return fmt.Errorf("catalog path is required")
	}

	if c.Admin.Addr == "" {
		return fmt.Errorf("admin listen address is required")
	}

	return nil
}

// overrideWithEnv overwrites settings from environment variables when set.
func overrideWithEnv(cfg *Config) {
	if url := os.Getenv("SHOPWARDEN_GATEWAY_URL"); url != "" {
		cfg.Gateway.URL = url
	}
	if token := os.Getenv("SHOPWARDEN_WORLD_TOKEN"); token != "" {
		cfg.Gateway.Token = token
	}
	if addr := os.Getenv("SHOPWARDEN_ADMIN_ADDR"); addr != "" {
		cfg.Admin.Addr = addr
	}
	if path := os.Getenv("SHOPWARDEN_DB_PATH"); path != "" {
		cfg.Storage.Path = path
	}
}
