// Package config resolves the runtime configuration for a command
// invocation. Three layers, later wins: built-in defaults, an optional
// YAML config file, then RECO_-prefixed environment variables
// (RECO_DATA_DIR, RECO_LOGGING_LEVEL, ...).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"reco-catalog/internal/logging"
)

// PathEnvVar overrides the config file location.
const PathEnvVar = "RECO_CONFIG"

// defaultConfigPaths are searched in order when PathEnvVar is unset.
var defaultConfigPaths = []string{
	"reco-catalog.yaml",
	"reco-catalog.yml",
}

// Config is the full resolved configuration.
type Config struct {
	Data    DataConfig     `koanf:"data"`
	Logging logging.Config `koanf:"logging"`
}

// DataConfig locates the three catalog files and controls seeding.
type DataConfig struct {
	// Dir is the directory holding the catalog files. Default ".",
	// matching the historical layout where the files sit next to the
	// binary.
	Dir string `koanf:"dir"`

	ProductsFile string `koanf:"products_file"`
	UsersFile    string `koanf:"users_file"`
	ReviewsFile  string `koanf:"reviews_file"`

	// SeedOnEmpty writes the default dataset when all three collections
	// load empty. Disable for a bare store.
	SeedOnEmpty bool `koanf:"seed_on_empty"`
}

// ProductsPath returns the full path of the products file.
func (d DataConfig) ProductsPath() string { return filepath.Join(d.Dir, d.ProductsFile) }

// UsersPath returns the full path of the users file.
func (d DataConfig) UsersPath() string { return filepath.Join(d.Dir, d.UsersFile) }

// ReviewsPath returns the full path of the reviews file.
func (d DataConfig) ReviewsPath() string { return filepath.Join(d.Dir, d.ReviewsFile) }

func defaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Dir:          ".",
			ProductsFile: "products.json",
			UsersFile:    "users.json",
			ReviewsFile:  "reviews.json",
			SeedOnEmpty:  true,
		},
		Logging: logging.Config{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load resolves the configuration: defaults, then the config file if one
// exists, then environment variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// RECO_DATA_PRODUCTS_FILE -> data.products_file
	envProvider := env.Provider("RECO_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "RECO_"))
		return strings.Replace(key, "_", ".", 1)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations the gateway cannot work with.
func (c *Config) Validate() error {
	if c.Data.Dir == "" {
		return fmt.Errorf("data.dir must not be empty")
	}
	for name, v := range map[string]string{
		"data.products_file": c.Data.ProductsFile,
		"data.users_file":    c.Data.UsersFile,
		"data.reviews_file":  c.Data.ReviewsFile,
	} {
		if v == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
	}
	return nil
}

func findConfigFile() string {
	if envPath := os.Getenv(PathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range defaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
