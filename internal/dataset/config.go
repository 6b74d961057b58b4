// Package dataset fetches the bulk JSON snapshots the record store is
// populated from: a small preview file and a full file per entity, served
// over HTTP by the upstream export pipeline.
package dataset

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vajra-io/vajra/internal/config"
)

// Config holds the per-entity snapshot URLs loaded from .vajra.yaml.
type Config struct {
	// BaseURL prefixes every relative snapshot path.
	BaseURL string `yaml:"base_url"` //nolint:tagliatelle // snake_case is intentional for YAML config files

	// Preview and Full map entity names (products, orders, order_items,
	// returns, customers) to snapshot paths or absolute URLs.
	Preview map[string]string `yaml:"preview"`
	Full    map[string]string `yaml:"full"`
}

// DefaultConfigPath is the default location for the dataset configuration file.
const DefaultConfigPath = ".vajra.yaml"

// ConfigPathEnvVar is the environment variable name for a custom config path.
const ConfigPathEnvVar = "VAJRA_CONFIG_PATH"

// Entities lists the collections a snapshot set covers, in sync order.
var Entities = []string{"products", "orders", "order_items", "returns", "customers"}

// LoadConfig loads dataset configuration from a YAML file at the given path.
//
// Behavior:
//   - Returns defaults (not error) if the file doesn't exist
//   - Returns defaults + logs a warning if the YAML is invalid
//   - Returns the populated config on success
//
// The graceful degradation means the service can start with the conventional
// snapshot layout even without a config file present.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is from trusted config source
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("Dataset config file not found, using default snapshot layout",
				slog.String("path", path))

			return cfg, nil
		}

		slog.Warn("Failed to read dataset config file, using default snapshot layout",
			slog.String("path", path),
			slog.String("error", err.Error()))

		return cfg, nil
	}

	if len(data) == 0 {
		return cfg, nil
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		slog.Warn("Failed to parse dataset config file, using default snapshot layout",
			slog.String("path", path),
			slog.String("error", err.Error()))

		return defaultConfig(), nil
	}

	if cfg.Preview == nil {
		cfg.Preview = defaultPaths("_small")
	}

	if cfg.Full == nil {
		cfg.Full = defaultPaths("")
	}

	return cfg, nil
}

// LoadConfigFromEnv loads config from the path in VAJRA_CONFIG_PATH, falling
// back to ".vajra.yaml" in the current directory.
func LoadConfigFromEnv() (*Config, error) {
	path := config.GetEnvStr(ConfigPathEnvVar, DefaultConfigPath)

	return LoadConfig(path)
}

// PreviewURL resolves the preview snapshot URL for an entity.
func (c *Config) PreviewURL(entity string) string {
	return c.resolve(c.Preview[entity])
}

// FullURL resolves the full snapshot URL for an entity.
func (c *Config) FullURL(entity string) string {
	return c.resolve(c.Full[entity])
}

func (c *Config) resolve(path string) string {
	if path == "" {
		return ""
	}

	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}

	return strings.TrimSuffix(c.BaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

func defaultConfig() *Config {
	return &Config{
		BaseURL: config.GetEnvStr("VAJRA_DATASET_BASE_URL", "http://localhost:9000/datasets"),
		Preview: defaultPaths("_small"),
		Full:    defaultPaths(""),
	}
}

func defaultPaths(suffix string) map[string]string {
	paths := make(map[string]string, len(Entities))
	for _, entity := range Entities {
		paths[entity] = entity + suffix + ".json"
	}

	return paths
}
