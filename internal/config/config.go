package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// AppConfig captures configuration for the skill server, the search service client, and local paths.
type AppConfig struct {
	Server      ServerConfig      `toml:"server" yaml:"server"`
	Search      SearchConfig      `toml:"search" yaml:"search"`
	Datasources DatasourcesConfig `toml:"datasources" yaml:"datasources"`
	Paths       PathsConfig       `toml:"paths" yaml:"paths"`
	Skill       SkillConfig       `toml:"skill" yaml:"skill"`
	Logging     LoggingConfig     `toml:"logging" yaml:"logging"`
	Metrics     MetricsConfig     `toml:"metrics" yaml:"metrics"`
}

// ServerConfig controls network settings of the skill endpoint.
type ServerConfig struct {
	Listen string `toml:"listen" yaml:"listen"`
}

// SearchConfig locates the managed search service and holds its keys.
type SearchConfig struct {
	Name                 string        `toml:"name" yaml:"name"`
	URL                  string        `toml:"url" yaml:"url"`
	APIVersion           string        `toml:"api_version" yaml:"api_version"`
	AdminKey             string        `toml:"admin_key" yaml:"admin_key"`
	QueryKey             string        `toml:"query_key" yaml:"query_key"`
	CognitiveServicesKey string        `toml:"cognitive_services_key" yaml:"cognitive_services_key"`
	Timeout              time.Duration `toml:"timeout" yaml:"timeout"`
}

// DatasourcesConfig holds the connection strings embedded into datasource definitions.
type DatasourcesConfig struct {
	StorageConnectionString string `toml:"storage_connection_string" yaml:"storage_connection_string"`
	CosmosConnectionString  string `toml:"cosmos_connection_string" yaml:"cosmos_connection_string"`
}

// PathsConfig configures the on-disk layout.
type PathsConfig struct {
	OutputDir string `toml:"output_dir" yaml:"output_dir"`
	SchemaDir string `toml:"schema_dir" yaml:"schema_dir"`
}

// SkillConfig points the CLI at a running top-words skill.
type SkillConfig struct {
	LocalURL  string `toml:"local_url" yaml:"local_url"`
	RemoteURL string `toml:"remote_url" yaml:"remote_url"`
}

// LoggingConfig toggles observability around requests.
type LoggingConfig struct {
	Level       string `toml:"level" yaml:"level"`
	RequestLogs *bool  `toml:"request_logs" yaml:"request_logs"`
}

// MetricsConfig enables counters/telemetry endpoints.
type MetricsConfig struct {
	Enabled *bool `toml:"enabled" yaml:"enabled"`
}

// DefaultAPIVersion is the REST API version every request is pinned to.
const DefaultAPIVersion = "2020-06-30"

// DefaultConfig returns the baseline configuration used when no file is supplied.
func DefaultConfig() AppConfig {
	return AppConfig{
		Server: ServerConfig{Listen: ":7071"},
		Search: SearchConfig{
			APIVersion: DefaultAPIVersion,
			Timeout:    30 * time.Second,
		},
		Paths: PathsConfig{OutputDir: "tmp", SchemaDir: "schemas"},
		Skill: SkillConfig{LocalURL: "http://localhost:7071/api/topwords"},
		Logging: LoggingConfig{
			Level:       "info",
			RequestLogs: boolPtr(true),
		},
		Metrics: MetricsConfig{Enabled: boolPtr(true)},
	}
}

// Load reads the provided config path, merging it onto the defaults.
func Load(path string) (AppConfig, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	var fileCfg AppConfig
	switch ext {
	case ".toml":
		if err := toml.Unmarshal(content, &fileCfg); err != nil {
			return AppConfig{}, fmt.Errorf("parse toml: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &fileCfg); err != nil {
			return AppConfig{}, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		return AppConfig{}, errors.New("config file must be .toml, .yaml, or .yml")
	}

	merged := mergeConfig(cfg, fileCfg)
	return merged, nil
}

// ApplyEnv overlays the process environment onto cfg.
func (cfg AppConfig) ApplyEnv() AppConfig {
	return cfg.applyEnv(os.LookupEnv)
}

func (cfg AppConfig) applyEnv(lookup func(string) (string, bool)) AppConfig {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	set(&cfg.Search.Name, "AZURE_SEARCH_NAME")
	set(&cfg.Search.URL, "AZURE_SEARCH_URL")
	set(&cfg.Search.AdminKey, "AZURE_SEARCH_ADMIN_KEY")
	set(&cfg.Search.QueryKey, "AZURE_SEARCH_QUERY_KEY")
	set(&cfg.Search.CognitiveServicesKey, "AZURE_SEARCH_COGSVCS_ALLIN1_KEY")
	set(&cfg.Datasources.StorageConnectionString, "AZURE_STORAGE_CONNECTION_STRING")
	set(&cfg.Datasources.CosmosConnectionString, "AZURE_COSMOSDB_CONNECTION_STRING")
	set(&cfg.Skill.RemoteURL, "SEARCHKIT_SKILL_URL")
	set(&cfg.Paths.OutputDir, "SEARCHKIT_OUTPUT_DIR")
	set(&cfg.Server.Listen, "SEARCHKIT_LISTEN")
	return cfg
}

// Validate reports settings required before talking to the search service.
func (cfg AppConfig) Validate() error {
	var missing []string
	if cfg.Search.URL == "" {
		missing = append(missing, "search.url (AZURE_SEARCH_URL)")
	}
	if cfg.Search.AdminKey == "" {
		missing = append(missing, "search.admin_key (AZURE_SEARCH_ADMIN_KEY)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// RequestLogsEnabled treats an unset toggle as enabled.
func (cfg AppConfig) RequestLogsEnabled() bool {
	return cfg.Logging.RequestLogs == nil || *cfg.Logging.RequestLogs
}

// MetricsEnabled reports whether the metrics endpoint should be mounted.
func (cfg AppConfig) MetricsEnabled() bool {
	return cfg.Metrics.Enabled != nil && *cfg.Metrics.Enabled
}

func mergeConfig(base, override AppConfig) AppConfig {
	if override.Server.Listen != "" {
		base.Server.Listen = override.Server.Listen
	}

	if override.Search.Name != "" {
		base.Search.Name = override.Search.Name
	}
	if override.Search.URL != "" {
		base.Search.URL = override.Search.URL
	}
	if override.Search.APIVersion != "" {
		base.Search.APIVersion = override.Search.APIVersion
	}
	if override.Search.AdminKey != "" {
		base.Search.AdminKey = override.Search.AdminKey
	}
	if override.Search.QueryKey != "" {
		base.Search.QueryKey = override.Search.QueryKey
	}
	if override.Search.CognitiveServicesKey != "" {
		base.Search.CognitiveServicesKey = override.Search.CognitiveServicesKey
	}
	if override.Search.Timeout != 0 {
		base.Search.Timeout = override.Search.Timeout
	}

	if override.Datasources.StorageConnectionString != "" {
		base.Datasources.StorageConnectionString = override.Datasources.StorageConnectionString
	}
	if override.Datasources.CosmosConnectionString != "" {
		base.Datasources.CosmosConnectionString = override.Datasources.CosmosConnectionString
	}

	if override.Paths.OutputDir != "" {
		base.Paths.OutputDir = override.Paths.OutputDir
	}
	if override.Paths.SchemaDir != "" {
		base.Paths.SchemaDir = override.Paths.SchemaDir
	}

	if override.Skill.LocalURL != "" {
		base.Skill.LocalURL = override.Skill.LocalURL
	}
	if override.Skill.RemoteURL != "" {
		base.Skill.RemoteURL = override.Skill.RemoteURL
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.RequestLogs != nil {
		base.Logging.RequestLogs = override.Logging.RequestLogs
	}

	if override.Metrics.Enabled != nil {
		base.Metrics.Enabled = override.Metrics.Enabled
	}

	return base
}

func boolPtr(v bool) *bool {
	return &v
}
