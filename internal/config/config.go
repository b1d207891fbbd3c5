package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

const (
	// Environment variables take the shape AYIAH__SECTION__KEY.
	envPrefix = "AYIAH_"

	envDataDir    = "AYIAH_DATA_DIR"
	envConfigPath = "AYIAH_CONFIG_PATH"

	configFileName = "ayiah.toml"
)

// AppConfig holds all application configuration
type AppConfig struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scraper   ScraperConfig   `mapstructure:"scraper"`
	Scrape    ScrapeConfig    `mapstructure:"scrape"`
	Organizer OrganizerConfig `mapstructure:"organizer"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds the HTTP bind address
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig selects and parameterizes the storage engine
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // "sqlite" or "postgres"

	// SQLite
	Path string `mapstructure:"path"`

	// PostgreSQL
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

// ScraperConfig holds provider credentials and shared limits
type ScraperConfig struct {
	TmdbAPIKey      string `mapstructure:"tmdb_api_key"`
	TvdbAPIKey      string `mapstructure:"tvdb_api_key"`
	MaxConcurrent   int    `mapstructure:"max_concurrent"`
	MaxRequests     int    `mapstructure:"max_requests"`
	WindowSeconds   int    `mapstructure:"window_seconds"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds"`
	CacheCapacity   int    `mapstructure:"cache_capacity"`
}

// ScrapeConfig holds the user-tunable scraping preferences. It crosses
// the API boundary, so it carries JSON tags as well.
type ScrapeConfig struct {
	DefaultProvider       string   `mapstructure:"default_provider" json:"default_provider"`
	FallbackProviders     []string `mapstructure:"fallback_providers" json:"fallback_providers"`
	DefaultOrganizeMethod string   `mapstructure:"default_organize_method" json:"default_organize_method"`
}

// Providers returns the configured preference order: default first,
// then fallbacks, duplicates removed.
func (c ScrapeConfig) Providers() []string {
	seen := make(map[string]bool)
	ordered := make([]string, 0, len(c.FallbackProviders)+1)
	for _, name := range append([]string{c.DefaultProvider}, c.FallbackProviders...) {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		ordered = append(ordered, name)
	}
	return ordered
}

// OrganizerConfig holds file placement settings. An empty target
// directory disables organizing.
type OrganizerConfig struct {
	TargetDir    string `mapstructure:"target_dir"`
	RetryCount   int    `mapstructure:"retry_count"`
	DryRun       bool   `mapstructure:"dry_run"`
	SkipExisting bool   `mapstructure:"skip_existing"`
}

// IngestConfig holds orchestrator tunables
type IngestConfig struct {
	MaxConcurrentTasks int `mapstructure:"max_concurrent_tasks"`
	ItemDelayMs        int `mapstructure:"item_delay_ms"`
}

// AuthConfig is recognized for compatibility but not consumed by the
// core pipeline.
type AuthConfig struct {
	JWTSecret      string `mapstructure:"jwt_secret"`
	JWTExpiryHours int    `mapstructure:"jwt_expiry_hours"`
}

// LoggingConfig holds log level and optional file sink
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	FilePath string `mapstructure:"file_path"`
}

// DataDir returns the data root: AYIAH_DATA_DIR when set, otherwise
// the platform user-config directory.
func DataDir() string {
	if dir := os.Getenv(envDataDir); dir != "" {
		return dir
	}
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "ayiah")
}

// DefaultConfigPath returns the config file location:
// AYIAH_CONFIG_PATH when set, otherwise config/ayiah.toml under the
// data root.
func DefaultConfigPath() string {
	if path := os.Getenv(envConfigPath); path != "" {
		return path
	}
	return filepath.Join(DataDir(), "config", configFileName)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 7590,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   filepath.Join(DataDir(), "ayiah.db"),
		},
		Scraper: ScraperConfig{
			MaxConcurrent:   5,
			MaxRequests:     40,
			WindowSeconds:   10,
			CacheTTLSeconds: 3600,
			CacheCapacity:   10000,
		},
		Scrape: ScrapeConfig{
			DefaultProvider:       "tmdb",
			FallbackProviders:     []string{},
			DefaultOrganizeMethod: "hard_link",
		},
		Organizer: OrganizerConfig{
			RetryCount: 3,
		},
		Ingest: IngestConfig{
			MaxConcurrentTasks: 2 * runtime.NumCPU(),
			ItemDelayMs:        250,
		},
		Auth: AuthConfig{
			JWTSecret:      "ayiah",
			JWTExpiryHours: 24,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// settings flattens a config into the viper key space. The map is the
// single source of key names for defaults and persistence.
func settings(cfg *AppConfig) map[string]interface{} {
	return map[string]interface{}{
		"server.host": cfg.Server.Host,
		"server.port": cfg.Server.Port,

		"database.driver":   cfg.Database.Driver,
		"database.path":     cfg.Database.Path,
		"database.host":     cfg.Database.Host,
		"database.port":     cfg.Database.Port,
		"database.user":     cfg.Database.User,
		"database.password": cfg.Database.Password,
		"database.name":     cfg.Database.Name,

		"scraper.tmdb_api_key":      cfg.Scraper.TmdbAPIKey,
		"scraper.tvdb_api_key":      cfg.Scraper.TvdbAPIKey,
		"scraper.max_concurrent":    cfg.Scraper.MaxConcurrent,
		"scraper.max_requests":      cfg.Scraper.MaxRequests,
		"scraper.window_seconds":    cfg.Scraper.WindowSeconds,
		"scraper.cache_ttl_seconds": cfg.Scraper.CacheTTLSeconds,
		"scraper.cache_capacity":    cfg.Scraper.CacheCapacity,

		"scrape.default_provider":        cfg.Scrape.DefaultProvider,
		"scrape.fallback_providers":      cfg.Scrape.FallbackProviders,
		"scrape.default_organize_method": cfg.Scrape.DefaultOrganizeMethod,

		"organizer.target_dir":    cfg.Organizer.TargetDir,
		"organizer.retry_count":   cfg.Organizer.RetryCount,
		"organizer.dry_run":       cfg.Organizer.DryRun,
		"organizer.skip_existing": cfg.Organizer.SkipExisting,

		"ingest.max_concurrent_tasks": cfg.Ingest.MaxConcurrentTasks,
		"ingest.item_delay_ms":        cfg.Ingest.ItemDelayMs,

		"auth.jwt_secret":       cfg.Auth.JWTSecret,
		"auth.jwt_expiry_hours": cfg.Auth.JWTExpiryHours,

		"logging.level":     cfg.Logging.Level,
		"logging.file_path": cfg.Logging.FilePath,
	}
}

// Manager holds the live configuration behind a read-write lock
type Manager struct {
	mu     sync.RWMutex
	config AppConfig
	path   string
}

// NewManager loads the configuration from path, writing a default file
// first if none exists. An empty path falls back to DefaultConfigPath.
func NewManager(path string) (*Manager, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	m := &Manager{path: path}
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	m.config = *cfg
	return m, nil
}

// load reads the file and applies environment overrides
func load(path string) (*AppConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := write(DefaultConfig(), path); err != nil {
			return nil, fmt.Errorf("failed to create default configuration: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	for key, value := range settings(DefaultConfig()) {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	return cfg, nil
}

// write persists the configuration as TOML, creating parent
// directories as needed. Values come from the given config only, never
// from the environment.
func write(cfg *AppConfig, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create configuration directory: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigType("toml")
	for key, value := range settings(cfg) {
		v.Set(key, value)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return nil
}

// Get returns a copy of the current configuration
func (m *Manager) Get() AppConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Update applies fn to the configuration under the write lock
func (m *Manager) Update(fn func(*AppConfig)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.config)
}

// Save persists the current configuration to the config file
func (m *Manager) Save() error {
	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()
	return write(&cfg, m.path)
}

// Reload re-reads the config file and swaps the configuration
func (m *Manager) Reload() error {
	cfg, err := load(m.path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.config = *cfg
	m.mu.Unlock()
	return nil
}

// Path returns the config file location
func (m *Manager) Path() string {
	return m.path
}

// Addr returns the configured HTTP bind address
func (m *Manager) Addr() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return net.JoinHostPort(m.config.Server.Host, strconv.Itoa(m.config.Server.Port))
}
