package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Environment variables recognized at startup. The integration token is
// env-only so it never lands in the config file; the identifiers may live
// in the file and be overridden from the environment.
const (
	EnvToken          = "WORKLOG_TOKEN"
	EnvTemplatePageID = "WORKLOG_TEMPLATE_PAGE_ID"
	EnvDatabaseID     = "WORKLOG_DATABASE_ID"
	EnvArchivePageID  = "WORKLOG_ARCHIVE_PAGE_ID"
)

// Config represents the main configuration for worklog.
type Config struct {
	LogDir   string         `toml:"log_dir"`
	Notion   NotionConfig   `toml:"notion"`
	API      APIConfig      `toml:"api"`
	Database DatabaseConfig `toml:"database"`
}

// NotionConfig identifies the remote objects the tool operates on.
type NotionConfig struct {
	TemplatePageID string `toml:"template_page_id"`
	DatabaseID     string `toml:"database_id"`
	ArchivePageID  string `toml:"archive_page_id"`

	// Database property names for the entry title and date.
	TitleProperty string `toml:"title_property"`
	DateProperty  string `toml:"date_property"`
}

// APIConfig tunes the remote client.
type APIConfig struct {
	BaseURL         string `toml:"base_url,omitempty"`
	PageSize        int    `toml:"page_size"`
	MutationDelayMS int    `toml:"mutation_delay_ms"`
	RetryDelayMS    int    `toml:"retry_delay_ms"`
	MaxRetries      int    `toml:"max_retries"`
}

// DatabaseConfig represents configuration for the run-history database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// NewConfig creates a Config with defaults rooted at baseDir.
func NewConfig(baseDir string) *Config {
	return &Config{
		LogDir: filepath.Join(baseDir, "log"),
		Notion: NotionConfig{
			TitleProperty: "Name",
			DateProperty:  "Date",
		},
		API: APIConfig{
			PageSize:        100,
			MutationDelayMS: 350,
			RetryDelayMS:    1000,
			MaxRetries:      3,
		},
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "data"),
		},
	}
}

// ApplyEnv overrides the remote identifiers from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvTemplatePageID); v != "" {
		c.Notion.TemplatePageID = v
	}
	if v := os.Getenv(EnvDatabaseID); v != "" {
		c.Notion.DatabaseID = v
	}
	if v := os.Getenv(EnvArchivePageID); v != "" {
		c.Notion.ArchivePageID = v
	}
}

// Validate checks that everything needed to reach the remote service is
// present. A missing value is a fatal startup error, so the message names
// every gap at once.
func (c *Config) Validate(token string) error {
	var missing []string
	if token == "" {
		missing = append(missing, EnvToken)
	}
	if c.Notion.TemplatePageID == "" {
		missing = append(missing, "notion.template_page_id ("+EnvTemplatePageID+")")
	}
	if c.Notion.DatabaseID == "" {
		missing = append(missing, "notion.database_id ("+EnvDatabaseID+")")
	}
	if c.Notion.ArchivePageID == "" {
		missing = append(missing, "notion.archive_page_id ("+EnvArchivePageID+")")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
