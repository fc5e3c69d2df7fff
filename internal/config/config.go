package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverMemory    = "memory"
	DriverSQLite    = "sqlite"
	DriverPostgres  = "postgres"
	DriverFirestore = "firestore"
)

// FirestoreMaxUploadBytes caps attachments stored in Firestore. A document
// holds at most 1 MiB and the attachment is kept base64 encoded inside it.
const FirestoreMaxUploadBytes = 700 << 10

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// Transport modes.
const (
	ModeHTTP  = "http"
	ModeStdio = "stdio"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Log       LogConfig       `yaml:"log"`
	Auth      AuthConfig      `yaml:"auth"`
	CORS      CORSConfig      `yaml:"cors"`
	Upload    UploadConfig    `yaml:"upload"`
	Integrity IntegrityConfig `yaml:"integrity"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// Mode is "http" (REST API plus MCP at /mcp) or "stdio" (MCP only).
	Mode string `yaml:"mode"`
}

type StoreConfig struct {
	Driver    string          `yaml:"driver"`
	SQLite    SQLiteConfig    `yaml:"sqlite"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Firestore FirestoreConfig `yaml:"firestore"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type PostgresConfig struct {
	URL      string `yaml:"url"`
	Table    string `yaml:"table"`
	MaxConns int32  `yaml:"max_conns"`
}

type FirestoreConfig struct {
	ProjectID string `yaml:"project_id"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// Path, when set, receives logs instead of stderr.
	Path string `yaml:"path"`
}

// APIKey is a named bearer token.
type APIKey struct {
	Name string `yaml:"name"`
	Key  string `yaml:"key"`
}

type AuthConfig struct {
	APIKeys []APIKey `yaml:"api_keys"`
}

// Enabled reports whether requests must carry a bearer token.
func (a AuthConfig) Enabled() bool {
	return len(a.APIKeys) > 0
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type UploadConfig struct {
	MaxBytes int64 `yaml:"max_bytes"`
}

type IntegrityConfig struct {
	CompensateOnLinkFailure bool `yaml:"compensate_on_link_failure"`
	StrictLinking           bool `yaml:"strict_linking"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Mode: ModeHTTP,
		},
		Store: StoreConfig{
			Driver: DriverSQLite,
			SQLite: SQLiteConfig{Path: "officina.db"},
			Postgres: PostgresConfig{
				Table:    "documents",
				MaxConns: 10,
			},
		},
		Log: LogConfig{
			Level: "info",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Upload: UploadConfig{
			MaxBytes: 10 << 20,
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("OFFICINA_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	applyDriverLimits(&cfg)
	return cfg, nil
}

// applyDriverLimits lowers settings the selected store cannot honor.
func applyDriverLimits(cfg *Config) {
	if cfg.Store.Driver == DriverFirestore &&
		(cfg.Upload.MaxBytes <= 0 || cfg.Upload.MaxBytes > FirestoreMaxUploadBytes) {
		cfg.Upload.MaxBytes = FirestoreMaxUploadBytes
	}
}

// Validate checks enumerated settings and driver requirements.
func (c Config) Validate() error {
	switch c.Server.Mode {
	case ModeHTTP, ModeStdio:
	default:
		return fmt.Errorf("invalid server mode %q", c.Server.Mode)
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Store.SQLite.Path == "" {
			return fmt.Errorf("sqlite driver requires store.sqlite.path")
		}
	case DriverPostgres:
		if c.Store.Postgres.URL == "" {
			return fmt.Errorf("postgres driver requires store.postgres.url")
		}
		if c.Store.Postgres.Table != "" && !tableName.MatchString(c.Store.Postgres.Table) {
			return fmt.Errorf("invalid store.postgres.table %q", c.Store.Postgres.Table)
		}
	case DriverFirestore:
		if c.Store.Firestore.ProjectID == "" {
			return fmt.Errorf("firestore driver requires store.firestore.project_id")
		}
	default:
		return fmt.Errorf("invalid store driver %q", c.Store.Driver)
	}

	for _, key := range c.Auth.APIKeys {
		if strings.TrimSpace(key.Key) == "" {
			return fmt.Errorf("api key %q has an empty token", key.Name)
		}
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("OFFICINA_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("OFFICINA_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid OFFICINA_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if mode := os.Getenv("OFFICINA_SERVER_MODE"); mode != "" {
		cfg.Server.Mode = mode
	}

	if driver := os.Getenv("OFFICINA_STORE_DRIVER"); driver != "" {
		cfg.Store.Driver = driver
	}
	if path := os.Getenv("OFFICINA_SQLITE_PATH"); path != "" {
		cfg.Store.SQLite.Path = path
	}
	if url := os.Getenv("OFFICINA_DATABASE_URL"); url != "" {
		cfg.Store.Postgres.URL = url
	}
	if table := os.Getenv("OFFICINA_POSTGRES_TABLE"); table != "" {
		cfg.Store.Postgres.Table = table
	}
	if project := os.Getenv("OFFICINA_FIRESTORE_PROJECT"); project != "" {
		cfg.Store.Firestore.ProjectID = project
	}

	if level := os.Getenv("OFFICINA_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if path := os.Getenv("OFFICINA_LOG_PATH"); path != "" {
		cfg.Log.Path = path
	}

	if keys := os.Getenv("OFFICINA_API_KEYS"); keys != "" {
		cfg.Auth.APIKeys = parseAPIKeys(keys)
	}
	if origins := os.Getenv("OFFICINA_CORS_ORIGINS"); origins != "" {
		cfg.CORS.AllowedOrigins = splitList(origins)
	}

	if maxStr := os.Getenv("OFFICINA_UPLOAD_MAX_BYTES"); maxStr != "" {
		maxBytes, err := strconv.ParseInt(maxStr, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid OFFICINA_UPLOAD_MAX_BYTES: %w", err)
		}
		cfg.Upload.MaxBytes = maxBytes
	}

	if v := os.Getenv("OFFICINA_COMPENSATE_LINK_FAILURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid OFFICINA_COMPENSATE_LINK_FAILURE: %w", err)
		}
		cfg.Integrity.CompensateOnLinkFailure = b
	}
	if v := os.Getenv("OFFICINA_STRICT_LINKING"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid OFFICINA_STRICT_LINKING: %w", err)
		}
		cfg.Integrity.StrictLinking = b
	}
	return nil
}

// parseAPIKeys reads "name:key" pairs separated by commas. A bare key is
// named after its position.
func parseAPIKeys(value string) []APIKey {
	var keys []APIKey
	for i, item := range splitList(value) {
		name, key, ok := strings.Cut(item, ":")
		if !ok {
			name, key = fmt.Sprintf("key%d", i+1), item
		}
		keys = append(keys, APIKey{Name: strings.TrimSpace(name), Key: strings.TrimSpace(key)})
	}
	return keys
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
