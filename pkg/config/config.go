package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	StoreFirestore = "firestore"
	StoreMemory    = "memory"
)

// Config is the application configuration.
type Config struct {
	Server struct {
		Port      string   `yaml:"port"`
		Mode      string   `yaml:"mode"`
		CORSHosts []string `yaml:"cors_hosts"`
	} `yaml:"server"`

	Firebase struct {
		ProjectID       string `yaml:"project_id"`
		CredentialsJSON string `yaml:"credentials_json"`
		StorageBucket   string `yaml:"storage_bucket"`
	} `yaml:"firebase"`

	Store struct {
		Driver string `yaml:"driver"`
	} `yaml:"store"`

	Mail struct {
		ResendKey string `yaml:"resend_key"`
		From      string `yaml:"from"`
		AppURL    string `yaml:"app_url"`
	} `yaml:"mail"`

	Maps struct {
		APIKey       string        `yaml:"api_key"`
		BaseURL      string        `yaml:"base_url"`
		SearchRadius int           `yaml:"search_radius"`
		DailyLimit   int           `yaml:"daily_limit"`
		CacheTTL     time.Duration `yaml:"cache_ttl"`
	} `yaml:"maps"`

	Discovery struct {
		PageSize int `yaml:"page_size"`
	} `yaml:"discovery"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// Load builds the configuration from defaults, an optional YAML file at path,
// an optional .env file and finally the process environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			file, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// It's okay if .env doesn't exist, production sets the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, relying on system environment variables")
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Server.Port = "8080"
	cfg.Server.Mode = "release"
	cfg.Store.Driver = StoreFirestore
	cfg.Mail.From = "onboarding@resend.dev"
	cfg.Maps.BaseURL = "https://maps.googleapis.com/maps/api"
	cfg.Maps.SearchRadius = 10000
	cfg.Maps.DailyLimit = 950
	cfg.Maps.CacheTTL = 24 * time.Hour
	cfg.Discovery.PageSize = 10
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.Mode, "GIN_MODE")
	if v := os.Getenv("CORS_HOSTS"); v != "" {
		cfg.Server.CORSHosts = splitList(v)
	}

	setString(&cfg.Firebase.ProjectID, "FIREBASE_PROJECT_ID")
	setString(&cfg.Firebase.CredentialsJSON, "FIREBASE_CREDENTIALS_JSON")
	setString(&cfg.Firebase.StorageBucket, "FIREBASE_STORAGE_BUCKET")

	setString(&cfg.Store.Driver, "STORE_DRIVER")

	setString(&cfg.Mail.ResendKey, "RESEND_KEY")
	setString(&cfg.Mail.From, "MAIL_FROM")
	setString(&cfg.Mail.AppURL, "APP_URL")

	setString(&cfg.Maps.APIKey, "GOOGLE_MAPS_API_KEY")
	setString(&cfg.Maps.BaseURL, "MAPS_BASE_URL")
	if err := setInt(&cfg.Maps.DailyLimit, "COURTS_DAILY_LIMIT"); err != nil {
		return err
	}
	if v := os.Getenv("COURTS_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid COURTS_CACHE_TTL %q: %w", v, err)
		}
		cfg.Maps.CacheTTL = d
	}

	if err := setInt(&cfg.Discovery.PageSize, "DISCOVERY_PAGE_SIZE"); err != nil {
		return err
	}

	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Logging.Format, "LOG_FORMAT")
	return nil
}

// Validate reports configuration that cannot start the server.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreFirestore, StoreMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Firebase.ProjectID == "" {
		return fmt.Errorf("FIREBASE_PROJECT_ID is required")
	}
	if c.Discovery.PageSize <= 0 {
		return fmt.Errorf("discovery page size must be positive, got %d", c.Discovery.PageSize)
	}
	if c.Maps.DailyLimit <= 0 {
		return fmt.Errorf("courts daily limit must be positive, got %d", c.Maps.DailyLimit)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
