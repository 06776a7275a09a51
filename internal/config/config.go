package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Server struct {
		Host        string   `yaml:"host"`
		Port        int      `yaml:"port"`
		Env         string   `yaml:"env"`
		APIURL      string   `yaml:"api_url"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	JWT struct {
		Secret         string        `yaml:"secret"`
		AccessTTL      time.Duration `yaml:"access_ttl"`
		RefreshTTLDays int           `yaml:"refresh_ttl_days"`
	} `yaml:"jwt"`

	Email struct {
		Enabled      bool   `yaml:"enabled"`
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
	} `yaml:"email"`

	RateLimit struct {
		Requests int           `yaml:"requests"`
		Window   time.Duration `yaml:"window"`
	} `yaml:"rate_limit"`

	SuperAdmin struct {
		Username string `yaml:"username"`
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"super_admin"`
}

// IsProduction reports whether error details must be hidden from clients.
func (c *Config) IsProduction() bool {
	return c.Server.Env == EnvProduction
}

// RefreshTTL is the refresh token validity window.
func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.JWT.RefreshTTLDays) * 24 * time.Hour
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// LoadConfig reads configuration from the environment when DATABASE_URL is set,
// otherwise from the yaml file at CONFIG_PATH (default config/config.yaml).
// A .env file in the working directory is loaded first if present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config

	if os.Getenv("DATABASE_URL") == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}
		if err := loadFile(configPath, &cfg); err != nil {
			return nil, err
		}
	} else if err := loadEnv(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file at %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse config file at %s: %w", path, err)
	}
	return nil
}

func loadEnv(cfg *Config) error {
	var err error

	cfg.Database.DSN = os.Getenv("DATABASE_URL")
	cfg.Server.Host = os.Getenv("SERVER_HOST")
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.APIURL = os.Getenv("API_URL")
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.Server.CORSOrigins = strings.Split(origins, ",")
	}
	if cfg.Server.Port, err = envInt("SERVER_PORT"); err != nil {
		return err
	}

	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	if v := os.Getenv("JWT_ACCESS_EXPIRY"); v != "" {
		if cfg.JWT.AccessTTL, err = time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid JWT_ACCESS_EXPIRY %q: %w", v, err)
		}
	}
	if cfg.JWT.RefreshTTLDays, err = envInt("JWT_REFRESH_EXPIRY_DAYS"); err != nil {
		return err
	}

	cfg.Email.SMTPHost = os.Getenv("MAIL_HOST")
	cfg.Email.Enabled = cfg.Email.SMTPHost != ""
	if cfg.Email.SMTPPort, err = envInt("MAIL_PORT"); err != nil {
		return err
	}
	cfg.Email.SMTPUsername = os.Getenv("MAIL_USER")
	cfg.Email.SMTPPassword = os.Getenv("MAIL_PASS")
	cfg.Email.FromEmail = os.Getenv("MAIL_FROM")
	cfg.Email.FromName = os.Getenv("MAIL_FROM_NAME")

	if cfg.RateLimit.Requests, err = envInt("RATE_LIMIT_REQUESTS"); err != nil {
		return err
	}
	if v := os.Getenv("RATE_LIMIT_WINDOW"); v != "" {
		if cfg.RateLimit.Window, err = time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_WINDOW %q: %w", v, err)
		}
	}

	cfg.SuperAdmin.Username = os.Getenv("SUPER_ADMIN_USERNAME")
	cfg.SuperAdmin.Email = os.Getenv("SUPER_ADMIN_EMAIL")
	cfg.SuperAdmin.Password = os.Getenv("SUPER_ADMIN_PASSWORD")
	return nil
}

func envInt(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Env == "" {
		cfg.Server.Env = EnvDevelopment
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.APIURL == "" {
		cfg.Server.APIURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}
	if cfg.JWT.AccessTTL == 0 {
		cfg.JWT.AccessTTL = 15 * time.Minute
	}
	if cfg.JWT.RefreshTTLDays == 0 {
		cfg.JWT.RefreshTTLDays = 30
	}
	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = 587
	}
	if cfg.RateLimit.Requests == 0 {
		cfg.RateLimit.Requests = 100
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = 15 * time.Minute
	}
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database url is required"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt secret is required"))
	}
	if c.SuperAdmin.Email != "" && (c.SuperAdmin.Username == "" || c.SuperAdmin.Password == "") {
		errs = append(errs, errors.New("super admin requires username, email and password"))
	}
	return errors.Join(errs...)
}
