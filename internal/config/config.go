package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

const devJwtSecret = "dev_secret"

type Config struct {
	AppEnv            string    `yaml:"app_env"`
	Addr              string    `yaml:"addr"`
	DbDriver          string    `yaml:"db_driver"`
	DbDsn             string    `yaml:"db_dsn"`
	JwtSecret         string    `yaml:"jwt_secret"`
	JwtTTLHours       int       `yaml:"jwt_ttl_hours"`
	BcryptCost        int       `yaml:"bcrypt_cost"`
	AdminBootstrap    string    `yaml:"admin_bootstrap_email"`
	AdminPassword     string    `yaml:"admin_bootstrap_password"`
	AdminName         string    `yaml:"admin_bootstrap_name"`
	SmtpHost          string    `yaml:"smtp_host"`
	SmtpPort          int       `yaml:"smtp_port"`
	SmtpUser          string    `yaml:"smtp_user"`
	SmtpPass          string    `yaml:"smtp_pass"`
	SmtpFrom          string    `yaml:"smtp_from"`
	AllowedOriginsRaw string    `yaml:"allowed_origins"`
	StaticDir         string    `yaml:"static_dir"`
	Log               LogConfig `yaml:"log"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	Console    bool   `yaml:"console"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

func Default() Config {
	return Config{
		AppEnv:      "local",
		Addr:        ":3000",
		DbDriver:    "sqlite",
		DbDsn:       "file:dev.sqlite3?_pragma=foreign_keys(1)",
		JwtTTLHours: 8,
		BcryptCost:  10,
		AdminName:   "Administrator",
		SmtpPort:    587,
		Log:         LogConfig{Level: "info", Console: true, MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 30},
	}
}

// Load builds the config from defaults, an optional YAML file, a .env file and
// the process environment, in increasing order of precedence.
func Load(configFile string) (Config, error) {
	cfg := Default()

	paths := []string{"etc/config.yaml"}
	if configFile != "" {
		paths = []string{configFile}
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if configFile != "" {
				return cfg, fmt.Errorf("read config %s: %w", path, err)
			}
			continue
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		break
	}

	_ = godotenv.Load()

	cfg.AppEnv = getEnv("APP_ENV", cfg.AppEnv)
	cfg.Addr = getEnv("APP_ADDR", cfg.Addr)
	if port := os.Getenv("PORT"); port != "" && os.Getenv("APP_ADDR") == "" {
		cfg.Addr = ":" + port
	}
	cfg.DbDriver = strings.ToLower(getEnv("DB_DRIVER", cfg.DbDriver))
	cfg.DbDsn = getEnv("DB_DSN", cfg.DbDsn)
	cfg.JwtSecret = getEnv("JWT_SECRET", cfg.JwtSecret)
	cfg.JwtTTLHours = getEnvInt("JWT_TTL_HOURS", cfg.JwtTTLHours)
	cfg.BcryptCost = getEnvInt("BCRYPT_COST", cfg.BcryptCost)
	cfg.AdminBootstrap = getEnv("ADMIN_BOOTSTRAP_EMAIL", cfg.AdminBootstrap)
	cfg.AdminPassword = getEnv("ADMIN_BOOTSTRAP_PASSWORD", cfg.AdminPassword)
	cfg.AdminName = getEnv("ADMIN_BOOTSTRAP_NAME", cfg.AdminName)
	cfg.SmtpHost = getEnv("SMTP_HOST", cfg.SmtpHost)
	cfg.SmtpPort = getEnvInt("SMTP_PORT", cfg.SmtpPort)
	cfg.SmtpUser = getEnv("SMTP_USER", cfg.SmtpUser)
	cfg.SmtpPass = getEnv("SMTP_PASS", cfg.SmtpPass)
	cfg.SmtpFrom = getEnv("SMTP_FROM", cfg.SmtpFrom)
	cfg.AllowedOriginsRaw = getEnv("ALLOWED_ORIGINS", cfg.AllowedOriginsRaw)
	cfg.StaticDir = getEnv("STATIC_DIR", cfg.StaticDir)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)
	cfg.Log.Console = getEnvBool("LOG_CONSOLE", cfg.Log.Console)

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	missing := []string{}
	if c.DbDsn == "" {
		missing = append(missing, "DB_DSN")
	}
	if c.JwtSecret == "" {
		if c.IsProduction() {
			missing = append(missing, "JWT_SECRET")
		} else {
			c.JwtSecret = devJwtSecret
		}
	}
	if c.AdminBootstrap != "" && c.AdminPassword == "" {
		missing = append(missing, "ADMIN_BOOTSTRAP_PASSWORD")
	}
	if len(missing) > 0 {
		return errors.New("missing env: " + strings.Join(missing, ", "))
	}

	switch c.DbDriver {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DbDriver)
	}
	if c.JwtTTLHours <= 0 {
		return fmt.Errorf("JWT_TTL_HOURS must be positive, got %d", c.JwtTTLHours)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	return nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func (c Config) JwtTTL() time.Duration {
	return time.Duration(c.JwtTTLHours) * time.Hour
}

func (c Config) MailEnabled() bool {
	return c.SmtpHost != "" && c.SmtpFrom != ""
}

func (c Config) AllowedOrigins() []string {
	origins := []string{}
	for _, origin := range strings.Split(c.AllowedOriginsRaw, ",") {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
