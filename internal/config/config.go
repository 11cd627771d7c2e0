package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/config.yaml"

type MobizonConfig struct {
	APIKey   string `yaml:"api_key"`
	SenderID string `yaml:"sender_id"`
	Prefix   string `yaml:"prefix"`
}

type MobilParkConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type SMSConfig struct {
	Provider  string          `yaml:"provider"` // mobizon | mobilpark | dry_run
	Language  string          `yaml:"language"`
	Timeout   time.Duration   `yaml:"timeout"`
	Mobizon   MobizonConfig   `yaml:"mobizon"`
	MobilPark MobilParkConfig `yaml:"mobilpark"`
}

type GateConfig struct {
	VerifyPath    string        `yaml:"verify_path"`
	LandingPath   string        `yaml:"landing_path"`
	AllowedRoutes []string      `yaml:"allowed_routes"`
	FailClosed    bool          `yaml:"fail_closed"`
	IssueLockTTL  time.Duration `yaml:"issue_lock_ttl"`
}

// SeedUser is only used with the memory store.
type SeedUser struct {
	ID          int    `yaml:"id"`
	PhoneNumber string `yaml:"phone_number"`
	RoleID      int    `yaml:"role_id"`
}

type Config struct {
	App struct {
		LogLevel string `yaml:"log_level"`
		Mode     string `yaml:"mode"` // gin mode
	} `yaml:"app"`
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		Driver  string `yaml:"driver"` // postgres | memory
		DSN     string `yaml:"url"`
		Migrate bool   `yaml:"migrate"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	JWT struct {
		Secret string `yaml:"secret"`
	} `yaml:"jwt"`
	SMS   SMSConfig  `yaml:"sms"`
	Gate  GateConfig `yaml:"gate"`
	Users []SeedUser `yaml:"users"`
}

// DefaultAllowedRoutes lists pages a user with an unverified phone may still open.
var DefaultAllowedRoutes = []string{
	"phonegate.verify_otp_form",
	"user.logout",
	"user.logout.confirm",
	"entity.user.edit_form",
	"user.page",
	"system.404",
	"system.403",
}

// Load reads the yaml file (missing file means defaults only), applies a
// .env file if present, environment overrides, defaults, then validates.
func Load(path string) (*Config, error) {
	var cfg Config

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	// .env is optional
	_ = godotenv.Load()

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setString(&c.Database.DSN, "PHONEGATE_DATABASE_URL")
	setString(&c.Database.Driver, "PHONEGATE_DATABASE_DRIVER")
	setString(&c.JWT.Secret, "PHONEGATE_JWT_SECRET")
	setString(&c.Redis.Addr, "PHONEGATE_REDIS_ADDR")
	setString(&c.Redis.Password, "PHONEGATE_REDIS_PASSWORD")
	setString(&c.SMS.Provider, "PHONEGATE_SMS_PROVIDER")
	setString(&c.SMS.Mobizon.APIKey, "PHONEGATE_MOBIZON_API_KEY")
	setString(&c.SMS.MobilPark.Password, "PHONEGATE_MOBILPARK_PASSWORD")
	setString(&c.App.LogLevel, "PHONEGATE_LOG_LEVEL")
	if v, ok := os.LookupEnv("PHONEGATE_PORT"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.Server.Port = n
		}
	}
}

func (c *Config) applyDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.Mode == "" {
		c.App.Mode = "release"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "phonegate:"
	}
	if c.SMS.Provider == "" {
		c.SMS.Provider = "dry_run"
	}
	if c.SMS.Language == "" {
		c.SMS.Language = "tr"
	}
	if c.SMS.Timeout <= 0 {
		c.SMS.Timeout = 10 * time.Second
	}
	if c.Gate.VerifyPath == "" {
		c.Gate.VerifyPath = "/tr/verify-otp"
	}
	if c.Gate.LandingPath == "" {
		c.Gate.LandingPath = "/"
	}
	if len(c.Gate.AllowedRoutes) == 0 {
		c.Gate.AllowedRoutes = append([]string(nil), DefaultAllowedRoutes...)
	}
	if c.Gate.IssueLockTTL <= 0 {
		c.Gate.IssueLockTTL = 10 * time.Second
	}
}

func (c *Config) Validate() error {
	var errs []error
	switch c.SMS.Provider {
	case "dry_run":
	case "mobizon":
		if c.SMS.Mobizon.APIKey == "" {
			errs = append(errs, errors.New("sms.mobizon.api_key is required"))
		}
	case "mobilpark":
		if c.SMS.MobilPark.Username == "" || c.SMS.MobilPark.Password == "" {
			errs = append(errs, errors.New("sms.mobilpark.username and password are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown sms.provider %q", c.SMS.Provider))
	}
	switch c.Database.Driver {
	case "memory":
	case "postgres":
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("database.url is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database.driver %q", c.Database.Driver))
	}
	if !strings.HasPrefix(c.Gate.VerifyPath, "/") {
		errs = append(errs, fmt.Errorf("gate.verify_path must be absolute, got %q", c.Gate.VerifyPath))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	return errors.Join(errs...)
}
