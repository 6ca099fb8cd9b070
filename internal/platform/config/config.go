package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath     = "config/config.yaml"
	DefaultEnvFile  = "config/.env"
	DefaultTimezone = "Asia/Dhaka"
	DefaultBucket   = "attendance-photos"

	ModeDev     = "dev"
	ModeRelease = "release"
)

type ServerConfig struct {
	Addr          string        `yaml:"addr"`
	PublicBaseURL string        `yaml:"public_base_url"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	AllowOrigins  []string      `yaml:"allow_origins"`
	// WebDir holds the built frontend; unknown non-API paths fall back to its index.html.
	WebDir string `yaml:"web_dir"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type Certs struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret"`
	SessionSecret string        `yaml:"session_secret"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
}

type OSSConfig struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	AccessKeySecret string `yaml:"access_key_secret"`
}

type StorageConfig struct {
	Driver        string    `yaml:"driver"` // local | oss
	Bucket        string    `yaml:"bucket"`
	LocalDir      string    `yaml:"local_dir"`
	PublicBaseURL string    `yaml:"public_base_url"`
	OSS           OSSConfig `yaml:"oss"`
}

type AttendanceConfig struct {
	Timezone    string `yaml:"timezone"`
	MaxUploadMB int64  `yaml:"max_upload_mb"`
}

type RedisConfig struct {
	URL string        `yaml:"url"`
	TTL time.Duration `yaml:"ttl"`
}

type NATSConfig struct {
	URL string `yaml:"url"`
}

type Config struct {
	Version     string           `yaml:"version"`
	Mode        string           `yaml:"mode"`
	Server      ServerConfig     `yaml:"server"`
	DB          DatabaseConfig   `yaml:"database"`
	Certificate Certs            `yaml:"certificate"`
	Auth        AuthConfig       `yaml:"auth"`
	Storage     StorageConfig    `yaml:"storage"`
	Attendance  AttendanceConfig `yaml:"attendance"`
	Redis       RedisConfig      `yaml:"redis"`
	NATS        NATSConfig       `yaml:"nats"`
}

// Load reads the YAML file at path, then applies ADDA_* overrides from envFile
// (if present) and the process environment.
func Load(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(buf)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, cfg.Validate()
}

// Parse decodes YAML and fills defaults. Environment overrides are not applied.
func Parse(buf []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.setDefaults()
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Mode != ModeDev && c.Mode != ModeRelease {
		return fmt.Errorf("mode must be %q or %q, got %q", ModeDev, ModeRelease, c.Mode)
	}
	if c.Mode == ModeRelease && c.Auth.JWTSecret == devSecret {
		return errors.New("auth.jwt_secret must be set in release mode")
	}
	if _, err := time.LoadLocation(c.Attendance.Timezone); err != nil {
		return fmt.Errorf("attendance.timezone: %w", err)
	}
	switch c.Storage.Driver {
	case "local", "oss":
	default:
		return fmt.Errorf("storage.driver must be local or oss, got %q", c.Storage.Driver)
	}
	return nil
}

// MaxUploadBytes is the request body limit for photo uploads.
func (c *Config) MaxUploadBytes() int64 {
	return c.Attendance.MaxUploadMB << 20
}

// SessionKey signs the cookie session; it falls back to the JWT secret.
func (c *Config) SessionKey() []byte {
	if c.Auth.SessionSecret != "" {
		return []byte(c.Auth.SessionSecret)
	}
	return []byte(c.Auth.JWTSecret)
}

const devSecret = "dev-only-secret-change-me"

func (c *Config) setDefaults() {
	if c.Mode == "" {
		c.Mode = ModeDev
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8443"
	}
	if c.Server.PublicBaseURL == "" {
		c.Server.PublicBaseURL = "https://localhost:8443"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 90 * time.Second
	}
	if len(c.Server.AllowOrigins) == 0 {
		c.Server.AllowOrigins = []string{"http://localhost:3000"}
	}
	if c.DB.Port == 0 {
		c.DB.Port = 3306
	}
	if c.Auth.JWTSecret == "" {
		c.Auth.JWTSecret = devSecret
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "local"
	}
	if c.Storage.Bucket == "" {
		c.Storage.Bucket = DefaultBucket
	}
	if c.Storage.LocalDir == "" {
		c.Storage.LocalDir = "data/storage"
	}
	if c.Storage.PublicBaseURL == "" {
		c.Storage.PublicBaseURL = c.Server.PublicBaseURL + "/storage"
	}
	if c.Attendance.Timezone == "" {
		c.Attendance.Timezone = DefaultTimezone
	}
	if c.Attendance.MaxUploadMB <= 0 {
		c.Attendance.MaxUploadMB = 10
	}
	if c.Redis.TTL == 0 {
		c.Redis.TTL = time.Minute
	}
}

func (c *Config) applyEnv() {
	setString(&c.Mode, "ADDA_MODE")
	setString(&c.DB.Host, "ADDA_DB_HOST")
	setInt(&c.DB.Port, "ADDA_DB_PORT")
	setString(&c.DB.Username, "ADDA_DB_USER")
	setString(&c.DB.Password, "ADDA_DB_PASSWORD")
	setString(&c.DB.DBName, "ADDA_DB_NAME")
	setString(&c.Auth.JWTSecret, "ADDA_JWT_SECRET")
	setString(&c.Auth.SessionSecret, "ADDA_SESSION_SECRET")
	setString(&c.Storage.OSS.AccessKeyID, "ADDA_OSS_ACCESS_KEY_ID")
	setString(&c.Storage.OSS.AccessKeySecret, "ADDA_OSS_ACCESS_KEY_SECRET")
	setString(&c.Redis.URL, "ADDA_REDIS_URL")
	setString(&c.NATS.URL, "ADDA_NATS_URL")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
