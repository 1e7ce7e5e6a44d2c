package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds everything the app needs to start. It's read from a .config.json file,
// and secrets can be overridden through the environment (or a .env file).
type Config struct {
	Port     int            `json:"port"`
	Env      string         `json:"env"`
	LogLevel string         `json:"log_level"`
	Pepper   string         `json:"pepper"`
	Auth     AuthConfig     `json:"auth"`
	Time     TimeConfig     `json:"time"`
	Images   ImagesConfig   `json:"images"`
	Database PostgresConfig `json:"database"`
}

// AuthConfig configures session tokens and the administrator account.
type AuthConfig struct {
	JWTSecret    string `json:"jwt_secret"`
	TokenTTLDays int    `json:"token_ttl_days"`
	BcryptCost   int    `json:"bcrypt_cost"`
	RootPassword string `json:"root_password"`
}

// TimeConfig configures how timestamps are rendered.
type TimeConfig struct {
	Locale   string `json:"locale"`
	TimeZone string `json:"time_zone"`
}

// ImagesConfig configures where uploaded images are stored and how they're addressed.
type ImagesConfig struct {
	// Dir contains the images directory.
	Dir string `json:"dir"`
	// PublicURL is the base url image urls start with, e.g. "http://localhost:3000".
	PublicURL string `json:"public_url"`
}

type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (pc PostgresConfig) ConnectionInfo() string {
	if pc.Password == "" {
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable", pc.Host, pc.Port, pc.User, pc.Name)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", pc.Host, pc.Port, pc.User, pc.Password, pc.Name)
}

// IsProd tells whether the app runs in production.
func (c Config) IsProd() bool {
	return c.Env == "prod"
}

func DefaultConfig() Config {
	return Config{
		Port:     3000,
		Env:      "dev",
		LogLevel: "debug",
		Pepper:   "secret-random-string",
		Auth: AuthConfig{
			JWTSecret:    "secret-jwt-key",
			TokenTTLDays: 30,
			RootPassword: "12345678",
		},
		Time: TimeConfig{
			Locale:   "zh-tw",
			TimeZone: "Asia/Taipei",
		},
		Images: ImagesConfig{
			Dir:       ".",
			PublicURL: "http://localhost:3000",
		},
		Database: DefaultPostgresConfig(),
	}
}

func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "",
		Name:     "simple_twitter",
	}
}

// LoadConfig loads .config.json if present, otherwise the default dev setup.
// In production (configRequired) the file is mandatory. Environment variables,
// possibly set through a .env file, take precedence over both.
func LoadConfig(configRequired bool) (Config, error) {
	c, err := loadConfigFile(".config.json", configRequired)
	if err != nil {
		return c, err
	}
	if err := godotenv.Load(); err == nil {
		logrus.Info("loaded .env")
	}
	return c, applyEnv(&c)
}

func loadConfigFile(path string, required bool) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if required {
			return Config{}, fmt.Errorf("a %s file is required in production: %w", path, err)
		}
		return DefaultConfig(), nil
	}
	defer f.Close()

	c := DefaultConfig()
	if err := json.NewDecoder(f).Decode(&c); err != nil {
		return c, fmt.Errorf("decoding %s: %w", path, err)
	}
	logrus.WithField("path", path).Info("loaded config file")
	return c, nil
}

// applyEnv overrides configuration values with the environment variables that are set.
func applyEnv(c *Config) error {
	strs := map[string]*string{
		"ENV":           &c.Env,
		"LOG_LEVEL":     &c.LogLevel,
		"PEPPER":        &c.Pepper,
		"JWT_SECRET":    &c.Auth.JWTSecret,
		"ROOT_PASSWORD": &c.Auth.RootPassword,
		"LOCALE":        &c.Time.Locale,
		"TIME_ZONE":     &c.Time.TimeZone,
		"IMAGES_DIR":    &c.Images.Dir,
		"PUBLIC_URL":    &c.Images.PublicURL,
		"DB_HOST":       &c.Database.Host,
		"DB_USER":       &c.Database.User,
		"DB_PASSWORD":   &c.Database.Password,
		"DB_NAME":       &c.Database.Name,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	ints := map[string]*int{
		"PORT":           &c.Port,
		"DB_PORT":        &c.Database.Port,
		"TOKEN_TTL_DAYS": &c.Auth.TokenTTLDays,
		"BCRYPT_COST":    &c.Auth.BcryptCost,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("environment variable %s: %w", key, err)
		}
		*dst = n
	}
	return nil
}
