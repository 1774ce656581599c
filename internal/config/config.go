package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the assignment service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	PublicBaseURL          string
	DatabaseURL            string
	DatabaseMaxConns       int
	DatabaseDebug          bool
	RedisURL               string
	NATSURL                string
	EventChannel           string
	JWTSecret              string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	SummaryCacheTTL        time.Duration
	UploadMaxSizeMB        int
	SummaryMaxFiles        int
	EnablePlagiarism       bool
	CORSAllowOrigins       string
	UploadRatePerMinute    int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	cfg, err := load()
	if err != nil {
		return Config{}, err
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}
	return cfg, nil
}

// LoadCommand is Load for command line tools, which never verify tokens.
func LoadCommand() (Config, error) {
	return load()
}

func load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ASSIGN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "GEMA Assign")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.base_url", "/api/v2/assign")
	v.SetDefault("events.channel", "gema:assign")
	v.SetDefault("cloudinary.folder", "gema/assign")
	v.SetDefault("summary.cache_ttl", "2m")
	v.SetDefault("upload.max_size_mb", 20)
	v.SetDefault("summary.max_files", 5)
	v.SetDefault("plagiarism.enabled", false)
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("upload.rate_per_minute", 20)

	ttlString := v.GetString("summary.cache_ttl")
	if ttlString == "" {
		ttlString = "2m"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid summary cache ttl: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		PublicBaseURL:          strings.TrimRight(v.GetString("app.base_url"), "/"),
		DatabaseURL:            v.GetString("database.url"),
		DatabaseMaxConns:       v.GetInt("database.max_conns"),
		DatabaseDebug:          v.GetBool("database.debug"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		EventChannel:           v.GetString("events.channel"),
		JWTSecret:              v.GetString("jwt.secret"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		SummaryCacheTTL:        ttl,
		UploadMaxSizeMB:        v.GetInt("upload.max_size_mb"),
		SummaryMaxFiles:        v.GetInt("summary.max_files"),
		EnablePlagiarism:       v.GetBool("plagiarism.enabled"),
		CORSAllowOrigins:       strings.TrimSpace(v.GetString("cors.allow_origins")),
		UploadRatePerMinute:    v.GetInt("upload.rate_per_minute"),
	}

	if cfg.UploadMaxSizeMB <= 0 {
		cfg.UploadMaxSizeMB = 20
	}

	if cfg.UploadRatePerMinute <= 0 {
		cfg.UploadRatePerMinute = 20
	}

	if cfg.CORSAllowOrigins == "" {
		cfg.CORSAllowOrigins = "*"
	}

	if cfg.SummaryMaxFiles <= 0 {
		cfg.SummaryMaxFiles = 5
	}

	return cfg, nil
}
