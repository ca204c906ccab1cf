package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	TeacherAPI  TeacherAPIConfig
	Directory   DirectoryConfig
	Session     SessionConfig
	Redis       RedisConfig
	CORS        CORSConfig
	Log         LogConfig
	Metrics     MetricsConfig
	Compression CompressionConfig
}

// TeacherAPIConfig points the data client at the mock REST backend.
type TeacherAPIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type DirectoryConfig struct {
	ItemsPerPage    int
	DefaultLanguage string
}

// SessionConfig selects where per-visitor directory state lives.
type SessionConfig struct {
	Store      string
	TTL        time.Duration
	CookieName string
	Secure     bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

type MetricsConfig struct {
	Enabled bool
}

type CompressionConfig struct {
	Enabled   bool
	MinLength int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.TeacherAPI = TeacherAPIConfig{
		BaseURL: strings.TrimRight(v.GetString("TEACHER_API_BASE_URL"), "/"),
		Timeout: parseDuration(v.GetString("TEACHER_API_TIMEOUT"), 10*time.Second),
	}

	perPage := v.GetInt("ITEMS_PER_PAGE")
	if perPage <= 0 {
		perPage = 5
	}
	cfg.Directory = DirectoryConfig{
		ItemsPerPage:    perPage,
		DefaultLanguage: v.GetString("DEFAULT_LANGUAGE"),
	}

	store := strings.ToLower(strings.TrimSpace(v.GetString("SESSION_STORE")))
	if store != SessionStoreRedis {
		store = SessionStoreMemory
	}
	cfg.Session = SessionConfig{
		Store:      store,
		TTL:        parseDuration(v.GetString("SESSION_TTL"), 24*time.Hour),
		CookieName: v.GetString("SESSION_COOKIE"),
		Secure:     v.GetBool("SESSION_COOKIE_SECURE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	cfg.Compression = CompressionConfig{
		Enabled:   v.GetBool("ENABLE_COMPRESSION"),
		MinLength: v.GetInt("COMPRESSION_MIN_LENGTH"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("TEACHER_API_BASE_URL", "https://687212ff76a5723aacd38af5.mockapi.io")
	v.SetDefault("TEACHER_API_TIMEOUT", "10s")

	v.SetDefault("ITEMS_PER_PAGE", 5)
	v.SetDefault("DEFAULT_LANGUAGE", "en")

	v.SetDefault("SESSION_STORE", SessionStoreMemory)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_COOKIE", "sid")
	v.SetDefault("SESSION_COOKIE_SECURE", false)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_METRICS", true)
	v.SetDefault("ENABLE_COMPRESSION", true)
	v.SetDefault("COMPRESSION_MIN_LENGTH", 1024)
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
