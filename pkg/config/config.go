package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Content  ContentConfig
	Video    VideoConfig
	Cache    CacheConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ContentConfig governs content-access and assessment-integrity policy.
type ContentConfig struct {
	DeviceLimit     int
	GrantExpiry     time.Duration
	WatermarkBucket time.Duration
	SigningSecret   string
	CDNBaseURL      string
}

// VideoConfig controls raw asset intake and the transcode worker pool.
type VideoConfig struct {
	StorageDir        string
	WorkerConcurrency int
	WorkerRetries     int
	FFmpegPath        string
}

// CacheConfig tunes the published question-set cache.
type CacheConfig struct {
	Enabled     bool
	QuestionTTL time.Duration
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
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:   v.GetString("JWT_SECRET"),
		Issuer:   v.GetString("JWT_ISSUER"),
		Audience: splitAndTrim(v.GetString("JWT_AUDIENCE")),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	deviceLimit := v.GetInt("DEVICE_LIMIT")
	if deviceLimit <= 0 {
		deviceLimit = 2
	}
	cfg.Content = ContentConfig{
		DeviceLimit:     deviceLimit,
		GrantExpiry:     parseDuration(v.GetString("GRANT_EXPIRY"), 2*time.Hour),
		WatermarkBucket: parseDuration(v.GetString("WATERMARK_BUCKET"), 15*time.Second),
		SigningSecret:   v.GetString("CONTENT_SIGNING_SECRET"),
		CDNBaseURL:      v.GetString("CDN_BASE_URL"),
	}

	cfg.Video = VideoConfig{
		StorageDir:        v.GetString("VIDEO_STORAGE_DIR"),
		WorkerConcurrency: v.GetInt("VIDEO_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("VIDEO_WORKER_RETRIES"),
		FFmpegPath:        v.GetString("FFMPEG_PATH"),
	}

	cfg.Cache = CacheConfig{
		Enabled:     v.GetBool("ENABLE_QUESTION_CACHE"),
		QuestionTTL: parseDuration(v.GetString("QUESTION_CACHE_TTL"), 5*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "securemath")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "securemath")
	v.SetDefault("JWT_AUDIENCE", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DEVICE_LIMIT", 2)
	v.SetDefault("GRANT_EXPIRY", "2h")
	v.SetDefault("WATERMARK_BUCKET", "15s")
	v.SetDefault("CONTENT_SIGNING_SECRET", "dev_content_secret")
	// Default to the API's own /content origin; production points this at
	// the CDN distribution in front of it.
	v.SetDefault("CDN_BASE_URL", "http://localhost:8080/content")

	v.SetDefault("VIDEO_STORAGE_DIR", "./media")
	v.SetDefault("VIDEO_WORKER_CONCURRENCY", 1)
	v.SetDefault("VIDEO_WORKER_RETRIES", 2)
	v.SetDefault("FFMPEG_PATH", "ffmpeg")

	v.SetDefault("ENABLE_QUESTION_CACHE", true)
	v.SetDefault("QUESTION_CACHE_TTL", "5m")
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
