package config

import (
	"errors"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via env files or the environment.
type AppConfig struct {
	AppPort   string `mapstructure:"AppPort"`
	JWTSecret string `mapstructure:"JWTSecret"`
	// Database
	DBDriver    string `mapstructure:"DBDriver"`
	DatabaseURI string `mapstructure:"DatabaseURI"`
	DBHost      string `mapstructure:"DBHost"`
	DBPort      string `mapstructure:"DBPort"`
	DBUser      string `mapstructure:"DBUser"`
	DBPassword  string `mapstructure:"DBPassword"`
	DBName      string `mapstructure:"DBName"`
	// HTTP
	RateLimitPerMinute     int      `mapstructure:"RateLimitPerMinute"`
	AllowedOrigins         []string `mapstructure:"AllowedOrigins"`
	GinMode                string   `mapstructure:"GinMode"`
	GinPath                string   `mapstructure:"GinPath"`
	ShutdownTimeoutSeconds int      `mapstructure:"ShutdownTimeoutSeconds"`
	// Redis for leaderboard caching
	RedisHost     string `mapstructure:"RedisHost"`
	RedisPort     int    `mapstructure:"RedisPort"`
	RedisDB       int    `mapstructure:"RedisDB"`
	RedisPassword string `mapstructure:"RedisPassword"`
	// Logging configuration
	LogLevel      string `mapstructure:"LogLevel"`
	LogPath       string `mapstructure:"LogPath"`
	LogMaxSizeMB  int    `mapstructure:"LogMaxSizeMB"`
	LogMaxBackups int    `mapstructure:"LogMaxBackups"`
	LogMaxAgeDays int    `mapstructure:"LogMaxAgeDays"`
	LogCompress   bool   `mapstructure:"LogCompress"`
	// Progression
	StreakTimezone                 string `mapstructure:"StreakTimezone"`
	LeaderboardCacheTTLSeconds     int    `mapstructure:"LeaderboardCacheTTLSeconds"`
	LeaderboardWarmIntervalSeconds int    `mapstructure:"LeaderboardWarmIntervalSeconds"`
}

// envKeys maps config keys onto the environment variables that override them.
var envKeys = map[string]string{
	"AppPort":                        "APP_PORT",
	"JWTSecret":                      "JWT_SECRET",
	"DBDriver":                       "DB_DRIVER",
	"DatabaseURI":                    "DATABASE_URI",
	"DBHost":                         "DB_HOST",
	"DBPort":                         "DB_PORT",
	"DBUser":                         "DB_USER",
	"DBPassword":                     "DB_PASSWORD",
	"DBName":                         "DB_NAME",
	"RateLimitPerMinute":             "RATE_LIMIT_PER_MINUTE",
	"AllowedOrigins":                 "CORS_ALLOWED_ORIGINS",
	"GinMode":                        "GIN_MODE",
	"GinPath":                        "GIN_PATH",
	"ShutdownTimeoutSeconds":         "SHUTDOWN_TIMEOUT_SECONDS",
	"RedisHost":                      "REDIS_HOST",
	"RedisPort":                      "REDIS_PORT",
	"RedisDB":                        "REDIS_DB",
	"RedisPassword":                  "REDIS_PASSWORD",
	"LogLevel":                       "LOG_LEVEL",
	"LogPath":                        "LOG_PATH",
	"LogMaxSizeMB":                   "LOG_MAX_SIZE_MB",
	"LogMaxBackups":                  "LOG_MAX_BACKUPS",
	"LogMaxAgeDays":                  "LOG_MAX_AGE_DAYS",
	"LogCompress":                    "LOG_COMPRESS",
	"StreakTimezone":                 "STREAK_TIMEZONE",
	"LeaderboardCacheTTLSeconds":     "LEADERBOARD_CACHE_TTL_SECONDS",
	"LeaderboardWarmIntervalSeconds": "LEADERBOARD_WARM_INTERVAL_SECONDS",
}

// ErrMissingJWTSecret is returned when no signing secret is configured.
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set in environment variables")

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during boot.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()

	c, err := Parse(filepath.Join("config", "config.json"))
	if err != nil {
		log.Fatal(err)
	}

	cfg = c
	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// Parse reads configuration with precedence config file -> defaults -> environment.
// A missing file is not an error; invalid JSON is.
func Parse(path string) (AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return AppConfig{}, err
		}
	}

	applyDefaults(v)

	for key, env := range envKeys {
		_ = v.BindEnv(key, env)
	}

	var out AppConfig
	if err := v.Unmarshal(&out); err != nil {
		return AppConfig{}, err
	}
	out.AllowedOrigins = splitAndTrim(out.AllowedOrigins)
	out.DBDriver = strings.ToLower(out.DBDriver)

	if out.JWTSecret == "" {
		return out, ErrMissingJWTSecret
	}
	if _, err := time.LoadLocation(out.StreakTimezone); err != nil {
		return out, err
	}
	return out, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("AppPort", "8080")
	v.SetDefault("DBDriver", "mysql")
	v.SetDefault("DBHost", "127.0.0.1")
	v.SetDefault("DBPort", "3306")
	v.SetDefault("DBUser", "root")
	v.SetDefault("DBName", "beatguess")
	v.SetDefault("RateLimitPerMinute", 60)
	v.SetDefault("AllowedOrigins", []string{"*"})
	v.SetDefault("GinMode", "release")
	v.SetDefault("ShutdownTimeoutSeconds", 30)
	v.SetDefault("RedisPort", 6379)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogMaxSizeMB", 100)
	v.SetDefault("LogMaxBackups", 3)
	v.SetDefault("LogMaxAgeDays", 7)
	v.SetDefault("StreakTimezone", "UTC")
	v.SetDefault("LeaderboardCacheTTLSeconds", 30)
	v.SetDefault("LeaderboardWarmIntervalSeconds", 300)
}

// StreakLocation returns the pinned zone used for streak day boundaries.
func (c AppConfig) StreakLocation() *time.Location {
	loc, err := time.LoadLocation(c.StreakTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// splitAndTrim accepts both list values and a single comma separated string
// (the form environment variables arrive in).
func splitAndTrim(raw []string) []string {
	items := []string{}
	for _, entry := range raw {
		for _, item := range strings.Split(entry, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				items = append(items, trimmed)
			}
		}
	}
	return items
}
