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

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Parser    ParserConfig
	Optimizer OptimizerConfig
	Chat      ChatConfig
	Calendar  CalendarConfig
	Exports   ExportsConfig
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
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ParserConfig configures the OpenAI-backed natural language parser.
type ParserConfig struct {
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// OptimizerConfig configures the Anthropic bridge used for schedule
// optimization, chat refinement and prompt updates.
type OptimizerConfig struct {
	APIKey      string
	Model       string
	Version     string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	CacheTTL    time.Duration
}

// ChatConfig tunes the interactive refinement loop.
type ChatConfig struct {
	HistoryLimit int
	HistoryTTL   time.Duration
}

// CalendarConfig carries the Google Calendar OAuth client settings.
type CalendarConfig struct {
	ClientID     string
	ClientSecret string
	Scopes       []string
	Timeout      time.Duration
}

// ExportsConfig governs schedule download rendering.
type ExportsConfig struct {
	Enabled      bool
	ICSHorizon   time.Duration
	DefaultTitle string
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
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Parser = ParserConfig{
		APIKey:      v.GetString("OPENAI_API_KEY"),
		Model:       v.GetString("PARSER_MODEL"),
		Temperature: v.GetFloat64("PARSER_TEMPERATURE"),
		MaxTokens:   v.GetInt("PARSER_MAX_TOKENS"),
		Timeout:     parseDuration(v.GetString("PARSER_TIMEOUT"), 30*time.Second),
	}

	cfg.Optimizer = OptimizerConfig{
		APIKey:      v.GetString("ANTHROPIC_API_KEY"),
		Model:       v.GetString("OPTIMIZER_MODEL"),
		Version:     v.GetString("ANTHROPIC_VERSION"),
		BaseURL:     v.GetString("ANTHROPIC_BASE_URL"),
		Temperature: v.GetFloat64("OPTIMIZER_TEMPERATURE"),
		MaxTokens:   v.GetInt("OPTIMIZER_MAX_TOKENS"),
		Timeout:     parseDuration(v.GetString("OPTIMIZER_TIMEOUT"), 300*time.Second),
		CacheTTL:    parseDuration(v.GetString("OPTIMIZER_CACHE_TTL"), time.Hour),
	}

	cfg.Chat = ChatConfig{
		HistoryLimit: v.GetInt("CHAT_HISTORY_LIMIT"),
		HistoryTTL:   parseDuration(v.GetString("CHAT_HISTORY_TTL"), 24*time.Hour),
	}

	cfg.Calendar = CalendarConfig{
		ClientID:     v.GetString("GOOGLE_CLIENT_ID"),
		ClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
		Scopes:       splitAndTrim(v.GetString("GOOGLE_SCOPES")),
		Timeout:      parseDuration(v.GetString("GOOGLE_TIMEOUT"), 30*time.Second),
	}

	cfg.Exports = ExportsConfig{
		Enabled:      v.GetBool("ENABLE_EXPORTS"),
		ICSHorizon:   parseDuration(v.GetString("EXPORTS_ICS_HORIZON"), 7*24*time.Hour),
		DefaultTitle: v.GetString("EXPORTS_DEFAULT_TITLE"),
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
	v.SetDefault("DB_NAME", "lockin")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("PARSER_MODEL", "gpt-4o-mini")
	v.SetDefault("PARSER_TEMPERATURE", 0.7)
	v.SetDefault("PARSER_MAX_TOKENS", 2000)
	v.SetDefault("PARSER_TIMEOUT", "30s")

	v.SetDefault("ANTHROPIC_API_KEY", "")
	v.SetDefault("OPTIMIZER_MODEL", "claude-3-7-sonnet-20250219")
	v.SetDefault("ANTHROPIC_VERSION", "2023-06-01")
	v.SetDefault("ANTHROPIC_BASE_URL", "https://api.anthropic.com")
	v.SetDefault("OPTIMIZER_TEMPERATURE", 0.2)
	v.SetDefault("OPTIMIZER_MAX_TOKENS", 4000)
	v.SetDefault("OPTIMIZER_TIMEOUT", "300s")
	v.SetDefault("OPTIMIZER_CACHE_TTL", "1h")

	v.SetDefault("CHAT_HISTORY_LIMIT", 10)
	v.SetDefault("CHAT_HISTORY_TTL", "24h")

	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_CLIENT_SECRET", "")
	v.SetDefault("GOOGLE_SCOPES", "https://www.googleapis.com/auth/calendar")
	v.SetDefault("GOOGLE_TIMEOUT", "30s")

	v.SetDefault("ENABLE_EXPORTS", true)
	v.SetDefault("EXPORTS_ICS_HORIZON", "168h")
	v.SetDefault("EXPORTS_DEFAULT_TITLE", "Weekly Schedule")
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
