package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB   int    `mapstructure:"REDIS_CACHE_DB"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	// Interpreter configuration.
	InterpreterProvider string `mapstructure:"INTERPRETER_PROVIDER"` // "gemini" or "local"
	GeminiAPIKey        string `mapstructure:"GEMINI_API_KEY"`
	InterpreterTimeout  int    `mapstructure:"INTERPRETER_TIMEOUT_SECONDS"`

	// OCR configuration.
	GoogleServiceAccountFile string `mapstructure:"GOOGLE_SERVICE_ACCOUNT_FILE"`
	OCRTimeout               int    `mapstructure:"OCR_TIMEOUT_SECONDS"`

	// Session lifetimes in minutes.
	ConfirmationTTLMinutes int `mapstructure:"CONFIRMATION_TTL_MINUTES"`
	WizardTTLMinutes       int `mapstructure:"WIZARD_TTL_MINUTES"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_SESSION_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("INTERPRETER_PROVIDER", "gemini")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("INTERPRETER_TIMEOUT_SECONDS", 8)
	viper.SetDefault("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	viper.SetDefault("OCR_TIMEOUT_SECONDS", 10)
	viper.SetDefault("CONFIRMATION_TTL_MINUTES", 60)
	viper.SetDefault("WIZARD_TTL_MINUTES", 30)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// ConfirmationTTL returns the lifetime of a pending confirmation session.
func ConfirmationTTL() time.Duration {
	return time.Duration(AppConfig.ConfirmationTTLMinutes) * time.Minute
}

// WizardTTL returns the lifetime of an in-progress creation wizard.
func WizardTTL() time.Duration {
	return time.Duration(AppConfig.WizardTTLMinutes) * time.Minute
}
