package config

import (
	"time"

	"github.com/spf13/viper"
)

// ServerConfig is read through viper so .env values and environment variables
// both apply.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	LogLevel        string
	PromptStore     string // "file" or "redis"
	PromptStoreDir  string
	LedgerBackend   string // "memory" or "postgres"
}

// Load initialises viper from .env and the process environment.
func Load() {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("server.log_level", "LOG_LEVEL")
	viper.BindEnv("prompts.store", "PROMPT_STORE")
	viper.BindEnv("prompts.dir", "PROMPT_STORE_DIR")
	viper.BindEnv("ledger.backend", "LEDGER_BACKEND")
	viper.BindEnv("ledger.cashback_float", "CASHBACK_FLOAT")

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")
}

// ReadFile reads the optional .env file.
func ReadFile() error {
	return viper.ReadInConfig()
}

func GetServerConfig() *ServerConfig {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_timeout", 15*time.Second)
	viper.SetDefault("server.write_timeout", 15*time.Second)
	viper.SetDefault("server.idle_timeout", 60*time.Second)
	viper.SetDefault("server.shutdown_timeout", 30*time.Second)
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("prompts.store", "file")
	viper.SetDefault("prompts.dir", "./data/prompts")
	viper.SetDefault("ledger.backend", "memory")

	return &ServerConfig{
		Port:            viper.GetString("server.port"),
		ReadTimeout:     viper.GetDuration("server.read_timeout"),
		WriteTimeout:    viper.GetDuration("server.write_timeout"),
		IdleTimeout:     viper.GetDuration("server.idle_timeout"),
		ShutdownTimeout: viper.GetDuration("server.shutdown_timeout"),
		LogLevel:        viper.GetString("server.log_level"),
		PromptStore:     viper.GetString("prompts.store"),
		PromptStoreDir:  viper.GetString("prompts.dir"),
		LedgerBackend:   viper.GetString("ledger.backend"),
	}
}
