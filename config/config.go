package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all environment-sourced settings for the bot.
type Config struct {
	TelegramBotToken string
	MongoDBURI       string
	MongoDBName      string
	AdminUserID      int64

	// Optional stats cache; disabled when empty.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Dashboard port; 0 disables the REST surface.
	RESTPort int
}

// Load reads configuration from the environment (and .env if present)
// and validates it. The process must not start with an invalid config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		MongoDBURI:       os.Getenv("MONGODB_URI"),
		MongoDBName:      getEnv("MONGODB_BOT_DB_NAME", "FreeID"),
		AdminUserID:      getInt64("ADMIN_USER_ID", 0),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          int(getInt64("REDIS_DB", 0)),
		RESTPort:         int(getInt64("REST_PORT", 3000)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate enforces the required settings.
func (c *Config) Validate() error {
	if c.TelegramBotToken == "" || c.TelegramBotToken == "YOUR_BOT_TOKEN" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN must be set in environment variables")
	}
	if c.MongoDBURI == "" {
		return fmt.Errorf("MONGODB_URI must be set in environment variables")
	}
	if c.MongoDBName == "" {
		c.MongoDBName = "FreeID"
	}
	if c.AdminUserID == 0 {
		return fmt.Errorf("ADMIN_USER_ID must be set in environment variables")
	}
	return nil
}

// CacheEnabled reports whether a Redis stats cache should be wired.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
