package configs

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppPort string

	DBHost string
	DBPort string
	DBUser string
	DBPass string
	DBName string

	RedisHost string
	RedisPort string
	RedisPass string

	// CacheTTL bounds how long a cached index page is served before expiry.
	CacheTTL time.Duration

	MediaDir string

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string

	KafkaBrokerURL string
	KafkaTopic     string
}

func LoadConfig() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", ":8080"),

		DBHost: getEnv("BLOG_DB_HOST", "localhost"),
		DBPort: getEnv("BLOG_DB_PORT", "5432"),
		DBUser: getEnv("BLOG_DB_USER", "postgres"),
		DBPass: getEnv("BLOG_DB_PASS", "postgres"),
		DBName: getEnv("BLOG_DB_NAME", "blog_db"),

		RedisHost: getEnv("REDIS_HOST", ""),
		RedisPort: getEnv("REDIS_PORT", "6379"),
		RedisPass: getEnv("REDIS_PASS", ""),

		CacheTTL: time.Duration(getEnvInt("INDEX_CACHE_TTL_SECONDS", 200)) * time.Second,

		MediaDir: getEnv("MEDIA_DIR", "media"),

		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		S3Bucket:    getEnv("S3_BUCKET", "blog-media"),

		KafkaBrokerURL: getEnv("KAFKA_BROKER_URL", ""),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "posts"),
	}
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPass, c.DBName,
	)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
