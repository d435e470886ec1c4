package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config is built once at startup and handed to constructors. Nothing
// below the main package reads the process environment directly, so
// tests can inject mock or real gateway credentials as plain values.
type Config struct {
	Port string

	MySQLUser     string
	MySQLPassword string
	MySQLHost     string
	MySQLPort     string
	MySQLDatabase string

	RedisHost string

	RabbitMQURL      string
	RabbitMQExchange string

	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayBaseURL   string
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return Config{
		Port:              getEnv("PORT", "8080"),
		MySQLUser:         getEnv("MYSQL_USER", "root"),
		MySQLPassword:     getEnv("MYSQL_PASSWORD", ""),
		MySQLHost:         getEnv("MYSQL_HOST", "127.0.0.1"),
		MySQLPort:         getEnv("MYSQL_PORT", "3306"),
		MySQLDatabase:     getEnv("MYSQL_DATABASE", "kidswear"),
		RedisHost:         getEnv("REDIS_HOST", ""),
		RabbitMQURL:       getEnv("RABBITMQ_URL", ""),
		RabbitMQExchange:  getEnv("RABBITMQ_EXCHANGE", "shop.exchange"),
		RazorpayKeyID:     getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
		RazorpayBaseURL:   getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
	}
}

// MockMode reports whether the gateway runs offline: no credentials
// configured means synthetic order ids and no signature enforcement.
func (c Config) MockMode() bool {
	return c.RazorpayKeyID == "" || c.RazorpayKeySecret == ""
}

func (c Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.MySQLUser, c.MySQLPassword, c.MySQLHost, c.MySQLPort, c.MySQLDatabase)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
