package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	Env      string
	BaseURL  string
	Currency string

	// SMTP relay for order/contact notifications
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string
	SMTPTo   string

	StripeSecretKey     string
	StripeWebhookSecret string

	PayPalClientID     string
	PayPalClientSecret string
	PayPalEnv          string // "live" or "sandbox"
	PayPalWebhookID    string

	// Optional; empty means the in-memory processed-payment store
	RedisURL string

	StaticDir string
}

func Load() Config {
	// .env is optional; real deployments use the environment directly
	_ = godotenv.Load()

	return Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		BaseURL:  getEnv("BASE_URL", "http://localhost:8080"),
		Currency: getEnv("CHECKOUT_CURRENCY", "EUR"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: os.Getenv("SMTP_PORT"),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: os.Getenv("SMTP_FROM"),
		SMTPTo:   getEnv("SMTP_TO", "InfoBant3d@gmail.com"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),

		PayPalClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
		PayPalClientSecret: os.Getenv("PAYPAL_CLIENT_SECRET"),
		PayPalEnv:          getEnv("PAYPAL_ENV", "sandbox"),
		PayPalWebhookID:    os.Getenv("PAYPAL_WEBHOOK_ID"),

		RedisURL: os.Getenv("REDIS_URL"),

		StaticDir: getEnv("STATIC_DIR", "./public"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
