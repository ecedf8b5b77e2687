package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/honeynil/LavenderPOS/internal/models"
	"github.com/joho/godotenv"
)

const DefaultBarcodeImageURL = "http://www.barcodes4.me/barcode/i2of5/"

type Config struct {
	HTTPAddr        string
	MetricsAddr     string
	PostgresDSN     string
	RedisAddr       string
	KafkaBrokers    []string
	KafkaTopic      string
	JWTSecret       string
	SessionTTL      time.Duration
	AgentTimeout    time.Duration
	BarcodeImageURL string
	OTLPEndpoint    string
	Vendors         []models.Vendor
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("failed to load .env file, using environment", "error", err)
	}

	cfg := &Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		MetricsAddr:     getEnv("METRICS_ADDR", ":9090"),
		PostgresDSN:     getEnv("POSTGRES_DSN", "host=localhost user=postgres password=postgres dbname=lavender sslmode=disable"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers:    strings.Split(getEnv("KAFKA_BROKER", "localhost:9092"), ","),
		KafkaTopic:      getEnv("KAFKA_TOPIC", "purchases"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		BarcodeImageURL: getEnv("BARCODE_IMAGE_URL", DefaultBarcodeImageURL),
		OTLPEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	var err error
	if cfg.SessionTTL, err = getEnvDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.AgentTimeout, err = getEnvDuration("AGENT_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.Vendors, err = ParseVendorSeed(os.Getenv("VENDOR_SEED")); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	slog.Info("config loaded",
		"http_addr", cfg.HTTPAddr,
		"redis_addr", cfg.RedisAddr,
		"kafka_brokers", cfg.KafkaBrokers,
		"kafka_topic", cfg.KafkaTopic,
		"vendors", len(cfg.Vendors))
	return cfg, nil
}

// ParseVendorSeed reads "name|agent_url|secret" entries separated by ';'.
func ParseVendorSeed(seed string) ([]models.Vendor, error) {
	var vendors []models.Vendor
	for _, entry := range strings.Split(seed, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, "|")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid VENDOR_SEED entry %q: want name|agent_url|secret", entry)
		}
		v := models.Vendor{
			Name:     strings.TrimSpace(parts[0]),
			AgentURL: strings.TrimSpace(parts[1]),
			Secret:   strings.TrimSpace(parts[2]),
		}
		if v.Name == "" || v.AgentURL == "" || v.Secret == "" {
			return nil, fmt.Errorf("invalid VENDOR_SEED entry %q: empty field", entry)
		}
		vendors = append(vendors, v)
	}
	return vendors, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
