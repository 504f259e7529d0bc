package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr           string
	WorkbookPath   string
	CandidatesPath string
	BackupDir      string
	BackupInterval time.Duration

	JWTSecret            string
	OperatorName         string
	OperatorPasswordHash string

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	KafkaBroker   string
	KafkaTopic    string
	SentryDSN     string
	Environment   string
}

// Load reads a .env file when present and then the environment. Unset
// variables take their defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:                 get("REGISTRY_ADDR", ":8080"),
		WorkbookPath:         get("REGISTRY_WORKBOOK", "caregivers_database.xlsx"),
		CandidatesPath:       get("REGISTRY_CANDIDATES", "unverified_caregivers.xlsx"),
		BackupDir:            get("REGISTRY_BACKUP_DIR", "backups"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		OperatorName:         get("OPERATOR_NAME", "admin"),
		OperatorPasswordHash: os.Getenv("OPERATOR_PASSWORD_HASH"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		KafkaBroker:          os.Getenv("KAFKA_BROKER"),
		KafkaTopic:           get("KAFKA_TOPIC", "registry-events"),
		SentryDSN:            os.Getenv("SENTRY_DSN"),
		Environment:          get("APP_ENV", "development"),
	}
	if v := os.Getenv("REGISTRY_BACKUP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("REGISTRY_BACKUP_INTERVAL: %w", err)
		}
		cfg.BackupInterval = d
	}
	return cfg, nil
}

func get(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
