package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string
	HTTPPort     string
	PostgresDSN  string
	KafkaBrokers []string

	SupervisorRole string

	EnableOutboxRelay    bool
	EnableMinutesRender  bool
	OutboxBatchSize      int
	WorkerPollIntervalMS int
}

func Load() (Config, error) {
	// A local .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "scrutin"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	supervisor := strings.TrimSpace(os.Getenv("SUPERVISOR_ROLE"))
	if supervisor == "" {
		supervisor = "SUPERVISEUR_CENA"
	}

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	return Config{
		ServiceName:    service,
		HTTPPort:       port,
		PostgresDSN:    os.Getenv("POSTGRES_DSN"),
		KafkaBrokers:   brokers,
		SupervisorRole: supervisor,

		EnableOutboxRelay:    envBool("ENABLE_OUTBOX_RELAY", true),
		EnableMinutesRender:  envBool("ENABLE_MINUTES_RENDER", true),
		OutboxBatchSize:      envInt("OUTBOX_BATCH_SIZE", 100),
		WorkerPollIntervalMS: envInt("WORKER_POLL_INTERVAL_MS", 2000),
	}, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value := 0
	for _, r := range raw {
		if r < '0' || r > '9' {
			return fallback
		}
		value = value*10 + int(r-'0')
	}
	if value <= 0 {
		return fallback
	}
	return value
}
