package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr     string
	PostgresDSN  string
	RedisAddr    string
	KafkaBrokers []string
	ServiceName  string
	LogLevel     string
	OrderPolicy  string
	Worker       WorkerConfig
}

type WorkerConfig struct {
	Enabled bool
	Group   string
	Workers int
}

// Load reads configuration from the environment. An empty POSTGRES_DSN,
// REDIS_ADDR or KAFKA_BROKERS disables that integration.
func Load() Config {
	return Config{
		HTTPAddr:     getenv("HTTP_ADDR", ":8081"),
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		KafkaBrokers: splitCSV(os.Getenv("KAFKA_BROKERS")),
		ServiceName:  getenv("SERVICE_NAME", "store-api"),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		OrderPolicy:  getenv("ORDER_POLICY", "partial"),
		Worker: WorkerConfig{
			Enabled: getbool("ORDER_WORKER_ENABLED", false),
			Group:   getenv("ORDER_WORKER_GROUP", "store-order-worker"),
			Workers: getint("ORDER_WORKERS", 4),
		},
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func getbool(k string, def bool) bool {
	b, err := strconv.ParseBool(os.Getenv(k))
	if err != nil {
		return def
	}
	return b
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
