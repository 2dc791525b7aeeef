package configs

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var (
	SERVER_PORT   string
	WORKER_POOL   int
	SERVICE_NAME  string
	LOG_LEVEL     string
	OTEL_URL      string
	ADMIN_API_KEY string

	DB_URI                   string
	DB_NAME                  string
	DB_MAXPOOLSIZE           uint64
	DB_MINPOOLSIZE           uint64
	DB_MAXIDLETIME_INMINUTES int

	KAFKA_SERVER             string
	KAFKA_TOPIC              string
	KAFKA_CLIENT_ID          string
	KAFKA_SECURITY_PROTOCOL  string
	KAFKA_SASL_MECHANISM     string
	KAFKA_SASL_USERNAME      string
	KAFKA_SASL_PASSWORD      string
	KAFKA_SESSION_TIMEOUT_MS int

	REDIS_ADDR                    string
	REDIS_PASSWORD                string
	REDIS_DB                      int
	REDIS_CONNECT_TIMEOUT_SECONDS int

	LEDGER_ACCOUNT   string
	TREASURY_ACCOUNT string
	PROOF_SECRET     string
	PARAMS_FILE      string
)

type RedisConfig struct {
	Addr           string        `yaml:"addr"`
	Password       string        `yaml:"password"`
	DB             int           `yaml:"db"`
	ConnectTimeout time.Duration `yaml:"connect_timeout_seconds"`
}

// LoadEnv loads the environment variables from a .env file.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	LoadEnvValues()

	return nil
}

func LoadEnvValues() {
	SERVER_PORT = GetEnv("SERVER_PORT", "8080")
	WORKER_POOL, _ = strconv.Atoi(GetEnv("WORKER_POOL", "5"))
	SERVICE_NAME = GetEnv("SERVICE_NAME", "kudosledger")
	LOG_LEVEL = GetEnv("LOG_LEVEL", "INFO")
	OTEL_URL = GetEnv("OTEL_URL", "")
	ADMIN_API_KEY = GetEnv("ADMIN_API_KEY", "")

	DB_URI = GetEnv("DB_URI", "mongodb://localhost:27017")
	DB_NAME = GetEnv("DB_NAME", "KudosLedger")
	DB_MAXPOOLSIZE, _ = strconv.ParseUint(GetEnv("DB_MAXPOOLSIZE", "100"), 10, 64)
	DB_MINPOOLSIZE, _ = strconv.ParseUint(GetEnv("DB_MINPOOLSIZE", "10"), 10, 64)
	DB_MAXIDLETIME_INMINUTES, _ = strconv.Atoi(GetEnv("DB_MAXIDLETIME_INMINUTES", "5"))

	KAFKA_SERVER = GetEnv("KAFKA_SERVER", "")
	KAFKA_TOPIC = GetEnv("KAFKA_TOPIC", "kudos-loan-events")
	KAFKA_CLIENT_ID = GetEnv("KAFKA_CLIENT_ID", "kudosledger")
	KAFKA_SECURITY_PROTOCOL = GetEnv("KAFKA_SECURITY_PROTOCOL", "")
	KAFKA_SASL_MECHANISM = GetEnv("KAFKA_SASL_MECHANISM", "")
	KAFKA_SASL_USERNAME = GetEnv("KAFKA_SASL_USERNAME", "")
	KAFKA_SASL_PASSWORD = GetEnv("KAFKA_SASL_PASSWORD", "")
	KAFKA_SESSION_TIMEOUT_MS, _ = strconv.Atoi(GetEnv("KAFKA_SESSION_TIMEOUT_MS", "45000"))

	REDIS_ADDR = GetEnv("REDIS_ADDR", "localhost:6379")
	REDIS_PASSWORD = GetEnv("REDIS_PASSWORD", "")
	REDIS_DB, _ = strconv.Atoi(GetEnv("REDIS_DB", "0"))
	REDIS_CONNECT_TIMEOUT_SECONDS, _ = strconv.Atoi(GetEnv("REDIS_CONNECT_TIMEOUT_SECONDS", "5"))

	LEDGER_ACCOUNT = GetEnv("LEDGER_ACCOUNT", "ledger")
	TREASURY_ACCOUNT = GetEnv("TREASURY_ACCOUNT", "treasury")
	PROOF_SECRET = GetEnv("PROOF_SECRET", "")
	PARAMS_FILE = GetEnv("PARAMS_FILE", "configs/params.yaml")
}

// GetRedisConfig returns a RedisConfig struct populated from environment variables
func GetRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:           REDIS_ADDR,
		Password:       REDIS_PASSWORD,
		DB:             REDIS_DB,
		ConnectTimeout: time.Duration(REDIS_CONNECT_TIMEOUT_SECONDS) * time.Second,
	}
}

// GetEnv fetches the value of an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	return value
}
