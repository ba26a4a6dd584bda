package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPPort int

	JWTSecret       string
	TokenTTLMinutes int

	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	MigrationsDir    string

	RedisAddr string

	CatalogBaseURL string
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first; variables already set win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTPPort: getEnvInt("HTTP_PORT", 8080),

		JWTSecret:       getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTLMinutes: getEnvInt("TOKEN_TTL_MINUTES", 60),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvInt("POSTGRES_PORT", 5432),
		PostgresUser:     getEnv("POSTGRES_USER", "tienda"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "tiendapassword"),
		PostgresDB:       getEnv("POSTGRES_DB", "tienda_db"),
		MigrationsDir:    getEnv("MIGRATIONS_DIR", "migrations"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		CatalogBaseURL: getEnv("CATALOG_BASE_URL", "https://fakestoreapi.com"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}
