package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServerPort  string
	Environment string

	// Источник данных виджета: "cached" (снимок от приложения) или "remote" (прямые запросы)
	DataSource    string
	RemoteBackend string // minio | sql | firestore

	StoreBackend string // memory | sqlite | postgres | redis
	StorePrefix  string
	DBDSN        string
	SQLitePath   string
	RedisAddr    string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool
	SourceBucket   string // Бакет для исходных XLSX файлов

	FirestoreProjectID       string
	FirestoreCredentialsFile string

	CacheTTL        time.Duration
	RefreshInterval time.Duration
	JWTSecret       string
	Location        *time.Location
	CORSOrigins     []string

	LogLevel      string
	LogDir        string
	LogToConsole  bool
	LogMaxSizeMB  int
	LogMaxBackups int
}

func Load() *Config {
	cacheMinutes, _ := strconv.Atoi(getEnv("CACHE_TTL_MINUTES", "10"))
	refreshMinutes, _ := strconv.Atoi(getEnv("REFRESH_INTERVAL_MINUTES", "30"))
	useSSL, _ := strconv.ParseBool(getEnv("MINIO_USE_SSL", "false"))
	logToConsole, _ := strconv.ParseBool(getEnv("LOG_TO_CONSOLE", "true"))
	logMaxSize, _ := strconv.Atoi(getEnv("LOG_MAX_SIZE_MB", "10"))
	logMaxBackups, _ := strconv.Atoi(getEnv("LOG_MAX_BACKUPS", "5"))

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "Local"))
	if err != nil {
		loc = time.Local
	}

	return &Config{
		ServerPort:               getEnv("SERVER_PORT", "8080"),
		Environment:              getEnv("ENVIRONMENT", "development"),
		DataSource:               getEnv("DATA_SOURCE", "cached"),
		RemoteBackend:            getEnv("REMOTE_BACKEND", "minio"),
		StoreBackend:             getEnv("STORE_BACKEND", "memory"),
		StorePrefix:              getEnv("STORE_PREFIX", "widget."),
		DBDSN:                    getEnv("DB_DSN", ""),
		SQLitePath:               getEnv("SQLITE_PATH", "data/widget.db"),
		RedisAddr:                getEnv("REDIS_ADDR", "localhost:6379"),
		MinIOEndpoint:            getEnv("MINIO_ENDPOINT", "minio:9000"),
		MinIOAccessKey:           getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinIOSecretKey:           getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinIOBucket:              getEnv("MINIO_BUCKET", "agenda-widget"),
		MinIOUseSSL:              useSSL,
		SourceBucket:             getEnv("SOURCE_BUCKET", "file-upload"),
		FirestoreProjectID:       getEnv("FIRESTORE_PROJECT_ID", ""),
		FirestoreCredentialsFile: getEnv("FIRESTORE_CREDENTIALS_FILE", ""),
		CacheTTL:                 time.Duration(cacheMinutes) * time.Minute,
		RefreshInterval:          time.Duration(refreshMinutes) * time.Minute,
		JWTSecret:                getEnv("JWT_SECRET", ""),
		Location:                 loc,
		CORSOrigins:              splitList(getEnv("CORS_ORIGINS", "*")),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		LogDir:                   getEnv("LOG_DIR", "logs"),
		LogToConsole:             logToConsole,
		LogMaxSizeMB:             logMaxSize,
		LogMaxBackups:            logMaxBackups,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
