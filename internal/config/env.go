package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Config - semua setting satu session, dibaca sekali waktu start
type Config struct {
	AppHost string
	AppPort string

	// SessionID identifies this session on the realtime channel.
	SessionID string

	StoreDriver string // memory, file, redis, mysql, sqlite
	DataDir     string
	MySQLDSN    string
	SQLitePath  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RelayDriver string // memory, redis
	Channel     string

	JWTSecret string
	TokenTTL  time.Duration

	SeedFile  string
	Highlight time.Duration
}

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("[config] .env tidak ditemukan, pakai env system")
	}
}

func GetEnv(key string, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvInt(key string, defaultVal int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

// Load reads the configuration from the environment. Call LoadEnv first
// when a .env file should be honoured.
func Load() Config {
	dataDir := GetEnv("MEDCALL_DATA_DIR", "./data")

	return Config{
		AppHost:       GetEnv("APP_HOST", ""),
		AppPort:       GetEnv("APP_PORT", "3000"),
		SessionID:     GetEnv("MEDCALL_SESSION_ID", uuid.NewString()),
		StoreDriver:   GetEnv("MEDCALL_STORE", "file"),
		DataDir:       dataDir,
		MySQLDSN:      GetEnv("MYSQL_DSN", ""),
		SQLitePath:    GetEnv("SQLITE_PATH", dataDir+"/medcall.db"),
		RedisAddr:     GetEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RelayDriver:   GetEnv("MEDCALL_RELAY", "memory"),
		Channel:       GetEnv("MEDCALL_CHANNEL", "medcall_realtime"),
		JWTSecret:     GetEnv("JWT_SECRET", ""),
		TokenTTL:      getEnvDuration("JWT_TTL", 24*time.Hour),
		SeedFile:      GetEnv("MEDCALL_SEED_FILE", ""),
		Highlight:     getEnvDuration("MEDCALL_HIGHLIGHT", 8*time.Second),
	}
}

// Addr is the listen address of the HTTP adapter.
func (c Config) Addr() string {
	return c.AppHost + ":" + c.AppPort
}

// NeedsRedis reports whether the store or the relay talk to Redis.
func (c Config) NeedsRedis() bool {
	return c.StoreDriver == "redis" || c.RelayDriver == "redis"
}
