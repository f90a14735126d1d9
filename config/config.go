package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// MongoDB configuration.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Firebase service account used for FCM pushes.
	FirebaseCredentialsPath string `mapstructure:"FIREBASE_CREDENTIALS_PATH"`

	// Ledger storage: "mongo" or "leveldb".
	LedgerBackend     string `mapstructure:"LEDGER_BACKEND"`
	LedgerLevelDBPath string `mapstructure:"LEDGER_LEVELDB_PATH"`

	MatchCacheTTLSeconds int    `mapstructure:"MATCH_CACHE_TTL_SECONDS"`
	StoreTimeoutSeconds  int    `mapstructure:"STORE_TIMEOUT_SECONDS"`
	CooldownSweepCron    string `mapstructure:"COOLDOWN_SWEEP_CRON"`
}

var AppConfig Config

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "lifedrop")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 3)
	viper.SetDefault("FIREBASE_CREDENTIALS_PATH", "serviceAccountKey.json")
	viper.SetDefault("LEDGER_BACKEND", "mongo")
	viper.SetDefault("LEDGER_LEVELDB_PATH", "./data/ledger")
	viper.SetDefault("MATCH_CACHE_TTL_SECONDS", 30)
	viper.SetDefault("STORE_TIMEOUT_SECONDS", 10)
	viper.SetDefault("COOLDOWN_SWEEP_CRON", "0 8 * * *")
}

func LoadConfig() {
	// A local .env is optional; real environment variables win.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// StoreTimeout bounds every datastore and network call.
func StoreTimeout() time.Duration {
	if AppConfig.StoreTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(AppConfig.StoreTimeoutSeconds) * time.Second
}

// MatchCacheTTL is how long a computed match list may be served from cache.
// Zero disables the cache.
func MatchCacheTTL() time.Duration {
	if AppConfig.MatchCacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(AppConfig.MatchCacheTTLSeconds) * time.Second
}
