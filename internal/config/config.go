package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"github.com/audioforge/studio/internal/session"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Store    StoreConfig
	Postgres PostgresConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Blob     BlobConfig
	Models   ModelsConfig
	Events   EventsConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	StaticDir             string
	RequestTimeoutSeconds int
}

// StoreConfig selects the persistence driver.
type StoreConfig struct {
	Driver string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// MongoConfig holds document store connection values.
type MongoConfig struct {
	URI               string
	Database          string
	MaxPoolSize       uint64
	MinPoolSize       uint64
	ConnectTimeoutSec int
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	StatusTTL time.Duration
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	Secret       string
	BcryptCost   int
	SecureCookie bool
}

// BlobConfig describes the Azure blob container used for audio files.
type BlobConfig struct {
	AccountName   string
	AccountKey    string
	Endpoint      string
	Container     string
	SASTTLMinutes int
}

// Enabled reports whether enough settings are present to reach blob storage.
func (b BlobConfig) Enabled() bool {
	return b.AccountName != "" && b.AccountKey != "" && b.Endpoint != ""
}

// ModelsConfig lists the model-serving APIs generation requests are forwarded to.
type ModelsConfig struct {
	SpeechURL          string
	VoiceConversionURL string
	SoundEffectURL     string
	MelodyURL          string
	MusicURL           string
	APIKey             string
	MusicAPIKey        string
	TimeoutSeconds     int
}

// Timeout returns the per-call timeout for model APIs.
func (m ModelsConfig) Timeout() time.Duration {
	if m.TimeoutSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// EventsConfig configures event forwarding.
type EventsConfig struct {
	NATSURL       string
	SubjectPrefix string
}

var (
	loadOnce   sync.Once
	loadedCfg  *Config
	loadCfgErr error
)

// Get returns the process-wide configuration, loading it on first use.
func Get() (*Config, error) {
	loadOnce.Do(func() {
		loadedCfg, loadCfgErr = Load()
	})
	return loadedCfg, loadCfgErr
}

// Load reads configuration from environment variables, applying defaults where possible.
// There are no defaults for secrets or connection strings.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	secret := os.Getenv("AUTH_SECRET")
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
	}
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("%w: AUTH_SECRET is not set", session.ErrConfiguration)
	}

	env := getEnv("APP_ENV", "development")

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "audio-studio"),
			Env:                   env,
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			StaticDir:             getEnv("APP_STATIC_DIR", "./public"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Mongo: MongoConfig{
			URI:               os.Getenv("MONGODB_URI"),
			Database:          getEnv("MONGODB_DB_NAME", "audio_studio"),
			MaxPoolSize:       uint64(getEnvAsInt("MONGODB_MAX_POOL_SIZE", 50)),
			MinPoolSize:       uint64(getEnvAsInt("MONGODB_MIN_POOL_SIZE", 5)),
			ConnectTimeoutSec: getEnvAsInt("MONGODB_CONNECT_TIMEOUT_SECONDS", 30),
		},
		Redis: RedisConfig{
			Addr:      os.Getenv("REDIS_ADDR"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        redisDB,
			StatusTTL: time.Duration(getEnvAsInt("GENERATION_STATUS_TTL_MINUTES", 60)) * time.Minute,
		},
		Logger: LoggerConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			File:       os.Getenv("LOG_FILE"),
			MaxSizeMB:  getEnvAsInt("LOG_FILE_MAX_SIZE_MB", 100),
			MaxBackups: getEnvAsInt("LOG_FILE_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvAsInt("LOG_FILE_MAX_AGE_DAYS", 28),
		},
		Auth: AuthConfig{
			Secret:       secret,
			BcryptCost:   getEnvAsInt("AUTH_BCRYPT_COST", 10),
			SecureCookie: getEnvAsBool("AUTH_SECURE_COOKIE", env == "production"),
		},
		Blob: BlobConfig{
			AccountName:   os.Getenv("AZURE_STORAGE_ACCOUNT_NAME"),
			AccountKey:    os.Getenv("AZURE_STORAGE_KEY"),
			Endpoint:      os.Getenv("AZURE_BLOB_ENDPOINT"),
			Container:     getEnv("AZURE_CONTAINER_NAME", "works"),
			SASTTLMinutes: getEnvAsInt("AZURE_SAS_TTL_MINUTES", 60),
		},
		Models: ModelsConfig{
			SpeechURL:          os.Getenv("STYLETTS2_API_ROUTE"),
			VoiceConversionURL: os.Getenv("SEED_VC_API_ROUTE"),
			SoundEffectURL:     os.Getenv("MAKE_AN_AUDIO_API_ROUTE"),
			MelodyURL:          os.Getenv("MELODY_MAKER_API_URL"),
			MusicURL:           os.Getenv("LYRICS_TO_MUSIC_API_URL"),
			APIKey:             os.Getenv("BACKEND_API_KEY"),
			MusicAPIKey:        os.Getenv("LYRICS_TO_MUSIC_API_KEY"),
			TimeoutSeconds:     getEnvAsInt("MODEL_API_TIMEOUT_SECONDS", 300),
		},
		Events: EventsConfig{
			NATSURL:       os.Getenv("NATS_URL"),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "audio"),
		},
	}

	cfg.Store.Driver = strings.ToLower(getEnv("STORE_DRIVER", defaultDriver(cfg)))
	switch cfg.Store.Driver {
	case StoreMemory:
	case StorePostgres:
		if cfg.Postgres.DSN == "" {
			return nil, fmt.Errorf("STORE_DRIVER=postgres requires POSTGRES_DSN")
		}
	case StoreMongo:
		if cfg.Mongo.URI == "" {
			return nil, fmt.Errorf("STORE_DRIVER=mongo requires MONGODB_URI")
		}
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.Store.Driver)
	}

	return cfg, nil
}

func defaultDriver(cfg *Config) string {
	switch {
	case cfg.Mongo.URI != "":
		return StoreMongo
	case cfg.Postgres.DSN != "":
		return StorePostgres
	default:
		return StoreMemory
	}
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// IsProduction reports whether the service runs in production mode.
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
