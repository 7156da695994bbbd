package config

import (
	"fmt"
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/orbtao/connectify/backend/pkg/storage"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	App struct {
		Env          string `env:"APP_ENV" env-default:"development"`
		Port         string `env:"PORT" env-default:"8080"`
		SentryDSN    string `env:"SENTRY_DSN"`
		FeedPageSize int    `env:"FEED_PAGE_SIZE" env-default:"10"`
		BodyLimit    string `env:"BODY_LIMIT" env-default:"25M"`
	}
	Store struct {
		Driver        string `env:"STORE_DRIVER" env-default:"mongo"`
		// MongoURI must reach a replica set or a sharded cluster. InitDB refuses
		// a standalone server.
		MongoURI      string `env:"MONGO_URI" env-default:"mongodb://localhost:27017/?replicaSet=rs0" env-description:"replica set or sharded cluster; follows run in transactions"`
		MongoDatabase string `env:"MONGO_DATABASE" env-default:"connectify"`
		PostgresURL   string `env:"POSTGRES_CONN_STR"`
	}
	Auth struct {
		JWTSecret               string        `env:"JWT_SECRET" env-default:"supersecretjwtkey"`
		TokenTTL                time.Duration `env:"TOKEN_TTL" env-default:"72h"`
		CookieName              string        `env:"SESSION_COOKIE" env-default:"connectify_session"`
		FirebaseCredentialsPath string        `env:"FIREBASE_CREDENTIALS_PATH"`
	}
	Storage struct {
		Endpoint      string `env:"S3_ENDPOINT"`
		Region        string `env:"S3_REGION" env-default:"auto"`
		Bucket        string `env:"S3_BUCKET"`
		AccessKey     string `env:"S3_ACCESS_KEY"`
		SecretKey     string `env:"S3_SECRET_KEY"`
		PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`
	}
	Jobs struct {
		StorySweepEnabled  bool          `env:"STORY_SWEEP_ENABLED" env-default:"false"`
		StorySweepInterval time.Duration `env:"STORY_SWEEP_INTERVAL" env-default:"1h"`
	}
	RateLimit struct {
		Requests int           `env:"RATE_LIMIT_REQUESTS" env-default:"30"`
		Per      time.Duration `env:"RATE_LIMIT_PER" env-default:"1m"`
		Burst    int           `env:"RATE_LIMIT_BURST" env-default:"10"`
	}
}

// Load reads the process environment, after merging a .env file when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		help, _ := cleanenv.GetDescription(cfg, nil)
		return nil, fmt.Errorf("failed to read configuration: %w\n%s", err, help)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case DriverMongo:
		if c.Store.PostgresURL == "" {
			return fmt.Errorf("POSTGRES_CONN_STR environment variable not set")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.StorageEnabled() {
		if _, err := storage.PublicBaseURL(c.S3Options()); err != nil {
			return err
		}
	}
	if c.App.FeedPageSize < 1 {
		return fmt.Errorf("FEED_PAGE_SIZE must be positive")
	}
	return nil
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// StorageEnabled reports whether an S3 compatible bucket is configured for uploads.
func (c *Config) StorageEnabled() bool {
	return c.Storage.Bucket != "" && c.Storage.AccessKey != "" && c.Storage.SecretKey != ""
}

func (c *Config) S3Options() storage.S3Options {
	return storage.S3Options{
		Endpoint:      c.Storage.Endpoint,
		Region:        c.Storage.Region,
		Bucket:        c.Storage.Bucket,
		AccessKey:     c.Storage.AccessKey,
		SecretKey:     c.Storage.SecretKey,
		PublicBaseURL: c.Storage.PublicBaseURL,
	}
}
