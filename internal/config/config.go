package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	EventsNone     = "none"
	EventsKafka    = "kafka"
	EventsRabbitMQ = "rabbitmq"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Log      LogConfig      `yaml:"log"`
	Store    StoreConfig    `yaml:"store"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Events   EventsConfig   `yaml:"events"`
	Auth     AuthConfig     `yaml:"auth"`
	CORS     CORSConfig     `yaml:"cors"`
}

type AppConfig struct {
	Name string `yaml:"name"`
	Port string `yaml:"port"`
	Env  string `yaml:"env"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"`
}

type MongoConfig struct {
	URI      string        `yaml:"uri"`
	Database string        `yaml:"database"`
	Timeout  time.Duration `yaml:"timeout"`
}

type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	DBName          string        `yaml:"dbname"`
	SSLMode         string        `yaml:"sslmode"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
}

// DSN returns a libpq keyword/value connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type EventsConfig struct {
	Driver        string   `yaml:"driver"`
	KafkaBrokers  []string `yaml:"kafka_brokers"`
	KafkaTopic    string   `yaml:"kafka_topic"`
	RabbitMQURL   string   `yaml:"rabbitmq_url"`
	RabbitMQQueue string   `yaml:"rabbitmq_queue"`
	BufferSize    int      `yaml:"buffer_size"`
	ProducerName  string   `yaml:"producer_name"`
}

type AuthConfig struct {
	JWTSecret   string        `yaml:"jwt_secret"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
	AdminEmails []string      `yaml:"admin_emails"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

func defaults() *Config {
	cfg := &Config{}
	cfg.App.Name = "garage-api"
	cfg.App.Port = "8080"
	cfg.App.Env = "development"
	cfg.Log.Level = "info"
	cfg.Log.Format = "console"
	cfg.Store.Driver = StoreMongo
	cfg.Mongo.URI = "mongodb://localhost:27017"
	cfg.Mongo.Database = "garage"
	cfg.Mongo.Timeout = 10 * time.Second
	cfg.Postgres.Host = "localhost"
	cfg.Postgres.Port = "5432"
	cfg.Postgres.User = "postgres"
	cfg.Postgres.DBName = "garage"
	cfg.Postgres.SSLMode = "disable"
	cfg.Postgres.MaxConns = 10
	cfg.Postgres.MinConns = 1
	cfg.Postgres.MaxConnLifetime = time.Hour
	cfg.Redis.TTL = 5 * time.Minute
	cfg.Events.Driver = EventsNone
	cfg.Events.KafkaTopic = "garage.events"
	cfg.Events.RabbitMQQueue = "garage.events"
	cfg.Events.BufferSize = 256
	cfg.Events.ProducerName = "garage-api"
	cfg.Auth.TokenTTL = 24 * time.Hour
	cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	return cfg
}

// NewConfig loads configuration from CONFIG_FILE (optional YAML), a local .env file and the process environment.
func NewConfig() (*Config, error) {
	return Load(os.Getenv("CONFIG_FILE"), ".env")
}

// Load applies, in order: built-in defaults, the YAML file at yamlPath, the dotenv file at envPath and
// the process environment. Empty paths are skipped; a missing .env file is not an error.
func Load(yamlPath, envPath string) (*Config, error) {
	cfg := defaults()

	if yamlPath != "" {
		file, err := os.Open(yamlPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer file.Close()

		if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("invalid config file: %w", err)
		}
	}

	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.App.Port, "APP_PORT")
	setString(&cfg.App.Env, "APP_ENV")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")
	setString(&cfg.Store.Driver, "STORE_DRIVER")

	setString(&cfg.Mongo.URI, "MONGO_URI")
	setString(&cfg.Mongo.Database, "MONGO_DB")

	setString(&cfg.Postgres.Host, "DB_HOST")
	setString(&cfg.Postgres.Port, "DB_PORT")
	setString(&cfg.Postgres.User, "DB_USER")
	setString(&cfg.Postgres.Password, "DB_PASSWORD")
	setString(&cfg.Postgres.DBName, "DB_NAME")
	setString(&cfg.Postgres.SSLMode, "DB_SSLMODE")

	if v := os.Getenv("DB_MAX_CONNS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid DB_MAX_CONNS %q: %w", v, err)
		}
		cfg.Postgres.MaxConns = int32(n)
	}

	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	if err := setDuration(&cfg.Redis.TTL, "CACHE_TTL"); err != nil {
		return err
	}

	setString(&cfg.Events.Driver, "EVENTS_DRIVER")
	setList(&cfg.Events.KafkaBrokers, "KAFKA_BROKERS")
	setString(&cfg.Events.KafkaTopic, "KAFKA_TOPIC")
	setString(&cfg.Events.RabbitMQURL, "RABBITMQ_URL")
	setString(&cfg.Events.RabbitMQQueue, "RABBITMQ_QUEUE")

	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	if err := setDuration(&cfg.Auth.TokenTTL, "JWT_TTL"); err != nil {
		return err
	}
	setList(&cfg.Auth.AdminEmails, "ADMIN_EMAILS")

	setList(&cfg.CORS.AllowedOrigins, "CORS_ALLOWED_ORIGINS")

	return nil
}

// Validate checks the combination of drivers and the settings each one needs.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreMongo:
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			return errors.New("MONGO_URI and MONGO_DB are required for the mongo store")
		}
	case StorePostgres:
		if c.Postgres.Host == "" || c.Postgres.DBName == "" || c.Postgres.User == "" {
			return errors.New("DB_HOST, DB_NAME and DB_USER are required for the postgres store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}

	switch c.Events.Driver {
	case EventsNone, "":
		c.Events.Driver = EventsNone
	case EventsKafka:
		if len(c.Events.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required when EVENTS_DRIVER=kafka")
		}
	case EventsRabbitMQ:
		if c.Events.RabbitMQURL == "" {
			return errors.New("RABBITMQ_URL is required when EVENTS_DRIVER=rabbitmq")
		}
	default:
		return fmt.Errorf("unknown EVENTS_DRIVER %q", c.Events.Driver)
	}

	if c.Auth.JWTSecret == "" {
		if c.IsProduction() {
			return errors.New("JWT_SECRET is required in production")
		}
		c.Auth.JWTSecret = "dev-secret"
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setList(dst *[]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}

	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}
