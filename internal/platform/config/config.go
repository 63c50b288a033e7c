package config

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"members/internal/members/codec"
	pkgstrings "members/pkg/platform/strings"
)

// Notifier backends.
const (
	BackendKafka = "kafka"
	BackendRedis = "redis"
	BackendLog   = "log"
)

// Config is the process configuration read once at startup.
type Config struct {
	Addr             string
	ShutdownTimeout  time.Duration
	LogLevel         string
	LogFormat        string
	RoleDecodePolicy codec.Policy
	NotifierBackend  string
	Database         DatabaseConfig
	Kafka            KafkaConfig
	Redis            RedisConfig
}

// DatabaseConfig describes the PostgreSQL connection.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// KafkaConfig describes the change notification topic.
type KafkaConfig struct {
	Brokers            []string
	Topic              string
	ClientID           string
	CreateTopic        bool
	Partitions         int
	ReplicationFactor  int
	ProduceRetries     int
	DeliveryTimeout    time.Duration
	MaxBufferedRecords int
}

// RedisConfig describes the Redis Streams notification channel.
type RedisConfig struct {
	URL          string
	Stream       string
	StreamMaxLen int
	Buffer       int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Load reads a .env file when present, then builds the config from the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var errs []error
	r := reader{errs: &errs}

	cfg := Config{
		Addr:            r.str("MEMBERS_ADDR", ":8080"),
		ShutdownTimeout: r.duration("SHUTDOWN_TIMEOUT", 15*time.Second),
		LogLevel:        r.str("LOG_LEVEL", "info"),
		LogFormat:       r.str("LOG_FORMAT", "json"),
		Database: DatabaseConfig{
			URL:             databaseURL(),
			MaxOpenConns:    r.integer("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    r.integer("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: r.duration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:            pkgstrings.DedupeAndTrim(pkgstrings.SplitTokens(os.Getenv("KAFKA_BROKERS"), ",")),
			Topic:              r.str("KAFKA_TOPIC", "members"),
			ClientID:           r.str("KAFKA_CLIENT_ID", "members-service"),
			CreateTopic:        r.boolean("KAFKA_CREATE_TOPIC", false),
			Partitions:         r.integer("KAFKA_TOPIC_PARTITIONS", 1),
			ReplicationFactor:  r.integer("KAFKA_TOPIC_REPLICATION_FACTOR", 1),
			ProduceRetries:     r.integer("KAFKA_PRODUCE_RETRIES", 3),
			DeliveryTimeout:    r.duration("KAFKA_DELIVERY_TIMEOUT", 30*time.Second),
			MaxBufferedRecords: r.integer("KAFKA_MAX_BUFFERED_RECORDS", 10000),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			Stream:       r.str("REDIS_STREAM", "members"),
			StreamMaxLen: r.integer("REDIS_STREAM_MAXLEN", 0),
			Buffer:       r.integer("REDIS_BUFFER", 256),
			PoolSize:     r.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: r.integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  r.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  r.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: r.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}

	policy, err := codec.ParsePolicy(os.Getenv("ROLE_DECODE_POLICY"))
	if err != nil {
		errs = append(errs, err)
	}
	cfg.RoleDecodePolicy = policy

	cfg.NotifierBackend = strings.ToLower(strings.TrimSpace(os.Getenv("NOTIFIER_BACKEND")))
	if cfg.NotifierBackend == "" {
		cfg.NotifierBackend = BackendLog
		if len(cfg.Kafka.Brokers) > 0 {
			cfg.NotifierBackend = BackendKafka
		}
	}

	errs = append(errs, cfg.validate()...)
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() []error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL or POSTGRES_SERVER/POSTGRES_DATABASE is required"))
	}
	switch c.NotifierBackend {
	case BackendKafka:
		if len(c.Kafka.Brokers) == 0 {
			errs = append(errs, errors.New("KAFKA_BROKERS is required for the kafka notifier"))
		}
	case BackendRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis notifier"))
		}
	case BackendLog:
	default:
		errs = append(errs, fmt.Errorf("NOTIFIER_BACKEND must be one of kafka, redis, log; got %q", c.NotifierBackend))
	}
	if c.Kafka.ProduceRetries < 0 {
		errs = append(errs, errors.New("KAFKA_PRODUCE_RETRIES must not be negative"))
	}
	if c.Kafka.Partitions < 1 || c.Kafka.Partitions > math.MaxInt32 {
		errs = append(errs, errors.New("KAFKA_TOPIC_PARTITIONS must be a positive int32"))
	}
	if c.Kafka.ReplicationFactor < 1 || c.Kafka.ReplicationFactor > math.MaxInt16 {
		errs = append(errs, errors.New("KAFKA_TOPIC_REPLICATION_FACTOR must be a positive int16"))
	}
	if c.Kafka.DeliveryTimeout <= 0 {
		errs = append(errs, errors.New("KAFKA_DELIVERY_TIMEOUT must be positive"))
	}
	if c.Kafka.MaxBufferedRecords < 1 {
		errs = append(errs, errors.New("KAFKA_MAX_BUFFERED_RECORDS must be positive"))
	}
	if c.Redis.StreamMaxLen < 0 {
		errs = append(errs, errors.New("REDIS_STREAM_MAXLEN must not be negative"))
	}
	if c.Redis.Buffer < 1 {
		errs = append(errs, errors.New("REDIS_BUFFER must be positive"))
	}
	return errs
}

// databaseURL prefers DATABASE_URL and otherwise assembles a lib/pq URL from
// the POSTGRES_* variables.
func databaseURL() string {
	if u := strings.TrimSpace(os.Getenv("DATABASE_URL")); u != "" {
		return u
	}
	server := os.Getenv("POSTGRES_SERVER")
	database := os.Getenv("POSTGRES_DATABASE")
	if server == "" || database == "" {
		return ""
	}
	sslmode := os.Getenv("POSTGRES_SSLMODE")
	if sslmode == "" {
		sslmode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     server,
		Path:     "/" + database,
		RawQuery: url.Values{"sslmode": {sslmode}}.Encode(),
	}
	if user := os.Getenv("POSTGRES_USERNAME"); user != "" {
		u.User = url.UserPassword(user, os.Getenv("POSTGRES_PASSWORD"))
	}
	return u.String()
}

type reader struct {
	errs *[]error
}

func (r reader) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (r reader) integer(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*r.errs = append(*r.errs, fmt.Errorf("%s must be an integer: %w", key, err))
		return def
	}
	return n
}

func (r reader) boolean(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*r.errs = append(*r.errs, fmt.Errorf("%s must be a boolean: %w", key, err))
		return def
	}
	return b
}

func (r reader) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*r.errs = append(*r.errs, fmt.Errorf("%s must be a duration: %w", key, err))
		return def
	}
	return d
}
