package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full process configuration assembled by FromEnv.
type Config struct {
	Server    Server
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Scheduler SchedulerConfig
	Outbox    OutboxConfig
	Evidence  EvidenceConfig
	Policy    PolicyConfig
	Signature SignatureConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// DatabaseConfig selects Postgres when URL is set; otherwise stores are in memory.
type DatabaseConfig struct {
	URL             string
	MaxConns        int32
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig enables the notification dedupe guard when URL is set.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	DedupeTTL    time.Duration
}

// KafkaConfig enables the Kafka dispatcher when Brokers is set.
type KafkaConfig struct {
	Brokers           string
	ClientID          string
	Topic             string
	Partitions        int32
	ReplicationFactor int16
	ProduceTimeout    time.Duration
}

type SchedulerConfig struct {
	PollInterval time.Duration
	Workers      int
	BatchSize    int
	MaxRetries   uint64
}

type OutboxConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	Lease        time.Duration
}

// EvidenceConfig selects the evidence backend. SQLitePath wins over Postgres
// for single-station deployments.
type EvidenceConfig struct {
	Algorithm   string
	HashWorkers int64
	MaxBytes    int64
	SQLitePath  string
}

// PolicyConfig points at the keyword and station tables. Empty paths use the
// built-in defaults.
type PolicyConfig struct {
	KeywordsFile string
	StationsFile string
}

type SignatureConfig struct {
	SigningKey   string
	ChallengeTTL time.Duration
	Issuer       string
}

// AuthConfig verifies officer bearer tokens. With an empty OfficerTokenKey the
// server trusts the X-Officer-ID header, which is for local development only.
type AuthConfig struct {
	OfficerTokenKey string
	OfficerIssuer   string
	AdminToken      string
}

// RateLimitConfig throttles e-FIR submissions per client IP. A zero
// SubmitLimit disables the limiter.
type RateLimitConfig struct {
	SubmitLimit  int
	SubmitWindow time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            envString("NYAYA_ADDR", ":8080"),
			ShutdownTimeout: envDuration("NYAYA_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxConns:        int32(envInt("DATABASE_MAX_CONNS", 20)),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			DedupeTTL:    envDuration("NOTIFY_DEDUPE_TTL", 7*24*time.Hour),
		},
		Kafka: KafkaConfig{
			Brokers:           os.Getenv("KAFKA_BROKERS"),
			ClientID:          envString("KAFKA_CLIENT_ID", "nyaya"),
			Topic:             envString("KAFKA_NOTIFY_TOPIC", "efir.notifications"),
			Partitions:        int32(envInt("KAFKA_PARTITIONS", 6)),
			ReplicationFactor: int16(envInt("KAFKA_REPLICATION_FACTOR", 1)),
			ProduceTimeout:    envDuration("KAFKA_PRODUCE_TIMEOUT", 10*time.Second),
		},
		Scheduler: SchedulerConfig{
			PollInterval: envDuration("SCHEDULER_POLL_INTERVAL", time.Minute),
			Workers:      envInt("SCHEDULER_WORKERS", 8),
			BatchSize:    envInt("SCHEDULER_BATCH_SIZE", 1000),
			MaxRetries:   uint64(envInt("SCHEDULER_MAX_RETRIES", 3)),
		},
		Outbox: OutboxConfig{
			PollInterval: envDuration("OUTBOX_POLL_INTERVAL", time.Second),
			BatchSize:    envInt("OUTBOX_BATCH_SIZE", 50),
			MaxAttempts:  envInt("OUTBOX_MAX_ATTEMPTS", 10),
			Lease:        envDuration("OUTBOX_LEASE", 30*time.Second),
		},
		Evidence: EvidenceConfig{
			Algorithm:   envString("EVIDENCE_HASH_ALGORITHM", "SHA-256"),
			HashWorkers: int64(envInt("EVIDENCE_HASH_WORKERS", 4)),
			MaxBytes:    int64(envInt("EVIDENCE_MAX_BYTES", 512<<20)),
			SQLitePath:  os.Getenv("EVIDENCE_SQLITE_PATH"),
		},
		Policy: PolicyConfig{
			KeywordsFile: os.Getenv("POLICY_KEYWORDS_FILE"),
			StationsFile: os.Getenv("STATIONS_FILE"),
		},
		Signature: SignatureConfig{
			// Development default; override in every deployed environment.
			SigningKey:   envString("SIGNATURE_SIGNING_KEY", "dev-secret-key-change-in-production"),
			ChallengeTTL: envDuration("SIGNATURE_CHALLENGE_TTL", 10*time.Minute),
			Issuer:       envString("SIGNATURE_ISSUER", "nyaya-esign"),
		},
		Auth: AuthConfig{
			OfficerTokenKey: os.Getenv("OFFICER_TOKEN_KEY"),
			OfficerIssuer:   envString("OFFICER_TOKEN_ISSUER", "nyaya-cctns"),
			AdminToken:      os.Getenv("ADMIN_TOKEN"),
		},
		RateLimit: RateLimitConfig{
			SubmitLimit:  envInt("RATELIMIT_SUBMIT_LIMIT", 20),
			SubmitWindow: envDuration("RATELIMIT_SUBMIT_WINDOW", time.Hour),
		},
		Logging: LoggingConfig{
			Level:  envString("LOG_LEVEL", "info"),
			Format: envString("LOG_FORMAT", "text"),
		},
	}
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
