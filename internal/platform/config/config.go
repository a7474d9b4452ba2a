package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	dedupe "onboard/pkg/platform/strings"
)

// Config is the full service configuration, read once at startup.
type Config struct {
	Server   Server
	Database Database
	Redis    RedisConfig
	Kafka    Kafka
	Matching Matching
	Claims   Claims
	Auth     Auth
	Token    Token
	Limits   Limits
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
	// AdminToken guards operator endpoints; empty disables them.
	AdminToken string
}

type Database struct {
	// DSN selects Postgres; empty runs against in-memory stores.
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	RunMigrations   bool
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Kafka struct {
	// Brokers empty disables the outbox relay.
	Brokers       []string
	AuditTopic    string
	RelayInterval time.Duration
	RelayBatch    int
}

type Matching struct {
	// AliasFile seeds the synonyms table at startup when set.
	AliasFile     string
	AliasCacheTTL time.Duration
}

type Claims struct {
	// FurtherChecksClients is the allow-list of clients whose resolutions
	// are held for manual checks when the person has a flagged history.
	FurtherChecksClients []string
	TxTimeout            time.Duration
}

type Auth struct {
	// ClientKeys maps client id to bcrypt hash of its API key.
	ClientKeys map[string]string
}

type Token struct {
	SigningKey string
	Issuer     string
	TTL        time.Duration
}

// Limits bounds per-client request rates. RequestsPerWindow of zero turns
// limiting off.
type Limits struct {
	RequestsPerWindow int
	Window            time.Duration
}

// RegistryCacheTTL bounds how long cached alias lookups live.
var RegistryCacheTTL = 5 * time.Minute

// FromEnv builds the config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var errs []string
	e := env{errs: &errs}

	cfg := Config{
		Server: Server{
			Addr:            e.str("ONBOARD_ADDR", ":8080"),
			ShutdownTimeout: e.duration("ONBOARD_SHUTDOWN_TIMEOUT", 10*time.Second),
			AdminToken:      e.str("ONBOARD_ADMIN_TOKEN", ""),
		},
		Database: Database{
			DSN:             e.str("DATABASE_URL", ""),
			MaxOpenConns:    e.int("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    e.int("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: e.duration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
			RunMigrations:   e.bool("DATABASE_RUN_MIGRATIONS", true),
		},
		Redis: RedisConfig{
			URL:          e.str("REDIS_URL", ""),
			PoolSize:     e.int("REDIS_POOL_SIZE", 10),
			MinIdleConns: e.int("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  e.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  e.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: e.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: Kafka{
			Brokers:       e.list("KAFKA_BROKERS"),
			AuditTopic:    e.str("KAFKA_AUDIT_TOPIC", "onboard.audit"),
			RelayInterval: e.duration("KAFKA_RELAY_INTERVAL", 2*time.Second),
			RelayBatch:    e.int("KAFKA_RELAY_BATCH", 100),
		},
		Matching: Matching{
			AliasFile:     e.str("ALIAS_FILE", ""),
			AliasCacheTTL: e.duration("ALIAS_CACHE_TTL", RegistryCacheTTL),
		},
		Claims: Claims{
			FurtherChecksClients: e.list("FURTHER_CHECKS_CLIENTS"),
			TxTimeout:            e.duration("CLAIM_TX_TIMEOUT", 5*time.Second),
		},
		Auth: Auth{
			ClientKeys: e.pairs("CLIENT_KEYS"),
		},
		Token: Token{
			SigningKey: e.str("TOKEN_SIGNING_KEY", ""),
			Issuer:     e.str("TOKEN_ISSUER", "onboard"),
			TTL:        e.duration("TOKEN_TTL", 15*time.Minute),
		},
		Limits: Limits{
			RequestsPerWindow: e.int("CLIENT_RATE_LIMIT", 600),
			Window:            e.duration("CLIENT_RATE_WINDOW", time.Minute),
		},
	}

	if cfg.Token.SigningKey == "" {
		// Use a default for development - should be overridden in production
		cfg.Token.SigningKey = "dev-secret-key-change-in-production"
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

type env struct {
	errs *[]string
}

func (e env) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (e env) int(key string, def int) int {
	raw := e.str(key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		*e.errs = append(*e.errs, key+" must be an integer")
		return def
	}
	return n
}

func (e env) bool(key string, def bool) bool {
	raw := e.str(key, "")
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		*e.errs = append(*e.errs, key+" must be a boolean")
		return def
	}
	return b
}

func (e env) duration(key string, def time.Duration) time.Duration {
	raw := e.str(key, "")
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		*e.errs = append(*e.errs, key+" must be a positive duration")
		return def
	}
	return d
}

// list parses a comma-separated value, dropping blanks and duplicates.
func (e env) list(key string) []string {
	raw := e.str(key, "")
	if raw == "" {
		return nil
	}
	return dedupe.DedupeAndTrim(strings.Split(raw, ","))
}

// pairs parses "a=x,b=y".
func (e env) pairs(key string) map[string]string {
	out := map[string]string{}
	for _, item := range e.list(key) {
		k, v, ok := strings.Cut(item, "=")
		if !ok || strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			*e.errs = append(*e.errs, key+" entries must be id=value")
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}
