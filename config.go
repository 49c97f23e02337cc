package neo4rs

import "github.com/sumyiren/neo4rs-go/log"

// Defaults, per spec §6/§9 and original_source/lib/src/config.rs. The Rust
// source's own MAX_RETRY_TIME_MS constant (50_000, with a stale "TODO change
// this back to 30 seconds" comment) disagrees with its own test assertion and
// with the spec's documented default; this driver follows the spec and the
// test, not the stale constant.
const (
	DefaultFetchSize             = 200
	DefaultMaxConnections        = 16
	DefaultMaxRetryTimeMs        = 30_000
	DefaultInitialRetryDelayMs   = 1_000
	DefaultRetryDelayMultiplier  = 2.0
	DefaultRetryDelayJitterFactor = 0.2
	defaultUserAgent             = "neo4rs-go/1"
)

// Config holds everything needed to dial, authenticate, and operate a pool of
// connections to a single server. Build one with ConfigBuilder; the zero
// Config is not valid.
//
// Ground truth: jackc/pgx/v5's pgconn.Config / pgconn/config.go, generalized
// from Postgres's connection-string parsing to this driver's URI+builder
// shape (the original Rust driver never parses a DSN string either — see
// original_source/lib/src/config.rs).
type Config struct {
	URI      string
	User     string
	Password string
	Database string

	FetchSize       int64
	MaxConnections  int32
	MaxRetryTimeMs  int64

	InitialRetryDelayMs    int64
	RetryDelayMultiplier   float64
	RetryDelayJitterFactor float64

	UserAgent string
	Logger    log.Logger
	LogLevel  log.Level
}

// ConfigBuilder builds a Config through chained setters, mirroring
// original_source/lib/src/config.rs's ConfigBuilder and the fluent builder
// shape pgx's own config helpers use for optional fields.
type ConfigBuilder struct {
	cfg Config
}

// NewConfigBuilder returns a builder pre-populated with this driver's
// defaults; callers only need to override what matters to them.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{cfg: Config{
		FetchSize:              DefaultFetchSize,
		MaxConnections:         DefaultMaxConnections,
		MaxRetryTimeMs:         DefaultMaxRetryTimeMs,
		InitialRetryDelayMs:    DefaultInitialRetryDelayMs,
		RetryDelayMultiplier:   DefaultRetryDelayMultiplier,
		RetryDelayJitterFactor: DefaultRetryDelayJitterFactor,
		UserAgent:              defaultUserAgent,
		Logger:                 log.NopLogger{},
		LogLevel:               log.LevelNone,
	}}
}

func (b *ConfigBuilder) WithURI(uri string) *ConfigBuilder {
	b.cfg.URI = uri
	return b
}

func (b *ConfigBuilder) WithUser(user string) *ConfigBuilder {
	b.cfg.User = user
	return b
}

func (b *ConfigBuilder) WithPassword(password string) *ConfigBuilder {
	b.cfg.Password = password
	return b
}

func (b *ConfigBuilder) WithDB(db string) *ConfigBuilder {
	b.cfg.Database = db
	return b
}

func (b *ConfigBuilder) WithFetchSize(n int64) *ConfigBuilder {
	b.cfg.FetchSize = n
	return b
}

func (b *ConfigBuilder) WithMaxConnections(n int32) *ConfigBuilder {
	b.cfg.MaxConnections = n
	return b
}

func (b *ConfigBuilder) WithMaxRetryTime(ms int64) *ConfigBuilder {
	b.cfg.MaxRetryTimeMs = ms
	return b
}

func (b *ConfigBuilder) WithInitialRetryDelay(ms int64) *ConfigBuilder {
	b.cfg.InitialRetryDelayMs = ms
	return b
}

func (b *ConfigBuilder) WithRetryDelayMultiplier(m float64) *ConfigBuilder {
	b.cfg.RetryDelayMultiplier = m
	return b
}

func (b *ConfigBuilder) WithRetryDelayJitterFactor(j float64) *ConfigBuilder {
	b.cfg.RetryDelayJitterFactor = j
	return b
}

func (b *ConfigBuilder) WithUserAgent(agent string) *ConfigBuilder {
	b.cfg.UserAgent = agent
	return b
}

func (b *ConfigBuilder) WithLogger(logger log.Logger, level log.Level) *ConfigBuilder {
	b.cfg.Logger = logger
	b.cfg.LogLevel = level
	return b
}

// Build validates the accumulated fields and returns the finished Config.
func (b *ConfigBuilder) Build() (*Config, error) {
	cfg := b.cfg

	if cfg.URI == "" {
		return nil, &InvalidConfigError{Reason: "URI is required"}
	}
	if cfg.User == "" {
		return nil, &InvalidConfigError{Reason: "User is required"}
	}
	if cfg.FetchSize <= 0 {
		return nil, &InvalidConfigError{Reason: "FetchSize must be > 0"}
	}
	if cfg.MaxConnections <= 0 {
		return nil, &InvalidConfigError{Reason: "MaxConnections must be > 0"}
	}
	if cfg.MaxRetryTimeMs <= 0 {
		return nil, &InvalidConfigError{Reason: "MaxRetryTimeMs must be > 0"}
	}
	if cfg.InitialRetryDelayMs <= 0 {
		return nil, &InvalidConfigError{Reason: "InitialRetryDelayMs must be > 0"}
	}
	if cfg.RetryDelayMultiplier <= 0 {
		return nil, &InvalidConfigError{Reason: "RetryDelayMultiplier must be > 0"}
	}

	return &cfg, nil
}
