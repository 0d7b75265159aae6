package executor

import (
	"context"
	"errors"
	"log/slog"

	"github.com/syssam/strata"
	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/sql"
)

// DB is a connection pool opened by Connect. It implements dialect.Conn
// with the layers selected by the options applied.
type DB struct {
	dialect.Conn
	stats *sql.StatsDriver
	cache *CachedConn
}

// Option configures Connect.
type Option func(*config)

type config struct {
	logger     *slog.Logger
	connectors []dialect.Connector
	stats      []sql.StatsOption
	withStats  bool
	cache      strata.Cache
	cacheOpts  []CacheOption
}

// WithLogger logs every statement at debug level and cache failures at
// warn level. It is used when dialect.ConnectOptions.Logger is nil.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithConnectors replaces the connectors tried by Connect. By default the
// connectors of package dialect/sql are used.
func WithConnectors(cs ...dialect.Connector) Option {
	return func(c *config) {
		c.connectors = cs
	}
}

// WithStats collects query statistics, see DB.Stats.
func WithStats(opts ...sql.StatsOption) Option {
	return func(c *config) {
		c.withStats = true
		c.stats = append(c.stats, opts...)
	}
}

// WithCache serves reads from the given cache, see CachedConn.
func WithCache(cache strata.Cache, opts ...CacheOption) Option {
	return func(c *config) {
		c.cache = cache
		c.cacheOpts = append(c.cacheOpts, opts...)
	}
}

// Connect opens a connection pool with the first connector that accepts
// opts.URL. Statistics are collected below the cache, so cache hits are
// not counted as queries.
//
//	db, err := executor.Connect(ctx, dialect.ConnectOptions{URL: "sqlite::memory:"},
//		executor.WithStats(sql.WithSlowQueryLog(nil)),
//	)
func Connect(ctx context.Context, opts dialect.ConnectOptions, options ...Option) (*DB, error) {
	cfg := config{connectors: sql.Connectors()}
	for _, opt := range options {
		opt(&cfg)
	}
	if opts.Logger == nil {
		opts.Logger = cfg.logger
	}
	var connector dialect.Connector
	for _, c := range cfg.connectors {
		if c.Accepts(opts.URL) {
			connector = c
			break
		}
	}
	if connector == nil {
		return nil, strata.NewConnectionError(sql.Redact(opts.URL), errors.New("executor: no connector accepts the URI"))
	}
	conn, err := connector.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	db := &DB{Conn: conn}
	if cfg.withStats {
		db.stats = sql.NewStatsDriver(db.Conn, cfg.stats...)
		db.Conn = db.stats
	}
	if cfg.cache != nil {
		cacheOpts := cfg.cacheOpts
		if opts.Logger != nil {
			cacheOpts = append([]CacheOption{WithCacheLogger(opts.Logger)}, cacheOpts...)
		}
		db.cache = NewCachedConn(db.Conn, cfg.cache, cacheOpts...)
		db.Conn = db.cache
	}
	return db, nil
}

// Stats returns the statistics collected since Connect, or false when
// WithStats was not given.
func (db *DB) Stats() (sql.StatsSnapshot, bool) {
	if db.stats == nil {
		return sql.StatsSnapshot{}, false
	}
	return db.stats.QueryStats().Stats(), true
}

// Invalidate drops the cached results of the connection. It is a no-op
// without WithCache.
func (db *DB) Invalidate(ctx context.Context) error {
	if db.cache == nil {
		return nil
	}
	return db.cache.Invalidate(ctx)
}
