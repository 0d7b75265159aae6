package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/strata"
	"github.com/syssam/strata/dialect"
)

// CachedConn serves QueryOne and QueryAll from a strata.Cache. Every
// Execute and ExecuteReturning invalidates the whole namespace, and so does
// the commit of a transaction that executed a write. Reads inside a transaction and
// streams always go to the database.
type CachedConn struct {
	dialect.Conn
	cache     strata.Cache
	namespace string
	ttl       time.Duration
	log       *slog.Logger
}

// CacheOption configures a CachedConn.
type CacheOption func(*CachedConn)

// WithTTL sets the lifetime of cached results. Zero keeps them until the
// namespace is invalidated.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *CachedConn) {
		c.ttl = ttl
	}
}

// WithNamespace sets the key namespace. Connections sharing a cache and a
// namespace invalidate each other. The default namespace is "default".
func WithNamespace(ns string) CacheOption {
	return func(c *CachedConn) {
		c.namespace = ns
	}
}

// WithCacheLogger logs cache failures at warn level. Failed lookups fall
// back to the database.
func WithCacheLogger(l *slog.Logger) CacheOption {
	return func(c *CachedConn) {
		c.log = l
	}
}

// NewCachedConn wraps conn with a result cache.
func NewCachedConn(conn dialect.Conn, cache strata.Cache, opts ...CacheOption) *CachedConn {
	c := &CachedConn{Conn: conn, cache: cache, namespace: "default"}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CachedConn) key(stmt dialect.Statement, one bool) string {
	return strata.CacheKey{
		Namespace: c.namespace,
		Dialect:   stmt.Dialect,
		SQL:       stmt.SQL,
		Args:      stmt.Args,
		One:       one,
	}.String()
}

func (c *CachedConn) prefix() string {
	return strata.CacheKey{Namespace: c.namespace}.Prefix()
}

// QueryOne implements the dialect.ExecQuerier interface.
func (c *CachedConn) QueryOne(ctx context.Context, stmt dialect.Statement) (*dialect.Row, error) {
	key := c.key(stmt, true)
	if rows, ok := c.lookup(ctx, key); ok {
		if len(rows) == 0 {
			return nil, nil
		}
		return rows[0], nil
	}
	row, err := c.Conn.QueryOne(ctx, stmt)
	if err != nil {
		return nil, err
	}
	var rows []*dialect.Row
	if row != nil {
		rows = append(rows, row)
	}
	c.store(ctx, key, rows)
	return row, nil
}

// QueryAll implements the dialect.ExecQuerier interface.
func (c *CachedConn) QueryAll(ctx context.Context, stmt dialect.Statement) ([]*dialect.Row, error) {
	key := c.key(stmt, false)
	if rows, ok := c.lookup(ctx, key); ok {
		return rows, nil
	}
	rows, err := c.Conn.QueryAll(ctx, stmt)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, rows)
	return rows, nil
}

// Execute implements the dialect.ExecQuerier interface. The namespace is
// invalidated even when the statement fails, and a failed invalidation is
// returned as an error.
func (c *CachedConn) Execute(ctx context.Context, stmt dialect.Statement) (dialect.ExecResult, error) {
	res, err := c.Conn.Execute(ctx, stmt)
	if ierr := c.Invalidate(ctx); ierr != nil {
		return res, errors.Join(err, ierr)
	}
	return res, err
}

// ExecuteReturning implements the dialect.ExecQuerier interface. The
// statement always reaches the database and the namespace is invalidated
// as in Execute.
func (c *CachedConn) ExecuteReturning(ctx context.Context, stmt dialect.Statement) ([]*dialect.Row, error) {
	rows, err := c.Conn.ExecuteReturning(ctx, stmt)
	if ierr := c.Invalidate(ctx); ierr != nil {
		return rows, errors.Join(err, ierr)
	}
	return rows, err
}

// Invalidate drops every cached result of the namespace.
func (c *CachedConn) Invalidate(ctx context.Context) error {
	if err := c.cache.DeletePrefix(ctx, c.prefix()); err != nil {
		return fmt.Errorf("executor: invalidate cache: %w", err)
	}
	return nil
}

// Begin implements the dialect.Conn interface.
func (c *CachedConn) Begin(ctx context.Context) (dialect.Tx, error) {
	tx, err := c.Conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &cachedTx{Tx: tx, conn: c, ctx: ctx}, nil
}

func (c *CachedConn) lookup(ctx context.Context, key string) ([]*dialect.Row, bool) {
	b, err := c.cache.Get(ctx, key)
	if err != nil {
		c.warn(ctx, "cache get", key, err)
		return nil, false
	}
	if b == nil {
		return nil, false
	}
	rows, err := decodeRows(b)
	if err != nil {
		c.warn(ctx, "cache decode", key, err)
		return nil, false
	}
	return rows, true
}

func (c *CachedConn) store(ctx context.Context, key string, rows []*dialect.Row) {
	b, err := encodeRows(rows)
	if err != nil {
		c.warn(ctx, "cache encode", key, err)
		return
	}
	if err := c.cache.Set(ctx, key, b, c.ttl); err != nil {
		c.warn(ctx, "cache set", key, err)
	}
}

func (c *CachedConn) warn(ctx context.Context, msg, key string, err error) {
	if c.log != nil {
		c.log.WarnContext(ctx, msg, "key", key, "error", err)
	}
}

// cachedTx marks the namespace dirty on writes and invalidates it once the
// transaction commits.
type cachedTx struct {
	dialect.Tx
	conn  *CachedConn
	ctx   context.Context
	dirty bool
}

func (tx *cachedTx) Execute(ctx context.Context, stmt dialect.Statement) (dialect.ExecResult, error) {
	tx.dirty = true
	return tx.Tx.Execute(ctx, stmt)
}

func (tx *cachedTx) ExecuteReturning(ctx context.Context, stmt dialect.Statement) ([]*dialect.Row, error) {
	tx.dirty = true
	return tx.Tx.ExecuteReturning(ctx, stmt)
}

func (tx *cachedTx) Commit() error {
	if err := tx.Tx.Commit(); err != nil {
		return err
	}
	if tx.dirty {
		return tx.conn.Invalidate(tx.ctx)
	}
	return nil
}

// cachedRows is the encoded form of a result set.
type cachedRows struct {
	Columns []string `msgpack:"c"`
	Values  [][]any  `msgpack:"v"`
}

func encodeRows(rows []*dialect.Row) ([]byte, error) {
	var cr cachedRows
	if len(rows) > 0 {
		cr.Columns = rows[0].Columns()
	}
	cr.Values = make([][]any, len(rows))
	for i, r := range rows {
		cr.Values[i] = r.Values()
	}
	return msgpack.Marshal(&cr)
}

func decodeRows(b []byte) ([]*dialect.Row, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	// Integers decode as int64 and floats as float64, as database drivers
	// return them.
	dec.UseLooseInterfaceDecoding(true)
	var cr cachedRows
	if err := dec.Decode(&cr); err != nil {
		return nil, err
	}
	rows := make([]*dialect.Row, len(cr.Values))
	for i, vs := range cr.Values {
		rows[i] = dialect.NewRow(cr.Columns, vs)
	}
	return rows, nil
}

// MemoryCache is a process-local strata.Cache. It is safe for concurrent
// use.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

// Get implements the strata.Cache interface.
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if m.expired(e) {
		m.mu.Lock()
		// The entry may have been replaced since the read lock was released.
		if e, ok := m.entries[key]; ok && m.expired(e) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, nil
	}
	return e.value, nil
}

func (m *MemoryCache) expired(e memoryEntry) bool {
	return !e.expires.IsZero() && !m.now().Before(e.expires)
}

// Set implements the strata.Cache interface.
func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

// DeletePrefix implements the strata.Cache interface.
func (m *MemoryCache) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

var (
	_ dialect.Conn = (*CachedConn)(nil)
	_ dialect.Tx   = (*cachedTx)(nil)
	_ strata.Cache = (*MemoryCache)(nil)
)
