package sql

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/syssam/strata/dialect"
)

// QueryStats holds query execution statistics.
type QueryStats struct {
	// TotalQueries is the total number of queries executed.
	TotalQueries atomic.Int64
	// TotalExecs is the total number of exec statements executed.
	TotalExecs atomic.Int64
	// TotalDuration is the total time spent executing queries.
	TotalDuration atomic.Int64 // nanoseconds
	// SlowQueries is the count of queries exceeding the slow threshold.
	SlowQueries atomic.Int64
	// Errors is the count of query errors.
	Errors atomic.Int64
}

// Stats returns a snapshot of the current statistics.
func (s *QueryStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		TotalQueries:  s.TotalQueries.Load(),
		TotalExecs:    s.TotalExecs.Load(),
		TotalDuration: time.Duration(s.TotalDuration.Load()),
		SlowQueries:   s.SlowQueries.Load(),
		Errors:        s.Errors.Load(),
	}
}

// Reset resets all statistics to zero.
func (s *QueryStats) Reset() {
	s.TotalQueries.Store(0)
	s.TotalExecs.Store(0)
	s.TotalDuration.Store(0)
	s.SlowQueries.Store(0)
	s.Errors.Store(0)
}

// StatsSnapshot is a point-in-time snapshot of query statistics.
type StatsSnapshot struct {
	TotalQueries  int64
	TotalExecs    int64
	TotalDuration time.Duration
	SlowQueries   int64
	Errors        int64
}

// AvgQueryDuration returns the average query duration.
func (s StatsSnapshot) AvgQueryDuration() time.Duration {
	total := s.TotalQueries + s.TotalExecs
	if total == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(total)
}

// String returns a human-readable summary of the statistics.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"queries=%d execs=%d duration=%s avg=%s slow=%d errors=%d",
		s.TotalQueries, s.TotalExecs, s.TotalDuration, s.AvgQueryDuration(),
		s.SlowQueries, s.Errors,
	)
}

// SlowQueryHook is a function called when a slow statement is detected.
type SlowQueryHook func(ctx context.Context, stmt dialect.Statement, duration time.Duration)

// StatsDriver wraps a dialect.Conn with query statistics collection.
type StatsDriver struct {
	dialect.Conn
	stats         *QueryStats
	slowThreshold time.Duration
	slowHook      SlowQueryHook
	mu            sync.RWMutex
}

// StatsOption configures the StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the threshold for slow query detection.
// Statements taking longer than this duration will be counted as slow.
// Default is 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) {
		s.slowThreshold = d
	}
}

// WithSlowQueryHook sets a callback function for slow statements.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(s *StatsDriver) {
		s.slowHook = hook
	}
}

// WithSlowQueryLog logs slow statements to the given logger, or to the
// default logger if l is nil.
func WithSlowQueryLog(l *slog.Logger) StatsOption {
	if l == nil {
		l = slog.Default()
	}
	return WithSlowQueryHook(func(ctx context.Context, stmt dialect.Statement, duration time.Duration) {
		l.WarnContext(ctx, "slow query detected", "duration", duration, "query", stmt.SQL, "args", stmt.Args)
	})
}

// NewStatsDriver wraps a connection with statistics collection.
//
// Example:
//
//	conn, _ := executor.Connect(ctx, dialect.ConnectOptions{URL: uri})
//	stats := sql.NewStatsDriver(conn,
//	    sql.WithSlowThreshold(200*time.Millisecond),
//	    sql.WithSlowQueryLog(nil),
//	)
//	models, err := executor.All[CakeModel](ctx, stats, query.Find[Cake]())
//
//	// Later, check statistics:
//	fmt.Println(stats.QueryStats().Stats())
func NewStatsDriver(conn dialect.Conn, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{
		Conn:          conn,
		stats:         &QueryStats{},
		slowThreshold: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueryStats returns the underlying QueryStats for reading statistics.
func (d *StatsDriver) QueryStats() *QueryStats {
	return d.stats
}

// SlowThreshold returns the current slow query threshold.
func (d *StatsDriver) SlowThreshold() time.Duration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.slowThreshold
}

// SetSlowThreshold updates the slow query threshold.
func (d *StatsDriver) SetSlowThreshold(threshold time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.slowThreshold = threshold
}

// Execute executes a statement and records statistics.
func (d *StatsDriver) Execute(ctx context.Context, stmt dialect.Statement) (dialect.ExecResult, error) {
	start := time.Now()
	res, err := d.Conn.Execute(ctx, stmt)
	d.record(ctx, stmt, start, err, false)
	return res, err
}

// ExecuteReturning executes a write statement that returns rows and
// records it as an exec.
func (d *StatsDriver) ExecuteReturning(ctx context.Context, stmt dialect.Statement) ([]*dialect.Row, error) {
	start := time.Now()
	rows, err := d.Conn.ExecuteReturning(ctx, stmt)
	d.record(ctx, stmt, start, err, false)
	return rows, err
}

// QueryOne executes a query and records statistics.
func (d *StatsDriver) QueryOne(ctx context.Context, stmt dialect.Statement) (*dialect.Row, error) {
	start := time.Now()
	row, err := d.Conn.QueryOne(ctx, stmt)
	d.record(ctx, stmt, start, err, true)
	return row, err
}

// QueryAll executes a query and records statistics.
func (d *StatsDriver) QueryAll(ctx context.Context, stmt dialect.Statement) ([]*dialect.Row, error) {
	start := time.Now()
	rows, err := d.Conn.QueryAll(ctx, stmt)
	d.record(ctx, stmt, start, err, true)
	return rows, err
}

// Stream opens a cursor and records statistics. The duration covers the
// statement round trip, not the consumption of the rows.
func (d *StatsDriver) Stream(ctx context.Context, stmt dialect.Statement) (dialect.Rows, error) {
	start := time.Now()
	rows, err := d.Conn.Stream(ctx, stmt)
	d.record(ctx, stmt, start, err, true)
	return rows, err
}

func (d *StatsDriver) record(ctx context.Context, stmt dialect.Statement, start time.Time, err error, isQuery bool) {
	duration := time.Since(start)
	if isQuery {
		d.stats.TotalQueries.Add(1)
	} else {
		d.stats.TotalExecs.Add(1)
	}
	d.stats.TotalDuration.Add(int64(duration))

	if err != nil {
		d.stats.Errors.Add(1)
	}

	d.mu.RLock()
	threshold := d.slowThreshold
	hook := d.slowHook
	d.mu.RUnlock()

	if duration > threshold {
		d.stats.SlowQueries.Add(1)
		if hook != nil {
			hook(ctx, stmt, duration)
		}
	}
}

// Begin starts a transaction that also records statistics.
func (d *StatsDriver) Begin(ctx context.Context) (dialect.Tx, error) {
	tx, err := d.Conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &StatsTx{Tx: tx, driver: d}, nil
}

// StatsTx wraps a transaction with statistics collection.
type StatsTx struct {
	dialect.Tx
	driver *StatsDriver
}

// Execute executes a statement within the transaction and records statistics.
func (tx *StatsTx) Execute(ctx context.Context, stmt dialect.Statement) (dialect.ExecResult, error) {
	start := time.Now()
	res, err := tx.Tx.Execute(ctx, stmt)
	tx.driver.record(ctx, stmt, start, err, false)
	return res, err
}

// ExecuteReturning executes a write statement that returns rows within the
// transaction and records it as an exec.
func (tx *StatsTx) ExecuteReturning(ctx context.Context, stmt dialect.Statement) ([]*dialect.Row, error) {
	start := time.Now()
	rows, err := tx.Tx.ExecuteReturning(ctx, stmt)
	tx.driver.record(ctx, stmt, start, err, false)
	return rows, err
}

// QueryOne executes a query within the transaction and records statistics.
func (tx *StatsTx) QueryOne(ctx context.Context, stmt dialect.Statement) (*dialect.Row, error) {
	start := time.Now()
	row, err := tx.Tx.QueryOne(ctx, stmt)
	tx.driver.record(ctx, stmt, start, err, true)
	return row, err
}

// QueryAll executes a query within the transaction and records statistics.
func (tx *StatsTx) QueryAll(ctx context.Context, stmt dialect.Statement) ([]*dialect.Row, error) {
	start := time.Now()
	rows, err := tx.Tx.QueryAll(ctx, stmt)
	tx.driver.record(ctx, stmt, start, err, true)
	return rows, err
}

// Stream opens a cursor within the transaction and records statistics.
func (tx *StatsTx) Stream(ctx context.Context, stmt dialect.Statement) (dialect.Rows, error) {
	start := time.Now()
	rows, err := tx.Tx.Stream(ctx, stmt)
	tx.driver.record(ctx, stmt, start, err, true)
	return rows, err
}

// Ensure interfaces are implemented.
var (
	_ dialect.Conn = (*StatsDriver)(nil)
	_ dialect.Tx   = (*StatsTx)(nil)
)
