package dialect

import (
	"database/sql"
	"fmt"
	"reflect"

	"github.com/syssam/strata"
)

// ExecResult summarizes an executed write statement.
type ExecResult struct {
	RowsAffected int64
	// LastInsertID is zero when the backend does not report it (e.g. Postgres).
	LastInsertID int64
}

// Row is a fetched result row, indexed by column name. Values are kept in
// their driver-native representation until read with Get.
type Row struct {
	columns []string
	values  []any
	index   map[string]int
}

// NewRow returns a row holding the given columns and values.
// Duplicate column names resolve to the first occurrence.
func NewRow(columns []string, values []any) *Row {
	r := &Row{columns: columns, values: values, index: make(map[string]int, len(columns))}
	for i, c := range columns {
		if _, ok := r.index[c]; !ok {
			r.index[c] = i
		}
	}
	return r
}

// Columns returns the column names of the row in result order.
func (r *Row) Columns() []string {
	return r.columns
}

// Values returns the raw values of the row in result order.
func (r *Row) Values() []any {
	return r.values
}

// Value returns the raw value of the named column.
func (r *Row) Value(column string) (any, bool) {
	i, ok := r.index[column]
	if !ok {
		return nil, false
	}
	return r.values[i], true
}

// Has reports whether the row carries the named column.
func (r *Row) Has(column string) bool {
	_, ok := r.index[column]
	return ok
}

// Get reads the named column converted to T using the database/sql
// conversion rules. A missing column, a NULL read into a non-pointer type
// and a failed conversion all return a *strata.DecodeError naming the column.
//
//	id, err := dialect.Get[int](row, "id")
//	name, err := dialect.Get[*string](row, "name") // nil for NULL
func Get[T any](r *Row, column string) (T, error) {
	var zero T
	v, ok := r.Value(column)
	if !ok {
		return zero, strata.NewDecodeError(column, strata.ErrColumnMissing)
	}
	if t, ok := v.(T); ok {
		return t, nil
	}
	var n sql.Null[T]
	if err := n.Scan(v); err != nil {
		return zero, strata.NewDecodeError(column, err)
	}
	if !n.Valid {
		if sc, ok := any(&zero).(sql.Scanner); ok {
			if err := sc.Scan(nil); err != nil {
				return zero, strata.NewDecodeError(column, err)
			}
			return zero, nil
		}
		switch reflect.TypeFor[T]().Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
			return zero, nil
		}
		return zero, strata.NewDecodeError(column, fmt.Errorf("NULL value for non-nullable %T", zero))
	}
	return n.V, nil
}

// GetPrefixed reads a column that was projected under a prefix, as done
// when several entities share one result row.
func GetPrefixed[T any](r *Row, prefix, column string) (T, error) {
	return Get[T](r, prefix+column)
}
