package strata

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for common operations.
var (
	// ErrRecordNotFound is returned when an update or delete addressed to a
	// single record affected zero rows.
	ErrRecordNotFound = errors.New("strata: record not found")

	// ErrColumnMissing is wrapped by DecodeError when the fetched row does not
	// carry the requested column.
	ErrColumnMissing = errors.New("strata: column missing from result row")

	// ErrTxStarted is returned when attempting to start a new transaction
	// within an existing transaction.
	ErrTxStarted = errors.New("strata: cannot start a transaction within a transaction")

	// ErrReturningUnsupported is returned when a write statement carries a
	// RETURNING clause the backend cannot run.
	ErrReturningUnsupported = errors.New("strata: RETURNING is not supported")
)

// ConnectionError is returned when a backend connection cannot be acquired
// or established. It is never retried internally.
type ConnectionError struct {
	URI string // Optional: the redacted connection URI
	Err error
}

// Error returns the error string.
func (e *ConnectionError) Error() string {
	if e.URI != "" {
		return fmt.Sprintf("strata: connecting to %s: %v", e.URI, e.Err)
	}
	return fmt.Sprintf("strata: connection: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// NewConnectionError returns a new ConnectionError.
func NewConnectionError(uri string, err error) *ConnectionError {
	return &ConnectionError{URI: uri, Err: err}
}

// IsConnectionError returns true if the error is a ConnectionError.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConnectionError
	return errors.As(err, &e)
}

// QueryError wraps a failed read statement. The SQL text is kept on the
// error but left out of the message.
type QueryError struct {
	SQL string // Statement text that failed
	Err error  // Underlying error
}

// Error returns the error string.
func (e *QueryError) Error() string {
	return fmt.Sprintf("strata: query: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError returns a new QueryError.
func NewQueryError(sql string, err error) *QueryError {
	return &QueryError{SQL: sql, Err: err}
}

// IsQueryError returns true if the error is a QueryError.
func IsQueryError(err error) bool {
	if err == nil {
		return false
	}
	var e *QueryError
	return errors.As(err, &e)
}

// ExecError wraps a failed write statement.
type ExecError struct {
	SQL string // Statement text that failed
	Err error  // Underlying error
}

// Error returns the error string.
func (e *ExecError) Error() string {
	return fmt.Sprintf("strata: exec: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *ExecError) Unwrap() error {
	return e.Err
}

// NewExecError returns a new ExecError.
func NewExecError(sql string, err error) *ExecError {
	return &ExecError{SQL: sql, Err: err}
}

// IsExecError returns true if the error is an ExecError.
func IsExecError(err error) bool {
	if err == nil {
		return false
	}
	var e *ExecError
	return errors.As(err, &e)
}

// RecordNotFoundError represents an update or delete that was required to
// affect a specific record but affected none.
type RecordNotFoundError struct {
	Table string
	Key   []any // Optional: the primary key values that were addressed
}

// Error returns the error string.
func (e *RecordNotFoundError) Error() string {
	if len(e.Key) > 0 {
		return fmt.Sprintf("strata: %s record not found (key=%v)", e.Table, e.Key)
	}
	return fmt.Sprintf("strata: %s record not found", e.Table)
}

// Is reports whether the target error matches RecordNotFoundError.
// This allows errors.Is(err, ErrRecordNotFound) to return true.
func (e *RecordNotFoundError) Is(err error) bool {
	return err == ErrRecordNotFound
}

// NewRecordNotFoundError returns a new RecordNotFoundError.
func NewRecordNotFoundError(table string, key ...any) *RecordNotFoundError {
	return &RecordNotFoundError{Table: table, Key: key}
}

// IsRecordNotFound returns true if the error is a RecordNotFoundError.
func IsRecordNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *RecordNotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrRecordNotFound)
}

// DecodeError represents a fetched row that could not be materialized into
// the requested model.
type DecodeError struct {
	Column string // Offending column name
	Err    error  // Underlying error
}

// Error returns the error string.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("strata: decoding column %q: %v", e.Column, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// NewDecodeError returns a new DecodeError.
func NewDecodeError(column string, err error) *DecodeError {
	return &DecodeError{Column: column, Err: err}
}

// IsDecodeError returns true if the error is a DecodeError.
func IsDecodeError(err error) bool {
	if err == nil {
		return false
	}
	var e *DecodeError
	return errors.As(err, &e)
}

// TransformError is returned when schema introspection encounters a
// structurally invalid table description.
type TransformError struct {
	Table string // Empty when the table has no resolvable name
	Msg   string
}

// Error returns the error string.
func (e *TransformError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("strata: transform %s: %s", e.Table, e.Msg)
	}
	return fmt.Sprintf("strata: transform: %s", e.Msg)
}

// NewTransformError returns a new TransformError.
func NewTransformError(table, msg string) *TransformError {
	return &TransformError{Table: table, Msg: msg}
}

// IsTransformError returns true if the error is a TransformError.
func IsTransformError(err error) bool {
	if err == nil {
		return false
	}
	var e *TransformError
	return errors.As(err, &e)
}

// ConstraintError represents a database constraint violation error.
type ConstraintError struct {
	msg  string
	wrap error
}

// Error returns the error string.
func (e ConstraintError) Error() string {
	return fmt.Sprintf("strata: constraint failed: %s", e.msg)
}

// Unwrap returns the underlying error.
func (e ConstraintError) Unwrap() error {
	return e.wrap
}

// NewConstraintError returns a new ConstraintError with the given message.
func NewConstraintError(msg string, wrap error) error {
	return ConstraintError{msg: msg, wrap: wrap}
}

// IsConstraintError returns true if the error is a ConstraintError.
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var e ConstraintError
	return errors.As(err, &e)
}

// ValidationError represents an invalid value for a column of an active model.
type ValidationError struct {
	Name string // Column name
	Err  error  // Underlying validation error
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("strata: invalid value for column %q: %s", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError returns a new ValidationError for the given column.
func NewValidationError(name string, err error) *ValidationError {
	return &ValidationError{Name: name, Err: err}
}

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e)
}

// RollbackError is returned when a transaction callback failed and the
// rollback that followed failed as well. Both errors are kept.
type RollbackError struct {
	Err      error // Original error that triggered rollback
	Rollback error // Error returned by the rollback itself
}

// Error returns the error string.
func (e *RollbackError) Error() string {
	return fmt.Sprintf("strata: %v: rollback failed: %v", e.Err, e.Rollback)
}

// Unwrap returns both the original and the rollback error.
func (e *RollbackError) Unwrap() []error {
	return []error{e.Err, e.Rollback}
}

// IsRollbackError returns true if the error is a RollbackError.
func IsRollbackError(err error) bool {
	if err == nil {
		return false
	}
	var e *RollbackError
	return errors.As(err, &e)
}
