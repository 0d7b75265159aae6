package entity

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"maps"

	"github.com/syssam/strata"
	"github.com/syssam/strata/dialect"
)

// ErrUnknownColumn is reported when a model refers to a column its entity
// does not declare.
var ErrUnknownColumn = errors.New("unknown column")

// State is the write intent of an ActiveValue.
type State uint8

// Value states. The zero state is StateUnset.
const (
	// StateUnset means no value was provided. The column is left out of
	// INSERT and UPDATE statements.
	StateUnset State = iota
	// StateSet means the caller supplied a new value.
	StateSet
	// StateUnchanged means the value was loaded from storage and not
	// modified since.
	StateUnchanged
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateSet:
		return "Set"
	case StateUnchanged:
		return "Unchanged"
	default:
		return "Unset"
	}
}

// ActiveValue is the write intent of one column. A Set value holding nil
// writes NULL; an Unset value writes nothing at all.
type ActiveValue[V any] struct {
	value V
	state State
}

// Set returns a value supplied by the caller.
func Set[V any](v V) ActiveValue[V] {
	return ActiveValue[V]{value: v, state: StateSet}
}

// Unchanged returns a value hydrated from a fetched row.
func Unchanged[V any](v V) ActiveValue[V] {
	return ActiveValue[V]{value: v, state: StateUnchanged}
}

// Unset returns the absent value.
func Unset[V any]() ActiveValue[V] {
	return ActiveValue[V]{}
}

// State returns the state of the value.
func (a ActiveValue[V]) State() State { return a.state }

// IsSet reports whether the value was supplied by the caller.
func (a ActiveValue[V]) IsSet() bool { return a.state == StateSet }

// IsUnset reports whether no value is present.
func (a ActiveValue[V]) IsUnset() bool { return a.state == StateUnset }

// IsUnchanged reports whether the value was loaded and not modified.
func (a ActiveValue[V]) IsUnchanged() bool { return a.state == StateUnchanged }

// Take moves the value out, leaving a in the Unset state. A second Take
// returns the zero value.
func (a *ActiveValue[V]) Take() V {
	v := a.value
	var zero V
	a.value, a.state = zero, StateUnset
	return v
}

// Move is like Take but returns the type-erased value with its state.
func (a *ActiveValue[V]) Move() ActiveValue[any] {
	v := a.Erase()
	a.Take()
	return v
}

// Assign sets a to v, which must hold a V. It is the building block of
// ActiveModel.Set for hand-written models. A nil v assigns the zero value.
func Assign[V any](a *ActiveValue[V], column string, v any) error {
	var zero V
	if v == nil {
		*a = Set(zero)
		return nil
	}
	tv, ok := v.(V)
	if !ok {
		return strata.NewValidationError(column, fmt.Errorf("expected %T, got %T", zero, v))
	}
	*a = Set(tv)
	return nil
}

// Unwrap returns the wrapped value. Unset values return the zero value.
func (a ActiveValue[V]) Unwrap() V { return a.value }

// IntoValue converts the wrapped value to a driver value. Types
// implementing driver.Valuer are converted by their Value method.
func (a ActiveValue[V]) IntoValue() (driver.Value, error) {
	return driver.DefaultParameterConverter.ConvertValue(a.value)
}

// IntoWrapped erases the value type. Set and Unchanged values become Set,
// so heterogeneous columns can be written in one pass.
func (a ActiveValue[V]) IntoWrapped() ActiveValue[any] {
	if a.state == StateUnset {
		return Unset[any]()
	}
	return Set[any](a.value)
}

// Erase erases the value type and keeps the state.
func (a ActiveValue[V]) Erase() ActiveValue[any] {
	return ActiveValue[any]{value: a.value, state: a.state}
}

// String implements fmt.Stringer.
func (a ActiveValue[V]) String() string {
	if a.state == StateUnset {
		return "Unset"
	}
	return fmt.Sprintf("%s(%v)", a.state, a.value)
}

// ActiveModel is a writable record of entity E, addressed by column name.
// Statement builders consume a model in a single pass: they Take every
// column once and never read the model again.
type ActiveModel[E Entity] interface {
	// Entity returns the descriptor of the model.
	Entity() E
	// Take moves the value of the column out, leaving it Unset.
	Take(column string) ActiveValue[any]
	// Get returns the value of the column.
	Get(column string) ActiveValue[any]
	// Set assigns a new value to the column.
	Set(column string, v any) error
	// Unset clears the column.
	Unset(column string)
}

// FromRow is implemented by models that decode themselves from a result
// row. Column names are looked up with the given prefix.
type FromRow interface {
	FromRow(row *dialect.Row, prefix string) error
}

// Record is an ActiveModel backed by a map. It serves entities without a
// hand-written model, such as dynamic ones.
type Record[E Entity] struct {
	entity E
	values map[string]ActiveValue[any]
}

// NewRecord returns an empty record of e.
func NewRecord[E Entity](e E) *Record[E] {
	return &Record[E]{entity: e, values: make(map[string]ActiveValue[any])}
}

// Hydrate returns a record holding the columns of e found in row, all in
// the Unchanged state.
func Hydrate[E Entity](e E, row *dialect.Row) *Record[E] {
	r := NewRecord(e)
	for _, c := range e.Columns() {
		if v, ok := row.Value(c.Name); ok {
			r.values[c.Name] = Unchanged[any](v)
		}
	}
	return r
}

// Entity implements ActiveModel.
func (r *Record[E]) Entity() E { return r.entity }

// Take implements ActiveModel.
func (r *Record[E]) Take(column string) ActiveValue[any] {
	v := r.values[column]
	delete(r.values, column)
	return v
}

// Get implements ActiveModel.
func (r *Record[E]) Get(column string) ActiveValue[any] {
	return r.values[column]
}

// Set implements ActiveModel. It fails with a validation error if the
// column is not declared by the entity.
func (r *Record[E]) Set(column string, v any) error {
	if err := r.check(column); err != nil {
		return err
	}
	r.values[column] = Set(v)
	return nil
}

// SetUnchanged assigns a value loaded from storage.
func (r *Record[E]) SetUnchanged(column string, v any) error {
	if err := r.check(column); err != nil {
		return err
	}
	r.values[column] = Unchanged(v)
	return nil
}

// Unset implements ActiveModel.
func (r *Record[E]) Unset(column string) {
	delete(r.values, column)
}

// Values returns a copy of the values held by the record.
func (r *Record[E]) Values() map[string]ActiveValue[any] {
	return maps.Clone(r.values)
}

func (r *Record[E]) check(column string) error {
	if _, ok := Lookup(r.entity, column); !ok {
		return strata.NewValidationError(column, fmt.Errorf("%w of %s", ErrUnknownColumn, r.entity.Table()))
	}
	return nil
}
