package entity_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/strata"
	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/entity"
	"github.com/syssam/strata/internal/fixture"
)

func TestActiveValueStates(t *testing.T) {
	set := entity.Set(5)
	assert.True(t, set.IsSet())
	assert.False(t, set.IsUnset())
	assert.False(t, set.IsUnchanged())
	assert.Equal(t, entity.StateSet, set.State())
	assert.Equal(t, "Set(5)", set.String())

	unchanged := entity.Unchanged("Lemon")
	assert.True(t, unchanged.IsUnchanged())
	assert.False(t, unchanged.IsSet())
	assert.Equal(t, "Lemon", unchanged.Unwrap())

	unset := entity.Unset[int]()
	assert.True(t, unset.IsUnset())
	assert.Equal(t, 0, unset.Unwrap())
	assert.Equal(t, "Unset", unset.String())

	var zero entity.ActiveValue[string]
	assert.True(t, zero.IsUnset(), "zero value is unset")
}

func TestActiveValueTake(t *testing.T) {
	v := entity.Set("Apple Pie")
	assert.Equal(t, "Apple Pie", v.Take())
	assert.True(t, v.IsUnset())
	assert.Equal(t, "", v.Take(), "second take yields the zero value")

	m := entity.Unchanged(3)
	moved := m.Move()
	assert.True(t, moved.IsUnchanged())
	assert.Equal(t, 3, moved.Unwrap())
	assert.True(t, m.IsUnset())
}

func TestActiveValueIntoValue(t *testing.T) {
	v, err := entity.Set(int32(7)).IntoValue()
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)

	var name *string
	v, err = entity.Set(name).IntoValue()
	require.NoError(t, err)
	assert.Nil(t, v)

	id := uuid.New()
	v, err = entity.Set(id).IntoValue()
	require.NoError(t, err)
	assert.Equal(t, id.String(), v)

	_, err = entity.Set(struct{}{}).IntoValue()
	assert.Error(t, err)
}

func TestActiveValueIntoWrapped(t *testing.T) {
	assert.Equal(t, entity.Set[any](1), entity.Set(1).IntoWrapped())
	assert.Equal(t, entity.Set[any]("x"), entity.Unchanged("x").IntoWrapped())
	assert.Equal(t, entity.Unset[any](), entity.Unset[bool]().IntoWrapped())
	assert.Equal(t, entity.Unchanged[any]("x"), entity.Unchanged("x").Erase())
}

func TestTypedActiveModel(t *testing.T) {
	m := fixture.CakeModel{ID: 1, Name: "Lemon"}.ActiveModel()
	assert.True(t, m.ID.IsUnchanged())
	assert.Equal(t, fixture.Cake{}, m.Entity())

	require.NoError(t, m.Set("name", "Orange"))
	assert.Equal(t, entity.Set[any]("Orange"), m.Get("name"))

	err := m.Set("name", 42)
	require.Error(t, err)
	assert.True(t, strata.IsValidationError(err))

	err = m.Set("colour", "red")
	require.ErrorIs(t, err, entity.ErrUnknownColumn)

	taken := m.Take("id")
	assert.True(t, taken.IsUnchanged())
	assert.True(t, m.Get("id").IsUnset())

	m.Unset("name")
	assert.True(t, m.Name.IsUnset())

	f := &fixture.FruitActive{}
	require.NoError(t, f.Set("cake_id", nil))
	assert.True(t, f.CakeID.IsSet())
	assert.Nil(t, f.CakeID.Unwrap())
}

func TestRecord(t *testing.T) {
	r := entity.NewRecord(fixture.Bakery{})
	require.NoError(t, r.Set("name", "SeaSide Bakery"))
	require.NoError(t, r.SetUnchanged("id", 1))
	assert.Equal(t, fixture.Bakery{}, r.Entity())

	err := r.Set("owner", "x")
	require.Error(t, err)
	var ve *strata.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "owner", ve.Name)
	assert.ErrorIs(t, err, entity.ErrUnknownColumn)

	assert.True(t, r.Get("name").IsSet())
	assert.True(t, r.Get("id").IsUnchanged())
	assert.True(t, r.Get("profit_margin").IsUnset())
	assert.Len(t, r.Values(), 2)

	v := r.Take("name")
	assert.Equal(t, "SeaSide Bakery", v.Unwrap())
	assert.True(t, r.Get("name").IsUnset())

	r.Unset("id")
	assert.Empty(t, r.Values())
}

func TestHydrate(t *testing.T) {
	row := dialect.NewRow([]string{"id", "name", "other"}, []any{int64(4), "Bakery", 1})
	r := entity.Hydrate(fixture.Bakery{}, row)
	values := r.Values()
	assert.Len(t, values, 2)
	assert.Equal(t, entity.Unchanged[any](int64(4)), values["id"])
	assert.True(t, r.Get("profit_margin").IsUnset())
}

func TestFromRow(t *testing.T) {
	row := dialect.NewRow([]string{"id", "name", "cake_id"}, []any{int64(1), "Banana", nil})
	var m fixture.FruitModel
	require.NoError(t, m.FromRow(row, ""))
	assert.Equal(t, fixture.FruitModel{ID: 1, Name: "Banana"}, m)

	err := m.FromRow(dialect.NewRow([]string{"id"}, []any{int64(1)}), "")
	var de *strata.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "name", de.Column)

	var c fixture.CakeModel
	require.NoError(t, c.FromRow(dialect.NewRow([]string{"cake_id", "cake_name"}, []any{int64(2), "Cheese"}), "cake_"))
	assert.Equal(t, fixture.CakeModel{ID: 2, Name: "Cheese"}, c)
}
