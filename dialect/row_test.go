package dialect

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/strata"
)

func TestRowGet(t *testing.T) {
	id := uuid.New()
	now := time.Now().UTC()
	row := NewRow(
		[]string{"id", "name", "price", "note", "created_at", "uid", "raw", "id"},
		[]any{int64(1), []byte("Lemon"), "9.5", nil, now, id.String(), []byte{1, 2}, int64(2)},
	)

	t.Run("Int", func(t *testing.T) {
		v, err := Get[int](row, "id")
		require.NoError(t, err)
		assert.Equal(t, 1, v, "first duplicate column wins")
	})
	t.Run("StringFromBytes", func(t *testing.T) {
		v, err := Get[string](row, "name")
		require.NoError(t, err)
		assert.Equal(t, "Lemon", v)
	})
	t.Run("FloatFromString", func(t *testing.T) {
		v, err := Get[float64](row, "price")
		require.NoError(t, err)
		assert.Equal(t, 9.5, v)
	})
	t.Run("NullPointer", func(t *testing.T) {
		v, err := Get[*string](row, "note")
		require.NoError(t, err)
		assert.Nil(t, v)
	})
	t.Run("NullScanner", func(t *testing.T) {
		v, err := Get[sql.NullString](row, "note")
		require.NoError(t, err)
		assert.False(t, v.Valid)
	})
	t.Run("NullNonNullable", func(t *testing.T) {
		_, err := Get[string](row, "note")
		require.Error(t, err)
		var de *strata.DecodeError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "note", de.Column)
	})
	t.Run("Pointer", func(t *testing.T) {
		v, err := Get[*string](row, "name")
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.Equal(t, "Lemon", *v)
	})
	t.Run("Time", func(t *testing.T) {
		v, err := Get[time.Time](row, "created_at")
		require.NoError(t, err)
		assert.True(t, now.Equal(v))
	})
	t.Run("UUID", func(t *testing.T) {
		v, err := Get[uuid.UUID](row, "uid")
		require.NoError(t, err)
		assert.Equal(t, id, v)
	})
	t.Run("Bytes", func(t *testing.T) {
		v, err := Get[[]byte](row, "raw")
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2}, v)
	})
	t.Run("Mismatch", func(t *testing.T) {
		_, err := Get[int](row, "name")
		require.Error(t, err)
		assert.True(t, strata.IsDecodeError(err))
		assert.Contains(t, err.Error(), "name")
	})
	t.Run("Missing", func(t *testing.T) {
		_, err := Get[int](row, "missing")
		require.ErrorIs(t, err, strata.ErrColumnMissing)
		assert.True(t, strata.IsDecodeError(err))
	})
	t.Run("Prefixed", func(t *testing.T) {
		r := NewRow([]string{"fruit_name"}, []any{"Apple"})
		v, err := GetPrefixed[string](r, "fruit_", "name")
		require.NoError(t, err)
		assert.Equal(t, "Apple", v)
	})
}

func TestRowAccessors(t *testing.T) {
	row := NewRow([]string{"a", "b"}, []any{1, nil})
	assert.Equal(t, []string{"a", "b"}, row.Columns())
	assert.Equal(t, []any{1, nil}, row.Values())
	assert.True(t, row.Has("b"))
	assert.False(t, row.Has("c"))
	v, ok := row.Value("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	_, ok = row.Value("c")
	assert.False(t, ok)
}
