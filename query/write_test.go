package query_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/strata"
	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/entity"
	"github.com/syssam/strata/internal/fixture"
	"github.com/syssam/strata/query"
	"github.com/syssam/strata/schema/field"
)

func intp(v int) *int { return &v }

func TestInsert(t *testing.T) {
	t.Run("One", func(t *testing.T) {
		m := &fixture.CakeActive{Name: entity.Set("Apple Pie")}
		stmt := build(t, dialect.Postgres, query.Insert[fixture.Cake](m))
		assert.Equal(t, `INSERT INTO "cake" ("name") VALUES ($1)`, stmt.SQL)
		assert.Equal(t, []any{"Apple Pie"}, stmt.Args)
		assert.Equal(t, `INSERT INTO "cake" ("name") VALUES ('Apple Pie')`, stmt.String())
		assert.True(t, m.Name.IsUnset(), "the model is consumed")
	})
	t.Run("Many", func(t *testing.T) {
		q := query.Insert[fixture.Cake](
			&fixture.CakeActive{Name: entity.Set("Apple Pie")},
			&fixture.CakeActive{Name: entity.Set("Orange Scone")},
		)
		assert.Equal(t, 2, q.Rows())
		assert.Equal(t, `INSERT INTO "cake" ("name") VALUES ('Apple Pie'), ('Orange Scone')`, build(t, dialect.SQLite, q).String())
	})
	t.Run("Add", func(t *testing.T) {
		q := query.Insert[fixture.Cake]().Add(&fixture.CakeActive{ID: entity.Set(7), Name: entity.Set("Lemon")})
		assert.Equal(t, "INSERT INTO `cake` (`id`, `name`) VALUES (7, 'Lemon')", build(t, dialect.MySQL, q).String())
	})
	t.Run("DeclaredOrder", func(t *testing.T) {
		m := &fixture.FruitActive{CakeID: entity.Set(intp(1)), Name: entity.Set("Apple")}
		stmt := build(t, dialect.MySQL, query.Insert[fixture.Fruit](m))
		assert.Equal(t, "INSERT INTO `fruit` (`name`, `cake_id`) VALUES ('Apple', 1)", stmt.String())
		assert.Equal(t, []any{"Apple", int64(1)}, stmt.Args)
	})
	t.Run("ExplicitNull", func(t *testing.T) {
		m := &fixture.FruitActive{Name: entity.Set("Lemon"), CakeID: entity.Set[*int](nil)}
		assert.Equal(t, "INSERT INTO `fruit` (`name`, `cake_id`) VALUES ('Lemon', NULL)", build(t, dialect.MySQL, query.Insert[fixture.Fruit](m)).String())
	})
	t.Run("UnchangedSkipped", func(t *testing.T) {
		m := fixture.CakeModel{ID: 1, Name: "Lemon"}.ActiveModel()
		require.NoError(t, m.Set("name", "Orange"))
		assert.Equal(t, `INSERT INTO "cake" ("name") VALUES ('Orange')`, build(t, dialect.Postgres, query.Insert[fixture.Cake](m)).String())
	})
	t.Run("PersistAll", func(t *testing.T) {
		m := fixture.CakeModel{ID: 1, Name: "Lemon"}.ActiveModel()
		q := query.Insert[fixture.Cake](m).PersistAll()
		assert.Equal(t, `INSERT INTO "cake" ("id", "name") VALUES (1, 'Lemon')`, build(t, dialect.Postgres, q).String())
	})
	t.Run("DefaultValues", func(t *testing.T) {
		q := query.Insert[fixture.Cake](&fixture.CakeActive{})
		assert.Equal(t, `INSERT INTO "cake" DEFAULT VALUES`, build(t, dialect.Postgres, q).String())
		assert.Equal(t, "INSERT INTO `cake` () VALUES ()", build(t, dialect.MySQL, q).String())
	})
	t.Run("Returning", func(t *testing.T) {
		q := query.Insert[fixture.Cake](&fixture.CakeActive{Name: entity.Set("Apple Pie")}).Returning(fixture.CakeID)
		assert.True(t, q.HasReturning())
		assert.Equal(t, `INSERT INTO "cake" ("name") VALUES ($1) RETURNING "id"`, build(t, dialect.Postgres, q).SQL)
		_, err := q.Build(dialect.MySQL)
		require.Error(t, err)
	})
	t.Run("ColumnMismatch", func(t *testing.T) {
		q := query.Insert[fixture.Cake](
			&fixture.CakeActive{Name: entity.Set("Apple Pie")},
			&fixture.CakeActive{ID: entity.Set(2), Name: entity.Set("Orange Scone")},
		)
		_, err := q.Build(dialect.Postgres)
		require.ErrorIs(t, err, query.ErrColumnMismatch)
	})
	t.Run("Empty", func(t *testing.T) {
		_, err := query.Insert[fixture.Cake]().Build(dialect.Postgres)
		require.EqualError(t, err, "query: insert without models")
	})
	t.Run("InvalidValue", func(t *testing.T) {
		r := entity.NewRecord(fixture.Bakery{})
		require.NoError(t, r.Set("name", struct{}{}))
		_, err := query.Insert[fixture.Bakery](r).Build(dialect.Postgres)
		require.Error(t, err)
		assert.True(t, strata.IsValidationError(err))
	})
	t.Run("Record", func(t *testing.T) {
		r := entity.NewRecord(fixture.Bakery{})
		require.NoError(t, r.Set("profit_margin", 10.4))
		require.NoError(t, r.Set("name", "SeaSide Bakery"))
		assert.Equal(t, "INSERT INTO `bakery` (`name`, `profit_margin`) VALUES ('SeaSide Bakery', 10.4)",
			build(t, dialect.MySQL, query.Insert[fixture.Bakery](r)).String())
	})
	t.Run("Dynamic", func(t *testing.T) {
		d := entity.NewDynamic("note", []entity.ColumnDef{
			{Name: "id", Type: field.TypeInt64},
			{Name: "body", Type: field.TypeString},
		}, []string{"id"}, nil, nil)
		r := entity.NewRecord(d)
		require.NoError(t, r.Set("body", "hello"))
		q := query.InsertInto(d).Add(r)
		assert.Equal(t, "note", q.Table())
		assert.Equal(t, `INSERT INTO "note" ("body") VALUES ('hello')`, build(t, dialect.SQLite, q).String())
	})
}

// Inserting any mix of Set and Unset values writes exactly the Set
// columns, in declared order.
func TestInsertWritesSetColumns(t *testing.T) {
	cols := fixture.Bakery{}.Columns()
	values := []any{1, "Bakery", 0.5}
	for mask := 1; mask < 1<<len(cols); mask++ {
		r := entity.NewRecord(fixture.Bakery{})
		var want []string
		for i, c := range cols {
			if mask&(1<<i) != 0 {
				require.NoError(t, r.Set(c.Name, values[i]))
				want = append(want, `"`+c.Name+`"`)
			}
		}
		stmt := build(t, dialect.Postgres, query.Insert[fixture.Bakery](r))
		assert.Contains(t, stmt.SQL, "("+strings.Join(want, ", ")+")")
		assert.Len(t, stmt.Args, len(want))
	}
}

func TestUpdateOne(t *testing.T) {
	t.Run("Set", func(t *testing.T) {
		q := query.UpdateOne[fixture.Cake](&fixture.CakeActive{ID: entity.Set(1), Name: entity.Set("Orange")})
		stmt := build(t, dialect.MySQL, q)
		assert.Equal(t, "UPDATE `cake` SET `name` = ? WHERE `cake`.`id` = ?", stmt.SQL)
		assert.Equal(t, "UPDATE `cake` SET `name` = 'Orange' WHERE `cake`.`id` = 1", stmt.String())
		assert.Equal(t, []any{1}, q.Key())
		assert.Equal(t, "cake", q.Table())
		assert.False(t, q.ExpectsRow())
		assert.True(t, q.MustExist().ExpectsRow())
	})
	t.Run("UnchangedSkipped", func(t *testing.T) {
		m := fixture.FruitModel{ID: 2, Name: "Apple", CakeID: intp(1)}.ActiveModel()
		m.CakeID = entity.Set[*int](nil)
		q := query.UpdateOne[fixture.Fruit](m)
		assert.Equal(t, `UPDATE "fruit" SET "cake_id" = NULL WHERE "fruit"."id" = 2`, build(t, dialect.Postgres, q).String())
	})
	t.Run("PersistAll", func(t *testing.T) {
		m := fixture.FruitModel{ID: 2, Name: "Apple", CakeID: intp(1)}.ActiveModel()
		q := query.UpdateOne[fixture.Fruit](m).PersistAll()
		assert.Equal(t, `UPDATE "fruit" SET "name" = 'Apple', "cake_id" = 1 WHERE "fruit"."id" = 2`, build(t, dialect.Postgres, q).String())
	})
	t.Run("NothingToSet", func(t *testing.T) {
		m := fixture.CakeModel{ID: 1, Name: "Lemon"}.ActiveModel()
		_, err := query.UpdateOne[fixture.Cake](m).Build(dialect.Postgres)
		require.Error(t, err)
	})
	t.Run("KeyUnset", func(t *testing.T) {
		_, err := query.UpdateOne[fixture.Cake](&fixture.CakeActive{Name: entity.Set("Orange")}).Build(dialect.Postgres)
		require.ErrorIs(t, err, query.ErrPrimaryKeyUnset)
	})
	t.Run("CompositeKey", func(t *testing.T) {
		r := entity.NewRecord(fixture.CakeFilling{})
		require.NoError(t, r.SetUnchanged("cake_id", 1))
		require.NoError(t, r.SetUnchanged("filling_id", 2))
		q := query.UpdateOne[fixture.CakeFilling](r)
		assert.Equal(t, []any{1, 2}, q.Key())
	})
}

func TestUpdateMany(t *testing.T) {
	q := query.UpdateMany[fixture.Fruit]().
		Set(fixture.FruitCakeID, nil).
		Filter(fixture.FruitName.Contains("Apple"))
	assert.Equal(t, `UPDATE "fruit" SET "cake_id" = NULL WHERE "fruit"."name" LIKE '%Apple%'`, build(t, dialect.Postgres, q).String())
	assert.False(t, q.ExpectsRow())
	assert.Nil(t, q.Key())
	assert.Equal(t, "fruit", q.Table())

	_, err := query.UpdateMany[fixture.Fruit]().Build(dialect.Postgres)
	require.Error(t, err, "an update without assignments is rejected")
}

func TestDelete(t *testing.T) {
	one := query.DeleteOne[fixture.Fruit](&fixture.FruitActive{ID: entity.Set(3), Name: entity.Set("Apple")})
	assert.Equal(t, "DELETE FROM `fruit` WHERE `fruit`.`id` = 3", build(t, dialect.MySQL, one).String())
	assert.Equal(t, "fruit", one.Table())

	_, err := query.DeleteOne[fixture.Fruit](&fixture.FruitActive{}).Build(dialect.MySQL)
	require.ErrorIs(t, err, query.ErrPrimaryKeyUnset)

	many := query.DeleteMany[fixture.Fruit]().Filter(fixture.FruitName.Contains("Apple"))
	assert.Equal(t, "DELETE FROM `fruit` WHERE `fruit`.`name` LIKE '%Apple%'", build(t, dialect.MySQL, many).String())
	assert.Equal(t, "DELETE FROM `fruit`", build(t, dialect.MySQL, query.DeleteMany[fixture.Fruit]()).String())
}
