package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/sql"
	"github.com/syssam/strata/entity"
	"github.com/syssam/strata/internal/fixture"
	"github.com/syssam/strata/query"
	"github.com/syssam/strata/schema/field"
)

type builder interface {
	Build(string) (dialect.Statement, error)
}

func build(t *testing.T, dialectName string, b builder) dialect.Statement {
	t.Helper()
	stmt, err := b.Build(dialectName)
	require.NoError(t, err)
	return stmt
}

func TestFind(t *testing.T) {
	tests := []struct {
		name    string
		query   builder
		dialect string
		want    string
	}{
		{
			name:    "All",
			query:   query.Find[fixture.Cake](),
			dialect: dialect.MySQL,
			want:    "SELECT `cake`.`id`, `cake`.`name` FROM `cake`",
		},
		{
			name:    "Postgres",
			query:   query.Find[fixture.Cake](),
			dialect: dialect.Postgres,
			want:    `SELECT "cake"."id", "cake"."name" FROM "cake"`,
		},
		{
			name:    "Filter",
			query:   query.Find[fixture.Cake]().Filter(fixture.CakeID.EQ(5)),
			dialect: dialect.MySQL,
			want:    "SELECT `cake`.`id`, `cake`.`name` FROM `cake` WHERE `cake`.`id` = 5",
		},
		{
			name: "FilterAccumulates",
			query: query.Find[fixture.Cake]().
				Filter(fixture.CakeID.GT(1)).
				Filter(fixture.CakeName.Contains("cheese")),
			dialect: dialect.SQLite,
			want:    `SELECT "cake"."id", "cake"."name" FROM "cake" WHERE "cake"."id" > 1 AND "cake"."name" LIKE '%cheese%'`,
		},
		{
			name:    "FilterOr",
			query:   query.Find[fixture.Cake]().Filter(fixture.CakeID.EQ(1)).Filter(sql.Or(fixture.CakeID.EQ(2), fixture.CakeID.EQ(3))),
			dialect: dialect.MySQL,
			want:    "SELECT `cake`.`id`, `cake`.`name` FROM `cake` WHERE `cake`.`id` = 1 AND (`cake`.`id` = 2 OR `cake`.`id` = 3)",
		},
		{
			name:    "SelectOnly",
			query:   query.Find[fixture.Cake]().SelectOnly().Column(fixture.CakeName, fixture.CakeID),
			dialect: dialect.MySQL,
			want:    "SELECT `cake`.`name`, `cake`.`id` FROM `cake`",
		},
		{
			name:    "ColumnWithoutSelectOnly",
			query:   query.Find[fixture.Cake]().Column(fixture.CakeName),
			dialect: dialect.MySQL,
			want:    "SELECT `cake`.`id`, `cake`.`name`, `cake`.`name` FROM `cake`",
		},
		{
			name:    "ColumnAs",
			query:   query.Find[fixture.Cake]().SelectOnly().ColumnAs(fixture.CakeID.Count(), "count"),
			dialect: dialect.Postgres,
			want:    `SELECT COUNT("cake"."id") AS "count" FROM "cake"`,
		},
		{
			name: "GroupByHaving",
			query: query.Find[fixture.Fruit]().
				SelectOnly().
				Column(fixture.FruitCakeID).
				ColumnAs(fixture.FruitID.Count(), "fruits").
				GroupBy(fixture.FruitCakeID).
				Having(sql.GT(fixture.FruitID.Count(), 2)),
			dialect: dialect.MySQL,
			want:    "SELECT `fruit`.`cake_id`, COUNT(`fruit`.`id`) AS `fruits` FROM `fruit` GROUP BY `fruit`.`cake_id` HAVING COUNT(`fruit`.`id`) > 2",
		},
		{
			name:    "OrderBy",
			query:   query.Find[fixture.Cake]().OrderBy(fixture.CakeName).OrderByDesc(fixture.CakeID),
			dialect: dialect.MySQL,
			want:    "SELECT `cake`.`id`, `cake`.`name` FROM `cake` ORDER BY `cake`.`name` ASC, `cake`.`id` DESC",
		},
		{
			name:    "LimitOffset",
			query:   query.Find[fixture.Cake]().Limit(10).Offset(20),
			dialect: dialect.Postgres,
			want:    `SELECT "cake"."id", "cake"."name" FROM "cake" LIMIT 10 OFFSET 20`,
		},
		{
			name:    "Distinct",
			query:   query.Find[fixture.Fruit]().SelectOnly().Column(fixture.FruitName).Distinct(),
			dialect: dialect.SQLite,
			want:    `SELECT DISTINCT "fruit"."name" FROM "fruit"`,
		},
		{
			name: "Subquery",
			query: query.Find[fixture.Cake]().Filter(fixture.CakeID.Def().In(
				query.Find[fixture.Fruit]().SelectOnly().Column(fixture.FruitCakeID),
			)),
			dialect: dialect.MySQL,
			want:    "SELECT `cake`.`id`, `cake`.`name` FROM `cake` WHERE `cake`.`id` IN (SELECT `fruit`.`cake_id` FROM `fruit`)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, build(t, tt.dialect, tt.query).String())
		})
	}
}

func TestFindPlaceholders(t *testing.T) {
	stmt := build(t, dialect.Postgres, query.Find[fixture.Cake]().
		Filter(fixture.CakeID.Between(1, 5)).
		Filter(fixture.CakeName.EQ("Lemon")))
	assert.Equal(t, `SELECT "cake"."id", "cake"."name" FROM "cake" WHERE "cake"."id" BETWEEN $1 AND $2 AND "cake"."name" = $3`, stmt.SQL)
	assert.Equal(t, []any{1, 5, "Lemon"}, stmt.Args)
	assert.Equal(t, dialect.Postgres, stmt.Dialect)
}

func TestFindBy(t *testing.T) {
	stmt := build(t, dialect.Postgres, query.FindBy[fixture.Cake](11))
	assert.Equal(t, `SELECT "cake"."id", "cake"."name" FROM "cake" WHERE "cake"."id" = 11`, stmt.String())

	stmt = build(t, dialect.Postgres, query.FindBy[fixture.CakeFilling](2, 3))
	assert.Equal(t, `SELECT "cake_filling"."cake_id", "cake_filling"."filling_id" FROM "cake_filling" `+
		`WHERE "cake_filling"."cake_id" = 2 AND "cake_filling"."filling_id" = 3`, stmt.String())

	t.Run("Arity", func(t *testing.T) {
		for _, q := range []builder{
			query.FindBy[fixture.CakeFilling](2),
			query.FindBy[fixture.Cake](1, 2),
			query.FindBy[fixture.Cake](),
		} {
			_, err := q.Build(dialect.MySQL)
			require.ErrorIs(t, err, query.ErrPrimaryKeyArity)
		}
	})
}

func TestJoin(t *testing.T) {
	cakeFruit := fixture.Cake{}.Relations()[0]
	fruitCake := fixture.Fruit{}.Relations()[0]
	link := entity.ConjunctRelations(fixture.Cake{})[0].Link()

	tests := []struct {
		name  string
		query builder
		want  string
	}{
		{
			name:  "Inner",
			query: query.Find[fixture.Cake]().InnerJoin(cakeFruit),
			want:  "SELECT `cake`.`id`, `cake`.`name` FROM `cake` INNER JOIN `fruit` ON `cake`.`id` = `fruit`.`cake_id`",
		},
		{
			name:  "Left",
			query: query.Find[fixture.Fruit]().LeftJoin(fruitCake),
			want:  "SELECT `fruit`.`id`, `fruit`.`name`, `fruit`.`cake_id` FROM `fruit` LEFT JOIN `cake` ON `fruit`.`cake_id` = `cake`.`id`",
		},
		{
			name:  "Right",
			query: query.Find[fixture.Cake]().RightJoin(cakeFruit),
			want:  "SELECT `cake`.`id`, `cake`.`name` FROM `cake` RIGHT JOIN `fruit` ON `cake`.`id` = `fruit`.`cake_id`",
		},
		{
			name:  "Rev",
			query: query.Find[fixture.Cake]().JoinRev(query.InnerJoin, fruitCake),
			want:  "SELECT `cake`.`id`, `cake`.`name` FROM `cake` INNER JOIN `fruit` ON `fruit`.`cake_id` = `cake`.`id`",
		},
		{
			name:  "Link",
			query: query.Find[fixture.Cake]().JoinLink(query.LeftJoin, link),
			want: "SELECT `cake`.`id`, `cake`.`name` FROM `cake` " +
				"LEFT JOIN `cake_filling` ON `cake`.`id` = `cake_filling`.`cake_id` " +
				"LEFT JOIN `filling` ON `cake_filling`.`filling_id` = `filling`.`id`",
		},
		{
			name: "SelectJoined",
			query: query.Find[fixture.Cake]().
				LeftJoin(cakeFruit).
				ColumnAs(fixture.FruitName, "fruit_name").
				Filter(fixture.FruitName.IsNotNull()),
			want: "SELECT `cake`.`id`, `cake`.`name`, `fruit`.`name` AS `fruit_name` FROM `cake` " +
				"LEFT JOIN `fruit` ON `cake`.`id` = `fruit`.`cake_id` WHERE `fruit`.`name` IS NOT NULL",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, build(t, dialect.MySQL, tt.query).String())
		})
	}
}

func TestJoinComposite(t *testing.T) {
	composite := entity.RelationDef{
		Type:      entity.TypeHasMany,
		FromTable: "cake_filling",
		ToTable:   "cake_filling_price",
		FromCol:   entity.Identity{"cake_id", "filling_id"},
		ToCol:     entity.Identity{"cake_id", "filling_id"},
	}
	_, err := query.Find[fixture.CakeFilling]().InnerJoin(composite).Build(dialect.Postgres)
	require.ErrorIs(t, err, query.ErrCompositeJoin)

	mismatch := composite
	mismatch.ToCol = entity.Unary("cake_id")
	_, err = query.Find[fixture.CakeFilling]().InnerJoin(mismatch).Build(dialect.Postgres)
	require.ErrorIs(t, err, entity.ErrArityMismatch)
}

func TestFindRelated(t *testing.T) {
	t.Run("Direct", func(t *testing.T) {
		q := query.FindRelated[fixture.Cake, fixture.Fruit](entity.Direct(fixture.Cake{}.Relations()[0]), 1)
		assert.Equal(t, "SELECT `fruit`.`id`, `fruit`.`name`, `fruit`.`cake_id` FROM `fruit` "+
			"INNER JOIN `cake` ON `cake`.`id` = `fruit`.`cake_id` WHERE `cake`.`id` = 1",
			build(t, dialect.MySQL, q).String())
	})
	t.Run("Conjunct", func(t *testing.T) {
		link := entity.ConjunctRelations(fixture.Cake{})[0].Link()
		q := query.FindRelated[fixture.Cake, fixture.Filling](link, 1)
		assert.Equal(t, "SELECT `filling`.`id`, `filling`.`name` FROM `filling` "+
			"INNER JOIN `cake_filling` ON `cake_filling`.`filling_id` = `filling`.`id` "+
			"INNER JOIN `cake` ON `cake`.`id` = `cake_filling`.`cake_id` WHERE `cake`.`id` = 1",
			build(t, dialect.MySQL, q).String())
	})
	t.Run("WrongLink", func(t *testing.T) {
		_, err := query.FindRelated[fixture.Fruit, fixture.Filling](entity.Direct(fixture.Cake{}.Relations()[0]), 1).Build(dialect.MySQL)
		require.EqualError(t, err, "query: link cake -> fruit does not lead from fruit to filling")
	})
	t.Run("Arity", func(t *testing.T) {
		_, err := query.FindRelated[fixture.Cake, fixture.Fruit](entity.Direct(fixture.Cake{}.Relations()[0])).Build(dialect.MySQL)
		require.ErrorIs(t, err, query.ErrPrimaryKeyArity)
	})
}

func TestSelectPure(t *testing.T) {
	q := query.Find[fixture.Cake]().Filter(fixture.CakeName.StartsWith("Choc")).Limit(1)
	first := build(t, dialect.Postgres, q)
	second := build(t, dialect.Postgres, q)
	assert.Equal(t, first, second)

	clone := q.Clone().Filter(fixture.CakeID.EQ(1))
	assert.Equal(t, first, build(t, dialect.Postgres, q), "clone does not share state")
	assert.NotEqual(t, first.SQL, build(t, dialect.Postgres, clone).SQL)
}

func TestFromDynamic(t *testing.T) {
	cake := entity.NewDynamic("cake", []entity.ColumnDef{
		{Name: "id", Type: field.TypeInt32},
		{Name: "name", Type: field.TypeString},
	}, []string{"id"}, nil, nil)

	q := query.From(cake).ByKey(3)
	assert.Equal(t, cake, q.Entity())
	assert.Equal(t, "cake", q.Table())
	assert.Equal(t, `SELECT "cake"."id", "cake"."name" FROM "cake" WHERE "cake"."id" = 3`, build(t, dialect.SQLite, q).String())
}

// For every subset of columns selected explicitly, the projection lists
// exactly those columns in call order.
func TestSelectOnlyProjection(t *testing.T) {
	cols := fixture.Fruit{}.Columns()
	for mask := 1; mask < 1<<len(cols); mask++ {
		var (
			exprs []sql.Expr
			want  = "SELECT "
		)
		for i := len(cols) - 1; i >= 0; i-- {
			if mask&(1<<i) == 0 {
				continue
			}
			if len(exprs) > 0 {
				want += ", "
			}
			exprs = append(exprs, cols[i])
			want += "`fruit`.`" + cols[i].Name + "`"
		}
		q := query.Find[fixture.Fruit]().SelectOnly().Column(exprs...)
		assert.Equal(t, want+" FROM `fruit`", build(t, dialect.MySQL, q).String())
	}
}
