package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/strata/schema/field"
)

func bakerTable() *Table {
	return NewTable("baker").
		AddColumn(&Column{Name: "id", Type: field.TypeInt64}).
		AddColumn(&Column{Name: "name", Type: field.TypeString}).
		AddColumn(&Column{Name: "bakery_id", Type: field.TypeInt64, Nullable: true}).
		AddColumn(&Column{Name: "badge_id", Type: field.TypeInt64}).
		AddColumn(&Column{Name: "shift", Type: field.TypeInt32}).
		AddPrimaryKey("id").
		AddIndex(&Index{Name: "baker_badge", Unique: true, Columns: []string{"badge_id"}}).
		AddIndex(&Index{Name: "baker_shift", Unique: true, Columns: []string{"bakery_id", "shift"}}).
		AddForeignKey(&ForeignKey{Symbol: "fk_baker_bakery", Columns: []string{"bakery_id"}, RefTable: "bakery", RefColumns: []string{"id"}})
}

func TestTable(t *testing.T) {
	tbl := bakerTable()
	assert.Equal(t, []string{"id"}, tbl.PrimaryKey())
	c, ok := tbl.Column("name")
	assert.True(t, ok)
	assert.Equal(t, field.TypeString, c.Type)
	_, ok = tbl.Column("missing")
	assert.False(t, ok)
	assert.Nil(t, NewTable("x").PrimaryKey())
}

func TestTableUnique(t *testing.T) {
	tbl := bakerTable()
	assert.True(t, tbl.UniqueColumn("id"), "single column primary key")
	assert.True(t, tbl.UniqueColumn("badge_id"))
	assert.False(t, tbl.UniqueColumn("bakery_id"), "part of a composite index only")

	assert.True(t, tbl.UniqueColumns("badge_id"))
	assert.True(t, tbl.UniqueColumns("shift", "bakery_id"), "composite index in any order")
	assert.True(t, tbl.UniqueColumns("id", "badge_id"), "every column unique on its own")
	assert.False(t, tbl.UniqueColumns("bakery_id"))
	assert.False(t, tbl.UniqueColumns("name", "id"))
	assert.False(t, tbl.UniqueColumns())
}
