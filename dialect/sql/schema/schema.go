// Package schema describes physical database schemas: tables with their
// columns, indexes and foreign keys, as read from a live database.
package schema

import (
	"slices"

	"github.com/syssam/strata/schema/field"
)

// Table is the physical description of one table.
type Table struct {
	Name        string
	Columns     []*Column
	Indexes     []*Index
	ForeignKeys []*ForeignKey
}

// Column is the physical description of one column.
type Column struct {
	Name     string
	Type     field.Type
	Raw      string // Raw database type, e.g. "varchar(255)"
	Nullable bool
}

// Index describes a table index. The primary key is recorded as an index
// with Primary set.
type Index struct {
	Name    string
	Primary bool
	Unique  bool
	Columns []string
}

// ReferenceOption is the action of a foreign key on update or delete.
type ReferenceOption string

// Reference options.
const (
	NoAction   ReferenceOption = "NO ACTION"
	Restrict   ReferenceOption = "RESTRICT"
	Cascade    ReferenceOption = "CASCADE"
	SetNull    ReferenceOption = "SET NULL"
	SetDefault ReferenceOption = "SET DEFAULT"
)

// ForeignKey describes a foreign-key constraint declared on a table.
type ForeignKey struct {
	Symbol     string
	Columns    []string
	RefTable   string
	RefColumns []string
	OnUpdate   ReferenceOption
	OnDelete   ReferenceOption
}

// NewTable returns a new table with the given name.
func NewTable(name string) *Table {
	return &Table{Name: name}
}

// AddColumn appends a column to the table.
func (t *Table) AddColumn(c *Column) *Table {
	t.Columns = append(t.Columns, c)
	return t
}

// AddPrimaryKey records the primary key of the table.
func (t *Table) AddPrimaryKey(columns ...string) *Table {
	t.Indexes = append(t.Indexes, &Index{Name: "PRIMARY", Primary: true, Unique: true, Columns: columns})
	return t
}

// AddIndex appends an index to the table.
func (t *Table) AddIndex(idx *Index) *Table {
	t.Indexes = append(t.Indexes, idx)
	return t
}

// AddForeignKey appends a foreign key to the table.
func (t *Table) AddForeignKey(fk *ForeignKey) *Table {
	t.ForeignKeys = append(t.ForeignKeys, fk)
	return t
}

// Column returns the named column of the table.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// PrimaryKey returns the primary-key columns in declared order.
func (t *Table) PrimaryKey() []string {
	for _, idx := range t.Indexes {
		if idx.Primary {
			return idx.Columns
		}
	}
	return nil
}

// UniqueColumn reports whether the named column is unique on its own: it is
// the single column of a unique index or of the primary key.
func (t *Table) UniqueColumn(name string) bool {
	for _, idx := range t.Indexes {
		if idx.Unique && len(idx.Columns) == 1 && idx.Columns[0] == name {
			return true
		}
	}
	return false
}

// UniqueColumns reports whether the given column set is unique: a unique
// index covers exactly these columns, or every column is unique on its own.
func (t *Table) UniqueColumns(columns ...string) bool {
	if len(columns) == 0 {
		return false
	}
	for _, idx := range t.Indexes {
		if !idx.Unique || len(idx.Columns) != len(columns) {
			continue
		}
		if sameSet(idx.Columns, columns) {
			return true
		}
	}
	for _, c := range columns {
		if !t.UniqueColumn(c) {
			return false
		}
	}
	return true
}

func sameSet(a, b []string) bool {
	for _, c := range b {
		if !slices.Contains(a, c) {
			return false
		}
	}
	return true
}
