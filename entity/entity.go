// Package entity describes tables as typed entities: their columns, primary
// keys and relations, plus the tri-state values used to write them.
//
// An entity is a zero-state descriptor type. Hand-written or generated code
// declares one struct per table and implements Entity on it:
//
//	type Cake struct{}
//
//	func (Cake) Table() string { return "cake" }
//
//	var (
//		CakeID   = entity.NewColumn[Cake, int]("id", field.TypeInt)
//		CakeName = entity.NewColumn[Cake, string]("name", field.TypeString)
//	)
//
//	func (Cake) Columns() []entity.ColumnDef    { return entity.Defs(CakeID, CakeName) }
//	func (Cake) PrimaryKey() []entity.ColumnDef { return entity.Defs(CakeID) }
//	func (Cake) Relations() []entity.RelationDef {
//		return []entity.RelationDef{
//			entity.HasMany[Cake, Fruit]().From(CakeID).To(FruitCakeID).Def(),
//		}
//	}
//
// Entities are immutable metadata and safe for concurrent use.
package entity

import (
	"errors"
	"fmt"
	"slices"
)

// Entity is the capability implemented by every table descriptor.
type Entity interface {
	// Table returns the table name.
	Table() string
	// Columns returns the columns in declared order.
	Columns() []ColumnDef
	// PrimaryKey returns the primary-key columns in declared order.
	PrimaryKey() []ColumnDef
	// Relations returns the direct relations owned by the entity.
	Relations() []RelationDef
}

// Conjuncter is implemented by entities with many-to-many relations.
type Conjuncter interface {
	ConjunctRelations() []ConjunctRelation
}

// ConjunctRelations returns the many-to-many relations of e, if any.
func ConjunctRelations(e Entity) []ConjunctRelation {
	if c, ok := e.(Conjuncter); ok {
		return c.ConjunctRelations()
	}
	return nil
}

// Lookup returns the named column of e.
func Lookup(e Entity, name string) (ColumnDef, bool) {
	for _, c := range e.Columns() {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDef{}, false
}

// RelationTo returns the first direct relation of e targeting table.
func RelationTo(e Entity, table string) (RelationDef, bool) {
	for _, r := range e.Relations() {
		if r.ToTable == table {
			return r, true
		}
	}
	return RelationDef{}, false
}

// Validate checks the structural invariants of an entity: it has a name and
// columns with unique names, a non-empty primary key made of its own
// columns, and relations of matching arity owned by it.
func Validate(e Entity) error {
	table := e.Table()
	if table == "" {
		return errors.New("entity: missing table name")
	}
	cols := e.Columns()
	if len(cols) == 0 {
		return fmt.Errorf("entity: %s has no columns", table)
	}
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		switch {
		case c.Name == "":
			return fmt.Errorf("entity: %s has an unnamed column", table)
		case slices.Contains(names, c.Name):
			return fmt.Errorf("entity: %s has duplicate column %q", table, c.Name)
		case c.Table != table:
			return fmt.Errorf("entity: column %q of %s belongs to %q", c.Name, table, c.Table)
		}
		names = append(names, c.Name)
	}
	pk := e.PrimaryKey()
	if len(pk) == 0 {
		return fmt.Errorf("entity: %s has no primary key", table)
	}
	for _, c := range pk {
		if !slices.Contains(names, c.Name) {
			return fmt.Errorf("entity: primary key column %q is not a column of %s", c.Name, table)
		}
	}
	for _, r := range e.Relations() {
		if err := r.Validate(); err != nil {
			return err
		}
		if r.FromTable != table {
			return fmt.Errorf("entity: relation %s is not owned by %s", r, table)
		}
		for _, c := range r.FromCol {
			if !slices.Contains(names, c) {
				return fmt.Errorf("entity: relation %s uses unknown column %q", r, c)
			}
		}
	}
	for _, c := range ConjunctRelations(e) {
		if c.Via == "" || c.To == "" {
			return fmt.Errorf("entity: conjunct relation of %s without a junction or target", table)
		}
	}
	return nil
}

// Dynamic is an entity known only at runtime, e.g. one reconstructed from
// a live database schema. A nil *Dynamic describes an empty entity, so
// queries over dynamic entities start from query.From rather than
// query.Find.
type Dynamic struct {
	table     string
	columns   []ColumnDef
	pk        []string
	relations []RelationDef
	conjuncts []ConjunctRelation
}

// NewDynamic returns a runtime entity. Columns are attached to the table.
func NewDynamic(table string, columns []ColumnDef, pk []string, relations []RelationDef, conjuncts []ConjunctRelation) *Dynamic {
	d := &Dynamic{
		table:     table,
		columns:   make([]ColumnDef, len(columns)),
		pk:        slices.Clone(pk),
		relations: slices.Clone(relations),
		conjuncts: slices.Clone(conjuncts),
	}
	for i, c := range columns {
		c.Table = table
		d.columns[i] = c
	}
	return d
}

// Table implements Entity.
func (d *Dynamic) Table() string {
	if d == nil {
		return ""
	}
	return d.table
}

// Columns implements Entity.
func (d *Dynamic) Columns() []ColumnDef {
	if d == nil {
		return nil
	}
	return slices.Clone(d.columns)
}

// PrimaryKey implements Entity.
func (d *Dynamic) PrimaryKey() []ColumnDef {
	if d == nil {
		return nil
	}
	pk := make([]ColumnDef, 0, len(d.pk))
	for _, name := range d.pk {
		c, ok := Lookup(d, name)
		if !ok {
			c = ColumnDef{Table: d.table, Name: name}
		}
		pk = append(pk, c)
	}
	return pk
}

// Relations implements Entity.
func (d *Dynamic) Relations() []RelationDef {
	if d == nil {
		return nil
	}
	return slices.Clone(d.relations)
}

// ConjunctRelations implements Conjuncter.
func (d *Dynamic) ConjunctRelations() []ConjunctRelation {
	if d == nil {
		return nil
	}
	return slices.Clone(d.conjuncts)
}

// Column returns the named column.
func (d *Dynamic) Column(name string) (ColumnDef, bool) {
	return Lookup(d, name)
}
