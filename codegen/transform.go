package codegen

import (
	"cmp"
	"slices"

	"github.com/syssam/strata"
	"github.com/syssam/strata/dialect/sql/schema"
	"github.com/syssam/strata/entity"
)

// Entity is the entity model synthesized for one table.
type Entity struct {
	Table      string
	Columns    []entity.ColumnDef
	PrimaryKey []string
	// Relations holds the BelongsTo relations of the foreign keys declared
	// on the table, followed by the HasOne and HasMany inverses of the
	// foreign keys referencing it.
	Relations []entity.RelationDef
	// Conjuncts holds the many-to-many relations mediated by junction
	// tables referencing this table.
	Conjuncts []entity.ConjunctRelation
	// Junction reports whether the table is a pure junction table: two
	// columns, both in the primary key, with two foreign keys.
	Junction bool
}

// Runtime returns the entity as a descriptor usable with package query.
//
//	rows, err := executor.Rows(ctx, db, query.From(e.Runtime()))
func (e *Entity) Runtime() *entity.Dynamic {
	return entity.NewDynamic(e.Table, e.Columns, e.PrimaryKey, e.Relations, e.Conjuncts)
}

// Column returns the named column of the entity.
func (e *Entity) Column(name string) (entity.ColumnDef, bool) {
	for _, c := range e.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return entity.ColumnDef{}, false
}

// Transform synthesizes the entity model of a physical schema. Every table
// yields an entity, foreign keys yield BelongsTo relations on the
// referencing table and HasOne or HasMany inverses on the referenced one,
// and junction tables yield conjunct relations on the tables they link.
//
// A nil table, a table without a name or a structurally invalid table
// aborts the transformation with a *strata.TransformError; no partial
// model is returned. Foreign keys referencing tables outside the given set
// keep their BelongsTo relation and produce no inverse.
func Transform(tables []*schema.Table) (*Writer, error) {
	for _, t := range tables {
		if err := check(t); err != nil {
			return nil, err
		}
	}
	if r := schema.ValidateSchema(tables, schema.AllowDanglingReferences()); r.HasErrors() {
		e := r.Errors[0]
		return nil, strata.NewTransformError(e.Table, e.Error())
	}
	// Tables are visited in name order so the relation lists do not depend
	// on the order of the input.
	sorted := slices.Clone(tables)
	slices.SortFunc(sorted, func(a, b *schema.Table) int { return cmp.Compare(a.Name, b.Name) })

	var (
		entities  = make(map[string]*Entity, len(sorted))
		inverse   = make(map[string][]entity.RelationDef)
		conjuncts = make(map[string][]entity.ConjunctRelation)
	)
	for _, t := range sorted {
		e := newEntity(t)
		entities[t.Name] = e
		for i, fk := range t.ForeignKeys {
			if e.Junction {
				// The conjunct of the i-th foreign key leads to the table of
				// the other one. Pairing is positional.
				other := t.ForeignKeys[1-i]
				conjuncts[fk.RefTable] = append(conjuncts[fk.RefTable], entity.ConjunctRelation{
					Via:    t.Name,
					To:     other.RefTable,
					ViaRel: inverseOf(t, fk, entity.TypeHasMany),
					ToRel:  forwardOf(t, other),
				})
				continue
			}
			typ := entity.TypeHasMany
			if t.UniqueColumns(fk.Columns...) {
				typ = entity.TypeHasOne
			}
			inverse[fk.RefTable] = append(inverse[fk.RefTable], inverseOf(t, fk, typ))
		}
	}
	for table, rels := range inverse {
		if e, ok := entities[table]; ok {
			e.Relations = append(e.Relations, rels...)
		}
	}
	for table, cs := range conjuncts {
		if e, ok := entities[table]; ok {
			e.Conjuncts = append(e.Conjuncts, cs...)
		}
	}
	return &Writer{entities: entities}, nil
}

func check(t *schema.Table) error {
	switch {
	case t == nil:
		return strata.NewTransformError("", "nil table description")
	case t.Name == "":
		return strata.NewTransformError("", "table name should not be empty")
	}
	if r := schema.ValidateTable(t); r.HasErrors() {
		return strata.NewTransformError(t.Name, r.Err().Error())
	}
	return nil
}

func newEntity(t *schema.Table) *Entity {
	e := &Entity{
		Table:      t.Name,
		PrimaryKey: slices.Clone(t.PrimaryKey()),
	}
	for _, c := range t.Columns {
		e.Columns = append(e.Columns, entity.ColumnDef{
			Table:    t.Name,
			Name:     c.Name,
			Type:     c.Type,
			Nullable: c.Nullable,
			Unique:   uniqueIndex(t, c.Name),
		})
	}
	e.Junction = len(e.PrimaryKey) == 2 && len(t.Columns) == 2 && len(t.ForeignKeys) == 2
	for _, fk := range t.ForeignKeys {
		e.Relations = append(e.Relations, forwardOf(t, fk))
	}
	return e
}

// uniqueIndex reports whether a non-primary unique index covers exactly
// the named column.
func uniqueIndex(t *schema.Table, column string) bool {
	for _, idx := range t.Indexes {
		if idx.Unique && !idx.Primary && len(idx.Columns) == 1 && idx.Columns[0] == column {
			return true
		}
	}
	return false
}

// forwardOf returns the BelongsTo relation of a foreign key declared on t.
func forwardOf(t *schema.Table, fk *schema.ForeignKey) entity.RelationDef {
	return entity.RelationDef{
		Type:      entity.TypeBelongsTo,
		FromTable: t.Name,
		ToTable:   fk.RefTable,
		FromCol:   slices.Clone(fk.Columns),
		ToCol:     slices.Clone(fk.RefColumns),
	}
}

// inverseOf returns the relation of a foreign key declared on t, seen from
// the referenced table.
func inverseOf(t *schema.Table, fk *schema.ForeignKey, typ entity.RelationType) entity.RelationDef {
	return entity.RelationDef{
		Type:      typ,
		FromTable: fk.RefTable,
		ToTable:   t.Name,
		FromCol:   slices.Clone(fk.RefColumns),
		ToCol:     slices.Clone(fk.Columns),
	}
}
