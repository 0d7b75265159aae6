package entity

import (
	"errors"
	"fmt"
)

// ErrArityMismatch is returned when the two sides of a relation have a
// different number of columns.
var ErrArityMismatch = errors.New("entity: relation arity mismatch")

// RelationType is the cardinality of a relation, seen from its owner.
type RelationType uint8

// Relation types.
const (
	TypeHasOne RelationType = iota + 1
	TypeHasMany
	TypeBelongsTo
)

// String implements fmt.Stringer.
func (t RelationType) String() string {
	switch t {
	case TypeHasOne:
		return "HasOne"
	case TypeHasMany:
		return "HasMany"
	case TypeBelongsTo:
		return "BelongsTo"
	default:
		return "Invalid"
	}
}

// RelationDef is a directed edge between two tables, joined on
// FromTable.FromCol = ToTable.ToCol.
type RelationDef struct {
	Type      RelationType
	FromTable string
	ToTable   string
	FromCol   Identity
	ToCol     Identity
}

// Rev returns the relation seen from the other endpoint. The reverse of a
// HasOne or HasMany relation is BelongsTo; the reverse of a BelongsTo
// relation is HasMany.
func (r RelationDef) Rev() RelationDef {
	rev := RelationDef{
		Type:      TypeBelongsTo,
		FromTable: r.ToTable,
		ToTable:   r.FromTable,
		FromCol:   r.ToCol,
		ToCol:     r.FromCol,
	}
	if r.Type == TypeBelongsTo {
		rev.Type = TypeHasMany
	}
	return rev
}

// Validate checks that both endpoints are named and have the same arity.
func (r RelationDef) Validate() error {
	switch {
	case r.FromTable == "" || r.ToTable == "":
		return fmt.Errorf("entity: relation %s without a table", r.Type)
	case r.FromCol.Arity() == 0:
		return fmt.Errorf("entity: relation %s -> %s without columns", r.FromTable, r.ToTable)
	case r.FromCol.Arity() != r.ToCol.Arity():
		return fmt.Errorf("%w: %s.%s -> %s.%s", ErrArityMismatch, r.FromTable, r.FromCol, r.ToTable, r.ToCol)
	}
	return nil
}

// String implements fmt.Stringer.
func (r RelationDef) String() string {
	return fmt.Sprintf("%s(%s.%s -> %s.%s)", r.Type, r.FromTable, r.FromCol, r.ToTable, r.ToCol)
}

// RelationBuilder completes a relation seeded by HasOne, HasMany or
// BelongsTo.
//
//	entity.HasMany[Cake, Fruit]().From(CakeID).To(FruitCakeID).Def()
type RelationBuilder struct {
	def RelationDef
	err error
}

func newRelation[F, T Entity](typ RelationType) *RelationBuilder {
	var (
		from F
		to   T
	)
	return &RelationBuilder{def: RelationDef{Type: typ, FromTable: from.Table(), ToTable: to.Table()}}
}

// HasOne starts a has-one relation from F to T.
func HasOne[F, T Entity]() *RelationBuilder { return newRelation[F, T](TypeHasOne) }

// HasMany starts a has-many relation from F to T.
func HasMany[F, T Entity]() *RelationBuilder { return newRelation[F, T](TypeHasMany) }

// BelongsTo starts a belongs-to relation from F to T.
func BelongsTo[F, T Entity]() *RelationBuilder { return newRelation[F, T](TypeBelongsTo) }

// Relation starts a relation between two tables given by name. It is used by
// entities that are only known at runtime.
func Relation(typ RelationType, from, to string) *RelationBuilder {
	return &RelationBuilder{def: RelationDef{Type: typ, FromTable: from, ToTable: to}}
}

// From sets the owner columns. Columns must belong to the owner table.
func (b *RelationBuilder) From(cols ...ColumnRef) *RelationBuilder {
	for _, c := range cols {
		if t := c.Def().Table; t != b.def.FromTable && b.err == nil {
			b.err = fmt.Errorf("entity: column %s.%s does not belong to %s", t, c.Def().Name, b.def.FromTable)
		}
	}
	b.def.FromCol = identityOf(cols)
	return b
}

// To sets the referenced columns. Columns must belong to the target table.
func (b *RelationBuilder) To(cols ...ColumnRef) *RelationBuilder {
	for _, c := range cols {
		if t := c.Def().Table; t != b.def.ToTable && b.err == nil {
			b.err = fmt.Errorf("entity: column %s.%s does not belong to %s", t, c.Def().Name, b.def.ToTable)
		}
	}
	b.def.ToCol = identityOf(cols)
	return b
}

// FromNames sets the owner columns by name.
func (b *RelationBuilder) FromNames(cols ...string) *RelationBuilder {
	b.def.FromCol = append(Identity(nil), cols...)
	return b
}

// ToNames sets the referenced columns by name.
func (b *RelationBuilder) ToNames(cols ...string) *RelationBuilder {
	b.def.ToCol = append(Identity(nil), cols...)
	return b
}

// Build returns the relation, or an error if it is incomplete or the two
// sides differ in arity.
func (b *RelationBuilder) Build() (RelationDef, error) {
	if b.err != nil {
		return RelationDef{}, b.err
	}
	if err := b.def.Validate(); err != nil {
		return RelationDef{}, err
	}
	return b.def, nil
}

// Def is like Build but panics on error. It is meant for hand-written
// entity declarations where a bad relation is a programming error.
func (b *RelationBuilder) Def() RelationDef {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

// ConjunctRelation is a many-to-many relation through a junction table
// whose primary key is exactly the pair of foreign keys to both sides.
// ViaRel joins the owner to the junction and ToRel joins the junction to
// the target.
type ConjunctRelation struct {
	Via    string
	To     string
	ViaRel RelationDef
	ToRel  RelationDef
}

// Link returns the traversal path of the relation.
func (c ConjunctRelation) Link() Link {
	via := c.ViaRel
	return Link{To: c.ToRel, Via: &via}
}

// Link describes how to reach a related table: directly through To, or
// through Via first and then To.
type Link struct {
	To  RelationDef
	Via *RelationDef
}

// Relations returns the relations of the link in traversal order.
func (l Link) Relations() []RelationDef {
	if l.Via == nil {
		return []RelationDef{l.To}
	}
	return []RelationDef{*l.Via, l.To}
}

// Direct returns the link of a single relation.
func Direct(r RelationDef) Link {
	return Link{To: r}
}

// Via returns the link traversing via and then to.
func Via(via, to RelationDef) Link {
	return Link{To: to, Via: &via}
}
