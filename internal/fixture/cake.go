// Package fixture declares the bakery entities shared by package tests.
package fixture

import (
	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/entity"
	"github.com/syssam/strata/schema/field"
)

// Cake is the descriptor of the "cake" table.
type Cake struct{}

var (
	CakeID   = entity.NewColumn[Cake, int]("id", field.TypeInt)
	CakeName = entity.NewColumn[Cake, string]("name", field.TypeString)
)

func (Cake) Table() string { return "cake" }

func (Cake) Columns() []entity.ColumnDef { return entity.Defs(CakeID, CakeName) }

func (Cake) PrimaryKey() []entity.ColumnDef { return entity.Defs(CakeID) }

func (Cake) Relations() []entity.RelationDef {
	return []entity.RelationDef{
		entity.HasMany[Cake, Fruit]().From(CakeID).To(FruitCakeID).Def(),
	}
}

func (Cake) ConjunctRelations() []entity.ConjunctRelation {
	return []entity.ConjunctRelation{{
		Via:    CakeFilling{}.Table(),
		To:     Filling{}.Table(),
		ViaRel: entity.HasMany[Cake, CakeFilling]().From(CakeID).To(CakeFillingCakeID).Def(),
		ToRel:  entity.BelongsTo[CakeFilling, Filling]().From(CakeFillingFillingID).To(FillingID).Def(),
	}}
}

// CakeModel is a row of the "cake" table.
type CakeModel struct {
	ID   int
	Name string
}

// FromRow implements entity.FromRow.
func (m *CakeModel) FromRow(row *dialect.Row, prefix string) (err error) {
	if m.ID, err = dialect.GetPrefixed[int](row, prefix, CakeID.Name()); err != nil {
		return err
	}
	m.Name, err = dialect.GetPrefixed[string](row, prefix, CakeName.Name())
	return err
}

// ActiveModel returns the model with every column Unchanged.
func (m CakeModel) ActiveModel() *CakeActive {
	return &CakeActive{ID: entity.Unchanged(m.ID), Name: entity.Unchanged(m.Name)}
}

// CakeActive is the writable form of CakeModel.
type CakeActive struct {
	ID   entity.ActiveValue[int]
	Name entity.ActiveValue[string]
}

func (*CakeActive) Entity() Cake { return Cake{} }

func (a *CakeActive) Take(column string) entity.ActiveValue[any] {
	switch column {
	case CakeID.Name():
		return a.ID.Move()
	case CakeName.Name():
		return a.Name.Move()
	}
	return entity.Unset[any]()
}

func (a *CakeActive) Get(column string) entity.ActiveValue[any] {
	switch column {
	case CakeID.Name():
		return a.ID.Erase()
	case CakeName.Name():
		return a.Name.Erase()
	}
	return entity.Unset[any]()
}

func (a *CakeActive) Set(column string, v any) error {
	switch column {
	case CakeID.Name():
		return entity.Assign(&a.ID, column, v)
	case CakeName.Name():
		return entity.Assign(&a.Name, column, v)
	}
	return unknownColumn(Cake{}, column)
}

func (a *CakeActive) Unset(column string) {
	switch column {
	case CakeID.Name():
		a.ID = entity.Unset[int]()
	case CakeName.Name():
		a.Name = entity.Unset[string]()
	}
}
