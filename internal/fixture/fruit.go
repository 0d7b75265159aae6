package fixture

import (
	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/entity"
	"github.com/syssam/strata/schema/field"
)

// Fruit is the descriptor of the "fruit" table.
type Fruit struct{}

var (
	FruitID     = entity.NewColumn[Fruit, int]("id", field.TypeInt)
	FruitName   = entity.NewColumn[Fruit, string]("name", field.TypeString)
	FruitCakeID = entity.NewColumn[Fruit, *int]("cake_id", field.TypeInt, entity.Nullable())
)

func (Fruit) Table() string { return "fruit" }

func (Fruit) Columns() []entity.ColumnDef { return entity.Defs(FruitID, FruitName, FruitCakeID) }

func (Fruit) PrimaryKey() []entity.ColumnDef { return entity.Defs(FruitID) }

func (Fruit) Relations() []entity.RelationDef {
	return []entity.RelationDef{
		entity.BelongsTo[Fruit, Cake]().From(FruitCakeID).To(CakeID).Def(),
	}
}

// FruitModel is a row of the "fruit" table.
type FruitModel struct {
	ID     int
	Name   string
	CakeID *int
}

// FromRow implements entity.FromRow.
func (m *FruitModel) FromRow(row *dialect.Row, prefix string) (err error) {
	if m.ID, err = dialect.GetPrefixed[int](row, prefix, FruitID.Name()); err != nil {
		return err
	}
	if m.Name, err = dialect.GetPrefixed[string](row, prefix, FruitName.Name()); err != nil {
		return err
	}
	m.CakeID, err = dialect.GetPrefixed[*int](row, prefix, FruitCakeID.Name())
	return err
}

// ActiveModel returns the model with every column Unchanged.
func (m FruitModel) ActiveModel() *FruitActive {
	return &FruitActive{
		ID:     entity.Unchanged(m.ID),
		Name:   entity.Unchanged(m.Name),
		CakeID: entity.Unchanged(m.CakeID),
	}
}

// FruitActive is the writable form of FruitModel.
type FruitActive struct {
	ID     entity.ActiveValue[int]
	Name   entity.ActiveValue[string]
	CakeID entity.ActiveValue[*int]
}

func (*FruitActive) Entity() Fruit { return Fruit{} }

func (a *FruitActive) Take(column string) entity.ActiveValue[any] {
	switch column {
	case FruitID.Name():
		return a.ID.Move()
	case FruitName.Name():
		return a.Name.Move()
	case FruitCakeID.Name():
		return a.CakeID.Move()
	}
	return entity.Unset[any]()
}

func (a *FruitActive) Get(column string) entity.ActiveValue[any] {
	switch column {
	case FruitID.Name():
		return a.ID.Erase()
	case FruitName.Name():
		return a.Name.Erase()
	case FruitCakeID.Name():
		return a.CakeID.Erase()
	}
	return entity.Unset[any]()
}

func (a *FruitActive) Set(column string, v any) error {
	switch column {
	case FruitID.Name():
		return entity.Assign(&a.ID, column, v)
	case FruitName.Name():
		return entity.Assign(&a.Name, column, v)
	case FruitCakeID.Name():
		return entity.Assign(&a.CakeID, column, v)
	}
	return unknownColumn(Fruit{}, column)
}

func (a *FruitActive) Unset(column string) {
	switch column {
	case FruitID.Name():
		a.ID = entity.Unset[int]()
	case FruitName.Name():
		a.Name = entity.Unset[string]()
	case FruitCakeID.Name():
		a.CakeID = entity.Unset[*int]()
	}
}
