package fixture

import (
	"fmt"

	"github.com/syssam/strata"
	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/entity"
	"github.com/syssam/strata/schema/field"
)

// Filling is the descriptor of the "filling" table.
type Filling struct{}

var (
	FillingID   = entity.NewColumn[Filling, int]("id", field.TypeInt)
	FillingName = entity.NewColumn[Filling, string]("name", field.TypeString)
)

func (Filling) Table() string { return "filling" }

func (Filling) Columns() []entity.ColumnDef { return entity.Defs(FillingID, FillingName) }

func (Filling) PrimaryKey() []entity.ColumnDef { return entity.Defs(FillingID) }

func (Filling) Relations() []entity.RelationDef { return nil }

func (Filling) ConjunctRelations() []entity.ConjunctRelation {
	return []entity.ConjunctRelation{{
		Via:    CakeFilling{}.Table(),
		To:     Cake{}.Table(),
		ViaRel: entity.HasMany[Filling, CakeFilling]().From(FillingID).To(CakeFillingFillingID).Def(),
		ToRel:  entity.BelongsTo[CakeFilling, Cake]().From(CakeFillingCakeID).To(CakeID).Def(),
	}}
}

// FillingModel is a row of the "filling" table.
type FillingModel struct {
	ID   int
	Name string
}

// FromRow implements entity.FromRow.
func (m *FillingModel) FromRow(row *dialect.Row, prefix string) (err error) {
	if m.ID, err = dialect.GetPrefixed[int](row, prefix, FillingID.Name()); err != nil {
		return err
	}
	m.Name, err = dialect.GetPrefixed[string](row, prefix, FillingName.Name())
	return err
}

// CakeFilling is the descriptor of the "cake_filling" junction table.
type CakeFilling struct{}

var (
	CakeFillingCakeID    = entity.NewColumn[CakeFilling, int]("cake_id", field.TypeInt)
	CakeFillingFillingID = entity.NewColumn[CakeFilling, int]("filling_id", field.TypeInt)
)

func (CakeFilling) Table() string { return "cake_filling" }

func (CakeFilling) Columns() []entity.ColumnDef {
	return entity.Defs(CakeFillingCakeID, CakeFillingFillingID)
}

func (CakeFilling) PrimaryKey() []entity.ColumnDef {
	return entity.Defs(CakeFillingCakeID, CakeFillingFillingID)
}

func (CakeFilling) Relations() []entity.RelationDef {
	return []entity.RelationDef{
		entity.BelongsTo[CakeFilling, Cake]().From(CakeFillingCakeID).To(CakeID).Def(),
		entity.BelongsTo[CakeFilling, Filling]().From(CakeFillingFillingID).To(FillingID).Def(),
	}
}

func unknownColumn(e entity.Entity, column string) error {
	return strata.NewValidationError(column, fmt.Errorf("%w of %s", entity.ErrUnknownColumn, e.Table()))
}
