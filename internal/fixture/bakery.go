package fixture

import (
	"encoding/json"

	"github.com/syssam/strata/entity"
	"github.com/syssam/strata/schema/field"
)

// Bakery is the descriptor of the "bakery" table. It has no hand-written
// model; tests write it through entity.Record.
type Bakery struct{}

var (
	BakeryID           = entity.NewColumn[Bakery, int]("id", field.TypeInt)
	BakeryName         = entity.NewColumn[Bakery, string]("name", field.TypeString)
	BakeryProfitMargin = entity.NewColumn[Bakery, float64]("profit_margin", field.TypeFloat64)
)

func (Bakery) Table() string { return "bakery" }

func (Bakery) Columns() []entity.ColumnDef {
	return entity.Defs(BakeryID, BakeryName, BakeryProfitMargin)
}

func (Bakery) PrimaryKey() []entity.ColumnDef { return entity.Defs(BakeryID) }

func (Bakery) Relations() []entity.RelationDef {
	return []entity.RelationDef{
		entity.HasMany[Bakery, Baker]().From(BakeryID).To(BakerBakeryID).Def(),
	}
}

// Baker is the descriptor of the "baker" table.
type Baker struct{}

var (
	BakerID             = entity.NewColumn[Baker, int]("id", field.TypeInt)
	BakerName           = entity.NewColumn[Baker, string]("name", field.TypeString)
	BakerContactDetails = entity.NewColumn[Baker, json.RawMessage]("contact_details", field.TypeJSON, entity.Nullable())
	BakerBakeryID       = entity.NewColumn[Baker, *int]("bakery_id", field.TypeInt, entity.Nullable())
)

func (Baker) Table() string { return "baker" }

func (Baker) Columns() []entity.ColumnDef {
	return entity.Defs(BakerID, BakerName, BakerContactDetails, BakerBakeryID)
}

func (Baker) PrimaryKey() []entity.ColumnDef { return entity.Defs(BakerID) }

func (Baker) Relations() []entity.RelationDef {
	return []entity.RelationDef{
		entity.BelongsTo[Baker, Bakery]().From(BakerBakeryID).To(BakeryID).Def(),
	}
}

// Schema is the DDL of the fixture tables for SQLite.
const Schema = `
CREATE TABLE bakery (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	profit_margin REAL NOT NULL DEFAULT 0
);
CREATE TABLE baker (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	contact_details JSON,
	bakery_id INTEGER REFERENCES bakery (id)
);
CREATE TABLE cake (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);
CREATE TABLE fruit (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	cake_id INTEGER REFERENCES cake (id)
);
CREATE TABLE filling (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE TABLE cake_filling (
	cake_id INTEGER NOT NULL REFERENCES cake (id),
	filling_id INTEGER NOT NULL REFERENCES filling (id),
	PRIMARY KEY (cake_id, filling_id)
);
`
