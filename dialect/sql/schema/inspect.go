package schema

import (
	"context"
	"fmt"

	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	atlas "ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/schema/field"
)

// InspectOption configures Inspect.
type InspectOption func(*inspectConfig)

type inspectConfig struct {
	schema string
	tables []string
}

// InspectSchema sets the database schema to inspect. The default is the
// schema of the connection ("main" for SQLite).
func InspectSchema(name string) InspectOption {
	return func(c *inspectConfig) {
		c.schema = name
	}
}

// InspectTables limits inspection to the given tables.
func InspectTables(names ...string) InspectOption {
	return func(c *inspectConfig) {
		c.tables = append(c.tables, names...)
	}
}

// Inspect reads the tables of a live database. It only reads the schema
// and never writes DDL.
//
//	db, _ := sql.Open("sqlite", "file:bakery.db")
//	tables, err := schema.Inspect(ctx, db, dialect.SQLite)
func Inspect(ctx context.Context, db atlas.ExecQuerier, dialectName string, opts ...InspectOption) ([]*Table, error) {
	cfg := &inspectConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	var (
		insp atlas.Inspector
		err  error
	)
	switch dialectName {
	case dialect.MySQL:
		insp, err = mysql.Open(db)
	case dialect.Postgres:
		insp, err = postgres.Open(db)
	case dialect.SQLite:
		insp, err = sqlite.Open(db)
	default:
		return nil, fmt.Errorf("schema: unsupported dialect %q", dialectName)
	}
	if err != nil {
		return nil, fmt.Errorf("schema: open %s inspector: %w", dialectName, err)
	}
	s, err := insp.InspectSchema(ctx, cfg.schema, &atlas.InspectOptions{Tables: cfg.tables})
	if err != nil {
		return nil, fmt.Errorf("schema: inspect: %w", err)
	}
	tables := make([]*Table, 0, len(s.Tables))
	for _, t := range s.Tables {
		tables = append(tables, FromAtlas(t))
	}
	return tables, nil
}

// FromAtlas converts an atlas table description.
func FromAtlas(t *atlas.Table) *Table {
	tbl := NewTable(t.Name)
	for _, c := range t.Columns {
		col := &Column{Name: c.Name}
		if c.Type != nil {
			col.Raw = c.Type.Raw
			col.Nullable = c.Type.Null
			col.Type = columnType(c.Type)
		}
		tbl.AddColumn(col)
	}
	if t.PrimaryKey != nil {
		if cols, ok := partColumns(t.PrimaryKey.Parts); ok {
			tbl.AddIndex(&Index{
				Name:    indexName(t.PrimaryKey.Name, "PRIMARY"),
				Primary: true,
				Unique:  true,
				Columns: cols,
			})
		}
	}
	for _, idx := range t.Indexes {
		cols, ok := partColumns(idx.Parts)
		if !ok {
			continue
		}
		tbl.AddIndex(&Index{
			Name:    idx.Name,
			Unique:  idx.Unique,
			Columns: cols,
		})
	}
	for _, fk := range t.ForeignKeys {
		f := &ForeignKey{
			Symbol:   fk.Symbol,
			OnUpdate: ReferenceOption(fk.OnUpdate),
			OnDelete: ReferenceOption(fk.OnDelete),
		}
		for _, c := range fk.Columns {
			f.Columns = append(f.Columns, c.Name)
		}
		if fk.RefTable != nil {
			f.RefTable = fk.RefTable.Name
		}
		for _, c := range fk.RefColumns {
			f.RefColumns = append(f.RefColumns, c.Name)
		}
		tbl.AddForeignKey(f)
	}
	return tbl
}

func indexName(name, def string) string {
	if name == "" {
		return def
	}
	return name
}

// partColumns returns the column names of an index. It reports false
// when a part is an expression, since the column list alone would
// describe a different index.
func partColumns(parts []*atlas.IndexPart) ([]string, bool) {
	cols := make([]string, 0, len(parts))
	for _, p := range parts {
		if p.C == nil {
			return nil, false
		}
		cols = append(cols, p.C.Name)
	}
	return cols, true
}

// columnType maps an atlas column type to a field type. Types atlas could
// not classify fall back to the raw type name.
func columnType(ct *atlas.ColumnType) field.Type {
	switch t := ct.Type.(type) {
	case *atlas.BoolType:
		return field.TypeBool
	case *atlas.IntegerType:
		return field.FromSQL(rawOr(t.T, ct.Raw, t.Unsigned))
	case *atlas.DecimalType:
		return field.TypeDecimal
	case *atlas.FloatType:
		return field.FromSQL(t.T)
	case *atlas.StringType:
		return field.TypeString
	case *atlas.BinaryType:
		return field.TypeBytes
	case *atlas.TimeType:
		return field.TypeTime
	case *atlas.JSONType:
		return field.TypeJSON
	case *atlas.EnumType:
		return field.TypeEnum
	case *atlas.UUIDType:
		return field.TypeUUID
	default:
		return field.FromSQL(ct.Raw)
	}
}

func rawOr(t, raw string, unsigned bool) string {
	if t == "" {
		t = raw
	}
	if unsigned {
		t += " unsigned"
	}
	return t
}
