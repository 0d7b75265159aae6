package codegen

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"

	"github.com/syssam/strata/entity"
	"github.com/syssam/strata/schema/field"
)

const (
	rootPkg    = "github.com/syssam/strata"
	dialectPkg = "github.com/syssam/strata/dialect"
	entityPkg  = "github.com/syssam/strata/entity"
	fieldPkg   = "github.com/syssam/strata/schema/field"
)

// Writer holds the entities synthesized by Transform and writes them out
// as Go source.
type Writer struct {
	entities map[string]*Entity
}

// Entities returns the entities keyed by table name.
func (w *Writer) Entities() map[string]*Entity {
	return maps.Clone(w.entities)
}

// Entity returns the entity of the named table.
func (w *Writer) Entity(table string) (*Entity, bool) {
	e, ok := w.entities[table]
	return e, ok
}

// Tables returns the table names in sorted order.
func (w *Writer) Tables() []string {
	return slices.Sorted(maps.Keys(w.entities))
}

// Generate returns the formatted Go source declaring the entity of the
// named table: its descriptor type, its typed columns, its model and,
// when enabled, its active model. A nil config uses the defaults.
func (w *Writer) Generate(table string, cfg *Config) ([]byte, error) {
	if cfg == nil {
		var err error
		if cfg, err = NewConfig(); err != nil {
			return nil, err
		}
	}
	e, ok := w.entities[table]
	if !ok {
		return nil, fmt.Errorf("codegen: unknown table %q", table)
	}
	known := make(map[string]bool)
	for _, t := range w.selected(cfg) {
		known[t] = true
	}
	g := &generator{e: e, name: typeName(e.Table), known: known}
	f := jen.NewFile(cfg.Package)
	f.HeaderComment(cfg.Header)
	g.descriptor(f)
	g.model(f)
	if cfg.ActiveModels {
		g.active(f)
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("codegen: render %s: %w", table, err)
	}
	out, err := imports.Process(fileName(table), buf.Bytes(), nil)
	if err != nil {
		return nil, fmt.Errorf("codegen: format %s: %w", table, err)
	}
	return out, nil
}

// WriteFiles generates one file per selected table into cfg.Target. Files
// are generated in parallel, bounded by cfg.Workers.
func (w *Writer) WriteFiles(ctx context.Context, cfg *Config) error {
	if cfg == nil || cfg.Target == "" {
		return NewConfigError("Target", nil, "target directory is required")
	}
	tables := w.selected(cfg)
	for _, t := range tables {
		if _, ok := w.entities[t]; !ok {
			return NewConfigError("Tables", t, "unknown table")
		}
	}
	if err := os.MkdirAll(cfg.Target, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	eg, ctx := errgroup.WithContext(ctx)
	if cfg.Workers > 0 {
		eg.SetLimit(cfg.Workers)
	}
	for _, t := range tables {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			buf, err := w.Generate(t, cfg)
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Target, fileName(t))
			if err := os.WriteFile(path, buf, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			return nil
		})
	}
	return eg.Wait()
}

func (w *Writer) selected(cfg *Config) []string {
	if len(cfg.Tables) == 0 {
		return w.Tables()
	}
	return cfg.Tables
}

// generator emits the declarations of one entity.
type generator struct {
	e     *Entity
	name  string
	known map[string]bool
}

func (g *generator) column(c entity.ColumnDef) string {
	return g.name + pascal(c.Name)
}

// columnOf returns the identifier of a column of any generated entity.
func columnOf(table, column string) jen.Code {
	return jen.Id(typeName(table) + pascal(column))
}

func (g *generator) descriptor(f *jen.File) {
	f.Commentf("%s is the descriptor of the %q table.", g.name, g.e.Table)
	f.Type().Id(g.name).Struct()

	f.Var().DefsFunc(func(grp *jen.Group) {
		for _, c := range g.e.Columns {
			args := []jen.Code{jen.Lit(c.Name), jen.Qual(fieldPkg, columnType(c).ConstName())}
			if c.Nullable {
				args = append(args, jen.Qual(entityPkg, "Nullable").Call())
			}
			if c.Unique {
				args = append(args, jen.Qual(entityPkg, "Unique").Call())
			}
			grp.Id(g.column(c)).Op("=").Qual(entityPkg, "NewColumn").Types(jen.Id(g.name), goType(c)).Call(args...)
		}
	})

	recv := jen.Id(g.name)
	f.Func().Params(recv.Clone()).Id("Table").Params().String().Block(jen.Return(jen.Lit(g.e.Table)))
	f.Func().Params(recv.Clone()).Id("Columns").Params().Index().Qual(entityPkg, "ColumnDef").Block(
		jen.Return(jen.Qual(entityPkg, "Defs").CallFunc(func(grp *jen.Group) {
			for _, c := range g.e.Columns {
				grp.Id(g.column(c))
			}
		})),
	)
	pk := jen.Nil()
	if len(g.e.PrimaryKey) > 0 {
		pk = jen.Qual(entityPkg, "Defs").CallFunc(func(grp *jen.Group) {
			for _, name := range g.e.PrimaryKey {
				grp.Add(columnOf(g.e.Table, name))
			}
		})
	}
	f.Func().Params(recv.Clone()).Id("PrimaryKey").Params().Index().Qual(entityPkg, "ColumnDef").Block(jen.Return(pk))

	rels := make([]jen.Code, 0, len(g.e.Relations))
	for _, r := range g.e.Relations {
		rels = append(rels, g.relation(r))
	}
	f.Func().Params(recv.Clone()).Id("Relations").Params().Index().Qual(entityPkg, "RelationDef").Block(
		jen.Return(list(jen.Index().Qual(entityPkg, "RelationDef"), rels)),
	)

	if len(g.e.Conjuncts) > 0 {
		items := make([]jen.Code, 0, len(g.e.Conjuncts))
		for _, c := range g.e.Conjuncts {
			items = append(items, jen.Values(jen.DictFunc(func(d jen.Dict) {
				d[jen.Id("Via")] = jen.Lit(c.Via)
				d[jen.Id("To")] = jen.Lit(c.To)
				d[jen.Id("ViaRel")] = g.relation(c.ViaRel)
				d[jen.Id("ToRel")] = g.relation(c.ToRel)
			})))
		}
		f.Func().Params(recv.Clone()).Id("ConjunctRelations").Params().Index().Qual(entityPkg, "ConjunctRelation").Block(
			jen.Return(list(jen.Index().Qual(entityPkg, "ConjunctRelation"), items)),
		)
	}

	f.Var().Id("_").Qual(entityPkg, "Entity").Op("=").Id(g.name).Values()
}

// relation renders a relation with the typed builders when both endpoints
// are generated in the same package, and by name otherwise.
func (g *generator) relation(r entity.RelationDef) jen.Code {
	if g.known[r.FromTable] && g.known[r.ToTable] {
		return jen.Qual(entityPkg, r.Type.String()).
			Types(jen.Id(typeName(r.FromTable)), jen.Id(typeName(r.ToTable))).Call().
			Dot("From").CallFunc(func(grp *jen.Group) {
			for _, c := range r.FromCol {
				grp.Add(columnOf(r.FromTable, c))
			}
		}).
			Dot("To").CallFunc(func(grp *jen.Group) {
			for _, c := range r.ToCol {
				grp.Add(columnOf(r.ToTable, c))
			}
		}).
			Dot("Def").Call()
	}
	return jen.Qual(entityPkg, "Relation").Call(
		jen.Qual(entityPkg, "Type"+r.Type.String()), jen.Lit(r.FromTable), jen.Lit(r.ToTable),
	).
		Dot("FromNames").Call(lits(r.FromCol)...).
		Dot("ToNames").Call(lits(r.ToCol)...).
		Dot("Def").Call()
}

func (g *generator) model(f *jen.File) {
	model := g.name + "Model"
	f.Commentf("%s is a row of the %q table.", model, g.e.Table)
	f.Type().Id(model).StructFunc(func(grp *jen.Group) {
		for _, c := range g.e.Columns {
			grp.Id(pascal(c.Name)).Add(goType(c))
		}
	})

	f.Comment("FromRow implements entity.FromRow.")
	f.Func().Params(jen.Id("m").Op("*").Id(model)).Id("FromRow").
		Params(jen.Id("row").Op("*").Qual(dialectPkg, "Row"), jen.Id("prefix").String()).
		Params(jen.Err().Error()).
		BlockFunc(func(grp *jen.Group) {
			for i, c := range g.e.Columns {
				get := jen.Qual(dialectPkg, "GetPrefixed").Types(goType(c)).
					Call(jen.Id("row"), jen.Id("prefix"), jen.Id(g.column(c)).Dot("Name").Call())
				target := jen.List(jen.Id("m").Dot(pascal(c.Name)), jen.Err())
				if i == len(g.e.Columns)-1 {
					grp.Add(target).Op("=").Add(get)
					grp.Return(jen.Err())
					break
				}
				grp.If(target.Op("=").Add(get), jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err()))
			}
		})
}

func (g *generator) active(f *jen.File) {
	model, active := g.name+"Model", g.name+"Active"
	recv := func() *jen.Statement { return jen.Id("a").Op("*").Id(active) }

	f.Comment("ActiveModel returns the model with every column Unchanged.")
	f.Func().Params(jen.Id("m").Id(model)).Id("ActiveModel").Params().Op("*").Id(active).Block(
		jen.Return(jen.Op("&").Id(active).Values(jen.DictFunc(func(d jen.Dict) {
			for _, c := range g.e.Columns {
				d[jen.Id(pascal(c.Name))] = jen.Qual(entityPkg, "Unchanged").Call(jen.Id("m").Dot(pascal(c.Name)))
			}
		}))),
	)

	f.Commentf("%s is the writable form of %s.", active, model)
	f.Type().Id(active).StructFunc(func(grp *jen.Group) {
		for _, c := range g.e.Columns {
			grp.Id(pascal(c.Name)).Qual(entityPkg, "ActiveValue").Types(goType(c))
		}
	})

	f.Func().Params(jen.Op("*").Id(active)).Id("Entity").Params().Id(g.name).Block(jen.Return(jen.Id(g.name).Values()))

	unset := jen.Return(jen.Qual(entityPkg, "Unset").Types(jen.Any()).Call())
	f.Func().Params(recv()).Id("Take").Params(jen.Id("column").String()).Qual(entityPkg, "ActiveValue").Types(jen.Any()).Block(
		g.switchColumn(func(c entity.ColumnDef) jen.Code {
			return jen.Return(jen.Id("a").Dot(pascal(c.Name)).Dot("Move").Call())
		}),
		unset.Clone(),
	)
	f.Func().Params(recv()).Id("Get").Params(jen.Id("column").String()).Qual(entityPkg, "ActiveValue").Types(jen.Any()).Block(
		g.switchColumn(func(c entity.ColumnDef) jen.Code {
			return jen.Return(jen.Id("a").Dot(pascal(c.Name)).Dot("Erase").Call())
		}),
		unset.Clone(),
	)
	f.Func().Params(recv()).Id("Set").Params(jen.Id("column").String(), jen.Id("v").Any()).Error().Block(
		g.switchColumn(func(c entity.ColumnDef) jen.Code {
			return jen.Return(jen.Qual(entityPkg, "Assign").Call(jen.Op("&").Id("a").Dot(pascal(c.Name)), jen.Id("column"), jen.Id("v")))
		}),
		jen.Return(jen.Qual(rootPkg, "NewValidationError").Call(
			jen.Id("column"),
			jen.Qual("fmt", "Errorf").Call(jen.Lit("%w of %s"), jen.Qual(entityPkg, "ErrUnknownColumn"), jen.Lit(g.e.Table)),
		)),
	)
	f.Func().Params(recv()).Id("Unset").Params(jen.Id("column").String()).Block(
		g.switchColumn(func(c entity.ColumnDef) jen.Code {
			return jen.Id("a").Dot(pascal(c.Name)).Op("=").Qual(entityPkg, "Unset").Types(goType(c)).Call()
		}),
	)

	f.Var().Id("_").Qual(entityPkg, "ActiveModel").Types(jen.Id(g.name)).Op("=").Parens(jen.Op("*").Id(active)).Parens(jen.Nil())
}

func (g *generator) switchColumn(body func(entity.ColumnDef) jen.Code) jen.Code {
	return jen.Switch(jen.Id("column")).BlockFunc(func(grp *jen.Group) {
		for _, c := range g.e.Columns {
			grp.Case(jen.Id(g.column(c)).Dot("Name").Call()).Block(body(c))
		}
	})
}

// columnType maps unknown column types to TypeOther.
func columnType(c entity.ColumnDef) field.Type {
	if !c.Type.Valid() {
		return field.TypeOther
	}
	return c.Type
}

// goType returns the Go type holding the values of a column. Nullable
// columns are pointers, except for types that already have a nil value.
func goType(c entity.ColumnDef) jen.Code {
	var (
		t        = columnType(c)
		s        *jen.Statement
		nillable bool
	)
	switch t {
	case field.TypeTime:
		s = jen.Qual("time", "Time")
	case field.TypeJSON:
		s, nillable = jen.Qual("encoding/json", "RawMessage"), true
	case field.TypeUUID:
		s = jen.Qual("github.com/google/uuid", "UUID")
	case field.TypeBytes:
		s, nillable = jen.Index().Byte(), true
	case field.TypeOther:
		s, nillable = jen.Any(), true
	default:
		s = jen.Id(t.String())
	}
	if c.Nullable && !nillable {
		return jen.Op("*").Add(s)
	}
	return s
}

// list renders a composite literal with one element per line, or nil when
// empty.
func list(typ *jen.Statement, items []jen.Code) jen.Code {
	if len(items) == 0 {
		return jen.Nil()
	}
	return typ.Custom(jen.Options{Open: "{", Close: "}", Separator: ",", Multi: true}, items...)
}

func lits(names []string) []jen.Code {
	codes := make([]jen.Code, len(names))
	for i, n := range names {
		codes[i] = jen.Lit(n)
	}
	return codes
}
