package codegen

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"

	"github.com/syssam/strata/dialect/sql/schema"
	"github.com/syssam/strata/schema/field"
)

func parse(t *testing.T, name string, src []byte) *ast.File {
	t.Helper()
	f, err := parser.ParseFile(token.NewFileSet(), name, src, parser.ParseComments|parser.AllErrors)
	require.NoError(t, err, "generated source:\n%s", src)
	return f
}

func decls(f *ast.File) map[string]bool {
	names := make(map[string]bool)
	for _, d := range f.Decls {
		switch d := d.(type) {
		case *ast.FuncDecl:
			name := d.Name.Name
			if d.Recv != nil {
				var recv string
				switch x := d.Recv.List[0].Type.(type) {
				case *ast.Ident:
					recv = x.Name
				case *ast.StarExpr:
					recv = x.X.(*ast.Ident).Name
				}
				name = recv + "." + name
			}
			names[name] = true
		case *ast.GenDecl:
			for _, s := range d.Specs {
				switch s := s.(type) {
				case *ast.TypeSpec:
					names[s.Name.Name] = true
				case *ast.ValueSpec:
					for _, n := range s.Names {
						names[n.Name] = true
					}
				}
			}
		}
	}
	return names
}

func TestGenerate(t *testing.T) {
	w, err := Transform(bakery())
	require.NoError(t, err)
	cfg, err := NewConfig(WithPackage("bakery"), WithActiveModels())
	require.NoError(t, err)

	src, err := w.Generate("cake", cfg)
	require.NoError(t, err)
	f := parse(t, "cake.go", src)
	assert.Equal(t, "bakery", f.Name.Name)
	code := string(src)
	assert.Regexp(t, `^// Code generated by strata\. DO NOT EDIT\.`, code)
	assert.Contains(t, code, `"github.com/syssam/strata/entity"`)
	assert.Contains(t, code, `entity.NewColumn[Cake, int]("id", field.TypeInt)`)
	assert.Contains(t, code, `entity.NewColumn[Cake, string]("name", field.TypeString, entity.Unique())`)
	assert.Contains(t, code, `entity.HasMany[Cake, Fruit]().From(CakeID).To(FruitCakeID).Def()`)
	assert.Contains(t, code, `entity.HasMany[Cake, CakeFilling]().From(CakeID).To(CakeFillingCakeID).Def()`)
	assert.Contains(t, code, `entity.BelongsTo[CakeFilling, Filling]().From(CakeFillingFillingID).To(FillingID).Def()`)
	assert.Contains(t, code, `dialect.GetPrefixed[string](row, prefix, CakeName.Name())`)

	names := decls(f)
	for _, name := range []string{
		"Cake", "CakeID", "CakeName", "Cake.Table", "Cake.Columns", "Cake.PrimaryKey",
		"Cake.Relations", "Cake.ConjunctRelations", "CakeModel", "CakeModel.FromRow",
		"CakeModel.ActiveModel", "CakeActive", "CakeActive.Entity", "CakeActive.Take",
		"CakeActive.Get", "CakeActive.Set", "CakeActive.Unset",
	} {
		assert.True(t, names[name], "missing declaration %s", name)
	}
}

func events() *schema.Table {
	return schema.NewTable("events").
		AddColumn(&schema.Column{Name: "id", Type: field.TypeUUID}).
		AddColumn(&schema.Column{Name: "created_at", Type: field.TypeTime}).
		AddColumn(&schema.Column{Name: "deleted_at", Type: field.TypeTime, Nullable: true}).
		AddColumn(&schema.Column{Name: "payload", Type: field.TypeJSON, Nullable: true}).
		AddColumn(&schema.Column{Name: "digest", Type: field.TypeBytes}).
		AddColumn(&schema.Column{Name: "location", Type: field.TypeOther, Raw: "point"}).
		AddPrimaryKey("id")
}

func TestGenerateColumnTypes(t *testing.T) {
	w, err := Transform([]*schema.Table{events()})
	require.NoError(t, err)

	src, err := w.Generate("events", nil)
	require.NoError(t, err)
	f := parse(t, "events.go", src)
	assert.Equal(t, "model", f.Name.Name)
	code := string(src)
	for _, want := range []string{
		`type Event struct{}`,
		`entity.NewColumn[Event, uuid.UUID]("id", field.TypeUUID)`,
		`entity.NewColumn[Event, *time.Time]("deleted_at", field.TypeTime, entity.Nullable())`,
		`entity.NewColumn[Event, json.RawMessage]("payload", field.TypeJSON, entity.Nullable())`,
		`entity.NewColumn[Event, []byte]("digest", field.TypeBytes)`,
		`entity.NewColumn[Event, any]("location", field.TypeOther)`,
		`"github.com/google/uuid"`,
		`"encoding/json"`,
		`"time"`,
	} {
		assert.Contains(t, code, want)
	}
	assert.Regexp(t, regexp.MustCompile(`CreatedAt\s+time\.Time`), code)
	assert.Regexp(t, regexp.MustCompile(`func \(Event\) Relations\(\) \[\]entity\.RelationDef \{\s+return nil`), code)
	assert.NotContains(t, code, "EventActive", "active models are opt-in")
}

func TestGenerateUnselectedTarget(t *testing.T) {
	w, err := Transform(bakery())
	require.NoError(t, err)
	cfg, err := NewConfig(WithTables("fruit"))
	require.NoError(t, err)
	src, err := w.Generate("fruit", cfg)
	require.NoError(t, err)
	parse(t, "fruit.go", src)
	assert.Contains(t, string(src), `entity.Relation(entity.TypeBelongsTo, "fruit", "cake").FromNames("cake_id").ToNames("id").Def()`)

	_, err = w.Generate("pastry", cfg)
	require.Error(t, err)
}

func TestWriteFiles(t *testing.T) {
	w, err := Transform(bakery())
	require.NoError(t, err)
	dir := filepath.Join(t.TempDir(), "bakery")
	cfg, err := NewConfig(WithPackage("bakery"), WithTarget(dir), WithWorkers(2), WithActiveModels())
	require.NoError(t, err)
	require.NoError(t, w.WriteFiles(context.Background(), cfg))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var files []string
	for _, e := range entries {
		files = append(files, e.Name())
	}
	assert.Equal(t, []string{"cake.go", "cake_filling.go", "filling.go", "fruit.go"}, files)

	all := make(map[string]bool)
	for _, name := range files {
		src, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		for d := range decls(parse(t, name, src)) {
			assert.False(t, all[d] && d != "_", "%s declared twice", d)
			all[d] = true
		}
	}
	assert.True(t, all["CakeFillingActive"])

	cfg.Tables = []string{"pastry"}
	err = w.WriteFiles(context.Background(), cfg)
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "Tables", cerr.Option)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg.Tables = nil
	require.ErrorIs(t, w.WriteFiles(ctx, cfg), context.Canceled)
	require.Error(t, w.WriteFiles(context.Background(), &Config{}))
}

func TestGeneratedCodeTypeChecks(t *testing.T) {
	if testing.Short() {
		t.Skip("loads packages with the go command")
	}
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go command not found")
	}
	// The output imports this module, so it is written inside it.
	dir, err := os.MkdirTemp(".", "typecheck")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	w, err := Transform(append(bakery(), events()))
	require.NoError(t, err)
	cfg, err := NewConfig(WithPackage("bakery"), WithTarget(dir), WithActiveModels())
	require.NoError(t, err)
	require.NoError(t, w.WriteFiles(context.Background(), cfg))

	pkgs, err := packages.Load(&packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedTypes | packages.NeedSyntax | packages.NeedTypesInfo,
	}, "./"+filepath.ToSlash(dir))
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	for _, e := range pkgs[0].Errors {
		t.Errorf("type error: %v", e)
	}
	assert.Len(t, pkgs[0].GoFiles, 5)
	scope := pkgs[0].Types.Scope()
	for _, name := range []string{"Cake", "CakeModel", "CakeActive", "CakeFillingActive", "Event", "EventModel", "EventActive"} {
		assert.NotNil(t, scope.Lookup(name), "missing %s", name)
	}
}
