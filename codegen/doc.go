// Package codegen turns a physical database schema into entities.
//
// Transform synthesizes one Entity per table, with the relations implied by
// foreign keys and the many-to-many relations implied by junction tables.
// The result can be used at runtime through Entity.Runtime, or written out
// as Go source declaring typed descriptors, columns and models:
//
//	w, err := codegen.Transform(tables)
//	if err != nil {
//		return err
//	}
//	cfg, err := codegen.NewConfig(codegen.WithPackage("bakery"), codegen.WithTarget("./bakery"))
//	if err != nil {
//		return err
//	}
//	return w.WriteFiles(ctx, cfg)
package codegen
