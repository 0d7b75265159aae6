// Package field describes column types.
//
// A Type is attached to every entity column and to every introspected
// physical column. It determines the Go type used by the entity writer and
// is carried in generated code through its constant name:
//
//	field.TypeInt64.String()    // "int64"
//	field.TypeInt64.ConstName() // "TypeInt64"
//
// Raw database types are mapped with FromSQL:
//
//	field.FromSQL("varchar(255)")     // TypeString
//	field.FromSQL("bigint unsigned")  // TypeUint64
package field
