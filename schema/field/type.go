package field

import "strings"

// A Type represents a column type descriptor.
type Type uint8

// List of column types.
const (
	TypeInvalid Type = iota
	TypeBool
	TypeTime
	TypeJSON
	TypeUUID
	TypeBytes
	TypeEnum
	TypeString
	TypeOther
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt
	TypeInt64
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint
	TypeUint64
	TypeFloat32
	TypeFloat64
	TypeDecimal
	endTypes
)

var (
	typeNames = [...]string{
		TypeInvalid: "invalid",
		TypeBool:    "bool",
		TypeTime:    "time.Time",
		TypeJSON:    "json.RawMessage",
		TypeUUID:    "uuid.UUID",
		TypeBytes:   "[]byte",
		TypeEnum:    "string",
		TypeString:  "string",
		TypeOther:   "other",
		TypeInt:     "int",
		TypeInt8:    "int8",
		TypeInt16:   "int16",
		TypeInt32:   "int32",
		TypeInt64:   "int64",
		TypeUint:    "uint",
		TypeUint8:   "uint8",
		TypeUint16:  "uint16",
		TypeUint32:  "uint32",
		TypeUint64:  "uint64",
		TypeFloat32: "float32",
		TypeFloat64: "float64",
		TypeDecimal: "float64",
	}
	constNames = [...]string{
		TypeJSON:    "TypeJSON",
		TypeUUID:    "TypeUUID",
		TypeTime:    "TypeTime",
		TypeEnum:    "TypeEnum",
		TypeBytes:   "TypeBytes",
		TypeOther:   "TypeOther",
		TypeBool:    "TypeBool",
		TypeString:  "TypeString",
		TypeInt:     "TypeInt",
		TypeInt8:    "TypeInt8",
		TypeInt16:   "TypeInt16",
		TypeInt32:   "TypeInt32",
		TypeInt64:   "TypeInt64",
		TypeUint:    "TypeUint",
		TypeUint8:   "TypeUint8",
		TypeUint16:  "TypeUint16",
		TypeUint32:  "TypeUint32",
		TypeUint64:  "TypeUint64",
		TypeFloat32: "TypeFloat32",
		TypeFloat64: "TypeFloat64",
		TypeDecimal: "TypeDecimal",
	}
)

// String returns the Go type name of the column type.
func (t Type) String() string {
	if t < endTypes {
		return typeNames[t]
	}
	return typeNames[TypeInvalid]
}

// Numeric reports if the given type is a numeric type.
func (t Type) Numeric() bool {
	return t >= TypeInt8 && t < endTypes
}

// Integer reports if the given type is an integer type.
func (t Type) Integer() bool {
	return t >= TypeInt8 && t <= TypeUint64
}

// Valid reports if the given type is known.
func (t Type) Valid() bool {
	return t > TypeInvalid && t < endTypes
}

// ConstName returns the constant name of the type. It's used by the entity
// writer to reference the type in generated code.
func (t Type) ConstName() string {
	if !t.Valid() {
		return typeNames[TypeInvalid]
	}
	return constNames[t]
}

// GoPackage returns the import path needed to spell the Go type, if any.
func (t Type) GoPackage() string {
	switch t {
	case TypeTime:
		return "time"
	case TypeJSON:
		return "encoding/json"
	case TypeUUID:
		return "github.com/google/uuid"
	}
	return ""
}

// FromSQL maps a raw database column type to a column type descriptor.
// Unknown types map to TypeOther.
func FromSQL(raw string) Type {
	s := strings.ToLower(strings.TrimSpace(raw))
	unsigned := strings.HasSuffix(s, "unsigned")
	s = strings.TrimSpace(strings.TrimSuffix(s, "unsigned"))
	if i := strings.IndexByte(s, '('); i > 0 {
		s = s[:i]
	}
	switch s {
	case "bool", "boolean":
		return TypeBool
	case "tinyint", "int2", "smallint", "mediumint":
		switch {
		case s == "tinyint" && unsigned:
			return TypeUint8
		case s == "tinyint":
			return TypeInt8
		case unsigned:
			return TypeUint16
		}
		return TypeInt16
	case "int", "int4", "integer", "serial":
		if unsigned {
			return TypeUint32
		}
		return TypeInt32
	case "bigint", "int8", "bigserial":
		if unsigned {
			return TypeUint64
		}
		return TypeInt64
	case "real", "float", "float4":
		return TypeFloat32
	case "double", "double precision", "float8":
		return TypeFloat64
	case "decimal", "numeric":
		return TypeDecimal
	case "char", "character", "varchar", "character varying", "text", "tinytext", "mediumtext", "longtext", "citext":
		return TypeString
	case "enum":
		return TypeEnum
	case "blob", "tinyblob", "mediumblob", "longblob", "binary", "varbinary", "bytea":
		return TypeBytes
	case "json", "jsonb":
		return TypeJSON
	case "uuid":
		return TypeUUID
	case "date", "time", "datetime", "timestamp", "timestamptz", "timestamp with time zone", "timestamp without time zone":
		return TypeTime
	}
	return TypeOther
}
