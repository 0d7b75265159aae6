package entity

import "strings"

// Identity is an ordered tuple of column names identifying the key side of
// a relation. Most relations are unary; composite keys have a larger arity.
type Identity []string

// Unary returns the identity of a single column.
func Unary(column string) Identity {
	return Identity{column}
}

// Arity returns the number of columns in the identity.
func (i Identity) Arity() int {
	return len(i)
}

// IsUnary reports whether the identity holds exactly one column.
func (i Identity) IsUnary() bool {
	return len(i) == 1
}

// String returns the identity as "a" or "(a, b)".
func (i Identity) String() string {
	if i.IsUnary() {
		return i[0]
	}
	return "(" + strings.Join(i, ", ") + ")"
}

func identityOf(cols []ColumnRef) Identity {
	id := make(Identity, len(cols))
	for j, c := range cols {
		id[j] = c.Def().Name
	}
	return id
}
