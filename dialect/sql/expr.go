package sql

import "strings"

// Expr is a node of the portable SQL expression tree. Implementations write
// themselves into a Builder; the Builder decides quoting and placeholders.
type Expr interface {
	WriteSQL(b *Builder)
}

// ExprFunc adapts an ordinary function to the Expr interface.
type ExprFunc func(*Builder)

// WriteSQL calls f(b).
func (f ExprFunc) WriteSQL(b *Builder) { f(b) }

// ColumnExpr is a column reference, optionally qualified by its table.
type ColumnExpr struct {
	Table string
	Name  string
}

// Col returns a table-qualified column reference.
func Col(table, name string) ColumnExpr {
	return ColumnExpr{Table: table, Name: name}
}

// WriteSQL implements the Expr interface.
func (c ColumnExpr) WriteSQL(b *Builder) {
	b.QualifiedIdent(c.Table, c.Name)
}

// ValueExpr is a bound parameter.
type ValueExpr struct {
	V any
}

// Val returns a bound parameter expression.
func Val(v any) ValueExpr {
	return ValueExpr{V: v}
}

// WriteSQL implements the Expr interface.
func (v ValueExpr) WriteSQL(b *Builder) {
	b.Arg(v.V)
}

// Raw returns an expression written verbatim. It must not contain
// placeholders.
func Raw(s string) Expr {
	return ExprFunc(func(b *Builder) { b.WriteString(s) })
}

// operand converts a right-hand side to an expression. Values that are not
// expressions are bound as parameters.
func operand(v any) Expr {
	if e, ok := v.(Expr); ok {
		return e
	}
	return Val(v)
}

type binaryExpr struct {
	op   string
	l, r Expr
}

func (e binaryExpr) WriteSQL(b *Builder) {
	e.l.WriteSQL(b)
	b.Pad().WriteString(e.op).Pad()
	e.r.WriteSQL(b)
}

// EQ returns a "l = r" predicate. r is bound unless it is an Expr.
func EQ(l Expr, r any) Expr { return binaryExpr{op: "=", l: l, r: operand(r)} }

// NEQ returns a "l <> r" predicate.
func NEQ(l Expr, r any) Expr { return binaryExpr{op: "<>", l: l, r: operand(r)} }

// GT returns a "l > r" predicate.
func GT(l Expr, r any) Expr { return binaryExpr{op: ">", l: l, r: operand(r)} }

// GTE returns a "l >= r" predicate.
func GTE(l Expr, r any) Expr { return binaryExpr{op: ">=", l: l, r: operand(r)} }

// LT returns a "l < r" predicate.
func LT(l Expr, r any) Expr { return binaryExpr{op: "<", l: l, r: operand(r)} }

// LTE returns a "l <= r" predicate.
func LTE(l Expr, r any) Expr { return binaryExpr{op: "<=", l: l, r: operand(r)} }

// Like returns a "l LIKE pattern" predicate. The pattern is not escaped.
func Like(l Expr, pattern string) Expr { return binaryExpr{op: "LIKE", l: l, r: Val(pattern)} }

// NotLike returns a "l NOT LIKE pattern" predicate.
func NotLike(l Expr, pattern string) Expr { return binaryExpr{op: "NOT LIKE", l: l, r: Val(pattern)} }

// HasPrefix returns a LIKE predicate matching values starting with s.
// '%' and '_' in s are not escaped.
func HasPrefix(l Expr, s string) Expr { return Like(l, s+"%") }

// HasSuffix returns a LIKE predicate matching values ending with s.
func HasSuffix(l Expr, s string) Expr { return Like(l, "%"+s) }

// Contains returns a LIKE predicate matching values containing s.
func Contains(l Expr, s string) Expr { return Like(l, "%"+s+"%") }

type betweenExpr struct {
	e, lo, hi Expr
	not       bool
}

func (e betweenExpr) WriteSQL(b *Builder) {
	e.e.WriteSQL(b)
	if e.not {
		b.WriteString(" NOT")
	}
	b.WriteString(" BETWEEN ")
	e.lo.WriteSQL(b)
	b.WriteString(" AND ")
	e.hi.WriteSQL(b)
}

// Between returns a "e BETWEEN lo AND hi" predicate.
func Between(e Expr, lo, hi any) Expr {
	return betweenExpr{e: e, lo: operand(lo), hi: operand(hi)}
}

// NotBetween returns a "e NOT BETWEEN lo AND hi" predicate.
func NotBetween(e Expr, lo, hi any) Expr {
	return betweenExpr{e: e, lo: operand(lo), hi: operand(hi), not: true}
}

type nullExpr struct {
	e   Expr
	not bool
}

func (e nullExpr) WriteSQL(b *Builder) {
	e.e.WriteSQL(b)
	if e.not {
		b.WriteString(" IS NOT NULL")
	} else {
		b.WriteString(" IS NULL")
	}
}

// IsNull returns a "e IS NULL" predicate.
func IsNull(e Expr) Expr { return nullExpr{e: e} }

// NotNull returns a "e IS NOT NULL" predicate.
func NotNull(e Expr) Expr { return nullExpr{e: e, not: true} }

type inExpr struct {
	e    Expr
	list []Expr
	not  bool
}

func (e inExpr) WriteSQL(b *Builder) {
	if len(e.list) == 0 {
		// An empty list matches nothing, and its negation everything.
		if e.not {
			b.WriteString("1 = 1")
		} else {
			b.WriteString("1 = 0")
		}
		return
	}
	e.e.WriteSQL(b)
	if e.not {
		b.WriteString(" NOT")
	}
	b.WriteString(" IN (").Join(", ", e.list...).WriteByte(')')
}

// In returns a "e IN (vs...)" predicate.
func In(e Expr, vs ...any) Expr {
	list := make([]Expr, len(vs))
	for i, v := range vs {
		list[i] = operand(v)
	}
	return inExpr{e: e, list: list}
}

// NotIn returns a "e NOT IN (vs...)" predicate.
func NotIn(e Expr, vs ...any) Expr {
	p := In(e, vs...).(inExpr)
	p.not = true
	return p
}

type connective struct {
	op    string
	preds []Expr
}

func (c connective) WriteSQL(b *Builder) {
	for i, p := range c.preds {
		if i > 0 {
			b.Pad().WriteString(c.op).Pad()
		}
		if inner, ok := p.(connective); ok && inner.op != c.op && len(inner.preds) > 1 {
			b.WriteByte('(')
			p.WriteSQL(b)
			b.WriteByte(')')
			continue
		}
		p.WriteSQL(b)
	}
}

// And returns the conjunction of the given predicates.
func And(preds ...Expr) Expr {
	if len(preds) == 1 {
		return preds[0]
	}
	return connective{op: "AND", preds: preds}
}

// Or returns the disjunction of the given predicates.
func Or(preds ...Expr) Expr {
	if len(preds) == 1 {
		return preds[0]
	}
	return connective{op: "OR", preds: preds}
}

// Not returns the negation of the given predicate.
func Not(p Expr) Expr {
	return ExprFunc(func(b *Builder) {
		b.WriteString("NOT (")
		p.WriteSQL(b)
		b.WriteByte(')')
	})
}

// Func returns a function call expression, e.g. Func("LOWER", col).
func Func(name string, args ...Expr) Expr {
	return ExprFunc(func(b *Builder) {
		b.WriteString(strings.ToUpper(name)).WriteByte('(').Join(", ", args...).WriteByte(')')
	})
}

// Count returns a COUNT expression.
func Count(e Expr) Expr { return Func("COUNT", e) }

// Sum returns a SUM expression.
func Sum(e Expr) Expr { return Func("SUM", e) }

// Max returns a MAX expression.
func Max(e Expr) Expr { return Func("MAX", e) }

// Min returns a MIN expression.
func Min(e Expr) Expr { return Func("MIN", e) }

// Avg returns an AVG expression.
func Avg(e Expr) Expr { return Func("AVG", e) }
