package vast

// Expr is any expression node. Concrete shapes follow the cases the
// identifier-extractor (spec §4.1) must recognize.
type Expr interface {
	Node
	exprNode()
}

type ExprBase struct{ Pos Position }

func (e ExprBase) NodePos() Position { return e.Pos }
func (ExprBase) exprNode()           {}

// IdRef is a bare identifier reference.
type IdRef struct {
	ExprBase
	Name string
}

// IndexedId is a bit- or part-select of a vector identifier: name[index].
type IndexedId struct {
	ExprBase
	Name  string
	Index Expr
}

// IndexedMemoryId is an element select of a memory array: name[word][bit].
type IndexedMemoryId struct {
	ExprBase
	Name    string
	Indices []Expr
}

// SelectedName is a hierarchical or member reference: base.field.
type SelectedName struct {
	ExprBase
	Base  string
	Field string
}

// BinaryExpr covers binary operators (arithmetic, logical, relational, shift).
type BinaryExpr struct {
	ExprBase
	Op          string
	Left, Right Expr
}

// UnaryExpr covers unary operators (!, ~, -, reduction ops).
type UnaryExpr struct {
	ExprBase
	Op      string
	Operand Expr
}

// TernaryExpr is the `cond ? then : else` conditional expression.
type TernaryExpr struct {
	ExprBase
	Cond, Then, Else Expr
}

// CastExpr is a sized/typed cast: width'(expr) or similar.
type CastExpr struct {
	ExprBase
	Operand Expr
}

// ConcatExpr is a `{a, b, c}` concatenation, optionally with a replication
// count as one of the Elems (replication counts are themselves Exprs and are
// folded in as ordinary operands per spec §4.1).
type ConcatExpr struct {
	ExprBase
	Elems []Expr
}

// RangeExpr is a `[hi:lo]` part-select range.
type RangeExpr struct {
	ExprBase
	Hi, Lo Expr
}

// MinTypMaxExpr is a `min:typ:max` delay/timing expression.
type MinTypMaxExpr struct {
	ExprBase
	Min, Typ, Max Expr
}

// CaseExpr is a case-statement-like conditional expression (e.g. inside a
// `case` arm's guard, or a `(* full_case *)`-style selector expression used
// in a value context).
type CaseExpr struct {
	ExprBase
	Selector Expr
	Arms     []CaseExprArm
}

type CaseExprArm struct {
	Conditions []Expr
	Value      Expr
}

// SysFuncCall is a call to a `$`-prefixed system function. The function name
// itself never contributes an identifier.
type SysFuncCall struct {
	ExprBase
	Name string
	Args []Expr
}

// UserFuncCall is a call to a user-declared function or task used in
// expression position.
type UserFuncCall struct {
	ExprBase
	Name string
	Args []Expr
}

// PortConn is a single named port-connection actual: `.formal(actual)`.
type PortConn struct {
	ExprBase
	Formal string
	Actual Expr // nil for an unconnected port
}

// Literal is any numeric, string, or based literal. Literals never
// contribute identifiers.
type Literal struct {
	ExprBase
	Text string
}

// DataTypeExpr names a type token appearing in expression position (e.g. as
// a cast target). It never contributes an identifier.
type DataTypeExpr struct {
	ExprBase
	Name string
}

// DollarToken is a bare `$` used as a queue/array bound (e.g. `arr[$]`). It
// never contributes an identifier.
type DollarToken struct {
	ExprBase
}

// NullExpr represents an explicit `null` literal.
type NullExpr struct {
	ExprBase
}
