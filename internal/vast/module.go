package vast

// Module is a single top-level Verilog module as exposed by the parser
// adapter: a name, a parameter list, a port-declaration list, and an
// ordered module-item list (spec §6 parser-adapter contract).
type Module struct {
	Pos    Position
	Name   string
	Params []ParamDecl
	Ports  []PortDecl
	Items  []ModuleItem
}

func (m *Module) NodePos() Position { return m.Pos }

// ParamDecl is one name in a `parameter` list.
type ParamDecl struct {
	Pos  Position
	Name string
}

// PortDecl is one entry of the module's port-declaration list, carrying its
// declared direction (spec §6: INPUT/OUTPUT/INOUT flags).
type PortDecl struct {
	Pos       Position
	Name      string
	Direction Direction
}

// ModuleItem is any module-level item named in spec §4.3's dispatch table.
type ModuleItem interface {
	Node
	moduleItemNode()
}

type ItemBase struct{ Pos Position }

func (i ItemBase) NodePos() Position { return i.Pos }
func (ItemBase) moduleItemNode()     {}

// AlwaysItem is `always S`.
type AlwaysItem struct {
	ItemBase
	Body Stmt // must be an *EventControlStmt at the head, or a bare Stmt
}

// ContAssignItem is `assign lhs = rhs, ...;` — each (lhs, rhs) pair lowers
// to its own Assign instruction per spec §4.3.
type ContAssignItem struct {
	ItemBase
	Assigns []ContAssignPair
}

type ContAssignPair struct {
	LHS, RHS Expr
}

// InitialItem is `initial S`.
type InitialItem struct {
	ItemBase
	Body []Stmt
}

// IODeclItem is a data declaration that also names a port's direction, e.g.
// `input wire clk;` appearing in the module body rather than the header.
type IODeclItem struct {
	ItemBase
	Name      string
	Direction Direction
}

// DefparamItem is a `defparam a.b = value;`-style override list; each Name
// becomes its own Param instruction.
type DefparamItem struct {
	ItemBase
	Names []string
}

// ParamListItem is a `parameter ...;` declaration list.
type ParamListItem struct {
	ItemBase
	Names []string
}

// PortListItem is a standalone port-declaration list appearing as a module
// item (as opposed to the header's Ports field); it both records block
// structure and updates port directions, per spec §4.3.
type PortListItem struct {
	ItemBase
	Ports []PortDecl
}

// FuncTaskDeclItem is a function or task declaration.
type FuncTaskDeclItem struct {
	ItemBase
	Name   string
	Args   []string
	Inputs []string // argument names read by the callee
	Outputs []string // argument names written by the callee
	Body   []Stmt
}

// ModuleInstItem is a module instantiation: `Callee inst(.formal(actual), ...);`.
type ModuleInstItem struct {
	ItemBase
	CalleeModule string
	InstanceName string
	Conns        []InstanceConn
}

// InstanceConn is a single (formal, actual) connection on an instantiation.
// Actual is a single expression, which may name more than one identifier
// when it is a concatenation; it is nil for an unconnected port.
type InstanceConn struct {
	Formal  string
	Actual  Expr
}

// DanglingStmtItem is a bare statement appearing directly at module scope.
type DanglingStmtItem struct {
	ItemBase
	Body Stmt
}

// NestedModuleItem marks a nested module declaration, which is fatal at
// ingestion per spec §4.3.
type NestedModuleItem struct {
	ItemBase
	Name string
}

// GenerateItem marks a `generate ... endgenerate` block. Per spec §9,
// generate-constructs are a known over-approximation: they are recognized
// but not lowered (no CFG effect), rather than rejected outright.
type GenerateItem struct {
	ItemBase
}

// SVOnlyItem marks a SystemVerilog-only construct (class, constraint,
// covergroup, assertion) that is rejected at ingestion per spec §1 Non-goals.
type SVOnlyItem struct {
	ItemBase
	Kind string
}
