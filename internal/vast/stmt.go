package vast

// Stmt is any procedural statement shape named in spec §4.3's statement
// dispatch.
type Stmt interface {
	Node
	stmtNode()
}

type StmtBase struct{ Pos Position }

func (s StmtBase) NodePos() Position { return s.Pos }
func (StmtBase) stmtNode()           {}

// AssignStmt is a blocking (Blocking=true) or non-blocking procedural
// assignment: lhs = rhs / lhs <= rhs.
type AssignStmt struct {
	StmtBase
	Blocking bool
	LHS      Expr
	RHS      Expr
}

// CaseArm is one arm of a CaseStmt.
type CaseArm struct {
	Conditions []Expr // selector-matching expressions; empty means `default`
	Body       []Stmt
}

// CaseStmt is a case/casex/casez statement.
type CaseStmt struct {
	StmtBase
	Selector Expr
	Arms     []CaseArm
}

// DeassignStmt is a `deassign lhs;` statement: it clears a prior procedural
// continuous assignment and contributes only a def of its LHS.
type DeassignStmt struct {
	StmtBase
	LHS Expr
}

// EventTriggerStmt is a `-> event_name;` trigger, optionally conditioned on
// a control expression (e.g. inside a guarded block — Control may be nil).
type EventTriggerStmt struct {
	StmtBase
	EventName string
	Control   Expr
}

// WaitStmt is a `wait (cond) body;` statement.
type WaitStmt struct {
	StmtBase
	Cond Expr
	Body Stmt
}

// DelayStmt is a `#delay stmt;` statement; Delay contributes a use.
type DelayStmt struct {
	StmtBase
	Delay Expr
	Body  Stmt
}

// DisableStmt is a `disable name;` statement.
type DisableStmt struct {
	StmtBase
	Name string
}

// IfStmt is an if-then-else conditional statement.
type IfStmt struct {
	StmtBase
	Cond Expr
	Then []Stmt
	Else []Stmt // nil if there is no else-arm
}

// EventControlStmt is `@(sensitivity-list) body`, legal only at the head of
// an always block per spec §4.3.
type EventControlStmt struct {
	StmtBase
	Sensitivity []Expr
	Body        []Stmt
}

// SeqBlockStmt is a `begin...end` / fork-join / generate code block: its
// inner statements are lowered into the same basic block as the caller.
type SeqBlockStmt struct {
	StmtBase
	Items []Stmt
}

// LoopStmt is any of for/while/repeat/forever. The loop structure itself is
// not modeled (spec §4.3, §9): only the body is lowered.
type LoopStmt struct {
	StmtBase
	Body []Stmt
}

// TaskEnableStmt is a task-enable statement: `task_name(args);`.
type TaskEnableStmt struct {
	StmtBase
	Name string
	Args []Expr
}

// SystemTaskStmt is a `$display(...)`-style system task call; it is ignored
// during lowering per spec §4.3.
type SystemTaskStmt struct {
	StmtBase
	Name string
	Args []Expr
}

// NullStmt is an empty statement (`;`); ignored during lowering.
type NullStmt struct {
	StmtBase
}
