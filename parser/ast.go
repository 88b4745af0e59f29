package parser

// NodeID uniquely identifies an expression node within one parser run.
// Resolved scope distances are keyed by it.
type NodeID int

// Node represents any AST node with a source position.
type Node interface {
	Pos() Position
}

// Expr represents an expression.
type Expr interface {
	Node
	NodeID() NodeID
	exprNode()
}

// Stmt represents a statement.
type Stmt interface {
	Node
	stmtNode()
}

// exprBase carries the identity and position shared by all expressions.
type exprBase struct {
	ID   NodeID
	Posn Position
}

func (e *exprBase) Pos() Position  { return e.Posn }
func (e *exprBase) NodeID() NodeID { return e.ID }
func (*exprBase) exprNode()        {}

// LiteralExpr is a number, string, boolean or none literal.
type LiteralExpr struct {
	exprBase
	Value interface{} // float64, string, bool or nil
	Token Token
}

// GroupingExpr is a parenthesised expression.
type GroupingExpr struct {
	exprBase
	Expr Expr
}

// UnaryExpr represents prefix operator application.
type UnaryExpr struct {
	exprBase
	Op   Token
	Expr Expr
}

// BinaryExpr represents infix arithmetic, comparison and equality.
type BinaryExpr struct {
	exprBase
	Op          Token
	Left, Right Expr
}

// LogicalExpr represents short-circuit "and" / "or".
type LogicalExpr struct {
	exprBase
	Op          Token
	Left, Right Expr
}

// TernaryExpr is cond ? then : else.
type TernaryExpr struct {
	exprBase
	Cond, Then, Else Expr
}

// VariableExpr refers to a binding by name.
type VariableExpr struct {
	exprBase
	Name Token
}

// AssignExpr writes to an existing binding.
type AssignExpr struct {
	exprBase
	Name  Token
	Value Expr
}

// CompoundAssignExpr is name op= value.
type CompoundAssignExpr struct {
	exprBase
	Name  Token
	Op    Token // one of += -= *= /=
	Value Expr
}

// CallExpr invokes an expression with arguments.
type CallExpr struct {
	exprBase
	Callee Expr
	Paren  Token // closing paren, for error locations
	Args   []Expr
}

// LambdaExpr is an anonymous function.
type LambdaExpr struct {
	exprBase
	Keyword Token
	Params  []Token
	Body    []Stmt
}

// ArrayExpr is an array literal [a, b, ...].
type ArrayExpr struct {
	exprBase
	Bracket  Token
	Elements []Expr
}

// IndexExpr reads array[index].
type IndexExpr struct {
	exprBase
	Object  Expr
	Bracket Token
	Index   Expr
}

// GetExpr reads object.name.
type GetExpr struct {
	exprBase
	Object Expr
	Name   Token
}

// SetExpr writes object.name = value.
type SetExpr struct {
	exprBase
	Object Expr
	Name   Token
	Value  Expr
}

// ThisExpr refers to the receiver inside a method.
type ThisExpr struct {
	exprBase
	Keyword Token
}

// UpdateExpr is ++name, --name, name++ or name--.
type UpdateExpr struct {
	exprBase
	Name   Token
	Op     Token
	Prefix bool
}

// UpdateIndexExpr is ++a[i], a[i]-- and friends.
type UpdateIndexExpr struct {
	exprBase
	Object  Expr
	Bracket Token
	Index   Expr
	Op      Token
	Prefix  bool
}

// UpdateGetExpr is ++obj.f, obj.f-- and friends.
type UpdateGetExpr struct {
	exprBase
	Object Expr
	Name   Token
	Op     Token
	Prefix bool
}

// ExpressionStmt evaluates an expression for side-effects.
type ExpressionStmt struct {
	Expr Expr
	Posn Position
}

func (s *ExpressionStmt) Pos() Position { return s.Posn }
func (*ExpressionStmt) stmtNode()       {}

// PrintStmt writes the display form of a value.
type PrintStmt struct {
	Expr Expr
	Posn Position
}

func (s *PrintStmt) Pos() Position { return s.Posn }
func (*PrintStmt) stmtNode()       {}

// LetStmt declares a binding, optionally initialised.
type LetStmt struct {
	Name Token
	Init Expr // may be nil
	Posn Position
}

func (s *LetStmt) Pos() Position { return s.Posn }
func (*LetStmt) stmtNode()       {}

// BlockStmt is a braced block with its own scope.
type BlockStmt struct {
	Stmts []Stmt
	Posn  Position
}

func (s *BlockStmt) Pos() Position { return s.Posn }
func (*BlockStmt) stmtNode()       {}

// IfStmt conditionally executes branches.
type IfStmt struct {
	Cond Expr
	Then Stmt
	Else Stmt // may be nil
	Posn Position
}

func (s *IfStmt) Pos() Position { return s.Posn }
func (*IfStmt) stmtNode()       {}

// WhileStmt repeats while the condition is truthy.
type WhileStmt struct {
	Cond Expr
	Body Stmt
	Posn Position
}

func (s *WhileStmt) Pos() Position { return s.Posn }
func (*WhileStmt) stmtNode()       {}

// ForStmt is a C-style loop. Init runs once in a scope of its own;
// Update runs after every iteration, including continued ones.
type ForStmt struct {
	Init   Stmt // may be nil
	Cond   Expr // may be nil
	Update Expr // may be nil
	Body   Stmt
	Posn   Position
}

func (s *ForStmt) Pos() Position { return s.Posn }
func (*ForStmt) stmtNode()       {}

// BreakStmt terminates the innermost loop.
type BreakStmt struct {
	Keyword Token
	Posn    Position
}

func (s *BreakStmt) Pos() Position { return s.Posn }
func (*BreakStmt) stmtNode()       {}

// ContinueStmt skips to the next iteration of the innermost loop.
type ContinueStmt struct {
	Keyword Token
	Posn    Position
}

func (s *ContinueStmt) Pos() Position { return s.Posn }
func (*ContinueStmt) stmtNode()       {}

// ReturnStmt exits the current function, optionally with a value.
type ReturnStmt struct {
	Keyword Token
	Result  Expr // may be nil
	Posn    Position
}

func (s *ReturnStmt) Pos() Position { return s.Posn }
func (*ReturnStmt) stmtNode()       {}

// FunctionStmt declares a named function or, inside a class, a method.
type FunctionStmt struct {
	Name   Token
	Params []Token
	Body   []Stmt
	Posn   Position
}

func (s *FunctionStmt) Pos() Position { return s.Posn }
func (*FunctionStmt) stmtNode()       {}

// FieldStmt declares an instance field with its initial value.
type FieldStmt struct {
	Name Token
	Init Expr
	Posn Position
}

func (s *FieldStmt) Pos() Position { return s.Posn }
func (*FieldStmt) stmtNode()       {}

// ClassStmt declares a class.
type ClassStmt struct {
	Name    Token
	Fields  []*FieldStmt
	Methods []*FunctionStmt
	Posn    Position
}

func (s *ClassStmt) Pos() Position { return s.Posn }
func (*ClassStmt) stmtNode()       {}
