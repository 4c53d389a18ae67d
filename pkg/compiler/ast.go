package compiler

import "fmt"

//  Expression nodes

// Expr is implemented by every node that produces a value.
type Expr interface {
	exprNode()
	String() string
}

// Literal is a compile-time integer constant.
//
//	int x = 10;
//	         ^^  Literal{Value: 10}
type Literal struct {
	Value int64
}

func (*Literal) exprNode()        {}
func (l *Literal) String() string { return fmt.Sprintf("%d", l.Value) }

// VarRef is a read of a named variable.
//
//	Print(x);
//	      ^  VarRef{Name: "x"}
type VarRef struct {
	Name string
}

func (*VarRef) exprNode()        {}
func (v *VarRef) String() string { return v.Name }

// BinaryExpr represents a binary operation: Left Op Right.
type BinaryExpr struct {
	Op    TokenType
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

//  Statement nodes

// Stmt is implemented by every top-level statement.
type Stmt interface {
	stmtNode()
	String() string
}

// DeclareStmt binds the value of an expression to a variable name.
//
//	int x = 1 + 2;
type DeclareStmt struct {
	Name  string
	Value Expr
}

func (*DeclareStmt) stmtNode() {}
func (d *DeclareStmt) String() string {
	return fmt.Sprintf("int %s = %s;", d.Name, d.Value)
}

// PrintStmt requests the value of an expression after execution.
//
//	Print(x + 1);
type PrintStmt struct {
	Value Expr
}

func (*PrintStmt) stmtNode() {}
func (p *PrintStmt) String() string {
	return fmt.Sprintf("Print(%s);", p.Value)
}

// Program is the root of the AST.
type Program struct {
	Statements []Stmt
}
