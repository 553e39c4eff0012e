// Copyright © 2024 The ELPS authors

package ast

type (
	Block struct {
		Span
		Stmts []Stmt
	}

	// LocalVarDecl declares local variables.  It is also used for the loop
	// variable of an enhanced for, catch parameters and try resources.
	LocalVarDecl struct {
		Span
		Modifiers
		Type *TypeRef
		Vars []*VarDeclarator
	}

	LocalClassStmt struct {
		Span
		Decl *ClassDecl
	}

	ExprStmt struct {
		Span
		X Expr
	}

	IfStmt struct {
		Span
		Cond Expr
		Then Stmt
		Else Stmt // nil when absent
	}

	WhileStmt struct {
		Span
		Cond Expr
		Body Stmt
	}

	DoStmt struct {
		Span
		Body Stmt
		Cond Expr
	}

	ForStmt struct {
		Span
		Init   []Stmt // *LocalVarDecl or *ExprStmt
		Cond   Expr   // nil when absent
		Update []Expr
		Body   Stmt
	}

	ForEachStmt struct {
		Span
		Var      *LocalVarDecl
		Iterable Expr
		Body     Stmt
	}

	ReturnStmt struct {
		Span
		X Expr // nil when absent
	}

	ThrowStmt struct {
		Span
		X Expr
	}

	YieldStmt struct {
		Span
		X Expr
	}

	BranchStmt struct {
		Span
		Keyword string // break or continue
		Label   string
	}

	TryStmt struct {
		Span
		Resources []Stmt // *LocalVarDecl or *ExprStmt
		Body      *Block
		Catches   []*CatchClause
		Finally   *Block // nil when absent
	}

	CatchClause struct {
		Span
		Param *LocalVarDecl
		Body  *Block
	}

	SwitchStmt struct {
		Span
		Tag   Expr
		Cases []*SwitchCase
	}

	// SwitchCase is one case group.  Default cases have no Exprs.  Arrow
	// cases hold exactly one statement in Body.
	SwitchCase struct {
		Span
		Exprs   []Expr
		Default bool
		Arrow   bool
		Body    []Stmt
	}

	SyncStmt struct {
		Span
		Lock Expr
		Body *Block
	}

	LabeledStmt struct {
		Span
		Label string
		Stmt  Stmt
	}

	AssertStmt struct {
		Span
		Cond Expr
		Msg  Expr // nil when absent
	}

	EmptyStmt struct {
		Span
	}
)

func (*Block) stmtNode()          {}
func (*LocalVarDecl) stmtNode()   {}
func (*LocalClassStmt) stmtNode() {}
func (*ExprStmt) stmtNode()       {}
func (*IfStmt) stmtNode()         {}
func (*WhileStmt) stmtNode()      {}
func (*DoStmt) stmtNode()         {}
func (*ForStmt) stmtNode()        {}
func (*ForEachStmt) stmtNode()    {}
func (*ReturnStmt) stmtNode()     {}
func (*ThrowStmt) stmtNode()      {}
func (*YieldStmt) stmtNode()      {}
func (*BranchStmt) stmtNode()     {}
func (*TryStmt) stmtNode()        {}
func (*SwitchStmt) stmtNode()     {}
func (*SyncStmt) stmtNode()       {}
func (*LabeledStmt) stmtNode()    {}
func (*AssertStmt) stmtNode()     {}
func (*EmptyStmt) stmtNode()      {}
