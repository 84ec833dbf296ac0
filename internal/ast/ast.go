package ast

import (
	"bytes"
	"strconv"
	"strings"
)

// Pos is the source location attached to every node by the parser.
// The core never derives positions itself; it only reports them.
type Pos struct {
	Line int
	Col  int
}

// The base Node interface
type Node interface {
	Position() Pos
	String() string
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// Program is the unit of execution: a finite statement sequence
// produced by the external parser.
type Program struct {
	Statements []Statement
}

func (p *Program) Position() Pos {
	if len(p.Statements) > 0 {
		return p.Statements[0].Position()
	}
	return Pos{}
}

func (p *Program) String() string {
	var out bytes.Buffer

	for _, s := range p.Statements {
		out.WriteString(s.String())
	}

	return out.String()
}

// Expressions

type Identifier struct {
	Pos   Pos
	Value string
}

func (i *Identifier) expressionNode() {}
func (i *Identifier) Position() Pos   { return i.Pos }
func (i *Identifier) String() string  { return i.Value }

type NumberLiteral struct {
	Pos   Pos
	Value float64
}

func (n *NumberLiteral) expressionNode() {}
func (n *NumberLiteral) Position() Pos   { return n.Pos }
func (n *NumberLiteral) String() string {
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

type StringLiteral struct {
	Pos   Pos
	Value string
}

func (s *StringLiteral) expressionNode() {}
func (s *StringLiteral) Position() Pos   { return s.Pos }
func (s *StringLiteral) String() string  { return strconv.Quote(s.Value) }

type BooleanLiteral struct {
	Pos   Pos
	Value bool
}

func (b *BooleanLiteral) expressionNode() {}
func (b *BooleanLiteral) Position() Pos   { return b.Pos }
func (b *BooleanLiteral) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}

type NilLiteral struct {
	Pos Pos
}

func (n *NilLiteral) expressionNode() {}
func (n *NilLiteral) Position() Pos   { return n.Pos }
func (n *NilLiteral) String() string  { return "nil" }

type PrefixExpression struct {
	Pos      Pos
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode() {}
func (pe *PrefixExpression) Position() Pos   { return pe.Pos }
func (pe *PrefixExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(pe.Operator)
	out.WriteString(pe.Right.String())
	out.WriteString(")")

	return out.String()
}

type InfixExpression struct {
	Pos      Pos
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode() {}
func (ie *InfixExpression) Position() Pos   { return ie.Pos }
func (ie *InfixExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(ie.Left.String())
	out.WriteString(" " + ie.Operator + " ")
	out.WriteString(ie.Right.String())
	out.WriteString(")")

	return out.String()
}

type ListLiteral struct {
	Pos      Pos
	Elements []Expression
}

func (ll *ListLiteral) expressionNode() {}
func (ll *ListLiteral) Position() Pos   { return ll.Pos }
func (ll *ListLiteral) String() string {
	var out bytes.Buffer

	elements := []string{}
	for _, el := range ll.Elements {
		elements = append(elements, el.String())
	}

	out.WriteString("[")
	out.WriteString(strings.Join(elements, ", "))
	out.WriteString("]")

	return out.String()
}

// MapLiteral keeps its pairs in declaration order so evaluation order
// is deterministic.
type MapLiteral struct {
	Pos   Pos
	Pairs []MapEntry
}

type MapEntry struct {
	Key   Expression
	Value Expression
}

func (ml *MapLiteral) expressionNode() {}
func (ml *MapLiteral) Position() Pos   { return ml.Pos }
func (ml *MapLiteral) String() string {
	var out bytes.Buffer

	pairs := []string{}
	for _, pair := range ml.Pairs {
		pairs = append(pairs, pair.Key.String()+": "+pair.Value.String())
	}

	out.WriteString("{")
	out.WriteString(strings.Join(pairs, ", "))
	out.WriteString("}")

	return out.String()
}

type IndexExpression struct {
	Pos   Pos
	Left  Expression
	Index Expression
}

func (ie *IndexExpression) expressionNode() {}
func (ie *IndexExpression) Position() Pos   { return ie.Pos }
func (ie *IndexExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(ie.Left.String())
	out.WriteString("[")
	out.WriteString(ie.Index.String())
	out.WriteString("])")

	return out.String()
}

type PropertyExpression struct {
	Pos      Pos
	Target   Expression
	Property string
}

func (pe *PropertyExpression) expressionNode() {}
func (pe *PropertyExpression) Position() Pos   { return pe.Pos }
func (pe *PropertyExpression) String() string {
	return "(" + pe.Target.String() + "." + pe.Property + ")"
}

type CallExpression struct {
	Pos       Pos
	Function  Expression // Identifier or FunctionLiteral
	Arguments []Expression
}

func (ce *CallExpression) expressionNode() {}
func (ce *CallExpression) Position() Pos   { return ce.Pos }
func (ce *CallExpression) String() string {
	var out bytes.Buffer

	args := []string{}
	for _, a := range ce.Arguments {
		args = append(args, a.String())
	}

	out.WriteString(ce.Function.String())
	out.WriteString("(")
	out.WriteString(strings.Join(args, ", "))
	out.WriteString(")")

	return out.String()
}

type MethodCallExpression struct {
	Pos       Pos
	Target    Expression
	Method    string
	Arguments []Expression
}

func (mc *MethodCallExpression) expressionNode() {}
func (mc *MethodCallExpression) Position() Pos   { return mc.Pos }
func (mc *MethodCallExpression) String() string {
	var out bytes.Buffer

	args := []string{}
	for _, a := range mc.Arguments {
		args = append(args, a.String())
	}

	out.WriteString(mc.Target.String())
	out.WriteString(".")
	out.WriteString(mc.Method)
	out.WriteString("(")
	out.WriteString(strings.Join(args, ", "))
	out.WriteString(")")

	return out.String()
}

// FunctionParameter carries the optional default expression, the
// variadic marker and the type annotation text extracted by the
// parser. The annotation is plain text; the typespec engine parses it.
type FunctionParameter struct {
	Name       *Identifier
	Default    Expression
	IsVariadic bool
	TypeSpec   string
}

func (p *FunctionParameter) expressionNode() {}
func (p *FunctionParameter) Position() Pos   { return p.Name.Pos }
func (p *FunctionParameter) String() string {
	var out bytes.Buffer

	if p.IsVariadic {
		out.WriteString("...")
	}
	out.WriteString(p.Name.String())
	if p.TypeSpec != "" {
		out.WriteString(": " + p.TypeSpec)
	}
	if p.Default != nil {
		out.WriteString(" = ")
		out.WriteString(p.Default.String())
	}

	return out.String()
}

// FunctionLiteral is the anonymous function expression form;
// FunctionStatement is the named declaration form.
type FunctionLiteral struct {
	Pos        Pos
	Parameters []*FunctionParameter
	Body       *BlockStatement
	ReturnSpec string
}

func (fl *FunctionLiteral) expressionNode() {}
func (fl *FunctionLiteral) Position() Pos   { return fl.Pos }
func (fl *FunctionLiteral) String() string {
	var out bytes.Buffer

	params := []string{}
	for _, p := range fl.Parameters {
		params = append(params, p.String())
	}

	out.WriteString("func(")
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(") ")
	out.WriteString(fl.Body.String())

	return out.String()
}

// Statements

// BlockStatement is a statement list; it owns no scope of its own.
// Scope lifetimes are decided by the construct that runs the block.
type BlockStatement struct {
	Pos        Pos
	Statements []Statement
}

func (bs *BlockStatement) statementNode() {}
func (bs *BlockStatement) Position() Pos  { return bs.Pos }
func (bs *BlockStatement) String() string {
	var out bytes.Buffer

	out.WriteString("{ ")
	for _, s := range bs.Statements {
		out.WriteString(s.String())
		out.WriteString("; ")
	}
	out.WriteString("}")

	return out.String()
}

type LetStatement struct {
	Pos   Pos
	Name  *Identifier
	Value Expression
}

func (ls *LetStatement) statementNode() {}
func (ls *LetStatement) Position() Pos  { return ls.Pos }
func (ls *LetStatement) String() string {
	var out bytes.Buffer

	out.WriteString("let ")
	out.WriteString(ls.Name.String())
	out.WriteString(" = ")
	if ls.Value != nil {
		out.WriteString(ls.Value.String())
	}

	return out.String()
}

type ConstStatement struct {
	Pos   Pos
	Name  *Identifier
	Value Expression
}

func (cs *ConstStatement) statementNode() {}
func (cs *ConstStatement) Position() Pos  { return cs.Pos }
func (cs *ConstStatement) String() string {
	var out bytes.Buffer

	out.WriteString("const ")
	out.WriteString(cs.Name.String())
	out.WriteString(" = ")
	if cs.Value != nil {
		out.WriteString(cs.Value.String())
	}

	return out.String()
}

// AssignStatement mutates an existing binding, a list/map element or a
// map property; it never creates a binding.
type AssignStatement struct {
	Pos    Pos
	Target Expression // Identifier, IndexExpression or PropertyExpression
	Value  Expression
}

func (as *AssignStatement) statementNode() {}
func (as *AssignStatement) Position() Pos  { return as.Pos }
func (as *AssignStatement) String() string {
	return as.Target.String() + " = " + as.Value.String()
}

// IfStatement holds the if branch plus any elif branches in
// declaration order, and the optional else body.
type IfStatement struct {
	Pos      Pos
	Branches []ConditionalBranch
	Else     *BlockStatement
}

type ConditionalBranch struct {
	Condition Expression
	Body      *BlockStatement
}

func (is *IfStatement) statementNode() {}
func (is *IfStatement) Position() Pos  { return is.Pos }
func (is *IfStatement) String() string {
	var out bytes.Buffer

	for i, branch := range is.Branches {
		if i == 0 {
			out.WriteString("if ")
		} else {
			out.WriteString(" elif ")
		}
		out.WriteString(branch.Condition.String())
		out.WriteString(" ")
		out.WriteString(branch.Body.String())
	}
	if is.Else != nil {
		out.WriteString(" else ")
		out.WriteString(is.Else.String())
	}

	return out.String()
}

type WhileStatement struct {
	Pos       Pos
	Condition Expression
	Body      *BlockStatement
}

func (ws *WhileStatement) statementNode() {}
func (ws *WhileStatement) Position() Pos  { return ws.Pos }
func (ws *WhileStatement) String() string {
	return "while " + ws.Condition.String() + " " + ws.Body.String()
}

type ForEachStatement struct {
	Pos      Pos
	Variable *Identifier
	Iterable Expression
	Body     *BlockStatement
}

func (fs *ForEachStatement) statementNode() {}
func (fs *ForEachStatement) Position() Pos  { return fs.Pos }
func (fs *ForEachStatement) String() string {
	return "for " + fs.Variable.String() + " in " + fs.Iterable.String() + " " + fs.Body.String()
}

// TryStatement: CatchVar may be nil (catch without a binding), and both
// Catch and Finally are optional, though the parser guarantees at least
// one of them is present.
type TryStatement struct {
	Pos      Pos
	Try      *BlockStatement
	CatchVar *Identifier
	Catch    *BlockStatement
	Finally  *BlockStatement
}

func (ts *TryStatement) statementNode() {}
func (ts *TryStatement) Position() Pos  { return ts.Pos }
func (ts *TryStatement) String() string {
	var out bytes.Buffer

	out.WriteString("try ")
	out.WriteString(ts.Try.String())
	if ts.Catch != nil {
		out.WriteString(" catch ")
		if ts.CatchVar != nil {
			out.WriteString(ts.CatchVar.String() + " ")
		}
		out.WriteString(ts.Catch.String())
	}
	if ts.Finally != nil {
		out.WriteString(" finally ")
		out.WriteString(ts.Finally.String())
	}

	return out.String()
}

type FunctionStatement struct {
	Pos        Pos
	Name       *Identifier
	Parameters []*FunctionParameter
	Body       *BlockStatement
	ReturnSpec string
}

func (fs *FunctionStatement) statementNode() {}
func (fs *FunctionStatement) Position() Pos  { return fs.Pos }
func (fs *FunctionStatement) String() string {
	var out bytes.Buffer

	params := []string{}
	for _, p := range fs.Parameters {
		params = append(params, p.String())
	}

	out.WriteString("func ")
	out.WriteString(fs.Name.String())
	out.WriteString("(")
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(")")
	if fs.ReturnSpec != "" {
		out.WriteString(": " + fs.ReturnSpec)
	}
	out.WriteString(" ")
	out.WriteString(fs.Body.String())

	return out.String()
}

type ReturnStatement struct {
	Pos         Pos
	ReturnValue Expression // may be nil
}

func (rs *ReturnStatement) statementNode() {}
func (rs *ReturnStatement) Position() Pos  { return rs.Pos }
func (rs *ReturnStatement) String() string {
	var out bytes.Buffer

	out.WriteString("return")
	if rs.ReturnValue != nil {
		out.WriteString(" ")
		out.WriteString(rs.ReturnValue.String())
	}

	return out.String()
}

type BreakStatement struct {
	Pos Pos
}

func (bs *BreakStatement) statementNode() {}
func (bs *BreakStatement) Position() Pos  { return bs.Pos }
func (bs *BreakStatement) String() string { return "break" }

type ContinueStatement struct {
	Pos Pos
}

func (cs *ContinueStatement) statementNode() {}
func (cs *ContinueStatement) Position() Pos  { return cs.Pos }
func (cs *ContinueStatement) String() string { return "continue" }

// PrintStatement stringifies its arguments freely, unlike the `+`
// operator which rejects string/non-string mixes.
type PrintStatement struct {
	Pos       Pos
	Arguments []Expression
}

func (ps *PrintStatement) statementNode() {}
func (ps *PrintStatement) Position() Pos  { return ps.Pos }
func (ps *PrintStatement) String() string {
	var out bytes.Buffer

	args := []string{}
	for _, a := range ps.Arguments {
		args = append(args, a.String())
	}

	out.WriteString("print(")
	out.WriteString(strings.Join(args, ", "))
	out.WriteString(")")

	return out.String()
}

type ExpressionStatement struct {
	Pos        Pos
	Expression Expression
}

func (es *ExpressionStatement) statementNode() {}
func (es *ExpressionStatement) Position() Pos  { return es.Pos }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String()
	}
	return ""
}
