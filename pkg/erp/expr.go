package erp

import (
	"fmt"
	"strings"
)

// Expr is a node of a filter expression tree. The flat Criteria form lowers to
// a tree, and callers needing OR across fields or nested groups build one
// directly with And, Or, Not and Cmp.
type Expr interface {
	isExpr()
}

// AndExpr is the conjunction of its children.
type AndExpr struct {
	Exprs []Expr
}

// OrExpr is the disjunction of its children.
type OrExpr struct {
	Exprs []Expr
}

// NotExpr negates its child.
type NotExpr struct {
	Expr Expr
}

// CmpExpr compares a field against a literal.
type CmpExpr struct {
	Field string
	Op    Operator
	Value any
}

func (AndExpr) isExpr() {}
func (OrExpr) isExpr()  {}
func (NotExpr) isExpr() {}
func (CmpExpr) isExpr() {}

// And combines expressions with logical AND.
func And(exprs ...Expr) AndExpr { return AndExpr{Exprs: exprs} }

// Or combines expressions with logical OR.
func Or(exprs ...Expr) OrExpr { return OrExpr{Exprs: exprs} }

// Not negates an expression.
func Not(expr Expr) NotExpr { return NotExpr{Expr: expr} }

// Cmp compares field against value with op. OpIn expects a list value.
func Cmp(field string, op Operator, value any) CmpExpr {
	return CmpExpr{Field: field, Op: op, Value: value}
}

type position int

const (
	posTop position = iota
	posAnd
	posOr
	posNot
)

const (
	andSeparator = " and "
	orSeparator  = " or "
)

// Render compiles an expression tree into a filter string, resolving field
// names through table. OR groups are always parenthesised; an AND nested in an
// OR is parenthesised; AND nested in AND is flattened.
func Render(table *FieldTable, expr Expr) (string, error) {
	var builder strings.Builder

	err := render(&builder, table, expr, posTop)
	if err != nil {
		return "", err
	}

	return builder.String(), nil
}

func render(builder *strings.Builder, table *FieldTable, expr Expr, pos position) error {
	switch node := expr.(type) {
	case AndExpr:
		return renderGroup(builder, table, node.Exprs, andSeparator, posAnd, pos == posOr)
	case OrExpr:
		return renderGroup(builder, table, node.Exprs, orSeparator, posOr, pos != posNot)
	case NotExpr:
		if node.Expr == nil {
			return ErrEmptyGroup
		}

		builder.WriteString("not (")

		err := render(builder, table, node.Expr, posNot)
		if err != nil {
			return err
		}

		builder.WriteString(")")

		return nil
	case CmpExpr:
		return renderCmp(builder, table, node, pos)
	case nil:
		return ErrEmptyGroup
	default:
		return fmt.Errorf("%w: unsupported expression %T", ErrInvalidOperator, expr)
	}
}

func renderGroup(builder *strings.Builder, table *FieldTable, exprs []Expr, separator string, childPos position, wrap bool) error {
	if len(exprs) == 0 {
		return ErrEmptyGroup
	}

	if wrap {
		builder.WriteString("(")
	}

	for i, child := range exprs {
		if i > 0 {
			builder.WriteString(separator)
		}

		err := render(builder, table, child, childPos)
		if err != nil {
			return err
		}
	}

	if wrap {
		builder.WriteString(")")
	}

	return nil
}

func renderCmp(builder *strings.Builder, table *FieldTable, cmp CmpExpr, pos position) error {
	wire, err := table.Wire(cmp.Field)
	if err != nil {
		return err
	}

	if cmp.Op == OpIn {
		return renderIn(builder, wire, cmp, pos)
	}

	if !cmp.Op.Valid() {
		return fmt.Errorf("field %q: %w: %q", cmp.Field, ErrInvalidOperator, string(cmp.Op))
	}

	literal, err := Literal(cmp.Value)
	if err != nil {
		return fmt.Errorf("field %q: %w", cmp.Field, err)
	}

	builder.WriteString(wire)
	builder.WriteString(" ")
	builder.WriteString(string(cmp.Op))
	builder.WriteString(" ")
	builder.WriteString(literal)

	return nil
}

func renderIn(builder *strings.Builder, wire string, cmp CmpExpr, pos position) error {
	values, ok := listValues(cmp.Value)
	if !ok {
		if cmp.Value == nil {
			return fmt.Errorf("field %q: %w", cmp.Field, ErrNullLiteral)
		}

		return fmt.Errorf("field %q: %w: in expects a list, got %T", cmp.Field, ErrInvalidLiteral, cmp.Value)
	}

	if len(values) == 0 {
		return fmt.Errorf("field %q: %w", cmp.Field, ErrEmptyArrayCriterion)
	}

	literals := make([]string, len(values))

	for i, value := range values {
		literal, err := Literal(value)
		if err != nil {
			return fmt.Errorf("field %q: %w", cmp.Field, err)
		}

		literals[i] = literal
	}

	wrap := pos != posNot
	if wrap {
		builder.WriteString("(")
	}

	for i, literal := range literals {
		if i > 0 {
			builder.WriteString(orSeparator)
		}

		builder.WriteString(wire)
		builder.WriteString(" eq ")
		builder.WriteString(literal)
	}

	if wrap {
		builder.WriteString(")")
	}

	return nil
}
