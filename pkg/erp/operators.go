package erp

import (
	"fmt"
	"sort"
)

// Operator is a comparison operator recognised by the filter grammar.
type Operator string

// Recognised operators. In is not a wire symbol: it expands to an OR of Eq.
const (
	OpEq   Operator = "eq"
	OpNe   Operator = "ne"
	OpLike Operator = "like"
	OpGt   Operator = "gt"
	OpGte  Operator = "gte"
	OpLt   Operator = "lt"
	OpLte  Operator = "lte"
	OpIn   Operator = "in"
)

// operatorOrder is the canonical emission order for operators built from an
// unordered map.
var operatorOrder = map[Operator]int{
	OpEq:   0,
	OpNe:   1,
	OpLike: 2,
	OpGt:   3,
	OpGte:  4,
	OpLt:   5,
	OpLte:  6,
	OpIn:   7,
}

// Valid reports whether o is a recognised operator.
func (o Operator) Valid() bool {
	_, ok := operatorOrder[o]

	return ok
}

// Op is one operator and its operand inside an operator object.
type Op struct {
	Name    Operator
	Operand any
}

// Operators is an operator object: one or more operators applied to the same
// field and combined with AND, in the order given.
type Operators []Op

// Ops groups operators into an operator object.
func Ops(ops ...Op) Operators {
	return Operators(ops)
}

// Eq builds an equality operator.
func Eq(value any) Op { return Op{Name: OpEq, Operand: value} }

// Ne builds an inequality operator.
func Ne(value any) Op { return Op{Name: OpNe, Operand: value} }

// Like builds a pattern match. The pattern is sent verbatim, wildcards included.
func Like(pattern string) Op { return Op{Name: OpLike, Operand: pattern} }

// Gt builds a greater-than comparison.
func Gt(value any) Op { return Op{Name: OpGt, Operand: value} }

// Gte builds a greater-than-or-equal comparison.
func Gte(value any) Op { return Op{Name: OpGte, Operand: value} }

// Lt builds a less-than comparison.
func Lt(value any) Op { return Op{Name: OpLt, Operand: value} }

// Lte builds a less-than-or-equal comparison.
func Lte(value any) Op { return Op{Name: OpLte, Operand: value} }

// In builds a membership test. A single slice argument is used as the list
// itself, so In(1, 2, 3) and In([]int{1, 2, 3}) are equivalent.
func In(values ...any) Op {
	if len(values) == 1 {
		if list, ok := listValues(values[0]); ok {
			return Op{Name: OpIn, Operand: list}
		}
	}

	return Op{Name: OpIn, Operand: values}
}

// Range is shorthand for Ops(Gte(from), Lte(to)).
func Range(from, to any) Operators {
	return Ops(Gte(from), Lte(to))
}

// OperatorsFromMap builds an operator object from an unordered map. Operators
// are emitted in canonical order (eq, ne, like, gt, gte, lt, lte, in) so the
// result does not depend on map iteration.
func OperatorsFromMap(m map[string]any) (Operators, error) {
	ops := make(Operators, 0, len(m))

	for name, operand := range m {
		op := Operator(name)
		if !op.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidOperator, name)
		}

		ops = append(ops, Op{Name: op, Operand: operand})
	}

	sort.Slice(ops, func(i, j int) bool {
		return operatorOrder[ops[i].Name] < operatorOrder[ops[j].Name]
	})

	return ops, nil
}
