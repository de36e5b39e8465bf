package erp

import (
	"fmt"
)

// Criterion is one field of a criteria object. Value is a scalar, a slice of
// scalars, or an Operators value.
type Criterion struct {
	Field string
	Value any
}

// Criteria is a flat search criteria object. Entries are ANDed together and
// compiled in declaration order, which keeps the output reproducible.
//
// The flat form cannot express OR between different fields, nested groups or
// negation; build an Expr tree and use Render for those.
type Criteria []Criterion

// Where starts a criteria object with one field.
func Where(field string, value any) Criteria {
	return Criteria{{Field: field, Value: value}}
}

// And appends a field and returns the extended criteria. The receiver is not
// modified.
func (c Criteria) And(field string, value any) Criteria {
	out := make(Criteria, len(c), len(c)+1)
	copy(out, c)

	return append(out, Criterion{Field: field, Value: value})
}

// Len returns the number of fields.
func (c Criteria) Len() int {
	return len(c)
}

// Expr lowers the criteria to an expression tree. It returns nil for empty
// criteria. Values are validated here; field names are resolved when the tree
// is rendered.
func (c Criteria) Expr() (Expr, error) {
	if len(c) == 0 {
		return nil, nil //nolint:nilnil // empty criteria means no filter
	}

	parts := make([]Expr, 0, len(c))

	for _, criterion := range c {
		part, err := lowerCriterion(criterion)
		if err != nil {
			return nil, err
		}

		parts = append(parts, part)
	}

	return And(parts...), nil
}

// Compile compiles the criteria against table. See Compile.
func (c Criteria) Compile(table *FieldTable) (string, error) {
	return Compile(table, c)
}

// Compile turns a criteria object into a filter expression.
//
// Empty criteria compile to the empty string so callers can omit the q
// parameter entirely. Otherwise every field compiles to one sub-expression and
// the sub-expressions are joined with " and ":
//
//	Where("code", "ABC")                     -> CODE eq 'ABC'
//	Where("tags", []string{"A", "B"})        -> (TAGS eq 'A' or TAGS eq 'B')
//	Where("price", Range(100, 500))          -> PRICE gte 100 and PRICE lte 500
//	Where("status", Ops(In(1, 2, 3)))        -> (STATUS eq 1 or STATUS eq 2 or STATUS eq 3)
//
// Compile fails closed: on any error it returns "" and never a partial filter.
func Compile(table *FieldTable, criteria Criteria) (string, error) {
	expr, err := criteria.Expr()
	if err != nil {
		return "", err
	}

	if expr == nil {
		return "", nil
	}

	return Render(table, expr)
}

func lowerCriterion(criterion Criterion) (Expr, error) {
	field := criterion.Field

	switch value := criterion.Value.(type) {
	case nil:
		return nil, fmt.Errorf("field %q: %w", field, ErrNullLiteral)
	case Operators:
		return lowerOperators(field, value)
	case Op:
		return lowerOperators(field, Operators{value})
	}

	if values, ok := listValues(criterion.Value); ok {
		if len(values) == 0 {
			return nil, fmt.Errorf("field %q: %w", field, ErrEmptyArrayCriterion)
		}

		return Or(eqAll(field, values)...), nil
	}

	return Cmp(field, OpEq, criterion.Value), nil
}

func lowerOperators(field string, ops Operators) (Expr, error) {
	if len(ops) == 0 {
		return nil, fmt.Errorf("field %q: %w: empty operator object", field, ErrInvalidOperator)
	}

	parts := make([]Expr, 0, len(ops))

	for _, op := range ops {
		if !op.Name.Valid() {
			return nil, fmt.Errorf("field %q: %w: %q", field, ErrInvalidOperator, string(op.Name))
		}

		if op.Name != OpIn {
			parts = append(parts, Cmp(field, op.Name, op.Operand))

			continue
		}

		if op.Operand == nil {
			return nil, fmt.Errorf("field %q: %w", field, ErrNullLiteral)
		}

		values, ok := listValues(op.Operand)
		if !ok {
			return nil, fmt.Errorf("field %q: %w: in expects a list", field, ErrInvalidLiteral)
		}

		if len(values) == 0 {
			return nil, fmt.Errorf("field %q: %w", field, ErrEmptyArrayCriterion)
		}

		parts = append(parts, Or(eqAll(field, values)...))
	}

	if len(parts) == 1 {
		return parts[0], nil
	}

	return And(parts...), nil
}

func eqAll(field string, values []any) []Expr {
	out := make([]Expr, len(values))
	for i, value := range values {
		out[i] = Cmp(field, OpEq, value)
	}

	return out
}
