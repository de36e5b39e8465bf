package erp_test

import (
	"testing"
	"time"

	"github.com/fivetwenty-io/erp-sdk/pkg/erp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable(t *testing.T) *erp.FieldTable {
	t.Helper()

	table, err := erp.NewFieldTable("CODE", "TITLE", "TAGS", "PRICE", "STATUS", "NAME", "IS_ACTIVE", "DATE_CREATED")
	require.NoError(t, err)

	return table
}

//nolint:funlen // Test functions can be longer for detailed testing
func TestCompile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		criteria erp.Criteria
		expected string
	}{
		{
			name:     "scalar shorthand",
			criteria: erp.Where("code", "ABC"),
			expected: "CODE eq 'ABC'",
		},
		{
			name:     "array shorthand",
			criteria: erp.Where("tags", []string{"A", "B"}),
			expected: "(TAGS eq 'A' or TAGS eq 'B')",
		},
		{
			name:     "single element array stays parenthesised",
			criteria: erp.Where("tags", []string{"A"}),
			expected: "(TAGS eq 'A')",
		},
		{
			name:     "range operator object",
			criteria: erp.Where("price", erp.Ops(erp.Gte(100), erp.Lte(500))),
			expected: "PRICE gte 100 and PRICE lte 500",
		},
		{
			name:     "range helper",
			criteria: erp.Where("price", erp.Range(100, 500)),
			expected: "PRICE gte 100 and PRICE lte 500",
		},
		{
			name:     "in operator",
			criteria: erp.Where("status", erp.Ops(erp.In(1, 2, 3))),
			expected: "(STATUS eq 1 or STATUS eq 2 or STATUS eq 3)",
		},
		{
			name:     "in operator with slice",
			criteria: erp.Where("status", erp.In([]int{1, 2, 3})),
			expected: "(STATUS eq 1 or STATUS eq 2 or STATUS eq 3)",
		},
		{
			name:     "string escaping",
			criteria: erp.Where("name", "O'Brien"),
			expected: "NAME eq 'O''Brien'",
		},
		{
			name:     "like is sent verbatim",
			criteria: erp.Where("code", erp.Like("AB*")),
			expected: "CODE like 'AB*'",
		},
		{
			name:     "ne and boolean literal",
			criteria: erp.Where("isActive", erp.Ne(false)),
			expected: "IS_ACTIVE ne false",
		},
		{
			name:     "float literal",
			criteria: erp.Where("price", erp.Gt(12.5)),
			expected: "PRICE gt 12.5",
		},
		{
			name:     "time literal",
			criteria: erp.Where("dateCreated", erp.Gte(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))),
			expected: "DATE_CREATED gte '2024-01-02T03:04:05Z'",
		},
		{
			name:     "wire names pass through",
			criteria: erp.Where("DATE_CREATED", "2024-01-01"),
			expected: "DATE_CREATED eq '2024-01-01'",
		},
		{
			name: "fields keep declaration order",
			criteria: erp.Where("title", "Cash").
				And("code", "1000").
				And("tags", []any{"A", "B"}),
			expected: "TITLE eq 'Cash' and CODE eq '1000' and (TAGS eq 'A' or TAGS eq 'B')",
		},
		{
			name:     "duplicate fields are ANDed",
			criteria: erp.Where("code", "A").And("code", "B"),
			expected: "CODE eq 'A' and CODE eq 'B'",
		},
		{
			name:     "in mixed with range",
			criteria: erp.Where("price", erp.Ops(erp.Gt(1), erp.In(5, 6))),
			expected: "PRICE gt 1 and (PRICE eq 5 or PRICE eq 6)",
		},
	}

	table := testTable(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := erp.Compile(table, tt.criteria)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestCompile_Empty(t *testing.T) {
	t.Parallel()

	table := testTable(t)

	result, err := erp.Compile(table, nil)
	require.NoError(t, err)
	assert.Empty(t, result)

	result, err = erp.Criteria{}.Compile(table)
	require.NoError(t, err)
	assert.Empty(t, result)
}

//nolint:funlen // Test functions can be longer for detailed testing
func TestCompile_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		criteria erp.Criteria
		expected error
	}{
		{
			name:     "unknown field",
			criteria: erp.Where("color", "red"),
			expected: erp.ErrUnknownField,
		},
		{
			name:     "empty array",
			criteria: erp.Where("tags", []string{}),
			expected: erp.ErrEmptyArrayCriterion,
		},
		{
			name:     "empty in",
			criteria: erp.Where("status", erp.Ops(erp.In([]int{}))),
			expected: erp.ErrEmptyArrayCriterion,
		},
		{
			name:     "null value",
			criteria: erp.Where("code", nil),
			expected: erp.ErrNullLiteral,
		},
		{
			name:     "null pointer",
			criteria: erp.Where("code", (*string)(nil)),
			expected: erp.ErrNullLiteral,
		},
		{
			name:     "null operand",
			criteria: erp.Where("price", erp.Gt(nil)),
			expected: erp.ErrNullLiteral,
		},
		{
			name:     "null in operand",
			criteria: erp.Where("status", erp.Ops(erp.Op{Name: erp.OpIn})),
			expected: erp.ErrNullLiteral,
		},
		{
			name:     "null array element",
			criteria: erp.Where("tags", []any{"A", nil}),
			expected: erp.ErrNullLiteral,
		},
		{
			name:     "invalid operator",
			criteria: erp.Where("price", erp.Ops(erp.Op{Name: "between", Operand: 1})),
			expected: erp.ErrInvalidOperator,
		},
		{
			name:     "empty operator object",
			criteria: erp.Where("price", erp.Ops()),
			expected: erp.ErrInvalidOperator,
		},
		{
			name:     "in with scalar operand",
			criteria: erp.Where("status", erp.Ops(erp.Op{Name: erp.OpIn, Operand: 3})),
			expected: erp.ErrInvalidLiteral,
		},
		{
			name:     "unsupported literal",
			criteria: erp.Where("code", map[string]string{"a": "b"}),
			expected: erp.ErrInvalidLiteral,
		},
	}

	table := testTable(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := erp.Compile(table, tt.criteria)
			require.ErrorIs(t, err, tt.expected)
			assert.Empty(t, result)
		})
	}
}

func TestCompile_FailsClosedOnLaterError(t *testing.T) {
	t.Parallel()

	table := testTable(t)
	criteria := erp.Where("code", "ABC").And("title", "Cash").And("color", "red")

	result, err := erp.Compile(table, criteria)
	require.ErrorIs(t, err, erp.ErrUnknownField)
	assert.Empty(t, result)
}

func TestCriteria_AndDoesNotModifyReceiver(t *testing.T) {
	t.Parallel()

	base := make(erp.Criteria, 0, 4)
	base = append(base, erp.Criterion{Field: "code", Value: "A"})

	first := base.And("title", "X")
	second := base.And("name", "Y")

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, "title", first[1].Field)
	assert.Equal(t, "name", second[1].Field)
}

func TestCompile_Deterministic(t *testing.T) {
	t.Parallel()

	table := testTable(t)
	criteria := erp.Where("status", erp.In(1, 2)).And("price", erp.Range(1, 2)).And("code", "X")

	first, err := erp.Compile(table, criteria)
	require.NoError(t, err)

	for range 20 {
		again, err := erp.Compile(table, criteria)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
