package erp_test

import (
	"math"
	"net/url"
	"testing"

	"github.com/fivetwenty-io/erp-sdk/pkg/erp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:funlen // Test functions can be longer for detailed testing
func TestAssemble(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		opts     *erp.QueryOptions
		expected string
	}{
		{
			name:     "nil options",
			opts:     nil,
			expected: "",
		},
		{
			name:     "empty options",
			opts:     erp.NewQueryOptions(),
			expected: "",
		},
		{
			name: "fields sort and limit",
			opts: erp.NewQueryOptions().
				WithLimit(10).
				WithFields("CODE", "TITLE").
				WithSort(erp.SortBy("CODE", "DATE_CREATED").Desc()),
			expected: "fields=CODE%2CTITLE&sort=CODE%2CDATE_CREATED%20desc&limit=10",
		},
		{
			name:     "logical field names are mapped",
			opts:     erp.NewQueryOptions().WithFields("code", "dateCreated"),
			expected: "fields=CODE%2CDATE_CREATED",
		},
		{
			name:     "sort defaults to asc",
			opts:     erp.NewQueryOptions().WithSort(&erp.Sort{Fields: []string{"title"}}),
			expected: "sort=TITLE%20asc",
		},
		{
			name:     "zero limit and offset are emitted",
			opts:     erp.NewQueryOptions().WithLimit(0).WithOffset(0),
			expected: "limit=0&offset=0",
		},
		{
			name:     "count",
			opts:     erp.NewQueryOptions().WithCount(true),
			expected: "count=true",
		},
		{
			name:     "filter is escaped",
			opts:     erp.NewQueryOptions().WithFilter("NAME eq 'O''Brien & Co'"),
			expected: "q=NAME%20eq%20%27O%27%27Brien%20%26%20Co%27",
		},
		{
			name: "every parameter in fixed order",
			opts: &erp.QueryOptions{
				Q:      "CODE eq 'A'",
				Count:  true,
				Offset: intPtr(20),
				Limit:  intPtr(10),
				Sort:   erp.SortBy("code"),
				Fields: []string{"code"},
			},
			expected: "fields=CODE&sort=CODE%20asc&limit=10&offset=20&count=true&q=CODE%20eq%20%27A%27",
		},
	}

	table := testTable(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := erp.Assemble(table, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestAssemble_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		opts     *erp.QueryOptions
		expected error
	}{
		{name: "negative limit", opts: erp.NewQueryOptions().WithLimit(-1), expected: erp.ErrInvalidPagination},
		{name: "negative offset", opts: erp.NewQueryOptions().WithOffset(-5), expected: erp.ErrInvalidPagination},
		{name: "unknown field", opts: erp.NewQueryOptions().WithFields("code", "color"), expected: erp.ErrUnknownField},
		{name: "unknown sort field", opts: erp.NewQueryOptions().WithSort(erp.SortBy("color")), expected: erp.ErrUnknownField},
		{name: "sort without fields", opts: erp.NewQueryOptions().WithSort(&erp.Sort{}), expected: erp.ErrInvalidSort},
		{
			name:     "bad sort direction",
			opts:     erp.NewQueryOptions().WithSort(&erp.Sort{Fields: []string{"code"}, Direction: "up"}),
			expected: erp.ErrInvalidSort,
		},
	}

	table := testTable(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := erp.Assemble(table, tt.opts)
			require.ErrorIs(t, err, tt.expected)
			assert.Empty(t, result)
		})
	}
}

func TestAssemble_Deterministic(t *testing.T) {
	t.Parallel()

	table := testTable(t)
	sortSpec, err := erp.ParseSortSpec([]string{"CODE", "DATE_CREATED"}, "desc")
	require.NoError(t, err)

	opts := erp.NewQueryOptions().WithLimit(10).WithFields("CODE", "TITLE").WithSort(sortSpec)

	first, err := opts.Encode(table)
	require.NoError(t, err)

	for range 20 {
		again, err := opts.Encode(table)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	values, err := url.ParseQuery(first)
	require.NoError(t, err)
	assert.Equal(t, "CODE,TITLE", values.Get("fields"))
	assert.Equal(t, "CODE,DATE_CREATED desc", values.Get("sort"))
	assert.Equal(t, "10", values.Get("limit"))
}

func TestQueryOptions_WithCriteria(t *testing.T) {
	t.Parallel()

	table := testTable(t)

	opts, err := erp.NewQueryOptions().WithCriteria(table, erp.Where("code", "A"))
	require.NoError(t, err)
	assert.Equal(t, "CODE eq 'A'", opts.Q)

	_, err = erp.NewQueryOptions().WithCriteria(table, erp.Where("color", "A"))
	require.ErrorIs(t, err, erp.ErrUnknownField)
}

//nolint:funlen // Test functions can be longer for detailed testing
func TestParseSortSpec(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		spec     []any
		expected *erp.Sort
		err      error
	}{
		{
			name:     "single field",
			spec:     []any{"CODE"},
			expected: &erp.Sort{Fields: []string{"CODE"}, Direction: erp.SortAsc},
		},
		{
			name:     "single field with direction",
			spec:     []any{"CODE", "desc"},
			expected: &erp.Sort{Fields: []string{"CODE"}, Direction: erp.SortDesc},
		},
		{
			name:     "field list",
			spec:     []any{[]string{"CODE", "TITLE"}},
			expected: &erp.Sort{Fields: []string{"CODE", "TITLE"}, Direction: erp.SortAsc},
		},
		{
			name:     "field list with typed direction",
			spec:     []any{[]any{"CODE", "TITLE"}, erp.SortDesc},
			expected: &erp.Sort{Fields: []string{"CODE", "TITLE"}, Direction: erp.SortDesc},
		},
		{name: "no elements", spec: nil, err: erp.ErrInvalidSort},
		{name: "too many elements", spec: []any{"A", "asc", "x"}, err: erp.ErrInvalidSort},
		{name: "bad direction", spec: []any{"CODE", "sideways"}, err: erp.ErrInvalidSort},
		{name: "empty field list", spec: []any{[]string{}}, err: erp.ErrInvalidSort},
		{name: "non string field", spec: []any{[]any{"CODE", 1}}, err: erp.ErrInvalidSort},
		{name: "non string direction", spec: []any{"CODE", 1}, err: erp.ErrInvalidSort},
		{name: "unsupported head", spec: []any{42}, err: erp.ErrInvalidSort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := erp.ParseSortSpec(tt.spec...)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseSortString(t *testing.T) {
	t.Parallel()

	sortSpec, err := erp.ParseSortString("code, dateCreated DESC")
	require.NoError(t, err)
	assert.Equal(t, []string{"code", "dateCreated"}, sortSpec.Fields)
	assert.Equal(t, erp.SortDesc, sortSpec.Direction)

	sortSpec, err = erp.ParseSortString("title")
	require.NoError(t, err)
	assert.Equal(t, []string{"title"}, sortSpec.Fields)
	assert.Equal(t, erp.SortAsc, sortSpec.Direction)

	_, err = erp.ParseSortString("")
	require.ErrorIs(t, err, erp.ErrInvalidSort)

	_, err = erp.ParseSortString("desc")
	require.ErrorIs(t, err, erp.ErrInvalidSort)
}

func TestPaginationValue(t *testing.T) {
	t.Parallel()

	valid := []struct {
		in       any
		expected int
	}{
		{in: 10, expected: 10},
		{in: int64(0), expected: 0},
		{in: uint8(7), expected: 7},
		{in: 25.0, expected: 25},
		{in: " 30 ", expected: 30},
	}

	for _, tc := range valid {
		n, err := erp.PaginationValue(tc.in)
		require.NoError(t, err, "%v", tc.in)
		assert.Equal(t, tc.expected, n)
	}

	invalid := []any{nil, -1, "abc", "-3", 1.5, math.NaN(), math.Inf(1), uint64(math.MaxUint64), true}

	for _, in := range invalid {
		_, err := erp.PaginationValue(in)
		require.ErrorIs(t, err, erp.ErrInvalidPagination, "%v", in)
	}
}

func TestEscape(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "A%20B", erp.Escape("A B"))
	assert.Equal(t, "a%2Bb", erp.Escape("a+b"))
	assert.Equal(t, "%27x%27", erp.Escape("'x'"))
}

func intPtr(n int) *int {
	return &n
}
