package erp

import (
	"fmt"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// Wire parameter names.
const (
	ParamFilter = "q"
	ParamFields = "fields"
	ParamSort   = "sort"
	ParamLimit  = "limit"
	ParamOffset = "offset"
	ParamCount  = "count"
)

// SortDirection is the direction of a sort.
type SortDirection string

// Sort directions.
const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Sort is the canonical form of a sort specification.
type Sort struct {
	Fields    []string
	Direction SortDirection
}

// SortBy sorts ascending by the given fields.
func SortBy(fields ...string) *Sort {
	return &Sort{Fields: fields, Direction: SortAsc}
}

// Desc switches the sort to descending.
func (s *Sort) Desc() *Sort {
	s.Direction = SortDesc

	return s
}

// Asc switches the sort to ascending.
func (s *Sort) Asc() *Sort {
	s.Direction = SortAsc

	return s
}

// ParseSortSpec normalises the four accepted sort specification shapes:
//
//	ParseSortSpec("CODE")
//	ParseSortSpec("CODE", "desc")
//	ParseSortSpec([]string{"CODE", "DATE_CREATED"})
//	ParseSortSpec([]string{"CODE", "DATE_CREATED"}, "desc")
//
// The direction defaults to asc.
func ParseSortSpec(spec ...any) (*Sort, error) {
	if len(spec) == 0 || len(spec) > 2 {
		return nil, fmt.Errorf("%w: expected [fields] or [fields, direction], got %d elements", ErrInvalidSort, len(spec))
	}

	sortSpec := &Sort{Direction: SortAsc}

	switch head := spec[0].(type) {
	case string:
		sortSpec.Fields = []string{head}
	default:
		values, ok := listValues(head)
		if !ok {
			return nil, fmt.Errorf("%w: unsupported field list %T", ErrInvalidSort, head)
		}

		for _, value := range values {
			name, isString := value.(string)
			if !isString {
				return nil, fmt.Errorf("%w: field name must be a string, got %T", ErrInvalidSort, value)
			}

			sortSpec.Fields = append(sortSpec.Fields, name)
		}
	}

	if len(spec) == 2 {
		var direction string

		switch typed := spec[1].(type) {
		case string:
			direction = typed
		case SortDirection:
			direction = string(typed)
		default:
			return nil, fmt.Errorf("%w: direction must be a string, got %T", ErrInvalidSort, spec[1])
		}

		sortSpec.Direction = SortDirection(direction)
	}

	err := sortSpec.validate()
	if err != nil {
		return nil, err
	}

	return sortSpec, nil
}

func (s *Sort) validate() error {
	if len(s.Fields) == 0 {
		return fmt.Errorf("%w: no fields", ErrInvalidSort)
	}

	switch s.Direction {
	case "", SortAsc, SortDesc:
		return nil
	default:
		return fmt.Errorf("%w: direction %q", ErrInvalidSort, string(s.Direction))
	}
}

func (s *Sort) direction() SortDirection {
	if s.Direction == "" {
		return SortAsc
	}

	return s.Direction
}

// QueryOptions holds the filter, selection, sort and pagination parameters of
// one list request.
type QueryOptions struct {
	// Q is a compiled filter expression, normally produced by Compile.
	Q      string
	Fields []string
	Sort   *Sort
	Limit  *int
	Offset *int
	Count  bool
}

// NewQueryOptions creates empty query options.
func NewQueryOptions() *QueryOptions {
	return &QueryOptions{}
}

// WithFilter sets the compiled filter expression.
func (o *QueryOptions) WithFilter(q string) *QueryOptions {
	o.Q = q

	return o
}

// WithCriteria compiles criteria against table and sets the filter.
func (o *QueryOptions) WithCriteria(table *FieldTable, criteria Criteria) (*QueryOptions, error) {
	q, err := Compile(table, criteria)
	if err != nil {
		return nil, err
	}

	o.Q = q

	return o, nil
}

// WithFields replaces the field selection.
func (o *QueryOptions) WithFields(fields ...string) *QueryOptions {
	o.Fields = fields

	return o
}

// WithSort sets the sort.
func (o *QueryOptions) WithSort(sortSpec *Sort) *QueryOptions {
	o.Sort = sortSpec

	return o
}

// WithLimit sets the page size.
func (o *QueryOptions) WithLimit(limit int) *QueryOptions {
	o.Limit = &limit

	return o
}

// WithOffset sets the number of rows to skip.
func (o *QueryOptions) WithOffset(offset int) *QueryOptions {
	o.Offset = &offset

	return o
}

// WithCount requests the total row count.
func (o *QueryOptions) WithCount(count bool) *QueryOptions {
	o.Count = count

	return o
}

// Encode serialises the options against table. See Assemble.
func (o *QueryOptions) Encode(table *FieldTable) (string, error) {
	return Assemble(table, o)
}

// Assemble serialises query options into a URL query string without the
// leading '?'.
//
// Parameters are always emitted in the same order (fields, sort, limit,
// offset, count, then q) so equal options produce byte-identical strings.
// Field names in fields and sort are mapped through table. Nil or empty
// options produce the empty string.
func Assemble(table *FieldTable, opts *QueryOptions) (string, error) {
	if opts == nil {
		return "", nil
	}

	params := make([]string, 0, 6)

	if len(opts.Fields) > 0 {
		wire, err := table.WireAll(opts.Fields)
		if err != nil {
			return "", fmt.Errorf("fields: %w", err)
		}

		params = append(params, param(ParamFields, strings.Join(wire, ",")))
	}

	if opts.Sort != nil {
		err := opts.Sort.validate()
		if err != nil {
			return "", err
		}

		wire, err := table.WireAll(opts.Sort.Fields)
		if err != nil {
			return "", fmt.Errorf("sort: %w", err)
		}

		params = append(params, param(ParamSort, strings.Join(wire, ",")+" "+string(opts.Sort.direction())))
	}

	if opts.Limit != nil {
		if *opts.Limit < 0 {
			return "", fmt.Errorf("%w: limit %d is negative", ErrInvalidPagination, *opts.Limit)
		}

		params = append(params, param(ParamLimit, strconv.Itoa(*opts.Limit)))
	}

	if opts.Offset != nil {
		if *opts.Offset < 0 {
			return "", fmt.Errorf("%w: offset %d is negative", ErrInvalidPagination, *opts.Offset)
		}

		params = append(params, param(ParamOffset, strconv.Itoa(*opts.Offset)))
	}

	if opts.Count {
		params = append(params, param(ParamCount, "true"))
	}

	if opts.Q != "" {
		params = append(params, param(ParamFilter, opts.Q))
	}

	return strings.Join(params, "&"), nil
}

func param(name, value string) string {
	return name + "=" + Escape(value)
}

// Escape percent-encodes a query parameter value. Spaces become %20 rather
// than '+', which the filter grammar would otherwise read literally.
func Escape(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}

// PaginationValue converts a loosely typed limit or offset (decoded YAML,
// JSON numbers, flag strings) into an int. Negative numbers, non-integral
// floats, NaN and non-numeric values are rejected with ErrInvalidPagination.
func PaginationValue(value any) (int, error) {
	switch typed := value.(type) {
	case nil:
		return 0, fmt.Errorf("%w: missing value", ErrInvalidPagination)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(typed))
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidPagination, typed)
		}

		return checkPagination(int64(n))
	}

	rv := reflect.ValueOf(value)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return checkPagination(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if rv.Uint() > math.MaxInt32 {
			return 0, fmt.Errorf("%w: %d is out of range", ErrInvalidPagination, rv.Uint())
		}

		return int(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, fmt.Errorf("%w: %v is not an integer", ErrInvalidPagination, f)
		}

		if f > math.MaxInt32 {
			return 0, fmt.Errorf("%w: %v is out of range", ErrInvalidPagination, f)
		}

		return checkPagination(int64(f))
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidPagination, value)
	}
}

func checkPagination(n int64) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: %d is negative", ErrInvalidPagination, n)
	}

	if n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %d is out of range", ErrInvalidPagination, n)
	}

	return int(n), nil
}
