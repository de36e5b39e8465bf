package erp

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Option document keys accepted by ParseQueryOptions.
const (
	docKeyWhere  = "where"
	docKeyFilter = "q"
)

// ParseCriteria decodes a criteria document written as a JSON or YAML object:
//
//	{"code": "ABC", "tags": ["A", "B"], "price": {"gte": 100, "lte": 500}}
//
// Fields and the operators inside an operator object keep their document
// order. Sequences become arrays and nested objects become operator objects;
// an unknown operator key fails with ErrInvalidOperator. A null value is kept
// as nil and rejected by Compile with ErrNullLiteral.
func ParseCriteria(data []byte) (Criteria, error) {
	root, err := documentRoot(data)
	if err != nil {
		return nil, err
	}

	if root == nil {
		return nil, nil
	}

	return criteriaFromNode(root)
}

// ParseQueryOptions decodes a query options document:
//
//	where: {status: {in: [1, 2]}}
//	fields: [code, title]
//	sort: [[code, dateCreated], desc]
//	limit: 10
//	offset: 20
//	count: true
//
// The where criteria is compiled against table into Q; a raw q string may be
// given instead, but not both. sort accepts the four array shapes of ParseSortSpec or a
// string such as "code,dateCreated desc". limit and offset go through
// PaginationValue.
func ParseQueryOptions(table *FieldTable, data []byte) (*QueryOptions, error) {
	root, err := documentRoot(data)
	if err != nil {
		return nil, err
	}

	opts := NewQueryOptions()
	if root == nil {
		return opts, nil
	}

	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: options must be an object", ErrInvalidCriteriaDocument)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		value := resolveAlias(root.Content[i+1])

		err := applyOption(table, opts, key, value)
		if err != nil {
			return nil, err
		}
	}

	return opts, nil
}

func applyOption(table *FieldTable, opts *QueryOptions, key string, value *yaml.Node) error {
	switch key {
	case docKeyWhere:
		if opts.Q != "" {
			return fmt.Errorf("%w: where and q are mutually exclusive", ErrInvalidCriteriaDocument)
		}

		criteria, err := criteriaFromNode(value)
		if err != nil {
			return err
		}

		_, err = opts.WithCriteria(table, criteria)

		return err
	case docKeyFilter:
		if value.Kind != yaml.ScalarNode {
			return fmt.Errorf("%w: q must be a string", ErrInvalidCriteriaDocument)
		}

		if opts.Q != "" {
			return fmt.Errorf("%w: where and q are mutually exclusive", ErrInvalidCriteriaDocument)
		}

		if value.ShortTag() != "!!null" {
			opts.Q = value.Value
		}
	case ParamFields:
		fields, err := stringList(value)
		if err != nil {
			return fmt.Errorf("fields: %w", err)
		}

		opts.Fields = fields
	case ParamSort:
		sortSpec, err := sortFromNode(value)
		if err != nil {
			return err
		}

		opts.Sort = sortSpec
	case ParamLimit, ParamOffset:
		raw, err := scalarValue(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidPagination, key, err)
		}

		n, err := PaginationValue(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}

		if key == ParamLimit {
			opts.WithLimit(n)
		} else {
			opts.WithOffset(n)
		}
	case ParamCount:
		var count bool

		err := value.Decode(&count)
		if err != nil {
			return fmt.Errorf("%w: count must be a boolean", ErrInvalidCriteriaDocument)
		}

		opts.Count = count
	default:
		return fmt.Errorf("%w: unknown option %q", ErrInvalidCriteriaDocument, key)
	}

	return nil
}

// ParseSortString parses the compact sort form "FIELD1,FIELD2 desc". A
// trailing asc or desc token is the direction; every other token is a field.
func ParseSortString(spec string) (*Sort, error) {
	parts := strings.Fields(spec)
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: empty sort", ErrInvalidSort)
	}

	last := SortDirection(strings.ToLower(parts[len(parts)-1]))
	if last == SortAsc || last == SortDesc {
		return ParseSortSpec(splitFields(strings.Join(parts[:len(parts)-1], ",")), last)
	}

	return ParseSortSpec(splitFields(strings.Join(parts, ",")))
}

func splitFields(list string) []string {
	var fields []string

	for _, field := range strings.Split(list, ",") {
		field = strings.TrimSpace(field)
		if field != "" {
			fields = append(fields, field)
		}
	}

	return fields
}

func documentRoot(data []byte) (*yaml.Node, error) {
	var doc yaml.Node

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCriteriaDocument, err)
	}

	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}

	root := resolveAlias(doc.Content[0])
	if root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null" {
		return nil, nil
	}

	return root, nil
}

func criteriaFromNode(node *yaml.Node) (Criteria, error) {
	node = resolveAlias(node)
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: criteria must be an object", ErrInvalidCriteriaDocument)
	}

	criteria := make(Criteria, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		field := node.Content[i].Value

		value, err := fieldValue(field, resolveAlias(node.Content[i+1]))
		if err != nil {
			return nil, err
		}

		criteria = append(criteria, Criterion{Field: field, Value: value})
	}

	return criteria, nil
}

func fieldValue(field string, node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return scalarValue(node)
	case yaml.SequenceNode:
		return scalarList(field, node)
	case yaml.MappingNode:
		ops := make(Operators, 0, len(node.Content)/2)

		for i := 0; i+1 < len(node.Content); i += 2 {
			name := Operator(node.Content[i].Value)
			if !name.Valid() {
				return nil, fmt.Errorf("field %q: %w: %q", field, ErrInvalidOperator, string(name))
			}

			operandNode := resolveAlias(node.Content[i+1])

			var (
				operand any
				err     error
			)

			switch operandNode.Kind {
			case yaml.SequenceNode:
				operand, err = scalarList(field, operandNode)
			case yaml.ScalarNode:
				operand, err = scalarValue(operandNode)
			default:
				err = fmt.Errorf("%w: field %q: operand of %q must be a scalar or array", ErrInvalidCriteriaDocument, field, string(name))
			}

			if err != nil {
				return nil, err
			}

			ops = append(ops, Op{Name: name, Operand: operand})
		}

		return ops, nil
	default:
		return nil, fmt.Errorf("%w: field %q has an unsupported value", ErrInvalidCriteriaDocument, field)
	}
}

func scalarList(field string, node *yaml.Node) ([]any, error) {
	values := make([]any, 0, len(node.Content))

	for _, item := range node.Content {
		item = resolveAlias(item)
		if item.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: field %q: arrays may only hold scalars", ErrInvalidCriteriaDocument, field)
		}

		value, err := scalarValue(item)
		if err != nil {
			return nil, err
		}

		values = append(values, value)
	}

	return values, nil
}

// scalarValue converts a scalar node to string, int64, float64, bool or nil.
// Timestamps stay strings so date-like values are sent as written.
func scalarValue(node *yaml.Node) (any, error) {
	if node.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("%w: expected a scalar", ErrInvalidCriteriaDocument)
	}

	switch node.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		return strconv.ParseBool(node.Value)
	case "!!int":
		var n int64

		err := node.Decode(&n)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCriteriaDocument, err)
		}

		return n, nil
	case "!!float":
		var f float64

		err := node.Decode(&f)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCriteriaDocument, err)
		}

		return f, nil
	default:
		return node.Value, nil
	}
}

func stringList(node *yaml.Node) ([]string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return splitFields(node.Value), nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(node.Content))

		for _, item := range node.Content {
			item = resolveAlias(item)
			if item.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%w: expected a list of names", ErrInvalidCriteriaDocument)
			}

			out = append(out, item.Value)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected a list of names", ErrInvalidCriteriaDocument)
	}
}

func sortFromNode(node *yaml.Node) (*Sort, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return ParseSortString(node.Value)
	case yaml.SequenceNode:
		spec := make([]any, 0, len(node.Content))

		for _, item := range node.Content {
			item = resolveAlias(item)

			switch item.Kind {
			case yaml.ScalarNode:
				spec = append(spec, item.Value)
			case yaml.SequenceNode:
				fields, err := stringList(item)
				if err != nil {
					return nil, fmt.Errorf("sort: %w", err)
				}

				spec = append(spec, fields)
			default:
				return nil, fmt.Errorf("%w: unsupported sort element", ErrInvalidSort)
			}
		}

		return ParseSortSpec(spec...)
	default:
		return nil, fmt.Errorf("%w: unsupported sort value", ErrInvalidSort)
	}
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}

	return node
}
