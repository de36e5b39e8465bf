package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	internalhttp "github.com/fivetwenty-io/erp-sdk/internal/http"
	"github.com/fivetwenty-io/erp-sdk/pkg/erp"
)

// EntityClient implements erp.EntityClient[T] for any entity described by a
// path and a field table. Every query is validated against the table before a
// request is built.
type EntityClient[T any] struct {
	httpClient *internalhttp.Client
	entity     erp.Entity
}

// NewEntityClient creates a generic client for entity.
func NewEntityClient[T any](httpClient *internalhttp.Client, entity erp.Entity) *EntityClient[T] {
	return &EntityClient[T]{
		httpClient: httpClient,
		entity:     entity,
	}
}

// Fields implements erp.EntityClient.Fields.
func (c *EntityClient[T]) Fields() *erp.FieldTable {
	return c.entity.Fields
}

// GetAll implements erp.EntityClient.GetAll.
func (c *EntityClient[T]) GetAll(ctx context.Context, opts *erp.QueryOptions) (*erp.ListResponse[T], error) {
	query, err := erp.Assemble(c.entity.Fields, opts)
	if err != nil {
		return nil, fmt.Errorf("building %s query: %w", c.entity.Name, err)
	}

	return c.list(ctx, query)
}

// Find implements erp.EntityClient.Find. The compiled criteria are joined
// with any filter already present in opts.
func (c *EntityClient[T]) Find(ctx context.Context, criteria erp.Criteria, opts *erp.QueryOptions) (*erp.ListResponse[T], error) {
	q, err := erp.Compile(c.entity.Fields, criteria)
	if err != nil {
		return nil, fmt.Errorf("compiling %s criteria: %w", c.entity.Name, err)
	}

	return c.GetAll(ctx, withFilter(opts, q))
}

// FindExpr implements erp.EntityClient.FindExpr.
func (c *EntityClient[T]) FindExpr(ctx context.Context, expr erp.Expr, opts *erp.QueryOptions) (*erp.ListResponse[T], error) {
	q, err := erp.Render(c.entity.Fields, expr)
	if err != nil {
		return nil, fmt.Errorf("rendering %s expression: %w", c.entity.Name, err)
	}

	return c.GetAll(ctx, withFilter(opts, q))
}

// GetByID implements erp.EntityClient.GetByID.
func (c *EntityClient[T]) GetByID(ctx context.Context, id string) (*T, error) {
	path, err := c.itemPath(id)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting %s %s: %w", c.entity.Name, id, err)
	}

	return c.decode(resp.Body, nil)
}

// Create implements erp.EntityClient.Create.
func (c *EntityClient[T]) Create(ctx context.Context, entity *T) (*T, error) {
	resp, err := c.httpClient.Post(ctx, c.entity.Path, entity)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", c.entity.Name, err)
	}

	return c.decode(resp.Body, entity)
}

// Update implements erp.EntityClient.Update. The whole entity is replaced.
func (c *EntityClient[T]) Update(ctx context.Context, id string, entity *T) (*T, error) {
	path, err := c.itemPath(id)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Put(ctx, path, entity)
	if err != nil {
		return nil, fmt.Errorf("updating %s %s: %w", c.entity.Name, id, err)
	}

	return c.decode(resp.Body, entity)
}

// Patch implements erp.EntityClient.Patch. Keys may be logical or wire names
// and are sent as wire names.
func (c *EntityClient[T]) Patch(ctx context.Context, id string, fields map[string]interface{}) (*T, error) {
	path, err := c.itemPath(id)
	if err != nil {
		return nil, err
	}

	body := make(map[string]interface{}, len(fields))

	for name, value := range fields {
		wire, wireErr := c.entity.Fields.Wire(name)
		if wireErr != nil {
			return nil, fmt.Errorf("patching %s %s: %w", c.entity.Name, id, wireErr)
		}

		body[wire] = value
	}

	resp, err := c.httpClient.Patch(ctx, path, body)
	if err != nil {
		return nil, fmt.Errorf("patching %s %s: %w", c.entity.Name, id, err)
	}

	return c.decode(resp.Body, nil)
}

// Delete implements erp.EntityClient.Delete.
func (c *EntityClient[T]) Delete(ctx context.Context, id string) error {
	path, err := c.itemPath(id)
	if err != nil {
		return err
	}

	_, err = c.httpClient.Delete(ctx, path)
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", c.entity.Name, id, err)
	}

	return nil
}

// Count implements erp.EntityClient.Count using count=true&limit=0.
func (c *EntityClient[T]) Count(ctx context.Context, criteria erp.Criteria) (int, error) {
	opts, err := erp.NewQueryOptions().WithLimit(0).WithCount(true).WithCriteria(c.entity.Fields, criteria)
	if err != nil {
		return 0, fmt.Errorf("compiling %s criteria: %w", c.entity.Name, err)
	}

	list, err := c.GetAll(ctx, opts)
	if err != nil {
		return 0, err
	}

	if list.Count == nil {
		return 0, fmt.Errorf("counting %s: %w", c.entity.Name, erp.ErrCountMissing)
	}

	return *list.Count, nil
}

// call performs an RPC-style request on the entity, such as
// POST /production-lines/{code}/start, and decodes the response into out.
func (c *EntityClient[T]) call(ctx context.Context, method, id, action string, query url.Values, body, out interface{}) error {
	path, err := c.itemPath(id)
	if err != nil {
		return err
	}

	if action != "" {
		path += "/" + action
	}

	resp, err := c.httpClient.Do(ctx, &internalhttp.Request{
		Method: method,
		Path:   path,
		Query:  query,
		Body:   body,
	})
	if err != nil {
		return fmt.Errorf("calling %s %s %s: %w", c.entity.Name, id, action, err)
	}

	if out == nil || len(resp.Body) == 0 {
		return nil
	}

	err = json.Unmarshal(resp.Body, out)
	if err != nil {
		return fmt.Errorf("parsing %s %s response: %w", c.entity.Name, action, err)
	}

	return nil
}

// post calls an action that returns the updated entity.
func (c *EntityClient[T]) post(ctx context.Context, id, action string, body interface{}) (*T, error) {
	var result T

	err := c.call(ctx, http.MethodPost, id, action, nil, body, &result)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *EntityClient[T]) list(ctx context.Context, query string) (*erp.ListResponse[T], error) {
	resp, err := c.httpClient.GetRaw(ctx, c.entity.Path, query)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", c.entity.Name, err)
	}

	var list erp.ListResponse[T]

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing %s list: %w", c.entity.Name, err)
	}

	return &list, nil
}

// decode parses a single entity. An empty body yields fallback.
func (c *EntityClient[T]) decode(body []byte, fallback *T) (*T, error) {
	if len(body) == 0 && fallback != nil {
		return fallback, nil
	}

	var result T

	err := json.Unmarshal(body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", c.entity.Name, err)
	}

	return &result, nil
}

func (c *EntityClient[T]) itemPath(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("%s: %w", c.entity.Name, erp.ErrIDRequired)
	}

	return c.entity.Path + "/" + url.PathEscape(id), nil
}

// withFilter returns a copy of opts whose filter also includes q. An existing
// filter is grouped, since a raw filter may contain a top-level or.
func withFilter(opts *erp.QueryOptions, q string) *erp.QueryOptions {
	merged := erp.NewQueryOptions()
	if opts != nil {
		copied := *opts
		merged = &copied
	}

	switch {
	case q == "":
	case merged.Q == "":
		merged.Q = q
	default:
		merged.Q = q + " and (" + merged.Q + ")"
	}

	return merged
}
