package client

import (
	"context"
	"fmt"

	internalhttp "github.com/fivetwenty-io/erp-sdk/internal/http"
	"github.com/fivetwenty-io/erp-sdk/pkg/erp"
)

// ItemAlternativesClient implements erp.ItemAlternativesClient.
type ItemAlternativesClient struct {
	*EntityClient[erp.ItemAlternative]
}

// NewItemAlternativesClient creates a new item alternatives client.
func NewItemAlternativesClient(httpClient *internalhttp.Client) *ItemAlternativesClient {
	entity, _ := erp.LookupEntity("item-alternatives")

	return &ItemAlternativesClient{
		EntityClient: NewEntityClient[erp.ItemAlternative](httpClient, entity),
	}
}

// ListForItem implements erp.ItemAlternativesClient.ListForItem. Results are
// sorted by priority unless opts carries its own sort.
func (c *ItemAlternativesClient) ListForItem(ctx context.Context, itemCode string, opts *erp.QueryOptions) (*erp.ListResponse[erp.ItemAlternative], error) {
	if itemCode == "" {
		return nil, fmt.Errorf("item-alternatives: %w", erp.ErrIDRequired)
	}

	sorted := erp.NewQueryOptions()
	if opts != nil {
		copied := *opts
		sorted = &copied
	}

	if sorted.Sort == nil {
		sorted.Sort = erp.SortBy("priority").Asc()
	}

	return c.Find(ctx, erp.Where("itemCode", itemCode), sorted)
}

// Activate implements erp.ItemAlternativesClient.Activate.
func (c *ItemAlternativesClient) Activate(ctx context.Context, id string) (*erp.ItemAlternative, error) {
	return c.post(ctx, id, "activate", nil)
}

// Deactivate implements erp.ItemAlternativesClient.Deactivate.
func (c *ItemAlternativesClient) Deactivate(ctx context.Context, id string) (*erp.ItemAlternative, error) {
	return c.post(ctx, id, "deactivate", nil)
}
