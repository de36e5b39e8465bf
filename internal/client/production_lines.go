package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/fivetwenty-io/erp-sdk/internal/constants"
	internalhttp "github.com/fivetwenty-io/erp-sdk/internal/http"
	"github.com/fivetwenty-io/erp-sdk/pkg/erp"
)

// ProductionLinesClient implements erp.ProductionLinesClient.
type ProductionLinesClient struct {
	*EntityClient[erp.ProductionLine]
}

// NewProductionLinesClient creates a new production lines client.
func NewProductionLinesClient(httpClient *internalhttp.Client) *ProductionLinesClient {
	entity, _ := erp.LookupEntity("production-lines")

	return &ProductionLinesClient{
		EntityClient: NewEntityClient[erp.ProductionLine](httpClient, entity),
	}
}

// Start implements erp.ProductionLinesClient.Start.
func (c *ProductionLinesClient) Start(ctx context.Context, code string) (*erp.ProductionLine, error) {
	return c.post(ctx, code, "start", nil)
}

// Stop implements erp.ProductionLinesClient.Stop.
func (c *ProductionLinesClient) Stop(ctx context.Context, code string) (*erp.ProductionLine, error) {
	return c.post(ctx, code, "stop", nil)
}

// GetCapacity implements erp.ProductionLinesClient.GetCapacity.
func (c *ProductionLinesClient) GetCapacity(ctx context.Context, code string, from, to time.Time) (*erp.ProductionLineCapacity, error) {
	query := url.Values{}
	if !from.IsZero() {
		query.Set("from", from.Format(constants.DateFormat))
	}

	if !to.IsZero() {
		query.Set("to", to.Format(constants.DateFormat))
	}

	var capacity erp.ProductionLineCapacity

	err := c.call(ctx, http.MethodGet, code, "capacity", query, nil, &capacity)
	if err != nil {
		return nil, err
	}

	return &capacity, nil
}
