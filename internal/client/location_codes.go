package client

import (
	"context"

	internalhttp "github.com/fivetwenty-io/erp-sdk/internal/http"
	"github.com/fivetwenty-io/erp-sdk/pkg/erp"
)

// LocationCodesClient implements erp.LocationCodesClient.
type LocationCodesClient struct {
	*EntityClient[erp.LocationCode]
}

// NewLocationCodesClient creates a new location codes client.
func NewLocationCodesClient(httpClient *internalhttp.Client) *LocationCodesClient {
	entity, _ := erp.LookupEntity("location-codes")

	return &LocationCodesClient{
		EntityClient: NewEntityClient[erp.LocationCode](httpClient, entity),
	}
}

// SearchByCode implements erp.LocationCodesClient.SearchByCode. The pattern is
// sent verbatim; wildcards are the caller's responsibility.
func (c *LocationCodesClient) SearchByCode(ctx context.Context, pattern string, opts *erp.QueryOptions) (*erp.ListResponse[erp.LocationCode], error) {
	return c.Find(ctx, erp.Where("code", erp.Ops(erp.Like(pattern))), opts)
}

type blockRequest struct {
	Reason string `json:"REASON,omitempty"`
}

// Block implements erp.LocationCodesClient.Block.
func (c *LocationCodesClient) Block(ctx context.Context, code, reason string) (*erp.LocationCode, error) {
	return c.post(ctx, code, "block", &blockRequest{Reason: reason})
}

// Unblock implements erp.LocationCodesClient.Unblock.
func (c *LocationCodesClient) Unblock(ctx context.Context, code string) (*erp.LocationCode, error) {
	return c.post(ctx, code, "unblock", nil)
}
