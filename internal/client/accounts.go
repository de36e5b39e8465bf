package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/fivetwenty-io/erp-sdk/internal/constants"
	internalhttp "github.com/fivetwenty-io/erp-sdk/internal/http"
	"github.com/fivetwenty-io/erp-sdk/pkg/erp"
)

// AccountsClient implements erp.AccountsClient.
type AccountsClient struct {
	*EntityClient[erp.Account]
}

// NewAccountsClient creates a new accounts client.
func NewAccountsClient(httpClient *internalhttp.Client) *AccountsClient {
	entity, _ := erp.LookupEntity("accounts")

	return &AccountsClient{
		EntityClient: NewEntityClient[erp.Account](httpClient, entity),
	}
}

// GetBalance implements erp.AccountsClient.GetBalance.
func (c *AccountsClient) GetBalance(ctx context.Context, code string, asOf time.Time) (*erp.AccountBalance, error) {
	var query url.Values
	if !asOf.IsZero() {
		query = url.Values{"date": []string{asOf.Format(constants.DateFormat)}}
	}

	var balance erp.AccountBalance

	err := c.call(ctx, http.MethodGet, code, "balance", query, nil, &balance)
	if err != nil {
		return nil, err
	}

	return &balance, nil
}

// ListChildren implements erp.AccountsClient.ListChildren.
func (c *AccountsClient) ListChildren(ctx context.Context, code string, opts *erp.QueryOptions) (*erp.ListResponse[erp.Account], error) {
	if code == "" {
		return nil, fmt.Errorf("accounts: %w", erp.ErrIDRequired)
	}

	return c.Find(ctx, erp.Where("parentCode", code), opts)
}
