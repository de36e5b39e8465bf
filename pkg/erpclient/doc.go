// Package erpclient provides the entry point for constructing an ERP REST API
// client that implements the erp.Client interface.
//
// It layers configuration, HTTP transport and authentication on top of the
// resource interfaces and query types defined in the erp package.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/erp-sdk/pkg/erp"
//	  "github.com/fivetwenty-io/erp-sdk/pkg/erpclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  cli, err := erpclient.New(ctx, &erp.Config{
//	    APIEndpoint:  "erp.example.com",
//	    Tenant:       "acme",
//	    ClientID:     "reporting",
//	    ClientSecret: "secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  opts := erp.NewQueryOptions().WithFields("code", "title").WithLimit(20)
//	  criteria := erp.Where("currency", []string{"EUR", "USD"}).
//	    And("balance", erp.Range(100, 500))
//
//	  accounts, err := cli.Accounts().Find(ctx, criteria, opts)
//	  if err != nil { log.Fatal(err) }
//	  for _, account := range accounts.Data {
//	    log.Println(account.Code, account.Title)
//	  }
//	}
//
// Invalid criteria such as unknown fields, empty arrays or null values are
// rejected before any request is sent; match them with errors.Is against the
// erp.Err* sentinels.
package erpclient
