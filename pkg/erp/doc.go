// Package erp provides types, interfaces, and helpers for working with the
// ERP REST API.
//
// # Overview
//
// The erp package defines the entity models (Account, ItemAlternative,
// LocationCode, ProductionLine), the interfaces of the entity clients, and the
// query layer that turns search criteria into the API's filter and
// query-string syntax. A concrete client is provided by the erpclient
// package, which wires configuration, transport and authentication.
//
// Getting a client
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
//	  cli, err := erpclient.NewWithToken(ctx, "https://erp.example.com", "acme", token)
//	  if err != nil { log.Fatal(err) }
//
//	  lines, err := cli.ProductionLines().GetAll(ctx, erp.NewQueryOptions().WithLimit(50))
//	  if err != nil { log.Fatal(err) }
//	  _ = lines
//	}
//
// # Criteria
//
// A Criteria value is a flat, ordered list of field conditions that are ANDed
// together. A scalar means equality, a slice means any of its values, and an
// Operators value combines comparison operators on one field:
//
//	criteria := erp.Where("code", "ABC").
//	  And("currency", []string{"EUR", "USD"}).
//	  And("balance", erp.Ops(erp.Gte(100), erp.Lte(500)))
//
//	q, err := criteria.Compile(erp.AccountFields)
//	// CODE eq 'ABC' and (CURRENCY eq 'EUR' or CURRENCY eq 'USD') and BALANCE gte 100 and BALANCE lte 500
//
// Logical field names (dateCreated) and wire names (DATE_CREATED) are both
// accepted and resolved through the entity's FieldTable. Compilation fails
// with an error matching ErrUnknownField, ErrInvalidOperator,
// ErrEmptyArrayCriterion or ErrNullLiteral; no partial output is produced.
//
// Criteria can also be decoded from JSON or YAML documents with ParseCriteria,
// which keeps document order. For OR across fields, nested groups or negation
// build an Expr tree with And, Or, Not and Cmp and render it with Render.
//
// # Query options
//
// QueryOptions carries the filter, field selection, sort, limit, offset and
// count flag. Assemble serialises it into a query string with a fixed
// parameter order, so equal options always produce the same string:
//
//	opts := erp.NewQueryOptions().
//	  WithFields("code", "title").
//	  WithSort(erp.SortBy("code").Desc()).
//	  WithLimit(10)
//	query, err := erp.Assemble(erp.AccountFields, opts)
//	// fields=CODE%2CTITLE&sort=CODE%20desc&limit=10
//
// # Errors
//
// API errors are represented by APIError and ResponseError. Helpers such as
// IsNotFound, IsUnauthorized, and IsForbidden branch on common cases.
//
// # Interceptors
//
// InterceptorChain runs request and response interceptors around every call.
// The package ships interceptors for logging, static headers, rate limiting
// (golang.org/x/time/rate), Prometheus metrics and circuit breaking.
package erp
