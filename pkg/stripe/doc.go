// Package stripe provides types, interfaces, and helpers for working with the
// Stripe payments API.
//
// # Overview
//
// The stripe package defines the resource types (Customer, Charge), their
// parameter structs, and the interfaces for resource-oriented clients
// (CustomersClient, ChargesClient). A concrete implementation is provided by
// the stripeclient package, which wires configuration, transport, retries
// and idempotency. Most consumers import stripeclient to construct a client
// and then use the interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/stripe-client/pkg/stripe"
//	  "github.com/fivetwenty-io/stripe-client/pkg/stripeclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := stripeclient.New(&stripe.Config{SecretKey: "sk_test_..."})
//	  if err != nil { log.Fatal(err) }
//
//	  charge, err := cli.Charges().Create(ctx, &stripe.ChargeParams{
//	    Amount:   stripe.Int64(100),
//	    Currency: stripe.String("usd"),
//	  })
//	  if err != nil { log.Fatal(err) }
//	  _ = charge
//	}
//
// # Pagination
//
// List endpoints return a ListResponse page. ListIterator walks every page
// lazily, fetching the next one only when the current one is exhausted:
//
//	it := cli.Customers().ListAll(ctx, &stripe.CustomerListParams{})
//	for customer, err := range it.Seq() {
//	  if err != nil { break }
//	  _ = customer
//	}
//
// The cursor follows the last element of each page (starting_after), or the
// first one when the walk started from an EndingBefore cursor. Search
// endpoints follow the next_page token instead.
//
// # Errors
//
// Remote failures are *APIError values; 409 replays are *IdempotencyError.
// Transport failures surface as *ConnectionError after retries are exhausted
// and deadline expiry as *TimeoutError. Helpers such as IsCardError,
// IsRateLimited and IsNotFound branch on common cases.
//
// # Interceptors
//
// InterceptorChain runs around every logical call. The package ships
// logging, header, circuit breaker, Prometheus metrics and NATS event
// interceptors.
package stripe
