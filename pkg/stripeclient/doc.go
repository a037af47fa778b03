// Package stripeclient provides the primary entry point for constructing a
// payments API client that implements the stripe.Client interface.
//
// It layers configuration, the retrying HTTP executor and the form codec on
// top of the resource interfaces and types defined in the stripe package.
// Most applications import stripeclient to build a client, then use the
// returned stripe.Client to reach the resource clients, for example
// Customers() and Charges().
//
// Quick start
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
//
//	  cli, err := stripeclient.NewWithSecretKey("sk_test_...")
//	  if err != nil { log.Fatal(err) }
//
//	  charge, err := cli.Charges().Create(ctx, &stripe.ChargeParams{
//	    Amount:   stripe.Int64(2000),
//	    Currency: stripe.String("usd"),
//	    Source:   stripe.String("tok_visa"),
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  for customer, err := range cli.Customers().ListAll(ctx, nil).Seq() {
//	    if err != nil { log.Fatal(err) }
//	    log.Println(customer.ID, charge.ID)
//	  }
//	}
//
// # Retries
//
// Every call is retried on transport failures, 429 and 5xx responses with
// exponential backoff and full jitter, honoring Retry-After. POST and DELETE
// calls carry an Idempotency-Key that stays the same across retries.
//
// # Environment
//
// ConfigFromEnv reads STRIPE_SECRET_KEY, STRIPE_BASE_URL, STRIPE_ACCOUNT,
// STRIPE_MAX_ATTEMPTS and STRIPE_DEBUG, optionally from dotenv files.
package stripeclient
