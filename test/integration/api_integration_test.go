//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
	"github.com/fivetwenty-io/stripe-client/pkg/stripeclient"
)

// APIIntegrationTestSuite exercises the client against the test-mode API.
type APIIntegrationTestSuite struct {
	suite.Suite

	client    stripe.Client
	ctx       context.Context
	cancel    context.CancelFunc
	customers []string
}

// SetupSuite initializes the test environment.
func (suite *APIIntegrationTestSuite) SetupSuite() {
	config := LoadTestConfig()
	config.SkipIfMissingKey(suite.T())

	client, err := stripeclient.New(&stripe.Config{
		SecretKey: config.SecretKey,
		BaseURL:   config.BaseURL,
		AppInfo:   &stripe.AppInfo{Name: "stripe-client-integration"},
	})
	suite.Require().NoError(err)

	suite.client = client
	suite.ctx, suite.cancel = context.WithTimeout(context.Background(), 5*time.Minute)
}

// TearDownSuite removes the customers created by the suite.
func (suite *APIIntegrationTestSuite) TearDownSuite() {
	if suite.client == nil {
		return
	}

	for _, id := range suite.customers {
		_, err := suite.client.Customers().Delete(suite.ctx, id)
		if err != nil && !stripe.IsNotFound(err) {
			suite.T().Logf("Cleanup warning for customer %s: %v", id, err)
		}
	}

	suite.cancel()
}

func (suite *APIIntegrationTestSuite) createCustomer(name string) *stripe.Customer {
	params := &stripe.CustomerParams{
		Name:  stripe.String(name),
		Email: stripe.String(name + "@example.com"),
	}
	params.AddMetadata("suite", "integration")

	customer, err := suite.client.Customers().Create(suite.ctx, params)
	suite.Require().NoError(err)

	suite.customers = append(suite.customers, customer.ID)

	return customer
}

func (suite *APIIntegrationTestSuite) TestCustomerLifecycle() {
	name := GenerateTestName("lifecycle")
	created := suite.createCustomer(name)

	suite.Equal(stripe.ObjectTypeCustomer, created.Object)
	suite.Equal("integration", created.Metadata["suite"])

	updated, err := suite.client.Customers().Update(suite.ctx, created.ID, &stripe.CustomerParams{
		Description: stripe.String("updated by integration suite"),
	})
	suite.Require().NoError(err)
	suite.Equal("updated by integration suite", updated.Description)

	fetched, err := suite.client.Customers().Get(suite.ctx, created.ID, nil)
	suite.Require().NoError(err)
	suite.Equal(updated.Description, fetched.Description)

	deleted, err := suite.client.Customers().Delete(suite.ctx, created.ID)
	suite.Require().NoError(err)
	suite.True(deleted.Deleted)

	_, err = suite.client.Customers().Get(suite.ctx, "cus_does_not_exist", nil)
	suite.True(stripe.IsNotFound(err))
}

func (suite *APIIntegrationTestSuite) TestListAllPaginates() {
	prefix := GenerateTestName("paging")
	for i := range 3 {
		suite.createCustomer(prefix + "-" + string(rune('a'+i)))
	}

	since := time.Now().Add(-10 * time.Minute).Unix()
	params := &stripe.CustomerListParams{
		ListParams: stripe.ListParams{Limit: stripe.Int64(1)},
		Created:    &stripe.RangeQueryParams{GreaterThanOrEqual: stripe.Int64(since)},
	}

	seen := map[string]bool{}

	for customer, err := range suite.client.Customers().ListAll(suite.ctx, params).Seq() {
		suite.Require().NoError(err)
		suite.False(seen[customer.ID], "duplicate customer %s", customer.ID)
		seen[customer.ID] = true
	}

	suite.GreaterOrEqual(len(seen), 3)
}

func (suite *APIIntegrationTestSuite) TestChargeAuthorizeAndCapture() {
	customer := suite.createCustomer(GenerateTestName("charge"))

	charge, err := suite.client.Charges().Create(suite.ctx, &stripe.ChargeParams{
		Amount:   stripe.Int64(2000),
		Currency: stripe.String("usd"),
		Source:   stripe.String("tok_visa"),
		Capture:  stripe.Bool(false),
	})
	suite.Require().NoError(err)
	suite.False(charge.Captured)

	updated, err := suite.client.Charges().Update(suite.ctx, charge.ID, &stripe.ChargeUpdateParams{
		Description: stripe.String("integration " + customer.ID),
	})
	suite.Require().NoError(err)
	suite.Contains(updated.Description, customer.ID)

	captured, err := suite.client.Charges().Capture(suite.ctx, charge.ID, &stripe.ChargeCaptureParams{
		Amount: stripe.Int64(1500),
	})
	suite.Require().NoError(err)
	suite.True(captured.Captured)
	suite.Equal(int64(1500), captured.AmountCaptured)
}

func (suite *APIIntegrationTestSuite) TestDeclinedCard() {
	_, err := suite.client.Charges().Create(suite.ctx, &stripe.ChargeParams{
		Amount:   stripe.Int64(500),
		Currency: stripe.String("usd"),
		Source:   stripe.String("tok_chargeDeclined"),
	})
	suite.Require().Error(err)
	suite.True(stripe.IsCardError(err))
	suite.False(stripe.IsRetryable(err))
}

func TestAPIIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(APIIntegrationTestSuite))
}
