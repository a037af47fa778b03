package stripe_test

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

type publishedMessage struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
	err      error
}

func (p *fakePublisher) Publish(subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.messages = append(p.messages, publishedMessage{subject: subject, data: data})

	return p.err
}

func TestNATSEventPublisher(t *testing.T) {
	t.Parallel()

	publisher := &fakePublisher{}
	events := stripe.NewNATSEventPublisher(publisher, "", nil)

	chain := stripe.NewInterceptorChain()
	events.Attach(chain)

	ctx := context.Background()
	req := &stripe.Request{Method: http.MethodPost, Path: "/v1/customers", RequestID: "local-1"}

	require.NoError(t, chain.ExecuteResponseInterceptors(ctx, req, &stripe.Response{
		StatusCode: 200,
		Attempts:   2,
		Headers:    http.Header{"Request-Id": []string{"req_1"}},
	}))
	require.NoError(t, chain.ExecuteResponseInterceptors(ctx, req, &stripe.Response{
		StatusCode: 402,
		Attempts:   1,
		Error:      &stripe.APIError{HTTPStatusCode: 402, Type: stripe.ErrorTypeCard, Message: "declined"},
	}))

	require.Len(t, publisher.messages, 2)
	assert.Equal(t, "stripe.client.customers.succeeded", publisher.messages[0].subject)
	assert.Equal(t, "stripe.client.customers.failed", publisher.messages[1].subject)

	var event stripe.CallEvent

	require.NoError(t, json.Unmarshal(publisher.messages[0].data, &event))
	assert.Equal(t, "local-1", event.RequestID)
	assert.Equal(t, "req_1", event.ServerRequestID)
	assert.Equal(t, "customers", event.Resource)
	assert.Equal(t, 2, event.Attempts)
	assert.Empty(t, event.Error)

	require.NoError(t, json.Unmarshal(publisher.messages[1].data, &event))
	assert.Contains(t, event.Error, "declined")
}

func TestNATSEventPublisher_PublishFailureIsLogged(t *testing.T) {
	t.Parallel()

	publisher := &fakePublisher{err: errBackendDown}
	logger := &recordingLogger{}
	events := stripe.NewNATSEventPublisher(publisher, "payments.", logger)

	err := events.ResponseInterceptor()(context.Background(),
		&stripe.Request{Method: http.MethodGet, Path: "/v1/charges/ch_1"},
		&stripe.Response{StatusCode: 200, Attempts: 1})
	require.NoError(t, err)

	require.Len(t, publisher.messages, 1)
	assert.Equal(t, "payments.charges.succeeded", publisher.messages[0].subject)

	require.Len(t, logger.entries, 1)
	assert.Equal(t, "warn", logger.entries[0].level)
	assert.Equal(t, "payments.charges.succeeded", logger.entries[0].fields["subject"])
}
