package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/fivetwenty-io/stripe-client/internal/constants"
)

// Publisher is the subset of *nats.Conn used to publish call events.
type Publisher interface {
	Publish(subject string, data []byte) error
}

var _ Publisher = (*nats.Conn)(nil)

// CallEvent describes one completed logical call.
type CallEvent struct {
	RequestID       string    `json:"request_id"`
	ServerRequestID string    `json:"server_request_id,omitempty"`
	Method          string    `json:"method"`
	Path            string    `json:"path"`
	Resource        string    `json:"resource"`
	StatusCode      int       `json:"status_code,omitempty"`
	Attempts        int       `json:"attempts"`
	DurationMS      int64     `json:"duration_ms"`
	Error           string    `json:"error,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// NATSEventPublisher publishes a CallEvent for every completed call on
// "<prefix>.<resource>.succeeded" or "<prefix>.<resource>.failed".
type NATSEventPublisher struct {
	publisher     Publisher
	subjectPrefix string
	logger        Logger
}

// DefaultEventSubjectPrefix is used when no prefix is given.
const DefaultEventSubjectPrefix = "stripe.client"

// NewNATSEventPublisher creates a publisher. Publish failures are logged and
// never fail the call.
func NewNATSEventPublisher(publisher Publisher, subjectPrefix string, logger Logger) *NATSEventPublisher {
	if subjectPrefix == "" {
		subjectPrefix = DefaultEventSubjectPrefix
	}

	if logger == nil {
		logger = NoopLogger{}
	}

	return &NATSEventPublisher{
		publisher:     publisher,
		subjectPrefix: strings.TrimSuffix(subjectPrefix, "."),
		logger:        logger,
	}
}

// ConnectNATS dials a NATS server for event publishing.
func ConnectNATS(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name(constants.ClientName),
		nats.Timeout(constants.ShortHTTPTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	return conn, nil
}

// Attach installs the publisher on chain.
func (p *NATSEventPublisher) Attach(chain *InterceptorChain) {
	chain.AddResponseInterceptor(p.ResponseInterceptor())
}

// ResponseInterceptor publishes the call event.
func (p *NATSEventPublisher) ResponseInterceptor() ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		event := CallEvent{
			RequestID:  req.RequestID,
			Method:     req.Method,
			Path:       req.Path,
			Resource:   ResourceName(req.Path),
			StatusCode: resp.StatusCode,
			Attempts:   resp.Attempts,
			DurationMS: resp.Duration.Milliseconds(),
			Timestamp:  time.Now().UTC(),
		}

		if resp.Headers != nil {
			event.ServerRequestID = resp.Headers.Get(constants.HeaderRequestID)
		}

		outcome := "succeeded"
		if resp.Error != nil {
			outcome = "failed"
			event.Error = resp.Error.Error()
		}

		data, err := json.Marshal(event)
		if err != nil {
			p.logger.Warn("Failed to encode call event", map[string]interface{}{"error": err.Error()})

			return nil
		}

		subject := p.subjectPrefix + "." + event.Resource + "." + outcome

		err = p.publisher.Publish(subject, data)
		if err != nil {
			p.logger.Warn("Failed to publish call event", map[string]interface{}{
				"subject": subject,
				"error":   err.Error(),
			})
		}

		return nil
	}
}
