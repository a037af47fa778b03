// Package stripetest provides an in-memory fake of the payments API for
// tests. It serves customers and charges over the same form-encoded wire
// format as the real service, enforces idempotency keys and can inject
// failures ahead of the handlers.
package stripetest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fivetwenty-io/stripe-client/internal/constants"
	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

// DefaultSecretKey is accepted when NewServer is given an empty key.
const DefaultSecretKey = "sk_test_stripetest"

// Failure is a canned response served instead of the handler.
type Failure struct {
	Status int
	Body   string
	Header http.Header
}

// RecordedRequest is a request seen by the server, failures included.
type RecordedRequest struct {
	Method  string
	Path    string
	Query   string
	Body    string
	Headers http.Header
}

type storedResponse struct {
	fingerprint string
	status      int
	body        []byte
}

// Server is a fake API server. The zero value is not usable; call NewServer.
type Server struct {
	*httptest.Server

	secretKey string

	mu          sync.Mutex
	seq         int
	requestSeq  int
	customers   []*stripe.Customer
	charges     []*stripe.Charge
	idempotency map[string]storedResponse
	failures    map[string][]Failure
	requests    []RecordedRequest
}

// NewServer starts a fake server authenticating with secretKey.
func NewServer(secretKey string) *Server {
	if secretKey == "" {
		secretKey = DefaultSecretKey
	}

	s := &Server{
		secretKey:   secretKey,
		idempotency: make(map[string]storedResponse),
		failures:    make(map[string][]Failure),
	}

	s.Server = httptest.NewServer(s.routes())

	return s
}

// SecretKey returns the accepted secret key.
func (s *Server) SecretKey() string {
	return s.secretKey
}

func (s *Server) routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(s.record)
	router.Use(s.requestID)
	router.Use(s.inject)
	router.Use(s.authenticate)
	router.Use(s.idempotent)

	router.Route("/v1/customers", func(r chi.Router) {
		r.Post("/", s.createCustomer)
		r.Get("/", s.listCustomers)
		r.Get("/search", s.searchCustomers)
		r.Get("/{id}", s.getCustomer)
		r.Post("/{id}", s.updateCustomer)
		r.Delete("/{id}", s.deleteCustomer)
	})

	router.Route("/v1/charges", func(r chi.Router) {
		r.Post("/", s.createCharge)
		r.Get("/", s.listCharges)
		r.Get("/search", s.searchCharges)
		r.Get("/{id}", s.getCharge)
		r.Post("/{id}", s.updateCharge)
		r.Post("/{id}/capture", s.captureCharge)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, stripe.ErrorTypeInvalidRequest, "",
			fmt.Sprintf("Unrecognized request URL (%s: %s).", r.Method, r.URL.Path), "")
	})

	return router
}

// Fail queues failures for method and path. Each matching request consumes
// one failure until the queue is empty.
func (s *Server) Fail(method, path string, failures ...Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := method + " " + path
	s.failures[key] = append(s.failures[key], failures...)
}

// FailStatus queues count failures with status and a well-formed api_error
// body.
func (s *Server) FailStatus(method, path string, status, count int) {
	failures := make([]Failure, count)
	for i := range failures {
		failures[i] = Failure{
			Status: status,
			Body:   fmt.Sprintf(`{"error":{"type":"api_error","message":"injected %d"}}`, status),
		}
	}

	s.Fail(method, path, failures...)
}

// Requests returns the requests seen so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)

	return out
}

// RequestsTo returns the requests seen for method and path.
func (s *Server) RequestsTo(method, path string) []RecordedRequest {
	var out []RecordedRequest

	for _, req := range s.Requests() {
		if req.Method == method && req.Path == path {
			out = append(out, req)
		}
	}

	return out
}

// Reset clears stored objects, failures and recorded requests.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.customers = nil
	s.charges = nil
	s.idempotency = make(map[string]storedResponse)
	s.failures = make(map[string][]Failure)
	s.requests = nil
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:  r.Method,
			Path:    r.URL.Path,
			Query:   r.URL.RawQuery,
			Body:    string(body),
			Headers: r.Header.Clone(),
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requestSeq++
		id := fmt.Sprintf("req_%06d", s.requestSeq)
		s.mu.Unlock()

		w.Header().Set(constants.HeaderRequestID, id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		s.mu.Lock()
		queue := s.failures[key]

		var (
			failure Failure
			found   bool
		)

		if len(queue) > 0 {
			failure, found = queue[0], true
			s.failures[key] = queue[1:]
		}
		s.mu.Unlock()

		if !found {
			next.ServeHTTP(w, r)

			return
		}

		for name, values := range failure.Header {
			for _, value := range values {
				w.Header().Add(name, value)
			}
		}

		w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
		w.WriteHeader(failure.Status)
		_, _ = io.WriteString(w, failure.Body)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(constants.HeaderAuthorization) != "Bearer "+s.secretKey {
			writeError(w, http.StatusUnauthorized, stripe.ErrorTypeAuthentication, "",
				"Invalid API Key provided.", "")

			return
		}

		next.ServeHTTP(w, r)
	})
}

// idempotent replays the stored response for a reused key and rejects a
// reused key whose request differs.
func (s *Server) idempotent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(constants.HeaderIdempotencyKey)
		if key == "" || r.Method == http.MethodGet {
			next.ServeHTTP(w, r)

			return
		}

		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))
		fingerprint := r.Method + " " + r.URL.Path + "?" + string(body)

		s.mu.Lock()
		stored, seen := s.idempotency[key]
		s.mu.Unlock()

		if seen {
			if stored.fingerprint != fingerprint {
				writeError(w, http.StatusConflict, stripe.ErrorTypeIdempotency, "",
					"Keys for idempotent requests can only be used with the same parameters they were first used with.", "")

				return
			}

			w.Header().Set("Idempotent-Replayed", "true")
			w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
			w.WriteHeader(stored.status)
			_, _ = w.Write(stored.body)

			return
		}

		recorder := httptest.NewRecorder()
		next.ServeHTTP(recorder, r)

		if recorder.Code < http.StatusInternalServerError {
			s.mu.Lock()
			s.idempotency[key] = storedResponse{fingerprint: fingerprint, status: recorder.Code, body: recorder.Body.Bytes()}
			s.mu.Unlock()
		}

		for name, values := range recorder.Header() {
			w.Header()[name] = values
		}

		w.WriteHeader(recorder.Code)
		_, _ = w.Write(recorder.Body.Bytes())
	})
}

func (s *Server) nextID(prefix string) string {
	s.seq++

	return prefix + "_" + strconv.Itoa(s.seq)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errType stripe.ErrorType, code stripe.ErrorCode, message, param string) {
	writeJSON(w, status, stripe.ErrorResponse{Error: &stripe.APIError{
		Type:    errType,
		Code:    code,
		Message: message,
		Param:   param,
	}})
}

func writeMissing(w http.ResponseWriter, kind, id string) {
	writeError(w, http.StatusNotFound, stripe.ErrorTypeInvalidRequest, stripe.ErrorCodeResourceMissing,
		fmt.Sprintf("No such %s: '%s'", kind, id), "id")
}

func writeParamError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, stripe.ErrorTypeInvalidRequest, stripe.ErrorCodeParameterInvalid, err.Error(), "")
}
