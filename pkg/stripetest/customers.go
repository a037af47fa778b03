package stripetest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fivetwenty-io/stripe-client/internal/form"
	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

// AddCustomer stores customer as if it had been created through the API.
// An empty ID is assigned.
func (s *Server) AddCustomer(customer stripe.Customer) *stripe.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addCustomerLocked(customer)
}

func (s *Server) addCustomerLocked(customer stripe.Customer) *stripe.Customer {
	if customer.ID == "" {
		customer.ID = s.nextID("cus")
	}

	customer.Object = stripe.ObjectTypeCustomer
	if customer.Created == 0 {
		customer.Created = time.Now().Unix()
	}

	stored := customer
	s.customers = append(s.customers, &stored)

	return &stored
}

func (s *Server) findCustomerLocked(id string) (int, *stripe.Customer) {
	for i, customer := range s.customers {
		if customer.ID == id {
			return i, customer
		}
	}

	return -1, nil
}

func (s *Server) createCustomer(w http.ResponseWriter, r *http.Request) {
	var params stripe.CustomerParams

	err := decodeBody(r, &params)
	if err != nil {
		writeParamError(w, err)

		return
	}

	customer := stripe.Customer{Metadata: params.Metadata}
	applyCustomerParams(&customer, &params)

	s.mu.Lock()
	created := *s.addCustomerLocked(customer)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, created)
}

func (s *Server) getCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	_, customer := s.findCustomerLocked(id)

	var found stripe.Customer
	if customer != nil {
		found = *customer
	}
	s.mu.Unlock()

	if customer == nil {
		writeMissing(w, "customer", id)

		return
	}

	writeJSON(w, http.StatusOK, found)
}

func (s *Server) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var params stripe.CustomerParams

	err := decodeBody(r, &params)
	if err != nil {
		writeParamError(w, err)

		return
	}

	s.mu.Lock()
	_, customer := s.findCustomerLocked(id)

	var updated stripe.Customer
	if customer != nil {
		applyCustomerParams(customer, &params)
		mergeMetadata(&customer.Metadata, params.Metadata)
		updated = *customer
	}
	s.mu.Unlock()

	if customer == nil {
		writeMissing(w, "customer", id)

		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	index, customer := s.findCustomerLocked(id)
	if customer != nil {
		s.customers = append(s.customers[:index], s.customers[index+1:]...)
	}
	s.mu.Unlock()

	if customer == nil {
		writeMissing(w, "customer", id)

		return
	}

	writeJSON(w, http.StatusOK, stripe.DeletedObject{ID: id, Object: stripe.ObjectTypeCustomer, Deleted: true})
}

func (s *Server) listCustomers(w http.ResponseWriter, r *http.Request) {
	var params stripe.CustomerListParams

	err := form.Decode(r.URL.Query(), &params)
	if err != nil {
		writeParamError(w, err)

		return
	}

	s.mu.Lock()
	matched := make([]stripe.Customer, 0, len(s.customers))

	for _, customer := range s.customers {
		if params.Email != nil && customer.Email != *params.Email {
			continue
		}

		if !inRange(params.Created, customer.Created) {
			continue
		}

		matched = append(matched, *customer)
	}
	s.mu.Unlock()

	page, err := paginate(matched, &params.ListParams, r.URL.Path)
	if err != nil {
		writeMissing(w, "customer", params.Cursor.ID())

		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (s *Server) searchCustomers(w http.ResponseWriter, r *http.Request) {
	var params stripe.CustomerSearchParams

	err := form.Decode(r.URL.Query(), &params)
	if err != nil {
		writeParamError(w, err)

		return
	}

	clauses, err := parseSearchQuery(params.Query)
	if err != nil {
		writeError(w, http.StatusBadRequest, stripe.ErrorTypeInvalidRequest, "", err.Error(), "query")

		return
	}

	s.mu.Lock()
	matched := make([]stripe.Customer, 0, len(s.customers))

	for _, customer := range s.customers {
		fields := map[string]string{
			"email": customer.Email,
			"name":  customer.Name,
			"phone": customer.Phone,
		}

		if clauses.match(fields, customer.Metadata) {
			matched = append(matched, *customer)
		}
	}
	s.mu.Unlock()

	result, err := searchPage(matched, &params.SearchParams, r.URL.Path)
	if err != nil {
		writeError(w, http.StatusBadRequest, stripe.ErrorTypeInvalidRequest, "", err.Error(), "page")

		return
	}

	writeJSON(w, http.StatusOK, result)
}

func applyCustomerParams(customer *stripe.Customer, params *stripe.CustomerParams) {
	if params.Address != nil {
		customer.Address = &stripe.Address{
			City:       deref(params.Address.City),
			Country:    deref(params.Address.Country),
			Line1:      deref(params.Address.Line1),
			Line2:      deref(params.Address.Line2),
			PostalCode: deref(params.Address.PostalCode),
			State:      deref(params.Address.State),
		}
	}

	if params.Balance != nil {
		customer.Balance = *params.Balance
	}

	if params.Description != nil {
		customer.Description = *params.Description
	}

	if params.Email != nil {
		customer.Email = *params.Email
	}

	if params.Name != nil {
		customer.Name = *params.Name
	}

	if params.Phone != nil {
		customer.Phone = *params.Phone
	}

	if params.TaxExempt != nil {
		customer.TaxExempt = params.TaxExempt.Value()
	}
}
