package stripetest

import (
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fivetwenty-io/stripe-client/internal/form"
	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

// Test sources understood by the charge handlers.
const (
	SourceVisa     = "tok_visa"
	SourceDeclined = "tok_chargeDeclined"
)

const minimumChargeAmount = 50

// AddCharge stores charge as if it had been created through the API. An
// empty ID is assigned.
func (s *Server) AddCharge(charge stripe.Charge) *stripe.Charge {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addChargeLocked(charge)
}

func (s *Server) addChargeLocked(charge stripe.Charge) *stripe.Charge {
	if charge.ID == "" {
		charge.ID = s.nextID("ch")
	}

	charge.Object = stripe.ObjectTypeCharge
	if charge.Created == 0 {
		charge.Created = time.Now().Unix()
	}

	stored := charge
	s.charges = append(s.charges, &stored)

	return &stored
}

func (s *Server) findChargeLocked(id string) *stripe.Charge {
	for _, charge := range s.charges {
		if charge.ID == id {
			return charge
		}
	}

	return nil
}

// renderCharge copies charge, expanding the customer when requested.
func (s *Server) renderChargeLocked(charge *stripe.Charge, expand []string) stripe.Charge {
	out := *charge

	if out.Customer != nil && slices.Contains(expand, "customer") {
		if _, customer := s.findCustomerLocked(out.Customer.ID()); customer != nil {
			expanded := stripe.ExpandableObject(*customer)
			out.Customer = &expanded
		}
	}

	return out
}

func (s *Server) createCharge(w http.ResponseWriter, r *http.Request) {
	var params stripe.ChargeParams

	err := decodeBody(r, &params)
	if err != nil {
		writeParamError(w, err)

		return
	}

	switch {
	case params.Amount == nil:
		writeError(w, http.StatusBadRequest, stripe.ErrorTypeInvalidRequest, stripe.ErrorCodeParameterMissing,
			"Missing required param: amount.", "amount")

		return
	case params.Currency == nil || *params.Currency == "":
		writeError(w, http.StatusBadRequest, stripe.ErrorTypeInvalidRequest, stripe.ErrorCodeParameterMissing,
			"Missing required param: currency.", "currency")

		return
	case *params.Amount < minimumChargeAmount:
		writeError(w, http.StatusBadRequest, stripe.ErrorTypeInvalidRequest, stripe.ErrorCodeAmountTooSmall,
			"Amount must be at least "+strconv.Itoa(minimumChargeAmount)+" cents.", "amount")

		return
	case deref(params.Source) == SourceDeclined:
		writeJSON(w, http.StatusPaymentRequired, stripe.ErrorResponse{Error: &stripe.APIError{
			Type:        stripe.ErrorTypeCard,
			Code:        stripe.ErrorCodeCardDeclined,
			DeclineCode: "generic_decline",
			Message:     "Your card was declined.",
		}})

		return
	}

	captured := params.Capture == nil || *params.Capture

	charge := stripe.Charge{
		Amount:      *params.Amount,
		Currency:    *params.Currency,
		Description: deref(params.Description),
		Metadata:    params.Metadata,
		Paid:        true,
		Captured:    captured,
		Status:      stripe.ChargeStatusSucceeded,
	}

	if captured {
		charge.AmountCaptured = charge.Amount
	}

	s.mu.Lock()

	if params.Customer != nil {
		if _, customer := s.findCustomerLocked(*params.Customer); customer == nil {
			s.mu.Unlock()
			writeError(w, http.StatusBadRequest, stripe.ErrorTypeInvalidRequest, stripe.ErrorCodeResourceMissing,
				"No such customer: '"+*params.Customer+"'", "customer")

			return
		}

		ref := stripe.ExpandableID[stripe.Customer](*params.Customer)
		charge.Customer = &ref
	}

	created := s.renderChargeLocked(s.addChargeLocked(charge), params.Expand)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, created)
}

func (s *Server) getCharge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var params stripe.ChargeRetrieveParams

	err := form.Decode(r.URL.Query(), &params)
	if err != nil {
		writeParamError(w, err)

		return
	}

	s.mu.Lock()
	charge := s.findChargeLocked(id)

	var found stripe.Charge
	if charge != nil {
		found = s.renderChargeLocked(charge, params.Expand)
	}
	s.mu.Unlock()

	if charge == nil {
		writeMissing(w, "charge", id)

		return
	}

	writeJSON(w, http.StatusOK, found)
}

func (s *Server) updateCharge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var params stripe.ChargeUpdateParams

	err := decodeBody(r, &params)
	if err != nil {
		writeParamError(w, err)

		return
	}

	s.mu.Lock()
	charge := s.findChargeLocked(id)

	var updated stripe.Charge
	if charge != nil {
		if params.Customer != nil {
			ref := stripe.ExpandableID[stripe.Customer](*params.Customer)
			charge.Customer = &ref
		}

		if params.Description != nil {
			charge.Description = *params.Description
		}

		mergeMetadata(&charge.Metadata, params.Metadata)
		updated = s.renderChargeLocked(charge, params.Expand)
	}
	s.mu.Unlock()

	if charge == nil {
		writeMissing(w, "charge", id)

		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) captureCharge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var params stripe.ChargeCaptureParams

	err := decodeBody(r, &params)
	if err != nil {
		writeParamError(w, err)

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	charge := s.findChargeLocked(id)
	if charge == nil {
		writeMissing(w, "charge", id)

		return
	}

	if charge.Captured {
		writeError(w, http.StatusBadRequest, stripe.ErrorTypeInvalidRequest, stripe.ErrorCodeChargeAlreadyCapture,
			"Charge "+id+" has already been captured.", "")

		return
	}

	amount := charge.Amount
	if params.Amount != nil {
		if *params.Amount > charge.Amount {
			writeError(w, http.StatusBadRequest, stripe.ErrorTypeInvalidRequest, "",
				"Amount to capture exceeds the authorized amount.", "amount")

			return
		}

		amount = *params.Amount
	}

	charge.Captured = true
	charge.AmountCaptured = amount
	charge.AmountRefunded = charge.Amount - amount

	writeJSON(w, http.StatusOK, s.renderChargeLocked(charge, params.Expand))
}

func (s *Server) listCharges(w http.ResponseWriter, r *http.Request) {
	var params stripe.ChargeListParams

	err := form.Decode(r.URL.Query(), &params)
	if err != nil {
		writeParamError(w, err)

		return
	}

	s.mu.Lock()
	matched := make([]stripe.Charge, 0, len(s.charges))

	for _, charge := range s.charges {
		if params.Customer != nil && (charge.Customer == nil || charge.Customer.ID() != *params.Customer) {
			continue
		}

		if !inRange(params.Created, charge.Created) {
			continue
		}

		matched = append(matched, s.renderChargeLocked(charge, params.Expand))
	}
	s.mu.Unlock()

	page, err := paginate(matched, &params.ListParams, r.URL.Path)
	if err != nil {
		writeMissing(w, "charge", params.Cursor.ID())

		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (s *Server) searchCharges(w http.ResponseWriter, r *http.Request) {
	var params stripe.ChargeSearchParams

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
	matched := make([]stripe.Charge, 0, len(s.charges))

	for _, charge := range s.charges {
		customer := ""
		if charge.Customer != nil {
			customer = charge.Customer.ID()
		}

		fields := map[string]string{
			"amount":   strconv.FormatInt(charge.Amount, 10),
			"currency": charge.Currency,
			"customer": customer,
			"status":   string(charge.Status),
		}

		if clauses.match(fields, charge.Metadata) {
			matched = append(matched, s.renderChargeLocked(charge, params.Expand))
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
