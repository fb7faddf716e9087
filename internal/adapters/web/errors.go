package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"order-ledger/internal/core"

	"github.com/shopspring/decimal"
)

type errorResponse struct {
	Error             string           `json:"error"`
	Code              string           `json:"code"`
	RequestID         string           `json:"request_id,omitempty"`
	RemainingQuantity *decimal.Decimal `json:"remaining_quantity,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorResponse(w, r, errorResponse{Error: message, Code: code}, status)
}

func writeErrorResponse(w http.ResponseWriter, r *http.Request, resp errorResponse, status int) {
	resp.RequestID = requestIDFromContext(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// domainErrors maps each core sentinel to its HTTP status and error code.
var domainErrors = []struct {
	err    error
	code   string
	status int
}{
	{core.ErrInvalidQuantity, "INVALID_QUANTITY", http.StatusBadRequest},
	{core.ErrInvalidAmount, "INVALID_AMOUNT", http.StatusBadRequest},
	{core.ErrMissingReference, "MISSING_REFERENCE", http.StatusBadRequest},
	{core.ErrInvalidInput, "INVALID_INPUT", http.StatusBadRequest},
	{core.ErrOverDispatch, "OVER_DISPATCH", http.StatusUnprocessableEntity},
	{core.ErrOrderClosed, "ORDER_CLOSED", http.StatusConflict},
	{core.ErrOrderPaid, "ORDER_PAID", http.StatusConflict},
	{core.ErrUnauthorized, "UNAUTHORIZED", http.StatusUnauthorized},
	{core.ErrForbidden, "FORBIDDEN", http.StatusForbidden},
	{core.ErrNotFound, "NOT_FOUND", http.StatusNotFound},
}

// writeDomainError translates a service error into the JSON error envelope.
// Unknown errors are logged and reported as 500 without leaking details.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, de := range domainErrors {
		if !errors.Is(err, de.err) {
			continue
		}
		resp := errorResponse{Error: err.Error(), Code: de.code}
		var ode *core.OverDispatchError
		if errors.As(err, &ode) {
			remaining := ode.Remaining
			resp.RemainingQuantity = &remaining
		}
		writeErrorResponse(w, r, resp, de.status)
		return
	}
	log.Printf("internal error: %v rid=%s", err, requestIDFromContext(r.Context()))
	writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
}
