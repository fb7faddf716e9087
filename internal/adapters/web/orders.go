package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"order-ledger/internal/app"
	"order-ledger/internal/core"
)

// parseFilter builds an OrderFilter from list query parameters.
// status and payment_status may repeat or carry comma-separated values.
func parseFilter(q url.Values) (core.OrderFilter, error) {
	f := core.OrderFilter{
		Kind:        core.OrderKind(strings.ToLower(strings.TrimSpace(q.Get("kind")))),
		From:        strings.TrimSpace(q.Get("from")),
		To:          strings.TrimSpace(q.Get("to")),
		Month:       strings.TrimSpace(q.Get("month")),
		Counterpart: strings.TrimSpace(q.Get("counterpart")),
		Customer:    strings.TrimSpace(q.Get("customer")),
		Supplier:    strings.TrimSpace(q.Get("supplier")),
		OrderID:     strings.TrimSpace(q.Get("order_id")),
		Query:       strings.TrimSpace(q.Get("q")),
	}

	if f.Kind != "" && !f.Kind.Valid() {
		return f, fmt.Errorf("unknown kind %q", f.Kind)
	}
	for name, v := range map[string]string{"from": f.From, "to": f.To} {
		if v == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", v); err != nil {
			return f, fmt.Errorf("%s must be YYYY-MM-DD, got %q", name, v)
		}
	}
	if f.Month != "" {
		if _, err := time.Parse("2006-01", f.Month); err != nil {
			return f, fmt.Errorf("month must be YYYY-MM, got %q", f.Month)
		}
	}

	for _, s := range splitValues(q["status"]) {
		st := core.FulfillmentStatus(s)
		switch st {
		case core.FulfillmentPending, core.FulfillmentPartial, core.FulfillmentCompleted, core.FulfillmentCancelled:
			f.Statuses = append(f.Statuses, st)
		default:
			return f, fmt.Errorf("unknown status %q", s)
		}
	}
	for _, s := range splitValues(q["payment_status"]) {
		st := core.PaymentStatus(s)
		switch st {
		case core.PaymentPending, core.PaymentPartial, core.PaymentCompleted:
			f.PaymentStatuses = append(f.PaymentStatuses, st)
		default:
			return f, fmt.Errorf("unknown payment status %q", s)
		}
	}
	return f, nil
}

func splitValues(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, p := range strings.Split(v, ",") {
			if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// filterFromRequest writes a 400 and returns false when the query is malformed.
func filterFromRequest(w http.ResponseWriter, r *http.Request) (core.OrderFilter, bool) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err.Error(), "INVALID_INPUT", http.StatusBadRequest)
		return f, false
	}
	return f, true
}

// apiListOrders handles GET /api/orders.
func (h *Handler) apiListOrders(w http.ResponseWriter, r *http.Request) {
	f, ok := filterFromRequest(w, r)
	if !ok {
		return
	}
	result, err := h.svc.ListOrders(r.Context(), f)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if result.Orders == nil {
		result.Orders = []core.OrderView{}
	}
	writeJSON(w, result)
}

// apiGetOrder handles GET /api/orders/{id}.
func (h *Handler) apiGetOrder(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetOrder(r.Context(), orderID(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiCreateOrder handles POST /api/orders.
func (h *Handler) apiCreateOrder(w http.ResponseWriter, r *http.Request) {
	var in core.OrderInput
	if !decodeJSON(w, r, &in) {
		return
	}
	result, err := h.svc.CreateOrder(r.Context(), app.CreateOrderRequest{
		Capability: authFromContext(r.Context()).Capability(),
		Input:      in,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

// apiRecordDispatch handles POST /api/orders/{id}/dispatches.
func (h *Handler) apiRecordDispatch(w http.ResponseWriter, r *http.Request) {
	var in core.DispatchInput
	if !decodeJSON(w, r, &in) {
		return
	}
	result, err := h.svc.RecordDispatch(r.Context(), app.RecordDispatchRequest{
		Capability: authFromContext(r.Context()).Capability(),
		OrderID:    orderID(r),
		Input:      in,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

// apiRecordPayment handles POST /api/orders/{id}/payments.
func (h *Handler) apiRecordPayment(w http.ResponseWriter, r *http.Request) {
	var in core.PaymentInput
	if !decodeJSON(w, r, &in) {
		return
	}
	result, err := h.svc.RecordPayment(r.Context(), app.RecordPaymentRequest{
		Capability: authFromContext(r.Context()).Capability(),
		OrderID:    orderID(r),
		Input:      in,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

// apiCancelOrder handles POST /api/orders/{id}/cancel.
func (h *Handler) apiCancelOrder(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.CancelOrder(r.Context(), app.CancelOrderRequest{
		Capability: authFromContext(r.Context()).Capability(),
		OrderID:    orderID(r),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiDashboard handles GET /api/dashboard. Accepts the same query as the order list.
func (h *Handler) apiDashboard(w http.ResponseWriter, r *http.Request) {
	f, ok := filterFromRequest(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetDashboard(r.Context(), f)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}
