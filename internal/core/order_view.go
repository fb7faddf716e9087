package core

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// BuildOrderView derives every computed field of an order from its two ledgers.
// The input slices are not modified; the view carries sorted copies.
func BuildOrderView(order Order, dispatches []Dispatch, payments []Payment) OrderView {
	totalValue := order.TotalValue()
	q := ComputeQuantities(order.TotalQuantity, dispatches)
	p := ComputePayment(totalValue, payments)

	ds := slices.Clone(dispatches)
	slices.SortStableFunc(ds, func(a, b Dispatch) int {
		if c := strings.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	ps := slices.Clone(payments)
	slices.SortStableFunc(ps, func(a, b Payment) int {
		if c := strings.Compare(a.PaymentDate, b.PaymentDate); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	if ds == nil {
		ds = []Dispatch{}
	}
	if ps == nil {
		ps = []Payment{}
	}

	return OrderView{
		Order:              order,
		TotalValue:         totalValue,
		DispatchedQuantity: q.Dispatched,
		RemainingQuantity:  q.Remaining,
		PaidAmount:         p.Paid,
		BalanceDue:         p.BalanceDue,
		IsOverpaid:         p.Paid.GreaterThan(totalValue),
		FulfillmentStatus:  ComputeFulfillmentStatus(q.Remaining, order.TotalQuantity, order.Cancelled),
		PaymentStatus:      p.Status,
		Dispatches:         ds,
		Payments:           ps,
	}
}

// BuildGraphView is BuildOrderView over a persisted OrderGraph.
func BuildGraphView(g OrderGraph) OrderView {
	return BuildOrderView(g.Order, g.Dispatches, g.Payments)
}

// OrderFilter selects order views for lists, exports and dashboard totals.
// Zero-valued fields match everything. String matches are case-insensitive substrings.
type OrderFilter struct {
	Kind            OrderKind
	From            string // YYYY-MM-DD, inclusive
	To              string // YYYY-MM-DD, inclusive
	Month           string // YYYY-MM
	Counterpart     string
	Customer        string
	Supplier        string
	OrderID         string
	Query           string
	Statuses        []FulfillmentStatus
	PaymentStatuses []PaymentStatus
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// Matches reports whether v satisfies every criterion set on f.
// Dates are compared as YYYY-MM-DD strings.
func (f OrderFilter) Matches(v OrderView) bool {
	if f.Kind != "" && v.Kind != f.Kind {
		return false
	}
	if f.From != "" && v.Date < f.From {
		return false
	}
	if f.To != "" && v.Date > f.To {
		return false
	}
	if f.Month != "" && !strings.HasPrefix(v.Date, f.Month+"-") {
		return false
	}
	if f.Counterpart != "" && !containsFold(v.Customer, f.Counterpart) && !containsFold(v.Supplier, f.Counterpart) {
		return false
	}
	if f.Customer != "" && !containsFold(v.Customer, f.Customer) {
		return false
	}
	if f.Supplier != "" && !containsFold(v.Supplier, f.Supplier) {
		return false
	}
	if f.OrderID != "" && !containsFold(v.ID, f.OrderID) {
		return false
	}
	if f.Query != "" && !containsFold(v.ID, f.Query) && !containsFold(v.Customer, f.Query) && !containsFold(v.Supplier, f.Query) {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, v.FulfillmentStatus) {
		return false
	}
	if len(f.PaymentStatuses) > 0 && !slices.Contains(f.PaymentStatuses, v.PaymentStatus) {
		return false
	}
	return true
}

// Apply returns the views matching f, preserving their order.
func (f OrderFilter) Apply(views []OrderView) []OrderView {
	out := make([]OrderView, 0, len(views))
	for _, v := range views {
		if f.Matches(v) {
			out = append(out, v)
		}
	}
	return out
}

// AggregateFleet sums the derived fields of every view accepted by match.
// A nil match accepts every view.
func AggregateFleet(views []OrderView, match func(OrderView) bool) FleetTotals {
	t := FleetTotals{
		TotalQuantity:      decimal.Zero,
		DispatchedQuantity: decimal.Zero,
		RemainingQuantity:  decimal.Zero,
		TotalValue:         decimal.Zero,
		PaidAmount:         decimal.Zero,
		BalanceDue:         decimal.Zero,
	}
	for _, v := range views {
		if match != nil && !match(v) {
			continue
		}
		t.Orders++
		t.TotalQuantity = t.TotalQuantity.Add(v.TotalQuantity)
		t.DispatchedQuantity = t.DispatchedQuantity.Add(v.DispatchedQuantity)
		t.RemainingQuantity = t.RemainingQuantity.Add(v.RemainingQuantity)
		t.TotalValue = t.TotalValue.Add(v.TotalValue)
		t.PaidAmount = t.PaidAmount.Add(v.PaidAmount)
		t.BalanceDue = t.BalanceDue.Add(v.BalanceDue)
	}
	return t
}

// BuildDashboard splits the fleet totals by kind. The filter's Kind is ignored.
func BuildDashboard(views []OrderView, f OrderFilter) Dashboard {
	f.Kind = ""
	return Dashboard{
		Sales: AggregateFleet(views, func(v OrderView) bool {
			return v.Kind == OrderKindSale && f.Matches(v)
		}),
		Purchases: AggregateFleet(views, func(v OrderView) bool {
			return v.Kind == OrderKindPurchase && f.Matches(v)
		}),
	}
}
