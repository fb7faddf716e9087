package core

import "github.com/shopspring/decimal"

// QuantitySummary is the dispatch-side position of an order.
type QuantitySummary struct {
	Dispatched decimal.Decimal
	Remaining  decimal.Decimal
}

// ComputeQuantities sums the dispatch ledger against the fixed order quantity.
// The sum is order-independent. Remaining is floored at zero; a correct ledger
// never needs the floor because over-dispatch is rejected by RecordDispatch.
func ComputeQuantities(totalQuantity decimal.Decimal, dispatches []Dispatch) QuantitySummary {
	dispatched := decimal.Zero
	for _, d := range dispatches {
		dispatched = dispatched.Add(d.Quantity)
	}

	remaining := totalQuantity.Sub(dispatched)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return QuantitySummary{Dispatched: dispatched, Remaining: remaining}
}

// PaymentSummary is the money-side position of an order.
// BalanceDue is negative when the order has been overpaid.
type PaymentSummary struct {
	Paid       decimal.Decimal
	BalanceDue decimal.Decimal
	Status     PaymentStatus
}

// ComputePayment sums the payment ledger against the order value.
//
//	totalValue == 0      → completed (nothing is owed)
//	paid >= totalValue   → completed (exact and overpayment alike)
//	paid == 0            → pending
//	otherwise            → partial
func ComputePayment(totalValue decimal.Decimal, payments []Payment) PaymentSummary {
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}

	var status PaymentStatus
	switch {
	case totalValue.IsZero(), paid.GreaterThanOrEqual(totalValue):
		status = PaymentCompleted
	case paid.IsZero():
		status = PaymentPending
	default:
		status = PaymentPartial
	}

	return PaymentSummary{
		Paid:       paid,
		BalanceDue: totalValue.Sub(paid),
		Status:     status,
	}
}

// ComputeFulfillmentStatus classifies an order from its current remaining quantity.
// Cancellation overrides every quantity-derived state.
func ComputeFulfillmentStatus(remaining, total decimal.Decimal, cancelled bool) FulfillmentStatus {
	switch {
	case cancelled:
		return FulfillmentCancelled
	case remaining.Equal(total):
		return FulfillmentPending
	case remaining.IsZero():
		return FulfillmentCompleted
	default:
		return FulfillmentPartial
	}
}
