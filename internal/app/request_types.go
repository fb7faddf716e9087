package app

import "order-ledger/internal/core"

// CreateOrderRequest is the input for creating a new order.
type CreateOrderRequest struct {
	Capability *core.Capability
	Input      core.OrderInput
}

// RecordDispatchRequest is the input for appending a dispatch.
type RecordDispatchRequest struct {
	Capability *core.Capability
	OrderID    string
	Input      core.DispatchInput
}

// RecordPaymentRequest is the input for appending a payment.
type RecordPaymentRequest struct {
	Capability *core.Capability
	OrderID    string
	Input      core.PaymentInput
}

// CancelOrderRequest is the input for cancelling an order.
type CancelOrderRequest struct {
	Capability *core.Capability
	OrderID    string
}
