package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderKind distinguishes sales orders (customer side) from purchase orders (supplier side).
type OrderKind string

const (
	OrderKindSale     OrderKind = "sale"
	OrderKindPurchase OrderKind = "purchase"
)

// Valid reports whether k is a known order kind.
func (k OrderKind) Valid() bool {
	return k == OrderKindSale || k == OrderKindPurchase
}

// FulfillmentStatus is derived from the dispatch ledger and the cancellation flag.
// It is never stored.
type FulfillmentStatus string

const (
	FulfillmentPending   FulfillmentStatus = "pending"
	FulfillmentPartial   FulfillmentStatus = "partial"
	FulfillmentCompleted FulfillmentStatus = "completed"
	FulfillmentCancelled FulfillmentStatus = "cancelled"
)

// PaymentStatus is derived from the payment ledger against the order value.
// It is never stored.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPartial   PaymentStatus = "partial"
	PaymentCompleted PaymentStatus = "completed"
)

// PaymentMode is how a payment was made. Every mode except cash requires a reference number.
type PaymentMode string

const (
	PaymentModeCash         PaymentMode = "cash"
	PaymentModeCheque       PaymentMode = "cheque"
	PaymentModeBankTransfer PaymentMode = "bank_transfer"
	PaymentModeUPI          PaymentMode = "upi"
)

// Valid reports whether m is a known payment mode.
func (m PaymentMode) Valid() bool {
	switch m {
	case PaymentModeCash, PaymentModeCheque, PaymentModeBankTransfer, PaymentModeUPI:
		return true
	}
	return false
}

// OrderItem is a single line on an order. Items are immutable once the order exists.
type OrderItem struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Quantity          decimal.Decimal `json:"quantity"`
	Unit              string          `json:"unit"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	CommissionPerUnit decimal.Decimal `json:"commission_per_unit"`
}

// LineValue is (unit price + commission per unit) × quantity.
func (i OrderItem) LineValue() decimal.Decimal {
	return i.UnitPrice.Add(i.CommissionPerUnit).Mul(i.Quantity)
}

// Order is a sale or purchase order header together with its items.
// Exactly one of Customer or Supplier is set, selected by Kind.
// TotalQuantity is fixed when the order is created and is the baseline
// every dispatch is measured against.
type Order struct {
	ID            string          `json:"id"`
	Kind          OrderKind       `json:"kind"`
	Date          string          `json:"date"` // YYYY-MM-DD
	Customer      string          `json:"customer,omitempty"`
	Supplier      string          `json:"supplier,omitempty"`
	Items         []OrderItem     `json:"items"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	Notes         string          `json:"notes,omitempty"`
	Cancelled     bool            `json:"cancelled"`
	CreatedBy     int             `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Counterpart returns the customer for sales and the supplier for purchases.
func (o Order) Counterpart() string {
	if o.Kind == OrderKindPurchase {
		return o.Supplier
	}
	return o.Customer
}

// TotalValue is the sum of all item line values.
func (o Order) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineValue())
	}
	return total
}

// Dispatch is one shipment against an order's quantity. Append-only.
type Dispatch struct {
	ID                string          `json:"id"`
	OrderID           string          `json:"order_id"`
	Date              string          `json:"date"` // YYYY-MM-DD
	Quantity          decimal.Decimal `json:"quantity"`
	DispatchUnitPrice decimal.Decimal `json:"dispatch_unit_price"`
	InvoiceNumber     string          `json:"invoice_number,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// Payment is one money transfer against an order's value. Append-only.
type Payment struct {
	ID              string          `json:"id"`
	OrderID         string          `json:"order_id"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentDate     string          `json:"payment_date"` // YYYY-MM-DD
	Mode            PaymentMode     `json:"mode"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// OrderItemInput holds the fields required to create an order line.
type OrderItemInput struct {
	Name              string          `json:"name" jsonschema:"minLength=1" jsonschema_description:"Item name"`
	Quantity          decimal.Decimal `json:"quantity" jsonschema_description:"Ordered quantity, greater than zero"`
	Unit              string          `json:"unit" jsonschema_description:"Unit of measure, e.g. kg, bags, units"`
	UnitPrice         decimal.Decimal `json:"unit_price" jsonschema_description:"Price per unit, zero or more"`
	CommissionPerUnit decimal.Decimal `json:"commission_per_unit" jsonschema_description:"Commission per unit, zero or more"`
}

// OrderInput is a request to create an order. There is no status field:
// both statuses are always derived.
type OrderInput struct {
	Kind     OrderKind        `json:"kind" jsonschema:"enum=sale,enum=purchase" jsonschema_description:"sale or purchase"`
	Date     string           `json:"date,omitempty" jsonschema:"format=date" jsonschema_description:"Order date (YYYY-MM-DD); defaults to today"`
	Customer string           `json:"customer,omitempty" jsonschema_description:"Customer name, required for sales"`
	Supplier string           `json:"supplier,omitempty" jsonschema_description:"Supplier name, required for purchases"`
	Items    []OrderItemInput `json:"items" jsonschema:"minItems=1"`
	Notes    string           `json:"notes,omitempty"`
}

// DispatchInput is a candidate dispatch submitted by a user.
type DispatchInput struct {
	Date              string          `json:"date,omitempty" jsonschema:"format=date" jsonschema_description:"Dispatch date (YYYY-MM-DD); defaults to today"`
	Quantity          decimal.Decimal `json:"quantity" jsonschema_description:"Quantity dispatched, greater than zero and at most the remaining quantity"`
	DispatchUnitPrice decimal.Decimal `json:"dispatch_unit_price" jsonschema_description:"Price per unit on this dispatch, zero or more"`
	InvoiceNumber     string          `json:"invoice_number,omitempty"`
	Notes             string          `json:"notes,omitempty"`
}

// PaymentInput is a candidate payment submitted by a user.
type PaymentInput struct {
	Amount          decimal.Decimal `json:"amount" jsonschema_description:"Amount paid, greater than zero"`
	PaymentDate     string          `json:"payment_date,omitempty" jsonschema:"format=date" jsonschema_description:"Payment date (YYYY-MM-DD); defaults to today"`
	Mode            PaymentMode     `json:"mode" jsonschema:"enum=cash,enum=cheque,enum=bank_transfer,enum=upi"`
	ReferenceNumber string          `json:"reference_number,omitempty" jsonschema_description:"Required for every mode except cash"`
	Notes           string          `json:"notes,omitempty"`
}

// OrderGraph is everything the persistence layer knows about one order.
type OrderGraph struct {
	Order      Order
	Dispatches []Dispatch
	Payments   []Payment
}

// OrderView is the single read model every surface renders. All derived
// fields are computed by BuildOrderView and never recomputed elsewhere.
type OrderView struct {
	Order
	TotalValue         decimal.Decimal   `json:"total_value"`
	DispatchedQuantity decimal.Decimal   `json:"dispatched_quantity"`
	RemainingQuantity  decimal.Decimal   `json:"remaining_quantity"`
	PaidAmount         decimal.Decimal   `json:"paid_amount"`
	BalanceDue         decimal.Decimal   `json:"balance_due"`
	IsOverpaid         bool              `json:"is_overpaid"`
	FulfillmentStatus  FulfillmentStatus `json:"fulfillment_status"`
	PaymentStatus      PaymentStatus     `json:"payment_status"`
	Dispatches         []Dispatch        `json:"dispatches"`
	Payments           []Payment         `json:"payments"`
}

// FleetTotals sums the derived fields of a set of order views.
type FleetTotals struct {
	Orders             int             `json:"orders"`
	TotalQuantity      decimal.Decimal `json:"total_quantity"`
	DispatchedQuantity decimal.Decimal `json:"dispatched_quantity"`
	RemainingQuantity  decimal.Decimal `json:"remaining_quantity"`
	TotalValue         decimal.Decimal `json:"total_value"`
	PaidAmount         decimal.Decimal `json:"paid_amount"`
	BalanceDue         decimal.Decimal `json:"balance_due"`
}

// Dashboard holds the summary totals shown on the home screen, split by order kind.
type Dashboard struct {
	Sales     FleetTotals `json:"sales"`
	Purchases FleetTotals `json:"purchases"`
}
