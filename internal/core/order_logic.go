package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Decimal places stored for quantities and for money (NUMERIC(18,3) / NUMERIC(18,2)).
const (
	quantityPlaces = 3
	moneyPlaces    = 2
)

// fitsPlaces reports whether d has no significant digits beyond places.
func fitsPlaces(d decimal.Decimal, places int32) bool {
	return d.Truncate(places).Equal(d)
}

// Roles understood by Capability.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)

// Capability is the explicit write authorization passed into every mutating
// operation. A nil Capability means no authenticated user.
type Capability struct {
	UserID int
	Role   string
}

// CanWrite reports whether the holder may create orders and append ledger entries.
func (c *Capability) CanWrite() bool {
	return c != nil && c.UserID > 0 && (c.Role == RoleAdmin || c.Role == RoleOperator)
}

// CanCancel reports whether the holder may cancel orders.
func (c *Capability) CanCancel() bool {
	return c.CanWrite() && c.Role == RoleAdmin
}

func authorizeWrite(c *Capability) error {
	if c == nil || c.UserID <= 0 {
		return ErrUnauthorized
	}
	if !c.CanWrite() {
		return fmt.Errorf("%w: role %q is read-only", ErrForbidden, c.Role)
	}
	return nil
}

// normalizeDate trims s, defaults it to today, and checks the YYYY-MM-DD layout.
func normalizeDate(field, s string, now time.Time) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now.Format(dateLayout), nil
	}
	if _, err := time.Parse(dateLayout, s); err != nil {
		return "", invalidInput("%s must be YYYY-MM-DD, got %q", field, s)
	}
	return s, nil
}

// Normalize cleans up user input before validation.
func (in *OrderInput) Normalize() {
	in.Kind = OrderKind(strings.ToLower(strings.TrimSpace(string(in.Kind))))
	in.Date = strings.TrimSpace(in.Date)
	in.Customer = strings.TrimSpace(in.Customer)
	in.Supplier = strings.TrimSpace(in.Supplier)
	in.Notes = strings.TrimSpace(in.Notes)
	for i := range in.Items {
		in.Items[i].Name = strings.TrimSpace(in.Items[i].Name)
		in.Items[i].Unit = strings.TrimSpace(in.Items[i].Unit)
	}
}

// Validate enforces the order schema: a known kind, exactly the counterpart the
// kind calls for, and at least one item with positive quantity and non-negative prices.
func (in *OrderInput) Validate() error {
	if !in.Kind.Valid() {
		return invalidInput("kind must be %q or %q, got %q", OrderKindSale, OrderKindPurchase, in.Kind)
	}

	switch in.Kind {
	case OrderKindSale:
		if in.Customer == "" {
			return invalidInput("customer is required for a sale order")
		}
		if in.Supplier != "" {
			return invalidInput("a sale order cannot name a supplier")
		}
	case OrderKindPurchase:
		if in.Supplier == "" {
			return invalidInput("supplier is required for a purchase order")
		}
		if in.Customer != "" {
			return invalidInput("a purchase order cannot name a customer")
		}
	}

	if len(in.Items) == 0 {
		return invalidInput("order must have at least one item")
	}
	for i, item := range in.Items {
		if item.Name == "" {
			return invalidInput("item %d: name is required", i+1)
		}
		if !item.Quantity.IsPositive() {
			return fmt.Errorf("item %d: %w", i+1, ErrInvalidQuantity)
		}
		if !fitsPlaces(item.Quantity, quantityPlaces) {
			return fmt.Errorf("item %d: at most %d decimal places: %w", i+1, quantityPlaces, ErrInvalidQuantity)
		}
		if item.UnitPrice.IsNegative() {
			return invalidInput("item %d: unit price must not be negative", i+1)
		}
		if !fitsPlaces(item.UnitPrice, moneyPlaces) {
			return invalidInput("item %d: unit price allows at most %d decimal places", i+1, moneyPlaces)
		}
		if item.CommissionPerUnit.IsNegative() {
			return invalidInput("item %d: commission must not be negative", i+1)
		}
		if !fitsPlaces(item.CommissionPerUnit, moneyPlaces) {
			return invalidInput("item %d: commission allows at most %d decimal places", i+1, moneyPlaces)
		}
	}
	return nil
}

// NewOrder validates input and builds the order header the repository will persist.
// The ID and CreatedAt are assigned by the repository.
func NewOrder(c *Capability, input OrderInput) (*Order, error) {
	if err := authorizeWrite(c); err != nil {
		return nil, err
	}

	input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	date, err := normalizeDate("date", input.Date, time.Now())
	if err != nil {
		return nil, err
	}

	order := &Order{
		Kind:          input.Kind,
		Date:          date,
		Customer:      input.Customer,
		Supplier:      input.Supplier,
		Notes:         input.Notes,
		TotalQuantity: decimal.Zero,
		CreatedBy:     c.UserID,
	}
	for _, in := range input.Items {
		order.Items = append(order.Items, OrderItem{
			ID:                uuid.NewString(),
			Name:              in.Name,
			Quantity:          in.Quantity,
			Unit:              in.Unit,
			UnitPrice:         in.UnitPrice,
			CommissionPerUnit: in.CommissionPerUnit,
		})
		order.TotalQuantity = order.TotalQuantity.Add(in.Quantity)
	}
	return order, nil
}

// RecordDispatch validates a candidate dispatch against the current dispatch
// ledger and returns the entry to append. It never mutates its inputs; the
// caller persists the result and rebuilds the view.
func RecordDispatch(c *Capability, order Order, dispatches []Dispatch, candidate DispatchInput) (*Dispatch, error) {
	if err := authorizeWrite(c); err != nil {
		return nil, err
	}

	q := ComputeQuantities(order.TotalQuantity, dispatches)
	status := ComputeFulfillmentStatus(q.Remaining, order.TotalQuantity, order.Cancelled)
	if status == FulfillmentCompleted || status == FulfillmentCancelled {
		return nil, fmt.Errorf("order %s is %s: %w", order.ID, status, ErrOrderClosed)
	}

	if !candidate.Quantity.IsPositive() {
		return nil, ErrInvalidQuantity
	}
	if !fitsPlaces(candidate.Quantity, quantityPlaces) {
		return nil, fmt.Errorf("at most %d decimal places: %w", quantityPlaces, ErrInvalidQuantity)
	}
	if candidate.Quantity.GreaterThan(q.Remaining) {
		return nil, &OverDispatchError{Requested: candidate.Quantity, Remaining: q.Remaining}
	}
	if candidate.DispatchUnitPrice.IsNegative() {
		return nil, invalidInput("dispatch unit price must not be negative")
	}
	if !fitsPlaces(candidate.DispatchUnitPrice, moneyPlaces) {
		return nil, invalidInput("dispatch unit price allows at most %d decimal places", moneyPlaces)
	}

	date, err := normalizeDate("date", candidate.Date, time.Now())
	if err != nil {
		return nil, err
	}

	return &Dispatch{
		ID:                uuid.NewString(),
		OrderID:           order.ID,
		Date:              date,
		Quantity:          candidate.Quantity,
		DispatchUnitPrice: candidate.DispatchUnitPrice,
		InvoiceNumber:     strings.TrimSpace(candidate.InvoiceNumber),
		Notes:             strings.TrimSpace(candidate.Notes),
	}, nil
}

// RecordPayment validates a candidate payment against the current payment
// ledger and returns the entry to append. Overpayment is accepted.
func RecordPayment(c *Capability, order Order, payments []Payment, candidate PaymentInput) (*Payment, error) {
	if err := authorizeWrite(c); err != nil {
		return nil, err
	}

	p := ComputePayment(order.TotalValue(), payments)
	if p.Status == PaymentCompleted {
		return nil, fmt.Errorf("order %s: %w", order.ID, ErrOrderPaid)
	}

	if !candidate.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !fitsPlaces(candidate.Amount, moneyPlaces) {
		return nil, fmt.Errorf("at most %d decimal places: %w", moneyPlaces, ErrInvalidAmount)
	}

	mode := PaymentMode(strings.ToLower(strings.TrimSpace(string(candidate.Mode))))
	if mode == "" {
		mode = PaymentModeCash
	}
	if !mode.Valid() {
		return nil, invalidInput("unknown payment mode %q", candidate.Mode)
	}

	ref := strings.TrimSpace(candidate.ReferenceNumber)
	if mode != PaymentModeCash && ref == "" {
		return nil, fmt.Errorf("%s payment: %w", mode, ErrMissingReference)
	}

	date, err := normalizeDate("payment_date", candidate.PaymentDate, time.Now())
	if err != nil {
		return nil, err
	}

	return &Payment{
		ID:              uuid.NewString(),
		OrderID:         order.ID,
		Amount:          candidate.Amount,
		PaymentDate:     date,
		Mode:            mode,
		ReferenceNumber: ref,
		Notes:           strings.TrimSpace(candidate.Notes),
	}, nil
}

// CheckCancel reports whether the order may be cancelled: only admins may
// cancel, and a fully dispatched or already cancelled order stays as it is.
func CheckCancel(c *Capability, order Order, dispatches []Dispatch) error {
	if err := authorizeWrite(c); err != nil {
		return err
	}
	if !c.CanCancel() {
		return fmt.Errorf("%w: only %s users may cancel orders", ErrForbidden, RoleAdmin)
	}

	q := ComputeQuantities(order.TotalQuantity, dispatches)
	status := ComputeFulfillmentStatus(q.Remaining, order.TotalQuantity, order.Cancelled)
	if status == FulfillmentCompleted || status == FulfillmentCancelled {
		return fmt.Errorf("order %s is %s: %w", order.ID, status, ErrOrderClosed)
	}
	return nil
}
