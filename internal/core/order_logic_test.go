package core_test

import (
	"errors"
	"testing"

	"order-ledger/internal/core"
)

var (
	operator = &core.Capability{UserID: 1, Role: core.RoleOperator}
	admin    = &core.Capability{UserID: 2, Role: core.RoleAdmin}
	viewer   = &core.Capability{UserID: 3, Role: core.RoleViewer}
)

// sampleOrder is 100 units at 50 + 5 commission, worth 5500.
func sampleOrder() core.Order {
	return core.Order{
		ID:   "JIPLS2403150001",
		Kind: core.OrderKindSale,
		Date: "2024-03-15",
		Items: []core.OrderItem{
			{ID: "i1", Name: "Rice", Quantity: dec("100"), Unit: "bags", UnitPrice: dec("50"), CommissionPerUnit: dec("5")},
		},
		TotalQuantity: dec("100"),
		Customer:      "Acme Traders",
	}
}

func TestNewOrder(t *testing.T) {
	item := core.OrderItemInput{Name: "Rice", Quantity: dec("10"), UnitPrice: dec("50")}

	tests := []struct {
		name      string
		cap       *core.Capability
		input     core.OrderInput
		expectErr error
	}{
		{
			name:  "Sale with customer",
			cap:   operator,
			input: core.OrderInput{Kind: "sale", Customer: "Acme", Items: []core.OrderItemInput{item}},
		},
		{
			name:  "Purchase with supplier, mixed case kind",
			cap:   operator,
			input: core.OrderInput{Kind: " Purchase ", Supplier: "Mill", Items: []core.OrderItemInput{item}},
		},
		{
			name:      "No capability",
			cap:       nil,
			input:     core.OrderInput{Kind: "sale", Customer: "Acme", Items: []core.OrderItemInput{item}},
			expectErr: core.ErrUnauthorized,
		},
		{
			name:      "Viewer cannot write",
			cap:       viewer,
			input:     core.OrderInput{Kind: "sale", Customer: "Acme", Items: []core.OrderItemInput{item}},
			expectErr: core.ErrForbidden,
		},
		{
			name:      "Sale with supplier",
			cap:       operator,
			input:     core.OrderInput{Kind: "sale", Customer: "Acme", Supplier: "Mill", Items: []core.OrderItemInput{item}},
			expectErr: core.ErrInvalidInput,
		},
		{
			name:      "Purchase without supplier",
			cap:       operator,
			input:     core.OrderInput{Kind: "purchase", Items: []core.OrderItemInput{item}},
			expectErr: core.ErrInvalidInput,
		},
		{
			name:      "No items",
			cap:       operator,
			input:     core.OrderInput{Kind: "sale", Customer: "Acme"},
			expectErr: core.ErrInvalidInput,
		},
		{
			name: "Zero item quantity",
			cap:  operator,
			input: core.OrderInput{Kind: "sale", Customer: "Acme", Items: []core.OrderItemInput{
				{Name: "Rice", Quantity: dec("0"), UnitPrice: dec("50")},
			}},
			expectErr: core.ErrInvalidQuantity,
		},
		{
			name: "Negative commission",
			cap:  operator,
			input: core.OrderInput{Kind: "sale", Customer: "Acme", Items: []core.OrderItemInput{
				{Name: "Rice", Quantity: dec("1"), UnitPrice: dec("50"), CommissionPerUnit: dec("-1")},
			}},
			expectErr: core.ErrInvalidInput,
		},
		{
			name: "Quantity finer than stored",
			cap:  operator,
			input: core.OrderInput{Kind: "sale", Customer: "Acme", Items: []core.OrderItemInput{
				{Name: "Rice", Quantity: dec("0.0004"), UnitPrice: dec("50")},
			}},
			expectErr: core.ErrInvalidQuantity,
		},
		{
			name: "Unit price finer than stored",
			cap:  operator,
			input: core.OrderInput{Kind: "sale", Customer: "Acme", Items: []core.OrderItemInput{
				{Name: "Rice", Quantity: dec("1"), UnitPrice: dec("10.005")},
			}},
			expectErr: core.ErrInvalidInput,
		},
		{
			name: "Commission finer than stored",
			cap:  operator,
			input: core.OrderInput{Kind: "sale", Customer: "Acme", Items: []core.OrderItemInput{
				{Name: "Rice", Quantity: dec("1"), UnitPrice: dec("10"), CommissionPerUnit: dec("0.125")},
			}},
			expectErr: core.ErrInvalidInput,
		},
		{
			name:      "Bad date",
			cap:       operator,
			input:     core.OrderInput{Kind: "sale", Date: "15/03/2024", Customer: "Acme", Items: []core.OrderItemInput{item}},
			expectErr: core.ErrInvalidInput,
		},
		{
			name:      "Unknown kind",
			cap:       operator,
			input:     core.OrderInput{Kind: "lease", Customer: "Acme", Items: []core.OrderItemInput{item}},
			expectErr: core.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := core.NewOrder(tt.cap, tt.input)
			if tt.expectErr != nil {
				if !errors.Is(err, tt.expectErr) {
					t.Fatalf("Expected %v, got %v", tt.expectErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewOrder failed: %v", err)
			}
			if !order.TotalQuantity.Equal(dec("10")) {
				t.Errorf("Expected total quantity 10, got %s", order.TotalQuantity)
			}
			if order.Date == "" {
				t.Error("Expected date to default to today")
			}
			if order.CreatedBy != tt.cap.UserID {
				t.Errorf("Expected created_by %d, got %d", tt.cap.UserID, order.CreatedBy)
			}
		})
	}
}

func TestOrder_TotalValue(t *testing.T) {
	order := sampleOrder()
	if !order.TotalValue().Equal(dec("5500")) {
		t.Errorf("Expected 5500, got %s", order.TotalValue())
	}
}

// Scenario A: partial then complete fulfillment, then closed.
func TestRecordDispatch_PartialThenComplete(t *testing.T) {
	order := sampleOrder()
	var ledger []core.Dispatch

	d, err := core.RecordDispatch(operator, order, ledger, core.DispatchInput{Quantity: dec("40")})
	if err != nil {
		t.Fatalf("first dispatch failed: %v", err)
	}
	ledger = append(ledger, *d)
	v := core.BuildOrderView(order, ledger, nil)
	if !v.RemainingQuantity.Equal(dec("60")) || v.FulfillmentStatus != core.FulfillmentPartial {
		t.Fatalf("Expected remaining 60/partial, got %s/%s", v.RemainingQuantity, v.FulfillmentStatus)
	}

	d, err = core.RecordDispatch(operator, order, ledger, core.DispatchInput{Quantity: dec("60")})
	if err != nil {
		t.Fatalf("second dispatch failed: %v", err)
	}
	ledger = append(ledger, *d)
	v = core.BuildOrderView(order, ledger, nil)
	if !v.RemainingQuantity.IsZero() || v.FulfillmentStatus != core.FulfillmentCompleted {
		t.Fatalf("Expected remaining 0/completed, got %s/%s", v.RemainingQuantity, v.FulfillmentStatus)
	}

	_, err = core.RecordDispatch(operator, order, ledger, core.DispatchInput{Quantity: dec("1")})
	if !errors.Is(err, core.ErrOrderClosed) {
		t.Errorf("Expected ErrOrderClosed, got %v", err)
	}
}

// Scenario D: over-dispatch is rejected and reports the remaining quantity.
func TestRecordDispatch_OverDispatch(t *testing.T) {
	order := sampleOrder()
	ledger := dispatchesOf("40")

	_, err := core.RecordDispatch(operator, order, ledger, core.DispatchInput{Quantity: dec("61")})
	if !errors.Is(err, core.ErrOverDispatch) {
		t.Fatalf("Expected ErrOverDispatch, got %v", err)
	}
	var ode *core.OverDispatchError
	if !errors.As(err, &ode) {
		t.Fatalf("Expected *OverDispatchError, got %T", err)
	}
	if !ode.Remaining.Equal(dec("60")) || !ode.Requested.Equal(dec("61")) {
		t.Errorf("Expected requested 61 remaining 60, got %s/%s", ode.Requested, ode.Remaining)
	}
	if len(ledger) != 1 {
		t.Errorf("Expected ledger unchanged, got %d entries", len(ledger))
	}
}

func TestRecordDispatch_Rejections(t *testing.T) {
	cancelled := sampleOrder()
	cancelled.Cancelled = true

	tests := []struct {
		name      string
		cap       *core.Capability
		order     core.Order
		input     core.DispatchInput
		expectErr error
	}{
		{"No capability", nil, sampleOrder(), core.DispatchInput{Quantity: dec("1")}, core.ErrUnauthorized},
		{"Zero quantity", operator, sampleOrder(), core.DispatchInput{Quantity: dec("0")}, core.ErrInvalidQuantity},
		{"Negative quantity", operator, sampleOrder(), core.DispatchInput{Quantity: dec("-5")}, core.ErrInvalidQuantity},
		{"Cancelled order", operator, cancelled, core.DispatchInput{Quantity: dec("1")}, core.ErrOrderClosed},
		{"Negative price", operator, sampleOrder(), core.DispatchInput{Quantity: dec("1"), DispatchUnitPrice: dec("-1")}, core.ErrInvalidInput},
		{"Quantity rounds to zero", operator, sampleOrder(), core.DispatchInput{Quantity: dec("0.0004")}, core.ErrInvalidQuantity},
		{"Quantity beyond three places", operator, sampleOrder(), core.DispatchInput{Quantity: dec("1.2345")}, core.ErrInvalidQuantity},
		{"Price beyond two places", operator, sampleOrder(), core.DispatchInput{Quantity: dec("1"), DispatchUnitPrice: dec("2.505")}, core.ErrInvalidInput},
		{"Bad date", operator, sampleOrder(), core.DispatchInput{Quantity: dec("1"), Date: "2024-13-01"}, core.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := core.RecordDispatch(tt.cap, tt.order, nil, tt.input)
			if !errors.Is(err, tt.expectErr) {
				t.Errorf("Expected %v, got %v", tt.expectErr, err)
			}
		})
	}
}

// Scenario B: a full payment completes the order and blocks further payments.
func TestRecordPayment_FullPayment(t *testing.T) {
	order := sampleOrder()

	p, err := core.RecordPayment(operator, order, nil, core.PaymentInput{Amount: dec("5500"), Mode: core.PaymentModeCash})
	if err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}
	ledger := []core.Payment{*p}
	v := core.BuildOrderView(order, nil, ledger)
	if v.PaymentStatus != core.PaymentCompleted || !v.BalanceDue.IsZero() {
		t.Fatalf("Expected completed/0, got %s/%s", v.PaymentStatus, v.BalanceDue)
	}

	_, err = core.RecordPayment(operator, order, ledger, core.PaymentInput{Amount: dec("1"), Mode: core.PaymentModeCash})
	if !errors.Is(err, core.ErrOrderPaid) {
		t.Errorf("Expected ErrOrderPaid, got %v", err)
	}
}

// Scenario C: a partial payment leaves a balance.
func TestRecordPayment_Partial(t *testing.T) {
	order := sampleOrder()

	p, err := core.RecordPayment(operator, order, nil, core.PaymentInput{
		Amount: dec("2000"), Mode: core.PaymentModeCheque, ReferenceNumber: "CHQ-118",
	})
	if err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}
	v := core.BuildOrderView(order, nil, []core.Payment{*p})
	if v.PaymentStatus != core.PaymentPartial {
		t.Errorf("Expected partial, got %s", v.PaymentStatus)
	}
	if !v.BalanceDue.Equal(dec("3500")) {
		t.Errorf("Expected balance 3500, got %s", v.BalanceDue)
	}
}

func TestRecordPayment_Overpayment(t *testing.T) {
	order := sampleOrder()

	p, err := core.RecordPayment(operator, order, paymentsOf("5000"), core.PaymentInput{Amount: dec("1000")})
	if err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}
	if p.Mode != core.PaymentModeCash {
		t.Errorf("Expected empty mode to default to cash, got %s", p.Mode)
	}
	v := core.BuildOrderView(order, nil, append(paymentsOf("5000"), *p))
	if !v.IsOverpaid || !v.BalanceDue.Equal(dec("-500")) || v.PaymentStatus != core.PaymentCompleted {
		t.Errorf("Expected overpaid/-500/completed, got %v/%s/%s", v.IsOverpaid, v.BalanceDue, v.PaymentStatus)
	}
}

// Scenario E: non-cash payments need a reference.
func TestRecordPayment_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		cap       *core.Capability
		input     core.PaymentInput
		expectErr error
	}{
		{"No capability", nil, core.PaymentInput{Amount: dec("100")}, core.ErrUnauthorized},
		{"Viewer", viewer, core.PaymentInput{Amount: dec("100")}, core.ErrForbidden},
		{"Zero amount", operator, core.PaymentInput{Amount: dec("0")}, core.ErrInvalidAmount},
		{"Negative amount", operator, core.PaymentInput{Amount: dec("-1")}, core.ErrInvalidAmount},
		{"Amount rounds to zero", operator, core.PaymentInput{Amount: dec("0.004")}, core.ErrInvalidAmount},
		{"Amount beyond two places", operator, core.PaymentInput{Amount: dec("100.125")}, core.ErrInvalidAmount},
		{"UPI without reference", operator, core.PaymentInput{Amount: dec("100"), Mode: core.PaymentModeUPI}, core.ErrMissingReference},
		{"Bank transfer blank reference", operator, core.PaymentInput{Amount: dec("100"), Mode: core.PaymentModeBankTransfer, ReferenceNumber: "  "}, core.ErrMissingReference},
		{"Unknown mode", operator, core.PaymentInput{Amount: dec("100"), Mode: "barter"}, core.ErrInvalidInput},
		{"Bad date", operator, core.PaymentInput{Amount: dec("100"), PaymentDate: "yesterday"}, core.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := core.RecordPayment(tt.cap, sampleOrder(), nil, tt.input)
			if !errors.Is(err, tt.expectErr) {
				t.Errorf("Expected %v, got %v", tt.expectErr, err)
			}
		})
	}
}

func TestRecordPayment_ZeroValueOrderIsPaid(t *testing.T) {
	order := sampleOrder()
	order.Items[0].UnitPrice = dec("0")
	order.Items[0].CommissionPerUnit = dec("0")

	_, err := core.RecordPayment(operator, order, nil, core.PaymentInput{Amount: dec("1")})
	if !errors.Is(err, core.ErrOrderPaid) {
		t.Errorf("Expected ErrOrderPaid, got %v", err)
	}
}

func TestCheckCancel(t *testing.T) {
	tests := []struct {
		name       string
		cap        *core.Capability
		dispatches []core.Dispatch
		cancelled  bool
		expectErr  error
	}{
		{"Admin cancels pending order", admin, nil, false, nil},
		{"Admin cancels partial order", admin, dispatchesOf("30"), false, nil},
		{"Operator may not cancel", operator, nil, false, core.ErrForbidden},
		{"No capability", nil, nil, false, core.ErrUnauthorized},
		{"Completed order stays completed", admin, dispatchesOf("100"), false, core.ErrOrderClosed},
		{"Already cancelled", admin, nil, true, core.ErrOrderClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := sampleOrder()
			order.Cancelled = tt.cancelled
			err := core.CheckCancel(tt.cap, order, tt.dispatches)
			if tt.expectErr == nil {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.expectErr) {
				t.Errorf("Expected %v, got %v", tt.expectErr, err)
			}
		})
	}
}

func TestDecimalPlaces_TrailingZerosAccepted(t *testing.T) {
	order, err := core.NewOrder(operator, core.OrderInput{Kind: "sale", Customer: "Acme", Items: []core.OrderItemInput{
		{Name: "Rice", Quantity: dec("2.500"), UnitPrice: dec("10.50"), CommissionPerUnit: dec("0.250")},
	}})
	if err != nil {
		t.Fatalf("NewOrder failed: %v", err)
	}
	if !order.TotalValue().Equal(dec("26.875")) {
		t.Errorf("Expected total value 26.875, got %s", order.TotalValue())
	}

	if _, err := core.RecordDispatch(operator, sampleOrder(), nil, core.DispatchInput{Quantity: dec("1.125"), DispatchUnitPrice: dec("3.10")}); err != nil {
		t.Errorf("Expected three-place quantity to be accepted, got %v", err)
	}
	if _, err := core.RecordPayment(operator, sampleOrder(), nil, core.PaymentInput{Amount: dec("0.01")}); err != nil {
		t.Errorf("Expected one paisa to be accepted, got %v", err)
	}
}
