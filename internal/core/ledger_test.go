package core_test

import (
	"math/rand/v2"
	"testing"

	"order-ledger/internal/core"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dispatchesOf(qtys ...string) []core.Dispatch {
	out := make([]core.Dispatch, 0, len(qtys))
	for _, q := range qtys {
		out = append(out, core.Dispatch{Quantity: dec(q)})
	}
	return out
}

func paymentsOf(amounts ...string) []core.Payment {
	out := make([]core.Payment, 0, len(amounts))
	for _, a := range amounts {
		out = append(out, core.Payment{Amount: dec(a), Mode: core.PaymentModeCash})
	}
	return out
}

func TestComputeQuantities(t *testing.T) {
	tests := []struct {
		name       string
		total      string
		dispatches []core.Dispatch
		dispatched string
		remaining  string
	}{
		{"No dispatches", "100", nil, "0", "100"},
		{"Partial", "100", dispatchesOf("40"), "40", "60"},
		{"Complete", "100", dispatchesOf("40", "60"), "100", "0"},
		{"Fractional", "10.5", dispatchesOf("2.25", "3.25"), "5.5", "5"},
		{"Corrupt ledger floors at zero", "10", dispatchesOf("7", "7"), "14", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := core.ComputeQuantities(dec(tt.total), tt.dispatches)
			if !q.Dispatched.Equal(dec(tt.dispatched)) {
				t.Errorf("Expected dispatched %s, got %s", tt.dispatched, q.Dispatched)
			}
			if !q.Remaining.Equal(dec(tt.remaining)) {
				t.Errorf("Expected remaining %s, got %s", tt.remaining, q.Remaining)
			}
		})
	}
}

func TestComputeQuantities_OrderIndependent(t *testing.T) {
	ds := dispatchesOf("1.5", "20", "3.25", "0.25", "11")
	want := core.ComputeQuantities(dec("50"), ds)

	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 20; i++ {
		shuffled := append([]core.Dispatch(nil), ds...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got := core.ComputeQuantities(dec("50"), shuffled)
		if !got.Dispatched.Equal(want.Dispatched) || !got.Remaining.Equal(want.Remaining) {
			t.Fatalf("Expected %v, got %v for permutation %d", want, got, i)
		}
	}
}

func TestComputePayment(t *testing.T) {
	tests := []struct {
		name     string
		total    string
		payments []core.Payment
		paid     string
		balance  string
		status   core.PaymentStatus
	}{
		{"Nothing paid", "5500", nil, "0", "5500", core.PaymentPending},
		{"Partial", "5500", paymentsOf("2000"), "2000", "3500", core.PaymentPartial},
		{"Exact", "5500", paymentsOf("2000", "3500"), "5500", "0", core.PaymentCompleted},
		{"Overpaid", "5500", paymentsOf("6000"), "6000", "-500", core.PaymentCompleted},
		{"Zero-value order", "0", nil, "0", "0", core.PaymentCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := core.ComputePayment(dec(tt.total), tt.payments)
			if !p.Paid.Equal(dec(tt.paid)) {
				t.Errorf("Expected paid %s, got %s", tt.paid, p.Paid)
			}
			if !p.BalanceDue.Equal(dec(tt.balance)) {
				t.Errorf("Expected balance %s, got %s", tt.balance, p.BalanceDue)
			}
			if p.Status != tt.status {
				t.Errorf("Expected status %s, got %s", tt.status, p.Status)
			}
		})
	}
}

func TestComputeFulfillmentStatus(t *testing.T) {
	tests := []struct {
		name      string
		remaining string
		total     string
		cancelled bool
		want      core.FulfillmentStatus
	}{
		{"Untouched", "100", "100", false, core.FulfillmentPending},
		{"Partial", "60", "100", false, core.FulfillmentPartial},
		{"Complete", "0", "100", false, core.FulfillmentCompleted},
		{"Cancelled overrides pending", "100", "100", true, core.FulfillmentCancelled},
		{"Cancelled overrides partial", "60", "100", true, core.FulfillmentCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.ComputeFulfillmentStatus(dec(tt.remaining), dec(tt.total), tt.cancelled)
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}
