package cli

import (
	"fmt"
	"io"
	"strings"

	"order-ledger/internal/app"
	"order-ledger/internal/core"
)

// PrintOrders writes the order table with a totals footer.
func PrintOrders(w io.Writer, result *app.OrderListResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 100))
	fmt.Fprintf(w, "  %-16s %-4s %-10s %-20s %10s %10s %12s %-10s %-9s\n",
		"ORDER", "KIND", "DATE", "COUNTERPART", "QTY", "REMAINING", "BALANCE", "FULFIL", "PAYMENT")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	if len(result.Orders) == 0 {
		fmt.Fprintln(w, "  No orders found.")
		fmt.Fprintln(w, strings.Repeat("=", 100))
		return
	}
	for _, o := range result.Orders {
		fmt.Fprintf(w, "  %-16s %-4s %-10s %-20s %10s %10s %12s %-10s %-9s\n",
			o.ID, kindLabel(o.Kind), o.Date, truncate(o.Counterpart(), 20),
			o.TotalQuantity.String(), o.RemainingQuantity.String(), o.BalanceDue.StringFixed(2),
			o.FulfillmentStatus, o.PaymentStatus)
	}
	t := result.Totals
	fmt.Fprintln(w, strings.Repeat("-", 100))
	fmt.Fprintf(w, "  %-53s %10s %10s %12s\n",
		fmt.Sprintf("TOTAL (%d orders)", t.Orders), t.TotalQuantity.String(), t.RemainingQuantity.String(), t.BalanceDue.StringFixed(2))
	fmt.Fprintf(w, "  Value %s  Paid %s  Dispatched %s\n",
		t.TotalValue.StringFixed(2), t.PaidAmount.StringFixed(2), t.DispatchedQuantity.String())
	fmt.Fprintln(w, strings.Repeat("=", 100))
}

// PrintOrder writes one order with its items, dispatches and payments.
func PrintOrder(w io.Writer, o *core.OrderView) {
	party := "Customer"
	if o.Kind == core.OrderKindPurchase {
		party = "Supplier"
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 62))
	fmt.Fprintf(w, "  Order:       %s (%s)\n", o.ID, o.Kind)
	fmt.Fprintf(w, "  %-12s %s\n", party+":", o.Counterpart())
	fmt.Fprintf(w, "  Date:        %s\n", o.Date)
	fmt.Fprintf(w, "  Fulfilment:  %s\n", o.FulfillmentStatus)
	fmt.Fprintf(w, "  Payment:     %s\n", o.PaymentStatus)
	if o.Notes != "" {
		fmt.Fprintf(w, "  Notes:       %s\n", o.Notes)
	}
	fmt.Fprintln(w, strings.Repeat("-", 62))
	fmt.Fprintf(w, "  %-20s %8s %-6s %10s %12s\n", "ITEM", "QTY", "UNIT", "PRICE+COMM", "VALUE")
	for _, it := range o.Items {
		fmt.Fprintf(w, "  %-20s %8s %-6s %10s %12s\n",
			truncate(it.Name, 20), it.Quantity.String(), truncate(it.Unit, 6),
			it.UnitPrice.Add(it.CommissionPerUnit).StringFixed(2), it.LineValue().StringFixed(2))
	}
	fmt.Fprintln(w, strings.Repeat("-", 62))
	fmt.Fprintf(w, "  %-48s %12s\n", "TOTAL VALUE", o.TotalValue.StringFixed(2))
	fmt.Fprintf(w, "  %-48s %12s\n", "PAID", o.PaidAmount.StringFixed(2))
	fmt.Fprintf(w, "  %-48s %12s\n", "BALANCE DUE", o.BalanceDue.StringFixed(2))
	fmt.Fprintf(w, "  %-48s %12s\n", "DISPATCHED / ORDERED",
		o.DispatchedQuantity.String()+" / "+o.TotalQuantity.String())

	if len(o.Dispatches) > 0 {
		fmt.Fprintln(w, strings.Repeat("-", 62))
		fmt.Fprintf(w, "  DISPATCHES\n  %-10s %10s %10s  %s\n", "DATE", "QTY", "PRICE", "INVOICE")
		for _, d := range o.Dispatches {
			fmt.Fprintf(w, "  %-10s %10s %10s  %s\n",
				d.Date, d.Quantity.String(), d.DispatchUnitPrice.StringFixed(2), d.InvoiceNumber)
		}
	}
	if len(o.Payments) > 0 {
		fmt.Fprintln(w, strings.Repeat("-", 62))
		fmt.Fprintf(w, "  PAYMENTS\n  %-10s %12s %-14s %s\n", "DATE", "AMOUNT", "MODE", "REFERENCE")
		for _, p := range o.Payments {
			fmt.Fprintf(w, "  %-10s %12s %-14s %s\n",
				p.PaymentDate, p.Amount.StringFixed(2), p.Mode, p.ReferenceNumber)
		}
	}
	if o.IsOverpaid {
		fmt.Fprintln(w, "  WARNING: overpaid")
	}
	fmt.Fprintln(w, strings.Repeat("=", 62))
}

// PrintDashboard writes the sales and purchase summaries side by side.
func PrintDashboard(w io.Writer, d *app.DashboardResult) {
	title := "DASHBOARD"
	if d.Month != "" {
		title += " " + d.Month
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 62))
	fmt.Fprintf(w, "  %-58s\n", title)
	fmt.Fprintln(w, strings.Repeat("=", 62))
	fmt.Fprintf(w, "  %-22s %17s %17s\n", "", "SALES", "PURCHASES")
	fmt.Fprintln(w, strings.Repeat("-", 62))
	row := func(label, sales, purchases string) {
		fmt.Fprintf(w, "  %-22s %17s %17s\n", label, sales, purchases)
	}
	s, p := d.Sales, d.Purchases
	row("Orders", fmt.Sprint(s.Orders), fmt.Sprint(p.Orders))
	row("Quantity ordered", s.TotalQuantity.String(), p.TotalQuantity.String())
	row("Quantity dispatched", s.DispatchedQuantity.String(), p.DispatchedQuantity.String())
	row("Quantity remaining", s.RemainingQuantity.String(), p.RemainingQuantity.String())
	row("Value", s.TotalValue.StringFixed(2), p.TotalValue.StringFixed(2))
	row("Paid", s.PaidAmount.StringFixed(2), p.PaidAmount.StringFixed(2))
	row("Balance due", s.BalanceDue.StringFixed(2), p.BalanceDue.StringFixed(2))
	fmt.Fprintln(w, strings.Repeat("=", 62))
}

func kindLabel(k core.OrderKind) string {
	if k == core.OrderKindPurchase {
		return "P"
	}
	return "S"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}
