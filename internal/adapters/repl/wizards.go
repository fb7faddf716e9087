package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"order-ledger/internal/adapters/cli"
	"order-ledger/internal/app"
	"order-ledger/internal/core"

	"github.com/shopspring/decimal"
)

type wizard struct {
	ctx        context.Context
	svc        app.ApplicationService
	capability *core.Capability
	reader     *bufio.Reader
	out        io.Writer
	eof        bool
}

func (w *wizard) ask(prompt string) string {
	fmt.Fprint(w.out, prompt)
	raw, err := w.reader.ReadString('\n')
	if err != nil {
		w.eof = true
	}
	return strings.TrimSpace(raw)
}

// askDecimal re-prompts until the answer parses. A blank answer returns def.
func (w *wizard) askDecimal(prompt string, def decimal.Decimal) (decimal.Decimal, bool) {
	for i := 0; i < 3; i++ {
		raw := w.ask(prompt)
		if raw == "" {
			return def, true
		}
		if strings.EqualFold(raw, "cancel") {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(raw)
		if err == nil {
			return d, true
		}
		fmt.Fprintln(w.out, "  Not a number.")
	}
	return decimal.Zero, false
}

// newOrder runs an interactive order creation session.
func (w *wizard) newOrder() error {
	kind := core.OrderKind(strings.ToLower(w.ask("Kind (sale/purchase) [sale]: ")))
	if kind == "" {
		kind = core.OrderKindSale
	}
	if !kind.Valid() {
		fmt.Fprintln(w.out, "Unknown kind. Order not created.")
		return nil
	}

	input := core.OrderInput{Kind: kind}
	if kind == core.OrderKindSale {
		input.Customer = w.ask("Customer: ")
	} else {
		input.Supplier = w.ask("Supplier: ")
	}

	fmt.Fprintln(w.out, "Enter order lines. Type 'done' when finished, 'cancel' to abort.")
	fmt.Fprintln(w.out, "Format per line: <name> | <quantity> | <unit> | <unit-price> [| <commission-per-unit>]")
	fmt.Fprintln(w.out, "  Example: Basmati Rice | 100 | bags | 50 | 5")

	lineNum := 1
lines:
	for {
		raw := w.ask(fmt.Sprintf("  Line %d: ", lineNum))
		if raw == "" && w.eof {
			raw = "cancel"
		}
		switch strings.ToLower(raw) {
		case "cancel":
			fmt.Fprintln(w.out, "Order creation cancelled.")
			return nil
		case "done":
			break lines
		case "":
			continue
		}

		item, err := parseItemLine(raw)
		if err != nil {
			fmt.Fprintf(w.out, "  %v\n", err)
			continue
		}
		input.Items = append(input.Items, item)
		lineNum++
	}

	if len(input.Items) == 0 {
		fmt.Fprintln(w.out, "No lines entered. Order not created.")
		return nil
	}
	input.Date = w.ask("Order date (YYYY-MM-DD, leave blank for today): ")
	input.Notes = w.ask("Notes (optional): ")

	result, err := w.svc.CreateOrder(w.ctx, app.CreateOrderRequest{Capability: w.capability, Input: input})
	if err != nil {
		return err
	}
	fmt.Fprintf(w.out, "\nOrder %s created.\n", result.Order.ID)
	cli.PrintOrder(w.out, &result.Order)
	return nil
}

func parseItemLine(raw string) (core.OrderItemInput, error) {
	parts := strings.Split(raw, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 4 {
		return core.OrderItemInput{}, fmt.Errorf("invalid format, use: <name> | <quantity> | <unit> | <unit-price> [| <commission>]")
	}
	item := core.OrderItemInput{Name: parts[0], Unit: parts[2]}
	var err error
	if item.Quantity, err = decimal.NewFromString(parts[1]); err != nil {
		return item, fmt.Errorf("invalid quantity %q", parts[1])
	}
	if item.UnitPrice, err = decimal.NewFromString(parts[3]); err != nil {
		return item, fmt.Errorf("invalid unit price %q", parts[3])
	}
	if len(parts) >= 5 && parts[4] != "" {
		if item.CommissionPerUnit, err = decimal.NewFromString(parts[4]); err != nil {
			return item, fmt.Errorf("invalid commission %q", parts[4])
		}
	}
	return item, nil
}

// dispatch prompts for one dispatch after showing what is left to ship.
func (w *wizard) dispatch(orderID string) error {
	current, err := w.svc.GetOrder(w.ctx, orderID)
	if err != nil {
		return err
	}
	o := current.Order
	fmt.Fprintf(w.out, "Order %s: %s of %s remaining (%s).\n",
		o.ID, o.RemainingQuantity.String(), o.TotalQuantity.String(), o.FulfillmentStatus)

	qty, ok := w.askDecimal(fmt.Sprintf("Quantity [%s]: ", o.RemainingQuantity.String()), o.RemainingQuantity)
	if !ok {
		fmt.Fprintln(w.out, "Dispatch cancelled.")
		return nil
	}
	price, ok := w.askDecimal("Dispatch unit price [0]: ", decimal.Zero)
	if !ok {
		fmt.Fprintln(w.out, "Dispatch cancelled.")
		return nil
	}
	input := core.DispatchInput{
		Quantity:          qty,
		DispatchUnitPrice: price,
		InvoiceNumber:     w.ask("Invoice number (optional): "),
		Date:              w.ask("Date (YYYY-MM-DD, leave blank for today): "),
	}

	result, err := w.svc.RecordDispatch(w.ctx, app.RecordDispatchRequest{Capability: w.capability, OrderID: orderID, Input: input})
	if err != nil {
		return err
	}
	fmt.Fprintf(w.out, "Dispatch recorded. Remaining: %s (%s).\n", result.Order.RemainingQuantity.String(), result.Order.FulfillmentStatus)
	return nil
}

// payment prompts for one payment, defaulting the amount to the balance due.
func (w *wizard) payment(orderID string) error {
	current, err := w.svc.GetOrder(w.ctx, orderID)
	if err != nil {
		return err
	}
	o := current.Order
	fmt.Fprintf(w.out, "Order %s: balance due %s of %s (%s).\n",
		o.ID, o.BalanceDue.StringFixed(2), o.TotalValue.StringFixed(2), o.PaymentStatus)

	amount, ok := w.askDecimal(fmt.Sprintf("Amount [%s]: ", o.BalanceDue.StringFixed(2)), o.BalanceDue)
	if !ok {
		fmt.Fprintln(w.out, "Payment cancelled.")
		return nil
	}
	input := core.PaymentInput{
		Amount: amount,
		Mode:   core.PaymentMode(strings.ToLower(w.ask("Mode (cash/cheque/bank_transfer/upi) [cash]: "))),
	}
	if input.Mode != "" && input.Mode != core.PaymentModeCash {
		input.ReferenceNumber = w.ask("Reference number: ")
	}
	input.PaymentDate = w.ask("Date (YYYY-MM-DD, leave blank for today): ")

	result, err := w.svc.RecordPayment(w.ctx, app.RecordPaymentRequest{Capability: w.capability, OrderID: orderID, Input: input})
	if err != nil {
		return err
	}
	fmt.Fprintf(w.out, "Payment recorded. Balance due: %s (%s).\n", result.Order.BalanceDue.StringFixed(2), result.Order.PaymentStatus)
	if result.Order.IsOverpaid {
		fmt.Fprintln(w.out, "WARNING: order is overpaid.")
	}
	return nil
}
