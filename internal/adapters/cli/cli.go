package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"order-ledger/internal/app"
	"order-ledger/internal/core"

	"github.com/shopspring/decimal"
)

// ErrUsage is returned when a command is called with the wrong arguments.
var ErrUsage = errors.New("usage")

// Usage lists the one-shot commands.
const Usage = `Available commands:
  orders [sale|purchase]                  List orders with totals
  order <id>                              Show one order with its ledgers
  dashboard [YYYY-MM]                     Sales and purchase totals
  create                                  Create an order from JSON on stdin
  dispatch <id> <qty> [price]             Record a dispatch
  pay <id> <amount> <mode> [reference]    Record a payment (cash, cheque, bank_transfer, upi)
  cancel <id>                             Cancel an order (admin)`

// Run executes a one-shot CLI command. args[0] is the subcommand name.
// capability may be nil, in which case every write is rejected as unauthorized.
func Run(ctx context.Context, svc app.ApplicationService, capability *core.Capability, args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: no command given\n%s", ErrUsage, Usage)
	}
	cmd, args := strings.ToLower(args[0]), args[1:]

	switch cmd {
	case "orders", "ls":
		filter := core.OrderFilter{}
		if len(args) > 0 {
			filter.Kind = core.OrderKind(strings.ToLower(args[0]))
			if !filter.Kind.Valid() {
				return fmt.Errorf("%w: unknown order kind %q", ErrUsage, args[0])
			}
		}
		result, err := svc.ListOrders(ctx, filter)
		if err != nil {
			return err
		}
		PrintOrders(out, result)

	case "order", "show":
		if len(args) < 1 {
			return fmt.Errorf("%w: order <id>", ErrUsage)
		}
		result, err := svc.GetOrder(ctx, args[0])
		if err != nil {
			return err
		}
		PrintOrder(out, &result.Order)

	case "dashboard", "dash":
		filter := core.OrderFilter{}
		if len(args) > 0 {
			filter.Month = args[0]
		}
		result, err := svc.GetDashboard(ctx, filter)
		if err != nil {
			return err
		}
		PrintDashboard(out, result)

	case "create":
		var input core.OrderInput
		dec := json.NewDecoder(in)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&input); err != nil {
			return fmt.Errorf("invalid order JSON: %w", err)
		}
		result, err := svc.CreateOrder(ctx, app.CreateOrderRequest{Capability: capability, Input: input})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Order %s created.\n", result.Order.ID)
		PrintOrder(out, &result.Order)

	case "dispatch":
		if len(args) < 2 {
			return fmt.Errorf("%w: dispatch <id> <qty> [price]", ErrUsage)
		}
		qty, err := parseDecimal("quantity", args[1])
		if err != nil {
			return err
		}
		input := core.DispatchInput{Quantity: qty}
		if len(args) >= 3 {
			if input.DispatchUnitPrice, err = parseDecimal("price", args[2]); err != nil {
				return err
			}
		}
		result, err := svc.RecordDispatch(ctx, app.RecordDispatchRequest{Capability: capability, OrderID: args[0], Input: input})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Dispatched %s on %s. Remaining: %s (%s).\n",
			qty.String(), result.Order.ID, result.Order.RemainingQuantity.String(), result.Order.FulfillmentStatus)

	case "pay", "payment":
		if len(args) < 3 {
			return fmt.Errorf("%w: pay <id> <amount> <mode> [reference]", ErrUsage)
		}
		amount, err := parseDecimal("amount", args[1])
		if err != nil {
			return err
		}
		input := core.PaymentInput{Amount: amount, Mode: core.PaymentMode(strings.ToLower(args[2]))}
		if len(args) >= 4 {
			input.ReferenceNumber = args[3]
		}
		result, err := svc.RecordPayment(ctx, app.RecordPaymentRequest{Capability: capability, OrderID: args[0], Input: input})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Payment of %s recorded on %s. Balance due: %s (%s).\n",
			amount.StringFixed(2), result.Order.ID, result.Order.BalanceDue.StringFixed(2), result.Order.PaymentStatus)
		if result.Order.IsOverpaid {
			fmt.Fprintln(out, "WARNING: order is overpaid.")
		}

	case "cancel":
		if len(args) < 1 {
			return fmt.Errorf("%w: cancel <id>", ErrUsage)
		}
		result, err := svc.CancelOrder(ctx, app.CancelOrderRequest{Capability: capability, OrderID: args[0]})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Order %s CANCELLED.\n", result.Order.ID)

	case "help", "h":
		fmt.Fprintln(out, Usage)

	default:
		return fmt.Errorf("%w: unknown command %q\n%s", ErrUsage, cmd, Usage)
	}
	return nil
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s %q is not a number", core.ErrInvalidInput, field, s)
	}
	return d, nil
}

// IsWrite reports whether the command changes data and therefore needs a capability.
func IsWrite(cmd string) bool {
	switch strings.ToLower(cmd) {
	case "create", "dispatch", "pay", "payment", "cancel":
		return true
	}
	return false
}
