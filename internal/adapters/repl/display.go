package repl

import (
	"fmt"
	"io"
	"strings"
)

func printHelp(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "ORDER LEDGER COMMANDS")
	fmt.Fprintln(w, strings.Repeat("=", 62))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  ORDERS")
	fmt.Fprintln(w, "  /orders [sale|purchase]          List orders with totals")
	fmt.Fprintln(w, "  /order <id>                      Order detail with ledgers")
	fmt.Fprintln(w, "  /dashboard [YYYY-MM]             Sales and purchase totals")
	fmt.Fprintln(w, "  /new-order                       Create order (interactive)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  LEDGERS")
	fmt.Fprintln(w, "  /dispatch <id>                   Record dispatch (interactive)")
	fmt.Fprintln(w, "  /dispatch <id> <qty> [price]     Record dispatch")
	fmt.Fprintln(w, "  /pay <id>                        Record payment (interactive)")
	fmt.Fprintln(w, "  /pay <id> <amount> <mode> [ref]  Record payment")
	fmt.Fprintln(w, "  /cancel <id>                     Cancel order (admin)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  SESSION")
	fmt.Fprintln(w, "  /help                            Show this help")
	fmt.Fprintln(w, "  /exit                            Exit")
	fmt.Fprintln(w, strings.Repeat("=", 62))
}
