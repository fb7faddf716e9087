package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"order-ledger/internal/adapters/cli"
	"order-ledger/internal/app"
	"order-ledger/internal/core"
)

var errExit = errors.New("exit")

// Run starts the interactive shell. Slash commands reuse the one-shot CLI
// dispatcher; /new-order, /dispatch and /pay without arguments start a wizard.
func Run(ctx context.Context, svc app.ApplicationService, session *app.UserSession, reader *bufio.Reader, out io.Writer) {
	fmt.Fprintln(out, "Order Ledger")
	if session != nil {
		fmt.Fprintf(out, "Signed in as %s (%s)\n", session.Username, session.Role)
	} else {
		fmt.Fprintln(out, "Read-only session: set ORDER_CLI_USERNAME and ORDER_CLI_PASSWORD to record dispatches and payments.")
	}
	fmt.Fprintln(out, "Type /help for commands.")
	fmt.Fprintln(out, strings.Repeat("-", 70))

	capability := session.Capability()
	w := &wizard{ctx: ctx, svc: svc, capability: capability, reader: reader, out: out}

	dispatchSlash := func(input string) error {
		tokens := strings.Fields(strings.TrimPrefix(input, "/"))
		if len(tokens) == 0 {
			return nil
		}
		cmd := strings.ToLower(tokens[0])

		switch {
		case cmd == "exit" || cmd == "quit" || cmd == "q":
			return errExit
		case cmd == "help" || cmd == "h":
			printHelp(out)
			return nil
		case cmd == "new-order":
			return w.newOrder()
		case cmd == "dispatch" && len(tokens) == 2:
			return w.dispatch(tokens[1])
		case cmd == "pay" && len(tokens) == 2:
			return w.payment(tokens[1])
		}
		return cli.Run(ctx, svc, capability, tokens, reader, out)
	}

	for {
		fmt.Fprint(out, "\n> ")
		input, err := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			if err != nil {
				fmt.Fprintln(out, "Goodbye!")
				return
			}
			continue
		}
		if !strings.HasPrefix(input, "/") {
			input = "/" + input
		}
		if derr := dispatchSlash(input); derr != nil {
			if errors.Is(derr, errExit) {
				fmt.Fprintln(out, "Goodbye!")
				return
			}
			fmt.Fprintf(out, "Error: %v\n", describe(derr))
		}
		if err != nil {
			fmt.Fprintln(out, "Goodbye!")
			return
		}
	}
}

// describe adds the remaining quantity to over-dispatch rejections.
func describe(err error) string {
	var ode *core.OverDispatchError
	if errors.As(err, &ode) {
		return fmt.Sprintf("cannot dispatch %s, only %s remaining", ode.Requested.String(), ode.Remaining.String())
	}
	return err.Error()
}
