// app is the terminal client: a one-shot command when arguments are given,
// otherwise an interactive shell.
//
// Usage:
//
//	go run ./cmd/app orders sale
//	go run ./cmd/app dispatch JIPLS2403150001 40
//	go run ./cmd/app
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"order-ledger/internal/adapters/cli"
	"order-ledger/internal/adapters/repl"
	"order-ledger/internal/app"
	"order-ledger/internal/config"
	"order-ledger/internal/core"
	"order-ledger/internal/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	orderService := core.NewOrderService(core.NewOrderRepository(pool, cfg.OrderIDPrefix))
	svc := app.NewAppService(orderService, core.NewUserService(pool), nil)

	args := os.Args[1:]
	interactive := len(args) == 0

	// Writes need a signed-in user. Reads work without one.
	var session *app.UserSession
	if cfg.CLIUsername != "" {
		session, err = svc.AuthenticateUser(ctx, cfg.CLIUsername, cfg.CLIPassword)
		if err != nil {
			log.Fatalf("Sign-in as %s failed: %v", cfg.CLIUsername, err)
		}
	} else if !interactive && cli.IsWrite(args[0]) {
		log.Fatalf("%s needs ORDER_CLI_USERNAME and ORDER_CLI_PASSWORD", args[0])
	}

	if interactive {
		repl.Run(ctx, svc, session, bufio.NewReader(os.Stdin), os.Stdout)
		return
	}

	if err := cli.Run(ctx, svc, session.Capability(), args, os.Stdin, os.Stdout); err != nil {
		var ode *core.OverDispatchError
		if errors.As(err, &ode) {
			fmt.Fprintf(os.Stderr, "Remaining quantity: %s\n", ode.Remaining.String())
		}
		log.Fatalf("%v", err)
	}
}
