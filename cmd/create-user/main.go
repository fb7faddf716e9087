// create-user is a one-shot tool to add a sign-in account.
// Run it once after migrations to bootstrap the first admin.
//
// Usage: go run ./cmd/create-user -username admin -role admin -password '...'
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"order-ledger/internal/config"
	"order-ledger/internal/core"
	"order-ledger/internal/db"
)

func main() {
	username := flag.String("username", "", "login name")
	email := flag.String("email", "", "contact email (optional)")
	role := flag.String("role", core.RoleOperator, "admin, operator or viewer")
	password := flag.String("password", os.Getenv("ORDER_NEW_USER_PASSWORD"), "password, at least 8 characters (defaults to $ORDER_NEW_USER_PASSWORD)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	u, err := core.NewUserService(pool).CreateUser(ctx, *username, *email, *password, *role)
	if err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}
	log.Printf("Created user %s (id %d, role %s).", u.Username, u.ID, u.Role)
}
