package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// maxOrderIDAttempts bounds the regenerate-and-retry loop on order id collisions.
const maxOrderIDAttempts = 5

// OrderRepository persists orders and their append-only ledgers.
// Every method is atomic. The Append* and SetCancelled methods lock the order row,
// hand the current graph to the supplied callback for validation, and commit
// the callback's result against that same snapshot.
type OrderRepository interface {
	// CreateOrder assigns an id and stores the order with its items.
	CreateOrder(ctx context.Context, order *Order) (*Order, error)
	// FetchOrder returns ErrNotFound when no order has the given id.
	FetchOrder(ctx context.Context, orderID string) (*OrderGraph, error)
	// FetchOrders returns every order of the given kind, newest first. An empty kind returns all.
	FetchOrders(ctx context.Context, kind OrderKind) ([]OrderGraph, error)
	AppendDispatch(ctx context.Context, orderID string, build func(OrderGraph) (*Dispatch, error)) (*OrderGraph, error)
	AppendPayment(ctx context.Context, orderID string, build func(OrderGraph) (*Payment, error)) (*OrderGraph, error)
	SetCancelled(ctx context.Context, orderID string, check func(OrderGraph) error) (*OrderGraph, error)
}

type pgOrderRepository struct {
	pool     *pgxpool.Pool
	idPrefix string
}

// NewOrderRepository constructs an OrderRepository backed by PostgreSQL.
func NewOrderRepository(pool *pgxpool.Pool, idPrefix string) OrderRepository {
	if idPrefix == "" {
		idPrefix = DefaultOrderIDPrefix
	}
	return &pgOrderRepository{pool: pool, idPrefix: idPrefix}
}

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, enabling shared query helpers.
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const orderColumns = `id, kind, to_char(order_date, 'YYYY-MM-DD'), customer, supplier,
	total_quantity, notes, cancelled, created_by, created_at`

func scanOrder(row pgx.Row, o *Order) error {
	return row.Scan(&o.ID, &o.Kind, &o.Date, &o.Customer, &o.Supplier,
		&o.TotalQuantity, &o.Notes, &o.Cancelled, &o.CreatedBy, &o.CreatedAt)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *pgOrderRepository) CreateOrder(ctx context.Context, order *Order) (*Order, error) {
	for attempt := 1; ; attempt++ {
		created, err := r.insertOrder(ctx, order, NewOrderID(r.idPrefix, order.Kind, time.Now()))
		if err == nil {
			return created, nil
		}
		if !isUniqueViolation(err) || attempt == maxOrderIDAttempts {
			return nil, err
		}
	}
}

func (r *pgOrderRepository) insertOrder(ctx context.Context, order *Order, id string) (*Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	created := *order
	created.ID = id
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (id, kind, order_date, customer, supplier, total_quantity, notes, created_by)
		VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, id, order.Kind, order.Date, order.Customer, order.Supplier, order.TotalQuantity, order.Notes, order.CreatedBy,
	).Scan(&created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	for i, item := range order.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, position, name, quantity, unit, unit_price, commission_per_unit)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, item.ID, id, i+1, item.Name, item.Quantity, item.Unit, item.UnitPrice, item.CommissionPerUnit)
		if err != nil {
			return nil, fmt.Errorf("failed to insert order item %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}
	return &created, nil
}

func (r *pgOrderRepository) FetchOrder(ctx context.Context, orderID string) (*OrderGraph, error) {
	return r.loadGraph(ctx, r.pool, orderID, false)
}

// loadGraph reads one order and its ledgers. With lock set the order row is
// held FOR UPDATE until q's transaction ends.
func (r *pgOrderRepository) loadGraph(ctx context.Context, q pgxQuerier, orderID string, lock bool) (*OrderGraph, error) {
	sql := "SELECT " + orderColumns + " FROM orders WHERE id = $1"
	if lock {
		sql += " FOR UPDATE"
	}

	g := &OrderGraph{}
	if err := scanOrder(q.QueryRow(ctx, sql, orderID), &g.Order); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch order %s: %w", orderID, err)
	}

	ids := []string{orderID}
	items, err := fetchItems(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	dispatches, err := fetchDispatches(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	payments, err := fetchPayments(ctx, q, ids)
	if err != nil {
		return nil, err
	}

	g.Order.Items = items[orderID]
	g.Dispatches = dispatches[orderID]
	g.Payments = payments[orderID]
	return g, nil
}

func (r *pgOrderRepository) FetchOrders(ctx context.Context, kind OrderKind) ([]OrderGraph, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE ($1 = '' OR kind = $1)
		ORDER BY order_date DESC, created_at DESC
	`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var graphs []OrderGraph
	var ids []string
	for rows.Next() {
		var g OrderGraph
		if err := scanOrder(rows, &g.Order); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		graphs = append(graphs, g)
		ids = append(ids, g.Order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}
	if len(ids) == 0 {
		return graphs, nil
	}

	items, err := fetchItems(ctx, r.pool, ids)
	if err != nil {
		return nil, err
	}
	dispatches, err := fetchDispatches(ctx, r.pool, ids)
	if err != nil {
		return nil, err
	}
	payments, err := fetchPayments(ctx, r.pool, ids)
	if err != nil {
		return nil, err
	}
	for i := range graphs {
		id := graphs[i].Order.ID
		graphs[i].Order.Items = items[id]
		graphs[i].Dispatches = dispatches[id]
		graphs[i].Payments = payments[id]
	}
	return graphs, nil
}

func fetchItems(ctx context.Context, q pgxQuerier, orderIDs []string) (map[string][]OrderItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, order_id, name, quantity, unit, unit_price, commission_per_unit
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]OrderItem)
	for rows.Next() {
		var it OrderItem
		var orderID string
		if err := rows.Scan(&it.ID, &orderID, &it.Name, &it.Quantity, &it.Unit, &it.UnitPrice, &it.CommissionPerUnit); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		out[orderID] = append(out[orderID], it)
	}
	return out, rows.Err()
}

func fetchDispatches(ctx context.Context, q pgxQuerier, orderIDs []string) (map[string][]Dispatch, error) {
	rows, err := q.Query(ctx, `
		SELECT id, order_id, to_char(dispatch_date, 'YYYY-MM-DD'), quantity, dispatch_unit_price,
		       invoice_number, notes, created_at
		FROM dispatches
		WHERE order_id = ANY($1)
		ORDER BY dispatch_date, created_at
	`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query dispatches: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]Dispatch)
	for rows.Next() {
		var d Dispatch
		if err := rows.Scan(&d.ID, &d.OrderID, &d.Date, &d.Quantity, &d.DispatchUnitPrice,
			&d.InvoiceNumber, &d.Notes, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dispatch: %w", err)
		}
		out[d.OrderID] = append(out[d.OrderID], d)
	}
	return out, rows.Err()
}

func fetchPayments(ctx context.Context, q pgxQuerier, orderIDs []string) (map[string][]Payment, error) {
	rows, err := q.Query(ctx, `
		SELECT id, order_id, amount, to_char(payment_date, 'YYYY-MM-DD'), mode,
		       reference_number, notes, created_at
		FROM payments
		WHERE order_id = ANY($1)
		ORDER BY payment_date, created_at
	`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]Payment)
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.OrderID, &p.Amount, &p.PaymentDate, &p.Mode,
			&p.ReferenceNumber, &p.Notes, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		out[p.OrderID] = append(out[p.OrderID], p)
	}
	return out, rows.Err()
}

// mutate runs fn against a locked snapshot of the order and returns the graph
// as committed.
func (r *pgOrderRepository) mutate(ctx context.Context, orderID string, fn func(pgx.Tx, OrderGraph) error) (*OrderGraph, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	g, err := r.loadGraph(ctx, tx, orderID, true)
	if err != nil {
		return nil, err
	}
	if err := fn(tx, *g); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order %s: %w", orderID, err)
	}
	return r.FetchOrder(ctx, orderID)
}

func (r *pgOrderRepository) AppendDispatch(ctx context.Context, orderID string, build func(OrderGraph) (*Dispatch, error)) (*OrderGraph, error) {
	return r.mutate(ctx, orderID, func(tx pgx.Tx, g OrderGraph) error {
		d, err := build(g)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO dispatches (id, order_id, dispatch_date, quantity, dispatch_unit_price, invoice_number, notes)
			VALUES ($1, $2, $3::date, $4, $5, $6, $7)
		`, d.ID, orderID, d.Date, d.Quantity, d.DispatchUnitPrice, d.InvoiceNumber, d.Notes)
		if err != nil {
			return fmt.Errorf("failed to insert dispatch: %w", err)
		}
		return nil
	})
}

func (r *pgOrderRepository) AppendPayment(ctx context.Context, orderID string, build func(OrderGraph) (*Payment, error)) (*OrderGraph, error) {
	return r.mutate(ctx, orderID, func(tx pgx.Tx, g OrderGraph) error {
		p, err := build(g)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO payments (id, order_id, amount, payment_date, mode, reference_number, notes)
			VALUES ($1, $2, $3, $4::date, $5, $6, $7)
		`, p.ID, orderID, p.Amount, p.PaymentDate, p.Mode, p.ReferenceNumber, p.Notes)
		if err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}
		return nil
	})
}

func (r *pgOrderRepository) SetCancelled(ctx context.Context, orderID string, check func(OrderGraph) error) (*OrderGraph, error) {
	return r.mutate(ctx, orderID, func(tx pgx.Tx, g OrderGraph) error {
		if err := check(g); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, "UPDATE orders SET cancelled = true WHERE id = $1", orderID); err != nil {
			return fmt.Errorf("failed to cancel order %s: %w", orderID, err)
		}
		return nil
	})
}
