package app

import (
	"context"

	"order-ledger/internal/core"
)

// ApplicationService is the single interface all UI adapters (CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// ListOrders returns the orders matching filter with a totals footer.
	ListOrders(ctx context.Context, filter core.OrderFilter) (*OrderListResult, error)

	// GetOrder returns a single order view by id.
	GetOrder(ctx context.Context, orderID string) (*OrderResult, error)

	// CreateOrder creates a sale or purchase order.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error)

	// RecordDispatch appends a dispatch after checking it against the remaining quantity.
	RecordDispatch(ctx context.Context, req RecordDispatchRequest) (*OrderResult, error)

	// RecordPayment appends a payment unless the order is already fully paid.
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (*OrderResult, error)

	// CancelOrder marks an order cancelled. Admin only.
	CancelOrder(ctx context.Context, req CancelOrderRequest) (*OrderResult, error)

	// GetDashboard returns sales and purchase totals for the orders matching filter.
	GetDashboard(ctx context.Context, filter core.OrderFilter) (*DashboardResult, error)

	// AuthenticateUser verifies credentials and returns a session on success.
	AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error)

	// GetUser returns user profile by ID.
	GetUser(ctx context.Context, userID int) (*UserResult, error)
}

// Publisher receives the fresh view after every successful write.
type Publisher interface {
	PublishOrder(view core.OrderView)
}
