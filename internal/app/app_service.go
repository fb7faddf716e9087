package app

import (
	"context"

	"order-ledger/internal/core"
)

type appService struct {
	orderService core.OrderService
	userService  core.UserService
	publisher    Publisher
}

// NewAppService constructs an appService that satisfies ApplicationService.
// publisher may be nil.
func NewAppService(orderService core.OrderService, userService core.UserService, publisher Publisher) ApplicationService {
	return &appService{
		orderService: orderService,
		userService:  userService,
		publisher:    publisher,
	}
}

func (s *appService) publish(v *core.OrderView) {
	if s.publisher != nil && v != nil {
		s.publisher.PublishOrder(*v)
	}
}

// ListOrders returns the orders matching filter with a totals footer.
func (s *appService) ListOrders(ctx context.Context, filter core.OrderFilter) (*OrderListResult, error) {
	views, totals, err := s.orderService.ListOrders(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &OrderListResult{Orders: views, Totals: totals}, nil
}

// GetOrder returns a single order view by id.
func (s *appService) GetOrder(ctx context.Context, orderID string) (*OrderResult, error) {
	v, err := s.orderService.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: *v}, nil
}

// CreateOrder creates a sale or purchase order.
func (s *appService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error) {
	v, err := s.orderService.CreateOrder(ctx, req.Capability, req.Input)
	if err != nil {
		return nil, err
	}
	s.publish(v)
	return &OrderResult{Order: *v}, nil
}

// RecordDispatch appends a dispatch to the order's ledger.
func (s *appService) RecordDispatch(ctx context.Context, req RecordDispatchRequest) (*OrderResult, error) {
	v, err := s.orderService.RecordDispatch(ctx, req.Capability, req.OrderID, req.Input)
	if err != nil {
		return nil, err
	}
	s.publish(v)
	return &OrderResult{Order: *v}, nil
}

// RecordPayment appends a payment to the order's ledger.
func (s *appService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*OrderResult, error) {
	v, err := s.orderService.RecordPayment(ctx, req.Capability, req.OrderID, req.Input)
	if err != nil {
		return nil, err
	}
	s.publish(v)
	return &OrderResult{Order: *v}, nil
}

// CancelOrder marks an order cancelled.
func (s *appService) CancelOrder(ctx context.Context, req CancelOrderRequest) (*OrderResult, error) {
	v, err := s.orderService.CancelOrder(ctx, req.Capability, req.OrderID)
	if err != nil {
		return nil, err
	}
	s.publish(v)
	return &OrderResult{Order: *v}, nil
}

// GetDashboard returns sales and purchase totals.
func (s *appService) GetDashboard(ctx context.Context, filter core.OrderFilter) (*DashboardResult, error) {
	d, err := s.orderService.Dashboard(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &DashboardResult{Month: filter.Month, Sales: d.Sales, Purchases: d.Purchases}, nil
}

// AuthenticateUser verifies credentials and returns a session on success.
func (s *appService) AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error) {
	u, err := s.userService.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return &UserSession{UserID: u.ID, Username: u.Username, Role: u.Role}, nil
}

// GetUser returns user profile by ID.
func (s *appService) GetUser(ctx context.Context, userID int) (*UserResult, error) {
	u, err := s.userService.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserResult{Username: u.Username, Email: u.Email, Role: u.Role, IsActive: u.IsActive}, nil
}
