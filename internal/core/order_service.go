package core

import (
	"context"
	"fmt"
)

// OrderService exposes order reads and the three kinds of writes: create, append
// to a ledger, cancel. Every returned OrderView is rebuilt from the persisted history.
type OrderService interface {
	CreateOrder(ctx context.Context, c *Capability, input OrderInput) (*OrderView, error)
	GetOrder(ctx context.Context, orderID string) (*OrderView, error)
	// ListOrders returns the matching views and their totals footer.
	ListOrders(ctx context.Context, filter OrderFilter) ([]OrderView, FleetTotals, error)
	RecordDispatch(ctx context.Context, c *Capability, orderID string, input DispatchInput) (*OrderView, error)
	RecordPayment(ctx context.Context, c *Capability, orderID string, input PaymentInput) (*OrderView, error)
	// CancelOrder requires an admin capability and an order that is not yet completed.
	CancelOrder(ctx context.Context, c *Capability, orderID string) (*OrderView, error)
	// Dashboard returns totals by kind for the orders matching filter.
	Dashboard(ctx context.Context, filter OrderFilter) (*Dashboard, error)
}

type orderService struct {
	repo OrderRepository
}

func NewOrderService(repo OrderRepository) OrderService {
	return &orderService{repo: repo}
}

func (s *orderService) CreateOrder(ctx context.Context, c *Capability, input OrderInput) (*OrderView, error) {
	order, err := NewOrder(c, input)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	v := BuildOrderView(*created, nil, nil)
	return &v, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID string) (*OrderView, error) {
	g, err := s.repo.FetchOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	v := BuildGraphView(*g)
	return &v, nil
}

func (s *orderService) views(ctx context.Context, kind OrderKind) ([]OrderView, error) {
	graphs, err := s.repo.FetchOrders(ctx, kind)
	if err != nil {
		return nil, err
	}
	views := make([]OrderView, 0, len(graphs))
	for _, g := range graphs {
		views = append(views, BuildGraphView(g))
	}
	return views, nil
}

func (s *orderService) ListOrders(ctx context.Context, filter OrderFilter) ([]OrderView, FleetTotals, error) {
	all, err := s.views(ctx, filter.Kind)
	if err != nil {
		return nil, FleetTotals{}, err
	}
	views := filter.Apply(all)
	return views, AggregateFleet(views, nil), nil
}

func (s *orderService) RecordDispatch(ctx context.Context, c *Capability, orderID string, input DispatchInput) (*OrderView, error) {
	if err := authorizeWrite(c); err != nil {
		return nil, err
	}
	g, err := s.repo.AppendDispatch(ctx, orderID, func(g OrderGraph) (*Dispatch, error) {
		return RecordDispatch(c, g.Order, g.Dispatches, input)
	})
	if err != nil {
		return nil, err
	}
	v := BuildGraphView(*g)
	return &v, nil
}

func (s *orderService) RecordPayment(ctx context.Context, c *Capability, orderID string, input PaymentInput) (*OrderView, error) {
	if err := authorizeWrite(c); err != nil {
		return nil, err
	}
	g, err := s.repo.AppendPayment(ctx, orderID, func(g OrderGraph) (*Payment, error) {
		return RecordPayment(c, g.Order, g.Payments, input)
	})
	if err != nil {
		return nil, err
	}
	v := BuildGraphView(*g)
	return &v, nil
}

func (s *orderService) CancelOrder(ctx context.Context, c *Capability, orderID string) (*OrderView, error) {
	if err := authorizeWrite(c); err != nil {
		return nil, err
	}
	g, err := s.repo.SetCancelled(ctx, orderID, func(g OrderGraph) error {
		return CheckCancel(c, g.Order, g.Dispatches)
	})
	if err != nil {
		return nil, err
	}
	v := BuildGraphView(*g)
	return &v, nil
}

func (s *orderService) Dashboard(ctx context.Context, filter OrderFilter) (*Dashboard, error) {
	all, err := s.views(ctx, "")
	if err != nil {
		return nil, err
	}
	d := BuildDashboard(all, filter)
	return &d, nil
}
