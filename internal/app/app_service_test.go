package app_test

import (
	"context"
	"errors"
	"testing"

	"order-ledger/internal/app"
	"order-ledger/internal/core"

	"github.com/shopspring/decimal"
)

type stubOrders struct {
	core.OrderService
	view *core.OrderView
	err  error
}

func (s *stubOrders) RecordDispatch(_ context.Context, _ *core.Capability, _ string, _ core.DispatchInput) (*core.OrderView, error) {
	return s.view, s.err
}

func (s *stubOrders) Dashboard(_ context.Context, _ core.OrderFilter) (*core.Dashboard, error) {
	return &core.Dashboard{Sales: core.FleetTotals{Orders: 2}, Purchases: core.FleetTotals{Orders: 1}}, nil
}

type stubUsers struct {
	core.UserService
}

func (stubUsers) Authenticate(_ context.Context, username, password string) (*core.User, error) {
	if password != "pw" {
		return nil, core.ErrUnauthorized
	}
	return &core.User{ID: 7, Username: username, Role: core.RoleOperator, IsActive: true}, nil
}

type recorder struct {
	published []core.OrderView
}

func (r *recorder) PublishOrder(v core.OrderView) { r.published = append(r.published, v) }

func TestAppService_PublishesOnlySuccessfulWrites(t *testing.T) {
	rec := &recorder{}
	orders := &stubOrders{view: &core.OrderView{Order: core.Order{ID: "JIPLS2403150001"}, RemainingQuantity: decimal.NewFromInt(60)}}
	svc := app.NewAppService(orders, stubUsers{}, rec)
	ctx := context.Background()

	res, err := svc.RecordDispatch(ctx, app.RecordDispatchRequest{OrderID: "JIPLS2403150001"})
	if err != nil {
		t.Fatalf("RecordDispatch failed: %v", err)
	}
	if res.Order.ID != "JIPLS2403150001" {
		t.Errorf("Expected order JIPLS2403150001, got %s", res.Order.ID)
	}
	if len(rec.published) != 1 {
		t.Fatalf("Expected 1 published view, got %d", len(rec.published))
	}

	orders.view, orders.err = nil, core.ErrOverDispatch
	if _, err := svc.RecordDispatch(ctx, app.RecordDispatchRequest{OrderID: "JIPLS2403150001"}); !errors.Is(err, core.ErrOverDispatch) {
		t.Fatalf("Expected ErrOverDispatch, got %v", err)
	}
	if len(rec.published) != 1 {
		t.Errorf("Expected rejected write not to publish, got %d", len(rec.published))
	}
}

func TestAppService_NilPublisher(t *testing.T) {
	orders := &stubOrders{view: &core.OrderView{}}
	svc := app.NewAppService(orders, stubUsers{}, nil)
	if _, err := svc.RecordDispatch(context.Background(), app.RecordDispatchRequest{}); err != nil {
		t.Fatalf("RecordDispatch failed: %v", err)
	}
}

func TestAppService_Dashboard(t *testing.T) {
	svc := app.NewAppService(&stubOrders{}, stubUsers{}, nil)
	d, err := svc.GetDashboard(context.Background(), core.OrderFilter{Month: "2024-03"})
	if err != nil {
		t.Fatalf("GetDashboard failed: %v", err)
	}
	if d.Month != "2024-03" || d.Sales.Orders != 2 || d.Purchases.Orders != 1 {
		t.Errorf("Unexpected dashboard %+v", d)
	}
}

func TestAppService_AuthenticateUser(t *testing.T) {
	svc := app.NewAppService(&stubOrders{}, stubUsers{}, nil)
	ctx := context.Background()

	session, err := svc.AuthenticateUser(ctx, "alice", "pw")
	if err != nil {
		t.Fatalf("AuthenticateUser failed: %v", err)
	}
	c := session.Capability()
	if c.UserID != 7 || !c.CanWrite() {
		t.Errorf("Expected writable capability for user 7, got %+v", c)
	}

	if _, err := svc.AuthenticateUser(ctx, "alice", "nope"); !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}

	var none *app.UserSession
	if none.Capability() != nil {
		t.Error("Expected nil session to carry no capability")
	}
}
