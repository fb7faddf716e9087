package app

import "order-ledger/internal/core"

// OrderResult is returned by single-order operations.
type OrderResult struct {
	Order core.OrderView `json:"order"`
}

// OrderListResult is returned by ListOrders.
type OrderListResult struct {
	Orders []core.OrderView `json:"orders"`
	Totals core.FleetTotals `json:"totals"`
}

// DashboardResult is returned by GetDashboard.
type DashboardResult struct {
	Month     string           `json:"month,omitempty"`
	Sales     core.FleetTotals `json:"sales"`
	Purchases core.FleetTotals `json:"purchases"`
}

// UserSession is returned by AuthenticateUser.
type UserSession struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Capability is the write authorization this session carries.
func (s *UserSession) Capability() *core.Capability {
	if s == nil {
		return nil
	}
	return &core.Capability{UserID: s.UserID, Role: s.Role}
}

// UserResult is returned by GetUser.
type UserResult struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}
