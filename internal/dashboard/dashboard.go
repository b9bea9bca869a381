// Package dashboard assembles the signed-in customer's dashboard from their
// profile, order history and the menu.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/catalog"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/models"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/money"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/session"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/store"
)

const (
	recentOrderCount    = 3
	notificationCount   = 5
	unreadNotifications = 2
	popularCount        = 6
	recommendationCount = 4
	// One loyalty point per ₦100 spent.
	pointsPerNaira = 100
)

type History interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	ListOrders(ctx context.Context, userID string) ([]models.Order, error)
	ListOrderLines(ctx context.Context, orderIDs ...string) (map[string][]models.OrderLine, error)
}

type OrderSummary struct {
	Order models.Order
	Lines []models.OrderLine
}

func (s OrderSummary) ItemCount() int {
	n := 0
	for _, l := range s.Lines {
		n += l.Quantity
	}
	return n
}

type Stats struct {
	TotalOrders   int
	ActiveOrders  int
	TotalSpent    money.Amount
	LoyaltyPoints int64
}

type NotificationKind string

const (
	KindOrder NotificationKind = "order"
	KindInfo  NotificationKind = "info"
)

type Notification struct {
	ID      string
	Kind    NotificationKind
	Title   string
	Message string
	At      time.Time
	Read    bool
}

type View struct {
	Greeting        string
	Profile         models.Profile
	RecentOrders    []OrderSummary
	Stats           Stats
	Notifications   []Notification
	Categories      []catalog.CategoryCount
	Popular         []models.Dish
	Recommendations []models.Dish
}

// FirstName is the name used in the greeting.
func (v View) FirstName() string {
	if f := strings.Fields(v.Profile.FullName); len(f) > 0 {
		return f[0]
	}
	return "there"
}

type Aggregator struct {
	history History
	menu    catalog.Catalog
	now     func() time.Time
}

func NewAggregator(history History, menu catalog.Catalog) *Aggregator {
	return &Aggregator{history: history, menu: menu, now: time.Now}
}

func (a *Aggregator) Build(ctx context.Context, id session.Identity) (*View, error) {
	profile := models.Profile{UserID: id.UserID, FullName: id.FullName, Email: id.Email}
	p, err := a.history.GetProfile(ctx, id.UserID)
	switch {
	case err == nil && p != nil:
		profile = *p
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("load profile: %w", err)
	}

	orders, err := a.history.ListOrders(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}

	recent := orders
	if len(recent) > recentOrderCount {
		recent = recent[:recentOrderCount]
	}
	ids := make([]string, len(recent))
	for i, o := range recent {
		ids[i] = o.ID
	}
	lines, err := a.history.ListOrderLines(ctx, ids...)
	if err != nil {
		return nil, fmt.Errorf("load order lines: %w", err)
	}

	dishes, err := a.menu.ListDishes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load menu: %w", err)
	}
	popular, err := a.menu.PopularDishes(ctx, popularCount)
	if err != nil {
		return nil, fmt.Errorf("load popular dishes: %w", err)
	}

	v := &View{
		Greeting:      Greeting(a.now()),
		Profile:       profile,
		Stats:         Summarize(orders),
		Notifications: Notifications(orders, a.now()),
		Categories:    catalog.CountByCategory(dishes),
		Popular:       popular,
	}
	for _, o := range recent {
		v.RecentOrders = append(v.RecentOrders, OrderSummary{Order: o, Lines: lines[o.ID]})
	}
	v.Recommendations = popular
	if len(v.Recommendations) > recommendationCount {
		v.Recommendations = v.Recommendations[:recommendationCount]
	}
	return v, nil
}

// Summarize computes the quick stats over the whole order history.
func Summarize(orders []models.Order) Stats {
	s := Stats{TotalOrders: len(orders)}
	for _, o := range orders {
		if o.Status.Active() {
			s.ActiveOrders++
		}
		s.TotalSpent += o.TotalAmount
	}
	s.LoyaltyPoints = int64(s.TotalSpent) / pointsPerNaira
	return s
}

// Notifications turns the latest orders (newest first) into notifications,
// the first two unread. A customer with no orders gets a welcome note.
func Notifications(orders []models.Order, now time.Time) []Notification {
	if len(orders) > notificationCount {
		orders = orders[:notificationCount]
	}
	out := make([]Notification, 0, len(orders))
	for i, o := range orders {
		out = append(out, Notification{
			ID:      o.ID,
			Kind:    KindOrder,
			Title:   statusTitle(o.Status),
			Message: fmt.Sprintf("Order #%s - %s", o.ShortID(), o.TotalAmount),
			At:      o.CreatedAt,
			Read:    i >= unreadNotifications,
		})
	}
	if len(out) == 0 {
		out = append(out, Notification{
			ID:      "welcome",
			Kind:    KindInfo,
			Title:   "Welcome to Ola's Place!",
			Message: "Browse our menu and place your first order today.",
			At:      now,
		})
	}
	return out
}

func statusTitle(s models.OrderStatus) string {
	switch s {
	case models.StatusPending:
		return "Order Received"
	case models.StatusPreparing:
		return "Order Being Prepared"
	case models.StatusReady:
		return "Order Ready for Pickup"
	case models.StatusDelivered:
		return "Order Delivered"
	case models.StatusCancelled:
		return "Order Cancelled"
	}
	return "Order Update"
}

func Greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Good Morning"
	case h < 17:
		return "Good Afternoon"
	}
	return "Good Evening"
}
