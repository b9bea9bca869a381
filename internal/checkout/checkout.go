// Package checkout turns a browser's cart into a persisted order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/cart"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/catalog"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/models"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/money"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/session"
)

const DefaultDeliveryFee money.Amount = 500

var (
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidTotal means the cart's total cannot be represented, which
	// only happens with absurd quantities or prices.
	ErrInvalidTotal = errors.New("order total out of range")
)

// AuthRequiredError means the order needs a signed-in customer. Callers
// answer it with a redirect to sign in, not an error page.
type AuthRequiredError struct {
	Err error
}

func (e *AuthRequiredError) Error() string {
	if e.Err != nil {
		return "sign in required: " + e.Err.Error()
	}
	return "sign in required"
}

func (e *AuthRequiredError) Unwrap() error { return e.Err }

// SubmissionError means the order could not be stored. The cart is left as
// it was so the customer can try again.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string { return "failed to place order: " + e.Err.Error() }

func (e *SubmissionError) Unwrap() error { return e.Err }

// UnavailableError means a dish in the cart was removed from the menu or
// went out of stock after it was added.
type UnavailableError struct {
	DishName string
}

func (e *UnavailableError) Error() string { return e.DishName + " is no longer available" }

type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order, lines []models.OrderLine) error
}

// Menu supplies current dish prices at submission. *store.Store satisfies it.
type Menu interface {
	GetDish(ctx context.Context, id string) (models.Dish, error)
}

// SessionSource is the part of a browser's session provider checkout needs.
type SessionSource interface {
	State() session.State
	Verify(ctx context.Context) (session.Identity, error)
}

type Service struct {
	orders      OrderStore
	menu        Menu
	deliveryFee money.Amount
	now         func() time.Time
	newID       func() string
}

func NewService(orders OrderStore, menu Menu, deliveryFee money.Amount) *Service {
	return &Service{
		orders:      orders,
		menu:        menu,
		deliveryFee: deliveryFee,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

func (s *Service) DeliveryFee() money.Amount { return s.deliveryFee }

// Total is what the customer pays for c at the prices the cart shows.
func (s *Service) Total(c *cart.Cart) money.Amount {
	return c.TotalPrice() + s.deliveryFee
}

// Precheck reports whether checkout may start at all: an empty cart gives
// ErrEmptyCart, a total that overflows gives ErrInvalidTotal and a browser
// that is not signed in gives *AuthRequiredError.
func Precheck(c *cart.Cart, st session.State) error {
	if c.IsEmpty() {
		return ErrEmptyCart
	}
	if _, err := c.CheckedTotal(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTotal, err)
	}
	if !st.Authenticated() {
		return &AuthRequiredError{}
	}
	return nil
}

// Submit places the order for the cart's current contents. Each unit price
// is read from the menu now, not taken from when the dish was added, and is
// then fixed on the order line so later menu changes leave the order alone.
// A dish gone from the menu or out of stock gives *UnavailableError. The
// cart is cleared only once the order is stored.
func (s *Service) Submit(ctx context.Context, c *cart.Cart, sess SessionSource, form Form) (*models.Order, error) {
	if err := Precheck(c, sess.State()); err != nil {
		return nil, err
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	user, err := sess.Verify(ctx)
	if err != nil {
		if errors.Is(err, session.ErrSessionInvalid) || errors.Is(err, session.ErrNotAuthenticated) {
			return nil, &AuthRequiredError{Err: err}
		}
		return nil, &SubmissionError{Err: err}
	}

	orderID := s.newID()
	lines, subtotal, err := s.price(ctx, orderID, c.Lines())
	if err != nil {
		return nil, err
	}
	total, err := money.AddChecked(subtotal, s.deliveryFee)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTotal, err)
	}

	form = form.Normalize()
	order := &models.Order{
		ID:              orderID,
		UserID:          user.UserID,
		TotalAmount:     total,
		DeliveryFee:     s.deliveryFee,
		ContactName:     form.FullName,
		ContactEmail:    form.Email,
		DeliveryAddress: form.Address,
		DeliveryCity:    form.City,
		DeliveryPhone:   form.Phone,
		Notes:           form.Notes,
		Status:          models.StatusPending,
		CreatedAt:       s.now(),
	}

	if err := s.orders.CreateOrder(ctx, order, lines); err != nil {
		slog.Error("Failed to create order", "user", user.UserID, "error", err)
		return nil, &SubmissionError{Err: fmt.Errorf("create order: %w", err)}
	}

	slog.Info("Order placed", "order", order.ShortID(), "user", user.UserID, "total", order.TotalAmount.String())
	c.Clear()
	return order, nil
}

// price builds the order lines from the menu's current prices and returns
// their checked sum.
func (s *Service) price(ctx context.Context, orderID string, cartLines []cart.Line) ([]models.OrderLine, money.Amount, error) {
	lines := make([]models.OrderLine, 0, len(cartLines))
	subtotals := make([]money.Amount, 0, len(cartLines))
	for _, l := range cartLines {
		dish, err := s.menu.GetDish(ctx, l.Dish.ID)
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, 0, &UnavailableError{DishName: l.Dish.Name}
		}
		if err != nil {
			return nil, 0, &SubmissionError{Err: fmt.Errorf("price %s: %w", l.Dish.ID, err)}
		}
		if !dish.InStock {
			return nil, 0, &UnavailableError{DishName: dish.Name}
		}
		if dish.Price != l.Dish.Price {
			slog.Info("Dish price changed since it was added to the cart", "dish", dish.ID, "was", l.Dish.Price.String(), "now", dish.Price.String())
		}

		sub, err := dish.Price.MulChecked(l.Quantity)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrInvalidTotal, err)
		}
		subtotals = append(subtotals, sub)
		lines = append(lines, models.OrderLine{
			OrderID:   orderID,
			DishID:    dish.ID,
			DishName:  dish.Name,
			Quantity:  l.Quantity,
			UnitPrice: dish.Price,
		})
	}

	subtotal, err := money.AddChecked(subtotals...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidTotal, err)
	}
	return lines, subtotal, nil
}
