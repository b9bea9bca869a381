// Package cart holds the in-memory cart owned by one browser session.
//
// A Cart is an insertion-ordered list of lines with at most one line per dish
// id and a quantity of at least one on every line. It is not safe for
// concurrent use; the owning browser client serialises access.
package cart

import (
	"errors"
	"fmt"

	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/models"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/money"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/notice"
)

// MaxQuantity is the most of one dish a single line may hold.
const MaxQuantity = 99

var ErrQuantityTooLarge = errors.New("quantity is above the per-dish limit")

type Line struct {
	Dish     models.Dish
	Quantity int
}

func (l Line) Subtotal() money.Amount {
	return l.Dish.Price.Mul(l.Quantity)
}

type Cart struct {
	lines    []Line
	notifier notice.Notifier
}

// New returns an empty cart. A nil notifier discards confirmations.
func New(n notice.Notifier) *Cart {
	if n == nil {
		n = notice.Discard
	}
	return &Cart{notifier: n}
}

func (c *Cart) index(dishID string) int {
	for i := range c.lines {
		if c.lines[i].Dish.ID == dishID {
			return i
		}
	}
	return -1
}

// AddItem increments the dish's line or appends a new line with quantity 1.
// A line already at MaxQuantity is left alone.
func (c *Cart) AddItem(dish models.Dish) {
	if i := c.index(dish.ID); i >= 0 {
		if c.lines[i].Quantity >= MaxQuantity {
			c.notifier.Notify(notice.Notice{Level: notice.Error, Message: fmt.Sprintf("You can order at most %d %s", MaxQuantity, dish.Name)})
			return
		}
		c.lines[i].Quantity++
		c.notifier.Notify(notice.Notice{Level: notice.Success, Message: fmt.Sprintf("Increased %s quantity", dish.Name)})
		return
	}
	c.lines = append(c.lines, Line{Dish: dish, Quantity: 1})
	c.notifier.Notify(notice.Notice{Level: notice.Success, Message: fmt.Sprintf("Added %s to cart", dish.Name)})
}

// RemoveItem deletes the dish's line. Unknown ids are ignored.
func (c *Cart) RemoveItem(dishID string) {
	i := c.index(dishID)
	if i < 0 {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	c.notifier.Notify(notice.Notice{Level: notice.Success, Message: "Item removed from cart"})
}

// SetQuantity overwrites the line's quantity; zero or less removes the line.
// Anything above MaxQuantity is refused with ErrQuantityTooLarge and the
// cart is not changed.
func (c *Cart) SetQuantity(dishID string, quantity int) error {
	if quantity <= 0 {
		c.RemoveItem(dishID)
		return nil
	}
	if quantity > MaxQuantity {
		return ErrQuantityTooLarge
	}
	if i := c.index(dishID); i >= 0 {
		c.lines[i].Quantity = quantity
	}
	return nil
}

func (c *Cart) Clear() {
	c.lines = nil
	c.notifier.Notify(notice.Notice{Level: notice.Success, Message: "Cart cleared"})
}

func (c *Cart) TotalPrice() money.Amount {
	var total money.Amount
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

// CheckedTotal is TotalPrice failing with money.ErrOverflow rather than
// wrapping.
func (c *Cart) CheckedTotal() (money.Amount, error) {
	subtotals := make([]money.Amount, 0, len(c.lines))
	for _, l := range c.lines {
		sub, err := l.Dish.Price.MulChecked(l.Quantity)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", l.Dish.Name, err)
		}
		subtotals = append(subtotals, sub)
	}
	return money.AddChecked(subtotals...)
}

func (c *Cart) TotalItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }
