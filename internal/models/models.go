package models

import (
	"fmt"
	"time"

	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/money"
)

// Category is one of the four sections of the menu.
type Category string

const (
	CategoryRice    Category = "rice"
	CategorySoup    Category = "soup"
	CategorySnack   Category = "snack"
	CategorySwallow Category = "swallow"
)

// Categories lists every category in menu order.
var Categories = []Category{CategoryRice, CategorySoup, CategorySnack, CategorySwallow}

func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryRice, CategorySoup, CategorySnack, CategorySwallow:
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Label is the heading used on the menu page.
func (c Category) Label() string {
	switch c {
	case CategoryRice:
		return "Rice Dishes"
	case CategorySoup:
		return "Soups"
	case CategorySnack:
		return "Snacks"
	case CategorySwallow:
		return "Swallows"
	}
	return string(c)
}

type Dish struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description" yaml:"description"`
	Price       money.Amount `json:"price" yaml:"price"`
	Image       string       `json:"image" yaml:"image"`
	Category    Category     `json:"category" yaml:"category"`
	Ingredients []string     `json:"ingredients,omitempty" yaml:"ingredients,omitempty"`
	Popular     bool         `json:"is_popular" yaml:"popular"`
	InStock     bool         `json:"in_stock" yaml:"in_stock"`
	CreatedAt   time.Time    `json:"created_at" yaml:"-"`
}

// OrderStatus only moves when kitchen staff update it; customers observe it.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{StatusPending, StatusPreparing, StatusReady, StatusDelivered, StatusCancelled}

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(s); st {
	case StatusPending, StatusPreparing, StatusReady, StatusDelivered, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// Active reports whether the kitchen still has work to do on the order.
func (s OrderStatus) Active() bool {
	return s == StatusPending || s == StatusPreparing || s == StatusReady
}

func (s OrderStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusPreparing:
		return "Preparing"
	case StatusReady:
		return "Ready"
	case StatusDelivered:
		return "Delivered"
	case StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

type Order struct {
	ID              string       `json:"id"`
	UserID          string       `json:"user_id"`
	TotalAmount     money.Amount `json:"total_amount"`
	DeliveryFee     money.Amount `json:"delivery_fee"`
	ContactName     string       `json:"contact_name"`
	ContactEmail    string       `json:"contact_email"`
	DeliveryAddress string       `json:"delivery_address"`
	DeliveryCity    string       `json:"delivery_city"`
	DeliveryPhone   string       `json:"delivery_phone"`
	Notes           string       `json:"notes"`
	Status          OrderStatus  `json:"status"`
	CreatedAt       time.Time    `json:"created_at"`
}

// ShortID is the 8 character reference shown to customers.
func (o Order) ShortID() string {
	if len(o.ID) <= 8 {
		return o.ID
	}
	return o.ID[:8]
}

// OrderLine keeps the dish name and unit price as they were when the order
// was placed, so later menu edits never change history.
type OrderLine struct {
	ID        int64        `json:"id"`
	OrderID   string       `json:"order_id"`
	DishID    string       `json:"dish_id"`
	DishName  string       `json:"dish_name"`
	Quantity  int          `json:"quantity"`
	UnitPrice money.Amount `json:"unit_price"`
}

func (l OrderLine) Subtotal() money.Amount {
	return l.UnitPrice.Mul(l.Quantity)
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Profile struct {
	UserID   string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// Staff is a kitchen console account.
type Staff struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"` // Store hashed password
}
