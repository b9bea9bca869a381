package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/models"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/money"
)

const orderColumns = `id, user_id, total_amount, delivery_fee, contact_name, contact_email, delivery_address, delivery_city, delivery_phone, COALESCE(notes, ''), status, created_at`

func scanOrder(row rowScanner) (models.Order, error) {
	var (
		o      models.Order
		total  int64
		fee    int64
		status string
	)
	err := row.Scan(&o.ID, &o.UserID, &total, &fee, &o.ContactName, &o.ContactEmail, &o.DeliveryAddress, &o.DeliveryCity, &o.DeliveryPhone, &o.Notes, &status, &o.CreatedAt)
	o.TotalAmount = money.Amount(total)
	o.DeliveryFee = money.Amount(fee)
	o.Status = models.OrderStatus(status)
	return o, err
}

// CreateOrder writes the order header and its lines atomically. Either both
// land or neither does.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order, lines []models.OrderLine) error {
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	if order.Status == "" {
		order.Status = models.StatusPending
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, total_amount, delivery_fee, contact_name, contact_email, delivery_address, delivery_city, delivery_phone, notes, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, order.ID, order.UserID, int64(order.TotalAmount), int64(order.DeliveryFee), order.ContactName, order.ContactEmail,
		order.DeliveryAddress, order.DeliveryCity, order.DeliveryPhone, order.Notes, string(order.Status), order.CreatedAt)
	if err != nil {
		return err
	}

	for i := range lines {
		l := &lines[i]
		l.OrderID = order.ID
		res, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, dish_name, quantity, price)
			VALUES (?, ?, ?, ?, ?)
		`, l.OrderID, l.DishID, l.DishName, l.Quantity, int64(l.UnitPrice))
		if err != nil {
			return err
		}
		if l.ID, err = res.LastInsertId(); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *Store) GetOrder(ctx context.Context, id string) (models.Order, error) {
	o, err := scanOrder(s.DB.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Order{}, ErrNotFound
	}
	return o, err
}

func (s *Store) queryOrders(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// ListOrders returns a customer's orders, newest first.
func (s *Store) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	return s.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID)
}

// ListAllOrders pages through every order for the kitchen console.
func (s *Store) ListAllOrders(ctx context.Context, limit, offset int) ([]models.Order, error) {
	return s.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`, limit, offset)
}

func (s *Store) CountOrders(ctx context.Context) (int, error) {
	var count int
	err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders").Scan(&count)
	return count, err
}

// ListOrderLines returns the lines of the given orders grouped by order id.
func (s *Store) ListOrderLines(ctx context.Context, orderIDs ...string) (map[string][]models.OrderLine, error) {
	out := make(map[string][]models.OrderLine, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}

	args := make([]any, len(orderIDs))
	for i, id := range orderIDs {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(orderIDs)), ",")

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, order_id, product_id, dish_name, quantity, price
		FROM order_items
		WHERE order_id IN (`+placeholders+`)
		ORDER BY id
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			l     models.OrderLine
			price int64
		)
		if err := rows.Scan(&l.ID, &l.OrderID, &l.DishID, &l.DishName, &l.Quantity, &price); err != nil {
			return nil, err
		}
		l.UnitPrice = money.Amount(price)
		out[l.OrderID] = append(out[l.OrderID], l)
	}
	return out, rows.Err()
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) error {
	res, err := s.DB.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}
