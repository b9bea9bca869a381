package store

import (
	"context"

	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/models"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/money"
)

type KitchenStats struct {
	TotalDishes    int
	TotalOrders    int
	Revenue        money.Amount
	OrdersByStatus map[models.OrderStatus]int
	DishOrderCount []DishOrderCount
}

type DishOrderCount struct {
	DishID   string
	Name     string
	Quantity int
}

// KitchenStats summarises the menu and order book for the console overview.
// Cancelled orders do not count towards revenue.
func (s *Store) KitchenStats(ctx context.Context) (*KitchenStats, error) {
	stats := &KitchenStats{
		OrdersByStatus: make(map[models.OrderStatus]int),
	}

	if err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM dishes").Scan(&stats.TotalDishes); err != nil {
		return nil, err
	}
	if err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders").Scan(&stats.TotalOrders); err != nil {
		return nil, err
	}

	var revenue int64
	err := s.DB.QueryRowContext(ctx, `SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status != 'cancelled'`).Scan(&revenue)
	if err != nil {
		return nil, err
	}
	stats.Revenue = money.Amount(revenue)

	rows, err := s.DB.QueryContext(ctx, "SELECT status, COUNT(*) FROM orders GROUP BY status")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, err
		}
		stats.OrdersByStatus[models.OrderStatus(status)] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Lines keep their own dish name, so deleted dishes still show up.
	dishRows, err := s.DB.QueryContext(ctx, `
		SELECT product_id, MAX(dish_name), SUM(quantity) AS qty
		FROM order_items
		GROUP BY product_id
		ORDER BY qty DESC, product_id
	`)
	if err != nil {
		return nil, err
	}
	defer dishRows.Close()
	for dishRows.Next() {
		var c DishOrderCount
		if err := dishRows.Scan(&c.DishID, &c.Name, &c.Quantity); err != nil {
			return nil, err
		}
		stats.DishOrderCount = append(stats.DishOrderCount, c)
	}

	return stats, dishRows.Err()
}
