package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/models"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/money"
)

const dishColumns = `id, name, description, price, image, category, ingredients, is_popular, in_stock, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDish(row rowScanner) (models.Dish, error) {
	var (
		d           models.Dish
		price       int64
		category    string
		ingredients string
	)
	if err := row.Scan(&d.ID, &d.Name, &d.Description, &price, &d.Image, &category, &ingredients, &d.Popular, &d.InStock, &d.CreatedAt); err != nil {
		return d, err
	}
	d.Price = money.Amount(price)
	d.Category = models.Category(category)
	if ingredients != "" {
		if err := json.Unmarshal([]byte(ingredients), &d.Ingredients); err != nil {
			return d, fmt.Errorf("dish %s ingredients: %w", d.ID, err)
		}
	}
	return d, nil
}

func encodeIngredients(in []string) (string, error) {
	if len(in) == 0 {
		return "", nil
	}
	b, err := json.Marshal(in)
	return string(b), err
}

func (s *Store) queryDishes(ctx context.Context, query string, args ...any) ([]models.Dish, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dishes []models.Dish
	for rows.Next() {
		d, err := scanDish(rows)
		if err != nil {
			return nil, err
		}
		dishes = append(dishes, d)
	}
	return dishes, rows.Err()
}

// ListDishes returns the in-stock menu, popular dishes first.
func (s *Store) ListDishes(ctx context.Context) ([]models.Dish, error) {
	return s.queryDishes(ctx, `SELECT `+dishColumns+` FROM dishes WHERE in_stock = 1 ORDER BY is_popular DESC, CAST(id AS INTEGER), id`)
}

// ListAllDishes includes out-of-stock dishes, for the kitchen console.
func (s *Store) ListAllDishes(ctx context.Context) ([]models.Dish, error) {
	return s.queryDishes(ctx, `SELECT `+dishColumns+` FROM dishes ORDER BY CAST(id AS INTEGER), id`)
}

func (s *Store) PopularDishes(ctx context.Context, limit int) ([]models.Dish, error) {
	return s.queryDishes(ctx, `SELECT `+dishColumns+` FROM dishes WHERE is_popular = 1 AND in_stock = 1 ORDER BY CAST(id AS INTEGER), id LIMIT ?`, limit)
}

func (s *Store) GetDish(ctx context.Context, id string) (models.Dish, error) {
	d, err := scanDish(s.DB.QueryRowContext(ctx, `SELECT `+dishColumns+` FROM dishes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Dish{}, ErrNotFound
	}
	return d, err
}

func (s *Store) CreateDish(ctx context.Context, d *models.Dish) error {
	ingredients, err := encodeIngredients(d.Ingredients)
	if err != nil {
		return err
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO dishes (id, name, description, price, image, category, ingredients, is_popular, in_stock, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.Name, d.Description, int64(d.Price), d.Image, string(d.Category), ingredients, d.Popular, d.InStock, d.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("dish %s: %w", d.ID, ErrDuplicate)
	}
	return err
}

// UpsertDish inserts the dish or overwrites an existing one with the same id.
func (s *Store) UpsertDish(ctx context.Context, d *models.Dish) error {
	ingredients, err := encodeIngredients(d.Ingredients)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO dishes (id, name, description, price, image, category, ingredients, is_popular, in_stock, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			price = excluded.price,
			image = excluded.image,
			category = excluded.category,
			ingredients = excluded.ingredients,
			is_popular = excluded.is_popular,
			in_stock = excluded.in_stock
	`, d.ID, d.Name, d.Description, int64(d.Price), d.Image, string(d.Category), ingredients, d.Popular, d.InStock, time.Now())
	return err
}

func (s *Store) UpdateDish(ctx context.Context, d *models.Dish) error {
	ingredients, err := encodeIngredients(d.Ingredients)
	if err != nil {
		return err
	}
	res, err := s.DB.ExecContext(ctx, `
		UPDATE dishes
		SET name = ?, description = ?, price = ?, category = ?, ingredients = ?, is_popular = ?, in_stock = ?
		WHERE id = ?
	`, d.Name, d.Description, int64(d.Price), string(d.Category), ingredients, d.Popular, d.InStock, d.ID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (s *Store) UpdateDishImage(ctx context.Context, id, image string) error {
	res, err := s.DB.ExecContext(ctx, `UPDATE dishes SET image = ? WHERE id = ?`, image, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (s *Store) SetDishPrice(ctx context.Context, id string, price money.Amount) error {
	res, err := s.DB.ExecContext(ctx, `UPDATE dishes SET price = ? WHERE id = ?`, int64(price), id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (s *Store) DeleteDish(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM dishes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
