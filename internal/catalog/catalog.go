// Package catalog serves the menu: lookups backed by the store, the menu page
// filters and the YAML seed file the kitchen starts from.
package catalog

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/models"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/money"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/store"
)

// ErrNotFound is returned by GetDish for an unknown id.
var ErrNotFound = store.ErrNotFound

// Catalog is the read side of the menu. *store.Store satisfies it.
type Catalog interface {
	ListDishes(ctx context.Context) ([]models.Dish, error)
	GetDish(ctx context.Context, id string) (models.Dish, error)
	PopularDishes(ctx context.Context, limit int) ([]models.Dish, error)
}

var _ Catalog = (*store.Store)(nil)

// Filter keeps dishes of the given category (empty or "all" keeps every
// category) whose name or description contains query, ignoring case.
func Filter(dishes []models.Dish, category, query string) []models.Dish {
	query = strings.ToLower(strings.TrimSpace(query))
	if category == "all" {
		category = ""
	}

	out := make([]models.Dish, 0, len(dishes))
	for _, d := range dishes {
		if category != "" && string(d.Category) != category {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(d.Name), query) &&
			!strings.Contains(strings.ToLower(d.Description), query) {
			continue
		}
		out = append(out, d)
	}
	return out
}

type CategoryCount struct {
	Category models.Category
	Count    int
}

// CountByCategory counts dishes per category, in menu order. Empty
// categories are left out.
func CountByCategory(dishes []models.Dish) []CategoryCount {
	counts := make(map[models.Category]int, len(models.Categories))
	for _, d := range dishes {
		counts[d.Category]++
	}

	var out []CategoryCount
	for _, c := range models.Categories {
		if n := counts[c]; n > 0 {
			out = append(out, CategoryCount{Category: c, Count: n})
		}
	}
	return out
}

// LoadSeed reads a YAML list of dishes and validates each entry.
func LoadSeed(path string) ([]models.Dish, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

func ParseSeed(data []byte) ([]models.Dish, error) {
	var dishes []models.Dish
	if err := yaml.Unmarshal(data, &dishes); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	seen := make(map[string]bool, len(dishes))
	for i, d := range dishes {
		if d.ID == "" || strings.TrimSpace(d.Name) == "" {
			return nil, fmt.Errorf("dish #%d: id and name are required", i+1)
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("dish %s: duplicate id", d.ID)
		}
		seen[d.ID] = true
		if _, err := models.ParseCategory(string(d.Category)); err != nil {
			return nil, fmt.Errorf("dish %s: %w", d.ID, err)
		}
		if d.Price < 0 {
			return nil, fmt.Errorf("dish %s: negative price", d.ID)
		}
		if d.Price > money.MaxAmount {
			return nil, fmt.Errorf("dish %s: price above %s", d.ID, money.MaxAmount)
		}
	}
	return dishes, nil
}

// DishWriter is the store side of seeding.
type DishWriter interface {
	UpsertDish(ctx context.Context, d *models.Dish) error
}

// Seed writes every dish, replacing existing dishes with the same id.
func Seed(ctx context.Context, w DishWriter, dishes []models.Dish) error {
	for i := range dishes {
		if err := w.UpsertDish(ctx, &dishes[i]); err != nil {
			return fmt.Errorf("seed dish %s: %w", dishes[i].ID, err)
		}
	}
	return nil
}
