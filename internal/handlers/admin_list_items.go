package handlers

import (
	"errors"
	"net/http"

	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/models"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/store"
)

// ListDishes shows every dish, including those out of stock.
func (h *KitchenHandler) ListDishes(w http.ResponseWriter, r *http.Request) {
	dishes, err := h.Store.ListAllDishes(r.Context())
	if err != nil {
		http.Error(w, "Error fetching dishes", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, kitchenSessionName)
	h.render(w, r, session, "kitchen_dishes.html", map[string]interface{}{
		"Dishes": dishes,
	})
}

func (h *KitchenHandler) NewDishForm(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, kitchenSessionName)
	h.render(w, r, session, "kitchen_dish_form.html", map[string]interface{}{
		"Dish":       models.Dish{InStock: true, Category: models.CategoryRice},
		"Categories": models.Categories,
		"Action":     "/kitchen/dishes",
		"New":        true,
	})
}

func (h *KitchenHandler) EditDishForm(w http.ResponseWriter, r *http.Request) {
	dish, err := h.Store.GetDish(r.Context(), r.URL.Query().Get("id"))
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Dish not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Error fetching dish", http.StatusInternalServerError)
		return
	}

	session, _ := h.SessionStore.Get(r, kitchenSessionName)
	h.render(w, r, session, "kitchen_dish_form.html", map[string]interface{}{
		"Dish":       dish,
		"Categories": models.Categories,
		"Action":     "/kitchen/dishes/update",
		"New":        false,
	})
}
