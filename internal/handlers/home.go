package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/catalog"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/models"
)

const homePopularCount = 4

func (h *StorefrontHandler) Home(p *page) {
	popular, err := h.Catalog.PopularDishes(p.r.Context(), homePopularCount)
	if err != nil {
		h.serverError(p, "Error fetching dishes", err)
		return
	}
	h.render(p, http.StatusOK, "home.html", map[string]interface{}{
		"Popular": popular,
	})
}

func (h *StorefrontHandler) Menu(p *page) {
	dishes, err := h.Catalog.ListDishes(p.r.Context())
	if err != nil {
		h.serverError(p, "Error fetching dishes", err)
		return
	}

	category := p.r.URL.Query().Get("category")
	if category != "" && category != "all" {
		if _, err := models.ParseCategory(category); err != nil {
			category = ""
		}
	}
	query := strings.TrimSpace(p.r.URL.Query().Get("q"))

	h.render(p, http.StatusOK, "menu.html", map[string]interface{}{
		"Title":      "Our Menu",
		"Dishes":     catalog.Filter(dishes, category, query),
		"Categories": models.Categories,
		"Selected":   category,
		"Query":      query,
	})
}

func (h *StorefrontHandler) Dish(p *page) {
	dish, err := h.Catalog.GetDish(p.r.Context(), p.r.PathValue("id"))
	if errors.Is(err, catalog.ErrNotFound) {
		h.render(p, http.StatusNotFound, "not_found.html", map[string]interface{}{
			"Title":   "Dish not found",
			"Message": "The dish you're looking for doesn't exist.",
		})
		return
	}
	if err != nil {
		h.serverError(p, "Error fetching dish", err)
		return
	}
	h.render(p, http.StatusOK, "dish.html", map[string]interface{}{
		"Title": dish.Name,
		"Dish":  dish,
	})
}

func (h *StorefrontHandler) About(p *page) {
	h.render(p, http.StatusOK, "about.html", map[string]interface{}{
		"Title": "About Us",
	})
}

func (h *StorefrontHandler) NotFound(p *page) {
	h.render(p, http.StatusNotFound, "not_found.html", map[string]interface{}{
		"Title":   "Page not found",
		"Message": "Oops! We couldn't find that page.",
	})
}
