package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/cart"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/catalog"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/notice"
)

func (h *StorefrontHandler) Cart(p *page) {
	c := p.client.Cart
	h.render(p, http.StatusOK, "cart.html", map[string]interface{}{
		"Title":       "Your Cart",
		"Lines":       c.Lines(),
		"Subtotal":    c.TotalPrice(),
		"DeliveryFee": h.Checkout.DeliveryFee(),
		"Total":       h.Checkout.Total(c),
	})
}

// backTo is where a cart form returns to: its "redirect" field when that is
// a local path, otherwise the cart.
func backTo(p *page) string {
	return safeRedirect(p.r.FormValue("redirect"), "/cart")
}

func (h *StorefrontHandler) CartAdd(p *page) {
	dish, err := h.Catalog.GetDish(p.r.Context(), p.r.FormValue("dish_id"))
	if errors.Is(err, catalog.ErrNotFound) {
		p.notify(notice.Error, "That dish is no longer on the menu.")
		p.redirect(backTo(p))
		return
	}
	if err != nil {
		h.serverError(p, "Error fetching dish", err)
		return
	}
	if !dish.InStock {
		p.notify(notice.Error, dish.Name+" is out of stock.")
		p.redirect(backTo(p))
		return
	}

	p.client.Cart.AddItem(dish)
	p.redirect(backTo(p))
}

// CartUpdate sets a line's quantity. Anything but a whole number up to
// cart.MaxQuantity is rejected and leaves the cart alone.
func (h *StorefrontHandler) CartUpdate(p *page) {
	qty, err := strconv.Atoi(strings.TrimSpace(p.r.FormValue("quantity")))
	if err != nil {
		p.notify(notice.Error, "Quantity must be a whole number.")
		p.redirect("/cart")
		return
	}
	if err := p.client.Cart.SetQuantity(p.r.FormValue("dish_id"), qty); err != nil {
		p.notify(notice.Error, fmt.Sprintf("You can order at most %d of a dish.", cart.MaxQuantity))
	}
	p.redirect("/cart")
}

func (h *StorefrontHandler) CartRemove(p *page) {
	p.client.Cart.RemoveItem(p.r.FormValue("dish_id"))
	p.redirect("/cart")
}

func (h *StorefrontHandler) CartClear(p *page) {
	p.client.Cart.Clear()
	p.redirect("/cart")
}
