package handlers

import (
	"errors"
	"net/http"

	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/checkout"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/notice"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/session"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/store"
)

func (h *StorefrontHandler) checkoutPage(p *page, status int, form checkout.Form, fieldErrors map[string]string) {
	c := p.client.Cart
	h.render(p, status, "checkout.html", map[string]interface{}{
		"Title":       "Checkout",
		"Lines":       c.Lines(),
		"Subtotal":    c.TotalPrice(),
		"DeliveryFee": h.Checkout.DeliveryFee(),
		"Total":       h.Checkout.Total(c),
		"Form":        form,
		"Errors":      fieldErrors,
	})
}

// CheckoutPage sends an empty cart back to the cart page before anything is
// rendered.
func (h *StorefrontHandler) CheckoutPage(p *page) {
	if err := checkout.Precheck(p.client.Cart, p.state()); err != nil {
		h.checkoutRedirect(p, err)
		return
	}

	form := checkout.Form{}
	if id := p.state().Identity; id != nil {
		form.FullName = id.FullName
		form.Email = id.Email
	}
	h.checkoutPage(p, http.StatusOK, form, nil)
}

func (h *StorefrontHandler) checkoutRedirect(p *page, err error) {
	var (
		authErr        *checkout.AuthRequiredError
		unavailableErr *checkout.UnavailableError
	)
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		p.notify(notice.Error, "Your cart is empty.")
		p.redirect("/cart")
	case errors.Is(err, checkout.ErrInvalidTotal):
		p.notify(notice.Error, "Your order total is too large. Please reduce the quantities in your cart.")
		p.redirect("/cart")
	case errors.As(err, &unavailableErr):
		p.notify(notice.Error, unavailableErr.DishName+" is no longer available. Please remove it from your cart.")
		p.redirect("/cart")
	case errors.As(err, &authErr):
		if errors.Is(err, session.ErrSessionInvalid) {
			p.notify(notice.Warning, "Your session has expired. Please sign in again.")
		}
		d := session.Decide(session.State{Status: session.StatusAnonymous}, session.AccessProtected, "/checkout")
		p.redirect(d.Target)
	default:
		h.serverError(p, "Error starting checkout", err)
	}
}

func (h *StorefrontHandler) PlaceOrder(p *page) {
	form := checkout.Form{
		FullName: p.r.FormValue("full_name"),
		Email:    p.r.FormValue("email"),
		Phone:    p.r.FormValue("phone"),
		Address:  p.r.FormValue("address"),
		City:     p.r.FormValue("city"),
		Notes:    p.r.FormValue("notes"),
	}

	order, err := h.Checkout.Submit(p.r.Context(), p.client.Cart, p.client.Session, form)
	if err != nil {
		var (
			validationErr *checkout.ValidationError
			submissionErr *checkout.SubmissionError
		)
		switch {
		case errors.As(err, &validationErr):
			p.notify(notice.Error, "Please fix the highlighted fields.")
			h.checkoutPage(p, http.StatusUnprocessableEntity, form, validationErr.Fields)
		case errors.As(err, &submissionErr):
			p.notify(notice.Error, "Failed to place order. Please try again.")
			h.checkoutPage(p, http.StatusServiceUnavailable, form, nil)
		default:
			h.checkoutRedirect(p, err)
		}
		return
	}

	p.notify(notice.Success, "Order placed successfully!")
	p.redirect("/orders/" + order.ID + "/confirmation")
}

// Confirmation shows one of the signed-in customer's own orders.
func (h *StorefrontHandler) Confirmation(p *page) {
	id := p.state().Identity
	order, err := h.Orders.GetOrder(p.r.Context(), p.r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) || (err == nil && order.UserID != id.UserID) {
		h.render(p, http.StatusNotFound, "not_found.html", map[string]interface{}{
			"Title":   "Order not found",
			"Message": "We couldn't find that order.",
		})
		return
	}
	if err != nil {
		h.serverError(p, "Error fetching order", err)
		return
	}

	lines, err := h.Orders.ListOrderLines(p.r.Context(), order.ID)
	if err != nil {
		h.serverError(p, "Error fetching order", err)
		return
	}

	h.render(p, http.StatusOK, "confirmation.html", map[string]interface{}{
		"Title":    "Order Confirmed",
		"Order":    order,
		"Lines":    lines[order.ID],
		"Subtotal": order.TotalAmount - order.DeliveryFee,
	})
}

func (h *StorefrontHandler) DashboardPage(p *page) {
	view, err := h.Dashboard.Build(p.r.Context(), *p.state().Identity)
	if err != nil {
		h.serverError(p, "Error loading dashboard", err)
		return
	}
	h.render(p, http.StatusOK, "dashboard.html", map[string]interface{}{
		"Title": "Dashboard",
		"View":  view,
	})
}
