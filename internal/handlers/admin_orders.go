package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/models"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/store"
)

func (h *KitchenHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 10
	}

	offset := (page - 1) * limit

	orders, err := h.Store.ListAllOrders(r.Context(), limit, offset)
	if err != nil {
		slog.Error("Failed to list orders", "error", err)
		http.Error(w, "Error fetching orders", http.StatusInternalServerError)
		return
	}

	totalOrders, err := h.Store.CountOrders(r.Context())
	if err != nil {
		http.Error(w, "Error fetching total order count", http.StatusInternalServerError)
		return
	}

	totalPages := (totalOrders + limit - 1) / limit
	if totalPages == 0 {
		totalPages = 1
	}

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	lines, err := h.Store.ListOrderLines(r.Context(), ids...)
	if err != nil {
		http.Error(w, "Error fetching order lines", http.StatusInternalServerError)
		return
	}

	session, _ := h.SessionStore.Get(r, kitchenSessionName)
	h.render(w, r, session, "kitchen_orders.html", map[string]interface{}{
		"Orders":      orders,
		"Lines":       lines,
		"Statuses":    models.OrderStatuses,
		"CurrentPage": page,
		"TotalPages":  totalPages,
		"Limit":       limit,
	})
}

func (h *KitchenHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, kitchenSessionName)
	back := safeRedirect(r.FormValue("redirect"), "/kitchen/orders")

	status, err := models.ParseOrderStatus(r.FormValue("status"))
	if err != nil {
		h.flashRedirect(w, r, session, "error", "Invalid status selected.", back)
		return
	}

	id := r.FormValue("id")
	if err := h.Store.UpdateOrderStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.flashRedirect(w, r, session, "error", "Order not found.", back)
			return
		}
		slog.Error("Failed to update order status", "order", id, "error", err)
		http.Error(w, "Error updating status", http.StatusInternalServerError)
		return
	}

	slog.Info("Order status updated", "order", id, "status", string(status))
	h.flashRedirect(w, r, session, "success", "Order updated!", back)
}
