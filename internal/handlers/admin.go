package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"

	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/store"
)

const kitchenSessionName = "kitchen-session"

// KitchenHandler is the staff console: order status updates and menu
// maintenance.
type KitchenHandler struct {
	Store        *store.Store
	SessionStore sessions.Store
	Templates    *TemplateCache
	UploadDir    string
}

func (h *KitchenHandler) render(w http.ResponseWriter, r *http.Request, session *sessions.Session, name string, data map[string]interface{}) {
	data["CsrfField"] = csrf.TemplateField(r)
	data["Flashes"] = GetFlash(session)
	session.Save(r, w) // Save session to clear flashes
	h.Templates.Render(w, http.StatusOK, name, data)
}

func (h *KitchenHandler) flashRedirect(w http.ResponseWriter, r *http.Request, session *sessions.Session, kind, msg, target string) {
	session.AddFlash(FlashMessage{Type: kind, Message: msg})
	session.Save(r, w) // Save before redirect
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *KitchenHandler) LoginGet(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, kitchenSessionName)
	h.render(w, r, session, "kitchen_login.html", map[string]interface{}{})
}

func (h *KitchenHandler) LoginPost(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, kitchenSessionName)

	username := r.FormValue("username")
	password := r.FormValue("password")

	staff, err := h.Store.GetStaffByUsername(r.Context(), username)
	if err != nil {
		slog.Error("Failed to look up staff", "error", err)
		h.flashRedirect(w, r, session, "error", "Internal Server Error", "/kitchen/login")
		return
	}
	if staff == nil || bcrypt.CompareHashAndPassword([]byte(staff.Password), []byte(password)) != nil {
		h.flashRedirect(w, r, session, "error", "Invalid username or password", "/kitchen/login")
		return
	}

	session.Values["authenticated"] = true
	session.Values["staff_id"] = staff.ID
	session.AddFlash(FlashMessage{Type: "success", Message: "Welcome, " + staff.Username + "!"})
	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}

	slog.Info("Kitchen login successful", "staff_id", staff.ID)
	http.Redirect(w, r, "/kitchen", http.StatusSeeOther)
}

func (h *KitchenHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, kitchenSessionName)
	session.Values["authenticated"] = false
	delete(session.Values, "staff_id")
	h.flashRedirect(w, r, session, "success", "Logged out successfully!", "/kitchen/login")
}

// AuthMiddleware ensures a staff member is logged in
func (h *KitchenHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := h.SessionStore.Get(r, kitchenSessionName)
		if auth, ok := session.Values["authenticated"].(bool); !ok || !auth {
			slog.Debug("Kitchen console: not logged in", "path", r.URL.Path)
			h.flashRedirect(w, r, session, "error", "You must be logged in to access this page.", "/kitchen/login")
			return
		}
		next(w, r)
	}
}

func (h *KitchenHandler) Overview(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.KitchenStats(r.Context())
	if err != nil {
		slog.Error("Failed to load kitchen stats", "error", err)
		http.Error(w, "Error fetching stats", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, kitchenSessionName)
	h.render(w, r, session, "kitchen.html", map[string]interface{}{
		"Stats": stats,
	})
}

// Routes registers the console on mux. limiter guards the login form.
func (h *KitchenHandler) Routes(mux *http.ServeMux, limiter *RateLimiter) {
	mux.HandleFunc("GET /kitchen/login", h.LoginGet)
	mux.HandleFunc("POST /kitchen/login", limiter.Middleware(h.LoginPost))
	mux.HandleFunc("POST /kitchen/logout", h.Logout)

	mux.HandleFunc("GET /kitchen", h.AuthMiddleware(h.Overview))
	mux.HandleFunc("GET /kitchen/orders", h.AuthMiddleware(h.ListOrders))
	mux.HandleFunc("POST /kitchen/orders/status", h.AuthMiddleware(h.UpdateOrderStatus))

	mux.HandleFunc("GET /kitchen/dishes", h.AuthMiddleware(h.ListDishes))
	mux.HandleFunc("GET /kitchen/dishes/new", h.AuthMiddleware(h.NewDishForm))
	mux.HandleFunc("POST /kitchen/dishes", h.AuthMiddleware(h.CreateDish))
	mux.HandleFunc("GET /kitchen/dishes/edit", h.AuthMiddleware(h.EditDishForm))
	mux.HandleFunc("POST /kitchen/dishes/update", h.AuthMiddleware(h.UpdateDish))
	mux.HandleFunc("POST /kitchen/dishes/delete", h.AuthMiddleware(h.DeleteDish))
}
