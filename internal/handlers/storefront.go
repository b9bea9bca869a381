package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"

	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/browser"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/catalog"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/checkout"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/dashboard"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/models"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/notice"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/session"
)

const (
	browserSessionName = "olas-session"
	browserIDKey       = "browser_id"
	tokenKey           = "token"

	defaultResolveTimeout = 3 * time.Second
)

// OrderReader is what the confirmation page needs from the order store.
type OrderReader interface {
	GetOrder(ctx context.Context, id string) (models.Order, error)
	ListOrderLines(ctx context.Context, orderIDs ...string) (map[string][]models.OrderLine, error)
}

// StorefrontHandler serves the customer facing site. Every request is tied
// to a browser client holding that browser's cart and session state.
type StorefrontHandler struct {
	Catalog        catalog.Catalog
	Orders         OrderReader
	Checkout       *checkout.Service
	Dashboard      *dashboard.Aggregator
	Clients        *browser.Registry
	SessionStore   sessions.Store
	Templates      *TemplateCache
	ResolveTimeout time.Duration
}

// page is one request from one browser, with that browser's client locked.
type page struct {
	w      http.ResponseWriter
	r      *http.Request
	client *browser.Client
	cookie *sessions.Session
}

func (p *page) state() session.State { return p.client.Session.State() }

func (p *page) notify(level notice.Level, msg string) {
	p.client.Notices.Notify(notice.Notice{Level: level, Message: msg})
}

// save writes the browser cookie. It must run before anything is written to
// the response.
func (p *page) save() {
	p.cookie.Values[tokenKey] = p.client.Session.Token()
	if err := p.cookie.Save(p.r, p.w); err != nil {
		slog.Error("Failed to save browser session", "error", err)
	}
}

func (p *page) redirect(target string) {
	p.save()
	http.Redirect(p.w, p.r, target, http.StatusSeeOther)
}

type clientHandler func(p *page)

// withClient resolves the browser client for the request and runs next with
// the client locked.
func (h *StorefrontHandler) withClient(next clientHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, _ := h.SessionStore.Get(r, browserSessionName)
		id, _ := cookie.Values[browserIDKey].(string)
		if id == "" {
			id = uuid.NewString()
			cookie.Values[browserIDKey] = id
		}
		token, _ := cookie.Values[tokenKey].(string)

		client := h.Clients.Get(id, token)
		client.Lock()
		defer client.Unlock()

		if client.Session.State().Status == session.StatusPending {
			timeout := h.ResolveTimeout
			if timeout <= 0 {
				timeout = defaultResolveTimeout
			}
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			if err := client.Session.Resolve(ctx); err != nil {
				slog.Warn("Session still pending", "browser", id, "error", err)
			}
			cancel()
		}

		next(&page{w: w, r: r, client: client, cookie: cookie})
	}
}

// gated applies the session gate before next. While the session is pending no
// redirect decision is made and a loading page is served instead.
func (h *StorefrontHandler) gated(access session.Access, next clientHandler) http.HandlerFunc {
	return h.withClient(func(p *page) {
		d := session.Decide(p.state(), access, p.r.URL.RequestURI())
		switch d.Outcome {
		case session.OutcomeLoading:
			h.loading(p)
		case session.OutcomeRedirect:
			p.redirect(d.Target)
		default:
			next(p)
		}
	})
}

func (h *StorefrontHandler) loading(p *page) {
	p.save()
	p.w.Header().Set("Refresh", "2")
	p.w.Header().Set("Cache-Control", "no-store")
	h.Templates.Render(p.w, http.StatusOK, "loading.html", map[string]interface{}{
		"Path": p.r.URL.RequestURI(),
	})
}

func (h *StorefrontHandler) render(p *page, status int, name string, data map[string]interface{}) {
	if data == nil {
		data = make(map[string]interface{})
	}
	st := p.state()
	var flashes []FlashMessage
	for _, n := range p.client.Notices.Drain() {
		flashes = append(flashes, flashFromNotice(n))
	}
	data["Flashes"] = flashes
	data["CsrfField"] = csrf.TemplateField(p.r)
	data["CartCount"] = p.client.Cart.TotalItemCount()
	data["SignedIn"] = st.Authenticated()
	data["Pending"] = st.Status == session.StatusPending
	if st.Identity != nil {
		data["User"] = *st.Identity
	}
	if _, ok := data["Title"]; !ok {
		data["Title"] = "Ola's Kitchen"
	}

	p.save()
	h.Templates.Render(p.w, status, name, data)
}

func (h *StorefrontHandler) serverError(p *page, msg string, err error) {
	slog.Error(msg, "path", p.r.URL.Path, "error", err)
	p.save()
	http.Error(p.w, msg, http.StatusInternalServerError)
}

// safeRedirect only follows local paths.
func safeRedirect(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	if u, err := url.Parse(target); err != nil || u.Host != "" || u.Scheme != "" {
		return fallback
	}
	return target
}

// Routes registers the storefront on mux. limiter guards the credential and
// order posts.
func (h *StorefrontHandler) Routes(mux *http.ServeMux, limiter *RateLimiter) {
	public := func(next clientHandler) http.HandlerFunc { return h.gated(session.AccessPublic, next) }
	protected := func(next clientHandler) http.HandlerFunc { return h.gated(session.AccessProtected, next) }
	publicOnly := func(next clientHandler) http.HandlerFunc { return h.gated(session.AccessPublicOnly, next) }

	mux.HandleFunc("GET /{$}", public(h.Home))
	mux.HandleFunc("GET /menu", public(h.Menu))
	mux.HandleFunc("GET /dishes/{id}", public(h.Dish))
	mux.HandleFunc("GET /about", public(h.About))

	mux.HandleFunc("GET /cart", public(h.Cart))
	mux.HandleFunc("POST /cart/add", public(h.CartAdd))
	mux.HandleFunc("POST /cart/update", public(h.CartUpdate))
	mux.HandleFunc("POST /cart/remove", public(h.CartRemove))
	mux.HandleFunc("POST /cart/clear", public(h.CartClear))

	mux.HandleFunc("GET /auth", publicOnly(h.AuthPage))
	mux.HandleFunc("POST /auth/signin", limiter.Middleware(publicOnly(h.SignIn)))
	mux.HandleFunc("POST /auth/signup", limiter.Middleware(publicOnly(h.SignUp)))
	mux.HandleFunc("POST /auth/signout", h.withClient(h.SignOut))

	mux.HandleFunc("GET /checkout", protected(h.CheckoutPage))
	mux.HandleFunc("POST /checkout", limiter.Middleware(protected(h.PlaceOrder)))
	mux.HandleFunc("GET /orders/{id}/confirmation", protected(h.Confirmation))
	mux.HandleFunc("GET /dashboard", protected(h.DashboardPage))

	mux.HandleFunc("/", public(h.NotFound))
}
