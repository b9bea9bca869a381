package handlers

import (
	"errors"
	"net/http"

	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/identity"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/session"
)

func (h *StorefrontHandler) authPage(p *page, status int, mode string, values map[string]string) {
	h.render(p, status, "auth.html", map[string]interface{}{
		"Title":  "Sign In",
		"Mode":   mode,
		"From":   safeRedirect(p.r.FormValue("from"), ""),
		"Values": values,
	})
}

func (h *StorefrontHandler) AuthPage(p *page) {
	mode := p.r.URL.Query().Get("mode")
	if mode != "signup" {
		mode = "signin"
	}
	h.authPage(p, http.StatusOK, mode, nil)
}

func (h *StorefrontHandler) SignIn(p *page) {
	email := p.r.FormValue("email")
	err := p.client.Session.SignIn(p.r.Context(), email, p.r.FormValue("password"))
	if err != nil {
		status := http.StatusUnauthorized
		if !errors.Is(err, identity.ErrInvalidCredentials) {
			status = http.StatusInternalServerError
		}
		h.authPage(p, status, "signin", map[string]string{"email": email})
		return
	}
	p.redirect(safeRedirect(p.r.FormValue("from"), session.LandingPath))
}

func (h *StorefrontHandler) SignUp(p *page) {
	email := p.r.FormValue("email")
	fullName := p.r.FormValue("full_name")
	err := p.client.Session.SignUp(p.r.Context(), email, p.r.FormValue("password"), fullName)
	if err != nil {
		status := http.StatusUnprocessableEntity
		switch {
		case errors.Is(err, identity.ErrEmailTaken):
			status = http.StatusConflict
		case errors.Is(err, identity.ErrInvalidEmail), errors.Is(err, identity.ErrWeakPassword), errors.Is(err, identity.ErrInvalidName):
		default:
			status = http.StatusInternalServerError
		}
		h.authPage(p, status, "signup", map[string]string{"email": email, "full_name": fullName})
		return
	}
	p.redirect(safeRedirect(p.r.FormValue("from"), session.LandingPath))
}

// SignOut always ends the session on this browser. A failed revocation has
// already been turned into a warning notice by the provider.
func (h *StorefrontHandler) SignOut(p *page) {
	_ = p.client.Session.SignOut(p.r.Context())
	p.redirect("/")
}
