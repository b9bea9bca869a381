package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/models"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/money"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/store"
)

const maxUploadSize = 10 << 20 // 10MB

const uploadsURL = "/static/uploads/"

// parseDishForm reads the dish fields shared by the create and edit forms.
func parseDishForm(r *http.Request) (models.Dish, map[string]string) {
	errs := make(map[string]string)

	d := models.Dish{
		ID:          strings.TrimSpace(r.FormValue("id")),
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Popular:     r.FormValue("popular") == "on",
		InStock:     r.FormValue("in_stock") == "on",
	}
	if d.Name == "" {
		errs["name"] = "Name is required."
	}

	price, err := money.Parse(r.FormValue("price"))
	if err != nil {
		errs["price"] = "Price must be a whole naira amount, e.g. 2500."
	}
	d.Price = price

	category, err := models.ParseCategory(r.FormValue("category"))
	if err != nil {
		errs["category"] = "Invalid category selected."
	}
	d.Category = category

	for _, ing := range strings.Split(r.FormValue("ingredients"), ",") {
		if ing = strings.TrimSpace(ing); ing != "" {
			d.Ingredients = append(d.Ingredients, ing)
		}
	}
	return d, errs
}

// storeUpload saves the optional "image" file of the form. It returns an
// empty URL when no file was sent.
func (h *KitchenHandler) storeUpload(r *http.Request) (string, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	name, err := saveDishImage(file, header.Filename, h.UploadDir)
	if err != nil {
		return "", err
	}
	return uploadsURL + name, nil
}

func (h *KitchenHandler) flashErrors(session *sessions.Session, errs map[string]string) {
	for _, msg := range errs {
		session.AddFlash(FlashMessage{Type: "error", Message: msg})
	}
}

func (h *KitchenHandler) CreateDish(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, kitchenSessionName)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.flashRedirect(w, r, session, "error", "File too large. Max 10MB.", "/kitchen/dishes/new")
		return
	}

	dish, errs := parseDishForm(r)
	if dish.ID == "" {
		dish.ID = uuid.NewString()
	}
	if len(errs) > 0 {
		h.flashErrors(session, errs)
		session.Save(r, w)
		http.Redirect(w, r, "/kitchen/dishes/new", http.StatusSeeOther)
		return
	}

	image, err := h.storeUpload(r)
	if err != nil {
		slog.Warn("Dish image upload failed", "error", err)
		h.flashRedirect(w, r, session, "error", "Error saving image: "+err.Error(), "/kitchen/dishes/new")
		return
	}
	dish.Image = image

	if err := h.Store.CreateDish(r.Context(), &dish); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			h.flashRedirect(w, r, session, "error", "A dish with that ID already exists.", "/kitchen/dishes/new")
			return
		}
		slog.Error("Failed to create dish", "error", err)
		h.flashRedirect(w, r, session, "error", "Error saving dish to database.", "/kitchen/dishes/new")
		return
	}

	slog.Info("Dish created", "dish", dish.ID, "name", dish.Name)
	h.flashRedirect(w, r, session, "success", "Dish added successfully!", "/kitchen/dishes")
}

func (h *KitchenHandler) UpdateDish(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, kitchenSessionName)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.flashRedirect(w, r, session, "error", "File too large. Max 10MB.", "/kitchen/dishes")
		return
	}

	dish, errs := parseDishForm(r)
	editURL := "/kitchen/dishes/edit?id=" + url.QueryEscape(dish.ID)
	if len(errs) > 0 {
		h.flashErrors(session, errs)
		session.Save(r, w)
		http.Redirect(w, r, editURL, http.StatusSeeOther)
		return
	}

	if err := h.Store.UpdateDish(r.Context(), &dish); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.flashRedirect(w, r, session, "error", "Dish not found.", "/kitchen/dishes")
			return
		}
		slog.Error("Failed to update dish", "dish", dish.ID, "error", err)
		h.flashRedirect(w, r, session, "error", "Error updating dish.", editURL)
		return
	}

	image, err := h.storeUpload(r)
	if err != nil {
		slog.Warn("Dish image upload failed", "dish", dish.ID, "error", err)
		h.flashRedirect(w, r, session, "error", "Dish saved but the image was not: "+err.Error(), editURL)
		return
	}
	if image != "" {
		if err := h.Store.UpdateDishImage(r.Context(), dish.ID, image); err != nil {
			slog.Error("Failed to update dish image", "dish", dish.ID, "error", err)
		}
	}

	h.flashRedirect(w, r, session, "success", "Dish updated successfully!", "/kitchen/dishes")
}

func (h *KitchenHandler) DeleteDish(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, kitchenSessionName)

	id := r.FormValue("id")
	if err := h.Store.DeleteDish(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.flashRedirect(w, r, session, "error", "Dish not found.", "/kitchen/dishes")
			return
		}
		slog.Error("Failed to delete dish", "dish", id, "error", err)
		h.flashRedirect(w, r, session, "error", "Error deleting dish.", "/kitchen/dishes")
		return
	}

	h.flashRedirect(w, r, session, "success", "Dish deleted successfully!", "/kitchen/dishes")
}
