package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chocodelight/storefront/internal/favorites"
)

type FavoritesHandler struct {
	Repo *favorites.Repo
}

func (h *FavoritesHandler) Register(r *chi.Mux) {
	r.Get("/favorites", h.list)
	r.Post("/favorites/add", h.add)
	r.Delete("/favorites/remove/{productId}", h.remove)
}

func (h *FavoritesHandler) list(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := reqCtx(r)
	defer cancel()

	out, err := h.Repo.List(ctx, uid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *FavoritesHandler) add(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		ProductID string `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := reqCtx(r)
	defer cancel()

	if err := h.Repo.Add(ctx, uid, req.ProductID); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Added to favorites")
}

func (h *FavoritesHandler) remove(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := reqCtx(r)
	defer cancel()

	if err := h.Repo.Remove(ctx, uid, chi.URLParam(r, "productId")); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Removed from favorites")
}
