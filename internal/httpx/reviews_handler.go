package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chocodelight/storefront/internal/reviews"
)

type ReviewsHandler struct {
	Repo *reviews.Repo
}

type addReviewReq struct {
	ProductID string `json:"productId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

func (h *ReviewsHandler) Register(r *chi.Mux) {
	r.Get("/reviews/product/{productId}", h.listByProduct)
	r.Post("/reviews", h.add)
}

func (h *ReviewsHandler) listByProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := reqCtx(r)
	defer cancel()

	out, err := h.Repo.ListByProduct(ctx, chi.URLParam(r, "productId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ReviewsHandler) add(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req addReviewReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := reqCtx(r)
	defer cancel()

	rev, err := h.Repo.Add(ctx, uid, req.ProductID, req.Rating, req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rev)
}
