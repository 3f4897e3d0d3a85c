package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/chocodelight/storefront/internal/catalog"
	"github.com/chocodelight/storefront/internal/favorites"
	"github.com/chocodelight/storefront/internal/inventory"
	"github.com/chocodelight/storefront/internal/orders"
	"github.com/chocodelight/storefront/internal/reviews"
)

func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// userID stands in for the session layer: the authenticated user id arrives
// in a header set by the auth proxy in front of this service.
func userID(r *http.Request) string {
	return r.Header.Get("X-User-Id")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"message": msg})
}

// writeError maps the domain error taxonomy onto HTTP statuses. Anything not
// recognized is a storage or programming fault and stays a 500 with a generic
// body.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, orders.ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, inventory.ErrInsufficientStock),
		errors.Is(err, orders.ErrCartEmpty),
		errors.Is(err, orders.ErrNotCancellable),
		errors.Is(err, orders.ErrValidation),
		errors.Is(err, reviews.ErrDuplicate),
		errors.Is(err, reviews.ErrInvalidRating),
		errors.Is(err, favorites.ErrAlreadyFavorite):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		writeMessage(w, http.StatusInternalServerError, "server error")
	}
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid := userID(r)
	if uid == "" {
		writeMessage(w, http.StatusUnauthorized, "missing user")
		return "", false
	}
	return uid, true
}
