package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chocodelight/storefront/internal/catalog"
	"github.com/chocodelight/storefront/internal/favorites"
	"github.com/chocodelight/storefront/internal/inventory"
	"github.com/chocodelight/storefront/internal/orders"
	"github.com/chocodelight/storefront/internal/reviews"
)

func TestWriteErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"product not found", catalog.ErrNotFound, http.StatusNotFound},
		{"order not found", orders.ErrNotFound, http.StatusNotFound},
		{"insufficient stock", &inventory.StockError{Shortfalls: []inventory.Shortfall{{ProductID: "p", Requested: 2, Available: 1}}}, http.StatusBadRequest},
		{"cart empty", orders.ErrCartEmpty, http.StatusBadRequest},
		{"not cancellable", orders.ErrNotCancellable, http.StatusBadRequest},
		{"validation", &orders.ValidationError{Reason: "bad"}, http.StatusBadRequest},
		{"duplicate review", reviews.ErrDuplicate, http.StatusBadRequest},
		{"invalid rating", reviews.ErrInvalidRating, http.StatusBadRequest},
		{"already favorite", favorites.ErrAlreadyFavorite, http.StatusBadRequest},
		{"storage fault", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, c.err)
			assert.Equal(t, c.code, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.NotEmpty(t, body["message"])
			if c.code == http.StatusInternalServerError {
				assert.Equal(t, "server error", body["message"], "internal detail must not leak")
			}
		})
	}
}

func TestRequireUser(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)

	_, ok := requireUser(rec, req)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req.Header.Set("X-User-Id", "u1")
	uid, ok := requireUser(rec, req)
	assert.True(t, ok)
	assert.Equal(t, "u1", uid)
}

func TestHealthz(t *testing.T) {
	r := NewRouter()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
