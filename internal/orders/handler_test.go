package orders

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/meridian-shop/meridian/internal/authz"
)

func newTestRouter(repo *memRepo) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	az := authz.Middleware{Logger: logger}
	h := NewHandler(logger, testService(repo))

	r := chi.NewRouter()
	r.Use(az.Resolve)
	r.Route("/api", func(api chi.Router) {
		h.MountRoutes(api, az)
	})
	return r
}

func doRequest(t *testing.T, router http.Handler, method, path, actorID, roles, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if actorID != "" {
		req.Header.Set(authz.HeaderActorID, actorID)
		req.Header.Set(authz.HeaderActorRoles, roles)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlerCreateAndGet(t *testing.T) {
	repo := newMemRepo()
	repo.seedPrice(1, 101, "Desk Lamp", "19.99")
	repo.seedStock(101, 1, "10", "0")
	router := newTestRouter(repo)

	body := `{"office_id":1,"delivery_method":"Pickup","payment_method":"Online",
"items":[{"price_line_id":1,"quantity":"2"}]}`

	rec := doRequest(t, router, http.MethodPost, "/api/orders", "7", "client", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), `"total":"39.98"`)

	rec = doRequest(t, router, http.MethodGet, "/api/orders/1", "7", "client", "")
	require.Equal(t, http.StatusOK, rec.Code)

	// another client may not read it
	rec = doRequest(t, router, http.MethodGet, "/api/orders/1", "8", "client", "")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandlerRequiresActor(t *testing.T) {
	router := newTestRouter(newMemRepo())

	rec := doRequest(t, router, http.MethodPost, "/api/orders", "", "", `{}`)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/orders/my", "", "", "")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandlerItemsAreImmutable(t *testing.T) {
	repo := newMemRepo()
	repo.seedPrice(1, 101, "Desk Lamp", "19.99")
	repo.seedStock(101, 1, "10", "0")
	router := newTestRouter(repo)

	rec := doRequest(t, router, http.MethodPut, "/api/orders/1/items", "7", "client", `{"items":[]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "forbidden")
}

func TestHandlerStatusChangeRequiresManagerRole(t *testing.T) {
	repo := newMemRepo()
	repo.seedPrice(1, 101, "Desk Lamp", "19.99")
	repo.seedStock(101, 1, "10", "0")
	router := newTestRouter(repo)

	body := `{"office_id":1,"delivery_method":"Pickup","payment_method":"Online",
"items":[{"price_line_id":1,"quantity":"1"}]}`
	rec := doRequest(t, router, http.MethodPost, "/api/orders", "7", "client", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/orders/1/status", "7", "client", `{"status":"Processing"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/orders/1/status", "100", "staff", `{"status":"Processing"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), `"status":"Processing"`)

	rec = doRequest(t, router, http.MethodPost, "/api/orders/1/status", "100", "staff", `{"status":"Teleported"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerInsufficientStockIsConflict(t *testing.T) {
	repo := newMemRepo()
	repo.seedPrice(1, 101, "Desk Lamp", "19.99")
	repo.seedStock(101, 1, "1", "0")
	router := newTestRouter(repo)

	body := `{"office_id":1,"delivery_method":"Pickup","payment_method":"Online",
"items":[{"price_line_id":1,"quantity":"5"}]}`
	rec := doRequest(t, router, http.MethodPost, "/api/orders", "7", "client", body)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "Desk Lamp")
}
