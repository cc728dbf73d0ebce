package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/garage-platform/internal/auth"
	httpHandler "github.com/vasiliy-maslov/garage-platform/internal/handler/http"
)

var (
	adminID    = &auth.Identity{UserID: "admin-1", Email: "admin@garage.test", Role: auth.RoleAdmin}
	customerID = &auth.Identity{UserID: "user-1", Email: "user@garage.test", Role: auth.RoleCustomer}
)

type routeRegistrar interface {
	RegisterRoutes(router chi.Router)
}

type envelope struct {
	Success bool                                `json:"success"`
	Message string                              `json:"message"`
	Data    json.RawMessage                     `json:"data"`
	Details []httpHandler.ValidationErrorDetail `json:"details"`
}

// serve runs one request through a fresh router. A non-nil identity is attached the way the
// authentication middleware would.
func serve(t *testing.T, h routeRegistrar, method, path, body string, id *auth.Identity) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	router := chi.NewRouter()
	h.RegisterRoutes(router)

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if id != nil {
		req = req.WithContext(auth.WithIdentity(req.Context(), *id))
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var env envelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env), "response body must be a JSON envelope")
	return rr, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}
