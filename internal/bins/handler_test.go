package bins

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func TestHandlerDefaultsNilLogger(t *testing.T) {
	cfg := testConfig(t)
	catalog, err := NewCatalog(cfg)
	require.NoError(t, err)

	handler := NewHandler(nil, catalog, NewScorer(cfg))
	r := chi.NewRouter()
	r.Route("/bins", handler.MountRoutes)

	// Toggling logs the status change; a nil logger must not panic.
	req := httptest.NewRequest(http.MethodPost, "/bins/A-01-1/toggle", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var record Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &record))
	require.Equal(t, StatusDisabled, record.Status)

	req = httptest.NewRequest(http.MethodPost, "/bins/Z-01-1/toggle", nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNotFound, rr.Code)
}
