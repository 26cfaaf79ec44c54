package marketplace_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodegas-api/internal/infrastructure/marketplace"
)

func TestFetchListings_ParseaPagina(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/123/items", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("offset"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"paging": {"total": 12, "offset": 10, "limit": 2},
			"results": [
				{"id": "MLC1", "title": "Polera", "status": "active", "price": 9990, "available_quantity": 3, "sold_quantity": 7, "permalink": "https://x/1"},
				{"id": "MLC2", "title": "Gorro", "status": "paused", "price": 4990.5, "available_quantity": 0, "sold_quantity": 1}
			]
		}`))
	}))
	defer srv.Close()

	c := marketplace.NewClient(srv.URL+"/", "tok", 5)
	page, err := c.FetchListings(context.Background(), "123", 10, 2)
	require.NoError(t, err)
	assert.Equal(t, 12, page.Total)
	require.Len(t, page.Listings, 2)
	assert.Equal(t, "MLC1", page.Listings[0].ID)
	assert.Equal(t, "9990", page.Listings[0].Price.String())
	assert.Equal(t, 3, page.Listings[0].AvailableQty)
	assert.Equal(t, "4990.5", page.Listings[1].Price.String())
	assert.Contains(t, string(page.Listings[1].Raw), `"paused"`)
}

func TestFetchListings_ErrorHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "invalid access token", "error": "unauthorized"}`))
	}))
	defer srv.Close()

	_, err := marketplace.NewClient(srv.URL, "bad", 5).FetchListings(context.Background(), "123", 0, 50)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "invalid access token")
}
