package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/pricelens/pkg/types"
)

func TestClient_ConnectionRefused(t *testing.T) {
	t.Parallel()

	c := New("http://127.0.0.1:1") // nothing listening
	_, err := c.ListItems(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API server not running")
}

func TestClient_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.ListItems(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error (HTTP 500)")
}

func TestClient_SendsUserHeader(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "user-1", r.Header.Get("X-User-ID"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithUser("user-1"))
	_, err := c.ListItems(context.Background())
	require.NoError(t, err)
}

func TestClient_SearchText(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/search/text", r.URL.Path)
		assert.Equal(t, "sony headphones", r.URL.Query().Get("query"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(SearchResult{
			Keywords: []string{"sony", "headphones"},
			Offers:   []domain.Offer{{Title: "Sony WH-1000XM5", Price: 26990, Store: "Amazon"}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, WithUser("user-1"))
	result, err := c.SearchText(context.Background(), "sony headphones")
	require.NoError(t, err)
	assert.Equal(t, []string{"sony", "headphones"}, result.Keywords)
	require.Len(t, result.Offers, 1)
	assert.InDelta(t, 26990, result.Offers[0].Price, 0.01)
}

func TestClient_SearchImage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/search/image", r.URL.Path)
		assert.Contains(t, r.Header.Get("Content-Type"), "multipart/form-data")

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "photo.png", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(SearchResult{Keywords: []string{"sony"}})
	}))
	defer srv.Close()

	c := New(srv.URL, WithUser("user-1"))
	result, err := c.SearchImage(context.Background(), "photo.png", bytes.NewReader([]byte("img")))
	require.NoError(t, err)
	assert.Equal(t, []string{"sony"}, result.Keywords)
}

func TestClient_Track(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/wishlist", r.URL.Path)

		var req trackRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"sony"}, req.Keywords)

		item := domain.TrackedItem{ID: "item-1", Title: req.Offer.Title}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(item)
	}))
	defer srv.Close()

	c := New(srv.URL, WithUser("user-1"))
	item, err := c.Track(context.Background(), domain.Offer{
		Title: "Sony WH-1000XM5", Price: 29990, Store: "Amazon",
	}, []string{"sony"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "item-1", item.ID)
}

func TestClient_SetTarget(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/wishlist/item-1/target", r.URL.Path)

		var req targetRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.TargetPrice)
		assert.InDelta(t, 24999, *req.TargetPrice, 0.01)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(domain.TrackedItem{ID: "item-1", TargetPrice: req.TargetPrice})
	}))
	defer srv.Close()

	c := New(srv.URL, WithUser("user-1"))
	target := 24999.0
	item, err := c.SetTarget(context.Background(), "item-1", &target)
	require.NoError(t, err)
	require.NotNil(t, item.TargetPrice)
}

func TestClient_RemoveItem(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/v1/wishlist/item-1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, WithUser("user-1"))
	require.NoError(t, c.RemoveItem(context.Background(), "item-1"))
}

func TestClient_ListHistory(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/history", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]domain.SearchRecord{{ID: "s1", QueryType: domain.QueryTypeText}})
	}))
	defer srv.Close()

	c := New(srv.URL, WithUser("user-1"))
	records, err := c.ListHistory(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestWithHTTPClient(t *testing.T) {
	t.Parallel()

	custom := &http.Client{}
	c := New("http://example.com", WithHTTPClient(custom))
	assert.Same(t, custom, c.httpClient)
}
