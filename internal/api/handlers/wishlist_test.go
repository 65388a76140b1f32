package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/pricelens/internal/aggregate"
	"github.com/donaldgifford/pricelens/internal/api/handlers"
	"github.com/donaldgifford/pricelens/internal/notify"
	"github.com/donaldgifford/pricelens/internal/wishlist"
	domain "github.com/donaldgifford/pricelens/pkg/types"
)

type wishlistFixture struct {
	handler  *handlers.WishlistHandler
	tracker  *wishlist.Tracker
	store    *memStore
	searcher *stubSearcher
}

func newWishlistFixture() *wishlistFixture {
	ms := newMemStore()
	searcher := &stubSearcher{}
	tracker := wishlist.NewTracker(
		ms,
		searcher,
		notify.NewNoOpNotifier(quietLogger()),
		wishlist.WithLogger(quietLogger()),
	)
	return &wishlistFixture{
		handler:  handlers.NewWishlistHandler(tracker),
		tracker:  tracker,
		store:    ms,
		searcher: searcher,
	}
}

func wishlistContext(
	method, path, body, userID string,
	params map[string]string,
) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)

	for name, value := range params {
		c.SetParamNames(name)
		c.SetParamValues(value)
	}

	return c, rec
}

func trackBody() string {
	return `{
		"offer": {
			"title": "Sony WH-1000XM5 Wireless Headphones",
			"price": 29990,
			"store": "Amazon",
			"product_url": "https://www.amazon.in/dp/B09XS7JWHH"
		},
		"keywords": ["sony", "headphones"]
	}`
}

func (f *wishlistFixture) trackItem(t *testing.T) *domain.TrackedItem {
	t.Helper()
	c, rec := wishlistContext(http.MethodPost, "/api/v1/wishlist", trackBody(), "user-1", nil)
	require.NoError(t, f.handler.Track(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var item domain.TrackedItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	return &item
}

func TestWishlistHandler_Track(t *testing.T) {
	t.Parallel()

	f := newWishlistFixture()
	item := f.trackItem(t)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "user-1", item.OwnerID)
	assert.InDelta(t, 29990, item.OriginalPrice, 0.01)
	assert.Equal(t, domain.StateActive, item.State)
}

func TestWishlistHandler_Track_InvalidOffer(t *testing.T) {
	t.Parallel()

	f := newWishlistFixture()

	body := `{"offer": {"title": "", "price": 0}, "keywords": ["x"]}`
	c, rec := wishlistContext(http.MethodPost, "/api/v1/wishlist", body, "user-1", nil)
	require.NoError(t, f.handler.Track(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWishlistHandler_List(t *testing.T) {
	t.Parallel()

	f := newWishlistFixture()

	c, rec := wishlistContext(http.MethodGet, "/api/v1/wishlist", "", "user-1", nil)
	require.NoError(t, f.handler.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String(), "empty wishlist is an empty array, not null")

	f.trackItem(t)

	c, rec = wishlistContext(http.MethodGet, "/api/v1/wishlist", "", "user-1", nil)
	require.NoError(t, f.handler.List(c))

	var items []domain.TrackedItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	assert.Len(t, items, 1)
}

func TestWishlistHandler_Get(t *testing.T) {
	t.Parallel()

	f := newWishlistFixture()
	item := f.trackItem(t)

	c, rec := wishlistContext(
		http.MethodGet, "/api/v1/wishlist/"+item.ID, "", "user-1",
		map[string]string{"id": item.ID},
	)
	require.NoError(t, f.handler.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Another user cannot see the item.
	c, rec = wishlistContext(
		http.MethodGet, "/api/v1/wishlist/"+item.ID, "", "user-2",
		map[string]string{"id": item.ID},
	)
	require.NoError(t, f.handler.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWishlistHandler_SetTarget(t *testing.T) {
	t.Parallel()

	f := newWishlistFixture()
	item := f.trackItem(t)

	c, rec := wishlistContext(
		http.MethodPut, "/api/v1/wishlist/"+item.ID+"/target",
		`{"target_price": 24999}`, "user-1",
		map[string]string{"id": item.ID},
	)
	require.NoError(t, f.handler.SetTarget(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated domain.TrackedItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.NotNil(t, updated.TargetPrice)
	assert.InDelta(t, 24999, *updated.TargetPrice, 0.01)
}

func TestWishlistHandler_SetTarget_Invalid(t *testing.T) {
	t.Parallel()

	f := newWishlistFixture()
	item := f.trackItem(t)

	c, rec := wishlistContext(
		http.MethodPut, "/api/v1/wishlist/"+item.ID+"/target",
		`{"target_price": -10}`, "user-1",
		map[string]string{"id": item.ID},
	)
	require.NoError(t, f.handler.SetTarget(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWishlistHandler_SetTarget_NotFound(t *testing.T) {
	t.Parallel()

	f := newWishlistFixture()

	c, rec := wishlistContext(
		http.MethodPut, "/api/v1/wishlist/nope/target",
		`{"target_price": 100}`, "user-1",
		map[string]string{"id": "nope"},
	)
	require.NoError(t, f.handler.SetTarget(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWishlistHandler_AcknowledgeAndRefresh(t *testing.T) {
	t.Parallel()

	f := newWishlistFixture()
	item := f.trackItem(t)

	// Arm the item and drive the price below target via refresh.
	c, rec := wishlistContext(
		http.MethodPut, "/api/v1/wishlist/"+item.ID+"/target",
		`{"target_price": 25000}`, "user-1",
		map[string]string{"id": item.ID},
	)
	require.NoError(t, f.handler.SetTarget(c))
	require.Equal(t, http.StatusOK, rec.Code)

	f.searcher.result = aggregate.Result{Offers: []domain.Offer{{
		Title: "Sony WH-1000XM5", Price: 24990, Store: "Amazon",
	}}}

	c, rec = wishlistContext(
		http.MethodPost, "/api/v1/wishlist/"+item.ID+"/refresh", "", "user-1",
		map[string]string{"id": item.ID},
	)
	require.NoError(t, f.handler.Refresh(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var refreshed domain.TrackedItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refreshed))
	assert.Equal(t, domain.StateAlertFired, refreshed.State)
	assert.InDelta(t, 24990, refreshed.CurrentPrice, 0.01)

	c, rec = wishlistContext(
		http.MethodPost, "/api/v1/wishlist/"+item.ID+"/ack", "", "user-1",
		map[string]string{"id": item.ID},
	)
	require.NoError(t, f.handler.Acknowledge(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var acked domain.TrackedItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &acked))
	assert.Equal(t, domain.StateActive, acked.State)
}

func TestWishlistHandler_Refresh_OtherOwner(t *testing.T) {
	t.Parallel()

	f := newWishlistFixture()
	item := f.trackItem(t)

	c, rec := wishlistContext(
		http.MethodPost, "/api/v1/wishlist/"+item.ID+"/refresh", "", "user-2",
		map[string]string{"id": item.ID},
	)
	require.NoError(t, f.handler.Refresh(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWishlistHandler_Remove(t *testing.T) {
	t.Parallel()

	f := newWishlistFixture()
	item := f.trackItem(t)

	c, rec := wishlistContext(
		http.MethodDelete, "/api/v1/wishlist/"+item.ID, "", "user-1",
		map[string]string{"id": item.ID},
	)
	require.NoError(t, f.handler.Remove(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	c, rec = wishlistContext(
		http.MethodGet, "/api/v1/wishlist/"+item.ID, "", "user-1",
		map[string]string{"id": item.ID},
	)
	require.NoError(t, f.handler.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
