package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireUser(t *testing.T) {
	t.Parallel()

	t.Run("missing header is rejected", func(t *testing.T) {
		t.Parallel()

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/wishlist", http.NoBody)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := RequireUser()(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})

		err := handler(c)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), UserIDHeader)
	})

	t.Run("header value reaches the handler", func(t *testing.T) {
		t.Parallel()

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/wishlist", http.NoBody)
		req.Header.Set(UserIDHeader, "user-42")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		var seen string
		handler := RequireUser()(func(c echo.Context) error {
			seen = UserID(c)
			return c.NoContent(http.StatusOK)
		})

		err := handler(c)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-42", seen)
	})
}

func TestUserID_Unset(t *testing.T) {
	t.Parallel()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	c := e.NewContext(req, httptest.NewRecorder())

	assert.Empty(t, UserID(c))
}
