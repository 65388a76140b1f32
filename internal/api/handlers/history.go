package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/pricelens/internal/api/middleware"
	"github.com/donaldgifford/pricelens/internal/store"
	domain "github.com/donaldgifford/pricelens/pkg/types"
)

const defaultHistoryLimit = 50

// HistoryHandler serves the caller's search history.
type HistoryHandler struct {
	store store.Store
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(s store.Store) *HistoryHandler {
	return &HistoryHandler{store: s}
}

// List handles GET /api/v1/history.
//
// @Summary List search history
// @Description Returns the caller's most recent searches, newest first.
// @Tags history
// @Produce json
// @Param limit query int false "Maximum entries to return (default 50)"
// @Success 200 {array} domain.SearchRecord
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/history [get]
func (h *HistoryHandler) List(c echo.Context) error {
	limit := defaultHistoryLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "limit must be a positive integer",
			})
		}
		limit = n
	}

	records, err := h.store.ListSearchHistory(c.Request().Context(), middleware.UserID(c), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "listing search history: " + err.Error(),
		})
	}

	if records == nil {
		records = []domain.SearchRecord{}
	}

	return c.JSON(http.StatusOK, records)
}
