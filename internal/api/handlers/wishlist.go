package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/pricelens/internal/api/middleware"
	"github.com/donaldgifford/pricelens/internal/store"
	"github.com/donaldgifford/pricelens/internal/wishlist"
	domain "github.com/donaldgifford/pricelens/pkg/types"
)

// WishlistHandler handles wishlist item operations.
type WishlistHandler struct {
	tracker *wishlist.Tracker
}

// NewWishlistHandler creates a new WishlistHandler.
func NewWishlistHandler(t *wishlist.Tracker) *WishlistHandler {
	return &WishlistHandler{tracker: t}
}

// trackRequest is the body for adding an offer to the wishlist. The target
// price is optional; it can also be set later via the target endpoint.
type trackRequest struct {
	Offer       domain.Offer `json:"offer"`
	Keywords    []string     `json:"keywords"`
	TargetPrice *float64     `json:"target_price,omitempty" example:"24999.00"`
}

// targetRequest is the body for setting a target price. A null target
// clears it.
type targetRequest struct {
	TargetPrice *float64 `json:"target_price" example:"24999.00"`
}

// Track handles POST /api/v1/wishlist.
//
// @Summary Track an offer
// @Description Saves an offer to the caller's wishlist for price tracking.
// @Tags wishlist
// @Accept json
// @Produce json
// @Param body body trackRequest true "Offer and the keywords to refresh it with"
// @Success 201 {object} domain.TrackedItem
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/wishlist [post]
func (h *WishlistHandler) Track(c echo.Context) error {
	var req trackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body: " + err.Error(),
		})
	}

	item, err := h.tracker.Track(
		c.Request().Context(), middleware.UserID(c), req.Offer, req.Keywords, req.TargetPrice,
	)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusCreated, item)
}

// List handles GET /api/v1/wishlist.
//
// @Summary List wishlist items
// @Description Returns all of the caller's tracked items, newest first.
// @Tags wishlist
// @Produce json
// @Success 200 {array} domain.TrackedItem
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/wishlist [get]
func (h *WishlistHandler) List(c echo.Context) error {
	items, err := h.tracker.List(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "listing wishlist: " + err.Error(),
		})
	}

	if items == nil {
		items = []domain.TrackedItem{}
	}

	return c.JSON(http.StatusOK, items)
}

// Get handles GET /api/v1/wishlist/:id.
//
// @Summary Get a tracked item
// @Tags wishlist
// @Produce json
// @Param id path string true "Item UUID"
// @Success 200 {object} domain.TrackedItem
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/wishlist/{id} [get]
func (h *WishlistHandler) Get(c echo.Context) error {
	item, err := h.tracker.Get(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return h.itemError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// SetTarget handles PUT /api/v1/wishlist/:id/target.
//
// @Summary Set or clear the target price
// @Description Sets the price at which a drop alert fires. A null target disables alerting.
// @Tags wishlist
// @Accept json
// @Produce json
// @Param id path string true "Item UUID"
// @Param body body targetRequest true "Target price"
// @Success 200 {object} domain.TrackedItem
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/wishlist/{id}/target [put]
func (h *WishlistHandler) SetTarget(c echo.Context) error {
	var req targetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body: " + err.Error(),
		})
	}

	item, err := h.tracker.SetTarget(
		c.Request().Context(), middleware.UserID(c), c.Param("id"), req.TargetPrice,
	)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrVersionConflict) {
			return h.itemError(c, err)
		}
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, item)
}

// Acknowledge handles POST /api/v1/wishlist/:id/ack.
//
// @Summary Acknowledge a fired alert
// @Description Re-arms the item so a future price drop can alert again.
// @Tags wishlist
// @Produce json
// @Param id path string true "Item UUID"
// @Success 200 {object} domain.TrackedItem
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/wishlist/{id}/ack [post]
func (h *WishlistHandler) Acknowledge(c echo.Context) error {
	item, err := h.tracker.Acknowledge(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return h.itemError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// Refresh handles POST /api/v1/wishlist/:id/refresh.
//
// @Summary Refresh an item's price now
// @Description Re-searches the item's keywords immediately instead of waiting for the next cycle.
// @Tags wishlist
// @Produce json
// @Param id path string true "Item UUID"
// @Success 200 {object} domain.TrackedItem
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/wishlist/{id}/refresh [post]
func (h *WishlistHandler) Refresh(c echo.Context) error {
	// Ownership check first: refresh itself is owner-agnostic.
	if _, err := h.tracker.Get(c.Request().Context(), middleware.UserID(c), c.Param("id")); err != nil {
		return h.itemError(c, err)
	}

	item, err := h.tracker.RefreshItem(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.itemError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// Remove handles DELETE /api/v1/wishlist/:id.
//
// @Summary Remove a tracked item
// @Description Soft-deletes the item; its price history is retained.
// @Tags wishlist
// @Param id path string true "Item UUID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/wishlist/{id} [delete]
func (h *WishlistHandler) Remove(c echo.Context) error {
	if err := h.tracker.Remove(c.Request().Context(), middleware.UserID(c), c.Param("id")); err != nil {
		return h.itemError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (*WishlistHandler) itemError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "item not found",
		})
	case errors.Is(err, store.ErrVersionConflict):
		return c.JSON(http.StatusConflict, map[string]string{
			"error": "item was modified concurrently, retry",
		})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
	}
}
