package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/pricelens/internal/aggregate"
	"github.com/donaldgifford/pricelens/internal/api/middleware"
	"github.com/donaldgifford/pricelens/internal/store"
	"github.com/donaldgifford/pricelens/internal/vision"
	domain "github.com/donaldgifford/pricelens/pkg/types"
)

// maxImageBytes caps uploaded image size at 5 MiB.
const maxImageBytes = 5 << 20

// Searcher runs one aggregated offer search across all retail sources.
type Searcher interface {
	Search(ctx context.Context, keywords *domain.KeywordSet) aggregate.Result
}

// KeywordExtractor turns image bytes into search keywords.
type KeywordExtractor interface {
	ExtractKeywords(ctx context.Context, image []byte) (*domain.KeywordSet, error)
}

// SearchHandler handles text and image search requests.
type SearchHandler struct {
	searcher  Searcher
	extractor KeywordExtractor
	store     store.Store
	logger    *slog.Logger
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(
	searcher Searcher,
	extractor KeywordExtractor,
	s store.Store,
	logger *slog.Logger,
) *SearchHandler {
	return &SearchHandler{
		searcher:  searcher,
		extractor: extractor,
		store:     s,
		logger:    logger,
	}
}

// SearchResponse is the shared search response body.
type SearchResponse struct {
	Keywords    []string               `json:"keywords" doc:"Keywords the search ran with"`
	Offers      []domain.Offer         `json:"offers" doc:"Merged offers, cheapest first"`
	Diagnostics []aggregate.Diagnostic `json:"diagnostics" doc:"Per-source search outcome"`
}

// TextSearchInput is the request for the text search endpoint.
type TextSearchInput struct {
	UserID string `header:"X-User-ID" doc:"Calling user ID"`
	Query  string `query:"query" required:"true" minLength:"1" doc:"Free-text search query" example:"sony wireless headphones"`
}

// TextSearchOutput is the response for the text search endpoint.
type TextSearchOutput struct {
	Body SearchResponse
}

// SearchText runs a text query against all retail sources.
func (h *SearchHandler) SearchText(
	ctx context.Context,
	input *TextSearchInput,
) (*TextSearchOutput, error) {
	if input.UserID == "" {
		return nil, huma.Error401Unauthorized("missing X-User-ID header")
	}

	keywords := domain.NewKeywordSet(strings.Fields(input.Query)...)

	result := h.searcher.Search(ctx, keywords)
	h.recordSearch(ctx, input.UserID, domain.QueryTypeText, keywords, len(result.Offers))

	out := &TextSearchOutput{}
	out.Body = buildSearchResponse(keywords, result)
	return out, nil
}

// RegisterSearchRoutes registers search endpoints with the Huma API.
func RegisterSearchRoutes(api huma.API, h *SearchHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "search-text",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/text",
		Summary:     "Search retail sources by text",
		Description: "Runs a free-text query against all enabled retail sources and returns merged offers sorted by ascending price.",
		Tags:        []string{"search"},
		Errors:      []int{http.StatusUnauthorized, http.StatusUnprocessableEntity},
	}, h.SearchText)
}

// SearchImage handles POST /api/v1/search/image: a multipart upload whose
// "image" part is analyzed for keywords, which then drive a source search.
//
// @Summary Search retail sources by product image
// @Description Extracts keywords from an uploaded image and searches all enabled retail sources.
// @Tags search
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Product photo (max 5 MiB)"
// @Success 200 {object} SearchResponse
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/v1/search/image [post]
func (h *SearchHandler) SearchImage(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "multipart field 'image' is required",
		})
	}
	if fileHeader.Size > maxImageBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{
			"error": "image exceeds the 5 MiB limit",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "reading uploaded image: " + err.Error(),
		})
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "reading uploaded image: " + err.Error(),
		})
	}
	if len(image) > maxImageBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{
			"error": "image exceeds the 5 MiB limit",
		})
	}

	if err := vision.CheckImage(image); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "uploaded file is not an image",
		})
	}

	keywords, err := h.extractor.ExtractKeywords(ctx, image)
	if err != nil {
		if errors.Is(err, vision.ErrUnsupportedImage) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "uploaded file is not an image",
			})
		}
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": "image analysis unavailable",
		})
	}

	// An image the analyzer finds nothing in is a valid, empty search.
	if keywords.Len() == 0 {
		return c.JSON(http.StatusOK, SearchResponse{
			Keywords: []string{},
			Offers:   []domain.Offer{},
		})
	}

	result := h.searcher.Search(ctx, keywords)
	h.recordSearch(ctx, userID, domain.QueryTypeImage, keywords, len(result.Offers))

	return c.JSON(http.StatusOK, buildSearchResponse(keywords, result))
}

func (h *SearchHandler) recordSearch(
	ctx context.Context,
	userID string,
	queryType string,
	keywords *domain.KeywordSet,
	offerCount int,
) {
	if userID == "" {
		return
	}
	rec := &domain.SearchRecord{
		OwnerID:    userID,
		QueryType:  queryType,
		Keywords:   keywords.Words(),
		OfferCount: offerCount,
	}
	if err := h.store.RecordSearch(ctx, rec); err != nil {
		// History is best effort and never fails a search.
		h.logger.Error("recording search history failed", "error", err)
	}
}

func buildSearchResponse(keywords *domain.KeywordSet, result aggregate.Result) SearchResponse {
	resp := SearchResponse{
		Keywords:    keywords.Words(),
		Offers:      result.Offers,
		Diagnostics: result.Diagnostics,
	}
	if resp.Offers == nil {
		resp.Offers = []domain.Offer{}
	}
	return resp
}
