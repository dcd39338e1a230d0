package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/cartwise/backend/internal/domain"
	"github.com/cartwise/backend/internal/observability"
	"github.com/cartwise/backend/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// SessionHeader carries the chat session id between requests.
	SessionHeader = "X-Session-ID"

	maxListLimit = 50
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	search     *usecase.SearchService
	classifier *usecase.IntentClassifier
	logger     *observability.Logger
}

// NewHandler creates a new HTTP handler. A nil search service makes the
// product endpoints answer 503.
func NewHandler(search *usecase.SearchService, logger *observability.Logger) *Handler {
	if logger == nil {
		logger = observability.Nop()
	}

	h := &Handler{search: search, logger: logger.WithComponent("http")}
	if search != nil {
		h.classifier = usecase.NewIntentClassifier(search.Parser())
	} else {
		h.classifier = usecase.NewIntentClassifier(nil)
	}
	return h
}

// SearchRequest is the body of a product search
type SearchRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

// SearchResponse is a product search answer
type SearchResponse struct {
	SessionID      string               `json:"session_id"`
	Message        string               `json:"message"`
	Products       []domain.Product     `json:"products"`
	Total          int                  `json:"total"`
	Filters        domain.FilterContext `json:"filters"`
	SearchTerm     string               `json:"search_term"`
	RelaxedFilters []string             `json:"relaxed_filters,omitempty"`
}

// ClassifyRequest is the body of an intent classification
type ClassifyRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// ClassifyResponse carries the intent and, for product searches, the results
type ClassifyResponse struct {
	usecase.IntentResult
	Search *SearchResponse `json:"search,omitempty"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	count := 0
	if h.search != nil {
		count = h.search.ProductCount()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"service":       "cartwise-backend",
		"version":       "1.0.0",
		"product_count": count,
	})
}

// SearchProducts handles product search requests. An empty query browses the
// catalog with the session's remembered filters.
func (h *Handler) SearchProducts(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	sessionID := sessionFrom(c, req.SessionID)
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	resp, err := h.runSearch(c, sessionID, req.Query)
	if err != nil {
		h.logger.WithSession(sessionID).Error().Err(err).Msg("search failed")
		respondError(c, http.StatusServiceUnavailable, err)
		return
	}

	c.Header(SessionHeader, sessionID)
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) runSearch(c *gin.Context, sessionID, query string) (*SearchResponse, error) {
	result, err := h.search.Search(c.Request.Context(), sessionID, query)
	if err != nil {
		return nil, err
	}

	products := result.Products
	if limit := h.search.DisplayLimit(); len(products) > limit {
		products = products[:limit]
	}

	return &SearchResponse{
		SessionID:      sessionID,
		Message:        h.search.FormatResponse(result),
		Products:       products,
		Total:          result.Total,
		Filters:        result.Filters,
		SearchTerm:     result.SearchTerm,
		RelaxedFilters: result.RelaxedFilters,
	}, nil
}

// GetFilters returns the session's active filters
func (h *Handler) GetFilters(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	sessionID := sessionFrom(c, c.Query("session_id"))
	if sessionID == "" {
		respondError(c, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	filters, err := h.search.Filters(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, http.StatusServiceUnavailable, err)
		return
	}

	summary := usecase.FilterSummary(filters)
	if summary == nil {
		summary = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"filters":    filters,
		"summary":    summary,
	})
}

// ClearFilters forgets the session's filters
func (h *Handler) ClearFilters(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	sessionID := sessionFrom(c, c.Query("session_id"))
	if sessionID == "" {
		respondError(c, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	if err := h.search.ClearFilters(c.Request.Context(), sessionID); err != nil {
		h.logger.WithSession(sessionID).Error().Err(err).Msg("failed to clear filters")
		respondError(c, http.StatusServiceUnavailable, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "cleared": true})
}

// Recommendations lists in-stock products for a category and gender
func (h *Handler) Recommendations(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	limit, ok := limitParam(c)
	if !ok {
		return
	}

	var gender domain.Gender
	if raw := c.Query("gender"); raw != "" {
		g, ok := parseGenderParam(raw)
		if !ok {
			respondError(c, http.StatusBadRequest, domain.ErrInvalidRequest)
			return
		}
		gender = g
	}

	products := h.search.Recommendations(c.Request.Context(), usecase.RecommendationRequest{
		Category: c.Query("category"),
		Gender:   gender,
		Limit:    limit,
	})
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

// Trending lists the deepest in-stock discounts
func (h *Handler) Trending(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	limit, ok := limitParam(c)
	if !ok {
		return
	}

	products := h.search.Trending(c.Request.Context(), limit)
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

// Categories lists the catalog's categories
func (h *Handler) Categories(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": h.search.Categories(c.Request.Context())})
}

// Stats summarizes the loaded catalog
func (h *Handler) Stats(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	c.JSON(http.StatusOK, h.search.Stats(c.Request.Context()))
}

// Classify routes a chat message. Product searches are run straight away so
// the caller gets results in one round trip.
func (h *Handler) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	resp := ClassifyResponse{IntentResult: h.classifier.Classify(req.Message)}

	if resp.Intent == usecase.IntentProductSearch && h.search != nil {
		sessionID := sessionFrom(c, req.SessionID)
		if sessionID == "" {
			sessionID = uuid.New().String()
		}

		search, err := h.runSearch(c, sessionID, req.Message)
		if err != nil {
			h.logger.WithSession(sessionID).Error().Err(err).Msg("search after classify failed")
			respondError(c, http.StatusServiceUnavailable, err)
			return
		}
		resp.Search = search
		c.Header(SessionHeader, sessionID)
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ready(c *gin.Context) bool {
	if h.search == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search service not configured"})
		return false
	}
	return true
}

// sessionFrom prefers the session header over the fallback value.
func sessionFrom(c *gin.Context, fallback string) string {
	if id := strings.TrimSpace(c.GetHeader(SessionHeader)); id != "" {
		return id
	}
	return strings.TrimSpace(fallback)
}

// limitParam reads ?limit=. Zero means the service default.
func limitParam(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		respondError(c, http.StatusBadRequest, domain.ErrInvalidRequest)
		return 0, false
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit, true
}

func parseGenderParam(raw string) (domain.Gender, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "men", "man", "male", "m", "mens":
		return domain.GenderMen, true
	case "women", "woman", "female", "w", "womens":
		return domain.GenderWomen, true
	case "unisex", "u":
		return domain.GenderUnisex, true
	}
	return "", false
}

func respondError(c *gin.Context, status int, err error) {
	msg := err.Error()
	if status >= http.StatusInternalServerError && !errors.Is(err, domain.ErrCatalogUnavailable) {
		msg = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
