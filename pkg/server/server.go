// Package server exposes the listing AI tools over HTTP.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zen-systems/listingsmith/pkg/actions"
	"github.com/zen-systems/listingsmith/pkg/listing"
)

// Actions is the set of per-user operations served by the API.
type Actions interface {
	GenerateCaption(ctx context.Context, userID string, req listing.CaptionRequest) (string, error)
	GenerateTags(ctx context.Context, userID string, req listing.TagsRequest) ([]string, error)
	GetPriceSuggestion(ctx context.Context, userID string, in actions.PriceInput) (listing.PriceSuggestion, error)
	GetAutoFillInfo(ctx context.Context, userID string, req listing.AutoFillRequest) (listing.AutoFillInfo, error)
}

// Handler serves the AI endpoints.
type Handler struct {
	actions    Actions
	configured bool
	logger     *zap.Logger
}

// New builds the router. Configured is reported by /healthz.
func New(a Actions, configured bool, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{actions: a, configured: configured, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(logger))
	r.GET("/healthz", h.Health)

	ai := r.Group("/api/v1/ai", RequireUser())
	ai.POST("/caption", h.Caption)
	ai.POST("/tags", h.Tags)
	ai.POST("/price", h.Price)
	ai.POST("/autofill", h.AutoFill)
	return r
}

// Health reports liveness and whether a provider credential is present.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"service":       "listingsmith",
		"ai_configured": h.configured,
	})
}

// Caption handles POST /api/v1/ai/caption.
func (h *Handler) Caption(c *gin.Context) {
	var req listing.CaptionRequest
	if !bind(c, &req) {
		return
	}
	caption, err := h.actions.GenerateCaption(c.Request.Context(), c.GetString(keyUserID), req)
	if err != nil {
		respondFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"caption": caption})
}

// Tags handles POST /api/v1/ai/tags.
func (h *Handler) Tags(c *gin.Context) {
	var req listing.TagsRequest
	if !bind(c, &req) {
		return
	}
	tags, err := h.actions.GenerateTags(c.Request.Context(), c.GetString(keyUserID), req)
	if err != nil {
		respondFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// Price handles POST /api/v1/ai/price.
func (h *Handler) Price(c *gin.Context) {
	var in actions.PriceInput
	if !bind(c, &in) {
		return
	}
	suggestion, err := h.actions.GetPriceSuggestion(c.Request.Context(), c.GetString(keyUserID), in)
	if err != nil {
		respondFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, suggestion)
}

// AutoFill handles POST /api/v1/ai/autofill.
func (h *Handler) AutoFill(c *gin.Context) {
	var req listing.AutoFillRequest
	if !bind(c, &req) {
		return
	}
	info, err := h.actions.GetAutoFillInfo(c.Request.Context(), c.GetString(keyUserID), req)
	if err != nil {
		respondFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return false
	}
	return true
}
