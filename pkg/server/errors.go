package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zen-systems/listingsmith/pkg/access"
	"github.com/zen-systems/listingsmith/pkg/generate"
	"github.com/zen-systems/listingsmith/pkg/listing"
	"github.com/zen-systems/listingsmith/pkg/retry"
	"github.com/zen-systems/listingsmith/pkg/store"
)

// APIError is the body of every error response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "AI_RESTRICTED"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeNotConfigured   = "AI_NOT_CONFIGURED"
	ErrCodeQuotaExceeded   = "QUOTA_EXCEEDED"
	ErrCodeGenerationError = "GENERATION_FAILED"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": APIError{Code: code, Message: message},
	})
}

// respondFailure maps a domain error to its HTTP status.
func respondFailure(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, listing.ErrInvalidRequest):
		respondError(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, access.ErrAIRestricted):
		respondError(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
	case errors.Is(err, store.ErrUserNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, generate.ErrNotConfigured):
		respondError(c, http.StatusServiceUnavailable, ErrCodeNotConfigured, err.Error())
	case errors.Is(err, retry.ErrQuotaExceeded):
		respondError(c, http.StatusTooManyRequests, ErrCodeQuotaExceeded, err.Error())
	default:
		respondError(c, http.StatusBadGateway, ErrCodeGenerationError, err.Error())
	}
}
