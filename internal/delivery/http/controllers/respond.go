package controllers

import (
	"errors"
	"net/http"

	"CivicLens/internal/app_errors"
	"CivicLens/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RespondError maps the service error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is a 500 and gets logged; taxonomy errors are the
// caller's problem and only surface in the response body.
func RespondError(c *gin.Context, log logger.Log, err error) {
	var ve *app_errors.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
		return
	}
	var pe *app_errors.PermissionDeniedError
	if errors.As(err, &pe) {
		c.JSON(http.StatusForbidden, gin.H{"error": pe.Error(), "action": pe.Action, "required_role": pe.RequiredRole})
		return
	}
	var ne *app_errors.NotFoundError
	if errors.As(err, &ne) {
		c.JSON(http.StatusNotFound, gin.H{"error": ne.Error()})
		return
	}
	var ce *app_errors.ConflictError
	if errors.As(err, &ce) {
		c.JSON(http.StatusConflict, gin.H{"error": ce.Error()})
		return
	}
	var te *app_errors.TransientError
	if errors.As(err, &te) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": te.Error(), "retryable": true})
		return
	}

	switch {
	case errors.Is(err, app_errors.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrNotReporter):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrNotImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrFileSize):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	default:
		log.ErrorErr("request failed", err, "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
