package handler

import (
	"net/http"
	"strconv"

	"github.com/Baaaki/inkwell/internal/apperr"
	"github.com/Baaaki/inkwell/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError writes {"error": ...} with the status of err's kind.
// Internal errors are logged and replaced by a generic message.
func respondError(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		logger.Log.Error("Internal error",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// parseID reads a numeric path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, apperr.Validation("invalid "+name))
		return 0, false
	}
	return uint(id), true
}

// bindJSON parses the body; an empty body is treated as {}
func bindJSON(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		logger.Log.Debug("Request parsing failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		respondError(c, apperr.Validation("invalid request body"))
		return false
	}
	return true
}
