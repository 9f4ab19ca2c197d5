package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/foodlog/internal/apperr"
	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// respondServiceError maps an apperr kind to a status and a user-facing body.
// Unexpected failures are logged with the request path.
func (a *API) respondServiceError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	switch {
	case status >= http.StatusInternalServerError && status != http.StatusBadGateway:
		a.logger.Errorw("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		c.Error(err)
	case status == http.StatusBadGateway:
		a.logger.Warnw("upstream failed", "path", c.Request.URL.Path, "error", err)
	}

	body := gin.H{"error": apperr.Message(err)}
	if field := apperr.Field(err); field != "" {
		body["field"] = field
	}
	c.JSON(status, body)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
