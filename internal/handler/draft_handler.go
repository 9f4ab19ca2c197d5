package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/foodlog/internal/service"
	"github.com/gin-gonic/gin"
)

// GetDraft returns the autosaved payload under :key if it has not expired.
func (a *API) GetDraft(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	payload, ok, err := a.drafts.Load(key, service.DraftMaxAge)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	if !ok {
		respondError(c, http.StatusNotFound, "No saved draft")
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "draft": json.RawMessage(payload)})
}

// SaveDraft stores the raw JSON body under :key.
func (a *API) SaveDraft(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil || !json.Valid(payload) {
		respondError(c, http.StatusBadRequest, "Draft must be a JSON document")
		return
	}
	if err := a.drafts.Save(c.Param("key"), payload); err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}

func (a *API) DeleteDraft(c *gin.Context) {
	if err := a.drafts.Delete(c.Param("key")); err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
