package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Geocode resolves ?address= to the first matching coordinate.
func (a *API) Geocode(c *gin.Context) {
	address := strings.TrimSpace(c.Query("address"))
	if address == "" {
		respondError(c, http.StatusBadRequest, "address is required")
		return
	}

	result, err := a.geocoder.Geocode(c.Request.Context(), address)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// MapsConfig hands the static map key to the admin client.
func (a *API) MapsConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"apiKey": a.maps.APIKey()})
}
