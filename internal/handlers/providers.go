package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"alfredmail-be/internal/provider"
)

// ListProviders returns the selectable email providers.
func ListProviders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"providers": provider.Infos()})
}
