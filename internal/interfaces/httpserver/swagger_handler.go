package httpserver

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/swaggo/swag"

	"sovereign-chat/internal/infrastructure/logger"
)

// combinedSwaggerPath is written by `swag init --outputTypes json`.
var combinedSwaggerPath = filepath.Join(".", "swagger", "swagger.json")

// ServeSwaggerDoc serves the generated swagger JSON if it exists, otherwise
// the document registered with swag at init.
func ServeSwaggerDoc() gin.HandlerFunc {
	return func(c *gin.Context) {
		if data, err := os.ReadFile(combinedSwaggerPath); err == nil {
			var spec map[string]any
			if err := json.Unmarshal(data, &spec); err != nil {
				log := logger.GetLogger()
				log.Error().Err(err).Str("path", combinedSwaggerPath).Msg("failed to parse swagger")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to parse API documentation"})
				return
			}
			c.JSON(http.StatusOK, spec)
			return
		}

		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			log := logger.GetLogger()
			log.Error().Err(err).Msg("failed to read registered swagger")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load API documentation"})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}
