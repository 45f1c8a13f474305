package usagehandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sovereign-chat/internal/domain/usage"
	"sovereign-chat/internal/interfaces/httpserver/handlers/authhandler"
	"sovereign-chat/internal/interfaces/httpserver/responses"
	usageresponses "sovereign-chat/internal/interfaces/httpserver/responses/usage"
)

// UsageHandler handles usage report requests
type UsageHandler struct {
	usageService *usage.Service
}

// NewUsageHandler creates a new UsageHandler
func NewUsageHandler(usageService *usage.Service) *UsageHandler {
	return &UsageHandler{usageService: usageService}
}

// GetMyUsage godoc
// @Summary Get current user's usage
// @Description Messages used, limit and remaining for the current calendar month, token totals and estimated cost by model.
// @Tags Usage API
// @Produce json
// @Security BearerAuth
// @Success 200 {object} usageresponses.UsageResponse
// @Failure 401 {object} responses.ErrorResponse "Unauthorized"
// @Failure 500 {object} responses.ErrorResponse "Internal server error"
// @Router /api/usage [get]
func (h *UsageHandler) GetMyUsage(c *gin.Context) {
	u, _, ok := authhandler.RequireUser(c)
	if !ok {
		return
	}

	report, err := h.usageService.Report(c.Request.Context(), u)
	if err != nil {
		responses.HandleError(c, err, "failed to get usage")
		return
	}
	c.JSON(http.StatusOK, usageresponses.NewUsageResponse(report))
}
