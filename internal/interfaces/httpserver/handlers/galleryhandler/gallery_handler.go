package galleryhandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sovereign-chat/internal/domain/gallery"
	"sovereign-chat/internal/domain/query"
	"sovereign-chat/internal/interfaces/httpserver/requests"
	"sovereign-chat/internal/interfaces/httpserver/responses"
	conversationresponses "sovereign-chat/internal/interfaces/httpserver/responses/conversation"
	"sovereign-chat/internal/utils/platformerrors"
)

// GalleryHandler lists public conversations.
type GalleryHandler struct {
	galleryService *gallery.Service
}

// NewGalleryHandler creates a new GalleryHandler
func NewGalleryHandler(galleryService *gallery.Service) *GalleryHandler {
	return &GalleryHandler{galleryService: galleryService}
}

// ListGallery godoc
// @Summary List public conversations
// @Description Public conversations ordered by recency, views, likes or trending score.
// @Tags Gallery API
// @Produce json
// @Security BearerAuth
// @Param sort query string false "recent, views, likes or trending (default recent)"
// @Param limit query int false "Maximum number of conversations (default 20, max 100)"
// @Param offset query int false "Number of conversations to skip"
// @Success 200 {object} responses.ListResponse[conversationresponses.ConversationResponse]
// @Failure 400 {object} responses.ErrorResponse "Invalid request parameters"
// @Failure 401 {object} responses.ErrorResponse "Unauthorized"
// @Failure 500 {object} responses.ErrorResponse "Internal server error"
// @Router /api/gallery [get]
func (h *GalleryHandler) ListGallery(c *gin.Context) {
	pagination, err := requests.GetPaginationFromQuery(c, query.OrderDesc)
	if err != nil {
		responses.HandleError(c, err, "invalid pagination")
		return
	}
	order, ok := gallery.ParseSort(pagination.SortBy)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "sort must be one of recent, views, likes, trending", "9d8c7b6a-5f4e-4d3c-8b2a-1f0e9d8c7b6a")
		return
	}

	page, err := h.galleryService.List(c.Request.Context(), order, pagination)
	if err != nil {
		responses.HandleError(c, err, "failed to list gallery")
		return
	}
	c.JSON(http.StatusOK, responses.NewListResponse(page, conversationresponses.NewConversationResponse))
}
