package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sovereign-chat/internal/domain/query"
	"sovereign-chat/internal/infrastructure/logger"
	"sovereign-chat/internal/utils/platformerrors"
)

// ErrorResponse is the error envelope of every JSON route.
type ErrorResponse struct {
	Code          string `json:"code,omitempty"` // UUID from PlatformError
	Error         string `json:"error"`
	ErrorInstance error  `json:"-"`
	RequestID     string `json:"request_id,omitempty"`
}

// ListResponse wraps a page of items with limit/offset paging metadata.
type ListResponse[T any] struct {
	Data    []T   `json:"data"`
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

// NewListResponse converts a domain page with mapper.
func NewListResponse[S any, T any](page query.Page[S], mapper func(S) T) ListResponse[T] {
	data := make([]T, 0, len(page.Items))
	for _, item := range page.Items {
		data = append(data, mapper(item))
	}
	return ListResponse[T]{
		Data:    data,
		Total:   page.Total,
		Limit:   page.Limit,
		Offset:  page.Offset,
		HasMore: page.HasMore(),
	}
}

// HandleError handles domain errors and returns appropriate HTTP responses
func HandleError(reqCtx *gin.Context, err error, message string) {
	var domainErr *platformerrors.PlatformError
	if errors.As(err, &domainErr) {
		statusCode := platformerrors.ErrorTypeToHTTPStatus(domainErr.GetErrorType())

		errorMessage := domainErr.Message
		if errorMessage == "" {
			errorMessage = message
		}
		platformerrors.LogError(logger.GetLogger(), domainErr)
		_ = reqCtx.Error(domainErr)

		reqCtx.AbortWithStatusJSON(statusCode, ErrorResponse{
			Code:          domainErr.GetUUID(),
			Error:         errorMessage,
			ErrorInstance: domainErr,
			RequestID:     domainErr.GetRequestID(),
		})
		return
	}

	// Non-platform errors
	log := logger.GetLogger()
	log.Error().Err(err).Msg(message)
	if err != nil {
		_ = reqCtx.Error(err)
	}
	reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error:         message,
		ErrorInstance: err,
	})
}

// HandleNewError creates a new typed error at the route layer and handles it
func HandleNewError(reqCtx *gin.Context, errorType platformerrors.ErrorType, message string, uuid string) {
	ctx := reqCtx.Request.Context()
	err := platformerrors.NewError(ctx, platformerrors.LayerRoute, errorType, message, nil, uuid)

	reqCtx.AbortWithStatusJSON(platformerrors.ErrorTypeToHTTPStatus(err.GetErrorType()), ErrorResponse{
		Code:          err.GetUUID(),
		Error:         message,
		ErrorInstance: err,
		RequestID:     err.GetRequestID(),
	})
}

// URLResponse carries a redirect target such as a checkout session.
type URLResponse struct {
	URL string `json:"url"`
}

// StatusResponse is the body of liveness and readiness probes.
type StatusResponse struct {
	Status string `json:"status"`
}

// DeletedResponse confirms a delete.
type DeletedResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}
