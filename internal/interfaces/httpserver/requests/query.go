package requests

import (
	"strings"

	"github.com/gin-gonic/gin"

	"sovereign-chat/internal/domain/query"
	"sovereign-chat/internal/utils/platformerrors"
)

// PaginationQuery is the limit/offset/sort/order query string shared by list routes.
type PaginationQuery struct {
	Limit  *int   `form:"limit" binding:"omitempty,min=1"`
	Offset *int   `form:"offset" binding:"omitempty,min=0"`
	Sort   string `form:"sort"`
	Order  string `form:"order" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// GetPaginationFromQuery binds the pagination query. Limits above the maximum
// are clamped; the sort field is passed through for the caller's allow-list.
// defaultOrder applies when no order is given.
func GetPaginationFromQuery(reqCtx *gin.Context, defaultOrder query.SortOrder) (query.Pagination, error) {
	var params PaginationQuery
	if err := reqCtx.ShouldBindQuery(&params); err != nil {
		return query.Pagination{}, platformerrors.NewError(reqCtx.Request.Context(), platformerrors.LayerHandler, platformerrors.ErrorTypeValidation, "invalid pagination parameters", err, "04aecd25-bd32-428b-864d-aeb7ecb06e53")
	}

	pagination := query.Pagination{
		SortBy: strings.TrimSpace(params.Sort),
		Order:  query.SortOrder(strings.ToLower(params.Order)),
	}
	if pagination.Order == "" {
		pagination.Order = defaultOrder
	}
	if params.Limit != nil {
		pagination.Limit = *params.Limit
	}
	if params.Offset != nil {
		pagination.Offset = *params.Offset
	}
	pagination.Normalize()
	return pagination, nil
}
