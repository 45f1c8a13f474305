package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sovereign-chat/internal/domain/query"
	"sovereign-chat/internal/utils/platformerrors"
)

func TestHandleErrorMapsPlatformErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		errType platformerrors.ErrorType
		status  int
	}{
		{platformerrors.ErrorTypeNotFound, http.StatusNotFound},
		{platformerrors.ErrorTypeValidation, http.StatusBadRequest},
		{platformerrors.ErrorTypeForbidden, http.StatusForbidden},
		{platformerrors.ErrorTypeUnauthorized, http.StatusUnauthorized},
		{platformerrors.ErrorTypeRateLimited, http.StatusTooManyRequests},
		{platformerrors.ErrorTypeExternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.errType), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			ctx := context.WithValue(context.Background(), platformerrors.RequestIDKey{}, "req-1")
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)

			err := platformerrors.NewError(ctx, platformerrors.LayerDomain, tt.errType, "something happened", nil, "code-1")
			HandleError(c, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "wrapped"), "fallback")

			assert.Equal(t, tt.status, w.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "code-1", body.Code)
			assert.Equal(t, "req-1", body.RequestID)
			assert.Contains(t, body.Error, "something happened")
		})
	}
}

func TestHandleErrorForeignErrorIs500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleError(c, errors.New("boom"), "Failed to do the thing")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to do the thing"}`, w.Body.String())
}

func TestNewListResponse(t *testing.T) {
	page := query.Page[int]{Items: []int{1, 2}, Total: 5, Limit: 2, Offset: 0}
	resp := NewListResponse(page, func(i int) string { return string(rune('a' + i)) })

	assert.Equal(t, []string{"b", "c"}, resp.Data)
	assert.EqualValues(t, 5, resp.Total)
	assert.True(t, resp.HasMore)

	empty := NewListResponse(query.Page[int]{}, func(i int) int { return i })
	assert.NotNil(t, empty.Data)
	assert.False(t, empty.HasMore)
}
