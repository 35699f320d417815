package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanpos/backend/internal/interfaces/http/dto"
)

type restockPayload struct {
	BranchID     string  `json:"branch_id" binding:"required,uuid"`
	IngredientID string  `json:"ingredient_id" binding:"required,uuid"`
	Quantity     float64 `json:"quantity" binding:"required,gt=0"`
	Reason       string  `json:"reason" binding:"max=8"`
}

func restockRouter() *gin.Engine {
	router := gin.New()
	router.POST("/inventory/restock", func(c *gin.Context) {
		var req restockPayload
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(nil))
	})
	return router
}

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	assert.NotNil(t, v)
}

func TestHandleValidationError(t *testing.T) {
	SetupValidator()
	router := restockRouter()

	t.Run("reports each failing field by its json name", func(t *testing.T) {
		body := `{"branch_id":"not-a-uuid","quantity":-3,"reason":"way too long reason"}`
		req := httptest.NewRequest(http.MethodPost, "/inventory/restock", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "Request validation failed", resp.Error.Message)

		fields := make(map[string]string)
		for _, d := range resp.Error.Details {
			fields[d.Field] = d.Message
		}
		assert.Equal(t, "Invalid UUID format", fields["branch_id"])
		assert.Equal(t, "This field is required", fields["ingredient_id"])
		assert.Equal(t, "Must be greater than 0", fields["quantity"])
		assert.Equal(t, "Must be at most 8 characters", fields["reason"])
	})

	t.Run("valid payload passes", func(t *testing.T) {
		body := `{"branch_id":"550e8400-e29b-41d4-a716-446655440000","ingredient_id":"550e8400-e29b-41d4-a716-446655440001","quantity":250}`
		req := httptest.NewRequest(http.MethodPost, "/inventory/restock", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("carries the request id into the error body", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID())
		router.POST("/inventory/restock", func(c *gin.Context) {
			var req restockPayload
			if err := c.ShouldBindJSON(&req); err != nil {
				HandleValidationError(c, err)
				return
			}
		})

		req := httptest.NewRequest(http.MethodPost, "/inventory/restock", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Request-ID", "req-validation-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, "req-validation-1", resp.Error.RequestID)
	})
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "req-1")
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Empty(t, resp.Error.Details)
}
