package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailcore/internal/core/apperror"
)

func newErrorTestRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/test", handler)
	return r
}

func TestErrorHandler_RendersAppError(t *testing.T) {
	r := newErrorTestRouter(func(c *gin.Context) {
		_ = c.Error(apperror.NewValidation("qty must be positive").
			WithDetail("field", "qtyOrdered"))
		c.Abort()
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apperror.CodeValidation, body.Code)
	assert.Equal(t, "qty must be positive", body.Message)
	assert.Equal(t, "qtyOrdered", body.Details["field"])
}

func TestErrorHandler_UnknownErrorHidden(t *testing.T) {
	r := newErrorTestRouter(func(c *gin.Context) {
		_ = c.Error(assert.AnError)
		c.Abort()
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apperror.CodeInternal, body["code"])
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestErrorHandler_ResponseAlreadyWritten(t *testing.T) {
	r := newErrorTestRouter(func(c *gin.Context) {
		c.JSON(http.StatusTeapot, gin.H{"custom": true})
		_ = c.Error(apperror.NewValidation("late error"))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.NotContains(t, w.Body.String(), "late error")
}
