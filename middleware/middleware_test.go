package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshu-sajeev/notifyqueue/common"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "api error",
			err:            common.Errf(http.StatusNotFound, "job not found"),
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"job not found"}`,
		},
		{
			name:           "api error with fields",
			err:            common.NewAPIError(http.StatusBadRequest, "invalid job type", map[string]any{"provided": "sms"}),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid job type","fields":{"provided":"sms"}}`,
		},
		{
			name:           "wrapped api error",
			err:            errors.Join(errors.New("context"), common.Wrap(http.StatusServiceUnavailable, common.ErrStoreUnavailable, "job store unavailable")),
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `{"error":"job store unavailable"}`,
		},
		{
			name:           "plain error is hidden",
			err:            errors.New("pq: relation does not exist"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(ErrorHandler(zap.NewNop()))
			r.GET("/", func(c *gin.Context) { c.Error(tt.err) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestBind(t *testing.T) {
	gin.SetMode(gin.TestMode)

	type body struct {
		Email string `json:"email" validate:"required,email"`
	}

	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedBody   string
	}{
		{name: "valid", body: `{"email":"ann@example.com"}`, expectedStatus: http.StatusOK, expectedBody: `{"email":"ann@example.com"}`},
		{name: "malformed json", body: `{`, expectedStatus: http.StatusBadRequest},
		{name: "validation failure", body: `{"email":"nope"}`, expectedStatus: http.StatusBadRequest, expectedBody: `{"error":"validation failed","fields":{"Email":"failed email"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(ErrorHandler(zap.NewNop()))
			r.POST("/", func(c *gin.Context) {
				var b body
				if !Bind(c, &b) {
					return
				}
				c.JSON(http.StatusOK, b)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
		})
	}
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	assert.Equal(t, map[string]any{"_": "boom"}, FormatValidationErrors(errors.New("boom")))
}

func TestTimeoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()), TimeoutMiddleware(50*time.Millisecond))
	r.GET("/", func(c *gin.Context) {
		deadline, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 50*time.Millisecond)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
