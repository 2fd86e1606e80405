package job

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshu-sajeev/notifyqueue/middleware"
	"go.uber.org/zap"
)

const requestTimeout = 10 * time.Second

// NewRouter builds the gin engine serving the control API.
func NewRouter(h JobHandlerInterface, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestLogger(logger),
		middleware.TimeoutMiddleware(requestTimeout),
		middleware.ErrorHandler(logger),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	v1.POST("/jobs", h.Enqueue)
	v1.GET("/jobs/:id", h.Get)
	v1.POST("/jobs/:id/retry", h.Retry)
	v1.GET("/summary", h.Summary)
	v1.POST("/cleanup", h.Cleanup)

	return r
}
