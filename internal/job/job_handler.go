package job

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshu-sajeev/notifyqueue/common"
	"github.com/joshu-sajeev/notifyqueue/internal/dto"
	"github.com/joshu-sajeev/notifyqueue/middleware"
)

type JobHandler struct {
	service JobServiceInterface
}

func NewJobHandler(s JobServiceInterface) *JobHandler {
	return &JobHandler{service: s}
}

var _ JobHandlerInterface = (*JobHandler)(nil)

// Enqueue handles POST /jobs. It binds and validates the request body and
// returns HTTP 201 with the pending job.
func (h *JobHandler) Enqueue(c *gin.Context) {
	var req dto.EnqueueRequest

	if !middleware.Bind(c, &req) {
		return
	}

	resp, err := h.service.Enqueue(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Get handles GET /jobs/:id.
func (h *JobHandler) Get(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetStatus(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Retry handles POST /jobs/:id/retry.
func (h *JobHandler) Retry(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}

	resp, err := h.service.RetryFailed(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Summary handles GET /summary?limit=N.
func (h *JobHandler) Summary(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.Error(common.Errf(http.StatusBadRequest, "limit must be a positive integer"))
			return
		}
		limit = n
	}

	resp, err := h.service.Summary(c.Request.Context(), limit)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Cleanup handles POST /cleanup?retention=1h.
func (h *JobHandler) Cleanup(c *gin.Context) {
	var retention time.Duration
	if raw := c.Query("retention"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			c.Error(common.Errf(http.StatusBadRequest, "retention must be a positive duration such as 1h"))
			return
		}
		retention = d
	}

	resp, err := h.service.Cleanup(c.Request.Context(), retention)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func jobID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.Error(common.Errf(http.StatusBadRequest, "invalid ID"))
		return "", false
	}
	return id, true
}
