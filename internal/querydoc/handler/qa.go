// Package handler provides HTTP handlers for the QA service.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/querydoc/internal/model"
	"github.com/kart-io/querydoc/internal/querydoc/biz"
)

// QAHandler handles document QA HTTP requests.
type QAHandler struct {
	service biz.Service
}

// NewQAHandler creates a new QAHandler.
func NewQAHandler(service biz.Service) *QAHandler {
	return &QAHandler{service: service}
}

// Run answers a batch of questions about a document.
func (h *QAHandler) Run(c *gin.Context) {
	var req model.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if req.Questions == nil {
		// A request without a questions field is malformed; an explicitly
		// empty list is answered with an empty result.
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	answers, err := h.service.Run(c.Request.Context(), req.Documents, *req.Questions)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.RunResponse{Answers: answers})
}

func (h *QAHandler) writeError(c *gin.Context, err error) {
	var verr *biz.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"message": verr.Message,
		})
		return
	}

	logger.Errorw("Request failed", "error", err.Error())
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Internal server error",
		"message": err.Error(),
	})
}

// Ping is the liveness probe.
func (h *QAHandler) Ping(c *gin.Context) {
	c.String(http.StatusOK, "PONG")
}

// Stats returns service metrics.
func (h *QAHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Stats(c.Request.Context()))
}
