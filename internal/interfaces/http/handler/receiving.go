package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/retailops/backend/internal/application/receiving"
	"github.com/retailops/backend/internal/interfaces/http/middleware"
)

// ReceivingHandler serves goods receipt approval and rejection
type ReceivingHandler struct {
	BaseHandler
	service *receiving.Service
}

// NewReceivingHandler creates a receiving handler
func NewReceivingHandler(service *receiving.Service) *ReceivingHandler {
	return &ReceivingHandler{service: service}
}

// Approve handles POST /goods-receipts/:id/approve
func (h *ReceivingHandler) Approve(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	receiptID, ok := h.pathID(c)
	if !ok {
		return
	}
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, "Failed to read request body")
		return
	}

	outcome, err := h.service.ApproveReceipt(c.Request.Context(), receiving.ApproveReceiptCommand{
		Actor:          actor,
		ReceiptID:      receiptID,
		IdempotencyKey: middleware.GetIdempotencyKey(c),
		Payload:        payload,
	})
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.RawJSON(c, http.StatusOK, outcome.Response)
}

// rejectRequest is the body for a rejection
type rejectRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// Reject handles POST /goods-receipts/:id/reject
func (h *ReceivingHandler) Reject(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	receiptID, ok := h.pathID(c)
	if !ok {
		return
	}
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "A rejection reason is required")
		return
	}

	result, err := h.service.RejectReceipt(c.Request.Context(), receiving.RejectReceiptCommand{
		Actor:     actor,
		ReceiptID: receiptID,
		Reason:    req.Reason,
	})
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, result)
}
