package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	appreturns "github.com/retailops/backend/internal/application/returns"
	"github.com/retailops/backend/internal/interfaces/http/middleware"
)

// ReturnsHandler serves customer return approval, rejection and replacement
type ReturnsHandler struct {
	BaseHandler
	service *appreturns.Service
}

// NewReturnsHandler creates a returns handler
func NewReturnsHandler(service *appreturns.Service) *ReturnsHandler {
	return &ReturnsHandler{service: service}
}

// Approve handles POST /customer-returns/:id/approve
func (h *ReturnsHandler) Approve(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	returnID, ok := h.pathID(c)
	if !ok {
		return
	}
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, "Failed to read request body")
		return
	}

	outcome, err := h.service.ApproveReturn(c.Request.Context(), appreturns.ApproveReturnCommand{
		Actor:          actor,
		ReturnID:       returnID,
		IdempotencyKey: middleware.GetIdempotencyKey(c),
		Payload:        payload,
	})
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.RawJSON(c, http.StatusOK, outcome.Response)
}

// Reject handles POST /customer-returns/:id/reject
func (h *ReturnsHandler) Reject(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	returnID, ok := h.pathID(c)
	if !ok {
		return
	}
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "A rejection reason is required")
		return
	}

	result, err := h.service.RejectReturn(c.Request.Context(), appreturns.RejectReturnCommand{
		Actor:    actor,
		ReturnID: returnID,
		Reason:   req.Reason,
	})
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, result)
}

// replacementRequest is the body for a replacement issue
type replacementRequest struct {
	Notes string `json:"notes" binding:"max=1000"`
}

// IssueReplacement handles POST /customer-returns/:id/replacement
func (h *ReturnsHandler) IssueReplacement(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	returnID, ok := h.pathID(c)
	if !ok {
		return
	}
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, "Failed to read request body")
		return
	}
	var req replacementRequest
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			h.BadRequest(c, "Invalid request body")
			return
		}
	}

	outcome, err := h.service.IssueReplacement(c.Request.Context(), appreturns.IssueReplacementCommand{
		Actor:          actor,
		ReturnID:       returnID,
		Notes:          req.Notes,
		IdempotencyKey: middleware.GetIdempotencyKey(c),
		Payload:        payload,
	})
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.RawJSON(c, http.StatusOK, outcome.Response)
}
