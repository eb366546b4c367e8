package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/interfaces/http/dto"
	"github.com/retailops/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a 200 response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// RawJSON sends pre-marshaled JSON as the data of a success envelope.
// Used for idempotent operations whose stored response must replay byte
// for byte.
func (h *BaseHandler) RawJSON(c *gin.Context, status int, body []byte) {
	c.Writer.Header().Set("Content-Type", "application/json")
	c.Writer.WriteHeader(status)
	_, _ = c.Writer.Write([]byte(`{"success":true,"data":`))
	_, _ = c.Writer.Write(body)
	_, _ = c.Writer.Write([]byte(`}`))
}

// BadRequest sends a 400 response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest,
		dto.NewErrorResponse(dto.ErrCodeBadRequest, message, middleware.GetRequestID(c)))
}

// DomainError maps an error to its HTTP response. Domain errors carry their
// code through; anything else is an opaque 500.
func (h *BaseHandler) DomainError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := dto.GetHTTPStatus(domainErr.Code)
		c.JSON(status, dto.NewErrorResponse(domainErr.Code, domainErr.Message, middleware.GetRequestID(c)))
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError,
		dto.NewErrorResponse(dto.ErrCodeInternal, "An internal error occurred", middleware.GetRequestID(c)))
}

// actor resolves the acting user or writes a 401
func (h *BaseHandler) actor(c *gin.Context) (shared.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized,
			dto.NewErrorResponse("UNAUTHORIZED", "Caller identity is missing", middleware.GetRequestID(c)))
		return shared.Actor{}, false
	}
	return actor, true
}

// pathID parses the :id path parameter as a UUID or writes a 400
func (h *BaseHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Path parameter id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}
