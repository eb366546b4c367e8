package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/retailops/backend/internal/application/query"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/interfaces/http/dto"
)

// StockHandler serves the read side: ledger history, balances, cost and
// serial lookups
type StockHandler struct {
	BaseHandler
	service *query.Service
}

// NewStockHandler creates a stock query handler
func NewStockHandler(service *query.Service) *StockHandler {
	return &StockHandler{service: service}
}

type balanceQuery struct {
	VariationID string `form:"variation_id" binding:"required,uuid"`
	LocationID  string `form:"location_id" binding:"required,uuid"`
}

// History handles GET /stock/history
func (h *StockHandler) History(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var q balanceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, "variation_id and location_id query parameters are required")
		return
	}
	var list dto.ListRequest
	if err := c.ShouldBindQuery(&list); err != nil {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}

	filter := shared.DefaultFilter()
	if list.Page > 0 {
		filter.Page = list.Page
	}
	if list.PageSize > 0 {
		filter.PageSize = list.PageSize
	}
	if list.OrderBy != "" {
		filter.OrderBy = list.OrderBy
	}
	if list.OrderDir != "" {
		filter.OrderDir = list.OrderDir
	}

	history, err := h.service.StockHistory(c.Request.Context(), actor.TenantID,
		uuid.MustParse(q.VariationID), uuid.MustParse(q.LocationID), filter)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, history)
}

// Balance handles GET /stock/balance
func (h *StockHandler) Balance(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var q balanceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, "variation_id and location_id query parameters are required")
		return
	}

	variationID := uuid.MustParse(q.VariationID)
	locationID := uuid.MustParse(q.LocationID)

	balance, err := h.service.CurrentBalance(c.Request.Context(), actor.TenantID, variationID, locationID)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	cost, err := h.service.CurrentCost(c.Request.Context(), actor.TenantID, variationID)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, gin.H{
		"variation_id":  variationID,
		"location_id":   locationID,
		"qty_available": balance,
		"avg_unit_cost": cost,
	})
}

// Audit handles GET /stock/audit
func (h *StockHandler) Audit(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var q balanceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, "variation_id and location_id query parameters are required")
		return
	}

	audit, err := h.service.AuditBalance(c.Request.Context(), actor.TenantID,
		uuid.MustParse(q.VariationID), uuid.MustParse(q.LocationID))
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, audit)
}

// LookupSerial handles GET /serials/:number
func (h *StockHandler) LookupSerial(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	serialNumber := c.Param("number")
	if serialNumber == "" {
		h.BadRequest(c, "Serial number is required")
		return
	}

	detail, err := h.service.LookupSerial(c.Request.Context(), actor.TenantID, serialNumber)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, detail)
}
