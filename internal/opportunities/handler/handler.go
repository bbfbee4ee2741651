// Package handler exposes the opportunity REST endpoints.
package handler

import (
	"context"
	"net/http"
	"strconv"

	"salesdesk_backend/internal/audit"
	"salesdesk_backend/internal/opportunities/domain"
	"salesdesk_backend/internal/opportunities/repository"
	"salesdesk_backend/internal/opportunities/service"
	"salesdesk_backend/internal/opportunities/transport"
	"salesdesk_backend/platform/httpkit"
	"salesdesk_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// HistoryReader lists the audit trail of one deal.
type HistoryReader interface {
	ListByOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]audit.Entry, error)
}

// Handler exposes opportunity endpoints.
type Handler struct {
	svc     *service.Service
	history HistoryReader
	val     *validator.Validator
}

// New creates the opportunity HTTP handler.
func New(svc *service.Service, history HistoryReader, val *validator.Validator) *Handler {
	return &Handler{svc: svc, history: history, val: val}
}

// RegisterRoutes mounts the opportunity routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.GET("/:id/history", h.History)
}

// Create opens a deal.
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	opp, err := h.svc.Create(c.Request.Context(), req, actorID(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, opp)
}

// GetByID returns one deal with its references resolved.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	opp, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, opp)
}

// List returns deals filtered by account, owner, stage, or status.
func (h *Handler) List(c *gin.Context) {
	filter := repository.ListFilter{}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))

	for param, dest := range map[string]**uuid.UUID{
		"accountId": &filter.AccountID,
		"ownerId":   &filter.OwnerID,
		"stageId":   &filter.StageID,
	} {
		if raw := c.Query(param); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				httpkit.Error(c, http.StatusBadRequest, "invalid "+param, nil)
				return
			}
			*dest = &id
		}
	}
	if raw := c.Query("status"); raw != "" {
		status := domain.Status(raw)
		if !status.Valid() {
			httpkit.Error(c, http.StatusBadRequest, "invalid status", nil)
			return
		}
		filter.Status = &status
	}

	items, err := h.svc.List(c.Request.Context(), filter)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, items)
}

// Update applies a partial update, running stage-change automation when the
// stage moves.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.UpdateOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	opp, err := h.svc.Update(c.Request.Context(), id, req, actorID(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, opp)
}

// Delete soft-deletes a deal; its history stays queryable.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if err := h.svc.SoftDelete(c.Request.Context(), id, actorID(c)); httpkit.HandleError(c, err) {
		return
	}
	httpkit.NoContent(c)
}

// History returns the full audit trail of one deal, newest first.
func (h *Handler) History(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	entries, err := h.history.ListByOpportunity(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, entries)
}

func actorID(c *gin.Context) *uuid.UUID {
	if actor, ok := httpkit.ActorID(c); ok {
		return &actor
	}
	return nil
}
