package audit

import (
	"net/http"

	"salesdesk_backend/platform/httpkit"
	"salesdesk_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ListRequest is the query contract for the audit log listing endpoint.
type ListRequest struct {
	EntityType string `form:"entityType" validate:"omitempty,max=100"`
	EntityID   string `form:"entityId" validate:"omitempty,uuid"`
	Limit      int    `form:"limit" validate:"omitempty,min=1,max=200"`
}

// Handler exposes read-only history endpoints. There are deliberately no
// mutation routes: the trail is append-only and written by services.
type Handler struct {
	repo *Repository
	val  *validator.Validator
}

// NewHandler creates the audit HTTP handler.
func NewHandler(repo *Repository, val *validator.Validator) *Handler {
	return &Handler{repo: repo, val: val}
}

// RegisterRoutes mounts the audit routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
}

// List returns recent audit entries, optionally filtered by entity.
func (h *Handler) List(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	filter := ListFilter{EntityType: req.EntityType, Limit: req.Limit}
	if req.EntityID != "" {
		id, err := uuid.Parse(req.EntityID)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid entityId", nil)
			return
		}
		filter.EntityID = &id
	}

	entries, err := h.repo.List(c.Request.Context(), filter)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, entries)
}
