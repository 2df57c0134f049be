package gingr

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tailtown/internal/middleware"
	"tailtown/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sync/gingr", h.Ingest)
}

func (h *Handler) Ingest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	tenantID := c.GetInt64(middleware.TenantKey)
	results := h.service.Ingest(c.Request.Context(), tenantID, req.Records)
	response.Multi(c, results)
}
