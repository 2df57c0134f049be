package reservation

import (
	"errors"
	"net/http"
	"strconv"
	"time"

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
	rg.POST("/reservations", h.Create)
	rg.GET("/reservations/conflicts", h.Conflicts)
	rg.GET("/reservations/schedule", h.Schedule)
	rg.GET("/reservations/:id", h.Get)
	rg.PATCH("/reservations/:id", h.Update)
	rg.POST("/reservations/:id/status", h.Transition)
	rg.POST("/reservations/:id/recurrence/generate", h.Generate)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	r, err := h.service.Create(c.Request.Context(), tenantID(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"reservation": r})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	r, err := h.service.GetByID(c.Request.Context(), tenantID(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reservation": r})
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var patch UpdateReservationRequest
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	r, err := h.service.Update(c.Request.Context(), tenantID(c), id, patch)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reservation": r})
}

func (h *Handler) Transition(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	r, err := h.service.TransitionStatus(c.Request.Context(), tenantID(c), id, req.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reservation": r})
}

func (h *Handler) Generate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	results, err := h.service.GenerateReservations(c.Request.Context(), tenantID(c), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Multi(c, results)
}

func (h *Handler) Conflicts(c *gin.Context) {
	resourceID, start, end, ok := rangeQuery(c, "start", "end")
	if !ok {
		return
	}

	var excludeID int64
	if raw := c.Query("exclude_id"); raw != "" {
		var err error
		excludeID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || excludeID <= 0 {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "exclude_id must be a positive integer")
			return
		}
	}

	conflicts, err := h.service.FindConflicts(c.Request.Context(), tenantID(c), resourceID, start, end, excludeID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"conflicts": toConflictInfos(conflicts)})
}

func (h *Handler) Schedule(c *gin.Context) {
	resourceID, from, to, ok := rangeQuery(c, "from", "to")
	if !ok {
		return
	}

	reservations, err := h.service.Schedule(c.Request.Context(), tenantID(c), resourceID, from, to)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reservations": reservations})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var conflict *ConflictError
	switch {
	case errors.As(err, &conflict):
		response.ErrorWithDetails(c, http.StatusConflict, "RESERVATION_CONFLICT",
			"Resource is already reserved for the requested interval",
			gin.H{"conflicts": toConflictInfos(conflict.Conflicts)})
	case errors.Is(err, ErrValidation), errors.Is(err, ErrResourceInactive):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrResourceNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusUnprocessableEntity, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, ErrStoreUnavailable):
		response.Error(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Temporary storage contention, retry later")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process reservation")
	}
}

func tenantID(c *gin.Context) int64 {
	return c.GetInt64(middleware.TenantKey)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid reservation id")
		return 0, false
	}
	return id, true
}

func rangeQuery(c *gin.Context, fromKey, toKey string) (resourceID int64, from, to time.Time, ok bool) {
	resourceID, err := strconv.ParseInt(c.Query("resource_id"), 10, 64)
	if err != nil || resourceID <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "resource_id is required")
		return 0, time.Time{}, time.Time{}, false
	}
	from, err = time.Parse(time.RFC3339, c.Query(fromKey))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", fromKey+" must be RFC3339")
		return 0, time.Time{}, time.Time{}, false
	}
	to, err = time.Parse(time.RFC3339, c.Query(toKey))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", toKey+" must be RFC3339")
		return 0, time.Time{}, time.Time{}, false
	}
	return resourceID, from, to, true
}
