package payment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Router exposes disbursement scheduling and settlement endpoints.
type Router struct {
	service *Service
}

func NewRouter(service *Service) *Router {
	return &Router{service: service}
}

// HandleGenerateSchedule handles POST /api/v1/payments/generate
func (r *Router) HandleGenerateSchedule(c *gin.Context) {
	var req GenerateScheduleDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	created, err := r.service.GenerateSchedule(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate payment schedule: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"scheduled": len(created),
		"payments":  created,
	})
}

// HandleList handles GET /api/v1/payments
// Query params: householdId, status, year, month, offset, limit (all optional)
func (r *Router) HandleList(c *gin.Context) {
	var filter PaymentFilter
	filter.Status = Status(c.Query("status"))

	if raw := c.Query("householdId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid household ID format: " + err.Error()})
			return
		}
		filter.HouseholdID = &id
	}
	if v, err := strconv.Atoi(c.Query("year")); err == nil {
		filter.PeriodYear = &v
	}
	if v, err := strconv.Atoi(c.Query("month")); err == nil {
		filter.PeriodMonth = &v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil {
		filter.Offset = &v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.Limit = &v
	}

	payments, err := r.service.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list payments: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, payments)
}

// HandleGet handles GET /api/v1/payments/:id
func (r *Router) HandleGet(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment ID format: " + err.Error()})
		return
	}

	p, err := r.service.GetByID(c.Request.Context(), id)
	if err != nil {
		r.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// HandleUpdateStatus handles PUT /api/v1/payments/:id
// Request body: UpdatePaymentDTO
func (r *Router) HandleUpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment ID format: " + err.Error()})
		return
	}

	var req UpdatePaymentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	p, err := r.service.UpdateStatus(c.Request.Context(), id, &req)
	if err != nil {
		r.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (r *Router) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrPaymentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
	case errors.Is(err, ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidStatusChange):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
