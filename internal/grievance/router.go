package grievance

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Router exposes grievance intake and triage endpoints.
type Router struct {
	service *Service
}

func NewRouter(service *Service) *Router {
	return &Router{service: service}
}

// HandleCreate handles POST /api/v1/grievances
func (r *Router) HandleCreate(c *gin.Context) {
	var req CreateGrievanceDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	grievance, err := r.service.Create(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create grievance: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, grievance)
}

// HandleList handles GET /api/v1/grievances
// Query params: status, offset, limit (all optional)
func (r *Router) HandleList(c *gin.Context) {
	var offset, limit *int
	if v, err := strconv.Atoi(c.Query("offset")); err == nil {
		offset = &v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = &v
	}

	grievances, err := r.service.List(c.Request.Context(), Status(c.Query("status")), offset, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list grievances: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, grievances)
}

// HandleGet handles GET /api/v1/grievances/:id
func (r *Router) HandleGet(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid grievance ID format: " + err.Error()})
		return
	}

	grievance, err := r.service.GetByID(c.Request.Context(), id)
	if err != nil {
		r.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, grievance)
}

// HandleUpdateStatus handles PUT /api/v1/grievances/:id
// Request body: UpdateGrievanceDTO
func (r *Router) HandleUpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid grievance ID format: " + err.Error()})
		return
	}

	var req UpdateGrievanceDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	grievance, err := r.service.UpdateStatus(c.Request.Context(), id, &req)
	if err != nil {
		r.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, grievance)
}

func (r *Router) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrGrievanceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "grievance not found"})
	case errors.Is(err, ErrInvalidStatusChange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
