package router

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/OpenSAMS/sams/internal/auth"
	"github.com/OpenSAMS/sams/internal/household/model"
	"github.com/OpenSAMS/sams/internal/household/service"
	"github.com/OpenSAMS/sams/internal/household/workflow"
)

// HouseholdRouter exposes intake and record-keeping endpoints.
type HouseholdRouter struct {
	hs *service.HouseholdService
}

func NewHouseholdRouter(hs *service.HouseholdService) *HouseholdRouter {
	return &HouseholdRouter{hs: hs}
}

// HandleCreateHousehold handles POST /api/v1/households
// Request body: CreateHouseholdDTO
func (r *HouseholdRouter) HandleCreateHousehold(c *gin.Context) {
	var req model.CreateHouseholdDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	household, err := r.hs.CreateHousehold(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create household: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, household)
}

// HandleListHouseholds handles GET /api/v1/households
// Query params: status, step, district, offset, limit (all optional)
func (r *HouseholdRouter) HandleListHouseholds(c *gin.Context) {
	filter := model.HouseholdFilter{
		ProgramStatus: model.ProgramStatus(c.Query("status")),
		District:      c.Query("district"),
	}
	if step := c.Query("step"); step != "" {
		s := model.AssessmentStep(step)
		filter.AssessmentStep = &s
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil {
		filter.Offset = &offset
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.Limit = &limit
	}

	households, err := r.hs.ListHouseholds(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list households: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, households)
}

// HandleGetHousehold handles GET /api/v1/households/:id
func (r *HouseholdRouter) HandleGetHousehold(c *gin.Context) {
	id, ok := parseHouseholdID(c)
	if !ok {
		return
	}

	household, err := r.hs.GetHouseholdByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, household)
}

// HandleUpdateHousehold handles PUT /api/v1/households/:id
// Request body: UpdateHouseholdDTO. Workflow fields cannot be written here.
func (r *HouseholdRouter) HandleUpdateHousehold(c *gin.Context) {
	id, ok := parseHouseholdID(c)
	if !ok {
		return
	}

	var req model.UpdateHouseholdDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	household, err := r.hs.UpdateHousehold(c.Request.Context(), id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, household)
}

// HandleSubmitToAssessment handles POST /api/v1/households/:id/submit
func (r *HouseholdRouter) HandleSubmitToAssessment(c *gin.Context) {
	id, ok := parseHouseholdID(c)
	if !ok {
		return
	}

	household, err := r.hs.SubmitToAssessment(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, household)
}

// HandleRecordHomeVisit handles POST /api/v1/households/:id/visits
func (r *HouseholdRouter) HandleRecordHomeVisit(c *gin.Context) {
	id, ok := parseHouseholdID(c)
	if !ok {
		return
	}

	var req model.CreateHomeVisitDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	officerID := ""
	if reviewer := auth.GetReviewer(c); reviewer != nil {
		officerID = reviewer.ID.String()
	}

	visit, err := r.hs.RecordHomeVisit(c.Request.Context(), id, officerID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, visit)
}

// HandleListHomeVisits handles GET /api/v1/households/:id/visits
func (r *HouseholdRouter) HandleListHomeVisits(c *gin.Context) {
	id, ok := parseHouseholdID(c)
	if !ok {
		return
	}

	visits, err := r.hs.ListHomeVisits(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list home visits: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, visits)
}

func parseHouseholdID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid household ID format: " + err.Error()})
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError maps service errors to HTTP responses.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrHouseholdNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "household not found"})
	case errors.Is(err, service.ErrStepConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "this application was already moved by another reviewer, refresh to see its current state"})
	case errors.Is(err, service.ErrAlreadyInAssessment):
		c.JSON(http.StatusConflict, gin.H{"error": "household is already in assessment"})
	case errors.Is(err, service.ErrNotInAssessment):
		c.JSON(http.StatusConflict, gin.H{"error": "household is not currently in assessment"})
	case errors.Is(err, service.ErrNationalIDTooShort),
		errors.Is(err, workflow.ErrInvalidStep),
		errors.Is(err, workflow.ErrInvalidDecision):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
