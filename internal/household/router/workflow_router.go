package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OpenSAMS/sams/internal/auth"
	"github.com/OpenSAMS/sams/internal/household/model"
	"github.com/OpenSAMS/sams/internal/household/service"
)

// WorkflowRouter exposes the assessment workflow endpoints: progressing a
// household through the approval chain, saving work-in-progress notes, and
// reading the audit history.
type WorkflowRouter struct {
	ps *service.ProgressionService
}

func NewWorkflowRouter(ps *service.ProgressionService) *WorkflowRouter {
	return &WorkflowRouter{ps: ps}
}

// HandleProgress handles POST /api/v1/households/:id/workflow/progress
// Request body: ProgressAssessmentDTO. The authenticated reviewer's role
// must match the step being decided.
func (r *WorkflowRouter) HandleProgress(c *gin.Context) {
	id, ok := parseHouseholdID(c)
	if !ok {
		return
	}

	var req model.ProgressAssessmentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	reviewer := auth.GetReviewer(c)
	if reviewer == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	if !auth.CanActOnStep(reviewer.Role, req.Step) {
		c.JSON(http.StatusForbidden, gin.H{"error": "role may not decide this step"})
		return
	}

	household, err := r.ps.Progress(c.Request.Context(), id, req.Step, req.Decision, req.Comments, req.Snapshot, reviewer.ID.String())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, household)
}

// HandleSaveNotes handles POST /api/v1/households/:id/workflow/notes
// Request body: SaveStepNotesDTO. Persists decision/comment fields without
// progressing the workflow.
func (r *WorkflowRouter) HandleSaveNotes(c *gin.Context) {
	id, ok := parseHouseholdID(c)
	if !ok {
		return
	}

	var req model.SaveStepNotesDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	reviewer := auth.GetReviewer(c)
	if reviewer == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	if !auth.CanActOnStep(reviewer.Role, req.Step) {
		c.JSON(http.StatusForbidden, gin.H{"error": "role may not decide this step"})
		return
	}

	household, err := r.ps.SaveStepNotes(c.Request.Context(), id, req.Step, req.Decision, req.Comments)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, household)
}

// HandleGetHistory handles GET /api/v1/households/:id/workflow/history
func (r *WorkflowRouter) HandleGetHistory(c *gin.Context) {
	id, ok := parseHouseholdID(c)
	if !ok {
		return
	}

	entries, err := r.ps.History(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}
