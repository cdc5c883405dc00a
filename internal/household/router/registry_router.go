package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OpenSAMS/sams/internal/household/service"
)

// RegistryRouter exposes the deduplication endpoints used at intake.
type RegistryRouter struct {
	rs *service.RegistryService
}

func NewRegistryRouter(rs *service.RegistryService) *RegistryRouter {
	return &RegistryRouter{rs: rs}
}

// HandleCheckNationalID handles GET /api/v1/registry/national-id/:id
// Response: DuplicateLookupResult
func (r *RegistryRouter) HandleCheckNationalID(c *gin.Context) {
	nationalID := c.Param("id")

	result, err := r.rs.FindByNationalID(c.Request.Context(), nationalID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// HandleGetRegistry handles GET /api/v1/registry
// Response: array of RegistryPerson
func (r *RegistryRouter) HandleGetRegistry(c *gin.Context) {
	persons, err := r.rs.BuildRegistry(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build registry: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, persons)
}
