package uploads

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/OpenSAMS/sams/internal/auth"
)

const maxUploadBytes = 32 << 20

// Router exposes supporting-document upload and retrieval endpoints.
type Router struct {
	service *DocumentService
}

func NewRouter(service *DocumentService) *Router {
	return &Router{service: service}
}

// HandleUpload handles POST /api/v1/documents (multipart form, field "file").
func (r *Router) HandleUpload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	uploaderID := ""
	if reviewer := auth.GetReviewer(c); reviewer != nil {
		uploaderID = reviewer.ID.String()
	}

	doc, err := r.service.Upload(c.Request.Context(), header.Filename, file, header.Size, header.Header.Get("Content-Type"), uploaderID)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "document upload failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}

	c.JSON(http.StatusCreated, doc)
}

// HandleGetMetadata handles GET /api/v1/documents/:id.
func (r *Router) HandleGetMetadata(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document ID format"})
		return
	}

	doc, err := r.service.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}

	c.JSON(http.StatusOK, doc)
}

// HandleDownload handles GET /api/v1/documents/:id/download.
func (r *Router) HandleDownload(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document ID format"})
		return
	}

	doc, err := r.service.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}

	reader, contentType, err := r.service.Download(c.Request.Context(), doc.Key)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "document content not found"})
		return
	}
	defer reader.Close()

	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	io.Copy(c.Writer, reader)
}
