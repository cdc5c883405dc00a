package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentService coordinates supporting-document uploads: the binary goes
// to the storage driver, the metadata row to the database.
type DocumentService struct {
	driver StorageDriver
	db     *gorm.DB
}

func NewDocumentService(driver StorageDriver, db *gorm.DB) *DocumentService {
	return &DocumentService{driver: driver, db: db}
}

// Upload stores the incoming file and records its metadata. If the metadata
// insert fails the stored binary is removed again so no orphan remains.
func (s *DocumentService) Upload(ctx context.Context, filename string, reader io.Reader, size int64, mime, uploaderID string) (*Document, error) {
	if mime == "" {
		mime = "application/octet-stream"
	}
	key := uuid.New().String() + filepath.Ext(filename)

	if err := s.driver.Save(ctx, key, reader, mime); err != nil {
		return nil, fmt.Errorf("storage driver failed: %w", err)
	}

	url, err := s.driver.GenerateURL(ctx, key, 0)
	if err != nil {
		s.cleanup(ctx, key)
		return nil, fmt.Errorf("failed to generate URL: %w", err)
	}

	doc := &Document{
		Name:       filename,
		Key:        key,
		URL:        url,
		Size:       size,
		MimeType:   mime,
		UploaderID: uploaderID,
	}
	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		s.cleanup(ctx, key)
		return nil, fmt.Errorf("failed to persist document metadata: %w", err)
	}

	slog.InfoContext(ctx, "document uploaded", "id", doc.ID, "key", key)
	return doc, nil
}

// GetByID retrieves document metadata.
func (s *DocumentService) GetByID(ctx context.Context, id uuid.UUID) (*Document, error) {
	var doc Document
	result := s.db.WithContext(ctx).First(&doc, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("document %s not found", id)
		}
		return nil, fmt.Errorf("failed to retrieve document: %w", result.Error)
	}
	return &doc, nil
}

// Download streams the binary content for a stored document key.
func (s *DocumentService) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	return s.driver.Get(ctx, key)
}

func (s *DocumentService) cleanup(ctx context.Context, key string) {
	if err := s.driver.Delete(ctx, key); err != nil {
		slog.WarnContext(ctx, "failed to cleanup orphaned file", "key", key, "error", err)
	}
}
