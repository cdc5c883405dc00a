package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"
)

// AuthService provides reviewer lookups for the authentication middleware.
type AuthService struct {
	db *gorm.DB
}

// NewAuthService creates a new AuthService instance
func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

// GetReviewerByToken retrieves the active reviewer holding the given API
// token. Returns gorm.ErrRecordNotFound when no active reviewer matches.
func (as *AuthService) GetReviewerByToken(ctx context.Context, token string) (*Reviewer, error) {
	if token == "" {
		return nil, fmt.Errorf("token is empty")
	}

	var reviewer Reviewer
	result := as.db.WithContext(ctx).
		Where("api_token = ? AND active = ?", token, true).
		First(&reviewer)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			slog.Debug("no active reviewer for token")
			return nil, result.Error
		}
		slog.Error("failed to fetch reviewer from database", "error", result.Error)
		return nil, fmt.Errorf("failed to fetch reviewer: %w", result.Error)
	}

	return &reviewer, nil
}

// ExtractTokenFromHeader pulls the opaque token out of an Authorization
// header, accepting both "Bearer <token>" and a bare token.
func ExtractTokenFromHeader(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", fmt.Errorf("authorization header is empty")
	}
	if token, found := strings.CutPrefix(header, "Bearer "); found {
		token = strings.TrimSpace(token)
		if token == "" {
			return "", fmt.Errorf("bearer token is empty")
		}
		return token, nil
	}
	return header, nil
}
