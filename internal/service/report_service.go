package service

import (
	"context"
	"errors"
	"strings"

	"campusfeed/internal/models"
	"campusfeed/internal/repository"

	"gorm.io/gorm"
)

// ReportService records user reports against posts.
type ReportService struct {
	reportRepo repository.ReportRepository
	postRepo   repository.PostRepository
}

// NewReportService creates a ReportService.
func NewReportService(
	reportRepo repository.ReportRepository,
	postRepo repository.PostRepository,
) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
		postRepo:   postRepo,
	}
}

// ReportPost files a report. Reporting the same post twice is a no-op rather
// than an error.
func (s *ReportService) ReportPost(ctx context.Context, reporterID, postID uint, reason string) error {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post", postID)
		}
		return err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return models.NewValidationError("Reason is required")
	}

	return s.reportRepo.Create(ctx, &models.Report{
		PostID:     postID,
		ReporterID: reporterID,
		Reason:     reason,
	})
}
