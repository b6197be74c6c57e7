package repository

import (
	"context"

	"campusfeed/internal/models"

	"gorm.io/gorm"
)

// ReportRepository defines the interface for post report operations
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	CountByPost(ctx context.Context, postID uint) (int64, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

// Create records a report; a repeat report from the same user on the same
// post is silently absorbed by the unique pair index.
func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO reports (post_id, reporter_id, reason, created_at)
		 VALUES (?, ?, ?, NOW())
		 ON CONFLICT (post_id, reporter_id) DO NOTHING`,
		report.PostID, report.ReporterID, report.Reason,
	).Error
}

func (r *reportRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Report{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}
