package service

import (
	"context"
	"testing"

	"campusfeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestReportPost_Valid(t *testing.T) {
	var got *models.Report
	reportRepo := noopReportRepo()
	reportRepo.createFn = func(_ context.Context, r *models.Report) error {
		got = r
		return nil
	}
	svc := NewReportService(reportRepo, noopPostRepo())

	require.NoError(t, svc.ReportPost(context.Background(), 1, 3, "  spam  "))
	require.NotNil(t, got)
	assert.Equal(t, uint(1), got.ReporterID)
	assert.Equal(t, uint(3), got.PostID)
	assert.Equal(t, "spam", got.Reason)
}

func TestReportPost_ReasonRequired(t *testing.T) {
	svc := NewReportService(noopReportRepo(), noopPostRepo())

	err := svc.ReportPost(context.Background(), 1, 3, "   ")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestReportPost_PostMustExist(t *testing.T) {
	postRepo := noopPostRepo()
	postRepo.getByIDFn = func(context.Context, uint, uint) (*models.Post, error) {
		return nil, gorm.ErrRecordNotFound
	}
	svc := NewReportService(noopReportRepo(), postRepo)

	err := svc.ReportPost(context.Background(), 1, 3, "spam")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestReportPost_DuplicateIsNoop(t *testing.T) {
	// The repository absorbs conflicts with ON CONFLICT DO NOTHING, so the
	// service simply succeeds.
	reportRepo := noopReportRepo()
	svc := NewReportService(reportRepo, noopPostRepo())

	require.NoError(t, svc.ReportPost(context.Background(), 1, 3, "spam"))
	require.NoError(t, svc.ReportPost(context.Background(), 1, 3, "spam again"))
}
