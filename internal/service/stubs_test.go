package service

import (
	"context"
	"time"

	"campusfeed/internal/models"

	"gorm.io/gorm"
)

type postRepoStub struct {
	createFn            func(context.Context, *models.Post) error
	getByIDFn           func(context.Context, uint, uint) (*models.Post, error)
	getByUserIDFn       func(context.Context, uint, int, int, uint) ([]*models.Post, error)
	listBeforeFn        func(context.Context, time.Time, int, uint) ([]*models.Post, error)
	listVisibleBeforeFn func(context.Context, time.Time, int, uint, models.Profile) ([]*models.Post, error)
	deleteFn            func(context.Context, uint) error
	likeFn              func(context.Context, uint, uint) (bool, error)
	unlikeFn            func(context.Context, uint, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *postRepoStub) GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.getByUserIDFn(ctx, userID, limit, offset, currentUserID)
}
func (s *postRepoStub) ListBefore(ctx context.Context, cursor time.Time, limit int, currentUserID uint) ([]*models.Post, error) {
	return s.listBeforeFn(ctx, cursor, limit, currentUserID)
}
func (s *postRepoStub) ListVisibleBefore(ctx context.Context, cursor time.Time, limit int, viewerID uint, profile models.Profile) ([]*models.Post, error) {
	return s.listVisibleBeforeFn(ctx, cursor, limit, viewerID, profile)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) (bool, error) {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) error {
	return s.unlikeFn(ctx, userID, postID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:      func(context.Context, *models.Post) error { return nil },
		getByIDFn:     func(context.Context, uint, uint) (*models.Post, error) { return &models.Post{}, nil },
		getByUserIDFn: func(context.Context, uint, int, int, uint) ([]*models.Post, error) { return nil, nil },
		listBeforeFn:  func(context.Context, time.Time, int, uint) ([]*models.Post, error) { return nil, nil },
		listVisibleBeforeFn: func(context.Context, time.Time, int, uint, models.Profile) ([]*models.Post, error) {
			return nil, nil
		},
		deleteFn: func(context.Context, uint) error { return nil },
		likeFn:   func(context.Context, uint, uint) (bool, error) { return true, nil },
		unlikeFn: func(context.Context, uint, uint) error { return nil },
	}
}

type userRepoStub struct {
	createFn     func(context.Context, *models.User) error
	getByIDFn    func(context.Context, uint) (*models.User, error)
	getByEmailFn func(context.Context, string) (*models.User, error)
	updateFn     func(context.Context, *models.User) error
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn:     func(context.Context, *models.User) error { return nil },
		getByIDFn:    func(context.Context, uint) (*models.User, error) { return nil, gorm.ErrRecordNotFound },
		getByEmailFn: func(context.Context, string) (*models.User, error) { return nil, nil },
		updateFn:     func(context.Context, *models.User) error { return nil },
	}
}

type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint) ([]*models.Comment, error)
	updateFn     func(context.Context, *models.Comment) error
	deleteFn     func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:     func(context.Context, *models.Comment) error { return nil },
		getByIDFn:    func(context.Context, uint) (*models.Comment, error) { return &models.Comment{}, nil },
		listByPostFn: func(context.Context, uint) ([]*models.Comment, error) { return nil, nil },
		updateFn:     func(context.Context, *models.Comment) error { return nil },
		deleteFn:     func(context.Context, uint) error { return nil },
	}
}

type reportRepoStub struct {
	createFn      func(context.Context, *models.Report) error
	countByPostFn func(context.Context, uint) (int64, error)
}

func (s *reportRepoStub) Create(ctx context.Context, report *models.Report) error {
	return s.createFn(ctx, report)
}
func (s *reportRepoStub) CountByPost(ctx context.Context, postID uint) (int64, error) {
	return s.countByPostFn(ctx, postID)
}

func noopReportRepo() *reportRepoStub {
	return &reportRepoStub{
		createFn:      func(context.Context, *models.Report) error { return nil },
		countByPostFn: func(context.Context, uint) (int64, error) { return 0, nil },
	}
}

func strPtr(s string) *string { return &s }
