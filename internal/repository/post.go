// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"time"

	"campusfeed/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error)
	// ListBefore returns the raw candidate window: posts strictly older than
	// cursor, newest first, regardless of audience. Callers filter.
	ListBefore(ctx context.Context, cursor time.Time, limit int, currentUserID uint) ([]*models.Post, error)
	// ListVisibleBefore pushes the audience predicate into the query as a
	// jsonb expression. Must match models.Post.VisibleTo row for row.
	ListVisibleBefore(ctx context.Context, cursor time.Time, limit int, viewerID uint, profile models.Profile) ([]*models.Post, error)
	Delete(ctx context.Context, id uint) error
	Like(ctx context.Context, userID, postID uint) (bool, error)
	Unlike(ctx context.Context, userID, postID uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	var post models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Where("user_id = ?", userID).
		Order("posts.created_at DESC, posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListBefore(ctx context.Context, cursor time.Time, limit int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Where("posts.created_at < ?", cursor).
		Order("posts.created_at DESC, posts.id DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

// visibleExpr mirrors Visibility.Matches in SQL. The branches, in order:
// author's own rows, NULL, types this system never wrote (fail open),
// strings (only "campus" constrains, gated on the viewer having any campus),
// and the structured descriptor with its per-dimension empty-or-member test.
// jsonb_exists() is used instead of the ? operator to avoid colliding with
// placeholder rewriting. The CASE ladders pin evaluation order: any
// dimension that is not an array (or absent) fails the whole descriptor
// open before jsonb_array_length can error on a legacy malformed row, the
// same way the in-process evaluator treats an undecodable descriptor.
const visibleExpr = `(
	posts.user_id = ?
	OR posts.visibility IS NULL
	OR (jsonb_typeof(posts.visibility) <> 'object' AND jsonb_typeof(posts.visibility) <> 'string')
	OR (jsonb_typeof(posts.visibility) = 'string'
		AND (posts.visibility::text <> '"campus"' OR ?::text IS NOT NULL))
	OR (jsonb_typeof(posts.visibility) = 'object'
		AND CASE
			WHEN COALESCE(jsonb_typeof(posts.visibility->'batches'), 'null') NOT IN ('array', 'null')
				OR COALESCE(jsonb_typeof(posts.visibility->'campuses'), 'null') NOT IN ('array', 'null')
				OR COALESCE(jsonb_typeof(posts.visibility->'branches'), 'null') NOT IN ('array', 'null')
			THEN TRUE
			ELSE CASE
					WHEN COALESCE(jsonb_typeof(posts.visibility->'batches'), 'null') = 'null' THEN TRUE
					WHEN jsonb_array_length(posts.visibility->'batches') = 0 THEN TRUE
					ELSE ?::text IS NOT NULL AND jsonb_exists(posts.visibility->'batches', ?::text)
				END
				AND CASE
					WHEN COALESCE(jsonb_typeof(posts.visibility->'campuses'), 'null') = 'null' THEN TRUE
					WHEN jsonb_array_length(posts.visibility->'campuses') = 0 THEN TRUE
					ELSE ?::text IS NOT NULL AND jsonb_exists(posts.visibility->'campuses', ?::text)
				END
				AND CASE
					WHEN COALESCE(jsonb_typeof(posts.visibility->'branches'), 'null') = 'null' THEN TRUE
					WHEN jsonb_array_length(posts.visibility->'branches') = 0 THEN TRUE
					ELSE ?::text IS NOT NULL AND jsonb_exists(posts.visibility->'branches', ?::text)
				END
		END)
)`

func (r *postRepository) ListVisibleBefore(ctx context.Context, cursor time.Time, limit int, viewerID uint, profile models.Profile) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), viewerID).
		Preload("User").
		Where("posts.created_at < ?", cursor).
		Where(visibleExpr,
			viewerID,
			normalizeAttr(profile.Campus),
			normalizeAttr(profile.Batch), normalizeAttr(profile.Batch),
			normalizeAttr(profile.Campus), normalizeAttr(profile.Campus),
			normalizeAttr(profile.Branch), normalizeAttr(profile.Branch),
		).
		Order("posts.created_at DESC, posts.id DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

// normalizeAttr maps empty strings to SQL NULL so the predicate treats them
// as absent, matching the in-process evaluator.
func normalizeAttr(attr *string) *string {
	if attr == nil || *attr == "" {
		return nil
	}
	return attr
}

// applyPostDetails adds subqueries to fetch counts and liked status in a single query.
// Counts always reflect current database state; they are never cached.
func (r *postRepository) applyPostDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) as comment_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) as like_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) as is_liked", currentUserID)
	}

	return db.Select(selectQuery + ", false as is_liked")
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Post{}, id).Error
}

// Like inserts a like row, reporting whether a row was actually created.
// INSERT ... ON CONFLICT DO NOTHING is atomic against concurrent toggles, so
// two devices racing can never produce a duplicate pair.
func (r *postRepository) Like(ctx context.Context, userID, postID uint) (bool, error) {
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO likes (user_id, post_id, created_at)
		 VALUES (?, ?, NOW())
		 ON CONFLICT (user_id, post_id) DO NOTHING`,
		userID, postID,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	// Hard delete the like record (not soft delete)
	return r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{}).Error
}
