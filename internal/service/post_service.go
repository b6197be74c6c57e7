package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	"campusfeed/internal/models"
	"campusfeed/internal/repository"

	"gorm.io/gorm"
)

// PostService implements post lifecycle and like toggling.
type PostService struct {
	postRepo repository.PostRepository
}

// CreatePostInput carries a new post's fields. Visibility arrives as the raw
// request value (string or object); parsing happens once here at the boundary.
type CreatePostInput struct {
	UserID     uint
	Content    string
	ImageURL   string
	Images     []string
	Category   string
	Visibility json.RawMessage
}

// NewPostService creates a PostService.
func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

// CreatePost validates and stores a new post.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	const minContentLen = 5
	const maxContentLen = 10000

	content := strings.TrimSpace(in.Content)
	if len(content) < minContentLen {
		return nil, models.NewValidationError("Post content is too short")
	}
	if len(content) > maxContentLen {
		return nil, models.NewValidationError("Post content is too long (max 10000 characters)")
	}

	category := in.Category
	if category == "" {
		category = models.CategoryGeneral
	}
	if !models.ValidCategory(category) {
		return nil, models.NewValidationError("Invalid category")
	}

	if len(in.Images) > models.MaxPostImages {
		return nil, models.NewValidationError("A post can carry at most 5 images")
	}
	images := make(models.ImageList, 0, len(in.Images))
	for _, img := range in.Images {
		img = strings.TrimSpace(img)
		if img == "" {
			continue
		}
		if _, err := url.ParseRequestURI(img); err != nil {
			return nil, models.NewValidationError("Image URLs must be valid URLs")
		}
		images = append(images, img)
	}

	// A single legacy image_url still works; clients migrating to the
	// multi-image field may send either or both.
	imageURL := strings.TrimSpace(in.ImageURL)
	if imageURL == "" && len(images) > 0 {
		imageURL = images[0]
	}

	post := &models.Post{
		Content:    content,
		ImageURL:   imageURL,
		Images:     images,
		Category:   category,
		Visibility: models.ParseVisibility(in.Visibility),
		UserID:     in.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, models.NewStorageError(err)
	}

	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// GetPost fetches one post with viewer-relative aggregates. The visibility
// check is the caller's concern for detail views; the feed filters itself.
func (s *PostService) GetPost(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id, currentUserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Post", id)
	}
	return post, err
}

// GetUserPosts lists a user's own posts newest-first.
func (s *PostService) GetUserPosts(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.postRepo.GetByUserID(ctx, userID, limit, offset, currentUserID)
}

// DeletePost removes a post after an ownership check.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError("Post", postID)
	}
	if err != nil {
		return err
	}

	if post.UserID != userID {
		return models.NewUnauthorizedError("You can only delete your own posts")
	}

	return s.postRepo.Delete(ctx, postID)
}

// ToggleLike flips the viewer's like on a post and returns the refreshed
// post. The insert-first, delete-on-conflict sequence converges under races:
// the storage-level unique pair constraint guarantees at most one row no
// matter how toggles interleave.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (*models.Post, error) {
	inserted, err := s.postRepo.Like(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if !inserted {
		// Row already existed: this toggle is an unlike.
		if err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
			return nil, err
		}
	}

	return s.postRepo.GetByID(ctx, postID, userID)
}
