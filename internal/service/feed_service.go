package service

import (
	"context"
	"errors"
	"time"

	"campusfeed/internal/cache"
	"campusfeed/internal/featureflags"
	"campusfeed/internal/feed"
	"campusfeed/internal/middleware"
	"campusfeed/internal/models"
	"campusfeed/internal/repository"

	"gorm.io/gorm"
)

const (
	// DefaultFeedLimit is the page size when the client does not specify one.
	DefaultFeedLimit = 20
	// MaxFeedLimit caps client-requested page sizes.
	MaxFeedLimit = 100
)

// FeedService assembles audience-filtered, cursor-paginated feed pages.
type FeedService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	flags    *featureflags.Manager
}

// FeedPage is one page of the feed. NextCursor is nil once the feed is
// exhausted.
type FeedPage struct {
	Posts      []*models.Post `json:"data"`
	NextCursor *string        `json:"nextCursor"`
}

// NewFeedService creates a FeedService.
func NewFeedService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	flags *featureflags.Manager,
) *FeedService {
	return &FeedService{
		postRepo: postRepo,
		userRepo: userRepo,
		flags:    flags,
	}
}

// GetFeed returns the page of posts visible to the viewer that are strictly
// older than the cursor. rawCursor may be empty or garbage; both mean "start
// of feed". Counts are attached by the repository in the same query, so each
// page is truthful at read time.
func (s *FeedService) GetFeed(ctx context.Context, viewerID uint, rawCursor string, limit int) (*FeedPage, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}

	cursor := feed.Decode(rawCursor)

	profile, err := s.viewerProfile(ctx, viewerID)
	if err != nil {
		return nil, models.NewStorageError(err)
	}

	var visible []*models.Post
	if s.flags.Enabled(featureflags.FeedSQLFilter, viewerID) {
		visible, err = s.postRepo.ListVisibleBefore(ctx, cursor, limit, viewerID, profile)
		if err != nil {
			return nil, models.NewStorageError(err)
		}
		middleware.FeedPagesServed.WithLabelValues("sql").Inc()
	} else {
		visible, err = s.collectVisible(ctx, cursor, limit, viewerID, profile)
		if err != nil {
			return nil, models.NewStorageError(err)
		}
		middleware.FeedPagesServed.WithLabelValues("app").Inc()
	}

	page := &FeedPage{Posts: visible}
	if len(visible) == limit {
		c := feed.Encode(visible[len(visible)-1].CreatedAt)
		page.NextCursor = &c
	}
	return page, nil
}

// collectVisible applies the audience predicate in application code. The
// filter runs BEFORE truncation: candidate windows are fetched and filtered
// repeatedly until the page is full or the table is exhausted, so a page is
// never short while older visible posts remain.
func (s *FeedService) collectVisible(ctx context.Context, cursor time.Time, limit int, viewerID uint, profile models.Profile) ([]*models.Post, error) {
	visible := make([]*models.Post, 0, limit)
	window := cursor

	for {
		batch, err := s.postRepo.ListBefore(ctx, window, limit, viewerID)
		if err != nil {
			return nil, err
		}
		for _, p := range batch {
			if p.VisibleTo(viewerID, profile) {
				visible = append(visible, p)
				if len(visible) == limit {
					return visible, nil
				}
			} else {
				middleware.FeedHiddenPosts.Inc()
			}
		}
		if len(batch) < limit {
			// No more candidates.
			return visible, nil
		}
		window = batch[len(batch)-1].CreatedAt
	}
}

// viewerProfile loads the viewer's audience attributes, with a short
// cache-aside. A missing account degrades to the empty profile, which grants
// only public and author-owned posts.
func (s *FeedService) viewerProfile(ctx context.Context, viewerID uint) (models.Profile, error) {
	var user models.User
	err := cache.Aside(ctx, cache.ProfileKey(viewerID), &user, cache.ProfileTTL, func() error {
		u, err := s.userRepo.GetByID(ctx, viewerID)
		if err != nil {
			return err
		}
		user = *u
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Profile{}, nil
	}
	if err != nil {
		return models.Profile{}, err
	}
	return user.Profile(), nil
}
