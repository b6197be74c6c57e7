package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"campusfeed/internal/featureflags"
	"campusfeed/internal/feed"
	"campusfeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feedFixture builds a post table in memory and serves windows from it the
// way the repository does: strictly older than the cursor, newest first.
type feedFixture struct {
	posts []*models.Post
	calls int
}

func (f *feedFixture) listBefore(_ context.Context, cursor time.Time, limit int, _ uint) ([]*models.Post, error) {
	f.calls++
	sorted := make([]*models.Post, len(f.posts))
	copy(sorted, f.posts)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID > sorted[j].ID
	})

	var out []*models.Post
	for _, p := range sorted {
		if p.CreatedAt.Before(cursor) {
			out = append(out, p)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func newFeedFixture(posts []*models.Post) (*feedFixture, *postRepoStub) {
	fx := &feedFixture{posts: posts}
	repo := noopPostRepo()
	repo.listBeforeFn = fx.listBefore
	return fx, repo
}

func feedServiceWith(postRepo *postRepoStub, userRepo *userRepoStub, flagConfig string) *FeedService {
	return NewFeedService(postRepo, userRepo, featureflags.NewManager(flagConfig))
}

func makePost(id uint, authorID uint, age time.Duration, vis models.Visibility) *models.Post {
	return &models.Post{
		ID:         id,
		UserID:     authorID,
		Content:    "post",
		Visibility: vis,
		CreatedAt:  time.Now().UTC().Add(-age),
	}
}

func TestGetFeed_PublicPostsOnly(t *testing.T) {
	_, postRepo := newFeedFixture([]*models.Post{
		makePost(1, 2, 3*time.Hour, models.PublicVisibility()),
		makePost(2, 2, 2*time.Hour, models.PublicVisibility()),
		makePost(3, 2, 1*time.Hour, models.PublicVisibility()),
	})
	svc := feedServiceWith(postRepo, noopUserRepo(), "")

	page, err := svc.GetFeed(context.Background(), 1, "", 10)
	require.NoError(t, err)
	require.Len(t, page.Posts, 3)

	// Newest first.
	assert.Equal(t, uint(3), page.Posts[0].ID)
	assert.Equal(t, uint(1), page.Posts[2].ID)

	// Short page means the feed is exhausted.
	assert.Nil(t, page.NextCursor)
}

func TestGetFeed_FiltersBeforeTruncating(t *testing.T) {
	// 10 candidates, alternating visible/hidden for viewer 1. A naive
	// truncate-then-filter on a page of 5 would return 2 or 3 posts and lose
	// the rest; the window loop must return a full page of 5 visible posts.
	restricted := models.AudienceVisibility([]string{"2030"}, nil, nil)
	var posts []*models.Post
	for i := 1; i <= 10; i++ {
		vis := models.PublicVisibility()
		if i%2 == 0 {
			vis = restricted
		}
		posts = append(posts, makePost(uint(i), 99, time.Duration(i)*time.Minute, vis))
	}
	fx, postRepo := newFeedFixture(posts)
	svc := feedServiceWith(postRepo, noopUserRepo(), "")

	page, err := svc.GetFeed(context.Background(), 1, "", 5)
	require.NoError(t, err)
	require.Len(t, page.Posts, 5)
	for _, p := range page.Posts {
		assert.True(t, p.Visibility.IsPublic(), "post %d should be public", p.ID)
	}

	// Filling the page required more than one candidate window.
	assert.Greater(t, fx.calls, 1)
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, feed.Encode(page.Posts[4].CreatedAt), *page.NextCursor)
}

func TestGetFeed_AuthorSeesOwnRestrictedPosts(t *testing.T) {
	restricted := models.AudienceVisibility(nil, []string{"mars"}, nil)
	_, postRepo := newFeedFixture([]*models.Post{
		makePost(1, 7, time.Hour, restricted),
		makePost(2, 8, 2*time.Hour, restricted),
	})
	svc := feedServiceWith(postRepo, noopUserRepo(), "")

	page, err := svc.GetFeed(context.Background(), 7, "", 10)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, uint(1), page.Posts[0].ID)
}

func TestGetFeed_MalformedDescriptorReadsAsPublic(t *testing.T) {
	// A stored descriptor with a scalar dimension cannot express an
	// audience, so it must not hide the post from anyone.
	broken := models.ParseVisibility([]byte(`{"batches":"2024"}`))
	_, postRepo := newFeedFixture([]*models.Post{
		makePost(1, 99, time.Hour, broken),
	})
	svc := feedServiceWith(postRepo, noopUserRepo(), "")

	page, err := svc.GetFeed(context.Background(), 7, "", 10)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, uint(1), page.Posts[0].ID)
}

func TestGetFeed_ViewerProfileGatesAudiencePosts(t *testing.T) {
	_, postRepo := newFeedFixture([]*models.Post{
		makePost(1, 99, time.Hour, models.AudienceVisibility(nil, []string{"pune"}, nil)),
		makePost(2, 99, 2*time.Hour, models.PublicVisibility()),
	})

	userRepo := noopUserRepo()
	userRepo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Campus: strPtr("pune")}, nil
	}
	svc := feedServiceWith(postRepo, userRepo, "")

	page, err := svc.GetFeed(context.Background(), 1, "", 10)
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)
}

func TestGetFeed_MissingAccountSeesOnlyPublic(t *testing.T) {
	// GetByID returning ErrRecordNotFound degrades to an empty profile
	// rather than failing the request.
	_, postRepo := newFeedFixture([]*models.Post{
		makePost(1, 99, time.Hour, models.AudienceVisibility(nil, []string{"pune"}, nil)),
		makePost(2, 99, 2*time.Hour, models.PublicVisibility()),
	})
	svc := feedServiceWith(postRepo, noopUserRepo(), "")

	page, err := svc.GetFeed(context.Background(), 123, "", 10)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, uint(2), page.Posts[0].ID)
}

func TestGetFeed_CursorIsExclusive(t *testing.T) {
	boundary := time.Now().UTC().Add(-time.Hour)
	_, postRepo := newFeedFixture([]*models.Post{
		{ID: 1, UserID: 9, Visibility: models.PublicVisibility(), CreatedAt: boundary},
		{ID: 2, UserID: 9, Visibility: models.PublicVisibility(), CreatedAt: boundary.Add(-time.Minute)},
	})
	svc := feedServiceWith(postRepo, noopUserRepo(), "")

	page, err := svc.GetFeed(context.Background(), 1, feed.Encode(boundary), 10)
	require.NoError(t, err)

	// The post at exactly the cursor timestamp is excluded.
	require.Len(t, page.Posts, 1)
	assert.Equal(t, uint(2), page.Posts[0].ID)
}

func TestGetFeed_PaginationWalksWholeFeedWithoutDuplicates(t *testing.T) {
	restricted := models.AudienceVisibility([]string{"2030"}, nil, nil)
	var posts []*models.Post
	for i := 1; i <= 23; i++ {
		vis := models.PublicVisibility()
		if i%3 == 0 {
			vis = restricted
		}
		posts = append(posts, makePost(uint(i), 99, time.Duration(i)*time.Minute, vis))
	}
	_, postRepo := newFeedFixture(posts)
	svc := feedServiceWith(postRepo, noopUserRepo(), "")

	seen := make(map[uint]bool)
	cursor := ""
	for i := 0; i < 20; i++ {
		page, err := svc.GetFeed(context.Background(), 1, cursor, 4)
		require.NoError(t, err)
		for _, p := range page.Posts {
			require.False(t, seen[p.ID], "post %d returned twice", p.ID)
			seen[p.ID] = true
		}
		if page.NextCursor == nil {
			break
		}
		cursor = *page.NextCursor
	}

	// All visible posts and nothing else.
	for _, p := range posts {
		if p.Visibility.IsPublic() {
			assert.True(t, seen[p.ID], "post %d missing from paginated feed", p.ID)
		} else {
			assert.False(t, seen[p.ID], "hidden post %d leaked", p.ID)
		}
	}
}

func TestGetFeed_LimitClamping(t *testing.T) {
	var gotLimit int
	postRepo := noopPostRepo()
	postRepo.listBeforeFn = func(_ context.Context, _ time.Time, limit int, _ uint) ([]*models.Post, error) {
		gotLimit = limit
		return nil, nil
	}
	svc := feedServiceWith(postRepo, noopUserRepo(), "")

	_, err := svc.GetFeed(context.Background(), 1, "", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultFeedLimit, gotLimit)

	_, err = svc.GetFeed(context.Background(), 1, "", 100000)
	require.NoError(t, err)
	assert.Equal(t, MaxFeedLimit, gotLimit)
}

func TestGetFeed_StorageErrorReturnsNoPartialPage(t *testing.T) {
	postRepo := noopPostRepo()
	postRepo.listBeforeFn = func(context.Context, time.Time, int, uint) ([]*models.Post, error) {
		return nil, errors.New("connection refused")
	}
	svc := feedServiceWith(postRepo, noopUserRepo(), "")

	page, err := svc.GetFeed(context.Background(), 1, "", 10)
	require.Error(t, err)
	assert.Nil(t, page)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "STORAGE_ERROR", appErr.Code)
}

func TestGetFeed_SQLStrategyUsesPushdownQuery(t *testing.T) {
	var gotProfile models.Profile
	pushdownCalled := false

	postRepo := noopPostRepo()
	postRepo.listBeforeFn = func(context.Context, time.Time, int, uint) ([]*models.Post, error) {
		t.Fatal("application-side window loop should not run when the flag is on")
		return nil, nil
	}
	postRepo.listVisibleBeforeFn = func(_ context.Context, _ time.Time, _ int, _ uint, profile models.Profile) ([]*models.Post, error) {
		pushdownCalled = true
		gotProfile = profile
		return nil, nil
	}

	userRepo := noopUserRepo()
	userRepo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Campus: strPtr("pune")}, nil
	}

	svc := feedServiceWith(postRepo, userRepo, "feed_sql_filter=on")

	_, err := svc.GetFeed(context.Background(), 1, "", 10)
	require.NoError(t, err)
	require.True(t, pushdownCalled)
	require.NotNil(t, gotProfile.Campus)
	assert.Equal(t, "pune", *gotProfile.Campus)
}
