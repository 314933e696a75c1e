package service

import (
	"context"
	"errors"
	"testing"

	"mosaic/internal/models"
	"mosaic/internal/uploader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, uint, uint) (*models.Post, error)
	getByUserIDFn   func(context.Context, uint, int, int, uint) ([]*models.Post, error)
	listFeedFn      func(context.Context, uint, int, int) ([]*models.Post, error)
	updateFn        func(context.Context, *models.Post) error
	replaceImagesFn func(context.Context, uint, []models.PostImage) error
	deleteFn        func(context.Context, uint) (int64, error)
	likeFn          func(context.Context, uint, uint) (bool, error)
	unlikeFn        func(context.Context, uint, uint) (bool, error)
	saveFn          func(context.Context, uint, uint) (bool, error)
	unsaveFn        func(context.Context, uint, uint) (bool, error)
	getLikersFn     func(context.Context, uint) ([]models.UserSummary, error)
	listSavedFn     func(context.Context, uint, int, int) ([]*models.Post, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, currentUserID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *postRepoStub) GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.getByUserIDFn(ctx, userID, limit, offset, currentUserID)
}
func (s *postRepoStub) ListFeed(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.listFeedFn(ctx, userID, limit, offset)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) ReplaceImages(ctx context.Context, postID uint, images []models.PostImage) error {
	return s.replaceImagesFn(ctx, postID, images)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) (int64, error) {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) (bool, error) {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) (bool, error) {
	return s.unlikeFn(ctx, userID, postID)
}
func (s *postRepoStub) Save(ctx context.Context, userID, postID uint) (bool, error) {
	return s.saveFn(ctx, userID, postID)
}
func (s *postRepoStub) Unsave(ctx context.Context, userID, postID uint) (bool, error) {
	return s.unsaveFn(ctx, userID, postID)
}
func (s *postRepoStub) GetLikers(ctx context.Context, postID uint) ([]models.UserSummary, error) {
	return s.getLikersFn(ctx, postID)
}
func (s *postRepoStub) ListSaved(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.listSavedFn(ctx, userID, limit, offset)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:  func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id, _ uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		getByUserIDFn: func(_ context.Context, _ uint, _, _ int, _ uint) ([]*models.Post, error) {
			return nil, nil
		},
		listFeedFn:      func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) { return nil, nil },
		updateFn:        func(_ context.Context, _ *models.Post) error { return nil },
		replaceImagesFn: func(_ context.Context, _ uint, _ []models.PostImage) error { return nil },
		deleteFn:        func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		likeFn:          func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		unlikeFn:        func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		saveFn:          func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		unsaveFn:        func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		getLikersFn:     func(_ context.Context, _ uint) ([]models.UserSummary, error) { return nil, nil },
		listSavedFn:     func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) { return nil, nil },
	}
}

// uploaderStub is a stub for uploader.Uploader.
type uploaderStub struct {
	uploadFn func(context.Context, []byte) (*uploader.Asset, error)
}

func (s *uploaderStub) Upload(ctx context.Context, payload []byte) (*uploader.Asset, error) {
	return s.uploadFn(ctx, payload)
}

func okUploader() *uploaderStub {
	return &uploaderStub{
		uploadFn: func(_ context.Context, _ []byte) (*uploader.Asset, error) {
			return &uploader.Asset{AssetID: "asset-1", URL: "https://media.example/asset-1"}, nil
		},
	}
}

// assertAppError asserts that err is an AppError carrying the given code.
func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// pngPayload is a bare base64 string accepted by DecodePayload.
const pngPayload = "aGVsbG8gd29ybGQ="

func TestCreatePost_RequiresImages(t *testing.T) {
	t.Parallel()
	svc := NewPostService(noopPostRepo(), okUploader())

	_, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID:  1,
		Caption: "no images here",
	})
	assertAppError(t, err, models.CodeValidation)
}

func TestCreatePost_TooManyImages(t *testing.T) {
	t.Parallel()
	svc := NewPostService(noopPostRepo(), okUploader())

	images := make([]string, 11)
	for i := range images {
		images[i] = pngPayload
	}
	_, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: 1, Images: images})
	assertAppError(t, err, models.CodeValidation)
}

func TestCreatePost_UploadFailureAbortsEverything(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	created := false
	repo.createFn = func(_ context.Context, _ *models.Post) error {
		created = true
		return nil
	}

	calls := 0
	up := &uploaderStub{
		uploadFn: func(_ context.Context, _ []byte) (*uploader.Asset, error) {
			calls++
			if calls > 1 {
				return nil, errors.New("media host down")
			}
			return &uploader.Asset{AssetID: "a", URL: "u"}, nil
		},
	}

	svc := NewPostService(repo, up)
	_, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID: 1,
		Images: []string{pngPayload, pngPayload, pngPayload},
	})

	assertAppError(t, err, models.CodeUpstream)
	assert.False(t, created, "post must not be persisted when any upload fails")
}

func TestCreatePost_ImagesKeepSubmissionOrder(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	var got *models.Post
	repo.createFn = func(_ context.Context, p *models.Post) error {
		got = p
		p.ID = 7
		return nil
	}

	n := 0
	up := &uploaderStub{
		uploadFn: func(_ context.Context, _ []byte) (*uploader.Asset, error) {
			n++
			return &uploader.Asset{AssetID: "a", URL: "u"}, nil
		},
	}

	svc := NewPostService(repo, up)
	_, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID: 1,
		Images: []string{pngPayload, pngPayload, pngPayload},
	})
	require.NoError(t, err)
	require.Len(t, got.Images, 3)
	for i, img := range got.Images {
		assert.Equal(t, i, img.Position)
	}
}

func TestUpdatePost_OnlyOwnerMayEdit(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: 42}, nil
	}

	svc := NewPostService(repo, okUploader())
	_, err := svc.UpdatePost(context.Background(), UpdatePostInput{
		UserID:  1, // not the owner
		PostID:  5,
		Caption: "hijacked",
	})
	assertAppError(t, err, models.CodeUnauthorized)
}

func TestUpdatePost_KeepsImagesWhenNoneSubmitted(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: 1}, nil
	}
	replaced := false
	repo.replaceImagesFn = func(_ context.Context, _ uint, _ []models.PostImage) error {
		replaced = true
		return nil
	}

	svc := NewPostService(repo, okUploader())
	_, err := svc.UpdatePost(context.Background(), UpdatePostInput{
		UserID:  1,
		PostID:  5,
		Caption: "new caption",
	})
	require.NoError(t, err)
	assert.False(t, replaced, "image set must be untouched when the update carries no images")
}

func TestDeletePost_OnlyOwnerMayDelete(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: 42}, nil
	}

	svc := NewPostService(repo, okUploader())
	_, err := svc.DeletePost(context.Background(), DeletePostInput{UserID: 1, PostID: 5})
	assertAppError(t, err, models.CodeUnauthorized)
}

func TestDeletePost_ReportsCascadeCount(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: 1}, nil
	}
	repo.deleteFn = func(_ context.Context, _ uint) (int64, error) { return 4, nil }

	svc := NewPostService(repo, okUploader())
	result, err := svc.DeletePost(context.Background(), DeletePostInput{UserID: 1, PostID: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(4), result.CommentsDeleted)
}

func TestLikePost_DuplicateIsConflict(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	repo.likeFn = func(_ context.Context, _, _ uint) (bool, error) { return false, nil }

	svc := NewPostService(repo, okUploader())
	err := svc.LikePost(context.Background(), 1, 5)
	assertAppError(t, err, models.CodeConflict)
}

func TestUnlikePost_MissingLikeIsConflict(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	repo.unlikeFn = func(_ context.Context, _, _ uint) (bool, error) { return false, nil }

	svc := NewPostService(repo, okUploader())
	err := svc.UnlikePost(context.Background(), 1, 5)
	assertAppError(t, err, models.CodeConflict)
}

func TestSavePost_DuplicateIsDuplicateNotConflict(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	repo.saveFn = func(_ context.Context, _, _ uint) (bool, error) { return false, nil }

	svc := NewPostService(repo, okUploader())
	err := svc.SavePost(context.Background(), 1, 5)
	assertAppError(t, err, models.CodeDuplicate)
}

func TestUnsavePost_MissingSaveIsConflict(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	repo.unsaveFn = func(_ context.Context, _, _ uint) (bool, error) { return false, nil }

	svc := NewPostService(repo, okUploader())
	err := svc.UnsavePost(context.Background(), 1, 5)
	assertAppError(t, err, models.CodeConflict)
}

func TestLikePost_UnknownPost(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return nil, models.NewNotFoundError("Post", id)
	}

	svc := NewPostService(repo, okUploader())
	err := svc.LikePost(context.Background(), 1, 99)
	assertAppError(t, err, models.CodeNotFound)
}

func TestGetPost_DensifiesLikers(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	repo.getLikersFn = func(_ context.Context, _ uint) ([]models.UserSummary, error) {
		return []models.UserSummary{{ID: 2, Username: "amira"}}, nil
	}

	svc := NewPostService(repo, okUploader())
	post, err := svc.GetPost(context.Background(), 5, 1)
	require.NoError(t, err)
	require.Len(t, post.Likers, 1)
	assert.Equal(t, "amira", post.Likers[0].Username)
}
