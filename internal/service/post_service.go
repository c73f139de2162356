package service

import (
	"context"

	"dojo/internal/models"
	"dojo/internal/repository"
	"dojo/internal/serializer"
	"dojo/internal/storage"
	"dojo/internal/validation"
)

type PostService struct {
	postRepo repository.PostRepository
	store    storage.Gateway
	uploads  uploader
}

type CreatePostInput struct {
	UserID uint
	Data   serializer.PostInput
	File   *FileInput
}

type UpdatePostInput struct {
	UserID uint
	PostID uint
	Data   serializer.PostInput
	// File is optional on update.
	File *FileInput
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

// NewPostService wires the post rules to a repository and the blob store.
// maxUploadBytes bounds the size of post media.
func NewPostService(postRepo repository.PostRepository, store storage.Gateway, maxUploadBytes int64) *PostService {
	return &PostService{
		postRepo: postRepo,
		store:    store,
		uploads:  uploader{store: store, maxBytes: maxUploadBytes},
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := in.Data.Validate(); err != nil {
		return nil, err
	}
	if in.File == nil {
		return nil, models.NewFieldError("file", "No file was submitted.")
	}

	url, err := s.uploads.put(ctx, "file", storage.PostPrefix, in.File, validation.PostMediaTypes)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:       in.Data.Title,
		Category:    in.Data.Category,
		Description: in.Data.Description,
		Upload:      url,
		UserID:      in.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		storage.DeleteQuietly(ctx, s.store, url)
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

func (s *PostService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	return s.postRepo.List(ctx)
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// UpdatePost replaces the post's fields and, when a file is given, its
// media. The previous blob is removed once the new URL is saved.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}
	if err := in.Data.Validate(); err != nil {
		return nil, err
	}

	oldUpload := post.Upload
	if in.File != nil {
		url, err := s.uploads.put(ctx, "file", storage.PostPrefix, in.File, validation.PostMediaTypes)
		if err != nil {
			return nil, err
		}
		post.Upload = url
	}

	post.Title = in.Data.Title
	post.Category = in.Data.Category
	post.Description = in.Data.Description
	if err := s.postRepo.Update(ctx, post); err != nil {
		if post.Upload != oldUpload {
			storage.DeleteQuietly(ctx, s.store, post.Upload)
		}
		return nil, err
	}
	if post.Upload != oldUpload {
		storage.DeleteQuietly(ctx, s.store, oldUpload)
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

// DeletePost removes the media blob (best effort) and then the post with its
// likes and comments.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only delete your own posts")
	}

	storage.DeleteQuietly(ctx, s.store, post.Upload)
	if err := s.postRepo.Delete(ctx, post.ID); err != nil {
		return nil, err
	}
	return post, nil
}

// ToggleLike likes the post for userID, or removes the like if it is already there.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if err := ensurePost(ctx, s.postRepo, postID); err != nil {
		return nil, err
	}
	liked, err := s.postRepo.IsLiked(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if liked {
		err = s.postRepo.Unlike(ctx, userID, postID)
	} else {
		err = s.postRepo.Like(ctx, userID, postID)
	}
	if err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID)
}

// Unlike removes userID's like. Removing a like that does not exist is not an error.
func (s *PostService) Unlike(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if err := ensurePost(ctx, s.postRepo, postID); err != nil {
		return nil, err
	}
	if err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID)
}

func ensurePost(ctx context.Context, repo repository.PostRepository, postID uint) error {
	exists, err := repo.Exists(ctx, postID)
	if err != nil {
		return err
	}
	if !exists {
		return models.NewNotFoundError("Post", postID)
	}
	return nil
}
