package service

import (
	"context"

	"dojo/internal/models"
	"dojo/internal/repository"
	"dojo/internal/serializer"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

type CreateCommentInput struct {
	UserID uint
	Data   serializer.CommentInput
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Data      serializer.CommentInput
}

type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// CreateComment stores a comment by the caller. The post must exist and a
// parent, when given, must be a comment on the same post.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.Data.Post == 0 {
		return nil, models.NewFieldError("post", "This field is required.")
	}
	if err := ensurePost(ctx, s.postRepo, in.Data.Post); err != nil {
		return nil, err
	}
	if err := in.Data.Validate(); err != nil {
		return nil, err
	}

	if in.Data.Parent != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.Data.Parent)
		if err != nil {
			return nil, err
		}
		if parent.PostID != in.Data.Post {
			return nil, models.NewNotFoundError("Comment", *in.Data.Parent)
		}
	}

	comment := &models.Comment{
		PostID:      in.Data.Post,
		ParentID:    in.Data.Parent,
		UserID:      in.UserID,
		Description: in.Data.CommentDesc,
		Checked:     in.Data.Checked,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListComments returns every comment in creation order.
func (s *CommentService) ListComments(ctx context.Context) ([]*models.Comment, error) {
	return s.commentRepo.List(ctx)
}

// ListByPost returns the comments of a post in creation order.
func (s *CommentService) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if err := ensurePost(ctx, s.postRepo, postID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID)
}

func (s *CommentService) CountByPost(ctx context.Context, postID uint) (int64, error) {
	if err := ensurePost(ctx, s.postRepo, postID); err != nil {
		return 0, err
	}
	return s.commentRepo.CountByPost(ctx, postID)
}

// GetComment returns the comment together with all comments of its post,
// from which its reply tree can be built.
func (s *CommentService) GetComment(ctx context.Context, id uint) (*models.Comment, []*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	thread, err := s.commentRepo.ListByPost(ctx, comment.PostID)
	if err != nil {
		return nil, nil, err
	}
	return comment, thread, nil
}

// UpdateComment replaces the text and checked flag. Post and parent never change.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own comments")
	}
	if err := in.Data.Validate(); err != nil {
		return nil, err
	}

	comment.Description = in.Data.CommentDesc
	comment.Checked = in.Data.Checked
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// DeleteComment removes the comment and its replies. The comment author and
// the author of the post may delete it.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}

	if comment.UserID != in.UserID {
		post, err := s.postRepo.GetByID(ctx, comment.PostID)
		if err != nil {
			return nil, err
		}
		if post.UserID != in.UserID {
			return nil, models.NewForbiddenError("You can only delete your own comments")
		}
	}

	if err := s.commentRepo.Delete(ctx, in.CommentID); err != nil {
		return nil, err
	}
	return comment, nil
}
