package repository

import (
	"context"
	"sort"

	"dojo/internal/cache"
	"dojo/internal/models"
	"dojo/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	List(ctx context.Context) ([]*models.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	CountByPost(ctx context.Context, postID uint) (int64, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, comment.PostID)
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, notFoundOr(err, "Comment", id)
	}
	return &comment, nil
}

func (r *commentRepository) List(ctx context.Context) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(comment).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, comment.PostID)
	return nil
}

// Delete removes the comment and every reply below it in one transaction.
func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete_cascade", "comments")()

	var postID uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.Select("id", "post_id").First(&comment, id).Error; err != nil {
			return notFoundOr(err, "Comment", id)
		}
		postID = comment.PostID

		ids, err := commentSubtrees(tx, []uint{comment.PostID}, []uint{id})
		if err != nil {
			return err
		}
		return deleteComments(tx, ids)
	})
	if err != nil {
		return err
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

// commentSubtrees returns the roots and every reply below them, ordered so
// that each reply comes before its parent. Only comments of postIDs are scanned.
func commentSubtrees(tx *gorm.DB, postIDs, roots []uint) ([]uint, error) {
	var comments []*models.Comment
	if err := tx.Select("id", "parent_id").Where("post_id IN ?", postIDs).Find(&comments).Error; err != nil {
		return nil, err
	}

	idx := models.BuildReplyIndex(comments)
	parents := make(map[uint]uint, len(comments))
	for _, c := range comments {
		if parentID, ok := c.ParentIDValue(); ok {
			parents[c.ID] = parentID
		}
	}

	seen := make(map[uint]struct{}, len(roots))
	ids := make([]uint, 0, len(roots))
	for _, root := range roots {
		for _, id := range append([]uint{root}, idx.Descendants(root)...) {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	depth := func(id uint) int {
		d := 0
		for p, ok := parents[id]; ok; p, ok = parents[p] {
			d++
		}
		return d
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return depth(ids[i]) > depth(ids[j])
	})
	return ids, nil
}

// deleteComments deletes ids in the given order.
func deleteComments(tx *gorm.DB, ids []uint) error {
	for _, id := range ids {
		if err := tx.Delete(&models.Comment{}, id).Error; err != nil {
			return err
		}
	}
	return nil
}
