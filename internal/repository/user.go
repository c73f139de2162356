package repository

import (
	"context"

	"dojo/internal/cache"
	"dojo/internal/models"
	"dojo/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	DeleteCascade(ctx context.Context, id uint) ([]string, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts the user. A unique violation becomes a field validation error.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if ok, field := uniqueViolation(err); ok {
		if field == "" {
			return models.NewValidationError("User already exists")
		}
		return models.NewFieldError(field, "A user with that "+field+" already exists.")
	}
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "User", username)
	}
	return &user, nil
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username = ?", username)
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "LOWER(email) = LOWER(?)", email)
}

func (r *userRepository) exists(ctx context.Context, query string, arg interface{}) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where(query, arg).Count(&count).Error
	return count > 0, err
}

// DeleteCascade removes the user together with their posts (and everything
// under them), their comments and replies to those comments, their likes and
// their profiles, all in one transaction. It returns the blob URLs that the
// removed rows referenced so the caller can clean storage up.
func (r *userRepository) DeleteCascade(ctx context.Context, id uint) ([]string, error) {
	defer observability.TrackQuery("delete_cascade", "users")()

	var blobs []string
	var touchedPosts []uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&user, id).Error; err != nil {
			return notFoundOr(err, "User", id)
		}

		var posts []models.Post
		if err := tx.Select("id", "upload").Where("user_id = ?", id).Find(&posts).Error; err != nil {
			return err
		}
		postIDs := make([]uint, 0, len(posts))
		for _, p := range posts {
			postIDs = append(postIDs, p.ID)
			if p.Upload != "" {
				blobs = append(blobs, p.Upload)
			}
		}
		if _, err := deletePostsCascade(tx, postIDs); err != nil {
			return err
		}

		var authored []models.Comment
		if err := tx.Select("id", "post_id").Where("user_id = ?", id).Find(&authored).Error; err != nil {
			return err
		}
		if len(authored) > 0 {
			roots := make([]uint, 0, len(authored))
			seenPost := map[uint]struct{}{}
			for _, c := range authored {
				roots = append(roots, c.ID)
				if _, ok := seenPost[c.PostID]; !ok {
					seenPost[c.PostID] = struct{}{}
					touchedPosts = append(touchedPosts, c.PostID)
				}
			}
			ids, err := commentSubtrees(tx, touchedPosts, roots)
			if err != nil {
				return err
			}
			if err := deleteComments(tx, ids); err != nil {
				return err
			}
		}

		var liked []uint
		if err := tx.Model(&models.PostLike{}).Where("user_id = ?", id).Pluck("post_id", &liked).Error; err != nil {
			return err
		}
		touchedPosts = append(touchedPosts, liked...)
		if err := tx.Where("user_id = ?", id).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}

		var profiles []models.Profile
		if err := tx.Select("id", "picture", "thumbnail").Where("user_id = ?", id).Find(&profiles).Error; err != nil {
			return err
		}
		for i := range profiles {
			blobs = append(blobs, profiles[i].BlobURLs()...)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Profile{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.User{}, id).Error
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidatePostsList(ctx)
	for _, postID := range touchedPosts {
		cache.Invalidate(ctx, cache.PostKey(postID))
	}
	return blobs, nil
}
