package repository

import (
	"context"

	"dojo/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository defines the interface for profile data operations
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id uint) (*models.Profile, error)
	List(ctx context.Context, username string) ([]*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	Delete(ctx context.Context, id uint) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(profile).Error
}

func (r *profileRepository) GetByID(ctx context.Context, id uint) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Preload("User").First(&profile, id).Error; err != nil {
		return nil, notFoundOr(err, "Profile", id)
	}
	return &profile, nil
}

// List returns profiles in creation order, optionally only those owned by username.
func (r *profileRepository) List(ctx context.Context, username string) ([]*models.Profile, error) {
	q := r.db.WithContext(ctx).Preload("User").Order("profiles.created_at ASC, profiles.id ASC")
	if username != "" {
		q = q.Joins("JOIN users ON users.id = profiles.user_id").Where("users.username = ?", username)
	}

	var profiles []*models.Profile
	err := q.Find(&profiles).Error
	return profiles, err
}

func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(profile).Error
}

func (r *profileRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Profile{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Profile", id)
	}
	return nil
}
