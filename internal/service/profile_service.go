package service

import (
	"context"

	"dojo/internal/models"
	"dojo/internal/repository"
	"dojo/internal/serializer"
	"dojo/internal/storage"
)

type ProfileService struct {
	profileRepo repository.ProfileRepository
	store       storage.Gateway
	uploads     uploader
}

type SaveProfileInput struct {
	UserID uint
	// ProfileID is ignored on create.
	ProfileID uint
	Data      serializer.ProfileInput
	Picture   *FileInput
}

func NewProfileService(profileRepo repository.ProfileRepository, store storage.Gateway, maxUploadBytes int64) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		store:       store,
		uploads:     uploader{store: store, maxBytes: maxUploadBytes},
	}
}

func (s *ProfileService) CreateProfile(ctx context.Context, in SaveProfileInput) (*models.Profile, error) {
	if err := in.Data.Validate(); err != nil {
		return nil, err
	}

	profile := &models.Profile{UserID: in.UserID}
	applyProfile(profile, in.Data)

	if in.Picture != nil {
		picture, thumbnail, err := s.uploads.putPicture(ctx, in.Picture)
		if err != nil {
			return nil, err
		}
		profile.Picture, profile.Thumbnail = picture, thumbnail
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		for _, url := range profile.BlobURLs() {
			storage.DeleteQuietly(ctx, s.store, url)
		}
		return nil, err
	}
	return s.profileRepo.GetByID(ctx, profile.ID)
}

// ListProfiles returns all profiles, or only username's when it is set.
func (s *ProfileService) ListProfiles(ctx context.Context, username string) ([]*models.Profile, error) {
	return s.profileRepo.List(ctx, username)
}

func (s *ProfileService) GetProfile(ctx context.Context, id uint) (*models.Profile, error) {
	return s.profileRepo.GetByID(ctx, id)
}

// UpdateProfile replaces the profile fields. A new picture replaces picture
// and thumbnail; the old blobs are removed after the row is saved.
func (s *ProfileService) UpdateProfile(ctx context.Context, in SaveProfileInput) (*models.Profile, error) {
	profile, err := s.owned(ctx, in.UserID, in.ProfileID, "update")
	if err != nil {
		return nil, err
	}
	if err := in.Data.Validate(); err != nil {
		return nil, err
	}

	applyProfile(profile, in.Data)

	var stale []string
	if in.Picture != nil {
		picture, thumbnail, err := s.uploads.putPicture(ctx, in.Picture)
		if err != nil {
			return nil, err
		}
		stale = profile.BlobURLs()
		profile.Picture, profile.Thumbnail = picture, thumbnail
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		if in.Picture != nil {
			for _, url := range profile.BlobURLs() {
				storage.DeleteQuietly(ctx, s.store, url)
			}
		}
		return nil, err
	}
	for _, url := range stale {
		storage.DeleteQuietly(ctx, s.store, url)
	}
	return s.profileRepo.GetByID(ctx, profile.ID)
}

// DeleteProfile removes picture and thumbnail (best effort), then the row.
func (s *ProfileService) DeleteProfile(ctx context.Context, userID, profileID uint) (*models.Profile, error) {
	profile, err := s.owned(ctx, userID, profileID, "delete")
	if err != nil {
		return nil, err
	}
	for _, url := range profile.BlobURLs() {
		storage.DeleteQuietly(ctx, s.store, url)
	}
	if err := s.profileRepo.Delete(ctx, profile.ID); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) owned(ctx context.Context, userID, profileID uint, action string) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile.UserID != userID {
		return nil, models.NewForbiddenError("You can only " + action + " your own profiles")
	}
	return profile, nil
}

func applyProfile(p *models.Profile, in serializer.ProfileInput) {
	p.BeltLevel = in.BeltLevel
	p.Description = in.Description
	p.MartialArt = in.MartialArt
	p.Address = in.Address
	p.City = in.City
	p.State = in.State
	p.ZipCode = in.ZipCode
}
