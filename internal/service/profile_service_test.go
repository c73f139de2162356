package service

import (
	"bytes"
	"context"
	"image"
	"testing"

	"dojo/internal/media"
	"dojo/internal/models"
	"dojo/internal/repository"
	"dojo/internal/serializer"
	"dojo/internal/storage"
	"dojo/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	_ "golang.org/x/image/webp"
)

func newProfileService(t *testing.T) (*ProfileService, *gorm.DB, *storage.MemoryGateway) {
	t.Helper()
	db := testutil.NewTestDB(t)
	store := storage.NewMemoryGateway()
	return NewProfileService(repository.NewProfileRepository(db), store, testMaxUpload), db, store
}

func TestProfileService_CreateWithPicture(t *testing.T) {
	svc, db, store := newProfileService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")

	profile, err := svc.CreateProfile(ctx, SaveProfileInput{
		UserID:  alice.ID,
		Data:    serializer.ProfileInput{BeltLevel: "black", MartialArt: "Judo", State: "tx", ZipCode: "78701"},
		Picture: fileInput("me.png", "image/png", pngBytes(t, 600, 400)),
	})
	require.NoError(t, err)
	assert.Equal(t, "TX", profile.State)
	assert.Equal(t, "alice", profile.User.Username)
	assert.Contains(t, profile.Picture, "memory://blobs/profiles/")
	assert.Contains(t, profile.Thumbnail, "memory://blobs/profiles/thumbnails/")

	thumb, contentType, ok := store.Content(profile.Thumbnail)
	require.True(t, ok)
	assert.Equal(t, media.ThumbnailContentType, contentType)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, media.ThumbnailSize, cfg.Width)
	assert.Equal(t, media.ThumbnailSize, cfg.Height)
}

func TestProfileService_CreateValidation(t *testing.T) {
	svc, db, store := newProfileService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")

	_, err := svc.CreateProfile(ctx, SaveProfileInput{UserID: alice.ID, Data: serializer.ProfileInput{ZipCode: "12"}})
	assertFieldError(t, err, "zipCode")

	_, err = svc.CreateProfile(ctx, SaveProfileInput{
		UserID:  alice.ID,
		Picture: fileInput("clip.mp4", "video/mp4", []byte("video")),
	})
	assertFieldError(t, err, "picture")

	_, err = svc.CreateProfile(ctx, SaveProfileInput{
		UserID:  alice.ID,
		Picture: fileInput("broken.png", "image/png", []byte("not an image")),
	})
	assertFieldError(t, err, "picture")

	var n int64
	db.Model(&models.Profile{}).Count(&n)
	assert.Zero(t, n)
	assert.Zero(t, store.Len())
}

func TestProfileService_UpdateReplacesPicture(t *testing.T) {
	svc, db, store := newProfileService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	created, err := svc.CreateProfile(ctx, SaveProfileInput{
		UserID:  alice.ID,
		Data:    serializer.ProfileInput{MartialArt: "Judo"},
		Picture: fileInput("a.png", "image/png", pngBytes(t, 64, 64)),
	})
	require.NoError(t, err)
	old := created.BlobURLs()

	_, err = svc.UpdateProfile(ctx, SaveProfileInput{UserID: bob.ID, ProfileID: created.ID})
	assertCode(t, err, models.CodeForbidden)

	updated, err := svc.UpdateProfile(ctx, SaveProfileInput{
		UserID:    alice.ID,
		ProfileID: created.ID,
		Data:      serializer.ProfileInput{MartialArt: "Aikido", BeltLevel: "brown"},
		Picture:   fileInput("b.jpg", "image/png", pngBytes(t, 32, 32)),
	})
	require.NoError(t, err)
	assert.Equal(t, "Aikido", updated.MartialArt)
	assert.NotEqual(t, old[0], updated.Picture)
	for _, url := range old {
		exists, err := store.Exists(ctx, url)
		require.NoError(t, err)
		assert.False(t, exists, url)
	}
	assert.Equal(t, 2, store.Len())
}

func TestProfileService_Delete(t *testing.T) {
	svc, db, store := newProfileService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	created, err := svc.CreateProfile(ctx, SaveProfileInput{
		UserID:  alice.ID,
		Picture: fileInput("a.png", "image/png", pngBytes(t, 16, 16)),
	})
	require.NoError(t, err)

	_, err = svc.DeleteProfile(ctx, bob.ID, created.ID)
	assertCode(t, err, models.CodeForbidden)

	_, err = svc.DeleteProfile(ctx, alice.ID, created.ID)
	require.NoError(t, err)
	assert.Zero(t, store.Len())

	_, err = svc.GetProfile(ctx, created.ID)
	assertCode(t, err, models.CodeNotFound)
}
