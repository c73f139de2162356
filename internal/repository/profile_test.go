package repository

import (
	"context"
	"testing"

	"dojo/internal/models"
	"dojo/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileRepository_ListFiltersByUsername(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	testutil.CreateProfile(t, db, alice, "Judo", "", "")
	testutil.CreateProfile(t, db, bob, "Karate", "", "")
	testutil.CreateProfile(t, db, alice, "Aikido", "", "")

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := repo.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Judo", mine[0].MartialArt)
	assert.Equal(t, "Aikido", mine[1].MartialArt)
	assert.Equal(t, "alice", mine[0].User.Username)

	none, err := repo.List(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestProfileRepository_UpdateAndDelete(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	profile := testutil.CreateProfile(t, db, alice, "Judo", "", "")

	profile.BeltLevel = "brown"
	require.NoError(t, repo.Update(ctx, profile))

	got, err := repo.GetByID(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "brown", got.BeltLevel)

	require.NoError(t, repo.Delete(ctx, profile.ID))
	assert.True(t, models.IsNotFound(repo.Delete(ctx, profile.ID)))
	_, err = repo.GetByID(ctx, profile.ID)
	assert.True(t, models.IsNotFound(err))
}
