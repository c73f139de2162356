package server

import (
	"net/http"
	"strings"
	"testing"

	"dojo/internal/models"
	"dojo/internal/serializer"
	"dojo/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profileData = `{"beltLevel": "brown", "martialArt": "Judo", "city": "Austin", "state": "tx", "zipCode": "78701"}`

func TestCreateProfile_WithPicture(t *testing.T) {
	env := newTestEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")

	resp := env.doMultipart(t, http.MethodPost, "/api/profiles", profileData,
		&filePart{field: "picture", filename: "me.png", contentType: "image/png", content: pngBytes(t, 300, 200)},
		env.tokenFor(t, alice))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var profile serializer.Profile
	decode(t, resp, &profile)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "TX", profile.State)
	assert.True(t, strings.HasPrefix(profile.Picture, "memory://blobs/profiles/"), profile.Picture)
	assert.True(t, strings.HasPrefix(profile.Thumbnail, "memory://blobs/profiles/thumbnails/"), profile.Thumbnail)
	assert.Equal(t, 2, env.store.Len())
}

func TestCreateProfile_Validation(t *testing.T) {
	env := newTestEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	token := env.tokenFor(t, alice)

	resp := env.doMultipart(t, http.MethodPost, "/api/profiles",
		`{"state": "ZZ", "zipCode": "abc"}`, nil, token)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var errBody models.ErrorResponse
	decode(t, resp, &errBody)
	assert.Contains(t, errBody.Fields, "state")
	assert.Contains(t, errBody.Fields, "zipCode")

	resp = env.doMultipart(t, http.MethodPost, "/api/profiles", profileData,
		&filePart{field: "picture", filename: "me.png", contentType: "image/png", content: []byte("not a png")}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Zero(t, countRows(t, env.db, &models.Profile{}))
	assert.Zero(t, env.store.Len())
}

func TestGetProfiles_FilterByUsername(t *testing.T) {
	env := newTestEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")
	testutil.CreateProfile(t, env.db, alice, "Judo", "", "")
	testutil.CreateProfile(t, env.db, bob, "Karate", "", "")

	resp := env.doJSON(t, http.MethodGet, "/api/profiles", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all []serializer.Profile
	decode(t, resp, &all)
	assert.Len(t, all, 2)

	resp = env.doJSON(t, http.MethodGet, "/api/profiles?username=bob", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var filtered []serializer.Profile
	decode(t, resp, &filtered)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Karate", filtered[0].MartialArt)
}

func TestUpdateAndDeleteProfile(t *testing.T) {
	env := newTestEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")
	profile := testutil.CreateProfile(t, env.db, alice, "Judo", "", "")
	path := "/api/profiles/" + itoa(profile.ID)

	resp := env.doJSON(t, http.MethodPut, path, map[string]string{"martialArt": "BJJ"}, env.tokenFor(t, bob))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.doMultipart(t, http.MethodPut, path, `{"martialArt": "BJJ", "beltLevel": "blue"}`,
		&filePart{field: "picture", filename: "me.png", contentType: "image/png", content: pngBytes(t, 64, 64)},
		env.tokenFor(t, alice))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated serializer.Profile
	decode(t, resp, &updated)
	assert.Equal(t, "BJJ", updated.MartialArt)
	assert.NotEmpty(t, updated.Picture)
	assert.Equal(t, 2, env.store.Len())

	resp = env.doJSON(t, http.MethodDelete, path, nil, env.tokenFor(t, bob))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.doJSON(t, http.MethodDelete, path, nil, env.tokenFor(t, alice))
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Zero(t, countRows(t, env.db, &models.Profile{}))
	assert.Zero(t, env.store.Len())

	resp = env.doJSON(t, http.MethodGet, path, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
