package service

import (
	"context"
	"strings"
	"testing"

	"dojo/internal/models"
	"dojo/internal/repository"
	"dojo/internal/serializer"
	"dojo/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCommentService(t *testing.T) (*CommentService, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	return NewCommentService(repository.NewCommentRepository(db), repository.NewPostRepository(db)), db
}

func commentCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&n).Error)
	return n
}

func TestCommentService_CreateAndReply(t *testing.T) {
	svc, db := newCommentService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	post := testutil.CreatePost(t, db, alice, "Kata", "")

	root, err := svc.CreateComment(ctx, CreateCommentInput{
		UserID: alice.ID,
		Data:   serializer.CommentInput{Post: post.ID, CommentDesc: "nice"},
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", root.User.Username)
	assert.False(t, root.IsReply())

	parentID := root.ID
	reply, err := svc.CreateComment(ctx, CreateCommentInput{
		UserID: bob.ID,
		Data:   serializer.CommentInput{Post: post.ID, CommentDesc: "thanks", Parent: &parentID},
	})
	require.NoError(t, err)
	assert.True(t, reply.IsReply())

	got, thread, err := svc.GetComment(ctx, root.ID)
	require.NoError(t, err)
	out := serializer.NewComments([]*models.Comment{got}, thread)
	require.Len(t, out[0].Replies, 1)
	assert.Equal(t, reply.ID, out[0].Replies[0].ID)
}

func TestCommentService_CreateRejections(t *testing.T) {
	svc, db := newCommentService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	post := testutil.CreatePost(t, db, alice, "Kata", "")
	other := testutil.CreatePost(t, db, alice, "Other", "")
	elsewhere := testutil.CreateComment(t, db, alice, other, nil, "elsewhere")
	before := commentCount(t, db)

	missing := uint(999)
	foreign := elsewhere.ID
	tests := []struct {
		name string
		data serializer.CommentInput
		code string
	}{
		{"post not given", serializer.CommentInput{CommentDesc: "x"}, models.CodeValidation},
		{"post missing", serializer.CommentInput{Post: 999, CommentDesc: "x"}, models.CodeNotFound},
		{"parent missing", serializer.CommentInput{Post: post.ID, CommentDesc: "x", Parent: &missing}, models.CodeNotFound},
		{"parent on another post", serializer.CommentInput{Post: post.ID, CommentDesc: "x", Parent: &foreign}, models.CodeNotFound},
		{"empty text", serializer.CommentInput{Post: post.ID}, models.CodeValidation},
		{"too long", serializer.CommentInput{Post: post.ID, CommentDesc: strings.Repeat("x", 10001)}, models.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateComment(ctx, CreateCommentInput{UserID: alice.ID, Data: tt.data})
			assertCode(t, err, tt.code)
		})
	}
	assert.Equal(t, before, commentCount(t, db))
}

func TestCommentService_UpdateIsAuthorOnly(t *testing.T) {
	svc, db := newCommentService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	post := testutil.CreatePost(t, db, alice, "Kata", "")
	c := testutil.CreateComment(t, db, bob, post, nil, "first")

	_, err := svc.UpdateComment(ctx, UpdateCommentInput{UserID: alice.ID, CommentID: c.ID, Data: serializer.CommentInput{CommentDesc: "edited"}})
	assertCode(t, err, models.CodeForbidden)

	updated, err := svc.UpdateComment(ctx, UpdateCommentInput{UserID: bob.ID, CommentID: c.ID, Data: serializer.CommentInput{Post: 42, CommentDesc: "edited", Checked: true}})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Description)
	assert.True(t, updated.Checked)
	assert.Equal(t, post.ID, updated.PostID)
}

func TestCommentService_DeletePermissions(t *testing.T) {
	svc, db := newCommentService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")
	post := testutil.CreatePost(t, db, alice, "Kata", "")
	byBob := testutil.CreateComment(t, db, bob, post, nil, "bob")
	testutil.CreateComment(t, db, carol, post, byBob, "carol replies")
	byCarol := testutil.CreateComment(t, db, carol, post, nil, "carol")

	_, err := svc.DeleteComment(ctx, DeleteCommentInput{UserID: carol.ID, CommentID: byBob.ID})
	assertCode(t, err, models.CodeForbidden)

	// The post author may moderate.
	_, err = svc.DeleteComment(ctx, DeleteCommentInput{UserID: alice.ID, CommentID: byBob.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), commentCount(t, db))

	_, err = svc.DeleteComment(ctx, DeleteCommentInput{UserID: carol.ID, CommentID: byCarol.ID})
	require.NoError(t, err)
	assert.Zero(t, commentCount(t, db))
}

func TestCommentService_CountAndListByPost(t *testing.T) {
	svc, db := newCommentService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	post := testutil.CreatePost(t, db, alice, "Kata", "")
	root := testutil.CreateComment(t, db, alice, post, nil, "a")
	testutil.CreateComment(t, db, alice, post, root, "b")

	n, err := svc.CountByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = svc.CountByPost(ctx, 999)
	assertCode(t, err, models.CodeNotFound)

	_, err = svc.ListByPost(ctx, 999)
	assertCode(t, err, models.CodeNotFound)

	all, err := svc.ListComments(ctx)
	require.NoError(t, err)
	assert.Len(t, models.TopLevel(all), 1)
}
