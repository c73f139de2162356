// Package testutil provides shared test databases and fixtures.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"dojo/internal/database"
	"dojo/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultPassword is the plain-text password of users made by CreateUser.
const DefaultPassword = "Secret123"

var dbSeq atomic.Int64

// NewTestDB opens a private in-memory SQLite database with foreign keys
// enforced and every model migrated. The database is closed with the test.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := database.SQLiteDSN(fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1)))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// CreateUser inserts a user whose password is DefaultPassword.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// CreatePost inserts a post owned by author.
func CreatePost(t testing.TB, db *gorm.DB, author *models.User, title, upload string) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:       title,
		Category:    "kata",
		Description: title + " description",
		Upload:      upload,
		UserID:      author.ID,
	}
	if err := db.Omit("User").Create(post).Error; err != nil {
		t.Fatalf("create post %s: %v", title, err)
	}
	return post
}

// CreateComment inserts a comment on post; parent may be nil.
func CreateComment(t testing.TB, db *gorm.DB, author *models.User, post *models.Post, parent *models.Comment, text string) *models.Comment {
	t.Helper()
	comment := &models.Comment{
		PostID:      post.ID,
		UserID:      author.ID,
		Description: text,
	}
	if parent != nil {
		id := parent.ID
		comment.ParentID = &id
	}
	if err := db.Omit("User", "Parent").Create(comment).Error; err != nil {
		t.Fatalf("create comment %q: %v", text, err)
	}
	return comment
}

// CreateProfile inserts a profile owned by owner.
func CreateProfile(t testing.TB, db *gorm.DB, owner *models.User, martialArt, picture, thumbnail string) *models.Profile {
	t.Helper()
	profile := &models.Profile{
		UserID:     owner.ID,
		BeltLevel:  "black",
		MartialArt: martialArt,
		City:       "Austin",
		State:      "TX",
		ZipCode:    "78701",
		Picture:    picture,
		Thumbnail:  thumbnail,
	}
	if err := db.Omit("User").Create(profile).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return profile
}

// Like records that user liked post.
func Like(t testing.TB, db *gorm.DB, user *models.User, post *models.Post) {
	t.Helper()
	if err := db.Omit("User").Create(&models.PostLike{PostID: post.ID, UserID: user.ID}).Error; err != nil {
		t.Fatalf("like post: %v", err)
	}
}
