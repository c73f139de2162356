package seed

import (
	"fmt"
	"strings"

	"dojo/internal/models"
	"dojo/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

var (
	martialArts = []string{
		"Karate", "Judo", "Brazilian Jiu-Jitsu", "Taekwondo", "Aikido", "Kendo",
		"Muay Thai", "Kung Fu", "Hapkido", "Krav Maga", "Wrestling", "Boxing",
	}

	beltLevels = []string{
		"white", "yellow", "orange", "green", "blue", "purple", "brown", "black",
	}

	postCategories = []string{
		"kata", "kumite", "sparring", "drills", "conditioning", "competition", "seminar",
	}
)

// Factory builds fake rows. Every value comes from its own faker so a fixed
// seed reproduces the same data set.
type Factory struct {
	db           *gorm.DB
	faker        *gofakeit.Faker
	passwordHash string
}

// NewFactory returns a factory writing to db. passwordHash is stored on every
// created user.
func NewFactory(db *gorm.DB, seed int64, passwordHash string) *Factory {
	return &Factory{db: db, faker: gofakeit.New(seed), passwordHash: passwordHash}
}

// CreateUser inserts a user. n keeps usernames unique within a run.
func (f *Factory) CreateUser(n int) (*models.User, error) {
	username := fmt.Sprintf("%s%d", strings.ToLower(f.faker.Username()), n)
	user := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  f.passwordHash,
		FirstName: f.faker.FirstName(),
		LastName:  f.faker.LastName(),
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", username, err)
	}
	return user, nil
}

// CreateProfile inserts a profile for owner with a valid US address.
func (f *Factory) CreateProfile(owner *models.User) (*models.Profile, error) {
	state := f.faker.StateAbr()
	if validation.ValidateState(state) != nil {
		state = "CA"
	}
	zip := f.faker.Zip()
	if validation.ValidateZipCode(zip) != nil {
		zip = fmt.Sprintf("%05d", f.faker.Number(501, 99950))
	}
	image := f.faker.UUID()

	profile := &models.Profile{
		UserID:      owner.ID,
		BeltLevel:   f.faker.RandomString(beltLevels),
		Description: f.faker.Paragraph(1, 3, 12, " "),
		MartialArt:  f.faker.RandomString(martialArts),
		Address:     f.faker.Street(),
		City:        f.faker.City(),
		State:       state,
		ZipCode:     zip,
		Picture:     fmt.Sprintf("https://picsum.photos/seed/%s/400/400", image),
		Thumbnail:   fmt.Sprintf("https://picsum.photos/seed/%s/128/128", image),
	}
	if err := f.db.Omit("User").Create(profile).Error; err != nil {
		return nil, fmt.Errorf("create profile for %s: %w", owner.Username, err)
	}
	return profile, nil
}

// CreatePost inserts a post by author pointing at a placeholder image.
func (f *Factory) CreatePost(author *models.User) (*models.Post, error) {
	post := &models.Post{
		Title:       strings.TrimSuffix(f.faker.Sentence(f.faker.Number(3, 7)), "."),
		Category:    f.faker.RandomString(postCategories),
		Description: f.faker.Paragraph(1, 4, 14, " "),
		Upload:      fmt.Sprintf("https://picsum.photos/seed/%s/800/600", f.faker.UUID()),
		UserID:      author.ID,
	}
	if err := f.db.Omit("User").Create(post).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// CreateComment inserts a comment on post. A non-nil parent makes it a reply
// and must belong to the same post.
func (f *Factory) CreateComment(author *models.User, post *models.Post, parent *models.Comment) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:      post.ID,
		UserID:      author.ID,
		Description: f.faker.Sentence(f.faker.Number(4, 16)),
		Checked:     f.faker.Number(0, 9) == 0,
	}
	if parent != nil {
		if parent.PostID != post.ID {
			return nil, fmt.Errorf("parent comment %d is not on post %d", parent.ID, post.ID)
		}
		id := parent.ID
		comment.ParentID = &id
	}
	if err := f.db.Omit("User", "Parent").Create(comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// LikePost records up to n distinct likes on post from users.
func (f *Factory) LikePost(post *models.Post, users []*models.User, n int) (int, error) {
	if n > len(users) {
		n = len(users)
	}
	picked := make([]*models.User, len(users))
	copy(picked, users)
	f.faker.ShuffleAnySlice(picked)

	likes := make([]models.PostLike, 0, n)
	for _, u := range picked[:n] {
		likes = append(likes, models.PostLike{PostID: post.ID, UserID: u.ID})
	}
	if len(likes) == 0 {
		return 0, nil
	}
	if err := f.db.Omit("User").Create(&likes).Error; err != nil {
		return 0, fmt.Errorf("like post %d: %w", post.ID, err)
	}
	return len(likes), nil
}

func (f *Factory) pick(users []*models.User) *models.User {
	return users[f.faker.Number(0, len(users)-1)]
}
