// Package seed fills a database with fake users, profiles, posts, comment
// threads and likes for development and demos.
package seed

import (
	"errors"
	"fmt"
	"time"

	"dojo/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "Password123"

// Options sizes a seeding run.
type Options struct {
	NumUsers          int   `yaml:"users"`
	NumPosts          int   `yaml:"posts"`
	CommentsPerPost   int   `yaml:"comments_per_post"`
	RepliesPerComment int   `yaml:"replies_per_comment"`
	LikesPerPost      int   `yaml:"likes_per_post"`
	Seed              int64 `yaml:"seed"`
}

func (o Options) validate() error {
	if o.NumUsers < 1 {
		return errors.New("users must be at least 1")
	}
	if o.NumPosts < 0 || o.CommentsPerPost < 0 || o.RepliesPerComment < 0 || o.LikesPerPost < 0 {
		return errors.New("counts must not be negative")
	}
	return nil
}

// Summary counts the rows a run created.
type Summary struct {
	Users    int
	Profiles int
	Posts    int
	Comments int
	Replies  int
	Likes    int
}

// Seeder writes fake data to a database.
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a seeder for db.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// ClearAll deletes every row owned by the API, children first.
func (s *Seeder) ClearAll() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		steps := []struct {
			name  string
			query *gorm.DB
			model any
		}{
			{"likes", all, &models.PostLike{}},
			{"replies", all.Where("parent_id IS NOT NULL"), &models.Comment{}},
			{"comments", all, &models.Comment{}},
			{"posts", all, &models.Post{}},
			{"profiles", all, &models.Profile{}},
			{"users", all, &models.User{}},
		}
		for _, step := range steps {
			if err := step.query.Delete(step.model).Error; err != nil {
				return fmt.Errorf("clear %s: %w", step.name, err)
			}
		}
		return nil
	})
}

// Run creates the data set described by opts. Each user gets one profile;
// posts, comments and likes are spread over random users.
func (s *Seeder) Run(opts Options) (Summary, error) {
	var sum Summary
	if err := opts.validate(); err != nil {
		return sum, err
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return sum, fmt.Errorf("hash password: %w", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		f := NewFactory(tx, seed, string(hash))

		users := make([]*models.User, 0, opts.NumUsers)
		for i := 1; i <= opts.NumUsers; i++ {
			user, err := f.CreateUser(i)
			if err != nil {
				return err
			}
			users = append(users, user)
			if _, err := f.CreateProfile(user); err != nil {
				return err
			}
		}
		sum.Users, sum.Profiles = len(users), len(users)

		for i := 0; i < opts.NumPosts; i++ {
			post, err := f.CreatePost(f.pick(users))
			if err != nil {
				return err
			}
			sum.Posts++

			for c := 0; c < opts.CommentsPerPost; c++ {
				top, err := f.CreateComment(f.pick(users), post, nil)
				if err != nil {
					return err
				}
				sum.Comments++
				for r := 0; r < opts.RepliesPerComment; r++ {
					if _, err := f.CreateComment(f.pick(users), post, top); err != nil {
						return err
					}
					sum.Replies++
				}
			}

			n, err := f.LikePost(post, users, opts.LikesPerPost)
			if err != nil {
				return err
			}
			sum.Likes += n
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}
	return sum, nil
}

// ApplyPreset runs the named built-in preset.
func (s *Seeder) ApplyPreset(name string) (Summary, error) {
	opts, err := Preset(name)
	if err != nil {
		return Summary{}, err
	}
	return s.Run(opts)
}
