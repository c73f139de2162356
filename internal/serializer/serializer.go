// Package serializer turns persisted models into the API's JSON shapes and
// decodes request payloads, including the JSON document carried by the
// multipart "data" field.
package serializer

import (
	"time"

	"dojo/internal/models"
)

// Comment is the public shape of a comment. Replies is never nil.
type Comment struct {
	ID          uint      `json:"id"`
	Post        uint      `json:"post"`
	Username    string    `json:"username"`
	CommentDesc string    `json:"commentDesc"`
	Checked     bool      `json:"checked"`
	Parent      *uint     `json:"parent"`
	IsReply     bool      `json:"isReply"`
	Replies     []Comment `json:"replies"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
}

// Post is the public shape of a post with its likes and comment trees.
type Post struct {
	ID            uint      `json:"id"`
	Username      string    `json:"username"`
	Title         string    `json:"title"`
	Category      string    `json:"category"`
	Description   string    `json:"description"`
	Upload        string    `json:"upload"`
	Likes         []uint    `json:"likes"`
	LikesCount    int       `json:"likesCount"`
	Comments      []Comment `json:"comments"`
	CommentsCount int       `json:"commentsCount"`
	Created       time.Time `json:"created"`
	Updated       time.Time `json:"updated"`
}

// Profile is the public shape of a profile.
type Profile struct {
	ID          uint      `json:"id"`
	Username    string    `json:"username"`
	BeltLevel   string    `json:"beltLevel"`
	Description string    `json:"description"`
	MartialArt  string    `json:"martialArt"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	ZipCode     string    `json:"zipCode"`
	Picture     string    `json:"picture"`
	Thumbnail   string    `json:"thumbnail"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
}

// User is the public shape of an account. The password hash never leaves the server.
type User struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Created   time.Time `json:"created"`
}

// NewComment renders c with the reply tree found in idx.
func NewComment(c *models.Comment, idx models.ReplyIndex) Comment {
	out := Comment{
		ID:          c.ID,
		Post:        c.PostID,
		Username:    c.User.Username,
		CommentDesc: c.Description,
		Checked:     c.Checked,
		Parent:      c.ParentID,
		IsReply:     c.IsReply(),
		Replies:     []Comment{},
		Created:     c.CreatedAt,
		Updated:     c.UpdatedAt,
	}
	for _, reply := range idx.Replies(c.ID) {
		out.Replies = append(out.Replies, NewComment(reply, idx))
	}
	return out
}

// NewComments renders every comment of list, each with its reply tree
// built from all. Pass the same slice twice for a flat listing.
func NewComments(list, all []*models.Comment) []Comment {
	idx := models.BuildReplyIndex(all)
	out := make([]Comment, 0, len(list))
	for _, c := range list {
		out = append(out, NewComment(c, idx))
	}
	return out
}

// NewPost renders p. Only top-level comments are listed; replies are nested.
func NewPost(p *models.Post) Post {
	comments := make([]*models.Comment, 0, len(p.Comments))
	for i := range p.Comments {
		comments = append(comments, &p.Comments[i])
	}
	likes := p.LikeUserIDs()

	return Post{
		ID:            p.ID,
		Username:      p.User.Username,
		Title:         p.Title,
		Category:      p.Category,
		Description:   p.Description,
		Upload:        p.Upload,
		Likes:         likes,
		LikesCount:    len(likes),
		Comments:      NewComments(models.TopLevel(comments), comments),
		CommentsCount: len(comments),
		Created:       p.CreatedAt,
		Updated:       p.UpdatedAt,
	}
}

func NewPosts(posts []*models.Post) []Post {
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		out = append(out, NewPost(p))
	}
	return out
}

func NewProfile(p *models.Profile) Profile {
	return Profile{
		ID:          p.ID,
		Username:    p.User.Username,
		BeltLevel:   p.BeltLevel,
		Description: p.Description,
		MartialArt:  p.MartialArt,
		Address:     p.Address,
		City:        p.City,
		State:       p.State,
		ZipCode:     p.ZipCode,
		Picture:     p.Picture,
		Thumbnail:   p.Thumbnail,
		Created:     p.CreatedAt,
		Updated:     p.UpdatedAt,
	}
}

func NewProfiles(profiles []*models.Profile) []Profile {
	out := make([]Profile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, NewProfile(p))
	}
	return out
}

func NewUser(u *models.User) User {
	return User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Created:   u.CreatedAt,
	}
}
