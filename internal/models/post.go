package models

import "time"

// Post is a user upload (image or video) with a title, category and description.
type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:255" json:"title"`
	Category    string     `gorm:"size:100;index" json:"category"`
	Description string     `gorm:"type:text" json:"description"`
	Upload      string     `gorm:"size:1024" json:"upload"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	User        User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	Likes       []PostLike `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"likes,omitempty"`
	Comments    []Comment  `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// PostLike is a row of the post/user like association.
type PostLike struct {
	PostID    uint      `gorm:"primaryKey" json:"post_id"`
	UserID    uint      `gorm:"primaryKey;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName pins the join table name.
func (PostLike) TableName() string {
	return "post_likes"
}

// LikedBy reports whether userID is among the post's likes.
func (p *Post) LikedBy(userID uint) bool {
	for _, like := range p.Likes {
		if like.UserID == userID {
			return true
		}
	}
	return false
}

// LikeUserIDs returns the ids of the users who liked the post, in like order.
func (p *Post) LikeUserIDs() []uint {
	ids := make([]uint, 0, len(p.Likes))
	for _, like := range p.Likes {
		ids = append(ids, like.UserID)
	}
	return ids
}
