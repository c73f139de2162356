package models

import "time"

// Comment is a remark on a post. A non-nil ParentID makes it a reply to
// another comment of the same post.
type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PostID      uint      `gorm:"not null;index" json:"post_id"`
	ParentID    *uint     `gorm:"index" json:"parent_id"`
	Parent      *Comment  `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"-"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	Description string    `gorm:"column:comment_desc;type:text;not null" json:"comment_desc"`
	Checked     bool      `gorm:"not null" json:"checked"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsReply reports whether the comment answers another comment.
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

// ParentIDValue returns the parent comment id and whether there is one.
func (c *Comment) ParentIDValue() (uint, bool) {
	if c.ParentID == nil {
		return 0, false
	}
	return *c.ParentID, true
}

// ReplyIndex maps a comment id to its direct replies.
type ReplyIndex map[uint][]*Comment

// BuildReplyIndex groups comments by parent id. Input order is preserved
// within each group, so ordered input yields ordered replies.
func BuildReplyIndex(comments []*Comment) ReplyIndex {
	idx := make(ReplyIndex)
	for _, c := range comments {
		if parentID, ok := c.ParentIDValue(); ok {
			idx[parentID] = append(idx[parentID], c)
		}
	}
	return idx
}

// Replies returns the direct replies to the comment with the given id.
func (idx ReplyIndex) Replies(id uint) []*Comment {
	return idx[id]
}

// Descendants returns the ids of every reply below id, breadth first.
func (idx ReplyIndex) Descendants(id uint) []uint {
	var out []uint
	queue := []uint{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, reply := range idx[current] {
			out = append(out, reply.ID)
			queue = append(queue, reply.ID)
		}
	}
	return out
}

// TopLevel filters comments down to those without a parent.
func TopLevel(comments []*Comment) []*Comment {
	out := make([]*Comment, 0, len(comments))
	for _, c := range comments {
		if !c.IsReply() {
			out = append(out, c)
		}
	}
	return out
}
