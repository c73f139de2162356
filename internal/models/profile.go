package models

import "time"

// Profile describes a practitioner: rank, discipline, address and picture.
// A user may own several profiles.
type Profile struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	BeltLevel   string    `gorm:"size:50" json:"belt_level"`
	Description string    `gorm:"type:text" json:"description"`
	MartialArt  string    `gorm:"size:100;index" json:"martial_art"`
	Address     string    `gorm:"size:255" json:"address"`
	City        string    `gorm:"size:100" json:"city"`
	State       string    `gorm:"size:2" json:"state"`
	ZipCode     string    `gorm:"size:10" json:"zip_code"`
	Picture     string    `gorm:"size:1024" json:"picture"`
	Thumbnail   string    `gorm:"size:1024" json:"thumbnail"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BlobURLs returns the stored blob URLs referenced by the profile.
func (p *Profile) BlobURLs() []string {
	var urls []string
	if p.Picture != "" {
		urls = append(urls, p.Picture)
	}
	if p.Thumbnail != "" {
		urls = append(urls, p.Thumbnail)
	}
	return urls
}
