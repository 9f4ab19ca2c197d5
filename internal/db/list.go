package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// List is a curated, ordered collection of reviews.
type List struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	Slug        string     `gorm:"size:191;uniqueIndex;not null" json:"slug"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	CoverImage  string     `json:"coverImage"`
	IsDraft     bool       `gorm:"index" json:"isDraft"`
	IsFeatured  bool       `gorm:"index" json:"isFeatured"`
	PublishedAt time.Time  `gorm:"index" json:"publishedAt"`
	Items       []ListItem `gorm:"foreignKey:ListID" json:"items"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// BeforeCreate assigns an opaque id when the caller did not.
func (l *List) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// ListItem places a review inside a list. Position is zero-based and dense.
type ListItem struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	ListID    string    `gorm:"size:36;index;not null" json:"listId"`
	ReviewID  string    `gorm:"size:36;index;not null" json:"reviewId"`
	Review    *Review   `gorm:"foreignKey:ReviewID" json:"review,omitempty"`
	Blurb     string    `gorm:"type:text" json:"blurb"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns an opaque id when the caller did not.
func (i *ListItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
