package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Content types a review row can carry.
const (
	ContentTypeReview = "review"
	ContentTypeList   = "list"
)

// Review is one published or draft restaurant write-up.
type Review struct {
	ID                  string     `gorm:"primaryKey;size:36" json:"id"`
	Slug                string     `gorm:"size:191;uniqueIndex;not null" json:"slug"`
	ContentType         string     `gorm:"size:16;not null;default:review;index" json:"contentType"`
	IsDraft             bool       `gorm:"index" json:"isDraft"`
	Title               string     `json:"title"`
	Excerpt             string     `gorm:"type:text" json:"excerpt"`
	Content             string     `gorm:"type:text" json:"content"`
	RestaurantName      string     `gorm:"not null" json:"restaurantName"`
	Rating              float64    `json:"rating"`
	Address             string     `json:"address"`
	Lat                 float64    `json:"lat"`
	Lng                 float64    `json:"lng"`
	LocationTag         string     `gorm:"size:100;index" json:"locationTag"`
	Images              ImageList  `gorm:"type:text" json:"images"`
	CoverImage          string     `json:"coverImage"`
	CoverImageCrop      *CoverCrop `gorm:"type:text;serializer:json" json:"coverImageCrop,omitempty"`
	Tags                ReviewTags `gorm:"type:text" json:"tags"`
	FavoriteDishes      StringList `gorm:"type:text" json:"favoriteDishes"`
	LeastFavoriteDishes StringList `gorm:"type:text" json:"leastFavoriteDishes"`
	Website             string     `json:"website"`
	Instagram           string     `json:"instagram"`
	Yelp                string     `json:"yelp"`
	PriceRange          int        `json:"priceRange"`
	PublishedAt         time.Time  `gorm:"index" json:"publishedAt"`
	Author              string     `json:"author"`
	IsFeatured          bool       `gorm:"index" json:"isFeatured"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// BeforeCreate assigns an opaque id when the caller did not.
func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// HasCoordinates reports whether lat/lng hold a real coordinate. Only the
// zero pair means "not geocoded", so points on the equator or the prime
// meridian still count.
func HasCoordinates(lat, lng float64) bool {
	return lat != 0 || lng != 0
}

// IsGeocoded reports whether the review has a usable location.
func (r *Review) IsGeocoded() bool {
	return HasCoordinates(r.Lat, r.Lng)
}

// PriceLabel renders the price tier as dollar signs.
func (r *Review) PriceLabel() string {
	if r.PriceRange < 1 || r.PriceRange > 4 {
		return ""
	}
	return "$$$$"[:r.PriceRange]
}
