// Package authoring holds the admin editing workflows for reviews and lists.
// Editors keep a typed draft in memory and persist it through the service layer.
package authoring

import (
	"time"

	"github.com/foodlog/internal/apperr"
	"github.com/foodlog/internal/db"
	"github.com/foodlog/internal/service"
)

// Dish fields accepted by AddDish and RemoveDish.
const (
	FieldFavoriteDishes      = "favoriteDishes"
	FieldLeastFavoriteDishes = "leastFavoriteDishes"
)

// ReviewDraft is the in-memory shape of a review being edited. RestaurantName
// and Slug are always required; Lat, Lng and Images are required to publish.
type ReviewDraft struct {
	Slug                string        `json:"slug"`
	ContentType         string        `json:"contentType"`
	IsDraft             bool          `json:"isDraft"`
	Title               string        `json:"title"`
	Excerpt             string        `json:"excerpt"`
	Content             string        `json:"content"`
	RestaurantName      string        `json:"restaurantName"`
	Rating              float64       `json:"rating"`
	Address             string        `json:"address"`
	Lat                 float64       `json:"lat"`
	Lng                 float64       `json:"lng"`
	LocationTag         string        `json:"locationTag"`
	Images              db.ImageList  `json:"images"`
	CoverImage          string        `json:"coverImage"`
	CoverImageCrop      *db.CoverCrop `json:"coverImageCrop,omitempty"`
	Tags                db.ReviewTags `json:"tags"`
	FavoriteDishes      db.StringList `json:"favoriteDishes"`
	LeastFavoriteDishes db.StringList `json:"leastFavoriteDishes"`
	Website             string        `json:"website"`
	Instagram           string        `json:"instagram"`
	Yelp                string        `json:"yelp"`
	PriceRange          int           `json:"priceRange"`
	PublishedAt         time.Time     `json:"publishedAt"`
	Author              string        `json:"author"`
	IsFeatured          bool          `json:"isFeatured"`
}

// NewReviewDraft returns an empty draft with initialized collections.
func NewReviewDraft() ReviewDraft {
	return ReviewDraft{
		ContentType:         db.ContentTypeReview,
		IsDraft:             true,
		Images:              db.ImageList{},
		Tags:                db.ReviewTags{Cuisines: db.StringList{}, Vibes: db.StringList{}, FoodTypes: db.StringList{}},
		FavoriteDishes:      db.StringList{},
		LeastFavoriteDishes: db.StringList{},
	}
}

// DraftFromReview seeds a draft from a stored review.
func DraftFromReview(review *db.Review) ReviewDraft {
	draft := ReviewDraft{
		Slug:                review.Slug,
		ContentType:         review.ContentType,
		IsDraft:             review.IsDraft,
		Title:               review.Title,
		Excerpt:             review.Excerpt,
		Content:             review.Content,
		RestaurantName:      review.RestaurantName,
		Rating:              review.Rating,
		Address:             review.Address,
		Lat:                 review.Lat,
		Lng:                 review.Lng,
		LocationTag:         review.LocationTag,
		Images:              append(db.ImageList{}, review.Images...),
		CoverImage:          review.CoverImage,
		Tags:                cloneTags(review.Tags),
		FavoriteDishes:      append(db.StringList{}, review.FavoriteDishes...),
		LeastFavoriteDishes: append(db.StringList{}, review.LeastFavoriteDishes...),
		Website:             review.Website,
		Instagram:           review.Instagram,
		Yelp:                review.Yelp,
		PriceRange:          review.PriceRange,
		PublishedAt:         review.PublishedAt,
		Author:              review.Author,
		IsFeatured:          review.IsFeatured,
	}
	if review.CoverImageCrop != nil {
		crop := *review.CoverImageCrop
		draft.CoverImageCrop = &crop
	}
	return draft
}

func (d ReviewDraft) clone() ReviewDraft {
	copied := d
	copied.Images = append(db.ImageList{}, d.Images...)
	copied.Tags = cloneTags(d.Tags)
	copied.FavoriteDishes = append(db.StringList{}, d.FavoriteDishes...)
	copied.LeastFavoriteDishes = append(db.StringList{}, d.LeastFavoriteDishes...)
	if d.CoverImageCrop != nil {
		crop := *d.CoverImageCrop
		copied.CoverImageCrop = &crop
	}
	return copied
}

// Input converts the draft into a create request.
func (d ReviewDraft) Input() service.ReviewInput {
	input := service.ReviewInput{
		Slug:                d.Slug,
		ContentType:         d.ContentType,
		IsDraft:             d.IsDraft,
		Title:               d.Title,
		Excerpt:             d.Excerpt,
		Content:             d.Content,
		RestaurantName:      d.RestaurantName,
		Rating:              d.Rating,
		Address:             d.Address,
		Lat:                 d.Lat,
		Lng:                 d.Lng,
		LocationTag:         d.LocationTag,
		Images:              d.Images,
		CoverImage:          d.CoverImage,
		CoverImageCrop:      d.CoverImageCrop,
		Tags:                d.Tags,
		FavoriteDishes:      d.FavoriteDishes,
		LeastFavoriteDishes: d.LeastFavoriteDishes,
		Website:             d.Website,
		Instagram:           d.Instagram,
		Yelp:                d.Yelp,
		PriceRange:          d.PriceRange,
		Author:              d.Author,
		IsFeatured:          d.IsFeatured,
	}
	if !d.PublishedAt.IsZero() {
		publishedAt := d.PublishedAt
		input.PublishedAt = &publishedAt
	}
	return input
}

// Patch converts the draft into an update that overwrites every field.
func (d ReviewDraft) Patch() service.ReviewPatch {
	c := d.clone()
	patch := service.ReviewPatch{
		Slug:                &c.Slug,
		ContentType:         &c.ContentType,
		IsDraft:             &c.IsDraft,
		Title:               &c.Title,
		Excerpt:             &c.Excerpt,
		Content:             &c.Content,
		RestaurantName:      &c.RestaurantName,
		Rating:              &c.Rating,
		Address:             &c.Address,
		Lat:                 &c.Lat,
		Lng:                 &c.Lng,
		LocationTag:         &c.LocationTag,
		Images:              &c.Images,
		CoverImage:          &c.CoverImage,
		CoverImageCrop:      c.CoverImageCrop,
		ClearCoverImageCrop: c.CoverImageCrop == nil,
		Tags:                &c.Tags,
		FavoriteDishes:      &c.FavoriteDishes,
		LeastFavoriteDishes: &c.LeastFavoriteDishes,
		Website:             &c.Website,
		Instagram:           &c.Instagram,
		Yelp:                &c.Yelp,
		PriceRange:          &c.PriceRange,
		Author:              &c.Author,
		IsFeatured:          &c.IsFeatured,
	}
	if !c.PublishedAt.IsZero() {
		patch.PublishedAt = &c.PublishedAt
	}
	return patch
}

func cloneTags(tags db.ReviewTags) db.ReviewTags {
	return db.ReviewTags{
		Cuisines:  append(db.StringList{}, tags.Cuisines...),
		Vibes:     append(db.StringList{}, tags.Vibes...),
		FoodTypes: append(db.StringList{}, tags.FoodTypes...),
	}
}

// Notice is the transient message shown after an authoring action.
type Notice struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Notice kinds.
const (
	NoticeSuccess = "success"
	NoticeError   = "error"
)

// NoticeFor turns an error into a dismissible notice.
func NoticeFor(err error) Notice {
	if err == nil {
		return Notice{Kind: NoticeSuccess}
	}
	return Notice{Kind: NoticeError, Message: apperr.Message(err), Field: apperr.Field(err)}
}
