package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/foodlog/internal/db"
	"github.com/foodlog/internal/service"
	"github.com/gin-gonic/gin"
)

type reviewPayload struct {
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
	CoverImageCrop      *db.CoverCrop `json:"coverImageCrop"`
	Tags                db.ReviewTags `json:"tags"`
	FavoriteDishes      db.StringList `json:"favoriteDishes"`
	LeastFavoriteDishes db.StringList `json:"leastFavoriteDishes"`
	Website             string        `json:"website"`
	Instagram           string        `json:"instagram"`
	Yelp                string        `json:"yelp"`
	PriceRange          int           `json:"priceRange"`
	PublishedAt         *time.Time    `json:"publishedAt"`
	Author              string        `json:"author"`
	IsFeatured          bool          `json:"isFeatured"`
}

func (p reviewPayload) toInput() service.ReviewInput {
	return service.ReviewInput{
		Slug:                p.Slug,
		ContentType:         p.ContentType,
		IsDraft:             p.IsDraft,
		Title:               p.Title,
		Excerpt:             p.Excerpt,
		Content:             p.Content,
		RestaurantName:      p.RestaurantName,
		Rating:              p.Rating,
		Address:             p.Address,
		Lat:                 p.Lat,
		Lng:                 p.Lng,
		LocationTag:         p.LocationTag,
		Images:              p.Images,
		CoverImage:          p.CoverImage,
		CoverImageCrop:      p.CoverImageCrop,
		Tags:                p.Tags,
		FavoriteDishes:      p.FavoriteDishes,
		LeastFavoriteDishes: p.LeastFavoriteDishes,
		Website:             p.Website,
		Instagram:           p.Instagram,
		Yelp:                p.Yelp,
		PriceRange:          p.PriceRange,
		PublishedAt:         p.PublishedAt,
		Author:              p.Author,
		IsFeatured:          p.IsFeatured,
	}
}

// reviewPatchPayload leaves absent fields untouched. coverImageCrop is raw so
// an explicit null can clear the crop.
type reviewPatchPayload struct {
	Slug                *string         `json:"slug"`
	ContentType         *string         `json:"contentType"`
	IsDraft             *bool           `json:"isDraft"`
	Title               *string         `json:"title"`
	Excerpt             *string         `json:"excerpt"`
	Content             *string         `json:"content"`
	RestaurantName      *string         `json:"restaurantName"`
	Rating              *float64        `json:"rating"`
	Address             *string         `json:"address"`
	Lat                 *float64        `json:"lat"`
	Lng                 *float64        `json:"lng"`
	LocationTag         *string         `json:"locationTag"`
	Images              *db.ImageList   `json:"images"`
	CoverImage          *string         `json:"coverImage"`
	CoverImageCrop      json.RawMessage `json:"coverImageCrop"`
	Tags                *db.ReviewTags  `json:"tags"`
	FavoriteDishes      *db.StringList  `json:"favoriteDishes"`
	LeastFavoriteDishes *db.StringList  `json:"leastFavoriteDishes"`
	Website             *string         `json:"website"`
	Instagram           *string         `json:"instagram"`
	Yelp                *string         `json:"yelp"`
	PriceRange          *int            `json:"priceRange"`
	PublishedAt         *time.Time      `json:"publishedAt"`
	Author              *string         `json:"author"`
	IsFeatured          *bool           `json:"isFeatured"`
}

func (p reviewPatchPayload) toPatch() (service.ReviewPatch, error) {
	patch := service.ReviewPatch{
		Slug:                p.Slug,
		ContentType:         p.ContentType,
		IsDraft:             p.IsDraft,
		Title:               p.Title,
		Excerpt:             p.Excerpt,
		Content:             p.Content,
		RestaurantName:      p.RestaurantName,
		Rating:              p.Rating,
		Address:             p.Address,
		Lat:                 p.Lat,
		Lng:                 p.Lng,
		LocationTag:         p.LocationTag,
		Images:              p.Images,
		CoverImage:          p.CoverImage,
		Tags:                p.Tags,
		FavoriteDishes:      p.FavoriteDishes,
		LeastFavoriteDishes: p.LeastFavoriteDishes,
		Website:             p.Website,
		Instagram:           p.Instagram,
		Yelp:                p.Yelp,
		PriceRange:          p.PriceRange,
		PublishedAt:         p.PublishedAt,
		Author:              p.Author,
		IsFeatured:          p.IsFeatured,
	}

	raw := bytes.TrimSpace(p.CoverImageCrop)
	switch {
	case len(raw) == 0:
	case bytes.Equal(raw, []byte("null")):
		patch.ClearCoverImageCrop = true
	default:
		var crop db.CoverCrop
		if err := json.Unmarshal(raw, &crop); err != nil {
			return service.ReviewPatch{}, err
		}
		patch.CoverImageCrop = &crop
	}
	return patch, nil
}

// ListReviews returns every review, drafts included.
func (a *API) ListReviews(c *gin.Context) {
	reviews, err := a.reviews.ListAll()
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// GetReview accepts an id or a slug.
func (a *API) GetReview(c *gin.Context) {
	review, err := a.reviews.Resolve(strings.TrimSpace(c.Param("id")))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"review": review})
}

func (a *API) CreateReview(c *gin.Context) {
	var payload reviewPayload
	if !bindJSON(c, &payload, "Invalid review payload") {
		return
	}

	review, err := a.reviews.Create(payload.toInput())
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"review": review})
}

func (a *API) UpdateReview(c *gin.Context) {
	var payload reviewPatchPayload
	if !bindJSON(c, &payload, "Invalid review payload") {
		return
	}
	patch, err := payload.toPatch()
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid cover crop")
		return
	}

	review, err := a.reviews.Update(strings.TrimSpace(c.Param("id")), patch)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"review": review})
}

func (a *API) DeleteReview(c *gin.Context) {
	if err := a.reviews.Delete(strings.TrimSpace(c.Param("id"))); err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// SetFeaturedReview marks exactly one review as featured.
func (a *API) SetFeaturedReview(c *gin.Context) {
	var payload struct {
		ID string `json:"id"`
	}
	if !bindJSON(c, &payload, "Invalid featured payload") {
		return
	}
	if strings.TrimSpace(payload.ID) == "" {
		respondError(c, http.StatusBadRequest, "id is required")
		return
	}

	review, err := a.reviews.SetFeatured(strings.TrimSpace(payload.ID))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"review": review})
}
