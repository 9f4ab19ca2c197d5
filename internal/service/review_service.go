package service

import (
	"errors"
	"strings"
	"time"

	"github.com/foodlog/internal/apperr"
	"github.com/foodlog/internal/db"
	"github.com/foodlog/internal/slug"
	"gorm.io/gorm"
)

// ReviewService wraps review persistence.
type ReviewService struct {
	db  *gorm.DB
	now func() time.Time
}

// ReviewInput represents the fields accepted when creating a review.
type ReviewInput struct {
	Slug                string
	ContentType         string
	IsDraft             bool
	Title               string
	Excerpt             string
	Content             string
	RestaurantName      string
	Rating              float64
	Address             string
	Lat                 float64
	Lng                 float64
	LocationTag         string
	Images              db.ImageList
	CoverImage          string
	CoverImageCrop      *db.CoverCrop
	Tags                db.ReviewTags
	FavoriteDishes      db.StringList
	LeastFavoriteDishes db.StringList
	Website             string
	Instagram           string
	Yelp                string
	PriceRange          int
	PublishedAt         *time.Time
	Author              string
	IsFeatured          bool
}

// ReviewPatch is a partial update; nil fields are left untouched.
type ReviewPatch struct {
	Slug                *string
	ContentType         *string
	IsDraft             *bool
	Title               *string
	Excerpt             *string
	Content             *string
	RestaurantName      *string
	Rating              *float64
	Address             *string
	Lat                 *float64
	Lng                 *float64
	LocationTag         *string
	Images              *db.ImageList
	CoverImage          *string
	CoverImageCrop      *db.CoverCrop
	ClearCoverImageCrop bool
	Tags                *db.ReviewTags
	FavoriteDishes      *db.StringList
	LeastFavoriteDishes *db.StringList
	Website             *string
	Instagram           *string
	Yelp                *string
	PriceRange          *int
	PublishedAt         *time.Time
	Author              *string
	IsFeatured          *bool
}

// NewReviewService creates a ReviewService instance.
func NewReviewService(gdb *gorm.DB) *ReviewService {
	return &ReviewService{db: gdb, now: time.Now}
}

// ListAll returns every review, drafts included, newest publishedAt first.
func (s *ReviewService) ListAll() ([]db.Review, error) {
	var reviews []db.Review
	if err := s.db.Order("published_at desc").Order("id asc").Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// ListPublished returns non-draft reviews, newest first.
func (s *ReviewService) ListPublished() ([]db.Review, error) {
	var reviews []db.Review
	if err := s.db.Where("is_draft = ?", false).
		Order("published_at desc").Order("id asc").
		Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// Get fetches a review by id.
func (s *ReviewService) Get(id string) (*db.Review, error) {
	return findReview(s.db, "id = ?", id)
}

// GetBySlug fetches a review by slug.
func (s *ReviewService) GetBySlug(value string) (*db.Review, error) {
	return findReview(s.db, "slug = ?", value)
}

// Resolve accepts either an id or a slug.
func (s *ReviewService) Resolve(idOrSlug string) (*db.Review, error) {
	return findReview(s.db, "id = ? OR slug = ?", idOrSlug, idOrSlug)
}

// Create persists a review. The slug comes from input.Slug when given,
// otherwise from the restaurant name.
func (s *ReviewService) Create(input ReviewInput) (*db.Review, error) {
	review := db.Review{
		Slug:                slug.Slugify(input.Slug),
		ContentType:         strings.TrimSpace(input.ContentType),
		IsDraft:             input.IsDraft,
		Title:               strings.TrimSpace(input.Title),
		Excerpt:             strings.TrimSpace(input.Excerpt),
		Content:             input.Content,
		RestaurantName:      strings.TrimSpace(input.RestaurantName),
		Rating:              input.Rating,
		Address:             strings.TrimSpace(input.Address),
		Lat:                 input.Lat,
		Lng:                 input.Lng,
		LocationTag:         strings.TrimSpace(input.LocationTag),
		Images:              normalizeImages(input.Images),
		CoverImage:          strings.TrimSpace(input.CoverImage),
		CoverImageCrop:      normalizeCrop(input.CoverImageCrop),
		Tags:                normalizeTags(input.Tags),
		FavoriteDishes:      normalizeLabels(input.FavoriteDishes),
		LeastFavoriteDishes: normalizeLabels(input.LeastFavoriteDishes),
		Website:             strings.TrimSpace(input.Website),
		Instagram:           strings.TrimSpace(input.Instagram),
		Yelp:                strings.TrimSpace(input.Yelp),
		PriceRange:          input.PriceRange,
		Author:              strings.TrimSpace(input.Author),
		IsFeatured:          input.IsFeatured,
	}
	if review.Slug == "" {
		review.Slug = slug.Slugify(review.RestaurantName)
	}
	if review.ContentType == "" {
		review.ContentType = db.ContentTypeReview
	}
	if review.Title == "" {
		review.Title = review.RestaurantName
	}
	if input.PublishedAt != nil && !input.PublishedAt.IsZero() {
		review.PublishedAt = *input.PublishedAt
	} else {
		review.PublishedAt = s.now()
	}

	if err := ValidateReview(&review); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureReviewSlugAvailable(tx, review.Slug, ""); err != nil {
			return err
		}
		if review.IsFeatured {
			if err := clearFeaturedReviews(tx); err != nil {
				return err
			}
		}
		if err := tx.Create(&review).Error; err != nil {
			return translateWriteError(err, review.Slug)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// Update applies a partial update to an existing review.
func (s *ReviewService) Update(id string, patch ReviewPatch) (*db.Review, error) {
	var updated *db.Review
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := findReview(tx, "id = ?", id)
		if err != nil {
			return err
		}

		applyReviewPatch(existing, patch)
		if err := ValidateReview(existing); err != nil {
			return err
		}
		if err := ensureReviewSlugAvailable(tx, existing.Slug, existing.ID); err != nil {
			return err
		}
		if patch.IsFeatured != nil && *patch.IsFeatured {
			if err := clearFeaturedReviews(tx); err != nil {
				return err
			}
		}
		if err := tx.Save(existing).Error; err != nil {
			return translateWriteError(err, existing.Slug)
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a review and every list item pointing at it. The affected
// lists are renumbered in the same transaction.
func (s *ReviewService) Delete(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		review, err := findReview(tx, "id = ?", id)
		if err != nil {
			return err
		}

		var listIDs []string
		if err := tx.Model(&db.ListItem{}).
			Where("review_id = ?", review.ID).
			Distinct().
			Pluck("list_id", &listIDs).Error; err != nil {
			return err
		}

		if err := tx.Where("review_id = ?", review.ID).Delete(&db.ListItem{}).Error; err != nil {
			return err
		}
		for _, listID := range listIDs {
			if err := renumberItems(tx, listID); err != nil {
				return err
			}
		}

		return tx.Delete(review).Error
	})
}

// SetFeatured marks exactly one review as featured.
func (s *ReviewService) SetFeatured(id string) (*db.Review, error) {
	var featured *db.Review
	err := s.db.Transaction(func(tx *gorm.DB) error {
		review, err := findReview(tx, "id = ?", id)
		if err != nil {
			return err
		}
		if err := clearFeaturedReviews(tx); err != nil {
			return err
		}
		if err := tx.Model(&db.Review{}).Where("id = ?", review.ID).Update("is_featured", true).Error; err != nil {
			return err
		}
		review.IsFeatured = true
		featured = review
		return nil
	})
	if err != nil {
		return nil, err
	}
	return featured, nil
}

func findReview(gdb *gorm.DB, query string, args ...interface{}) (*db.Review, error) {
	var review db.Review
	if err := gdb.Where(query, args...).First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Review not found")
		}
		return nil, err
	}
	return &review, nil
}

func ensureReviewSlugAvailable(tx *gorm.DB, value, selfID string) error {
	query := tx.Model(&db.Review{}).Where("slug = ?", value)
	if selfID != "" {
		query = query.Where("id <> ?", selfID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperr.Conflict("A review with slug \"" + value + "\" already exists; choose a different slug")
	}
	return nil
}

func clearFeaturedReviews(tx *gorm.DB) error {
	return tx.Model(&db.Review{}).Where("is_featured = ?", true).Update("is_featured", false).Error
}

func translateWriteError(err error, value string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("Slug \"" + value + "\" is already taken")
	}
	return err
}

func applyReviewPatch(review *db.Review, patch ReviewPatch) {
	if patch.Slug != nil {
		review.Slug = slug.Slugify(*patch.Slug)
	}
	if patch.ContentType != nil {
		review.ContentType = strings.TrimSpace(*patch.ContentType)
	}
	if patch.IsDraft != nil {
		review.IsDraft = *patch.IsDraft
	}
	if patch.Title != nil {
		review.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Excerpt != nil {
		review.Excerpt = strings.TrimSpace(*patch.Excerpt)
	}
	if patch.Content != nil {
		review.Content = *patch.Content
	}
	if patch.RestaurantName != nil {
		review.RestaurantName = strings.TrimSpace(*patch.RestaurantName)
	}
	if patch.Rating != nil {
		review.Rating = *patch.Rating
	}
	if patch.Address != nil {
		review.Address = strings.TrimSpace(*patch.Address)
	}
	if patch.Lat != nil {
		review.Lat = *patch.Lat
	}
	if patch.Lng != nil {
		review.Lng = *patch.Lng
	}
	if patch.LocationTag != nil {
		review.LocationTag = strings.TrimSpace(*patch.LocationTag)
	}
	if patch.Images != nil {
		review.Images = normalizeImages(*patch.Images)
	}
	if patch.CoverImage != nil {
		review.CoverImage = strings.TrimSpace(*patch.CoverImage)
	}
	if patch.ClearCoverImageCrop {
		review.CoverImageCrop = nil
	} else if patch.CoverImageCrop != nil {
		review.CoverImageCrop = normalizeCrop(patch.CoverImageCrop)
	}
	if patch.Tags != nil {
		review.Tags = normalizeTags(*patch.Tags)
	}
	if patch.FavoriteDishes != nil {
		review.FavoriteDishes = normalizeLabels(*patch.FavoriteDishes)
	}
	if patch.LeastFavoriteDishes != nil {
		review.LeastFavoriteDishes = normalizeLabels(*patch.LeastFavoriteDishes)
	}
	if patch.Website != nil {
		review.Website = strings.TrimSpace(*patch.Website)
	}
	if patch.Instagram != nil {
		review.Instagram = strings.TrimSpace(*patch.Instagram)
	}
	if patch.Yelp != nil {
		review.Yelp = strings.TrimSpace(*patch.Yelp)
	}
	if patch.PriceRange != nil {
		review.PriceRange = *patch.PriceRange
	}
	if patch.PublishedAt != nil && !patch.PublishedAt.IsZero() {
		review.PublishedAt = *patch.PublishedAt
	}
	if patch.Author != nil {
		review.Author = strings.TrimSpace(*patch.Author)
	}
	if patch.IsFeatured != nil {
		review.IsFeatured = *patch.IsFeatured
	}
}

func normalizeImages(images db.ImageList) db.ImageList {
	result := make(db.ImageList, 0, len(images))
	for _, image := range images {
		url := strings.TrimSpace(image.URL)
		if url == "" {
			continue
		}
		result = append(result, db.Image{URL: url, Caption: strings.TrimSpace(image.Caption)})
	}
	return result
}

func normalizeLabels(values db.StringList) db.StringList {
	result := make(db.StringList, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		result = append(result, trimmed)
	}
	return result
}

func normalizeTags(tags db.ReviewTags) db.ReviewTags {
	return db.ReviewTags{
		Cuisines:  normalizeLabels(tags.Cuisines),
		Vibes:     normalizeLabels(tags.Vibes),
		FoodTypes: normalizeLabels(tags.FoodTypes),
	}
}

func normalizeCrop(crop *db.CoverCrop) *db.CoverCrop {
	if crop == nil {
		return nil
	}
	normalized := crop.Normalize()
	return &normalized
}
