package service

import (
	"errors"

	"github.com/foodlog/internal/apperr"
	"github.com/foodlog/internal/db"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// reviewRules holds the constraints every stored review must meet, draft or not.
type reviewRules struct {
	RestaurantName string  `validate:"required"`
	Slug           string  `validate:"required"`
	ContentType    string  `validate:"oneof=review list"`
	Rating         float64 `validate:"gte=0,lte=10"`
	PriceRange     int     `validate:"gte=0,lte=4"`
	Lat            float64 `validate:"gte=-90,lte=90"`
	Lng            float64 `validate:"gte=-180,lte=180"`
}

// publishRules are checked only when a review leaves draft state.
type publishRules struct {
	Geocoded bool       `validate:"required"`
	Images   []db.Image `validate:"min=1"`
}

type listRules struct {
	Title string `validate:"required"`
	Slug  string `validate:"required"`
}

type fieldRule struct {
	field   string
	message string
}

var ruleMessages = map[string]fieldRule{
	"RestaurantName": {field: "restaurantName", message: "Restaurant name is required"},
	"Slug":           {field: "slug", message: "Slug is empty; use a name that contains letters or digits"},
	"ContentType":    {field: "contentType", message: "Content type must be review or list"},
	"Rating":         {field: "rating", message: "Rating must be between 0 and 10"},
	"PriceRange":     {field: "priceRange", message: "Price range must be between 1 and 4"},
	"Lat":            {field: "lat", message: "Geocode the address before publishing"},
	"Lng":            {field: "lng", message: "Geocode the address before publishing"},
	"Geocoded":       {field: "lat", message: "Geocode the address before publishing"},
	"Images":         {field: "images", message: "Add at least one image before publishing"},
	"Title":          {field: "title", message: "Title is required"},
}

// ValidateReview checks a review record, including the publish gate when the
// review is not a draft.
func ValidateReview(review *db.Review) error {
	if err := checkRules(reviewRules{
		RestaurantName: review.RestaurantName,
		Slug:           review.Slug,
		ContentType:    review.ContentType,
		Rating:         review.Rating,
		PriceRange:     review.PriceRange,
		Lat:            review.Lat,
		Lng:            review.Lng,
	}); err != nil {
		return err
	}
	if review.IsDraft {
		return nil
	}
	return ValidatePublishable(review.Lat, review.Lng, review.Images)
}

// ValidatePublishable enforces the publish gate: a geocoded location and at least one image.
func ValidatePublishable(lat, lng float64, images db.ImageList) error {
	return checkRules(publishRules{Geocoded: db.HasCoordinates(lat, lng), Images: images})
}

func validateList(list *db.List) error {
	return checkRules(listRules{Title: list.Title, Slug: list.Slug})
}

func checkRules(rules interface{}) error {
	err := validate.Struct(rules)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	first := fieldErrs[0]
	if rule, ok := ruleMessages[first.StructField()]; ok {
		if first.StructField() == "Slug" && first.StructNamespace() == "listRules.Slug" {
			return apperr.Validation(rule.field, "Slug is required")
		}
		return apperr.Validation(rule.field, rule.message)
	}
	return apperr.Validation(first.Field(), first.Error())
}
