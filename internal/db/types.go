package db

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Image is one gallery entry of a review.
type Image struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

// ImageList is stored as a JSON text column. Older rows hold a bare array of
// URL strings; those decode to images with an empty caption.
type ImageList []Image

// MarshalJSON always emits an array, never null.
func (l ImageList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Image(l))
}

// UnmarshalJSON accepts both `[{"url":..,"caption":..}]` and `["url", ...]`.
func (l *ImageList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = ImageList{}
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode images: %w", err)
	}

	images := make(ImageList, 0, len(raw))
	for _, entry := range raw {
		entry = bytes.TrimSpace(entry)
		if len(entry) > 0 && entry[0] == '"' {
			var url string
			if err := json.Unmarshal(entry, &url); err != nil {
				return fmt.Errorf("decode legacy image: %w", err)
			}
			images = append(images, Image{URL: url})
			continue
		}
		var image Image
		if err := json.Unmarshal(entry, &image); err != nil {
			return fmt.Errorf("decode image: %w", err)
		}
		images = append(images, image)
	}
	*l = images
	return nil
}

// Value implements driver.Valuer.
func (l ImageList) Value() (driver.Value, error) {
	data, err := l.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (l *ImageList) Scan(value interface{}) error {
	data, err := columnBytes(value)
	if err != nil {
		return err
	}
	return l.UnmarshalJSON(data)
}

// URLs returns the image URLs in display order.
func (l ImageList) URLs() []string {
	urls := make([]string, 0, len(l))
	for _, image := range l {
		urls = append(urls, image.URL)
	}
	return urls
}

// StringList is an ordered list of labels stored as a JSON text column.
type StringList []string

// MarshalJSON always emits an array, never null.
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// UnmarshalJSON treats null as an empty list.
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = StringList{}
		return nil
	}
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("decode string list: %w", err)
	}
	*l = StringList(values)
	return nil
}

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	data, err := l.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(value interface{}) error {
	data, err := columnBytes(value)
	if err != nil {
		return err
	}
	return l.UnmarshalJSON(data)
}

// Contains reports whether value is present verbatim.
func (l StringList) Contains(value string) bool {
	for _, item := range l {
		if item == value {
			return true
		}
	}
	return false
}

// ReviewTags groups the three label categories of a review.
type ReviewTags struct {
	Cuisines  StringList `json:"cuisines"`
	Vibes     StringList `json:"vibes"`
	FoodTypes StringList `json:"foodTypes"`
}

// Tag categories accepted by the authoring workflow.
const (
	TagCuisines  = "cuisines"
	TagVibes     = "vibes"
	TagFoodTypes = "foodTypes"
)

// Category returns a pointer to the list for a category name.
func (t *ReviewTags) Category(name string) (*StringList, bool) {
	switch name {
	case TagCuisines:
		return &t.Cuisines, true
	case TagVibes:
		return &t.Vibes, true
	case TagFoodTypes:
		return &t.FoodTypes, true
	default:
		return nil, false
	}
}

// Value implements driver.Valuer.
func (t ReviewTags) Value() (driver.Value, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (t *ReviewTags) Scan(value interface{}) error {
	data, err := columnBytes(value)
	if err != nil {
		return err
	}
	decoded := ReviewTags{}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &decoded); err != nil {
			return fmt.Errorf("decode tags: %w", err)
		}
	}
	if decoded.Cuisines == nil {
		decoded.Cuisines = StringList{}
	}
	if decoded.Vibes == nil {
		decoded.Vibes = StringList{}
	}
	if decoded.FoodTypes == nil {
		decoded.FoodTypes = StringList{}
	}
	*t = decoded
	return nil
}

// CoverCrop is a focal point on the cover image. X and Y are percentages of
// the image box, Zoom is a scale factor of at least 1. Pixels are never touched.
type CoverCrop struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// Normalize clamps the crop into its valid range.
func (c CoverCrop) Normalize() CoverCrop {
	c.X = clamp(c.X, 0, 100)
	c.Y = clamp(c.Y, 0, 100)
	if c.Zoom < 1 {
		c.Zoom = 1
	}
	return c
}

// ObjectPosition renders the focal point as a CSS object-position value.
func (c CoverCrop) ObjectPosition() string {
	return fmt.Sprintf("%g%% %g%%", c.X, c.Y)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func columnBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(strings.TrimSpace(v)), nil
	default:
		return nil, fmt.Errorf("unsupported column type %T", value)
	}
}
