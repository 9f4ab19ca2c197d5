package authoring

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/foodlog/internal/apperr"
	"github.com/foodlog/internal/db"
	"github.com/foodlog/internal/geo"
	"github.com/foodlog/internal/media"
	"github.com/foodlog/internal/service"
	"github.com/foodlog/internal/slug"
)

// ReviewStore is the part of the review service the editor needs.
type ReviewStore interface {
	Get(id string) (*db.Review, error)
	Create(input service.ReviewInput) (*db.Review, error)
	Update(id string, patch service.ReviewPatch) (*db.Review, error)
}

// Geocoder resolves the draft address.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (geo.Result, error)
}

// ReviewEditor drives the create/edit form of one review.
type ReviewEditor struct {
	store     ReviewStore
	autosaver *Autosaver

	mu         sync.Mutex
	editID     string
	draft      ReviewDraft
	slugEdited bool
}

// NewReviewEditor returns an editor in create mode. autosaver may be nil.
func NewReviewEditor(store ReviewStore, autosaver *Autosaver) *ReviewEditor {
	return &ReviewEditor{store: store, autosaver: autosaver, draft: NewReviewDraft()}
}

// Load seeds the editor. A non-empty editID loads that review; otherwise a
// recent autosaved draft is restored when one exists. It reports whether a
// draft was restored.
func (e *ReviewEditor) Load(editID string) (bool, error) {
	editID = strings.TrimSpace(editID)
	if editID != "" {
		review, err := e.store.Get(editID)
		if err != nil {
			return false, err
		}
		e.mu.Lock()
		e.editID = review.ID
		e.draft = DraftFromReview(review)
		e.slugEdited = true
		e.mu.Unlock()
		return false, nil
	}

	draft := NewReviewDraft()
	restored := false
	if e.autosaver != nil {
		if payload, ok := e.autosaver.Restore(); ok {
			if err := json.Unmarshal(payload, &draft); err == nil {
				restored = true
			} else {
				draft = NewReviewDraft()
			}
		}
	}

	e.mu.Lock()
	e.editID = ""
	e.draft = draft
	e.slugEdited = draft.Slug != "" && draft.Slug != slug.Slugify(draft.RestaurantName)
	e.mu.Unlock()
	return restored, nil
}

// Editing reports whether the editor updates an existing review.
func (e *ReviewEditor) Editing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.editID != ""
}

// EditID is the id of the review being edited, empty in create mode.
func (e *ReviewEditor) EditID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.editID
}

// Draft returns a copy of the current draft.
func (e *ReviewEditor) Draft() ReviewDraft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft.clone()
}

// Edit merges arbitrary field changes into the draft.
func (e *ReviewEditor) Edit(apply func(d *ReviewDraft)) {
	e.update(func(d *ReviewDraft) error {
		apply(d)
		return nil
	})
}

// SetRestaurantName updates the name and, until the slug is edited by hand,
// the derived slug.
func (e *ReviewEditor) SetRestaurantName(name string) {
	e.update(func(d *ReviewDraft) error {
		d.RestaurantName = name
		if !e.slugEdited {
			d.Slug = slug.Slugify(name)
		}
		return nil
	})
}

// SetSlug sets the slug by hand. A blank value returns to the derived slug.
func (e *ReviewEditor) SetSlug(value string) {
	e.update(func(d *ReviewDraft) error {
		if strings.TrimSpace(value) == "" {
			e.slugEdited = false
			d.Slug = slug.Slugify(d.RestaurantName)
			return nil
		}
		e.slugEdited = true
		d.Slug = slug.Slugify(value)
		return nil
	})
}

// AddTag appends a label to a tag category. Blank and duplicate values are ignored.
func (e *ReviewEditor) AddTag(category, value string) error {
	return e.update(func(d *ReviewDraft) error {
		list, ok := d.Tags.Category(category)
		if !ok {
			return apperr.Validation("tags", "Unknown tag category "+category)
		}
		*list = appendLabel(*list, value)
		return nil
	})
}

// RemoveTag drops a label from a tag category.
func (e *ReviewEditor) RemoveTag(category, value string) error {
	return e.update(func(d *ReviewDraft) error {
		list, ok := d.Tags.Category(category)
		if !ok {
			return apperr.Validation("tags", "Unknown tag category "+category)
		}
		*list = removeLabel(*list, value)
		return nil
	})
}

// AddDish appends to favoriteDishes or leastFavoriteDishes.
func (e *ReviewEditor) AddDish(field, value string) error {
	return e.update(func(d *ReviewDraft) error {
		list, err := dishList(d, field)
		if err != nil {
			return err
		}
		*list = appendLabel(*list, value)
		return nil
	})
}

// RemoveDish drops the dish at index.
func (e *ReviewEditor) RemoveDish(field string, index int) error {
	return e.update(func(d *ReviewDraft) error {
		list, err := dishList(d, field)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(*list) {
			return apperr.Validation(field, "No dish at that position")
		}
		*list = append((*list)[:index:index], (*list)[index+1:]...)
		return nil
	})
}

// AddImages appends already hosted images. The first one becomes the cover
// when none is set.
func (e *ReviewEditor) AddImages(urls ...string) {
	e.update(func(d *ReviewDraft) error {
		for _, url := range urls {
			url = strings.TrimSpace(url)
			if url == "" {
				continue
			}
			d.Images = append(d.Images, db.Image{URL: url})
			if d.CoverImage == "" {
				d.CoverImage = url
			}
		}
		return nil
	})
}

// UploadImages stores files through up and appends them. Images stored before
// a failure are kept.
func (e *ReviewEditor) UploadImages(ctx context.Context, up media.Uploader, files []media.File) error {
	assets, err := media.UploadAll(ctx, up, files)
	urls := make([]string, 0, len(assets))
	for _, asset := range assets {
		urls = append(urls, asset.URL)
	}
	e.AddImages(urls...)
	return err
}

// ReorderImages moves the image at from to index to.
func (e *ReviewEditor) ReorderImages(from, to int) error {
	return e.update(func(d *ReviewDraft) error {
		if from < 0 || from >= len(d.Images) {
			return apperr.Validation("images", "No image at that position")
		}
		d.Images = service.MoveItem(d.Images, from, to)
		return nil
	})
}

// SetCover selects the cover image. A different cover resets the crop.
func (e *ReviewEditor) SetCover(url string) {
	e.update(func(d *ReviewDraft) error {
		url = strings.TrimSpace(url)
		if url != d.CoverImage {
			d.CoverImageCrop = nil
		}
		d.CoverImage = url
		return nil
	})
}

// SetCaption sets the caption of the image at index.
func (e *ReviewEditor) SetCaption(index int, caption string) error {
	return e.update(func(d *ReviewDraft) error {
		if index < 0 || index >= len(d.Images) {
			return apperr.Validation("images", "No image at that position")
		}
		d.Images[index].Caption = strings.TrimSpace(caption)
		return nil
	})
}

// RemoveImage deletes the image at index. Removing the cover moves it to the
// new first image, or clears it when no image is left.
func (e *ReviewEditor) RemoveImage(index int) error {
	return e.update(func(d *ReviewDraft) error {
		if index < 0 || index >= len(d.Images) {
			return apperr.Validation("images", "No image at that position")
		}
		removed := d.Images[index]
		d.Images = append(d.Images[:index:index], d.Images[index+1:]...)
		if removed.URL == d.CoverImage {
			d.CoverImageCrop = nil
			d.CoverImage = ""
			if len(d.Images) > 0 {
				d.CoverImage = d.Images[0].URL
			}
		}
		return nil
	})
}

// CropCover stores the focal point of the cover image.
func (e *ReviewEditor) CropCover(x, y, zoom float64) error {
	return e.update(func(d *ReviewDraft) error {
		if d.CoverImage == "" {
			return apperr.Validation("coverImage", "Choose a cover image before cropping")
		}
		crop := db.CoverCrop{X: x, Y: y, Zoom: zoom}.Normalize()
		d.CoverImageCrop = &crop
		return nil
	})
}

// Geocode resolves the draft address and stores the coordinates.
func (e *ReviewEditor) Geocode(ctx context.Context, g Geocoder) (geo.Result, error) {
	address := e.Draft().Address
	result, err := g.Geocode(ctx, address)
	if err != nil {
		return geo.Result{}, err
	}
	e.update(func(d *ReviewDraft) error {
		d.Lat = result.Lat
		d.Lng = result.Lng
		return nil
	})
	return result, nil
}

// Submit persists the draft. Publishing requires coordinates and at least one
// image. A successful create clears the autosaved draft and switches the
// editor to edit mode.
func (e *ReviewEditor) Submit(asDraft bool) (*db.Review, Notice, error) {
	e.mu.Lock()
	e.draft.IsDraft = asDraft
	draft := e.draft.clone()
	editID := e.editID
	e.mu.Unlock()

	if strings.TrimSpace(draft.RestaurantName) == "" {
		err := apperr.Validation("restaurantName", "Restaurant name is required")
		return nil, NoticeFor(err), err
	}
	if !asDraft {
		if err := service.ValidatePublishable(draft.Lat, draft.Lng, draft.Images); err != nil {
			return nil, NoticeFor(err), err
		}
	}

	var (
		review *db.Review
		err    error
	)
	if editID != "" {
		review, err = e.store.Update(editID, draft.Patch())
	} else {
		review, err = e.store.Create(draft.Input())
	}
	if err != nil {
		return nil, NoticeFor(err), err
	}

	if editID == "" && e.autosaver != nil {
		e.autosaver.Clear()
	}

	e.mu.Lock()
	e.editID = review.ID
	e.draft = DraftFromReview(review)
	e.slugEdited = true
	e.mu.Unlock()

	return review, Notice{Kind: NoticeSuccess, Message: submitMessage(review, editID != "")}, nil
}

func submitMessage(review *db.Review, updated bool) string {
	switch {
	case review.IsDraft && updated:
		return "Draft updated"
	case review.IsDraft:
		return "Draft saved"
	case updated:
		return "Review updated"
	default:
		return "Review published"
	}
}

// update applies change under the lock and schedules an autosave in create mode.
func (e *ReviewEditor) update(change func(d *ReviewDraft) error) error {
	e.mu.Lock()
	if err := change(&e.draft); err != nil {
		e.mu.Unlock()
		return err
	}
	var payload []byte
	if e.editID == "" && e.autosaver != nil {
		payload, _ = json.Marshal(e.draft)
	}
	e.mu.Unlock()

	if payload != nil {
		e.autosaver.Schedule(payload)
	}
	return nil
}

func dishList(d *ReviewDraft, field string) (*db.StringList, error) {
	switch field {
	case FieldFavoriteDishes:
		return &d.FavoriteDishes, nil
	case FieldLeastFavoriteDishes:
		return &d.LeastFavoriteDishes, nil
	default:
		return nil, apperr.Validation(field, "Unknown dish list "+field)
	}
}

func appendLabel(list db.StringList, value string) db.StringList {
	value = strings.TrimSpace(value)
	if value == "" || list.Contains(value) {
		return list
	}
	return append(list, value)
}

func removeLabel(list db.StringList, value string) db.StringList {
	value = strings.TrimSpace(value)
	result := make(db.StringList, 0, len(list))
	for _, item := range list {
		if item != value {
			result = append(result, item)
		}
	}
	return result
}
