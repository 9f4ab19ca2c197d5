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

// ListService handles curated lists and their items.
type ListService struct {
	db  *gorm.DB
	now func() time.Time
}

// ListInput represents list metadata accepted on create and full update.
type ListInput struct {
	Slug        string
	Title       string
	Description string
	CoverImage  string
	IsDraft     bool
	IsFeatured  bool
	PublishedAt *time.Time
}

// ItemPatch updates the blurb and/or position of one list item.
type ItemPatch struct {
	Blurb    *string
	Position *int
}

// ItemSpec is the desired state of one item when syncing a list.
// An empty ID means the item is new.
type ItemSpec struct {
	ID       string
	ReviewID string
	Blurb    string
}

// NewListService creates a ListService instance.
func NewListService(gdb *gorm.DB) *ListService {
	return &ListService{db: gdb, now: time.Now}
}

// ListAll returns every list, drafts included, with ordered items.
func (s *ListService) ListAll() ([]db.List, error) {
	var lists []db.List
	if err := s.withItems(s.db).
		Order("published_at desc").Order("id asc").
		Find(&lists).Error; err != nil {
		return nil, err
	}
	return lists, nil
}

// ListPublished returns non-draft lists with ordered items.
func (s *ListService) ListPublished() ([]db.List, error) {
	var lists []db.List
	if err := s.withItems(s.db).
		Where("is_draft = ?", false).
		Order("published_at desc").Order("id asc").
		Find(&lists).Error; err != nil {
		return nil, err
	}
	return lists, nil
}

// Get fetches a list by id or slug with items ordered by position.
func (s *ListService) Get(idOrSlug string) (*db.List, error) {
	return s.find(s.db, idOrSlug)
}

// Create inserts a list. The slug defaults to the slugified title.
func (s *ListService) Create(input ListInput) (*db.List, error) {
	list := db.List{
		Slug:        slug.Slugify(input.Slug),
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		CoverImage:  strings.TrimSpace(input.CoverImage),
		IsDraft:     input.IsDraft,
		IsFeatured:  input.IsFeatured,
	}
	if list.Slug == "" {
		list.Slug = slug.Slugify(list.Title)
	}
	if input.PublishedAt != nil && !input.PublishedAt.IsZero() {
		list.PublishedAt = *input.PublishedAt
	} else {
		list.PublishedAt = s.now()
	}

	if err := validateList(&list); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureListSlugAvailable(tx, list.Slug, ""); err != nil {
			return err
		}
		if err := tx.Create(&list).Error; err != nil {
			return translateWriteError(err, list.Slug)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	list.Items = []db.ListItem{}
	return &list, nil
}

// Update replaces the metadata of a list. Items are untouched.
func (s *ListService) Update(id string, input ListInput) (*db.List, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		list, err := s.find(tx, id)
		if err != nil {
			return err
		}

		list.Slug = slug.Slugify(input.Slug)
		list.Title = strings.TrimSpace(input.Title)
		if list.Slug == "" {
			list.Slug = slug.Slugify(list.Title)
		}
		if err := validateList(list); err != nil {
			return err
		}
		if err := ensureListSlugAvailable(tx, list.Slug, list.ID); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"slug":        list.Slug,
			"title":       list.Title,
			"description": strings.TrimSpace(input.Description),
			"cover_image": strings.TrimSpace(input.CoverImage),
			"is_draft":    input.IsDraft,
			"is_featured": input.IsFeatured,
		}
		if input.PublishedAt != nil && !input.PublishedAt.IsZero() {
			updates["published_at"] = *input.PublishedAt
		}
		if err := tx.Model(&db.List{}).Where("id = ?", list.ID).Updates(updates).Error; err != nil {
			return translateWriteError(err, list.Slug)
		}
		id = list.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete removes a list and its items. Referenced reviews stay.
func (s *ListService) Delete(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var list db.List
		if err := tx.Where("id = ?", id).First(&list).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("List not found")
			}
			return err
		}
		if err := tx.Where("list_id = ?", list.ID).Delete(&db.ListItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&list).Error
	})
}

// AddItem appends a review to the end of a list.
func (s *ListService) AddItem(listID, reviewID, blurb string) (*db.ListItem, error) {
	var item db.ListItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureListExists(tx, listID); err != nil {
			return err
		}
		review, err := findReview(tx, "id = ?", reviewID)
		if err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&db.ListItem{}).
			Where("list_id = ? AND review_id = ?", listID, reviewID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperr.Conflict(review.RestaurantName + " is already in this list")
		}

		var count int64
		if err := tx.Model(&db.ListItem{}).Where("list_id = ?", listID).Count(&count).Error; err != nil {
			return err
		}

		item = db.ListItem{
			ListID:   listID,
			ReviewID: reviewID,
			Blurb:    strings.TrimSpace(blurb),
			Position: int(count),
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		item.Review = review
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem changes an item's blurb and/or moves it to a new position.
func (s *ListService) UpdateItem(listID, itemID string, patch ItemPatch) (*db.ListItem, error) {
	var updated db.ListItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		items, err := loadItems(tx, listID)
		if err != nil {
			return err
		}

		index := indexOfItem(items, itemID)
		if index < 0 {
			return apperr.NotFound("List item not found")
		}

		if patch.Blurb != nil {
			blurb := strings.TrimSpace(*patch.Blurb)
			if err := tx.Model(&db.ListItem{}).Where("id = ?", itemID).Update("blurb", blurb).Error; err != nil {
				return err
			}
			items[index].Blurb = blurb
		}

		if patch.Position != nil {
			items = MoveItem(items, index, *patch.Position)
			if err := applyOrder(tx, items); err != nil {
				return err
			}
		}

		for _, item := range items {
			if item.ID == itemID {
				updated = item
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// RemoveItem deletes one item and closes the gap in positions.
func (s *ListService) RemoveItem(listID, itemID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureListExists(tx, listID); err != nil {
			return err
		}
		result := tx.Where("id = ? AND list_id = ?", itemID, listID).Delete(&db.ListItem{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperr.NotFound("List item not found")
		}
		return renumberItems(tx, listID)
	})
}

// Reorder rewrites positions so they follow orderedItemIDs exactly. The ids
// must be a permutation of the list's current items.
func (s *ListService) Reorder(listID string, orderedItemIDs []string) ([]db.ListItem, error) {
	var ordered []db.ListItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		items, err := loadItems(tx, listID)
		if err != nil {
			return err
		}
		if len(orderedItemIDs) != len(items) {
			return apperr.Validation("orderedItemIds", "Reorder must include every item of the list exactly once")
		}

		byID := make(map[string]db.ListItem, len(items))
		for _, item := range items {
			byID[item.ID] = item
		}

		ordered = make([]db.ListItem, 0, len(items))
		seen := make(map[string]bool, len(items))
		for _, id := range orderedItemIDs {
			item, ok := byID[id]
			if !ok {
				return apperr.Validation("orderedItemIds", "Item "+id+" does not belong to this list")
			}
			if seen[id] {
				return apperr.Validation("orderedItemIds", "Item "+id+" appears more than once")
			}
			seen[id] = true
			ordered = append(ordered, item)
		}

		return applyOrder(tx, ordered)
	})
	if err != nil {
		return nil, err
	}
	return ordered, nil
}

// SyncItems makes the stored items match specs in one transaction: matching
// ids are updated, new specs are inserted, missing items are removed, and
// positions follow the order of specs.
func (s *ListService) SyncItems(listID string, specs []ItemSpec) ([]db.ListItem, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		items, err := loadItems(tx, listID)
		if err != nil {
			return err
		}

		existing := make(map[string]db.ListItem, len(items))
		for _, item := range items {
			existing[item.ID] = item
		}

		reviewIDs := make([]string, 0, len(specs))
		seenReviews := make(map[string]bool, len(specs))
		keep := make(map[string]bool, len(specs))
		for _, spec := range specs {
			reviewID := strings.TrimSpace(spec.ReviewID)
			if reviewID == "" {
				return apperr.Validation("items", "Every list item needs a review")
			}
			if seenReviews[reviewID] {
				return apperr.Validation("items", "A review can appear only once in a list")
			}
			seenReviews[reviewID] = true
			reviewIDs = append(reviewIDs, reviewID)

			if spec.ID != "" {
				if _, ok := existing[spec.ID]; !ok {
					return apperr.Validation("items", "Item "+spec.ID+" does not belong to this list")
				}
				if keep[spec.ID] {
					return apperr.Validation("items", "Item "+spec.ID+" appears more than once")
				}
				keep[spec.ID] = true
			}
		}

		if len(reviewIDs) > 0 {
			var found int64
			if err := tx.Model(&db.Review{}).Where("id IN ?", reviewIDs).Count(&found).Error; err != nil {
				return err
			}
			if int(found) != len(reviewIDs) {
				return apperr.NotFound("One or more reviews in this list no longer exist")
			}
		}

		for _, item := range items {
			if keep[item.ID] {
				continue
			}
			if err := tx.Where("id = ?", item.ID).Delete(&db.ListItem{}).Error; err != nil {
				return err
			}
		}

		for position, spec := range specs {
			blurb := strings.TrimSpace(spec.Blurb)
			reviewID := strings.TrimSpace(spec.ReviewID)
			if spec.ID != "" {
				current := existing[spec.ID]
				if current.Blurb == blurb && current.Position == position && current.ReviewID == reviewID {
					continue
				}
				if err := tx.Model(&db.ListItem{}).Where("id = ?", spec.ID).Updates(map[string]interface{}{
					"blurb":     blurb,
					"position":  position,
					"review_id": reviewID,
				}).Error; err != nil {
					return err
				}
				continue
			}
			item := db.ListItem{ListID: listID, ReviewID: reviewID, Blurb: blurb, Position: position}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	list, err := s.Get(listID)
	if err != nil {
		return nil, err
	}
	return list.Items, nil
}

// MoveItem moves items[from] to index to, shifting the others. Out of range
// targets are clamped. The slice is returned in its new order.
func MoveItem[T any](items []T, from, to int) []T {
	if from < 0 || from >= len(items) {
		return items
	}
	if to < 0 {
		to = 0
	}
	if to >= len(items) {
		to = len(items) - 1
	}
	if from == to {
		return items
	}

	moved := items[from]
	result := make([]T, 0, len(items))
	result = append(result, items[:from]...)
	result = append(result, items[from+1:]...)
	result = append(result[:to], append([]T{moved}, result[to:]...)...)
	return result
}

func (s *ListService) withItems(gdb *gorm.DB) *gorm.DB {
	return gdb.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position asc").Order("created_at asc")
	}).Preload("Items.Review")
}

func (s *ListService) find(gdb *gorm.DB, idOrSlug string) (*db.List, error) {
	var list db.List
	if err := s.withItems(gdb).Where("id = ? OR slug = ?", idOrSlug, idOrSlug).First(&list).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("List not found")
		}
		return nil, err
	}
	if list.Items == nil {
		list.Items = []db.ListItem{}
	}
	return &list, nil
}

func ensureListExists(tx *gorm.DB, listID string) error {
	var count int64
	if err := tx.Model(&db.List{}).Where("id = ?", listID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperr.NotFound("List not found")
	}
	return nil
}

func ensureListSlugAvailable(tx *gorm.DB, value, selfID string) error {
	query := tx.Model(&db.List{}).Where("slug = ?", value)
	if selfID != "" {
		query = query.Where("id <> ?", selfID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperr.Conflict("A list with slug \"" + value + "\" already exists; choose a different slug")
	}
	return nil
}

func loadItems(tx *gorm.DB, listID string) ([]db.ListItem, error) {
	if err := ensureListExists(tx, listID); err != nil {
		return nil, err
	}
	var items []db.ListItem
	if err := tx.Where("list_id = ?", listID).
		Order("position asc").Order("created_at asc").Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func indexOfItem(items []db.ListItem, itemID string) int {
	for i, item := range items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

// applyOrder writes positions 0..n-1 following the slice order.
func applyOrder(tx *gorm.DB, items []db.ListItem) error {
	for i := range items {
		if items[i].Position == i {
			continue
		}
		if err := tx.Model(&db.ListItem{}).Where("id = ?", items[i].ID).Update("position", i).Error; err != nil {
			return err
		}
		items[i].Position = i
	}
	return nil
}

func renumberItems(tx *gorm.DB, listID string) error {
	var items []db.ListItem
	if err := tx.Where("list_id = ?", listID).
		Order("position asc").Order("created_at asc").Order("id asc").
		Find(&items).Error; err != nil {
		return err
	}
	return applyOrder(tx, items)
}
