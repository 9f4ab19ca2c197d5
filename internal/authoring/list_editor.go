package authoring

import (
	"strconv"
	"strings"
	"time"

	"github.com/foodlog/internal/apperr"
	"github.com/foodlog/internal/db"
	"github.com/foodlog/internal/service"
	"github.com/foodlog/internal/slug"
)

// ListStore is the part of the list service the editor needs.
type ListStore interface {
	Get(idOrSlug string) (*db.List, error)
	Create(input service.ListInput) (*db.List, error)
	Update(id string, input service.ListInput) (*db.List, error)
	SyncItems(listID string, specs []service.ItemSpec) ([]db.ListItem, error)
}

// ListDraftItem is one entry of a list being edited. ID is empty until the
// item has been saved.
type ListDraftItem struct {
	ID       string     `json:"id,omitempty"`
	ReviewID string     `json:"reviewId"`
	Review   *db.Review `json:"review,omitempty"`
	Blurb    string     `json:"blurb"`
	Position int        `json:"position"`
}

// ListDraft is the in-memory shape of a list being edited.
type ListDraft struct {
	Slug        string          `json:"slug"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	CoverImage  string          `json:"coverImage"`
	IsDraft     bool            `json:"isDraft"`
	IsFeatured  bool            `json:"isFeatured"`
	PublishedAt time.Time       `json:"publishedAt"`
	Items       []ListDraftItem `json:"items"`
}

// ListEditor drives the create/edit form of one list. It is meant for one
// caller at a time.
type ListEditor struct {
	store      ListStore
	editID     string
	draft      ListDraft
	slugEdited bool
}

func NewListEditor(store ListStore) *ListEditor {
	return &ListEditor{store: store, draft: ListDraft{IsDraft: true, Items: []ListDraftItem{}}}
}

// Load seeds the editor from a stored list, or resets it for a new list.
func (e *ListEditor) Load(editID string) error {
	editID = strings.TrimSpace(editID)
	if editID == "" {
		e.editID = ""
		e.draft = ListDraft{IsDraft: true, Items: []ListDraftItem{}}
		e.slugEdited = false
		return nil
	}
	list, err := e.store.Get(editID)
	if err != nil {
		return err
	}
	e.seed(list, list.Items)
	return nil
}

func (e *ListEditor) seed(list *db.List, items []db.ListItem) {
	e.editID = list.ID
	e.slugEdited = true
	e.draft = ListDraft{
		Slug:        list.Slug,
		Title:       list.Title,
		Description: list.Description,
		CoverImage:  list.CoverImage,
		IsDraft:     list.IsDraft,
		IsFeatured:  list.IsFeatured,
		PublishedAt: list.PublishedAt,
		Items:       make([]ListDraftItem, 0, len(items)),
	}
	for _, item := range items {
		e.draft.Items = append(e.draft.Items, ListDraftItem{
			ID:       item.ID,
			ReviewID: item.ReviewID,
			Review:   item.Review,
			Blurb:    item.Blurb,
			Position: item.Position,
		})
	}
	e.reindex()
}

// Draft returns a copy of the current draft.
func (e *ListEditor) Draft() ListDraft {
	copied := e.draft
	copied.Items = append([]ListDraftItem{}, e.draft.Items...)
	return copied
}

// EditID is the id of the list being edited, empty in create mode.
func (e *ListEditor) EditID() string {
	return e.editID
}

// SetTitle updates the title and, until edited by hand, the slug.
func (e *ListEditor) SetTitle(title string) {
	e.draft.Title = title
	if !e.slugEdited {
		e.draft.Slug = slug.Slugify(title)
	}
}

// SetSlug sets the slug by hand. A blank value returns to the derived slug.
func (e *ListEditor) SetSlug(value string) {
	if strings.TrimSpace(value) == "" {
		e.slugEdited = false
		e.draft.Slug = slug.Slugify(e.draft.Title)
		return
	}
	e.slugEdited = true
	e.draft.Slug = slug.Slugify(value)
}

func (e *ListEditor) SetDescription(description string) {
	e.draft.Description = description
}

func (e *ListEditor) SetCoverImage(url string) {
	e.draft.CoverImage = strings.TrimSpace(url)
}

func (e *ListEditor) SetFeatured(featured bool) {
	e.draft.IsFeatured = featured
}

// AddReview appends a review. A review already in the list is rejected.
func (e *ListEditor) AddReview(review db.Review, blurb string) error {
	for _, item := range e.draft.Items {
		if item.ReviewID == review.ID {
			return apperr.Conflict(review.RestaurantName + " is already in this list")
		}
	}
	copied := review
	e.draft.Items = append(e.draft.Items, ListDraftItem{
		ReviewID: review.ID,
		Review:   &copied,
		Blurb:    strings.TrimSpace(blurb),
		Position: len(e.draft.Items),
	})
	return nil
}

// RemoveItem drops the item at index; the referenced review is untouched.
func (e *ListEditor) RemoveItem(index int) error {
	if err := e.checkIndex(index); err != nil {
		return err
	}
	e.draft.Items = append(e.draft.Items[:index:index], e.draft.Items[index+1:]...)
	e.reindex()
	return nil
}

// EditBlurb replaces the blurb of the item at index.
func (e *ListEditor) EditBlurb(index int, text string) error {
	if err := e.checkIndex(index); err != nil {
		return err
	}
	e.draft.Items[index].Blurb = text
	return nil
}

// MoveItem moves the item at from to index to and reindexes positions.
func (e *ListEditor) MoveItem(from, to int) error {
	if err := e.checkIndex(from); err != nil {
		return err
	}
	e.draft.Items = service.MoveItem(e.draft.Items, from, to)
	e.reindex()
	return nil
}

// Save writes the list metadata, then makes the stored items match the draft
// in one transactional sync. When the metadata was written but the sync
// failed, the returned error is an *apperr.PartialFailureError.
func (e *ListEditor) Save(publish bool) (*db.List, Notice, error) {
	e.draft.IsDraft = !publish
	if strings.TrimSpace(e.draft.Title) == "" {
		err := apperr.Validation("title", "Title is required")
		return nil, NoticeFor(err), err
	}
	if strings.TrimSpace(e.draft.Slug) == "" {
		err := apperr.Validation("slug", "Slug is required")
		return nil, NoticeFor(err), err
	}

	input := service.ListInput{
		Slug:        e.draft.Slug,
		Title:       e.draft.Title,
		Description: e.draft.Description,
		CoverImage:  e.draft.CoverImage,
		IsDraft:     e.draft.IsDraft,
		IsFeatured:  e.draft.IsFeatured,
	}
	if !e.draft.PublishedAt.IsZero() {
		publishedAt := e.draft.PublishedAt
		input.PublishedAt = &publishedAt
	}

	updating := e.editID != ""
	var (
		list *db.List
		err  error
	)
	if updating {
		list, err = e.store.Update(e.editID, input)
	} else {
		list, err = e.store.Create(input)
	}
	if err != nil {
		return nil, NoticeFor(err), err
	}
	// metadata is stored from here on; later failures are partial
	e.editID = list.ID
	e.slugEdited = true
	e.draft.PublishedAt = list.PublishedAt

	specs := make([]service.ItemSpec, 0, len(e.draft.Items))
	for _, item := range e.draft.Items {
		specs = append(specs, service.ItemSpec{ID: item.ID, ReviewID: item.ReviewID, Blurb: item.Blurb})
	}
	items, err := e.store.SyncItems(list.ID, specs)
	if err != nil {
		partial := &apperr.PartialFailureError{
			Op:        "save list",
			Completed: []string{"list details"},
			Failed:    []string{itemsStep(len(specs))},
			Err:       err,
		}
		return list, NoticeFor(partial), partial
	}

	list.Items = items
	e.seed(list, items)

	message := "List saved as draft"
	if publish {
		message = "List published"
	}
	if updating {
		message = "List updated"
	}
	return list, Notice{Kind: NoticeSuccess, Message: message}, nil
}

func itemsStep(n int) string {
	if n == 1 {
		return "1 list item"
	}
	return strconv.Itoa(n) + " list items"
}

func (e *ListEditor) checkIndex(index int) error {
	if index < 0 || index >= len(e.draft.Items) {
		return apperr.Validation("items", "No list item at that position")
	}
	return nil
}

func (e *ListEditor) reindex() {
	for i := range e.draft.Items {
		e.draft.Items[i].Position = i
	}
}
