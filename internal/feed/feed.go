// Package feed builds the public review feed from already loaded content.
package feed

import (
	"sort"
	"strings"
	"time"

	"github.com/foodlog/internal/db"
)

// DefaultPageSize is used when Options.PageSize is not positive.
const DefaultPageSize = 9

// Item kinds.
const (
	KindReview = "review"
	KindList   = "list"
)

// Options selects one page of the feed.
type Options struct {
	Cuisine  string
	Location string
	Page     int
	PageSize int
}

// Filtered reports whether a cuisine or location filter is active.
func (o Options) Filtered() bool {
	return strings.TrimSpace(o.Cuisine) != "" || strings.TrimSpace(o.Location) != ""
}

// Item is one feed card: either a review or a list.
type Item struct {
	Kind        string     `json:"kind"`
	Review      *db.Review `json:"review,omitempty"`
	List        *db.List   `json:"list,omitempty"`
	PublishedAt time.Time  `json:"publishedAt"`
}

func (i Item) id() string {
	if i.Review != nil {
		return i.Review.ID
	}
	if i.List != nil {
		return i.List.ID
	}
	return ""
}

// Result is one page of the feed plus the data the filter bar needs.
type Result struct {
	Featured   *db.Review `json:"featured,omitempty"`
	Items      []Item     `json:"items"`
	Page       int        `json:"page"`
	TotalPages int        `json:"totalPages"`
	Total      int        `json:"total"`
	PageSize   int        `json:"pageSize"`
	Cuisines   []string   `json:"cuisines"`
	Locations  []string   `json:"locations"`
}

// Compose filters, merges and paginates. Inputs are not modified and the
// output depends only on the inputs.
func Compose(reviews []db.Review, lists []db.List, opts Options) Result {
	published := PublishedReviews(reviews)

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	result := Result{
		Items:     []Item{},
		PageSize:  pageSize,
		Cuisines:  cuisineOptions(published),
		Locations: locationOptions(published),
	}

	var items []Item
	if opts.Filtered() {
		cuisine := strings.TrimSpace(opts.Cuisine)
		location := strings.TrimSpace(opts.Location)
		for i := range published {
			review := &published[i]
			if cuisine != "" && !review.Tags.Cuisines.Contains(cuisine) {
				continue
			}
			if location != "" && review.LocationTag != location {
				continue
			}
			items = append(items, reviewItem(review))
		}
	} else {
		featured := SelectFeatured(published)
		if featured != nil {
			result.Featured = featured
		}
		for i := range published {
			review := &published[i]
			if featured != nil && review.ID == featured.ID {
				continue
			}
			items = append(items, reviewItem(review))
		}
		if list := featuredList(lists); list != nil {
			items = append(items, Item{Kind: KindList, List: list, PublishedAt: list.PublishedAt})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].PublishedAt.Equal(items[j].PublishedAt) {
			return items[i].PublishedAt.After(items[j].PublishedAt)
		}
		return items[i].id() < items[j].id()
	})

	result.Total = len(items)
	result.TotalPages = (len(items) + pageSize - 1) / pageSize
	if result.TotalPages < 1 {
		result.TotalPages = 1
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}
	if page > result.TotalPages {
		page = result.TotalPages
	}
	result.Page = page

	start := (page - 1) * pageSize
	if start < len(items) {
		end := start + pageSize
		if end > len(items) {
			end = len(items)
		}
		result.Items = append(result.Items, items[start:end]...)
	}
	return result
}

// PublishedReviews keeps non-draft reviews of content type review, in input order.
func PublishedReviews(reviews []db.Review) []db.Review {
	published := make([]db.Review, 0, len(reviews))
	for _, review := range reviews {
		if review.IsDraft {
			continue
		}
		if review.ContentType != "" && review.ContentType != db.ContentTypeReview {
			continue
		}
		published = append(published, review)
	}
	return published
}

// SelectFeatured returns the flagged review (the most recent one if several are
// flagged), otherwise the highest rated, breaking ties by recency and then id.
// Drafts must already be filtered out. Nil when reviews is empty.
func SelectFeatured(reviews []db.Review) *db.Review {
	var flagged, best *db.Review
	for i := range reviews {
		review := &reviews[i]
		if review.IsFeatured && (flagged == nil || newer(review, flagged)) {
			flagged = review
		}
		if best == nil || ranksAbove(review, best) {
			best = review
		}
	}
	pick := flagged
	if pick == nil {
		pick = best
	}
	if pick == nil {
		return nil
	}
	copied := *pick
	return &copied
}

func ranksAbove(a, b *db.Review) bool {
	if a.Rating != b.Rating {
		return a.Rating > b.Rating
	}
	return newer(a, b)
}

func newer(a, b *db.Review) bool {
	if !a.PublishedAt.Equal(b.PublishedAt) {
		return a.PublishedAt.After(b.PublishedAt)
	}
	return a.ID < b.ID
}

func featuredList(lists []db.List) *db.List {
	var pick *db.List
	for i := range lists {
		list := &lists[i]
		if list.IsDraft || !list.IsFeatured {
			continue
		}
		if pick == nil || list.PublishedAt.After(pick.PublishedAt) ||
			(list.PublishedAt.Equal(pick.PublishedAt) && list.ID < pick.ID) {
			pick = list
		}
	}
	if pick == nil {
		return nil
	}
	copied := *pick
	copied.Items = publicListItems(pick.Items)
	return &copied
}

// publicListItems drops entries whose review is missing or still a draft and
// renumbers the rest densely from 0.
func publicListItems(items []db.ListItem) []db.ListItem {
	if items == nil {
		return nil
	}
	visible := make([]db.ListItem, 0, len(items))
	for _, item := range items {
		if item.Review == nil || item.Review.IsDraft {
			continue
		}
		review := *item.Review
		item.Review = &review
		item.Position = len(visible)
		visible = append(visible, item)
	}
	return visible
}

func reviewItem(review *db.Review) Item {
	copied := *review
	return Item{Kind: KindReview, Review: &copied, PublishedAt: review.PublishedAt}
}

func cuisineOptions(reviews []db.Review) []string {
	seen := map[string]bool{}
	options := []string{}
	for _, review := range reviews {
		for _, cuisine := range review.Tags.Cuisines {
			if cuisine == "" || seen[cuisine] {
				continue
			}
			seen[cuisine] = true
			options = append(options, cuisine)
		}
	}
	sort.Strings(options)
	return options
}

func locationOptions(reviews []db.Review) []string {
	seen := map[string]bool{}
	options := []string{}
	for _, review := range reviews {
		if review.LocationTag == "" || seen[review.LocationTag] {
			continue
		}
		seen[review.LocationTag] = true
		options = append(options, review.LocationTag)
	}
	sort.Strings(options)
	return options
}
