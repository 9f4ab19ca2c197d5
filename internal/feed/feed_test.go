package feed

import (
	"fmt"
	"testing"
	"time"

	"github.com/foodlog/internal/db"
)

var baseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func makeReviews(n int) []db.Review {
	reviews := make([]db.Review, 0, n)
	for i := 0; i < n; i++ {
		reviews = append(reviews, db.Review{
			ID:          fmt.Sprintf("r%02d", i),
			Slug:        fmt.Sprintf("review-%d", i),
			ContentType: db.ContentTypeReview,
			Rating:      5,
			PublishedAt: baseTime.Add(time.Duration(i) * time.Hour),
		})
	}
	return reviews
}

func collectPages(t *testing.T, reviews []db.Review, lists []db.List, opts Options) []Item {
	t.Helper()
	first := Compose(reviews, lists, opts)
	var all []Item
	for page := 1; page <= first.TotalPages; page++ {
		opts.Page = page
		result := Compose(reviews, lists, opts)
		if len(result.Items) > result.PageSize {
			t.Fatalf("page %d has %d items, page size %d", page, len(result.Items), result.PageSize)
		}
		all = append(all, result.Items...)
	}
	return all
}

func TestComposePagesConcatenate(t *testing.T) {
	for _, n := range []int{0, 1, 3, 4, 9, 10, 25} {
		for _, pageSize := range []int{1, 3, 9} {
			t.Run(fmt.Sprintf("n=%d/p=%d", n, pageSize), func(t *testing.T) {
				reviews := makeReviews(n)
				result := Compose(reviews, nil, Options{PageSize: pageSize})
				all := collectPages(t, reviews, nil, Options{PageSize: pageSize})

				expected := n
				if result.Featured != nil {
					expected--
				}
				if len(all) != expected || result.Total != expected {
					t.Fatalf("expected %d feed items, got %d (total %d)", expected, len(all), result.Total)
				}

				for i := 1; i < len(all); i++ {
					if all[i].PublishedAt.After(all[i-1].PublishedAt) {
						t.Fatalf("feed not newest first at %d", i)
					}
				}
				for _, item := range all {
					if result.Featured != nil && item.Review.ID == result.Featured.ID {
						t.Fatalf("featured review %s appears in the feed", item.Review.ID)
					}
				}
			})
		}
	}
}

func TestComposeClampsPage(t *testing.T) {
	reviews := makeReviews(7)

	high := Compose(reviews, nil, Options{Page: 99, PageSize: 3})
	if high.Page != high.TotalPages || high.TotalPages != 2 {
		t.Fatalf("expected clamp to last page 2, got page %d of %d", high.Page, high.TotalPages)
	}

	low := Compose(reviews, nil, Options{Page: -4, PageSize: 3})
	if low.Page != 1 {
		t.Fatalf("expected clamp to page 1, got %d", low.Page)
	}

	empty := Compose(nil, nil, Options{Page: 3})
	if empty.Page != 1 || empty.TotalPages != 1 || len(empty.Items) != 0 {
		t.Fatalf("unexpected empty result %+v", empty)
	}
	if empty.PageSize != DefaultPageSize {
		t.Fatalf("expected default page size, got %d", empty.PageSize)
	}
}

func TestComposeExcludesDrafts(t *testing.T) {
	reviews := makeReviews(6)
	reviews[1].IsDraft = true
	reviews[4].IsDraft = true
	reviews[4].IsFeatured = true
	reviews[2].ContentType = db.ContentTypeList
	reviews[3].Tags.Cuisines = db.StringList{"Thai"}
	reviews[1].Tags.Cuisines = db.StringList{"Thai"}

	for _, opts := range []Options{{PageSize: 2}, {Cuisine: "Thai", PageSize: 2}, {Location: "x"}} {
		result := Compose(reviews, nil, opts)
		if result.Featured != nil && result.Featured.IsDraft {
			t.Fatalf("draft chosen as featured")
		}
		for _, item := range collectPages(t, reviews, nil, opts) {
			if item.Review.IsDraft {
				t.Fatalf("draft %s appeared with options %+v", item.Review.ID, opts)
			}
			if item.Review.ContentType != db.ContentTypeReview {
				t.Fatalf("non review content %s appeared", item.Review.ID)
			}
		}
	}
}

func TestComposeFilters(t *testing.T) {
	reviews := makeReviews(6)
	reviews[0].Tags.Cuisines = db.StringList{"Thai", "Noodles"}
	reviews[1].Tags.Cuisines = db.StringList{"Thai food"}
	reviews[2].Tags.Cuisines = db.StringList{"Italian"}
	reviews[3].Tags.Cuisines = db.StringList{"Thai"}
	reviews[0].LocationTag = "Ballard"
	reviews[3].LocationTag = "Capitol Hill"
	reviews[5].LocationTag = "Ballard"
	reviews[5].IsFeatured = true

	lists := []db.List{{ID: "l1", Title: "Top 5", IsFeatured: true, PublishedAt: baseTime.Add(100 * time.Hour)}}

	byCuisine := collectPages(t, reviews, lists, Options{Cuisine: "Thai", PageSize: 2})
	if len(byCuisine) != 2 {
		t.Fatalf("expected 2 Thai reviews, got %d", len(byCuisine))
	}
	for _, item := range byCuisine {
		if item.Kind != KindReview || !item.Review.Tags.Cuisines.Contains("Thai") {
			t.Fatalf("cuisine filter leaked %+v", item)
		}
	}

	byLocation := Compose(reviews, lists, Options{Location: "Ballard"})
	if byLocation.Featured != nil {
		t.Fatalf("filtered feed must not select a featured review")
	}
	if len(byLocation.Items) != 2 {
		t.Fatalf("expected featured review to stay in filtered feed, got %d items", len(byLocation.Items))
	}
	for _, item := range byLocation.Items {
		if item.Review == nil || item.Review.LocationTag != "Ballard" {
			t.Fatalf("location filter leaked %+v", item)
		}
	}

	both := Compose(reviews, lists, Options{Cuisine: "Thai", Location: "Capitol Hill"})
	if len(both.Items) != 1 || both.Items[0].Review.ID != "r03" {
		t.Fatalf("expected only r03, got %+v", both.Items)
	}

	if got := Compose(reviews, lists, Options{}).Cuisines; len(got) != 4 || got[0] != "Italian" {
		t.Fatalf("unexpected cuisine options %v", got)
	}
}

func TestComposeMergesFeaturedList(t *testing.T) {
	reviews := makeReviews(4)
	lists := []db.List{
		{ID: "draft", IsDraft: true, IsFeatured: true, PublishedAt: baseTime.Add(50 * time.Hour)},
		{ID: "plain", PublishedAt: baseTime.Add(50 * time.Hour)},
		{ID: "older", IsFeatured: true, PublishedAt: baseTime.Add(-time.Hour)},
		{ID: "top", IsFeatured: true, PublishedAt: baseTime.Add(90 * time.Minute)},
	}

	result := Compose(reviews, lists, Options{})
	var kinds []string
	for _, item := range result.Items {
		kinds = append(kinds, item.id())
	}
	// r03 is the featured review; the list sits between r01 and r02 by date
	want := []string{"r02", "top", "r01", "r00"}
	if fmt.Sprint(kinds) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, kinds)
	}
	if result.Featured == nil || result.Featured.ID != "r03" {
		t.Fatalf("expected r03 featured")
	}
}

func TestComposeFeaturedListHidesDraftReviews(t *testing.T) {
	reviews := makeReviews(2)
	draft := db.Review{ID: "secret", RestaurantName: "Unreleased Noodle Bar", IsDraft: true}
	lists := []db.List{{
		ID:          "top",
		IsFeatured:  true,
		PublishedAt: baseTime,
		Items: []db.ListItem{
			{ID: "i1", ReviewID: "r00", Review: &reviews[0], Position: 1},
			{ID: "i2", ReviewID: "secret", Review: &draft, Position: 2},
			{ID: "i3", ReviewID: "gone", Position: 3},
			{ID: "i4", ReviewID: "r01", Review: &reviews[1], Position: 4},
		},
	}}

	result := Compose(reviews, lists, Options{})
	var card *db.List
	for _, item := range result.Items {
		if item.Kind == KindList {
			card = item.List
		}
	}
	if card == nil {
		t.Fatalf("expected featured list card in %v", ids(result.Items))
	}
	if len(card.Items) != 2 {
		t.Fatalf("expected 2 visible entries, got %d", len(card.Items))
	}
	for i, item := range card.Items {
		if item.Review == nil || item.Review.IsDraft {
			t.Fatalf("entry %s should not be shown", item.ID)
		}
		if item.Position != i {
			t.Fatalf("entry %s has position %d, want %d", item.ID, item.Position, i)
		}
	}
	if len(lists[0].Items) != 4 || lists[0].Items[3].Position != 4 {
		t.Fatalf("input list should not be modified")
	}
}

func TestSelectFeatured(t *testing.T) {
	reviews := makeReviews(4)
	reviews[0].Rating = 9
	reviews[2].Rating = 9

	// highest rating, newest wins the tie
	if got := SelectFeatured(reviews); got.ID != "r02" {
		t.Fatalf("expected r02, got %s", got.ID)
	}

	reviews[1].IsFeatured = true
	if got := SelectFeatured(reviews); got.ID != "r01" {
		t.Fatalf("expected flagged r01, got %s", got.ID)
	}

	reviews[3].IsFeatured = true
	if got := SelectFeatured(reviews); got.ID != "r03" {
		t.Fatalf("expected most recent flagged r03, got %s", got.ID)
	}

	if SelectFeatured(nil) != nil {
		t.Fatalf("expected nil for no reviews")
	}
}

func TestComposeDeterministic(t *testing.T) {
	reviews := makeReviews(12)
	for i := range reviews {
		reviews[i].PublishedAt = baseTime
	}
	first := Compose(reviews, nil, Options{Page: 2, PageSize: 4})
	for i := 0; i < 5; i++ {
		again := Compose(reviews, nil, Options{Page: 2, PageSize: 4})
		if fmt.Sprint(ids(first.Items)) != fmt.Sprint(ids(again.Items)) {
			t.Fatalf("compose not deterministic: %v vs %v", ids(first.Items), ids(again.Items))
		}
	}
	if fmt.Sprint(ids(first.Items)) != "[r05 r06 r07 r08]" {
		t.Fatalf("expected id order on equal dates, got %v", ids(first.Items))
	}
}

func ids(items []Item) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		result = append(result, item.id())
	}
	return result
}
