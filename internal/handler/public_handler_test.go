package handler

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/foodlog/internal/feed"
	"github.com/foodlog/internal/maps"
	"github.com/foodlog/internal/service"
)

func TestFeedExcludesDraftsAndPaginates(t *testing.T) {
	_, r := newTestAPI(t, Options{FeedPageSize: 2})
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		createReviewViaAPI(t, r, publishableReviewBody(fmt.Sprintf("Spot %d", i), base.Add(time.Duration(i)*time.Hour)))
	}
	draft := publishableReviewBody("Hidden Draft", base.Add(48*time.Hour))
	draft["isDraft"] = true
	createReviewViaAPI(t, r, draft)

	w := doRequest(t, r, http.MethodGet, "/api/feed", nil, false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var first feed.Result
	decodeBody(t, w, &first)
	if first.Featured == nil {
		t.Fatal("expected a featured review without filters")
	}
	if first.TotalPages != 2 || len(first.Items) != 2 {
		t.Fatalf("expected 2 pages of 2 items, got %d pages %d items", first.TotalPages, len(first.Items))
	}

	w = doRequest(t, r, http.MethodGet, "/api/feed?page=99", nil, false)
	var last feed.Result
	decodeBody(t, w, &last)
	if last.Page != 2 || len(last.Items) != 1 {
		t.Fatalf("expected clamped last page with 1 item, got page %d with %d items", last.Page, len(last.Items))
	}

	seen := map[string]bool{first.Featured.ID: true}
	for _, page := range []feed.Result{first, last} {
		for _, item := range page.Items {
			if item.Review.RestaurantName == "Hidden Draft" {
				t.Fatal("draft leaked into the feed")
			}
			if seen[item.Review.ID] {
				t.Fatalf("review %s appeared twice", item.Review.ID)
			}
			seen[item.Review.ID] = true
		}
	}
	if len(seen) != 4 {
		t.Fatalf("expected all 4 published reviews exactly once, got %d", len(seen))
	}
}

func TestFeedFeaturedListHidesDraftReviews(t *testing.T) {
	_, r := newTestAPI(t, Options{})
	now := time.Now()
	shown := createReviewViaAPI(t, r, publishableReviewBody("Open Kitchen", now))
	draft := publishableReviewBody("Unannounced Omakase", now)
	draft["isDraft"] = true
	hidden := createReviewViaAPI(t, r, draft)

	w := doRequest(t, r, http.MethodPost, "/api/lists", map[string]interface{}{"title": "Top 5", "isFeatured": true}, true)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	for _, id := range []string{hidden.ID, shown.ID} {
		w = doRequest(t, r, http.MethodPost, "/api/lists/top-5/items", map[string]string{"reviewId": id}, true)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
		}
	}

	w = doRequest(t, r, http.MethodGet, "/api/feed", nil, false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "Unannounced Omakase") {
		t.Fatalf("draft review leaked through the list card: %s", w.Body.String())
	}
	var result feed.Result
	decodeBody(t, w, &result)
	var card *feed.Item
	for i := range result.Items {
		if result.Items[i].Kind == feed.KindList {
			card = &result.Items[i]
		}
	}
	if card == nil || card.List == nil {
		t.Fatalf("expected the featured list in the feed, got %+v", result.Items)
	}
	if len(card.List.Items) != 1 || card.List.Items[0].ReviewID != shown.ID || card.List.Items[0].Position != 0 {
		t.Fatalf("unexpected list card entries: %+v", card.List.Items)
	}
}

func TestFeedCuisineFilter(t *testing.T) {
	_, r := newTestAPI(t, Options{})
	thai := publishableReviewBody("Thai Place", time.Now())
	createReviewViaAPI(t, r, thai)
	pizza := publishableReviewBody("Pizza Place", time.Now())
	pizza["tags"] = map[string][]string{"cuisines": {"Italian"}}
	createReviewViaAPI(t, r, pizza)

	w := doRequest(t, r, http.MethodGet, "/api/feed?cuisine=Italian", nil, false)
	var result feed.Result
	decodeBody(t, w, &result)
	if result.Featured != nil {
		t.Fatal("expected no featured review while filtering")
	}
	if len(result.Items) != 1 || result.Items[0].Review.RestaurantName != "Pizza Place" {
		t.Fatalf("unexpected filtered items: %+v", result.Items)
	}
	if len(result.Cuisines) != 2 {
		t.Fatalf("expected both cuisines as filter options, got %v", result.Cuisines)
	}
}

func TestReviewPageRendersSanitizedContent(t *testing.T) {
	_, r := newTestAPI(t, Options{Maps: maps.NewRenderer("map-key")})
	body := publishableReviewBody("Noodle Bar", time.Now())
	body["content"] = "Great **noodles**.<script>alert(1)</script>"
	body["coverImage"] = "/static/uploads/a.jpg"
	body["coverImageCrop"] = map[string]float64{"x": 25, "y": 75, "zoom": 2}
	createReviewViaAPI(t, r, body)

	w := doRequest(t, r, http.MethodGet, "/api/pages/reviews/noodle-bar", nil, false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var page struct {
		ContentHTML   string     `json:"contentHtml"`
		CoverPosition string     `json:"coverPosition"`
		PriceLabel    string     `json:"priceLabel"`
		Map           maps.Image `json:"map"`
	}
	decodeBody(t, w, &page)
	if !strings.Contains(page.ContentHTML, "<strong>noodles</strong>") {
		t.Fatalf("expected rendered markdown, got %q", page.ContentHTML)
	}
	if strings.Contains(page.ContentHTML, "<script>") {
		t.Fatalf("expected script to be stripped, got %q", page.ContentHTML)
	}
	if page.CoverPosition != "25% 75%" {
		t.Fatalf("expected cover position 25%% 75%%, got %q", page.CoverPosition)
	}
	if page.PriceLabel != "$$" {
		t.Fatalf("expected price label $$, got %q", page.PriceLabel)
	}
	if page.Map.Placeholder || page.Map.URL == "" || page.Map.RetryURL == "" {
		t.Fatalf("expected a map image, got %+v", page.Map)
	}
}

func TestPagesNeverEmbedMapKey(t *testing.T) {
	const secret = "SECRET-KEY-123"
	api, r := newTestAPI(t, Options{Maps: maps.NewRenderer(secret)})
	now := time.Now()
	a := createReviewViaAPI(t, r, publishableReviewBody("Key Check Cafe", now))
	list := createListViaAPI(t, r, "Key Check")
	if _, err := api.lists.AddItem(list.ID, a.ID, ""); err != nil {
		t.Fatalf("failed to add item: %v", err)
	}

	for _, path := range []string{"/api/pages/reviews/key-check-cafe", "/api/pages/lists/key-check"} {
		w := doRequest(t, r, http.MethodGet, path, nil, false)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200 for %s, got %d: %s", path, w.Code, w.Body.String())
		}
		if strings.Contains(w.Body.String(), secret) {
			t.Fatalf("map key leaked in %s: %s", path, w.Body.String())
		}
		var page struct {
			Map maps.Image `json:"map"`
		}
		decodeBody(t, w, &page)
		if page.Map.Placeholder || page.Map.URL == "" {
			t.Fatalf("expected a keyless map url for %s, got %+v", path, page.Map)
		}
	}

	w := doRequest(t, r, http.MethodGet, "/api/maps-config", nil, false)
	if !strings.Contains(w.Body.String(), secret) {
		t.Fatalf("expected maps-config to hand out the key, got %s", w.Body.String())
	}
}

func TestReviewPageHidesDraftsAndUnknownSlugs(t *testing.T) {
	_, r := newTestAPI(t, Options{})
	draft := publishableReviewBody("Secret Spot", time.Now())
	draft["isDraft"] = true
	createReviewViaAPI(t, r, draft)

	for _, path := range []string{"/api/pages/reviews/secret-spot", "/api/pages/reviews/nowhere"} {
		w := doRequest(t, r, http.MethodGet, path, nil, false)
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected status 404 for %s, got %d", path, w.Code)
		}
	}
}

func TestListPageSkipsDraftReviewsAndLabelsMarkers(t *testing.T) {
	api, r := newTestAPI(t, Options{Maps: maps.NewRenderer("map-key")})
	now := time.Now()
	a := createReviewViaAPI(t, r, publishableReviewBody("Alpha", now))
	hidden := publishableReviewBody("Hidden", now)
	hidden["isDraft"] = true
	h := createReviewViaAPI(t, r, hidden)
	c := createReviewViaAPI(t, r, publishableReviewBody("Charlie", now))

	list := createListViaAPI(t, r, "Favorites")
	for _, id := range []string{a.ID, h.ID, c.ID} {
		if _, err := api.lists.AddItem(list.ID, id, ""); err != nil {
			t.Fatalf("failed to add item: %v", err)
		}
	}

	w := doRequest(t, r, http.MethodGet, "/api/pages/lists/favorites", nil, false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var page struct {
		Items []struct {
			Position int    `json:"position"`
			Label    string `json:"label"`
			Review   struct {
				RestaurantName string `json:"restaurantName"`
			} `json:"review"`
		} `json:"items"`
		Map maps.Image `json:"map"`
	}
	decodeBody(t, w, &page)
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 visible items, got %d", len(page.Items))
	}
	if page.Items[0].Review.RestaurantName != "Alpha" || page.Items[1].Review.RestaurantName != "Charlie" {
		t.Fatalf("unexpected item order: %+v", page.Items)
	}
	if page.Items[0].Label != "A" || page.Items[1].Label != "B" || page.Items[1].Position != 1 {
		t.Fatalf("unexpected labels: %+v", page.Items)
	}
	if len(page.Map.Points) != 2 || page.Map.Placeholder {
		t.Fatalf("expected a two-marker map, got %+v", page.Map)
	}

	draftList := createListViaAPI(t, r, "Unfinished")
	if _, err := api.lists.Update(draftList.ID, service.ListInput{Title: "Unfinished", IsDraft: true}); err != nil {
		t.Fatalf("failed to mark list as draft: %v", err)
	}
	w = doRequest(t, r, http.MethodGet, "/api/pages/lists/unfinished", nil, false)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for draft list, got %d", w.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	_, r := newTestAPI(t, Options{})
	createReviewViaAPI(t, r, publishableReviewBody("Alpha", time.Now()))

	w := doRequest(t, r, http.MethodGet, "/api/stats", nil, false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var stats service.SiteStats
	decodeBody(t, w, &stats)
	if stats.ReviewCount != 1 || stats.AverageRating != 8 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
