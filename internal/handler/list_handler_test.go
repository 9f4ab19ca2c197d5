package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/foodlog/internal/db"
)

type listResponse struct {
	List db.List `json:"list"`
}

type itemsResponse struct {
	Items []db.ListItem `json:"items"`
}

func createListViaAPI(t *testing.T, r http.Handler, title string) db.List {
	t.Helper()
	w := doRequest(t, r, http.MethodPost, "/api/lists", map[string]interface{}{"title": title}, true)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp listResponse
	decodeBody(t, w, &resp)
	return resp.List
}

func fetchList(t *testing.T, r http.Handler, idOrSlug string) db.List {
	t.Helper()
	w := doRequest(t, r, http.MethodGet, "/api/lists/"+idOrSlug, nil, false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp listResponse
	decodeBody(t, w, &resp)
	return resp.List
}

func TestListItemsLifecycle(t *testing.T) {
	_, r := newTestAPI(t, Options{})
	now := time.Now()
	a := createReviewViaAPI(t, r, publishableReviewBody("Alpha", now))
	b := createReviewViaAPI(t, r, publishableReviewBody("Bravo", now))
	c := createReviewViaAPI(t, r, publishableReviewBody("Charlie", now))

	list := createListViaAPI(t, r, "Top 3")
	if list.Slug != "top-3" {
		t.Fatalf("expected slug top-3, got %q", list.Slug)
	}

	for _, id := range []string{a.ID, b.ID, c.ID} {
		w := doRequest(t, r, http.MethodPost, "/api/lists/top-3/items", map[string]string{"reviewId": id, "blurb": "  good  "}, true)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
		}
	}

	w := doRequest(t, r, http.MethodPost, "/api/lists/top-3/items", map[string]string{"reviewId": a.ID}, true)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409 for duplicate review, got %d", w.Code)
	}

	stored := fetchList(t, r, list.ID)
	if len(stored.Items) != 3 || stored.Items[0].Blurb != "good" {
		t.Fatalf("expected 3 trimmed items, got %+v", stored.Items)
	}

	order := []string{stored.Items[2].ID, stored.Items[0].ID, stored.Items[1].ID}
	w = doRequest(t, r, http.MethodPost, "/api/lists/"+list.ID+"/items", map[string]interface{}{"action": "reorder", "orderedItemIds": order}, true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 on reorder, got %d: %s", w.Code, w.Body.String())
	}
	var reordered itemsResponse
	decodeBody(t, w, &reordered)
	for i, item := range reordered.Items {
		if item.ID != order[i] || item.Position != i {
			t.Fatalf("unexpected item %d after reorder: %+v", i, item)
		}
	}

	w = doRequest(t, r, http.MethodPost, "/api/lists/"+list.ID+"/items", map[string]interface{}{"action": "reorder", "orderedItemIds": order[:2]}, true)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for partial order, got %d", w.Code)
	}

	w = doRequest(t, r, http.MethodPut, "/api/lists/"+list.ID+"/items", map[string]interface{}{"itemId": order[0], "blurb": "best", "position": 2}, true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 on item update, got %d: %s", w.Code, w.Body.String())
	}

	w = doRequest(t, r, http.MethodDelete, "/api/lists/"+list.ID+"/items?itemId="+order[1], nil, true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 on item delete, got %d", w.Code)
	}

	stored = fetchList(t, r, list.ID)
	if len(stored.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(stored.Items))
	}
	if stored.Items[0].ID != order[2] || stored.Items[1].ID != order[0] || stored.Items[1].Blurb != "best" {
		t.Fatalf("unexpected items after update and delete: %+v", stored.Items)
	}
	for i, item := range stored.Items {
		if item.Position != i {
			t.Fatalf("expected dense positions, got %d at %d", item.Position, i)
		}
	}
}

func TestListItemsSyncAction(t *testing.T) {
	_, r := newTestAPI(t, Options{})
	now := time.Now()
	a := createReviewViaAPI(t, r, publishableReviewBody("Alpha", now))
	b := createReviewViaAPI(t, r, publishableReviewBody("Bravo", now))
	list := createListViaAPI(t, r, "Weekend")

	body := map[string]interface{}{
		"action": "sync",
		"items": []map[string]string{
			{"reviewId": b.ID, "blurb": "second visit"},
			{"reviewId": a.ID, "blurb": "first"},
		},
	}
	w := doRequest(t, r, http.MethodPost, "/api/lists/"+list.ID+"/items", body, true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 on sync, got %d: %s", w.Code, w.Body.String())
	}
	var resp itemsResponse
	decodeBody(t, w, &resp)
	if len(resp.Items) != 2 || resp.Items[0].ReviewID != b.ID || resp.Items[1].ReviewID != a.ID {
		t.Fatalf("unexpected synced items: %+v", resp.Items)
	}

	w = doRequest(t, r, http.MethodPost, "/api/lists/"+list.ID+"/items", map[string]string{"action": "shuffle"}, true)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown action, got %d", w.Code)
	}
}

func TestListItemRoutesRequireIdentifiers(t *testing.T) {
	_, r := newTestAPI(t, Options{})
	list := createListViaAPI(t, r, "Empty")

	w := doRequest(t, r, http.MethodPost, "/api/lists/"+list.ID+"/items", map[string]string{}, true)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 without reviewId, got %d", w.Code)
	}
	w = doRequest(t, r, http.MethodDelete, "/api/lists/"+list.ID+"/items", nil, true)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 without itemId, got %d", w.Code)
	}
	w = doRequest(t, r, http.MethodDelete, "/api/lists/"+list.ID+"/items", map[string]string{"itemId": "missing"}, true)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for unknown item, got %d", w.Code)
	}
	w = doRequest(t, r, http.MethodPost, "/api/lists/nope/items", map[string]string{"reviewId": "x"}, true)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for unknown list, got %d", w.Code)
	}
}

func TestUpdateAndDeleteList(t *testing.T) {
	_, r := newTestAPI(t, Options{})
	list := createListViaAPI(t, r, "Brunch")

	w := doRequest(t, r, http.MethodPut, "/api/lists/brunch", map[string]interface{}{"title": "Brunch Spots", "slug": "brunch", "description": "weekends"}, true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	updated := fetchList(t, r, list.ID)
	if updated.Title != "Brunch Spots" || updated.Description != "weekends" {
		t.Fatalf("unexpected list after update: %+v", updated)
	}

	w = doRequest(t, r, http.MethodPut, "/api/lists/brunch", map[string]interface{}{"title": "  "}, true)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for blank title, got %d", w.Code)
	}

	w = doRequest(t, r, http.MethodDelete, "/api/lists/"+list.ID, nil, true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 on delete, got %d", w.Code)
	}
	w = doRequest(t, r, http.MethodGet, "/api/lists/"+list.ID, nil, false)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 after delete, got %d", w.Code)
	}
}
