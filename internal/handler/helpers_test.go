package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/foodlog/internal/apperr"
	"github.com/foodlog/internal/db"
	"github.com/foodlog/internal/geo"
	"github.com/foodlog/internal/media"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testAuthToken = "test-token"

var testDBCounter atomic.Int64

func setupHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handler-%d-%d?mode=memory&cache=shared", time.Now().UnixNano(), testDBCounter.Add(1))
	gdb, err := db.Open(db.DriverSQLite, dsn, logger.Silent)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

type stubGeocoder struct {
	result geo.Result
	err    error
	calls  int
}

func (s *stubGeocoder) Geocode(_ context.Context, address string) (geo.Result, error) {
	s.calls++
	if s.err != nil {
		return geo.Result{}, s.err
	}
	return s.result, nil
}

type stubUploader struct {
	failAfter int
	stored    []string
}

func (s *stubUploader) Upload(_ context.Context, file media.File) (media.Asset, error) {
	if s.failAfter >= 0 && len(s.stored) >= s.failAfter {
		return media.Asset{}, apperr.Upstream("Image storage is unavailable", fmt.Errorf("quota"))
	}
	s.stored = append(s.stored, file.Name)
	return media.Asset{URL: "/static/uploads/" + file.Name}, nil
}

// newTestEngine wires handlers the same way the router does, without static files.
func newTestEngine(api *API) *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions("foodlog_session", cookie.NewStore([]byte("test-secret"))))

	apiGroup := r.Group("/api", api.APIGate())
	apiGroup.GET("/reviews", api.ListReviews)
	apiGroup.POST("/reviews", api.CreateReview)
	apiGroup.POST("/reviews/featured", api.SetFeaturedReview)
	apiGroup.GET("/reviews/:id", api.GetReview)
	apiGroup.PATCH("/reviews/:id", api.UpdateReview)
	apiGroup.DELETE("/reviews/:id", api.DeleteReview)
	apiGroup.GET("/lists", api.ListLists)
	apiGroup.POST("/lists", api.CreateList)
	apiGroup.GET("/lists/:id", api.GetList)
	apiGroup.PUT("/lists/:id", api.UpdateList)
	apiGroup.DELETE("/lists/:id", api.DeleteList)
	apiGroup.POST("/lists/:id/items", api.PostListItems)
	apiGroup.PUT("/lists/:id/items", api.UpdateListItem)
	apiGroup.DELETE("/lists/:id/items", api.DeleteListItem)
	apiGroup.GET("/geocode", api.Geocode)
	apiGroup.GET("/maps-config", api.MapsConfig)
	apiGroup.GET("/feed", api.Feed)
	apiGroup.GET("/stats", api.Stats)
	apiGroup.GET("/pages/reviews/:slug", api.ReviewPage)
	apiGroup.GET("/pages/lists/:slug", api.ListPage)

	r.GET("/admin/login", api.ShowLoginPage)
	r.POST("/admin/login", api.Login)
	admin := r.Group("/admin", api.AdminGate())
	admin.GET("/logout", api.Logout)
	admin.GET("/dashboard", api.ShowDashboard)
	admin.POST("/upload", api.UploadImages)
	admin.GET("/drafts/:key", api.GetDraft)
	admin.PUT("/drafts/:key", api.SaveDraft)
	admin.DELETE("/drafts/:key", api.DeleteDraft)
	return r
}

func newTestAPI(t *testing.T, opts Options) (*API, *gin.Engine) {
	t.Helper()
	if opts.AdminAuthToken == "" {
		opts.AdminAuthToken = testAuthToken
	}
	api := NewAPI(setupHandlerTestDB(t), opts)
	return api, newTestEngine(api)
}

func doRequest(t *testing.T, r http.Handler, method, path string, body interface{}, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else if raw, ok := body.(string); ok {
		reader = bytes.NewReader([]byte(raw))
	} else {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: testAuthToken})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}

func publishableReviewBody(name string, publishedAt time.Time) map[string]interface{} {
	return map[string]interface{}{
		"restaurantName": name,
		"rating":         8,
		"address":        "123 Main St, Seattle, WA",
		"lat":            47.6,
		"lng":            -122.3,
		"images":         []map[string]string{{"url": "/static/uploads/a.jpg", "caption": ""}},
		"publishedAt":    publishedAt.Format(time.RFC3339),
		"content":        "Great **noodles**.",
		"priceRange":     2,
		"tags":           map[string][]string{"cuisines": {"Thai"}},
	}
}

func createReviewViaAPI(t *testing.T, r http.Handler, body map[string]interface{}) db.Review {
	t.Helper()
	w := doRequest(t, r, http.MethodPost, "/api/reviews", body, true)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Review db.Review `json:"review"`
	}
	decodeBody(t, w, &resp)
	return resp.Review
}
