package handler

import (
	"context"
	"strings"

	"github.com/foodlog/internal/feed"
	"github.com/foodlog/internal/geo"
	"github.com/foodlog/internal/maps"
	"github.com/foodlog/internal/media"
	"github.com/foodlog/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Geocoder resolves addresses for the geocode endpoint.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (geo.Result, error)
}

// Options carries the collaborators of the handlers. Nil values get usable
// defaults so tests only set what they exercise.
type Options struct {
	Geocoder       Geocoder
	Maps           *maps.Renderer
	Uploader       media.Uploader
	Logger         *zap.SugaredLogger
	AdminAuthToken string
	FeedPageSize   int
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db           *gorm.DB
	reviews      *service.ReviewService
	lists        *service.ListService
	stats        *service.StatsService
	drafts       *service.AutosaveService
	geocoder     Geocoder
	maps         *maps.Renderer
	uploader     media.Uploader
	logger       *zap.SugaredLogger
	authToken    string
	feedPageSize int
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, opts Options) *API {
	api := &API{
		db:           gdb,
		reviews:      service.NewReviewService(gdb),
		lists:        service.NewListService(gdb),
		stats:        service.NewStatsService(gdb),
		drafts:       service.NewAutosaveService(gdb),
		geocoder:     opts.Geocoder,
		maps:         opts.Maps,
		uploader:     opts.Uploader,
		logger:       opts.Logger,
		authToken:    strings.TrimSpace(opts.AdminAuthToken),
		feedPageSize: opts.FeedPageSize,
	}
	if api.geocoder == nil {
		api.geocoder = geo.NewGeocoder("", "", "")
	}
	if api.maps == nil {
		api.maps = maps.NewRenderer("")
	}
	if api.uploader == nil {
		api.uploader = media.NewLocalUploader("", "")
	}
	if api.logger == nil {
		api.logger = zap.NewNop().Sugar()
	}
	if api.feedPageSize <= 0 {
		api.feedPageSize = feed.DefaultPageSize
	}
	return api
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

// AuthToken is the expected value of the admin cookie.
func (a *API) AuthToken() string {
	return a.authToken
}
