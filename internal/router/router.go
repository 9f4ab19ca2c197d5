package router

import (
	"net/http"
	"strings"

	"github.com/foodlog/internal/handler"
	"github.com/foodlog/internal/logging"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionName is the cookie holding the admin session.
const SessionName = "foodlog_session"

// Options controls the parts of the engine that depend on deployment.
type Options struct {
	SessionSecret string
	UploadDir     string
	UploadURLPath string
}

// SetupRouter builds the gin engine with every public, API and admin route.
func SetupRouter(api *handler.API, logger *zap.SugaredLogger, opts Options) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	r := gin.New()
	r.Use(gin.Recovery(), logging.RequestLogger(logger))

	secret := strings.TrimSpace(opts.SessionSecret)
	if secret == "" {
		secret = "foodlog-dev-secret"
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode, MaxAge: 30 * 24 * 60 * 60})
	r.Use(sessions.Sessions(SessionName, store))

	uploadDir := strings.TrimSpace(opts.UploadDir)
	if uploadDir == "" {
		uploadDir = "web/static/uploads"
	}
	uploadURLPath := "/" + strings.Trim(strings.TrimSpace(opts.UploadURLPath), "/")
	if uploadURLPath == "/" {
		uploadURLPath = "/static/uploads"
	}
	r.Static(uploadURLPath, uploadDir)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	apiGroup := r.Group("/api", api.APIGate())
	{
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
	}

	r.GET("/admin/login", api.ShowLoginPage)
	r.POST("/admin/login", api.Login)

	admin := r.Group("/admin", api.AdminGate())
	{
		admin.GET("", func(c *gin.Context) {
			c.Redirect(http.StatusFound, "/admin/dashboard")
		})
		admin.GET("/logout", api.Logout)
		admin.GET("/dashboard", api.ShowDashboard)
		admin.POST("/upload", api.UploadImages)
		admin.GET("/drafts/:key", api.GetDraft)
		admin.PUT("/drafts/:key", api.SaveDraft)
		admin.DELETE("/drafts/:key", api.DeleteDraft)
	}

	// Unknown /admin paths are gated like registered ones.
	adminGate := api.AdminGate()
	r.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/admin" || strings.HasPrefix(path, "/admin/") {
			adminGate(c)
			if c.IsAborted() {
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return r
}
