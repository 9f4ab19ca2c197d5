package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// AppConfig collects the settings needed to run the service.
type AppConfig struct {
	ListenAddr        string
	Port              string
	DatabaseDriver    string
	DatabasePath      string
	DatabaseURL       string
	SessionSecret     string
	GinMode           string
	LogLevel          string
	UploadBackend     string
	UploadDir         string
	UploadURLPath     string
	CloudinaryURL     string
	CloudinaryFolder  string
	AdminAuthToken    string
	SuperRootUserName string
	SuperRootPassword string
	GeocoderBaseURL   string
	GeocoderUserAgent string
	GeocoderEmail     string
	MapsAPIKey        string
	FeedPageSize      int
	SiteBaseURL       string
}

// Upload backends.
const (
	UploadBackendLocal      = "local"
	UploadBackendCloudinary = "cloudinary"
)

// Load reads the configuration from the environment and fills defaults for
// anything missing.
func Load() AppConfig {
	port := env("PORT", "8080")

	siteBaseURL := strings.TrimRight(env("SITE_BASE_URL", "http://localhost:"+port), "/")

	feedPageSize := 9
	if raw := env("FEED_PAGE_SIZE", ""); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			feedPageSize = parsed
		}
	}

	uploadBackend := strings.ToLower(env("UPLOAD_BACKEND", UploadBackendLocal))
	if uploadBackend != UploadBackendCloudinary {
		uploadBackend = UploadBackendLocal
	}

	return AppConfig{
		ListenAddr:        env("LISTEN_ADDR", fmt.Sprintf(":%s", port)),
		Port:              port,
		DatabaseDriver:    strings.ToLower(env("DATABASE_DRIVER", "sqlite")),
		DatabasePath:      env("DATABASE_PATH", "foodlog.db"),
		DatabaseURL:       env("DATABASE_URL", ""),
		SessionSecret:     env("SESSION_SECRET", "foodlog-dev-secret"),
		GinMode:           env("GIN_MODE", "release"),
		LogLevel:          env("LOG_LEVEL", "info"),
		UploadBackend:     uploadBackend,
		UploadDir:         env("UPLOAD_DIR", "web/static/uploads"),
		UploadURLPath:     env("UPLOAD_URL_PATH", "/static/uploads"),
		CloudinaryURL:     env("CLOUDINARY_URL", ""),
		CloudinaryFolder:  env("CLOUDINARY_FOLDER", "reviews"),
		AdminAuthToken:    env("ADMIN_AUTH_TOKEN", "foodlog-dev-admin"),
		SuperRootUserName: env("SUPER_ROOT_USER_NAME", ""),
		SuperRootPassword: env("SUPER_ROOT_PASSWORD", ""),
		GeocoderBaseURL:   env("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocoderUserAgent: env("GEOCODER_USER_AGENT", fmt.Sprintf("foodlog-geocoder/1.0 (+%s)", siteBaseURL)),
		GeocoderEmail:     env("GEOCODER_EMAIL", ""),
		MapsAPIKey:        env("MAPS_API_KEY", ""),
		FeedPageSize:      feedPageSize,
		SiteBaseURL:       siteBaseURL,
	}
}

func env(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
