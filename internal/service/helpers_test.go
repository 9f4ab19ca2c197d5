package service

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/foodlog/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter atomic.Int64

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:service-%d-%d?mode=memory&cache=shared", time.Now().UnixNano(), testDBCounter.Add(1))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func publishableInput(name string, publishedAt time.Time) ReviewInput {
	return ReviewInput{
		RestaurantName: name,
		Rating:         8,
		Lat:            47.6,
		Lng:            -122.3,
		Images:         db.ImageList{{URL: "https://cdn.example.com/" + name + ".jpg"}},
		PublishedAt:    &publishedAt,
	}
}

func mustCreateReview(t *testing.T, svc *ReviewService, input ReviewInput) *db.Review {
	t.Helper()
	review, err := svc.Create(input)
	if err != nil {
		t.Fatalf("create review %q: %v", input.RestaurantName, err)
	}
	return review
}
