package service

import (
	"errors"
	"strings"
	"time"

	"github.com/foodlog/internal/apperr"
	"github.com/foodlog/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DraftMaxAge is how long an autosaved draft stays restorable.
const DraftMaxAge = 24 * time.Hour

// AutosaveService stores unsaved authoring drafts as expiring key/value entries.
type AutosaveService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewAutosaveService creates an AutosaveService instance.
func NewAutosaveService(gdb *gorm.DB) *AutosaveService {
	return &AutosaveService{db: gdb, now: time.Now}
}

// SetClock replaces the time source, mainly for tests.
func (s *AutosaveService) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
}

// Save upserts the payload stored under key.
func (s *AutosaveService) Save(key string, payload []byte) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return apperr.Validation("key", "Draft key is required")
	}
	entry := db.AutosaveDraft{Key: key, Payload: string(payload), SavedAt: s.now()}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "saved_at"}),
	}).Create(&entry).Error
}

// Load returns the payload under key if it is younger than maxAge. Stale
// entries are removed and reported as absent.
func (s *AutosaveService) Load(key string, maxAge time.Duration) ([]byte, bool, error) {
	var entry db.AutosaveDraft
	if err := s.db.Where("key = ?", strings.TrimSpace(key)).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	if maxAge > 0 && s.now().Sub(entry.SavedAt) > maxAge {
		if err := s.Delete(entry.Key); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}
	return []byte(entry.Payload), true, nil
}

// Delete removes the entry under key. Missing keys are not an error.
func (s *AutosaveService) Delete(key string) error {
	return s.db.Where("key = ?", strings.TrimSpace(key)).Delete(&db.AutosaveDraft{}).Error
}
