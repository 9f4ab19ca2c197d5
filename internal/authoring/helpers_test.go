package authoring

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/foodlog/internal/db"
	"github.com/foodlog/internal/geo"
	"github.com/foodlog/internal/media"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter atomic.Int64

func setupAuthoringTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:authoring-%d-%d?mode=memory&cache=shared", time.Now().UnixNano(), testDBCounter.Add(1))
	gdb, err := db.Open(db.DriverSQLite, dsn, logger.Silent)
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

type memoryDraftStore struct {
	mu      sync.Mutex
	entries map[string][]byte
	saves   int
	failing bool
}

func newMemoryDraftStore() *memoryDraftStore {
	return &memoryDraftStore{entries: map[string][]byte{}}
}

func (m *memoryDraftStore) Save(key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.failing {
		return errors.New("disk full")
	}
	m.entries[key] = append([]byte(nil), payload...)
	return nil
}

func (m *memoryDraftStore) Load(key string, maxAge time.Duration) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, ok := m.entries[key]
	return payload, ok, nil
}

func (m *memoryDraftStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *memoryDraftStore) snapshot(key string) ([]byte, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[key], m.saves
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

type stubGeocoder struct {
	result geo.Result
	err    error
	calls  []string
}

func (s *stubGeocoder) Geocode(ctx context.Context, address string) (geo.Result, error) {
	s.calls = append(s.calls, address)
	return s.result, s.err
}

type stubUploader struct {
	failOn string
}

func (s *stubUploader) Upload(ctx context.Context, file media.File) (media.Asset, error) {
	if file.Name == s.failOn {
		return media.Asset{}, errors.New("upload rejected")
	}
	return media.Asset{URL: "https://cdn.example.com/" + file.Name}, nil
}
