package authoring

import (
	"sync"
	"time"

	"github.com/foodlog/internal/service"
	"go.uber.org/zap"
)

// DraftKeyNewReview is the autosave key of the review create form.
const DraftKeyNewReview = "review:new"

// DefaultAutosaveDelay is the quiet period after the last edit before a save.
const DefaultAutosaveDelay = 2 * time.Second

// DraftStore persists autosave payloads.
type DraftStore interface {
	Save(key string, payload []byte) error
	Load(key string, maxAge time.Duration) ([]byte, bool, error)
	Delete(key string) error
}

// Autosaver debounces draft writes. Schedule never blocks on the store;
// writes happen on the timer goroutine and failures are only logged.
type Autosaver struct {
	store  DraftStore
	key    string
	delay  time.Duration
	maxAge time.Duration
	logger *zap.SugaredLogger

	// writeMu orders timer writes against Clear so a cleared draft is not resurrected.
	writeMu sync.Mutex
	mu      sync.Mutex
	timer   *time.Timer
	pending []byte
}

func NewAutosaver(store DraftStore, key string, logger *zap.SugaredLogger) *Autosaver {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Autosaver{
		store:  store,
		key:    key,
		delay:  DefaultAutosaveDelay,
		maxAge: service.DraftMaxAge,
		logger: logger,
	}
}

func (a *Autosaver) SetDelay(delay time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.delay = delay
}

// Key returns the storage key.
func (a *Autosaver) Key() string {
	return a.key
}

// Schedule replaces the pending payload and restarts the quiet period.
func (a *Autosaver) Schedule(payload []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending = payload
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, a.fire)
}

// Flush writes the pending payload now, if any.
func (a *Autosaver) Flush() {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()
	a.fire()
}

// Stop drops the pending payload without writing it.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.pending = nil
}

// Restore returns the stored draft if it is younger than the staleness window.
func (a *Autosaver) Restore() ([]byte, bool) {
	payload, ok, err := a.store.Load(a.key, a.maxAge)
	if err != nil {
		a.logger.Warnw("autosave restore failed", "key", a.key, "error", err)
		return nil, false
	}
	return payload, ok
}

// Clear cancels any pending write and removes the stored draft.
func (a *Autosaver) Clear() {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	a.Stop()
	if err := a.store.Delete(a.key); err != nil {
		a.logger.Warnw("autosave clear failed", "key", a.key, "error", err)
	}
}

func (a *Autosaver) fire() {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	a.mu.Lock()
	payload := a.pending
	a.pending = nil
	a.timer = nil
	a.mu.Unlock()

	if payload == nil {
		return
	}
	if err := a.store.Save(a.key, payload); err != nil {
		a.logger.Warnw("autosave failed", "key", a.key, "error", err)
	}
}
