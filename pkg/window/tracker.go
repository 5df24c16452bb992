package window

import (
	"context"
	"sync"
	"time"
)

// staleAfter bounds the tracker: an entry this old scores the same as
// no entry at all, so sweeping it never changes an outcome.
const staleAfter = 24 * time.Hour

type Key struct {
	ChatID int64
	UserID int64
}

// Tracker maps (chat, user) to the instant their acceptance window
// opened. It is deliberately process-local scratch state: a restart
// drops open windows and submissions fall back to the base score.
type Tracker struct {
	mu   sync.Mutex
	open map[Key]time.Time
	now  func() time.Time
}

func NewTracker(now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		open: make(map[Key]time.Time),
		now:  now,
	}
}

// Open records the window-open instant, overwriting a previous one.
func (t *Tracker) Open(chatID, userID int64, now time.Time) {
	if t == nil || chatID == 0 || userID == 0 {
		return
	}
	if now.IsZero() {
		now = t.now()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.open[Key{ChatID: chatID, UserID: userID}] = now
}

// Consume removes the entry for (chat, user) and reports how long ago
// it was opened. The second result is false when no window was open.
func (t *Tracker) Consume(chatID, userID int64, now time.Time) (time.Duration, bool) {
	if t == nil || chatID == 0 || userID == 0 {
		return 0, false
	}
	if now.IsZero() {
		now = t.now()
	}
	key := Key{ChatID: chatID, UserID: userID}
	t.mu.Lock()
	defer t.mu.Unlock()
	openedAt, ok := t.open[key]
	if !ok {
		return 0, false
	}
	delete(t.open, key)
	return now.Sub(openedAt), true
}

// SweepStale drops entries old enough to be indistinguishable from
// absent ones.
func (t *Tracker) SweepStale(now time.Time) {
	if t == nil {
		return
	}
	if now.IsZero() {
		now = t.now()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, openedAt := range t.open {
		if now.Sub(openedAt) >= staleAfter {
			delete(t.open, key)
		}
	}
}

func (t *Tracker) StartSweeper(ctx context.Context) {
	if t == nil || ctx == nil {
		return
	}
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.SweepStale(t.now())
		}
	}
}

// Len reports the number of open windows.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.open)
}
