package trigger

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmoreira/tg-focus-coach/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Scheduler keeps recurring triggers addressable by a stable string id
// so re-registration replaces the previous trigger instead of stacking
// a duplicate. Fires run on their own goroutines and panics are
// contained per fire, so one failing handler never unschedules itself
// or stalls the others.
type Scheduler struct {
	cron    *cron.Cron
	mu      sync.Mutex
	entries map[string]entry
}

type entry struct {
	entryID     cron.EntryID
	spec        string
	handlerName string
}

// Info describes one registered trigger for diagnostics.
type Info struct {
	ID          string
	Spec        string
	HandlerName string
	NextFire    time.Time
}

func New(loc *time.Location) *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cronLogger{})),
		),
		entries: make(map[string]entry),
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// specParser matches the cron instance built in New (seconds field,
// descriptors) so specs can be validated before any entry is touched.
var specParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// RegisterRecurring adds a trigger under id, replacing any existing
// trigger with the same id. The spec is parsed first, so a bad spec
// leaves the previous trigger untouched; the old entry is then removed
// before the new one is installed, so no fire instant can ever run
// both. A fire landing exactly inside the swap may be skipped.
func (s *Scheduler) RegisterRecurring(id, spec, handlerName string, fn func()) error {
	schedule, err := specParser.Parse(spec)
	if err != nil {
		return fmt.Errorf("trigger %s: invalid spec %q: %w", id, spec, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[id]; ok {
		s.cron.Remove(old.entryID)
	}
	entryID := s.cron.Schedule(schedule, cron.FuncJob(fn))
	s.entries[id] = entry{entryID: entryID, spec: spec, handlerName: handlerName}
	logger.Debug("registered trigger", "id", id, "spec", spec, "handler", handlerName)
	return nil
}

// Remove drops the trigger with the given id; absent ids are a no-op.
func (s *Scheduler) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.entries[id]; ok {
		s.cron.Remove(old.entryID)
		delete(s.entries, id)
		logger.Debug("removed trigger", "id", id)
	}
}

// ListActive reports all registered triggers sorted by next fire time,
// then id for stable output.
func (s *Scheduler) ListActive() []Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]Info, 0, len(s.entries))
	for id, e := range s.entries {
		infos = append(infos, Info{
			ID:          id,
			Spec:        e.spec,
			HandlerName: e.handlerName,
			NextFire:    s.cron.Entry(e.entryID).Next,
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].NextFire.Equal(infos[j].NextFire) {
			return infos[i].NextFire.Before(infos[j].NextFire)
		}
		return infos[i].ID < infos[j].ID
	})
	return infos
}

// Weekly builds a spec firing once a week at hour:minute on day.
func Weekly(day time.Weekday, hour, minute int) string {
	return fmt.Sprintf("0 %d %d * * %d", minute, hour, int(day))
}

// Daily builds a spec firing every day at hour:minute.
func Daily(hour, minute int) string {
	return fmt.Sprintf("0 %d %d * * *", minute, hour)
}

// cronLogger routes cron's recovery output into the process logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	args := append([]interface{}{"error", err}, keysAndValues...)
	logger.Error("cron: "+msg, args...)
}
