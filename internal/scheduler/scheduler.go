package scheduler

import (
	"fmt"
	"strings"
	"sync"
	"time"

	topicdomain "github.com/mkorobov/daily-topic-bot/internal/modules/topic/domain"
	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// Scheduler holds named daily jobs firing at a wall-clock (hour, minute)
// in a single fixed time zone. Registering an id that already exists
// replaces the prior entry, never stacks a duplicate timer.
type Scheduler struct {
	cron *cron.Cron

	mu   sync.Mutex
	jobs map[string]cron.EntryID
}

// New creates a stopped scheduler in the given time zone.
func New(loc *time.Location) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc)),
		jobs: make(map[string]cron.EntryID),
	}
}

// Register installs job under id, firing daily at the given time. An
// existing entry with the same id is retired first.
func (s *Scheduler) Register(id string, at topicdomain.DayTime, job func()) error {
	if err := at.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.jobs[id]; ok {
		s.cron.Remove(old)
	}

	entryID, err := s.cron.AddFunc(fmt.Sprintf("%d %d * * *", at.Minute, at.Hour), job)
	if err != nil {
		return oops.With("job_id", id, "at", at.String()).Wrap(err)
	}
	s.jobs[id] = entryID
	return nil
}

// Unregister retires the entry under id, if any.
func (s *Scheduler) Unregister(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.jobs[id]; ok {
		s.cron.Remove(old)
		delete(s.jobs, id)
	}
}

// IDs lists the currently registered job ids.
func (s *Scheduler) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Keys(s.jobs)
}

// IDsWithPrefix lists registered job ids starting with prefix.
func (s *Scheduler) IDsWithPrefix(prefix string) []string {
	return lo.Filter(s.IDs(), func(id string, _ int) bool {
		return strings.HasPrefix(id, prefix)
	})
}

// EntryCount reports how many timers are live in the underlying cron.
func (s *Scheduler) EntryCount() int {
	return len(s.cron.Entries())
}

// Start begins firing jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the timers and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
