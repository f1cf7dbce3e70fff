package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mkorobov/daily-topic-bot/internal/chat"
	"github.com/mkorobov/daily-topic-bot/internal/modules/greeting/domain"
	greetingrepo "github.com/mkorobov/daily-topic-bot/internal/modules/greeting/repository"
	topicrepo "github.com/mkorobov/daily-topic-bot/internal/modules/topic/repository"
	"github.com/samber/oops"
)

// Service runs the daily greeting cycle: sendJob posts the weekday text to
// the configured target, deleteJob retracts yesterday's post. The
// last-posted slot is mutated only under the service mutex; the durable
// write happens after the lock is released.
type Service struct {
	repo   greetingrepo.Repository
	topics topicrepo.Repository
	gw     chat.Gateway
	loc    *time.Location
	now    func() time.Time

	mu   sync.Mutex
	last *domain.LastPosted
}

// New creates the greeting engine, restoring the outstanding last-posted
// reference from storage so a restart does not orphan yesterday's post.
func New(repo greetingrepo.Repository, topics topicrepo.Repository, gw chat.Gateway, loc *time.Location) (*Service, error) {
	last, err := repo.GetLastPosted()
	if err != nil {
		return nil, oops.With("context", "failed to restore last posted greeting").Wrap(err)
	}
	return &Service{
		repo:   repo,
		topics: topics,
		gw:     gw,
		loc:    loc,
		now:    time.Now,
		last:   last,
	}, nil
}

// Schedule returns the current greeting schedule.
func (s *Service) Schedule() (*domain.Schedule, error) {
	return s.repo.GetSchedule()
}

// UpdateSchedule validates and persists a new schedule. Invalid times are
// rejected here so the scheduler and jobs never see them.
func (s *Service) UpdateSchedule(schedule *domain.Schedule) error {
	if err := schedule.SendTime.Validate(); err != nil {
		return err
	}
	if err := schedule.DeleteTime.Validate(); err != nil {
		return err
	}
	for day := range schedule.Messages {
		if day < 0 || day > 6 {
			return oops.Errorf("weekday index out of range: %d", day)
		}
	}
	return s.repo.SaveSchedule(schedule)
}

// SendJob posts today's greeting. Disabled mode, a missing target or a
// weekday with no text are all quiet no-ops. On success the last-posted
// slot is overwritten; any prior reference is discarded without deletion,
// that is the delete job's responsibility.
func (s *Service) SendJob(ctx context.Context) {
	schedule, err := s.repo.GetSchedule()
	if err != nil {
		slog.Error("Failed to load greeting schedule", "error", err)
		return
	}
	if !schedule.Enabled || schedule.Target == nil {
		return
	}

	target := *schedule.Target
	if _, err := s.topics.GetTopic(target); err != nil {
		slog.Warn("Greeting target is not a registered topic", "target", target.String())
		return
	}

	text := schedule.Messages[weekdayIndex(s.now().In(s.loc))]
	if text == "" {
		return
	}

	messageID, err := s.gw.SendMessage(ctx, target, text)
	if err != nil {
		slog.Error("Failed to send greeting", "target", target.String(), "error", err)
		return
	}

	last := &domain.LastPosted{Target: target, MessageID: messageID}
	s.mu.Lock()
	s.last = last
	s.mu.Unlock()

	if err := s.repo.SaveLastPosted(last); err != nil {
		slog.Error("Failed to persist last posted greeting", "error", err)
	}
	slog.Info("Greeting sent", "target", target.String(), "message_id", messageID)
}

// DeleteJob retracts the outstanding greeting. The slot is cleared whether
// or not the deletion succeeds: a failed deletion is surfaced as a warning
// and must not block the next day's cycle.
func (s *Service) DeleteJob(ctx context.Context) {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()

	if last == nil {
		return
	}

	if err := s.gw.DeleteMessage(ctx, last.Target.ChatID, last.MessageID); err != nil {
		slog.Warn("Failed to delete greeting",
			"target", last.Target.String(), "message_id", last.MessageID, "error", err)
	} else {
		slog.Info("Greeting deleted", "target", last.Target.String(), "message_id", last.MessageID)
	}

	s.mu.Lock()
	s.last = nil
	s.mu.Unlock()

	if err := s.repo.ClearLastPosted(); err != nil {
		slog.Error("Failed to clear last posted greeting", "error", err)
	}
}

// weekdayIndex maps time.Weekday (Sunday=0) to the schedule's indexing
// (0=Monday .. 6=Sunday).
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
