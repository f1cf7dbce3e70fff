package scheduler

import (
	"context"
	"log/slog"

	cleanupservice "github.com/mkorobov/daily-topic-bot/internal/modules/cleanup/service"
	greetingservice "github.com/mkorobov/daily-topic-bot/internal/modules/greeting/service"
	topicrepo "github.com/mkorobov/daily-topic-bot/internal/modules/topic/repository"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

const (
	jobGreetingSend   = "greeting-send"
	jobGreetingDelete = "greeting-delete"
	cleanupJobPrefix  = "cleanup-"
)

// JobSet binds the engines to the scheduler. Reload derives the full job
// table from configuration and re-registers it; stale cleanup jobs for
// removed topics are retired in the same pass.
type JobSet struct {
	scheduler *Scheduler
	greetings *greetingservice.Service
	cleanup   *cleanupservice.Service
	topics    topicrepo.Repository
}

// NewJobSet wires the scheduled jobs.
func NewJobSet(scheduler *Scheduler, greetings *greetingservice.Service, cleanup *cleanupservice.Service, topics topicrepo.Repository) *JobSet {
	return &JobSet{
		scheduler: scheduler,
		greetings: greetings,
		cleanup:   cleanup,
		topics:    topics,
	}
}

// Reload re-registers every job from current configuration. Safe to call
// after any settings change; same-id registrations replace prior timers.
func (j *JobSet) Reload() error {
	schedule, err := j.greetings.Schedule()
	if err != nil {
		return oops.With("context", "failed to load greeting schedule").Wrap(err)
	}

	if err := j.scheduler.Register(jobGreetingSend, schedule.SendTime, func() {
		j.greetings.SendJob(context.Background())
	}); err != nil {
		return err
	}
	if err := j.scheduler.Register(jobGreetingDelete, schedule.DeleteTime, func() {
		j.greetings.DeleteJob(context.Background())
	}); err != nil {
		return err
	}

	topics, err := j.topics.GetAllTopics()
	if err != nil {
		return oops.With("context", "failed to load topics").Wrap(err)
	}

	wanted := make(map[string]bool)
	for _, topic := range topics {
		if topic.CleanupTime == nil {
			continue
		}
		key := topic.Key
		id := cleanupJobPrefix + key.String()
		wanted[id] = true
		if err := j.scheduler.Register(id, *topic.CleanupTime, func() {
			j.cleanup.Run(context.Background(), key)
		}); err != nil {
			return err
		}
	}

	// retire cleanup jobs whose topics are gone
	stale := lo.Filter(j.scheduler.IDsWithPrefix(cleanupJobPrefix), func(id string, _ int) bool {
		return !wanted[id]
	})
	for _, id := range stale {
		j.scheduler.Unregister(id)
	}

	slog.Info("Scheduled jobs reloaded",
		"greeting_send", schedule.SendTime.String(),
		"greeting_delete", schedule.DeleteTime.String(),
		"cleanup_jobs", len(wanted))
	return nil
}
