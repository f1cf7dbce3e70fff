package service

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	greetingrepo "github.com/mkorobov/daily-topic-bot/internal/modules/greeting/repository"
	"github.com/mkorobov/daily-topic-bot/internal/modules/topic/domain"
	topicrepo "github.com/mkorobov/daily-topic-bot/internal/modules/topic/repository"
	sharederrors "github.com/mkorobov/daily-topic-bot/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// Service owns topic registration and per-topic rule settings. All setting
// writes validate their input here so the pipeline and the scheduler only
// ever see well-formed configuration.
type Service struct {
	topics    topicrepo.Repository
	greetings greetingrepo.Repository
}

// New creates a new topic service
func New(topics topicrepo.Repository, greetings greetingrepo.Repository) *Service {
	return &Service{topics: topics, greetings: greetings}
}

// Register creates or refreshes a registered topic. Topics are only ever
// created through this explicit action, never implicitly by traffic.
func (s *Service) Register(key domain.TopicKey, name string) (*domain.Topic, error) {
	existing, err := s.topics.GetTopic(key)
	if err == nil {
		existing.Name = name
		return existing, s.topics.SaveTopic(existing)
	}

	topic := &domain.Topic{
		Key:          key,
		Name:         name,
		RegisteredAt: time.Now(),
	}
	if err := s.topics.SaveTopic(topic); err != nil {
		return nil, oops.With("topic_key", key.String(), "context", "failed to register topic").Wrap(err)
	}
	return topic, nil
}

// RegisterCleanup registers the topic and sets its daily cleanup time.
func (s *Service) RegisterCleanup(key domain.TopicKey, name, cleanupTime string) (*domain.Topic, error) {
	at, err := domain.ParseDayTime(cleanupTime)
	if err != nil {
		return nil, err
	}

	topic, err := s.Register(key, name)
	if err != nil {
		return nil, err
	}
	topic.CleanupTime = &at
	return topic, s.topics.SaveTopic(topic)
}

// Remove deletes the topic together with every setting keyed by it. If the
// topic is the greeting target, the target is cleared so no orphaned
// reference survives.
func (s *Service) Remove(key domain.TopicKey) error {
	if err := s.topics.DeleteTopic(key); err != nil {
		return oops.With("topic_key", key.String(), "context", "failed to remove topic").Wrap(err)
	}

	schedule, err := s.greetings.GetSchedule()
	if err != nil {
		return err
	}
	if schedule.Target != nil && *schedule.Target == key {
		schedule.Target = nil
		if err := s.greetings.SaveSchedule(schedule); err != nil {
			return err
		}
		slog.Info("Cleared greeting target for removed topic", "topic", key.String())
	}
	return nil
}

// Get retrieves a topic by key.
func (s *Service) Get(key domain.TopicKey) (*domain.Topic, error) {
	return s.topics.GetTopic(key)
}

// All retrieves all registered topics.
func (s *Service) All() ([]*domain.Topic, error) {
	return s.topics.GetAllTopics()
}

// SetSilentWindow parses and stores the silence window, or clears it when
// spec is empty.
func (s *Service) SetSilentWindow(key domain.TopicKey, spec string) error {
	return s.updateTopic(key, func(t *domain.Topic) error {
		if spec == "" {
			t.SilentWindow = nil
			return nil
		}
		w, err := domain.ParseTimeWindow(spec)
		if err != nil {
			return err
		}
		t.SilentWindow = &w
		return nil
	})
}

// SetAutoDeleteWindow parses and stores the auto-delete window, or clears
// it when spec is empty.
func (s *Service) SetAutoDeleteWindow(key domain.TopicKey, spec string) error {
	return s.updateTopic(key, func(t *domain.Topic) error {
		if spec == "" {
			t.AutoDeleteWindow = nil
			return nil
		}
		w, err := domain.ParseTimeWindow(spec)
		if err != nil {
			return err
		}
		t.AutoDeleteWindow = &w
		return nil
	})
}

// AddStopWord stores word lowercase, keeping the set unique and sorted.
func (s *Service) AddStopWord(key domain.TopicKey, word string) error {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return oops.Errorf("stop word cannot be empty")
	}
	return s.updateTopic(key, func(t *domain.Topic) error {
		t.StopWords = lo.Uniq(append(t.StopWords, word))
		sort.Strings(t.StopWords)
		return nil
	})
}

// RemoveStopWord removes a stop word if present.
func (s *Service) RemoveStopWord(key domain.TopicKey, word string) error {
	return s.updateTopic(key, func(t *domain.Topic) error {
		t.StopWords = lo.Without(t.StopWords, strings.ToLower(word))
		return nil
	})
}

// AddAutoResponse appends a keyword->reply pair. Insertion order defines
// match priority; re-adding an existing keyword updates it in place.
func (s *Service) AddAutoResponse(key domain.TopicKey, keyword, reply string) error {
	if keyword == "" || reply == "" {
		return oops.Errorf("auto-response keyword and reply cannot be empty")
	}
	return s.updateTopic(key, func(t *domain.Topic) error {
		for i := range t.AutoResponses {
			if t.AutoResponses[i].Keyword == keyword {
				t.AutoResponses[i].Reply = reply
				return nil
			}
		}
		t.AutoResponses = append(t.AutoResponses, domain.AutoResponse{Keyword: keyword, Reply: reply})
		return nil
	})
}

// RemoveAutoResponse removes the pair for keyword if present.
func (s *Service) RemoveAutoResponse(key domain.TopicKey, keyword string) error {
	return s.updateTopic(key, func(t *domain.Topic) error {
		t.AutoResponses = lo.Reject(t.AutoResponses, func(ar domain.AutoResponse, _ int) bool {
			return ar.Keyword == keyword
		})
		return nil
	})
}

// SetCleanupTime sets or clears (empty spec) the daily cleanup time.
func (s *Service) SetCleanupTime(key domain.TopicKey, spec string) error {
	return s.updateTopic(key, func(t *domain.Topic) error {
		if spec == "" {
			t.CleanupTime = nil
			return nil
		}
		at, err := domain.ParseDayTime(spec)
		if err != nil {
			return err
		}
		t.CleanupTime = &at
		return nil
	})
}

func (s *Service) updateTopic(key domain.TopicKey, mutate func(*domain.Topic) error) error {
	topic, err := s.topics.GetTopic(key)
	if err != nil {
		return sharederrors.ErrTopicNotFound
	}
	if err := mutate(topic); err != nil {
		return err
	}
	return s.topics.SaveTopic(topic)
}
