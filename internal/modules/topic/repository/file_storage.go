package repository

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/mkorobov/daily-topic-bot/internal/modules/topic/domain"
	sharederrors "github.com/mkorobov/daily-topic-bot/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// FileStorage implements topic.Repository using the file system. One JSON
// document per topic keeps every rule setting joined to its topic, so
// deleting the file deletes all of them at once.
type FileStorage struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStorage creates a new file-based topic repository
func NewFileStorage(basePath string) (Repository, error) {
	topicPath := filepath.Join(basePath, "topics")
	if err := os.MkdirAll(topicPath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create topics directory").Wrap(err)
	}

	return &FileStorage{basePath: topicPath}, nil
}

func (s *FileStorage) SaveTopic(topic *domain.Topic) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.basePath, topic.Key.String()+".json")
	data, err := json.MarshalIndent(topic, "", "  ")
	if err != nil {
		return oops.With("topic_key", topic.Key.String(), "context", "failed to marshal topic").Wrap(err)
	}

	return os.WriteFile(path, data, 0644)
}

func (s *FileStorage) GetTopic(key domain.TopicKey) (*domain.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := filepath.Join(s.basePath, key.String()+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, sharederrors.ErrTopicNotFound
		}
		return nil, oops.With("topic_key", key.String(), "context", "failed to read topic").Wrap(err)
	}

	var topic domain.Topic
	if err := json.Unmarshal(data, &topic); err != nil {
		return nil, oops.With("topic_key", key.String(), "context", "failed to unmarshal topic").Wrap(err)
	}

	return &topic, nil
}

func (s *FileStorage) GetAllTopics() ([]*domain.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, oops.With("directory", s.basePath, "context", "failed to read topics directory").Wrap(err)
	}

	topics := lo.FilterMap(entries, func(entry os.DirEntry, _ int) (*domain.Topic, bool) {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			return nil, false
		}

		path := filepath.Join(s.basePath, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, false
		}

		var topic domain.Topic
		if err := json.Unmarshal(data, &topic); err != nil {
			return nil, false
		}

		return &topic, true
	})

	return topics, nil
}

func (s *FileStorage) DeleteTopic(key domain.TopicKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.basePath, key.String()+".json")
	return os.Remove(path)
}
