package repository

import (
	"github.com/mkorobov/daily-topic-bot/internal/modules/topic/domain"
)

// Repository defines the interface for topic settings persistence.
// This abstraction allows easy replacement of storage implementations
// (e.g., FileStorage -> PostgreSQL -> MongoDB)
type Repository interface {
	SaveTopic(topic *domain.Topic) error
	GetTopic(key domain.TopicKey) (*domain.Topic, error)
	GetAllTopics() ([]*domain.Topic, error)
	DeleteTopic(key domain.TopicKey) error
}
