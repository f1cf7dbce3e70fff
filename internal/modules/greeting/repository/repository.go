package repository

import (
	"github.com/mkorobov/daily-topic-bot/internal/modules/greeting/domain"
)

// Repository defines the interface for greeting state persistence.
type Repository interface {
	GetSchedule() (*domain.Schedule, error)
	SaveSchedule(schedule *domain.Schedule) error
	GetLastPosted() (*domain.LastPosted, error)
	SaveLastPosted(last *domain.LastPosted) error
	ClearLastPosted() error
}
