package repository

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/mkorobov/daily-topic-bot/internal/modules/greeting/domain"
	topicdomain "github.com/mkorobov/daily-topic-bot/internal/modules/topic/domain"
	"github.com/samber/oops"
)

const (
	scheduleFile   = "schedule.json"
	lastPostedFile = "last_posted.json"
)

// FileStorage implements greeting.Repository using the file system.
type FileStorage struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStorage creates a new file-based greeting repository
func NewFileStorage(basePath string) (Repository, error) {
	greetingPath := filepath.Join(basePath, "greeting")
	if err := os.MkdirAll(greetingPath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create greeting directory").Wrap(err)
	}

	return &FileStorage{basePath: greetingPath}, nil
}

// GetSchedule loads the schedule, filling defaults when the file is absent
// or partially populated. Missing fields never reach callers unvalidated.
func (s *FileStorage) GetSchedule() (*domain.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schedule := defaultSchedule()

	path := filepath.Join(s.basePath, scheduleFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return schedule, nil
		}
		return nil, oops.With("path", path, "context", "failed to read greeting schedule").Wrap(err)
	}

	if err := json.Unmarshal(data, schedule); err != nil {
		return nil, oops.With("path", path, "context", "failed to unmarshal greeting schedule").Wrap(err)
	}
	if schedule.Messages == nil {
		schedule.Messages = make(map[int]string)
	}

	return schedule, nil
}

func (s *FileStorage) SaveSchedule(schedule *domain.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(schedule, "", "  ")
	if err != nil {
		return oops.With("context", "failed to marshal greeting schedule").Wrap(err)
	}

	return os.WriteFile(filepath.Join(s.basePath, scheduleFile), data, 0644)
}

// GetLastPosted returns nil without error when no greeting is outstanding.
func (s *FileStorage) GetLastPosted() (*domain.LastPosted, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := filepath.Join(s.basePath, lastPostedFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, oops.With("path", path, "context", "failed to read last posted greeting").Wrap(err)
	}

	var last domain.LastPosted
	if err := json.Unmarshal(data, &last); err != nil {
		return nil, oops.With("path", path, "context", "failed to unmarshal last posted greeting").Wrap(err)
	}

	return &last, nil
}

func (s *FileStorage) SaveLastPosted(last *domain.LastPosted) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(last, "", "  ")
	if err != nil {
		return oops.With("context", "failed to marshal last posted greeting").Wrap(err)
	}

	return os.WriteFile(filepath.Join(s.basePath, lastPostedFile), data, 0644)
}

func (s *FileStorage) ClearLastPosted() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(filepath.Join(s.basePath, lastPostedFile))
	if err != nil && !os.IsNotExist(err) {
		return oops.With("context", "failed to clear last posted greeting").Wrap(err)
	}
	return nil
}

func defaultSchedule() *domain.Schedule {
	return &domain.Schedule{
		Enabled:    false,
		SendTime:   topicdomain.DayTime{Hour: 9, Minute: 0},
		DeleteTime: topicdomain.DayTime{Hour: 9, Minute: 5},
		Messages:   make(map[int]string),
	}
}
