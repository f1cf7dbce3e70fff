package repository

import (
	"testing"
	"time"

	"github.com/mkorobov/daily-topic-bot/internal/modules/topic/domain"
	sharederrors "github.com/mkorobov/daily-topic-bot/internal/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) Repository {
	t.Helper()
	repo, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	return repo
}

func TestFileStorage_SaveAndGet(t *testing.T) {
	repo := newRepo(t)

	key := domain.TopicKey{ChatID: -1001, ThreadID: 42}
	topic := &domain.Topic{
		Key:          key,
		Name:         "General",
		StopWords:    []string{"spam"},
		CleanupTime:  &domain.DayTime{Hour: 23, Minute: 30},
		RegisteredAt: time.Now(),
	}
	require.NoError(t, repo.SaveTopic(topic))

	got, err := repo.GetTopic(key)
	require.NoError(t, err)
	assert.Equal(t, "General", got.Name)
	assert.Equal(t, []string{"spam"}, got.StopWords)
	require.NotNil(t, got.CleanupTime)
	assert.Equal(t, "23:30", got.CleanupTime.String())
}

func TestFileStorage_GetMissingTopic(t *testing.T) {
	repo := newRepo(t)

	_, err := repo.GetTopic(domain.TopicKey{ChatID: 1, ThreadID: 0})
	assert.ErrorIs(t, err, sharederrors.ErrTopicNotFound)
}

func TestFileStorage_GetAllTopics(t *testing.T) {
	repo := newRepo(t)

	require.NoError(t, repo.SaveTopic(&domain.Topic{Key: domain.TopicKey{ChatID: -1001, ThreadID: 1}, Name: "one"}))
	require.NoError(t, repo.SaveTopic(&domain.Topic{Key: domain.TopicKey{ChatID: -1001, ThreadID: 2}, Name: "two"}))

	topics, err := repo.GetAllTopics()
	require.NoError(t, err)
	assert.Len(t, topics, 2)
}

func TestFileStorage_DeleteTopic(t *testing.T) {
	repo := newRepo(t)

	key := domain.TopicKey{ChatID: -1001, ThreadID: 7}
	require.NoError(t, repo.SaveTopic(&domain.Topic{Key: key, Name: "doomed"}))
	require.NoError(t, repo.DeleteTopic(key))

	_, err := repo.GetTopic(key)
	assert.ErrorIs(t, err, sharederrors.ErrTopicNotFound)
}
