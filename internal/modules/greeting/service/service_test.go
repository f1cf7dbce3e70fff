package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mkorobov/daily-topic-bot/internal/chat"
	"github.com/mkorobov/daily-topic-bot/internal/modules/greeting/domain"
	topicdomain "github.com/mkorobov/daily-topic-bot/internal/modules/topic/domain"
	sharederrors "github.com/mkorobov/daily-topic-bot/internal/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	sent      []string
	deleted   []int
	nextID    int
	sendErr   error
	deleteErr error
}

func (f *fakeGateway) SendMessage(ctx context.Context, target topicdomain.TopicKey, text string) (int, error) {
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	f.nextID++
	f.sent = append(f.sent, text)
	return f.nextID, nil
}

func (f *fakeGateway) Reply(ctx context.Context, target topicdomain.TopicKey, replyTo int, text string) (int, error) {
	return 0, nil
}

func (f *fakeGateway) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeGateway) GetAdministrators(ctx context.Context, chatID int64) ([]int64, error) {
	return nil, nil
}

func (f *fakeGateway) GetMember(ctx context.Context, chatID, userID int64) (chat.MemberStatus, error) {
	return chat.MemberStatusMember, nil
}

type memoryRepo struct {
	schedule *domain.Schedule
	last     *domain.LastPosted
}

func (m *memoryRepo) GetSchedule() (*domain.Schedule, error) {
	if m.schedule == nil {
		return &domain.Schedule{
			SendTime:   topicdomain.DayTime{Hour: 9},
			DeleteTime: topicdomain.DayTime{Hour: 9, Minute: 5},
			Messages:   map[int]string{},
		}, nil
	}
	return m.schedule, nil
}

func (m *memoryRepo) SaveSchedule(s *domain.Schedule) error { m.schedule = s; return nil }
func (m *memoryRepo) GetLastPosted() (*domain.LastPosted, error) { return m.last, nil }
func (m *memoryRepo) SaveLastPosted(l *domain.LastPosted) error  { m.last = l; return nil }
func (m *memoryRepo) ClearLastPosted() error                     { m.last = nil; return nil }

type memoryTopics struct {
	topics map[topicdomain.TopicKey]*topicdomain.Topic
}

func (m *memoryTopics) SaveTopic(t *topicdomain.Topic) error { m.topics[t.Key] = t; return nil }

func (m *memoryTopics) GetTopic(key topicdomain.TopicKey) (*topicdomain.Topic, error) {
	t, ok := m.topics[key]
	if !ok {
		return nil, sharederrors.ErrTopicNotFound
	}
	return t, nil
}

func (m *memoryTopics) GetAllTopics() ([]*topicdomain.Topic, error) { return nil, nil }
func (m *memoryTopics) DeleteTopic(key topicdomain.TopicKey) error  { return nil }

var target = topicdomain.TopicKey{ChatID: -300, ThreadID: 1}

// monday pins the clock to a Monday so Messages[0] is today's text
var monday = time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)

func newEngine(t *testing.T, repo *memoryRepo) (*Service, *fakeGateway) {
	t.Helper()
	gw := &fakeGateway{}
	topics := &memoryTopics{topics: map[topicdomain.TopicKey]*topicdomain.Topic{
		target: {Key: target, Name: "test topic"},
	}}
	svc, err := New(repo, topics, gw, time.UTC)
	require.NoError(t, err)
	svc.now = func() time.Time { return monday }
	return svc, gw
}

func enabledSchedule() *domain.Schedule {
	tk := target
	return &domain.Schedule{
		Enabled:    true,
		Target:     &tk,
		SendTime:   topicdomain.DayTime{Hour: 9},
		DeleteTime: topicdomain.DayTime{Hour: 9, Minute: 5},
		Messages:   map[int]string{0: "A", 1: "B"},
	}
}

func TestSendJob_PostsWeekdayTextAndRecordsIt(t *testing.T) {
	repo := &memoryRepo{schedule: enabledSchedule()}
	svc, gw := newEngine(t, repo)

	svc.SendJob(context.Background())

	assert.Equal(t, []string{"A"}, gw.sent)
	require.NotNil(t, repo.last)
	assert.Equal(t, target, repo.last.Target)
	assert.Equal(t, 1, repo.last.MessageID)
}

func TestSendJob_NoopCases(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		sched := enabledSchedule()
		sched.Enabled = false
		svc, gw := newEngine(t, &memoryRepo{schedule: sched})
		svc.SendJob(context.Background())
		assert.Empty(t, gw.sent)
	})

	t.Run("no target", func(t *testing.T) {
		sched := enabledSchedule()
		sched.Target = nil
		svc, gw := newEngine(t, &memoryRepo{schedule: sched})
		svc.SendJob(context.Background())
		assert.Empty(t, gw.sent)
	})

	t.Run("no text for weekday", func(t *testing.T) {
		sched := enabledSchedule()
		sched.Messages = map[int]string{3: "thursday only"}
		svc, gw := newEngine(t, &memoryRepo{schedule: sched})
		svc.SendJob(context.Background())
		assert.Empty(t, gw.sent)
	})
}

func TestSendJob_FailedSendKeepsSlotEmpty(t *testing.T) {
	repo := &memoryRepo{schedule: enabledSchedule()}
	svc, gw := newEngine(t, repo)
	gw.sendErr = errors.New("network")

	svc.SendJob(context.Background())
	assert.Nil(t, repo.last)
}

func TestDeleteJob_DeletesRecordedReferenceAndClearsSlot(t *testing.T) {
	repo := &memoryRepo{schedule: enabledSchedule()}
	svc, gw := newEngine(t, repo)

	svc.SendJob(context.Background())
	svc.DeleteJob(context.Background())

	assert.Equal(t, []int{1}, gw.deleted)
	assert.Nil(t, repo.last)

	// second delete with no prior send is a no-op
	svc.DeleteJob(context.Background())
	assert.Equal(t, []int{1}, gw.deleted)
}

func TestDeleteJob_FailureStillFreesSlot(t *testing.T) {
	repo := &memoryRepo{schedule: enabledSchedule()}
	svc, gw := newEngine(t, repo)

	svc.SendJob(context.Background())
	gw.deleteErr = errors.New("message already gone")
	svc.DeleteJob(context.Background())

	// slot freed so the next day's cycle is not blocked
	assert.Nil(t, repo.last)
}

func TestDeleteJob_RestoredSlotFromStorage(t *testing.T) {
	repo := &memoryRepo{
		schedule: enabledSchedule(),
		last:     &domain.LastPosted{Target: target, MessageID: 77},
	}
	svc, gw := newEngine(t, repo)

	svc.DeleteJob(context.Background())
	assert.Equal(t, []int{77}, gw.deleted)
	assert.Nil(t, repo.last)
}

func TestUpdateSchedule_RejectsInvalidTimes(t *testing.T) {
	repo := &memoryRepo{}
	svc, _ := newEngine(t, repo)

	bad := enabledSchedule()
	bad.SendTime = topicdomain.DayTime{Hour: 24}
	assert.Error(t, svc.UpdateSchedule(bad))

	bad = enabledSchedule()
	bad.Messages[9] = "nope"
	assert.Error(t, svc.UpdateSchedule(bad))

	assert.NoError(t, svc.UpdateSchedule(enabledSchedule()))
}
