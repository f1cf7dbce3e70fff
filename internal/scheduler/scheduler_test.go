package scheduler

import (
	"testing"
	"time"

	topicdomain "github.com/mkorobov/daily-topic-bot/internal/modules/topic/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_SameIDReplacesTimer(t *testing.T) {
	s := New(time.UTC)

	require.NoError(t, s.Register("greeting-send", topicdomain.DayTime{Hour: 9}, func() {}))
	require.NoError(t, s.Register("greeting-send", topicdomain.DayTime{Hour: 10, Minute: 30}, func() {}))

	// re-registering must not stack duplicate timers
	assert.Equal(t, 1, s.EntryCount())
	assert.Equal(t, []string{"greeting-send"}, s.IDs())
}

func TestRegister_DistinctIDsCoexist(t *testing.T) {
	s := New(time.UTC)

	require.NoError(t, s.Register("greeting-send", topicdomain.DayTime{Hour: 9}, func() {}))
	require.NoError(t, s.Register("greeting-delete", topicdomain.DayTime{Hour: 9, Minute: 5}, func() {}))
	require.NoError(t, s.Register("cleanup-1_0", topicdomain.DayTime{Hour: 23}, func() {}))

	assert.Equal(t, 3, s.EntryCount())
	assert.ElementsMatch(t, []string{"cleanup-1_0"}, s.IDsWithPrefix("cleanup-"))
}

func TestRegister_RejectsInvalidTime(t *testing.T) {
	s := New(time.UTC)
	assert.Error(t, s.Register("bad", topicdomain.DayTime{Hour: 25}, func() {}))
	assert.Equal(t, 0, s.EntryCount())
}

func TestUnregister(t *testing.T) {
	s := New(time.UTC)
	require.NoError(t, s.Register("cleanup-1_0", topicdomain.DayTime{Hour: 23}, func() {}))

	s.Unregister("cleanup-1_0")
	assert.Equal(t, 0, s.EntryCount())

	// unknown id is a no-op
	s.Unregister("cleanup-9_9")
}

func TestScheduler_StartSchedulesNextFire(t *testing.T) {
	s := New(time.UTC)
	require.NoError(t, s.Register("greeting-send", topicdomain.DayTime{Hour: 9}, func() {}))

	s.Start()
	defer s.Stop()

	entries := s.cron.Entries()
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Next.IsZero())
}
