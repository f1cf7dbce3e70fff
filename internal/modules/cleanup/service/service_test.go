package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mkorobov/daily-topic-bot/internal/chat"
	"github.com/mkorobov/daily-topic-bot/internal/modules/admin"
	topicdomain "github.com/mkorobov/daily-topic-bot/internal/modules/topic/domain"
	"github.com/stretchr/testify/assert"
)

type fakeGateway struct {
	deleted   []int
	deleteErr map[int]error
	adminErr  error
	admins    []int64
}

func (f *fakeGateway) SendMessage(ctx context.Context, target topicdomain.TopicKey, text string) (int, error) {
	return 0, nil
}

func (f *fakeGateway) Reply(ctx context.Context, target topicdomain.TopicKey, replyTo int, text string) (int, error) {
	return 0, nil
}

func (f *fakeGateway) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if err := f.deleteErr[messageID]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeGateway) GetAdministrators(ctx context.Context, chatID int64) ([]int64, error) {
	if f.adminErr != nil {
		return nil, f.adminErr
	}
	return f.admins, nil
}

func (f *fakeGateway) GetMember(ctx context.Context, chatID, userID int64) (chat.MemberStatus, error) {
	return chat.MemberStatusMember, nil
}

var testKey = topicdomain.TopicKey{ChatID: -200, ThreadID: 3}

func TestRun_DeletesOnlyNonAdmins(t *testing.T) {
	gw := &fakeGateway{admins: []int64{2}}
	svc := New(gw, admin.NewCache(gw, time.Minute))

	svc.Collect(testKey, 10, 1) // non-admin
	svc.Collect(testKey, 11, 2) // admin
	svc.Run(context.Background(), testKey)

	assert.Equal(t, []int{10}, gw.deleted)
	assert.Zero(t, svc.PendingCount(testKey))
}

func TestRun_EmptyAccumulationIsNoop(t *testing.T) {
	gw := &fakeGateway{admins: []int64{2}}
	svc := New(gw, admin.NewCache(gw, time.Minute))

	svc.Run(context.Background(), testKey)
	assert.Empty(t, gw.deleted)
}

func TestRun_AbortsWithoutClearingWhenAdminsUnknown(t *testing.T) {
	gw := &fakeGateway{adminErr: errors.New("fetch failed")}
	svc := New(gw, admin.NewCache(gw, time.Minute))

	svc.Collect(testKey, 10, 1)
	svc.Run(context.Background(), testKey)

	// nothing deleted, accumulation kept for the next cycle
	assert.Empty(t, gw.deleted)
	assert.Equal(t, 1, svc.PendingCount(testKey))

	// next cycle with a healthy gateway sweeps the kept entry
	gw.adminErr = nil
	gw.admins = []int64{2}
	svc.Run(context.Background(), testKey)
	assert.Equal(t, []int{10}, gw.deleted)
	assert.Zero(t, svc.PendingCount(testKey))
}

func TestRun_IndividualDeleteFailuresAreNotFatal(t *testing.T) {
	gw := &fakeGateway{
		admins:    []int64{99},
		deleteErr: map[int]error{10: errors.New("already gone")},
	}
	svc := New(gw, admin.NewCache(gw, time.Minute))

	svc.Collect(testKey, 10, 1)
	svc.Collect(testKey, 11, 1)
	svc.Run(context.Background(), testKey)

	assert.Equal(t, []int{11}, gw.deleted)
	assert.Zero(t, svc.PendingCount(testKey))
}
