package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mkorobov/daily-topic-bot/internal/chat"
	"github.com/mkorobov/daily-topic-bot/internal/modules/admin"
	topicdomain "github.com/mkorobov/daily-topic-bot/internal/modules/topic/domain"
)

// Entry is one accumulated message reference awaiting the sweep.
type Entry struct {
	MessageID int
	AuthorID  int64
}

// Service accumulates message references per cleanup topic during the day
// and deletes the non-administrator ones when the topic's sweep fires.
// Accumulations are transient working state: they are rebuilt empty on
// restart and cleared on every sweep.
type Service struct {
	gw     chat.Gateway
	admins *admin.Cache

	mu      sync.Mutex
	pending map[topicdomain.TopicKey][]Entry
}

// New creates the cleanup engine.
func New(gw chat.Gateway, admins *admin.Cache) *Service {
	return &Service{
		gw:      gw,
		admins:  admins,
		pending: make(map[topicdomain.TopicKey][]Entry),
	}
}

// Collect appends one message reference to the topic's accumulation.
// Called from message ingestion, so it only takes the in-memory lock.
func (s *Service) Collect(key topicdomain.TopicKey, messageID int, authorID int64) {
	s.mu.Lock()
	s.pending[key] = append(s.pending[key], Entry{MessageID: messageID, AuthorID: authorID})
	s.mu.Unlock()
}

// PendingCount reports the current accumulation size for a topic.
func (s *Service) PendingCount(key topicdomain.TopicKey) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending[key])
}

// Run executes the sweep for one topic: fetch the admin set once, delete
// every accumulated non-admin message, then drop the swept entries. When
// the admin set cannot be verified the sweep aborts and keeps the
// accumulation for the next cycle instead of silently discarding it.
func (s *Service) Run(ctx context.Context, key topicdomain.TopicKey) {
	s.mu.Lock()
	entries := s.pending[key]
	s.mu.Unlock()

	if len(entries) == 0 {
		return
	}

	adminIDs := s.admins.AdminIDs(ctx, key.ChatID)
	if len(adminIDs) == 0 {
		slog.Warn("Cleanup sweep aborted, administrator set unavailable",
			"topic", key.String(), "pending", len(entries))
		return
	}

	deleted := 0
	for _, e := range entries {
		if _, isAdmin := adminIDs[e.AuthorID]; isAdmin {
			continue
		}
		if err := s.gw.DeleteMessage(ctx, key.ChatID, e.MessageID); err != nil {
			slog.Warn("Cleanup sweep failed to delete message",
				"topic", key.String(), "message_id", e.MessageID, "error", err)
			continue
		}
		deleted++
	}

	// drop exactly the swept prefix; references collected during the sweep
	// stay queued for the next cycle
	s.mu.Lock()
	s.pending[key] = s.pending[key][len(entries):]
	if len(s.pending[key]) == 0 {
		delete(s.pending, key)
	}
	s.mu.Unlock()

	slog.Info("Cleanup sweep finished", "topic", key.String(), "swept", len(entries), "deleted", deleted)
}
