package service

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/mkorobov/daily-topic-bot/internal/chat"
	"github.com/mkorobov/daily-topic-bot/internal/modules/admin"
	topicdomain "github.com/mkorobov/daily-topic-bot/internal/modules/topic/domain"
	topicrepo "github.com/mkorobov/daily-topic-bot/internal/modules/topic/repository"
)

// Decision is the outcome of running one message through the pipeline.
type Decision int

const (
	DecisionPass Decision = iota
	DecisionDeleted
	DecisionReplied
)

func (d Decision) String() string {
	switch d {
	case DecisionDeleted:
		return "deleted"
	case DecisionReplied:
		return "replied"
	default:
		return "pass"
	}
}

// Message is one inbound group message event.
type Message struct {
	Key         topicdomain.TopicKey
	MessageID   int
	AuthorID    int64
	AuthorIsBot bool
	Private     bool
	Text        string
}

// Collector receives message references for the end-of-day cleanup sweep.
type Collector interface {
	Collect(key topicdomain.TopicKey, messageID int, authorID int64)
}

// Service is the per-message rule pipeline. Rules run in a fixed priority
// order and the first rule that acts stops processing: silence window,
// auto-delete window, stop words, auto-responses.
type Service struct {
	topics    topicrepo.Repository
	gw        chat.Gateway
	admins    *admin.Cache
	collector Collector
	loc       *time.Location
	now       func() time.Time
}

// New creates the rule pipeline. collector may be nil when no cleanup
// topics are in use.
func New(topics topicrepo.Repository, gw chat.Gateway, admins *admin.Cache, collector Collector, loc *time.Location) *Service {
	return &Service{
		topics:    topics,
		gw:        gw,
		admins:    admins,
		collector: collector,
		loc:       loc,
		now:       time.Now,
	}
}

// Process evaluates one inbound message and performs at most one side
// effect. Messages from private chats and from bots are ignored entirely.
// Gateway failures are logged and treated as "rule satisfied": processing
// still stops at that rule, since a permission failure would recur for
// every later rule too.
func (s *Service) Process(ctx context.Context, msg Message) Decision {
	if msg.Private || msg.AuthorIsBot {
		return DecisionPass
	}

	topic, err := s.topics.GetTopic(msg.Key)
	if err != nil {
		// unregistered topic, nothing to enforce
		return DecisionPass
	}

	decision := s.evaluate(ctx, topic, msg)

	// Deleted messages leave nothing to collect; everything else in a
	// cleanup topic from a non-admin author is queued for the sweep.
	if decision != DecisionDeleted && topic.CleanupTime != nil && s.collector != nil {
		if !s.admins.IsAdmin(ctx, msg.Key.ChatID, msg.AuthorID) {
			s.collector.Collect(msg.Key, msg.MessageID, msg.AuthorID)
		}
	}

	return decision
}

func (s *Service) evaluate(ctx context.Context, topic *topicdomain.Topic, msg Message) Decision {
	now := s.now().In(s.loc)
	text := strings.ToLower(msg.Text)

	// 1. Silence window: delete everything, administrators included.
	if topic.SilentWindow != nil && topic.SilentWindow.Contains(now) {
		s.delete(ctx, msg, "silence window")
		return DecisionDeleted
	}

	// 2. Auto-delete window: delete non-admin messages. An empty admin set
	// means "cannot verify", so the rule is skipped rather than risk
	// deleting an administrator's message.
	if topic.AutoDeleteWindow != nil && topic.AutoDeleteWindow.Contains(now) {
		admins := s.admins.AdminIDs(ctx, msg.Key.ChatID)
		if len(admins) > 0 {
			if _, isAdmin := admins[msg.AuthorID]; !isAdmin {
				s.delete(ctx, msg, "auto-delete window")
				return DecisionDeleted
			}
		}
	}

	// 3. Stop words: whole-word match, independent of admin status.
	if word, found := matchStopWord(text, topic.StopWords); found {
		s.delete(ctx, msg, "stop word "+word)
		return DecisionDeleted
	}

	// 4. Auto-responses: first keyword found as a substring wins.
	for _, ar := range topic.AutoResponses {
		if strings.Contains(text, strings.ToLower(ar.Keyword)) {
			if _, err := s.gw.Reply(ctx, msg.Key, msg.MessageID, ar.Reply); err != nil {
				slog.Error("Failed to send auto-response",
					"topic", msg.Key.String(), "keyword", ar.Keyword, "error", err)
			} else {
				slog.Info("Auto-response sent", "topic", msg.Key.String(), "keyword", ar.Keyword)
			}
			return DecisionReplied
		}
	}

	return DecisionPass
}

func (s *Service) delete(ctx context.Context, msg Message, reason string) {
	if err := s.gw.DeleteMessage(ctx, msg.Key.ChatID, msg.MessageID); err != nil {
		slog.Warn("Failed to delete message",
			"topic", msg.Key.String(), "message_id", msg.MessageID, "reason", reason, "error", err)
		return
	}
	slog.Info("Deleted message", "topic", msg.Key.String(), "message_id", msg.MessageID, "reason", reason)
}

// stopWordPatterns caches one compiled pattern per stop word, so a busy
// chat does not recompile on every message. Words are user-configured and
// few, the cache stays small.
var stopWordPatterns sync.Map

// stopWordPattern compiles a whole-word pattern for word. regexp's \b is
// ASCII-only and never matches next to Cyrillic runes, so the boundary is
// spelled out as "not a letter, digit or underscore" instead.
func stopWordPattern(word string) (*regexp.Regexp, error) {
	if cached, ok := stopWordPatterns.Load(word); ok {
		return cached.(*regexp.Regexp), nil
	}

	pattern, err := regexp.Compile(`(?:\A|[^\p{L}\p{N}_])` + regexp.QuoteMeta(word) + `(?:[^\p{L}\p{N}_]|\z)`)
	if err != nil {
		return nil, err
	}
	stopWordPatterns.Store(word, pattern)
	return pattern, nil
}

// matchStopWord reports the first stop word found as a whole word in text.
// Words are stored lowercase and text arrives lowercased.
func matchStopWord(text string, words []string) (string, bool) {
	for _, w := range words {
		pattern, err := stopWordPattern(strings.ToLower(w))
		if err != nil {
			continue
		}
		if pattern.MatchString(text) {
			return w, true
		}
	}
	return "", false
}
