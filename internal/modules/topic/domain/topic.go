package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/oops"
)

// TopicKey identifies a moderated target: a chat plus an optional forum
// topic. ThreadID 0 means the chat's main message stream.
type TopicKey struct {
	ChatID   int64 `json:"chat_id"`
	ThreadID int   `json:"thread_id"`
}

func (k TopicKey) String() string {
	return fmt.Sprintf("%d_%d", k.ChatID, k.ThreadID)
}

// ParseTopicKey parses the "<chatID>_<threadID>" form produced by String.
func ParseTopicKey(s string) (TopicKey, error) {
	idx := strings.LastIndex(s, "_")
	if idx <= 0 {
		return TopicKey{}, oops.Errorf("malformed topic key: %q", s)
	}
	chatID, err := strconv.ParseInt(s[:idx], 10, 64)
	if err != nil {
		return TopicKey{}, oops.With("key", s).Wrap(err)
	}
	threadID, err := strconv.Atoi(s[idx+1:])
	if err != nil {
		return TopicKey{}, oops.With("key", s).Wrap(err)
	}
	return TopicKey{ChatID: chatID, ThreadID: threadID}, nil
}

// AutoResponse maps a keyword to a canned reply. Responses are kept as an
// ordered slice: the first keyword found in a message wins.
type AutoResponse struct {
	Keyword string `json:"keyword"`
	Reply   string `json:"reply"`
}

// Topic is a registered moderation target together with all of its
// per-topic rule settings. Removing a topic removes the whole document, so
// no setting can outlive its topic.
type Topic struct {
	Key              TopicKey       `json:"key"`
	Name             string         `json:"name"`
	SilentWindow     *TimeWindow    `json:"silent_window,omitempty"`
	AutoDeleteWindow *TimeWindow    `json:"auto_delete_window,omitempty"`
	StopWords        []string       `json:"stop_words,omitempty"`
	AutoResponses    []AutoResponse `json:"auto_responses,omitempty"`
	CleanupTime      *DayTime       `json:"cleanup_time,omitempty"`
	RegisteredAt     time.Time      `json:"registered_at"`
}
