package domain

import (
	topicdomain "github.com/mkorobov/daily-topic-bot/internal/modules/topic/domain"
)

// Weekday indexes for Schedule.Messages: 0 = Monday .. 6 = Sunday,
// computed in the bot's fixed time zone.

// Schedule holds the daily greeting configuration. At most one target is
// active at a time.
type Schedule struct {
	Enabled    bool                  `json:"enabled"`
	Target     *topicdomain.TopicKey `json:"target,omitempty"`
	SendTime   topicdomain.DayTime   `json:"send_time"`
	DeleteTime topicdomain.DayTime   `json:"delete_time"`
	Messages   map[int]string        `json:"messages"`
}

// LastPosted is the single outstanding greeting reference: created when a
// greeting is sent, destroyed when the paired deletion runs.
type LastPosted struct {
	Target    topicdomain.TopicKey `json:"target"`
	MessageID int                  `json:"message_id"`
}
