package errors

import "errors"

var (
	ErrMissingBotToken = errors.New("TELEGRAM_BOT_TOKEN environment variable is required")
	ErrTopicNotFound   = errors.New("topic not found")
	ErrInvalidTime     = errors.New("invalid time, expected HH:MM in 24-hour clock")
	ErrInvalidWindow   = errors.New("invalid time window, expected HH:MM-HH:MM")
)
