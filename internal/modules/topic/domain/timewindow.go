package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	sharederrors "github.com/mkorobov/daily-topic-bot/internal/shared/errors"
	"github.com/samber/oops"
)

// DayTime is a wall-clock instant within a day, interpreted in the bot's
// fixed time zone.
type DayTime struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (t DayTime) Validate() error {
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return oops.With("hour", t.Hour, "minute", t.Minute).Wrap(sharederrors.ErrInvalidTime)
	}
	return nil
}

func (t DayTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t DayTime) minuteOfDay() int {
	return t.Hour*60 + t.Minute
}

// ParseDayTime parses "HH:MM" and validates the 24-hour clock range.
// Anything beyond the two numeric fields is rejected, not ignored.
func ParseDayTime(s string) (DayTime, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return DayTime{}, oops.With("input", s).Wrap(sharederrors.ErrInvalidTime)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return DayTime{}, oops.With("input", s).Wrap(sharederrors.ErrInvalidTime)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return DayTime{}, oops.With("input", s).Wrap(sharederrors.ErrInvalidTime)
	}

	t := DayTime{Hour: hour, Minute: minute}
	if err := t.Validate(); err != nil {
		return DayTime{}, err
	}
	return t, nil
}

// TimeWindow is a daily interval [Start, End). Start >= End is legal and
// means the window wraps past midnight (active overnight).
type TimeWindow struct {
	Start DayTime `json:"start"`
	End   DayTime `json:"end"`
}

func (w TimeWindow) Validate() error {
	if err := w.Start.Validate(); err != nil {
		return err
	}
	return w.End.Validate()
}

func (w TimeWindow) String() string {
	return w.Start.String() + "-" + w.End.String()
}

// Contains reports whether now falls inside the window. Only the wall-clock
// components of now matter; callers are responsible for converting now to
// the bot's time zone first.
func (w TimeWindow) Contains(now time.Time) bool {
	cur := now.Hour()*60 + now.Minute()
	start := w.Start.minuteOfDay()
	end := w.End.minuteOfDay()
	if start < end {
		return cur >= start && cur < end
	}
	// overnight
	return cur >= start || cur < end
}

// ParseTimeWindow parses "HH:MM-HH:MM". Malformed input is rejected here,
// at configuration-write time, so evaluation never sees a bad window.
func ParseTimeWindow(s string) (TimeWindow, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(parts) != 2 {
		return TimeWindow{}, oops.With("input", s).Wrap(sharederrors.ErrInvalidWindow)
	}
	start, err := ParseDayTime(parts[0])
	if err != nil {
		return TimeWindow{}, oops.With("input", s).Wrap(sharederrors.ErrInvalidWindow)
	}
	end, err := ParseDayTime(parts[1])
	if err != nil {
		return TimeWindow{}, oops.With("input", s).Wrap(sharederrors.ErrInvalidWindow)
	}
	return TimeWindow{Start: start, End: end}, nil
}
