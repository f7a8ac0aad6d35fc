// Package reservation holds the booking rules the gateway enforces before
// anything is sent upstream: calendar-day arithmetic, availability against
// blocked dates, pricing, mock payment-field validation and the booking
// lifecycle. Everything here is pure; no function performs I/O.
package reservation

import (
	"sort"
	"strings"
	"time"
)

// dayLayout is the ISO calendar-day form used for every blocked-date key.
const dayLayout = "2006-01-02"

// ParseDay accepts a plain YYYY-MM-DD date or an RFC3339 timestamp and
// returns midnight UTC of that calendar day. Timestamps are reduced to their
// UTC date, so "2025-04-11T00:00:00.000Z" and "2025-04-11" are the same day.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	if t, err := time.Parse(dayLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return toDay(t), nil
}

// DayKey formats the UTC calendar day of t as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return toDay(t).Format(dayLayout)
}

// MaxStayNights bounds any booked or searched range.
const MaxStayNights = 365

const secondsPerDay = 24 * 60 * 60

// daySpan returns the number of calendar days from start to end, both
// inclusive, without enumerating them. It is 0 when either bound is unset or
// start is after end.
func daySpan(start, end time.Time) int64 {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	from, to := toDay(start).Unix(), toDay(end).Unix()
	if from > to {
		return 0
	}
	return (to-from)/secondsPerDay + 1
}

// DaysInRange enumerates every calendar day from start to end, both
// inclusive. It returns nil when either bound is unset or start is after end,
// and also when the range is longer than a maximum stay.
func DaysInRange(start, end time.Time) []time.Time {
	n := daySpan(start, end)
	if n == 0 || n > MaxStayNights+1 {
		return nil
	}
	days := make([]time.Time, 0, n)
	for d := toDay(start); int64(len(days)) < n; d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func toDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// BlockedDates is the unordered set of calendar days on which a car or a
// hotel room number cannot be booked.
type BlockedDates map[string]struct{}

// NewBlockedDates builds a set from already parsed days.
func NewBlockedDates(days ...time.Time) BlockedDates {
	b := make(BlockedDates, len(days))
	for _, d := range days {
		if d.IsZero() {
			continue
		}
		b[DayKey(d)] = struct{}{}
	}
	return b
}

// ParseBlockedDates normalises the raw date strings returned by the API.
// A malformed entry rejects the whole set so a bad payload can never make a
// resource look free.
func ParseBlockedDates(raw []string) (BlockedDates, error) {
	b := make(BlockedDates, len(raw))
	for _, s := range raw {
		d, err := ParseDay(s)
		if err != nil {
			return nil, err
		}
		b[DayKey(d)] = struct{}{}
	}
	return b, nil
}

// Contains reports whether the calendar day of t is blocked.
func (b BlockedDates) Contains(t time.Time) bool {
	_, ok := b[DayKey(t)]
	return ok
}

func (b BlockedDates) Len() int { return len(b) }

// Keys returns the blocked days in ascending order.
func (b BlockedDates) Keys() []string {
	out := make([]string, 0, len(b))
	for k := range b {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
