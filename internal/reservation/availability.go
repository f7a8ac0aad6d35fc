package reservation

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// IsAvailable reports whether every calendar day from start to end
// (inclusive) is absent from blocked. Missing bounds and inverted ranges fail
// closed: the resource is reported unavailable instead of erroring.
func IsAvailable(blocked BlockedDates, start, end time.Time) bool {
	if daySpan(start, end) == 0 {
		return false
	}
	from, to := DayKey(start), DayKey(end)
	for k := range blocked {
		if inRange(k, from, to) {
			return false
		}
	}
	return true
}

// Conflicts returns the blocked days that fall inside the range, ascending.
func Conflicts(blocked BlockedDates, start, end time.Time) []string {
	if daySpan(start, end) == 0 {
		return nil
	}
	from, to := DayKey(start), DayKey(end)
	var out []string
	for k := range blocked {
		if inRange(k, from, to) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// inRange compares day keys as strings; YYYY-MM-DD orders lexically.
func inRange(key, from, to string) bool {
	return key >= from && key <= to
}

// UnavailableError names the blocked days that made a range unbookable. It
// matches ErrUnavailable with errors.Is.
type UnavailableError struct {
	Resource string
	Dates    []string
}

func (e *UnavailableError) Error() string {
	if len(e.Dates) == 0 {
		return ErrUnavailable.Error()
	}
	return fmt.Sprintf("%s: %s blocked on %s", ErrUnavailable, e.Resource, strings.Join(e.Dates, ", "))
}

func (e *UnavailableError) Unwrap() error { return ErrUnavailable }

// CheckAvailable is IsAvailable with the conflicting days attached to the
// error.
func CheckAvailable(resource string, blocked BlockedDates, start, end time.Time) error {
	if IsAvailable(blocked, start, end) {
		return nil
	}
	return &UnavailableError{Resource: resource, Dates: Conflicts(blocked, start, end)}
}
