package reservation

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ComputePrice returns rate * units without rounding. Rounding to currency
// precision happens only when a total is displayed.
func ComputePrice(rate float64, units int) (float64, error) {
	if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, ErrInvalidRate
	}
	if units < 1 {
		return 0, ErrInvalidUnits
	}
	return rate * float64(units), nil
}

// Nights counts billable nights between two dates: the number of calendar
// days in the inclusive range minus one. Hotels and car rentals share this
// convention; a range that yields less than one night is invalid, and so is
// one longer than MaxStayNights.
func Nights(start, end time.Time) (int, error) {
	n := daySpan(start, end) - 1
	if n < 1 {
		return 0, ErrInvalidRange
	}
	if n > MaxStayNights {
		return 0, ErrStayTooLong
	}
	return int(n), nil
}

// CheckStay runs Nights and records a failure on verr under endField.
func CheckStay(startField, endField string, start, end time.Time, verr *ValidationError) int {
	n, err := Nights(start, end)
	switch {
	case errors.Is(err, ErrStayTooLong):
		verr.Add(endField, fmt.Sprintf("must be at most %d days after %s", MaxStayNights, startField))
	case err != nil:
		verr.Add(endField, "must be at least one day after "+startField)
	}
	return n
}

// Headcount checks a passenger or participant count against the capacity
// still left on a flight or tour.
func Headcount(n, capacityRemaining int) (int, error) {
	if n < 1 {
		return 0, ErrInvalidHeadcount
	}
	if n > capacityRemaining {
		return 0, ErrCapacityExceeded
	}
	return n, nil
}

// RoundCurrency rounds to two decimals. Display only.
func RoundCurrency(x float64) float64 {
	return math.Round(x*100) / 100
}

// QuoteLine is one priced unit of a booking, e.g. a single hotel room number.
type QuoteLine struct {
	Label  string  `json:"label"`
	Rate   float64 `json:"rate"`
	Units  int     `json:"units"`
	Amount float64 `json:"amount"`
}

// NewQuoteLine prices a single line.
func NewQuoteLine(label string, rate float64, units int) (QuoteLine, error) {
	amount, err := ComputePrice(rate, units)
	if err != nil {
		return QuoteLine{}, err
	}
	return QuoteLine{Label: label, Rate: rate, Units: units, Amount: amount}, nil
}

// Quote is the priced breakdown of a booking request. Total is the sum of
// the unrounded line amounts.
type Quote struct {
	Lines []QuoteLine `json:"lines"`
	Total float64     `json:"total"`
}

func NewQuote(lines ...QuoteLine) Quote {
	q := Quote{Lines: lines}
	for _, l := range lines {
		q.Total += l.Amount
	}
	return q
}

// DisplayTotal is the total rounded to currency precision.
func (q Quote) DisplayTotal() float64 { return RoundCurrency(q.Total) }
