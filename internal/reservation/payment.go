package reservation

import (
	"regexp"
	"strings"
)

var (
	cardNumberRe = regexp.MustCompile(`^\d{16}$`)
	expiryRe     = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvcRe        = regexp.MustCompile(`^\d{3,4}$`)
)

// CardFields is the mock payment form. Validate checks shape only: no real
// charge happens anywhere in this system and the upstream API performs the
// authoritative check, so passing Validate says nothing about whether the
// card exists.
type CardFields struct {
	CardNumber     string `json:"cardNumber"`
	ExpiryDate     string `json:"expiryDate"`
	CVC            string `json:"cvc"`
	CardholderName string `json:"cardholderName"`
}

// Normalized strips formatting spaces from the card number and trims the
// other fields.
func (c CardFields) Normalized() CardFields {
	return CardFields{
		CardNumber:     strings.ReplaceAll(strings.TrimSpace(c.CardNumber), " ", ""),
		ExpiryDate:     strings.TrimSpace(c.ExpiryDate),
		CVC:            strings.TrimSpace(c.CVC),
		CardholderName: strings.TrimSpace(c.CardholderName),
	}
}

// Validate reports every malformed field at once.
func (c CardFields) Validate() error {
	n := c.Normalized()
	verr := &ValidationError{}
	if !cardNumberRe.MatchString(n.CardNumber) {
		verr.Add("cardNumber", "must be exactly 16 digits")
	}
	if !expiryRe.MatchString(n.ExpiryDate) {
		verr.Add("expiryDate", "must match MM/YY")
	}
	if !cvcRe.MatchString(n.CVC) {
		verr.Add("cvc", "must be 3 or 4 digits")
	}
	if n.CardholderName == "" {
		verr.Add("cardholderName", "is required")
	}
	return verr.OrNil()
}

// Last4 is the only part of the card number that may appear in logs.
func (c CardFields) Last4() string {
	n := c.Normalized().CardNumber
	if len(n) < 4 {
		return ""
	}
	return n[len(n)-4:]
}
