package reservation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCard() CardFields {
	return CardFields{
		CardNumber:     "4242 4242 4242 4242",
		ExpiryDate:     "09/27",
		CVC:            "123",
		CardholderName: "Ada Lovelace",
	}
}

func TestCardFieldsValid(t *testing.T) {
	assert.NoError(t, validCard().Validate())

	c := validCard()
	c.CVC = "1234"
	assert.NoError(t, c.Validate())
}

func TestCardFieldsInvalid(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(*CardFields)
		field string
	}{
		{"15 digit card", func(c *CardFields) { c.CardNumber = "4242 4242 4242 424" }, "cardNumber"},
		{"17 digit card", func(c *CardFields) { c.CardNumber = "42424242424242421" }, "cardNumber"},
		{"letters in card", func(c *CardFields) { c.CardNumber = "4242-4242-4242-4242" }, "cardNumber"},
		{"month 13", func(c *CardFields) { c.ExpiryDate = "13/27" }, "expiryDate"},
		{"missing slash", func(c *CardFields) { c.ExpiryDate = "0927" }, "expiryDate"},
		{"four digit year", func(c *CardFields) { c.ExpiryDate = "09/2027" }, "expiryDate"},
		{"two digit cvc", func(c *CardFields) { c.CVC = "12" }, "cvc"},
		{"five digit cvc", func(c *CardFields) { c.CVC = "12345" }, "cvc"},
		{"blank name", func(c *CardFields) { c.CardholderName = "   " }, "cardholderName"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validCard()
			tc.edit(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Len(t, verr.Fields, 1)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}
}

func TestCardFieldsReportsEveryField(t *testing.T) {
	var verr *ValidationError
	require.True(t, errors.As(CardFields{}.Validate(), &verr))
	assert.Len(t, verr.Fields, 4)
}

func TestCardFieldsLast4(t *testing.T) {
	assert.Equal(t, "4242", validCard().Last4())
	assert.Equal(t, "", CardFields{CardNumber: "12"}.Last4())
}
