package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookedItemIDAcceptsIDOrDocument(t *testing.T) {
	var plain, populated, mongo, missing Booking
	require.NoError(t, json.Unmarshal([]byte(`{"id":"b1","bookedItem":"car-7"}`), &plain))
	require.NoError(t, json.Unmarshal([]byte(`{"id":"b2","bookedItem":{"id":"car-8","make":"Fiat"}}`), &populated))
	require.NoError(t, json.Unmarshal([]byte(`{"id":"b3","bookedItem":{"_id":"car-9"}}`), &mongo))
	require.NoError(t, json.Unmarshal([]byte(`{"id":"b4","bookedItem":null}`), &missing))

	assert.Equal(t, "car-7", plain.BookedItemID())
	assert.Equal(t, "car-8", populated.BookedItemID())
	assert.Equal(t, "car-9", mongo.BookedItemID())
	assert.Equal(t, "", missing.BookedItemID())
}

func TestRoomLabelNumberOrString(t *testing.T) {
	var r Room
	require.NoError(t, json.Unmarshal([]byte(`{"id":"r1","price":120,"roomNumbers":[{"number":101},{"number":"12B"}]}`), &r))
	require.Len(t, r.RoomNumbers, 2)
	assert.Equal(t, RoomLabel("101"), r.RoomNumbers[0].Number)
	assert.Equal(t, RoomLabel("12B"), r.RoomNumbers[1].Number)

	_, ok := r.FindNumber("12B")
	assert.True(t, ok)
	_, ok = r.FindNumber("999")
	assert.False(t, ok)
}

func TestCreateBookingRequestEncoding(t *testing.T) {
	body, err := json.Marshal(CreateBookingRequest{
		BookingType:  BookingHotel,
		BookedItemID: "h1",
		RoomID:       "r1",
		RoomNumber:   "101",
		StartDate:    "2025-03-01",
		EndDate:      "2025-03-04",
		TotalPrice:   300,
		Passengers:   2,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"bookingType":"hotel","bookedItemId":"h1","roomId":"r1","roomNumber":101,
		"startDate":"2025-03-01","endDate":"2025-03-04","totalPrice":300,"passengers":2}`, string(body))

	body, err = json.Marshal(CreateBookingRequest{BookingType: BookingFlight, BookedItemID: "f1", StartDate: "2025-03-01", TotalPrice: 600, Passengers: 3})
	require.NoError(t, err)
	assert.NotContains(t, string(body), "roomNumber")
	assert.NotContains(t, string(body), "endDate")

	body, err = json.Marshal(CreateBookingRequest{RoomNumber: "007"})
	require.NoError(t, err)
	assert.Contains(t, string(body), `"roomNumber":"007"`)
}
