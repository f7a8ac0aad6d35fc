package model

import "time"

// Car is a rental car. UnavailableDates holds the raw calendar days on
// which the car is already rented.
type Car struct {
	ID               string   `json:"id"`
	Make             string   `json:"make"`
	Model            string   `json:"model"`
	Year             int      `json:"year,omitempty"`
	Location         string   `json:"location,omitempty"`
	Seats            int      `json:"seats,omitempty"`
	DailyRate        float64  `json:"dailyRate"`
	Photos           []string `json:"photos,omitempty"`
	UnavailableDates []string `json:"unavailableDates"`
}

// Hotel is a property; its bookable inventory lives in Room.
type Hotel struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	City          string   `json:"city"`
	Address       string   `json:"address,omitempty"`
	Description   string   `json:"description,omitempty"`
	Rating        float64  `json:"rating,omitempty"`
	CheapestPrice float64  `json:"cheapestPrice,omitempty"`
	Photos        []string `json:"photos,omitempty"`
	Rooms         []string `json:"rooms,omitempty"`
}

// Room is a room type of a hotel. Price is per night and applies to each
// concrete RoomNumber reserved.
//
// Fields:
//  ID          – room type identifier.
//  HotelID     – owning hotel.
//  Title       – display name, e.g. "Deluxe King".
//  Price       – nightly rate per room number.
//  MaxPeople   – guest limit per room number.
//  RoomNumbers – concrete rooms, each with its own blocked dates.
type Room struct {
	ID          string       `json:"id"`
	HotelID     string       `json:"hotelId,omitempty"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Price       float64      `json:"price"`
	MaxPeople   int          `json:"maxPeople"`
	RoomNumbers []RoomNumber `json:"roomNumbers"`
}

// RoomNumber is a single physical room with its blocked dates.
type RoomNumber struct {
	Number           RoomLabel `json:"number"`
	UnavailableDates []string  `json:"unavailableDates"`
}

// FindNumber returns the room number with the given label.
func (r Room) FindNumber(label RoomLabel) (RoomNumber, bool) {
	for _, rn := range r.RoomNumbers {
		if rn.Number == label {
			return rn, true
		}
	}
	return RoomNumber{}, false
}

// Flight is a scheduled flight; Price is per seat.
type Flight struct {
	ID             string    `json:"id"`
	Airline        string    `json:"airline"`
	FlightNumber   string    `json:"flightNumber"`
	From           string    `json:"from"`
	To             string    `json:"to"`
	DepartureTime  time.Time `json:"departureTime"`
	ArrivalTime    time.Time `json:"arrivalTime"`
	Price          float64   `json:"price"`
	AvailableSeats int       `json:"availableSeats"`
}

// Tour is a guided tour; Price is per participant.
type Tour struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Destination     string  `json:"destination"`
	Description     string  `json:"description,omitempty"`
	Price           float64 `json:"price"`
	DurationDays    int     `json:"duration,omitempty"`
	StartDate       string  `json:"startDate,omitempty"`
	MaxParticipants int     `json:"maxParticipants"`
	AvailableSlots  *int    `json:"availableSlots,omitempty"`
}

// CapacityRemaining is the number of participants the tour can still take.
// Older tour documents carry only MaxParticipants.
func (t Tour) CapacityRemaining() int {
	if t.AvailableSlots != nil {
		return *t.AvailableSlots
	}
	return t.MaxParticipants
}
