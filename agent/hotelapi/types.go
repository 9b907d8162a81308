package hotelapi

import (
	"errors"
	"fmt"
	"net/http"
)

// Guest is the payload accepted by the clients endpoints.
type Guest struct {
	Name            string `json:"name"`
	PhoneNumber     string `json:"phone_number"`
	RoomNumber      string `json:"room_number"`
	SpecialRequests string `json:"special_requests"`
}

// Reservation is the payload accepted by the reservations endpoints.
type Reservation struct {
	Client          int    `json:"client"`
	Restaurant      int    `json:"restaurant"`
	Date            string `json:"date"`
	Meal            string `json:"meal"`
	NumberOfGuests  int    `json:"number_of_guests"`
	SpecialRequests string `json:"special_requests"`
}

// APIError is returned for every response outside the expected statuses.
type APIError struct {
	Op     string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hotel api %s: status=%d", e.Op, e.Status)
}

// IsNotFound reports whether err is an APIError carrying a 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
