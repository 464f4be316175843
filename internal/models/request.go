package models

import "time"

// Place is a single stop on a route: a display address plus optional coordinates.
type Place struct {
	Address string   `json:"address" validate:"required"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

// Route describes the journey of a transport request.
type Route struct {
	Origin      Place   `json:"origin"`
	Destination Place   `json:"destination"`
	Waypoints   []Place `json:"waypoints,omitempty"`
}

// Party describes who is travelling.
type Party struct {
	Adults       int   `json:"adults"`
	Children     int   `json:"children"`
	ChildSeats   bool  `json:"child_seats,omitempty"`
	ChildrenAges []int `json:"children_ages,omitempty"`
}

// Options is the fixed set of amenity flags a passenger can ask for.
type Options struct {
	Wifi            bool `json:"wifi"`
	Restroom        bool `json:"restroom"`
	TV              bool `json:"tv"`
	AirConditioning bool `json:"air_conditioning"`
	PowerOutlet     bool `json:"power_outlet"`
}

// Request is a passenger's group transport solicitation.
// Route and Options are stored as JSONB.
type Request struct {
	ID         string        `json:"id" db:"id"`
	UserID     string        `json:"user_id" db:"user_id"`
	UserEmail  string        `json:"user_email" db:"user_email"`
	Route      Route         `json:"route" db:"route"`
	Date       string        `json:"date" db:"date"` // YYYY-MM-DD
	Time       string        `json:"time" db:"time"` // HH:MM
	Party      Party         `json:"party" db:"party"`
	Options    Options       `json:"options" db:"options"`
	Status     RequestStatus `json:"status" db:"status"`
	OfferCount int           `json:"offer_count,omitempty" db:"-"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at" db:"updated_at"`
}

// IsOwnedBy matches the caller against the request's owner. The email is
// kept as a secondary lookup key for accounts created before stable user ids.
func (r *Request) IsOwnedBy(userID, email string) bool {
	if userID != "" && r.UserID == userID {
		return true
	}
	return email != "" && r.UserEmail == email
}

// CreateRequestRequest is the request body for publishing a new request.
type CreateRequestRequest struct {
	Route   Route   `json:"route" validate:"required"`
	Date    string  `json:"date" validate:"required,datetime=2006-01-02"`
	Time    string  `json:"time" validate:"required"`
	Party   Party   `json:"party" validate:"required"`
	Options Options `json:"options"`
}

// UpdateRequestStatusRequest is the request body for a manual status change.
type UpdateRequestStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// PaymentRequest is the request body for paying for an accepted offer.
type PaymentRequest struct {
	PaymentMethodID string `json:"payment_method_id" validate:"required"`
}
