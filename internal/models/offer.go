package models

import "time"

// Offer is a driver's priced response to a request.
//
// DriverName, DriverEmail, DriverPhone and Vehicle are denormalized display
// fields resolved by join at read time; they are empty when the secondary
// lookup does not resolve and are never written back.
type Offer struct {
	ID          string      `json:"id" db:"id"`
	RequestID   string      `json:"request_id" db:"request_id"`
	DriverID    string      `json:"driver_id" db:"driver_id"`
	VehicleID   string      `json:"vehicle_id,omitempty" db:"vehicle_id"`
	Price       float64     `json:"price" db:"price"`
	Message     string      `json:"message,omitempty" db:"message"`
	Status      OfferStatus `json:"status" db:"status"`
	DriverName  string      `json:"driver_name,omitempty" db:"-"`
	DriverEmail string      `json:"driver_email,omitempty" db:"-"`
	DriverPhone string      `json:"driver_phone,omitempty" db:"-"`
	Vehicle     string      `json:"vehicle,omitempty" db:"-"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// SubmitOfferRequest is the request body for a driver submitting an offer.
type SubmitOfferRequest struct {
	Price     float64 `json:"price" validate:"required,gt=0"`
	Message   string  `json:"message,omitempty" validate:"max=1000"`
	VehicleID string  `json:"vehicle_id,omitempty" validate:"omitempty,uuid"`
}
