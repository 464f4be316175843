// Package models defines the data structures shared across the marketplace.
package models

import "time"

// Vehicle represents a bus or van a driver offers trips with.
type Vehicle struct {
	ID          string    `json:"id" db:"id"`
	DriverID    string    `json:"driver_id" db:"driver_id"`
	Make        string    `json:"make" db:"make"`
	Model       string    `json:"model" db:"model"`
	Seats       int       `json:"seats" db:"seats"`
	PlateNumber string    `json:"plate_number" db:"plate_number"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// AddVehicleRequest is the request body for a driver registering a vehicle.
type AddVehicleRequest struct {
	Make        string `json:"make" validate:"required,min=2,max=50"`
	Model       string `json:"model" validate:"required,min=1,max=50"`
	Seats       int    `json:"seats" validate:"required,min=1,max=100"`
	PlateNumber string `json:"plate_number" validate:"required,min=2,max=20"`
}

// Description renders the display string shown next to an offer.
func (v *Vehicle) Description() string {
	if v.Make == "" && v.Model == "" {
		return ""
	}
	return v.Make + " " + v.Model
}
