package models

import "time"

// NotificationType is the closed set of notification categories.
type NotificationType string

const (
	NotificationNewOffer         NotificationType = "new_offer"
	NotificationOfferAccepted    NotificationType = "offer_accepted"
	NotificationPaymentConfirmed NotificationType = "payment_confirmed"
	NotificationInfo             NotificationType = "info"
)

// Notification is an in-app message generated as a side effect of an
// offer state transition. It is never created directly by a user action.
type Notification struct {
	ID        string           `json:"id" db:"id"`
	UserID    string           `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	Link      string           `json:"link,omitempty" db:"link"`
	Read      bool             `json:"read" db:"read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}
