package models

import "time"

// Booking statuses.
const (
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// Booking is a passenger reservation on a trip.
type Booking struct {
	ID            int64     `bson:"id" json:"id"`
	TripID        int64     `bson:"tripId" json:"tripId"`
	PassengerName string    `bson:"passengerName" json:"passengerName"`
	Seats         int       `bson:"seats" json:"seats"`
	Status        string    `bson:"status" json:"status"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	CancelledAt   time.Time `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
}
