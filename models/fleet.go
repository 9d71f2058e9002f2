package models

import "time"

// Vehicle is a bus or van in the fleet.
type Vehicle struct {
	ID           int64     `bson:"id" json:"id"`
	Registration string    `bson:"registration" json:"registration"`
	Capacity     int       `bson:"capacity" json:"capacity"`
	Active       bool      `bson:"active" json:"active"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

// Driver is a member of the driving staff.
type Driver struct {
	ID            int64     `bson:"id" json:"id"`
	Name          string    `bson:"name" json:"name"`
	LicenseNumber string    `bson:"licenseNumber" json:"licenseNumber"`
	Active        bool      `bson:"active" json:"active"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
}
