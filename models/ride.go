package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RideStatusOpen      = "open"
	RideStatusFull      = "full"
	RideStatusClosed    = "closed"
	RideStatusCancelled = "cancelled"

	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

type Ride struct {
	gorm.Model
	DriverID       uint      `json:"driverId" gorm:"not null;index"`
	Driver         User      `json:"driver" gorm:"foreignKey:DriverID"`
	Origin         string    `json:"origin" gorm:"not null"`
	Destination    string    `json:"destination" gorm:"not null"`
	OriginLat      float64   `json:"originLat" gorm:"type:decimal(10,8)"`
	OriginLng      float64   `json:"originLng" gorm:"type:decimal(11,8)"`
	DestinationLat float64   `json:"destinationLat" gorm:"type:decimal(10,8)"`
	DestinationLng float64   `json:"destinationLng" gorm:"type:decimal(11,8)"`
	DepartureTime  time.Time `json:"departureTime" gorm:"not null;index"`
	SeatsTotal     int       `json:"seatsTotal" gorm:"not null"`
	// Decremented by bookings through a conditional update, never below zero.
	SeatsAvailable int           `json:"seatsAvailable" gorm:"not null"`
	PricePerSeat   float64       `json:"pricePerSeat" gorm:"type:decimal(10,2)"`
	Notes          string        `json:"notes" gorm:"type:text"`
	Status         string        `json:"status" gorm:"not null;default:'open';type:varchar(20)"`
	Bookings       []RideBooking `json:"bookings,omitempty" gorm:"foreignKey:RideID"`
}

type RideBooking struct {
	gorm.Model
	RideID      uint   `json:"rideId" gorm:"not null;uniqueIndex:idx_ride_passenger"`
	Ride        Ride   `json:"ride,omitempty" gorm:"foreignKey:RideID"`
	PassengerID uint   `json:"passengerId" gorm:"not null;uniqueIndex:idx_ride_passenger"`
	Passenger   User   `json:"passenger" gorm:"foreignKey:PassengerID"`
	Seats       int    `json:"seats" gorm:"not null;default:1"`
	Status      string `json:"status" gorm:"not null;default:'confirmed';type:varchar(20)"`
}
