package utils

import "time"

// RoomCachePrefix is the prefix used for Redis room catalog keys.
const RoomCachePrefix = "rooms:"

// Event types published on the booking events channel.
const (
	EventBookingCreated       = "booking.created"
	EventBookingConfirmed     = "booking.confirmed"
	EventBookingFailed        = "booking.failed"
	EventBookingCancelled     = "booking.cancelled"
	EventBookingExpired       = "booking.expired"
	EventBookingInconsistency = "booking.inconsistency"
)

// Store calls outside a request context are bounded by this timeout.
const StoreTimeout = 5 * time.Second
