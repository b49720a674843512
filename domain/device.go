package domain

import "time"

// Device binds a physical reader to a user. A device identifier belongs to
// exactly one user at a time; re-authorizing under a different account moves
// the binding to the new owner.
type Device struct {
	ID           string    `bson:"_id" json:"id"`
	DeviceID     string    `bson:"device_id" json:"device_id"`
	UserID       string    `bson:"user_id" json:"user_id"`
	BoundAt      time.Time `bson:"bound_at" json:"bound_at"`
	LastActiveAt time.Time `bson:"last_active_at" json:"last_active_at"`
}
