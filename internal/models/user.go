package models

import "time"

// User is the subset of the app user record this service touches: the
// banned flag flipped by the admin ban action.
type User struct {
	UID       string    `json:"uid"`
	Banned    bool      `json:"banned"`
	UpdatedAt time.Time `json:"updated_at"`
}
