package models

import "time"

// RevokedToken records the jti of a credential invalidated by logout.
type RevokedToken struct {
	JTI       string
	RevokedAt time.Time
}
