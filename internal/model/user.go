// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a reddit account that has logged in to Daily3 at least once.
//
// The reddit username is the primary key: reddit guarantees it is unique and
// it is what appears in profile URLs (/u/{username}).
//
// AccessToken and RefreshToken hold the reddit OAuth pair in sealed form.
// Only auth.TokenStore can open them.
type User struct {
	Username          string    `json:"username"`
	CreatedAtProvider time.Time `json:"createdAtProvider"` // when the reddit account was created
	CreatedAtLocal    time.Time `json:"createdAtLocal"`    // first Daily3 login; never updated
	AccessToken       string    `json:"-"`
	RefreshToken      string    `json:"-"`
}
