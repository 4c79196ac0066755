package domain

import "time"

// Claims is the decoded payload of a bearer token. It is either UserClaims
// or AdminClaims; the concrete type is decided once, when the token is decoded.
type Claims interface {
	// Subject returns the principal email carried in the sub claim.
	Subject() string
	// ExpiresAt returns the exp claim.
	ExpiresAt() time.Time
	claims()
}

// UserClaims identify a registered member.
type UserClaims struct {
	Email    string
	IssuedAt time.Time
	Expiry   time.Time
}

func (c UserClaims) Subject() string      { return c.Email }
func (c UserClaims) ExpiresAt() time.Time { return c.Expiry }
func (UserClaims) claims()                {}

// AdminClaims identify an administrator and carry its numeric id.
type AdminClaims struct {
	Email    string
	AdminID  int64
	IssuedAt time.Time
	Expiry   time.Time
}

func (c AdminClaims) Subject() string      { return c.Email }
func (c AdminClaims) ExpiresAt() time.Time { return c.Expiry }
func (AdminClaims) claims()                {}

// IssuedToken is a signed bearer token with its expiry.
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}
