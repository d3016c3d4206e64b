package auth

import (
	"errors"
	"time"
)

var ErrInvalidToken = errors.New("invalid auth token")

// Strategy issues and validates session tokens bound to a user id.
type Strategy interface {
	IssueToken(userID int64) (string, error)
	ParseToken(token string) (int64, error)
	Name() string
}

// Options tunes token strategies.
type Options struct {
	TTL    time.Duration
	Issuer string
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

func (o Options) normalized() Options {
	if o.TTL <= 0 {
		o.TTL = 24 * time.Hour
	}
	if o.Issuer == "" {
		o.Issuer = "cryptopay"
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
