package client

import "errors"

var (
	ErrUnavailable  = errors.New("remote unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// IsTransient reports whether err is worth retrying later as is.
func IsTransient(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
