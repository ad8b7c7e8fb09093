package spacedrep

import "errors"

var (
	ErrInvalidRating = errors.New("invalid rating")
	ErrInvalidState  = errors.New("invalid card state")
	ErrInvalidConfig = errors.New("invalid scheduler config")
)
