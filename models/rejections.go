package models

import "errors"

// Rejections are expected outcomes for blocks that do not describe a stay relevant to the reference date.
// They are wrapped with detail and matched with errors.Is.
var (
	ErrNoGuestName                = errors.New("no guest name")
	ErrNoUsableDates              = errors.New("no usable dates")
	ErrNoRangeContainingReference = errors.New("no plausible date range contains the reference date")
	ErrAlreadyEnded               = errors.New("stay already ended")
	ErrNotOnReferenceDate         = errors.New("neither check-in nor check-out is on the reference date")
	ErrGeoExcluded                = errors.New("property is in an excluded location")
)
