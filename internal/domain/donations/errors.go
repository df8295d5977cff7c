package donations

import "errors"

var (
	ErrDonationNotFound = errors.New("ituro ntiribonetse")
	ErrInvalidInput     = errors.New("invalid donation")
	ErrInvalidRange     = errors.New("end date must be after start date")
)
