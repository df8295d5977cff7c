package intentions

import "errors"

var (
	ErrIntentionNotFound = errors.New("intention not found")
	ErrInvalidRequestor  = errors.New("exactly one of faithfulId or externalFaithfulName must be provided")
	ErrInvalidInput      = errors.New("invalid intention")
	ErrInvalidRange      = errors.New("end date must be after start date")
)
