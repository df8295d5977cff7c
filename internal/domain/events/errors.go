package events

import "errors"

var (
	ErrEventNotFound = errors.New("event not found")
	ErrMassNotFound  = errors.New("mass not found")
	ErrInvalidMass   = errors.New("mass validation failed")
	ErrInvalidEvent  = errors.New("invalid event")
	ErrInvalidRange  = errors.New("end date must be after start date")
)
