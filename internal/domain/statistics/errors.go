package statistics

import "errors"

var (
	ErrInvalidRange = errors.New("end date must be after start date")
	ErrInvalidInput = errors.New("invalid statistics request")
)
