package faithful

import "errors"

var (
	ErrFaithfulNotFound    = errors.New("faithful not found")
	ErrDuplicateIdentifier = errors.New("duplicate identifier")
	ErrFaithfulReferenced  = errors.New("faithful is still referenced by donations or intentions")
	ErrInvalidInput        = errors.New("invalid faithful")
)
