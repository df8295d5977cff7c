package priests

import "errors"

var (
	ErrPriestNotFound = errors.New("priest not found")
	ErrPriestExists   = errors.New("priest id already exists")
	ErrEmailTaken     = errors.New("email already exists")
	ErrPriestInUse    = errors.New("priest still celebrates masses")
	ErrInvalidInput   = errors.New("invalid priest")
)
