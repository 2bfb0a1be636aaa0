package core

import "errors"

// Errors
var (
	ErrInvalidPrice    = errors.New("invalid price")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidSide     = errors.New("invalid side")
	ErrOrderNotFound   = errors.New("order not found")
	ErrHalted          = errors.New("engine halted")
)
