package types

import "errors"

// Configuration errors: caller-correctable, reported synchronously.
var (
	ErrInvalidPrice      = errors.New("price must be positive")
	ErrInvalidFee        = errors.New("fee rate exceeds the allowed maximum")
	ErrInvalidInterval   = errors.New("update interval must be positive")
	ErrInvalidMinDeposit = errors.New("minimum deposit must be positive")
	ErrZeroAmount        = errors.New("amount must be positive")
	ErrZeroAddress       = errors.New("address must not be empty")
)

// State-precondition errors: the caller must wait or take a different
// action first. Never bypassed internally.
var (
	ErrNotActive           = errors.New("subject is not active")
	ErrAlreadyActive       = errors.New("subject is already active")
	ErrTooFrequent         = errors.New("price update interval has not elapsed")
	ErrPriceUpdateRequired = errors.New("price update required before conversion")
	ErrNotFound            = errors.New("operation not found")
	ErrAlreadyCompleted    = errors.New("operation already completed")
	ErrBelowMinimum        = errors.New("amount below minimum deposit")
	ErrInsufficientAssets  = errors.New("insufficient vault assets")
)

// Authorization errors: fatal to the call, no partial state change.
var (
	ErrUnauthorized  = errors.New("caller is not authorized")
	ErrPaused        = errors.New("vault is paused")
	ErrReentrantCall = errors.New("reentrant call")
)

// Arithmetic faults: fatal defects, the whole operation aborts.
var ErrDivisionByZero = errors.New("division by zero")
