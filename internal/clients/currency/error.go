package currency

import "errors"

// InsufficientBalanceError is returned when a transfer exceeds the sender's
// balance.
type InsufficientBalanceError struct {
	Addr    string
	Message string
}

func (e *InsufficientBalanceError) Error() string {
	return e.Message
}

func IsInsufficientBalanceError(err error) bool {
	var target *InsufficientBalanceError
	return errors.As(err, &target)
}

// InsufficientAllowanceError is returned when a TransferFrom exceeds the
// spender's allowance.
type InsufficientAllowanceError struct {
	Owner   string
	Spender string
	Message string
}

func (e *InsufficientAllowanceError) Error() string {
	return e.Message
}

func IsInsufficientAllowanceError(err error) bool {
	var target *InsufficientAllowanceError
	return errors.As(err, &target)
}
