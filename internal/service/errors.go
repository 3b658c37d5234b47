package service

import "fmt"

// ValidationError reports bad input: non-positive amounts, empty purpose,
// unknown frequency. The mutation does not occur.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// AuthorizationError reports a caller attempting an action they are not
// allowed to perform (management actions by non-creators, contributions by
// non-members).
type AuthorizationError struct {
	Msg string
}

func (e *AuthorizationError) Error() string { return e.Msg }

// NotFoundError reports a missing cooperative, membership, loan or installment.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// ConflictError reports an operation that contradicts current state: duplicate
// join requests, decisions on loans already in a terminal state.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// InsufficientFundsError reports a loan approval that would overdraw the pool.
type InsufficientFundsError struct {
	Requested int64
	Available int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("requested RWF %d exceeds available pool of RWF %d", e.Requested, e.Available)
}
