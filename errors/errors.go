package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrContextCanceled will be used when the execution has not been executed due to the
	// context cancelation.
	ErrContextCanceled = errors.New("context canceled, logic not executed")
	// ErrInvalidArgument will be used when a throttler is created with a missing or
	// unusable operation.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidConfig will be used when a throttler configuration has a value out of range.
	ErrInvalidConfig = errors.New("invalid throttle configuration")
	// ErrInvalidQueue will be used when a waiter is suspended on a missing queue.
	ErrInvalidQueue = fmt.Errorf("%w: missing wait queue", ErrInvalidArgument)
)
