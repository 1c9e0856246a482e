package errno

import "errors"

// Errno defines the error code logic
type Errno struct {
	Code    int
	Message string
	cause   error
}

func (e Errno) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying cause (e.g. the gorm error behind ErrPersistence)
func (e Errno) Unwrap() error {
	return e.cause
}

// Is compares by Code, so a decorated copy still matches its sentinel
func (e Errno) Is(target error) bool {
	t, ok := target.(Errno)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithMessage returns a copy carrying a more specific message
func (e Errno) WithMessage(msg string) Errno {
	e.Message = msg
	return e
}

// Wrap returns a copy carrying cause
func (e Errno) Wrap(cause error) Errno {
	e.cause = cause
	return e
}

// Decode tries to convert an error to Errno
func Decode(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}

	var typed Errno
	if errors.As(err, &typed) {
		return typed.Code, typed.Message
	}
	var ptr *Errno
	if errors.As(err, &ptr) && ptr != nil {
		return ptr.Code, ptr.Message
	}
	return InternalServerError.Code, err.Error()
}

// Retryable reports whether the request may be retried as-is.
// Only persistence failures qualify: the transaction was rolled back in full.
func Retryable(err error) bool {
	return errors.Is(err, ErrPersistence)
}

// Common Errors
var (
	OK                  = Errno{Code: 0, Message: "Success"}
	InternalServerError = Errno{Code: 10001, Message: "Internal server error"}
	ErrBind             = Errno{Code: 10002, Message: "Error occurred while binding the request body to the struct"}
	ErrUnauthorized     = Errno{Code: 10003, Message: "Missing or invalid caller identity"}
	ErrDatabase         = Errno{Code: 10004, Message: "Database error"}
)

// Escrow Errors (30000+)
var (
	ErrNotFound        = Errno{Code: 30001, Message: "Milestone, contract or wallet not found"}
	ErrInvalidState    = Errno{Code: 30002, Message: "Operation not allowed in current milestone state"}
	ErrAlreadyReleased = Errno{Code: 30003, Message: "Milestone already released"}
	ErrAmountMismatch  = Errno{Code: 30004, Message: "Deposit amount does not match milestone amount"}
	ErrLocked          = Errno{Code: 30005, Message: "Milestone is locked by an open dispute"}
	ErrPersistence     = Errno{Code: 30006, Message: "Transaction could not commit, safe to retry"}
	ErrForbidden       = Errno{Code: 30007, Message: "Caller is not a party allowed to perform this operation"}
)

// Wallet Errors (30100+)
var (
	ErrInsufficientBalance = Errno{Code: 30101, Message: "Insufficient wallet balance"}
	ErrInvalidAmount       = Errno{Code: 30102, Message: "Amount must be a positive whole number"}
)

// Request Errors (30200+)
var (
	ErrIdempotencyConflict = Errno{Code: 30201, Message: "Idempotency key reused with a different request"}
)
