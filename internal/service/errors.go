package service

import "errors"

var (
	ErrValidation      = errors.New("validation failed")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrServiceNotFound = errors.New("service not found")
	ErrNoFiles         = errors.New("no valid files provided")
	ErrTooManyFiles    = errors.New("too many files")
	ErrNotPaid         = errors.New("order is not paid")
	ErrAlreadySent     = errors.New("notification already sent")
)
