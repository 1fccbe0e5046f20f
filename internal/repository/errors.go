package repository

import "errors"

var (
	ErrDBNotReady        = errors.New("database not initialized")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrLockNotEligible   = errors.New("lock not eligible")
	ErrNotPending        = errors.New("transaction not pending")
	ErrAlreadyReferred   = errors.New("user already referred")
)
