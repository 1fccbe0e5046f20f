package service

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNotUpgradeable      = errors.New("lock is not upgradeable")
	ErrDuplicate           = errors.New("duplicate external transaction")
	ErrInFlight            = errors.New("external transaction in flight")
	ErrAlreadyCheckedIn    = errors.New("already checked in today")
	ErrAlreadyReferred     = errors.New("already referred")
	ErrSelfReferral        = errors.New("cannot use your own referral code")
	ErrInvalidCode         = errors.New("invalid referral code")
	ErrAlreadyCompleted    = errors.New("module already completed")
	ErrUnavailable         = errors.New("integration not configured")
)
