package service

import "errors"

// Typed failures for the transport layer to map onto status codes. Owner
// mismatch and absence are deliberately the same error so non-owners cannot
// probe for existence.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrInvoiceNotFound  = errors.New("invoice not found")
	ErrEmailTaken       = errors.New("email already registered")
	ErrBadCredentials   = errors.New("invalid email or password")
	ErrWrongPassword    = errors.New("current password is incorrect")
	ErrInvoiceCertified = errors.New("certified invoices are immutable")
	ErrWeakPassword     = errors.New("password does not meet the minimum requirements")
)
