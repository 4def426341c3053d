package models

import "errors"

// One sentinel per failure kind. Services wrap these with context via
// fmt.Errorf("…: %w", err); handlers translate them to HTTP statuses with
// errors.Is.
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrSameAccount         = errors.New("transfer source and destination accounts must differ")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")

	ErrEmptyName         = errors.New("name must not be blank")
	ErrDuplicateCategory = errors.New("category already exists")
	ErrDuplicateItem     = errors.New("item already exists in this category")
	ErrUnknownCategory   = errors.New("unknown category")

	ErrUnauthenticated = errors.New("authentication required")
)
