package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrInsufficientBalance indicates that a debit would drive a currency
// balance below zero. The account is left untouched when this is returned.
var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")
