package models

import "errors"

// Custom errors
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key violation")
	ErrInvalidFixture = errors.New("invalid fixture")
	ErrUnknownMarket  = errors.New("unknown market")
)
