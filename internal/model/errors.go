package model

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrIO           = errors.New("io error")
	ErrConfig       = errors.New("invalid configuration")
)
