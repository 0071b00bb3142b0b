package repository

import "errors"

var (
	ErrNotFound     = errors.New("error not found")
	ErrInvalidInput = errors.New("error invalid input")
)
