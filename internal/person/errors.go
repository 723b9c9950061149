package person

import "errors"

var (
	ErrDuplicateEmail = errors.New("email already exists")
	ErrDuplicateNISN  = errors.New("nisn already exists")
	ErrNotFound       = errors.New("person not found")
)
