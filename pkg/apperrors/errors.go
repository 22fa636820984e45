package apperrors

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidQuery       = errors.New("no search criteria provided")
	ErrUnprocessableInput = errors.New("unprocessable spreadsheet document")
	ErrInvalidFilter      = errors.New("invalid filter expression")
)
