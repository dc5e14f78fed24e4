package httperr

import "errors"

type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// CodeOf returns the business code carried by err, if any.
func CodeOf(err error) (string, bool) {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code, true
	}
	return "", false
}

// ConflictError is a business error that carries the overlapping rows so
// the caller can show them.
type ConflictError struct {
	Code      string
	Conflicts any
}

func (e ConflictError) Error() string {
	return e.Code
}

func (e ConflictError) Unwrap() error {
	return BusinessError{Code: e.Code}
}
