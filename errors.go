package rigid

import "errors"

var (
	ErrNilBody           = errors.New("rigid: nil body")
	ErrBodyExists        = errors.New("rigid: body already registered")
	ErrUnknownBody       = errors.New("rigid: unknown body")
	ErrNilConstraint     = errors.New("rigid: nil constraint")
	ErrConstraintExists  = errors.New("rigid: constraint already registered")
	ErrUnknownConstraint = errors.New("rigid: unknown constraint")
	ErrUnknownShape      = errors.New("rigid: unknown shape")
)
