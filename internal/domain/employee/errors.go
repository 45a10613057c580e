package employee

import "errors"

var (
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrNoActiveContract   = errors.New("employee has no active contract")
	ErrNoActiveAssignment = errors.New("employee has no active salary assignment")
	ErrNoBankAccount      = errors.New("employee has no primary bank account")
)
