package policy

import "errors"

var (
	ErrPolicyNotFound         = errors.New("smart policy not found")
	ErrInvalidStatusChange    = errors.New("invalid policy status transition")
	ErrUnknownConditionKind   = errors.New("unknown condition kind")
	ErrExecutionAlreadyExists = errors.New("execution already recorded for this event reference")
	ErrExecutionNotFound      = errors.New("policy execution not found")
)
