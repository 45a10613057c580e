package advance

import "errors"

var (
	ErrAdvanceNotFound       = errors.New("advance request not found")
	ErrAdvanceNotApproved    = errors.New("advance request is not in an approved state")
	ErrPaymentExceedsBalance = errors.New("payment exceeds remaining advance balance")
	ErrAlreadyFullyPaid      = errors.New("advance is already fully paid")
)
