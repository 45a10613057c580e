package statutory

import "errors"

var (
	ErrGosiConfigMissing  = errors.New("no active GOSI configuration for the period")
	ErrLeaveConfigMissing = errors.New("no leave type configuration for the period")
	ErrTiersNotContiguous = errors.New("sick pay tiers must be ordered, contiguous and non-overlapping")
)
