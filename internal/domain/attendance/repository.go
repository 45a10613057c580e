package attendance

import (
	"context"
	"time"
)

// AttendanceRepository reads raw time and leave rows for aggregation.
type AttendanceRepository interface {
	ListRecords(ctx context.Context, employeeID, companyID string, from, to time.Time) ([]Record, error)
	ListApprovedLeave(ctx context.Context, employeeID, companyID string, from, to time.Time) ([]LeaveRecord, error)

	// CountSickDaysTakenBefore returns the cumulative sick days this calendar
	// year strictly before the given date, for tier positioning.
	CountSickDaysTakenBefore(ctx context.Context, employeeID, companyID string, year int, before time.Time) (int, error)
}
