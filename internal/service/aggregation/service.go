package aggregation

import (
	"context"
	"fmt"
	"time"

	"github.com/masar-hr/payroll-engine-go/internal/domain/attendance"
	"github.com/shopspring/decimal"
)

// Service reduces raw attendance and approved leave rows into one
// PeriodSummary per employee. Downstream calculators consume the summary and
// never re-query raw records, which keeps them pure and unit-testable.
type Service struct {
	repo attendance.AttendanceRepository
}

func NewService(repo attendance.AttendanceRepository) *Service {
	return &Service{repo: repo}
}

var sixty = decimal.NewFromInt(60)

func (s *Service) Summarize(ctx context.Context, employeeID, companyID string, from, to time.Time) (attendance.PeriodSummary, error) {
	records, err := s.repo.ListRecords(ctx, employeeID, companyID, from, to)
	if err != nil {
		return attendance.PeriodSummary{}, fmt.Errorf("list attendance records: %w", err)
	}

	leaves, err := s.repo.ListApprovedLeave(ctx, employeeID, companyID, from, to)
	if err != nil {
		return attendance.PeriodSummary{}, fmt.Errorf("list approved leave: %w", err)
	}

	summary := attendance.PeriodSummary{
		EmployeeID:          employeeID,
		PeriodStart:         from,
		PeriodEnd:           to,
		OvertimeHoursByType: make(map[attendance.DayType]decimal.Decimal),
		LeaveDaysByType:     make(map[string]int),
		RecordCount:         len(records),
	}

	for _, rec := range records {
		switch rec.Status {
		case attendance.StatusPresent, attendance.StatusLate:
			summary.PresentDays++
		case attendance.StatusAbsent:
			summary.AbsentDays++
		}

		summary.LateMinutesTotal += rec.LateMinutes
		summary.EarlyDepartureMinutes += rec.EarlyDepartureMinutes

		if rec.OvertimeMinutes > 0 {
			hours := decimal.NewFromInt(int64(rec.OvertimeMinutes)).Div(sixty)
			summary.OvertimeHoursByType[rec.DayType] = summary.OvertimeHoursByType[rec.DayType].Add(hours)
		}
	}

	for _, lv := range leaves {
		summary.LeaveDaysByType[lv.LeaveTypeCode] += overlapDays(lv, from, to)
	}

	prior, err := s.repo.CountSickDaysTakenBefore(ctx, employeeID, companyID, from.Year(), from)
	if err != nil {
		return attendance.PeriodSummary{}, fmt.Errorf("count prior sick days: %w", err)
	}
	summary.PriorSickDaysThisYear = prior

	return summary, nil
}

// SickDaysTakenBefore exposes the cumulative sick-day counter used for tier
// positioning of a new sick leave span.
func (s *Service) SickDaysTakenBefore(ctx context.Context, employeeID, companyID string, year int, before time.Time) (int, error) {
	return s.repo.CountSickDaysTakenBefore(ctx, employeeID, companyID, year, before)
}

// overlapDays counts the leave days falling inside the period window, so a
// span straddling a period boundary is only charged for the overlapping part.
func overlapDays(lv attendance.LeaveRecord, from, to time.Time) int {
	start := lv.StartDate
	if start.Before(from) {
		start = from
	}
	end := lv.EndDate
	if end.After(to) {
		end = to
	}
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}
