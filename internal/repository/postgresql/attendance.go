package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/masar-hr/payroll-engine-go/internal/domain/attendance"
	"github.com/masar-hr/payroll-engine-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

// ListRecords implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListRecords(ctx context.Context, employeeID, companyID string, from, to time.Time) ([]attendance.Record, error) {
	q := r.db.QuerierFor(ctx)

	query := `
		SELECT id, employee_id, company_id, date, status, day_type,
			   late_minutes, early_departure_minutes, overtime_minutes
		FROM attendance_records
		WHERE employee_id = $1 AND company_id = $2 AND date BETWEEN $3 AND $4
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		var rec attendance.Record
		if err := rows.Scan(
			&rec.ID, &rec.EmployeeID, &rec.CompanyID, &rec.Date, &rec.Status, &rec.DayType,
			&rec.LateMinutes, &rec.EarlyDepartureMinutes, &rec.OvertimeMinutes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// ListApprovedLeave implements attendance.AttendanceRepository. Spans
// overlapping the window are returned whole; the aggregator clips them.
func (r *attendanceRepository) ListApprovedLeave(ctx context.Context, employeeID, companyID string, from, to time.Time) ([]attendance.LeaveRecord, error) {
	q := r.db.QuerierFor(ctx)

	query := `
		SELECT id, employee_id, company_id, leave_type_code, start_date, end_date, days
		FROM leave_records
		WHERE employee_id = $1 AND company_id = $2
		  AND status = 'APPROVED'
		  AND start_date <= $4 AND end_date >= $3
		ORDER BY start_date
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved leave: %w", err)
	}
	defer rows.Close()

	var leaves []attendance.LeaveRecord
	for rows.Next() {
		var lv attendance.LeaveRecord
		if err := rows.Scan(
			&lv.ID, &lv.EmployeeID, &lv.CompanyID, &lv.LeaveTypeCode,
			&lv.StartDate, &lv.EndDate, &lv.Days,
		); err != nil {
			return nil, fmt.Errorf("failed to scan leave record: %w", err)
		}
		leaves = append(leaves, lv)
	}

	return leaves, rows.Err()
}

// CountSickDaysTakenBefore implements attendance.AttendanceRepository.
func (r *attendanceRepository) CountSickDaysTakenBefore(ctx context.Context, employeeID, companyID string, year int, before time.Time) (int, error) {
	q := r.db.QuerierFor(ctx)

	query := `
		SELECT COALESCE(SUM(LEAST(end_date, $4::date - 1) - GREATEST(start_date, MAKE_DATE($3, 1, 1)) + 1), 0)
		FROM leave_records
		WHERE employee_id = $1 AND company_id = $2
		  AND status = 'APPROVED'
		  AND leave_type_code = 'SICK'
		  AND start_date < $4
		  AND end_date >= MAKE_DATE($3, 1, 1)
	`

	var days int
	if err := q.QueryRow(ctx, query, employeeID, companyID, year, before).Scan(&days); err != nil {
		return 0, fmt.Errorf("failed to count sick days: %w", err)
	}
	if days < 0 {
		days = 0
	}

	return days, nil
}
