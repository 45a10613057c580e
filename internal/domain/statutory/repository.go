package statutory

import (
	"context"
	"time"
)

// ConfigRepository reads statutory configuration. Rows are read-only inputs to
// the engine; their CRUD editing lives outside the core.
type ConfigRepository interface {
	// GetGosiConfig selects the latest config with effectiveDate <= asOf.
	GetGosiConfig(ctx context.Context, companyID string, asOf time.Time) (GosiConfig, error)
	ListLeaveTypes(ctx context.Context, companyID string) ([]LeaveTypeConfig, error)
	GetCalculationSettings(ctx context.Context, companyID string) (CalculationSettings, error)
}
