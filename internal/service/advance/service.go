package advance

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/masar-hr/payroll-engine-go/internal/domain/advance"
	"github.com/masar-hr/payroll-engine-go/internal/pkg/database"
)

// Service manages advance recovery outside payroll runs: manual payments,
// balance inspection, cancellation. Run-driven installments are recorded by
// the lock flow, not here.
type Service struct {
	transactor database.Transactor
	repo       advance.AdvanceRepository
	logger     *slog.Logger
}

func NewService(transactor database.Transactor, repo advance.AdvanceRepository, logger *slog.Logger) *Service {
	return &Service{transactor: transactor, repo: repo, logger: logger}
}

// RecordPayment registers a manual recovery payment. The payment may never
// exceed the remaining balance; reaching zero flips the advance to FULLY_PAID.
func (s *Service) RecordPayment(ctx context.Context, companyID string, req advance.RecordPaymentRequest) (advance.Payment, error) {
	if err := req.Validate(); err != nil {
		return advance.Payment{}, err
	}
	if !req.Amount.IsPositive() {
		return advance.Payment{}, advance.ErrPaymentExceedsBalance
	}

	var payment advance.Payment
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		adv, err := s.repo.GetByID(ctx, req.AdvanceID, companyID)
		if err != nil {
			return err
		}
		switch adv.Status {
		case advance.StatusFullyPaid:
			return advance.ErrAlreadyFullyPaid
		case advance.StatusCancelled:
			return advance.ErrAdvanceNotApproved
		}

		payments, err := s.repo.ListPayments(ctx, adv.ID)
		if err != nil {
			return err
		}
		remaining := adv.Remaining(payments)
		if req.Amount.GreaterThan(remaining) {
			return advance.ErrPaymentExceedsBalance
		}

		payment, err = s.repo.CreatePayment(ctx, advance.Payment{
			ID:        uuid.NewString(),
			AdvanceID: adv.ID,
			Amount:    req.Amount.Round(2),
			PaidAt:    time.Now(),
		})
		if err != nil {
			return err
		}

		if remaining.Sub(req.Amount).IsZero() {
			return s.repo.UpdateStatus(ctx, adv.ID, companyID, advance.StatusFullyPaid)
		}
		return nil
	})
	if err != nil {
		return advance.Payment{}, err
	}

	return payment, nil
}

// GetBalance returns the recovery position of an advance.
func (s *Service) GetBalance(ctx context.Context, companyID, advanceID string) (advance.BalanceResponse, error) {
	adv, err := s.repo.GetByID(ctx, advanceID, companyID)
	if err != nil {
		return advance.BalanceResponse{}, err
	}

	payments, err := s.repo.ListPayments(ctx, advanceID)
	if err != nil {
		return advance.BalanceResponse{}, err
	}

	remaining := adv.Remaining(payments)
	return advance.BalanceResponse{
		AdvanceID:        adv.ID,
		ApprovedAmount:   adv.ApprovedAmount,
		MonthlyDeduction: adv.MonthlyDeduction,
		TotalPaid:        adv.ApprovedAmount.Sub(remaining),
		Remaining:        remaining,
		Status:           adv.Status,
	}, nil
}

// Cancel stops further recovery of an approved advance. Already recorded
// payments stay on the books.
func (s *Service) Cancel(ctx context.Context, companyID, advanceID string) error {
	adv, err := s.repo.GetByID(ctx, advanceID, companyID)
	if err != nil {
		return err
	}
	if adv.Status != advance.StatusApproved {
		return advance.ErrAdvanceNotApproved
	}
	return s.repo.UpdateStatus(ctx, advanceID, companyID, advance.StatusCancelled)
}
