package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/kazicoop/coop-service/internal/models"
	"github.com/kazicoop/coop-service/internal/repository"
)

// ApplyForLoanInput carries the fields of a loan application
type ApplyForLoanInput struct {
	Amount          int64  `json:"amount"`
	Purpose         string `json:"purpose"`
	RepaymentPeriod int    `json:"repayment_period"` // months
}

// ApplyForLoan creates a loan application in pending status. The pool balance
// is not checked here: capacity is only checked at approval time.
func (s *Service) ApplyForLoan(ctx context.Context, coopID int64, in ApplyForLoanInput) (*models.Loan, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coop, err := s.GetCooperative(coopID)
	if err != nil {
		return nil, err
	}

	membership, err := s.repo.FindMembership(coopID, userID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && membership.Status != models.MembershipActive) {
		return nil, &AuthorizationError{Msg: "only active members can apply for a loan"}
	}
	if err != nil {
		return nil, err
	}

	loan := &models.Loan{
		CooperativeID:   coopID,
		UserID:          userID,
		Amount:          in.Amount,
		Purpose:         in.Purpose,
		RepaymentPeriod: in.RepaymentPeriod,
		InterestRate:    coop.LoanSettings.InterestRate,
		Status:          models.LoanPending,
		RemainingAmount: in.Amount,
	}
	if err := loan.Validate(); err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}
	if err := s.repo.CreateLoan(loan); err != nil {
		return nil, err
	}

	s.log.Infof("Loan applied: RWF %d over %d months by user %d in cooperative %d",
		loan.Amount, loan.RepaymentPeriod, userID, coopID)
	return loan, nil
}

// generateSchedule builds an equal-installment simple-interest schedule.
// Interest is rounded to the nearest franc once per loan; the installment
// amount is the integer share of the total and is not adjusted to absorb the
// division remainder.
func generateSchedule(principal int64, annualRate float64, months int, start time.Time) ([]models.Installment, int64) {
	interest := int64(math.Round(float64(principal) * (annualRate / 100) * (float64(months) / 12)))
	total := principal + interest
	installmentAmount := total / int64(months)

	installments := make([]models.Installment, months)
	for i := 0; i < months; i++ {
		installments[i] = models.Installment{
			DueDate: start.AddDate(0, i+1, 0),
			Amount:  installmentAmount,
			Status:  models.InstallmentPending,
		}
	}
	return installments, total
}

func (s *Service) findCooperativeLoan(coopID, loanID int64) (*models.Loan, error) {
	loan, err := s.repo.FindLoanByID(loanID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Resource: "loan"}
	}
	if err != nil {
		return nil, err
	}
	if loan.CooperativeID != coopID {
		return nil, &NotFoundError{Resource: "loan"}
	}
	return loan, nil
}

// ApproveLoan approves a pending loan, checks the pool capacity at approval
// time and generates the repayment schedule. Due dates run monthly from the
// approval date regardless of the cooperative's contribution frequency.
func (s *Service) ApproveLoan(ctx context.Context, coopID, loanID int64) (*models.Loan, error) {
	actingUserID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coop, err := s.GetCooperative(coopID)
	if err != nil {
		return nil, err
	}
	if coop.CreatorID != actingUserID {
		return nil, &AuthorizationError{Msg: "only the cooperative creator can approve loans"}
	}

	loan, err := s.findCooperativeLoan(coopID, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanPending {
		return nil, &ConflictError{Msg: "loan is not pending"}
	}

	totalSavings, err := s.repo.SumContributions(coopID)
	if err != nil {
		return nil, err
	}
	totalLoans, err := s.repo.SumOutstandingPrincipal(coopID)
	if err != nil {
		return nil, err
	}
	available := totalSavings - totalLoans
	if loan.Amount > available {
		return nil, &InsufficientFundsError{Requested: loan.Amount, Available: available}
	}

	schedule, total := generateSchedule(loan.Amount, loan.InterestRate, loan.RepaymentPeriod, time.Now())
	if err := s.repo.CreateInstallments(loan.ID, schedule); err != nil {
		return nil, err
	}

	loan.Status = models.LoanApproved
	loan.RemainingAmount = total
	loan.Schedule = schedule
	if err := s.repo.UpdateLoan(loan); err != nil {
		return nil, err
	}

	s.log.Infof("Loan approved: id %d, RWF %d over %d months (repayable RWF %d)",
		loan.ID, loan.Amount, loan.RepaymentPeriod, total)
	if user, err := s.repo.FindUserByID(loan.UserID); err == nil {
		s.notify(func() error {
			return s.notifier.LoanDecision(user.Email, user.Username, coop.Name, loan.Amount, true)
		})
	}
	return loan, nil
}

// RejectLoan rejects a pending loan. Rejected is terminal: no schedule is ever
// generated and no later operation changes the loan again.
func (s *Service) RejectLoan(ctx context.Context, coopID, loanID int64) (*models.Loan, error) {
	actingUserID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coop, err := s.GetCooperative(coopID)
	if err != nil {
		return nil, err
	}
	if coop.CreatorID != actingUserID {
		return nil, &AuthorizationError{Msg: "only the cooperative creator can reject loans"}
	}

	loan, err := s.findCooperativeLoan(coopID, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanPending {
		return nil, &ConflictError{Msg: "loan is not pending"}
	}

	loan.Status = models.LoanRejected
	if err := s.repo.UpdateLoan(loan); err != nil {
		return nil, err
	}

	s.log.Infof("Loan rejected: id %d", loan.ID)
	if user, err := s.repo.FindUserByID(loan.UserID); err == nil {
		s.notify(func() error {
			return s.notifier.LoanDecision(user.Email, user.Username, coop.Name, loan.Amount, false)
		})
	}
	return loan, nil
}

// RepayInstallment records a payment against one installment of an approved
// loan. Installments may be paid in any order. The remaining amount drops by
// the amount paid; at zero or below the loan closes as fully repaid.
func (s *Service) RepayInstallment(ctx context.Context, coopID, loanID, installmentID, amount int64) (*models.Loan, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, &ValidationError{Msg: "repayment amount must be positive"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coop, err := s.GetCooperative(coopID)
	if err != nil {
		return nil, err
	}

	loan, err := s.findCooperativeLoan(coopID, loanID)
	if err != nil {
		return nil, err
	}
	if loan.UserID != userID {
		return nil, &AuthorizationError{Msg: "only the borrower can repay this loan"}
	}
	if loan.Status != models.LoanApproved {
		return nil, &ConflictError{Msg: "loan is not open for repayment"}
	}

	var installment *models.Installment
	for i := range loan.Schedule {
		if loan.Schedule[i].ID == installmentID {
			installment = &loan.Schedule[i]
			break
		}
	}
	if installment == nil {
		return nil, &NotFoundError{Resource: "installment"}
	}
	if installment.Status == models.InstallmentPaid {
		return nil, &ConflictError{Msg: "installment already paid"}
	}

	installment.Status = models.InstallmentPaid
	if err := s.repo.UpdateInstallment(installment); err != nil {
		return nil, err
	}

	repayment := &models.Repayment{
		LoanID: loan.ID,
		Amount: amount,
		Date:   time.Now(),
	}
	if err := s.repo.CreateRepayment(repayment); err != nil {
		return nil, err
	}
	loan.Repayments = append(loan.Repayments, *repayment)

	loan.RemainingAmount -= amount
	if loan.RemainingAmount <= 0 {
		loan.Status = models.LoanFullyPaid
	}
	if err := s.repo.UpdateLoan(loan); err != nil {
		return nil, err
	}

	s.log.Infof("Installment paid: loan %d, installment %d, RWF %d (remaining RWF %d)",
		loan.ID, installmentID, amount, loan.RemainingAmount)
	if loan.Status == models.LoanFullyPaid {
		if user, err := s.repo.FindUserByID(loan.UserID); err == nil {
			s.notify(func() error {
				return s.notifier.LoanRepaid(user.Email, user.Username, coop.Name, loan.Amount)
			})
		}
	}
	return loan, nil
}

// ListLoans returns all loans for a cooperative
func (s *Service) ListLoans(coopID int64) ([]*models.Loan, error) {
	if _, err := s.GetCooperative(coopID); err != nil {
		return nil, err
	}
	return s.repo.ListLoans(coopID)
}

// GetLoan returns one loan with its schedule and repayments
func (s *Service) GetLoan(coopID, loanID int64) (*models.Loan, error) {
	if _, err := s.GetCooperative(coopID); err != nil {
		return nil, err
	}
	return s.findCooperativeLoan(coopID, loanID)
}
