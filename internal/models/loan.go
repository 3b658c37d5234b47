package models

import (
	"errors"
	"time"
)

var (
	ErrLoanAmountInvalid  = errors.New("loan amount must be positive")
	ErrLoanPurposeEmpty   = errors.New("loan purpose is required")
	ErrLoanMonthsInvalid  = errors.New("repayment period must be at least 1 month")
	ErrContributionAmount = errors.New("contribution amount must be positive")
)

// LoanStatus represents the lifecycle state of a loan
type LoanStatus string

const (
	LoanPending   LoanStatus = "PENDING"
	LoanApproved  LoanStatus = "APPROVED"
	LoanRejected  LoanStatus = "REJECTED"     // terminal
	LoanFullyPaid LoanStatus = "FULLY_REPAID" // terminal
)

// Terminal reports whether the status admits no further transitions.
func (s LoanStatus) Terminal() bool {
	return s == LoanRejected || s == LoanFullyPaid
}

// InstallmentStatus represents the state of a scheduled installment.
// Overdue is a derived display state (pending + due date in the past), never stored.
type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "PENDING"
	InstallmentPaid    InstallmentStatus = "PAID"
)

// Installment is one scheduled repayment unit of an approved loan
type Installment struct {
	ID      int64             `json:"id"`
	LoanID  int64             `json:"loan_id"`
	DueDate time.Time         `json:"due_date"`
	Amount  int64             `json:"amount"` // RWF
	Status  InstallmentStatus `json:"status"`
}

// Overdue reports whether the installment is pending past its due date.
func (i Installment) Overdue(now time.Time) bool {
	return i.Status == InstallmentPending && i.DueDate.Before(now)
}

// Repayment is one actual payment made against a loan
type Repayment struct {
	ID     int64     `json:"id"`
	LoanID int64     `json:"loan_id"`
	Amount int64     `json:"amount"` // RWF
	Date   time.Time `json:"date"`
}

// Loan represents a loan application and its repayment state.
// The schedule exists only once the loan is approved; repayments are append-only.
type Loan struct {
	ID              int64         `json:"id"`
	CooperativeID   int64         `json:"cooperative_id"`
	UserID          int64         `json:"user_id"`
	Amount          int64         `json:"amount"` // principal, RWF
	Purpose         string        `json:"purpose"`
	RepaymentPeriod int           `json:"repayment_period"` // months
	InterestRate    float64       `json:"interest_rate"`    // annual simple rate at application time
	Status          LoanStatus    `json:"status"`
	RemainingAmount int64         `json:"remaining_amount"`
	Schedule        []Installment `json:"repayment_schedule,omitempty"`
	Repayments      []Repayment   `json:"repayments,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Validate checks the application fields of a loan.
func (l *Loan) Validate() error {
	if l.Amount <= 0 {
		return ErrLoanAmountInvalid
	}
	if l.Purpose == "" {
		return ErrLoanPurposeEmpty
	}
	if l.RepaymentPeriod < 1 {
		return ErrLoanMonthsInvalid
	}
	return nil
}
