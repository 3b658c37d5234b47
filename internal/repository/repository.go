package repository

import (
	"errors"

	"github.com/kazicoop/coop-service/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the persistence operations the cooperative service depends on.
// Implementations: Postgres for production, Memory for tests and local runs.
type Store interface {
	CreateUser(user *models.User) error
	FindUserByEmail(email string) (*models.User, error)
	FindUserByID(id int64) (*models.User, error)

	CreateCooperative(coop *models.Cooperative) error
	FindCooperativeByID(id int64) (*models.Cooperative, error)
	ListCooperatives() ([]*models.Cooperative, error)

	CreateMembership(m *models.Membership) error
	FindMembership(coopID, userID int64) (*models.Membership, error)
	UpdateMembership(m *models.Membership) error
	DeleteMembership(coopID, userID int64) error
	ListMemberships(coopID int64) ([]*models.Membership, error)

	CreateContribution(c *models.Contribution) error
	ListContributions(coopID int64) ([]*models.Contribution, error)
	SumContributions(coopID int64) (int64, error)

	CreateLoan(loan *models.Loan) error
	FindLoanByID(id int64) (*models.Loan, error)
	UpdateLoan(loan *models.Loan) error
	ListLoans(coopID int64) ([]*models.Loan, error)
	ListOpenLoans() ([]*models.Loan, error)
	SumOutstandingPrincipal(coopID int64) (int64, error)
	CreateInstallments(loanID int64, installments []models.Installment) error
	UpdateInstallment(inst *models.Installment) error
	CreateRepayment(r *models.Repayment) error

	Close() error
}
