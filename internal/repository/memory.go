package repository

import (
	"sync"

	"github.com/kazicoop/coop-service/internal/models"
)

// Memory is an in-memory implementation of Store. It backs tests and local
// runs without a database. Records are copied on the way in and out so callers
// never share state with the store.
type Memory struct {
	mu sync.Mutex

	nextID        int64
	users         map[int64]*models.User
	cooperatives  map[int64]*models.Cooperative
	memberships   map[int64]*models.Membership
	contributions []*models.Contribution
	loans         map[int64]*models.Loan
}

// NewMemory initializes an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		users:        make(map[int64]*models.User),
		cooperatives: make(map[int64]*models.Cooperative),
		memberships:  make(map[int64]*models.Membership),
		loans:        make(map[int64]*models.Loan),
	}
}

func (r *Memory) nextSerial() int64 {
	r.nextID++
	return r.nextID
}

func cloneLoan(loan *models.Loan) *models.Loan {
	c := *loan
	c.Schedule = append([]models.Installment(nil), loan.Schedule...)
	c.Repayments = append([]models.Repayment(nil), loan.Repayments...)
	return &c
}

func cloneMembership(m *models.Membership) *models.Membership {
	c := *m
	if m.LastContributionDate != nil {
		d := *m.LastContributionDate
		c.LastContributionDate = &d
	}
	return &c
}

// CreateUser stores a new user
func (r *Memory) CreateUser(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextSerial()
	c := *user
	r.users[user.ID] = &c
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Memory) FindUserByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

// FindUserByID retrieves a user by id
func (r *Memory) FindUserByID(id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *u
	return &c, nil
}

// CreateCooperative stores a new cooperative
func (r *Memory) CreateCooperative(coop *models.Cooperative) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	coop.ID = r.nextSerial()
	c := *coop
	r.cooperatives[coop.ID] = &c
	return nil
}

// FindCooperativeByID retrieves a cooperative by id
func (r *Memory) FindCooperativeByID(id int64) (*models.Cooperative, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	coop, ok := r.cooperatives[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *coop
	return &c, nil
}

// ListCooperatives retrieves all cooperatives
func (r *Memory) ListCooperatives() ([]*models.Cooperative, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var coops []*models.Cooperative
	for id := int64(1); id <= r.nextID; id++ {
		if coop, ok := r.cooperatives[id]; ok {
			c := *coop
			coops = append(coops, &c)
		}
	}
	return coops, nil
}

// CreateMembership stores a new membership
func (r *Memory) CreateMembership(m *models.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = r.nextSerial()
	r.memberships[m.ID] = cloneMembership(m)
	return nil
}

// FindMembership retrieves the membership for a (cooperative, user) pair
func (r *Memory) FindMembership(coopID, userID int64) (*models.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.memberships {
		if m.CooperativeID == coopID && m.UserID == userID {
			return cloneMembership(m), nil
		}
	}
	return nil, ErrNotFound
}

// UpdateMembership replaces a stored membership
func (r *Memory) UpdateMembership(m *models.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.memberships[m.ID]; !ok {
		return ErrNotFound
	}
	r.memberships[m.ID] = cloneMembership(m)
	return nil
}

// DeleteMembership removes the membership for a (cooperative, user) pair
func (r *Memory) DeleteMembership(coopID, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.memberships {
		if m.CooperativeID == coopID && m.UserID == userID {
			delete(r.memberships, id)
			return nil
		}
	}
	return ErrNotFound
}

// ListMemberships retrieves all memberships for a cooperative
func (r *Memory) ListMemberships(coopID int64) ([]*models.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var members []*models.Membership
	for id := int64(1); id <= r.nextID; id++ {
		if m, ok := r.memberships[id]; ok && m.CooperativeID == coopID {
			members = append(members, cloneMembership(m))
		}
	}
	return members, nil
}

// CreateContribution appends a contribution to the ledger
func (r *Memory) CreateContribution(c *models.Contribution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = r.nextSerial()
	stored := *c
	r.contributions = append(r.contributions, &stored)
	return nil
}

// ListContributions retrieves the contribution ledger for a cooperative
func (r *Memory) ListContributions(coopID int64) ([]*models.Contribution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var contributions []*models.Contribution
	for _, c := range r.contributions {
		if c.CooperativeID == coopID {
			cp := *c
			contributions = append(contributions, &cp)
		}
	}
	return contributions, nil
}

// SumContributions returns the total saved into a cooperative's pool
func (r *Memory) SumContributions(coopID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, c := range r.contributions {
		if c.CooperativeID == coopID {
			total += c.Amount
		}
	}
	return total, nil
}

// CreateLoan stores a new loan application
func (r *Memory) CreateLoan(loan *models.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	loan.ID = r.nextSerial()
	r.loans[loan.ID] = cloneLoan(loan)
	return nil
}

// FindLoanByID retrieves a loan with its schedule and repayments
func (r *Memory) FindLoanByID(id int64) (*models.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	loan, ok := r.loans[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneLoan(loan), nil
}

// UpdateLoan replaces the mutable fields of a stored loan
func (r *Memory) UpdateLoan(loan *models.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.loans[loan.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Status = loan.Status
	stored.RemainingAmount = loan.RemainingAmount
	return nil
}

// ListLoans retrieves all loans for a cooperative
func (r *Memory) ListLoans(coopID int64) ([]*models.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var loans []*models.Loan
	for id := int64(1); id <= r.nextID; id++ {
		if loan, ok := r.loans[id]; ok && loan.CooperativeID == coopID {
			loans = append(loans, cloneLoan(loan))
		}
	}
	return loans, nil
}

// ListOpenLoans retrieves all approved loans that are not yet fully repaid
func (r *Memory) ListOpenLoans() ([]*models.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var loans []*models.Loan
	for id := int64(1); id <= r.nextID; id++ {
		if loan, ok := r.loans[id]; ok && loan.Status == models.LoanApproved {
			loans = append(loans, cloneLoan(loan))
		}
	}
	return loans, nil
}

// SumOutstandingPrincipal returns the principal of open approved loans
func (r *Memory) SumOutstandingPrincipal(coopID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, loan := range r.loans {
		if loan.CooperativeID == coopID && loan.Status == models.LoanApproved {
			total += loan.Amount
		}
	}
	return total, nil
}

// CreateInstallments stores a generated repayment schedule
func (r *Memory) CreateInstallments(loanID int64, installments []models.Installment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	loan, ok := r.loans[loanID]
	if !ok {
		return ErrNotFound
	}
	for i := range installments {
		installments[i].ID = r.nextSerial()
		installments[i].LoanID = loanID
		loan.Schedule = append(loan.Schedule, installments[i])
	}
	return nil
}

// UpdateInstallment updates the status of an installment
func (r *Memory) UpdateInstallment(inst *models.Installment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	loan, ok := r.loans[inst.LoanID]
	if !ok {
		return ErrNotFound
	}
	for i := range loan.Schedule {
		if loan.Schedule[i].ID == inst.ID {
			loan.Schedule[i].Status = inst.Status
			return nil
		}
	}
	return ErrNotFound
}

// CreateRepayment appends a repayment record to a loan
func (r *Memory) CreateRepayment(rep *models.Repayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	loan, ok := r.loans[rep.LoanID]
	if !ok {
		return ErrNotFound
	}
	rep.ID = r.nextSerial()
	loan.Repayments = append(loan.Repayments, *rep)
	return nil
}

// Close is a no-op for the in-memory store
func (r *Memory) Close() error {
	return nil
}
