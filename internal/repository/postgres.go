package repository

import (
	"database/sql"
	"fmt"

	"github.com/kazicoop/coop-service/internal/models"
)

// Postgres provides database operations over a Postgres connection
type Postgres struct {
	db *sql.DB
}

// NewPostgres initializes a new Postgres-backed store
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// CreateUser creates a new user in the database
func (r *Postgres) CreateUser(user *models.User) error {
	query := `
		INSERT INTO coop.users (username, email, password_hash, created_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRow(query, user.Username, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Postgres) FindUserByEmail(email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, created_at
		FROM coop.users
		WHERE email = $1`
	err := r.db.QueryRow(query, email).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// FindUserByID retrieves a user by id
func (r *Postgres) FindUserByID(id int64) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, created_at
		FROM coop.users
		WHERE id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// CreateCooperative creates a new cooperative in the database
func (r *Postgres) CreateCooperative(coop *models.Cooperative) error {
	query := `
		INSERT INTO coop.cooperatives
			(name, description, creator_id, contribution_amount, contribution_frequency,
			 interest_rate, require_agreement, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query,
		coop.Name, coop.Description, coop.CreatorID,
		coop.ContributionSettings.Amount, coop.ContributionSettings.Frequency,
		coop.LoanSettings.InterestRate, coop.RequireAgreement).
		Scan(&coop.ID, &coop.CreatedAt, &coop.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create cooperative: %w", err)
	}
	return nil
}

func (r *Postgres) scanCooperative(row *sql.Row) (*models.Cooperative, error) {
	coop := &models.Cooperative{}
	err := row.Scan(&coop.ID, &coop.Name, &coop.Description, &coop.CreatorID,
		&coop.ContributionSettings.Amount, &coop.ContributionSettings.Frequency,
		&coop.LoanSettings.InterestRate, &coop.RequireAgreement,
		&coop.CreatedAt, &coop.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan cooperative: %w", err)
	}
	return coop, nil
}

// FindCooperativeByID retrieves a cooperative by id
func (r *Postgres) FindCooperativeByID(id int64) (*models.Cooperative, error) {
	query := `
		SELECT id, name, description, creator_id, contribution_amount,
		       contribution_frequency, interest_rate, require_agreement,
		       created_at, updated_at
		FROM coop.cooperatives
		WHERE id = $1`
	return r.scanCooperative(r.db.QueryRow(query, id))
}

// ListCooperatives retrieves all cooperatives
func (r *Postgres) ListCooperatives() ([]*models.Cooperative, error) {
	query := `
		SELECT id, name, description, creator_id, contribution_amount,
		       contribution_frequency, interest_rate, require_agreement,
		       created_at, updated_at
		FROM coop.cooperatives
		ORDER BY id`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list cooperatives: %w", err)
	}
	defer rows.Close()

	var coops []*models.Cooperative
	for rows.Next() {
		coop := &models.Cooperative{}
		if err := rows.Scan(&coop.ID, &coop.Name, &coop.Description, &coop.CreatorID,
			&coop.ContributionSettings.Amount, &coop.ContributionSettings.Frequency,
			&coop.LoanSettings.InterestRate, &coop.RequireAgreement,
			&coop.CreatedAt, &coop.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cooperative: %w", err)
		}
		coops = append(coops, coop)
	}
	return coops, rows.Err()
}

// CreateMembership creates a new membership record
func (r *Postgres) CreateMembership(m *models.Membership) error {
	query := `
		INSERT INTO coop.memberships
			(cooperative_id, user_id, status, join_date, total_contribution, penalties)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.db.QueryRow(query, m.CooperativeID, m.UserID, m.Status,
		m.JoinDate, m.TotalContribution, m.Penalties).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}

// FindMembership retrieves the membership for a (cooperative, user) pair
func (r *Postgres) FindMembership(coopID, userID int64) (*models.Membership, error) {
	m := &models.Membership{}
	query := `
		SELECT id, cooperative_id, user_id, status, join_date,
		       total_contribution, last_contribution_date, penalties
		FROM coop.memberships
		WHERE cooperative_id = $1 AND user_id = $2`
	err := r.db.QueryRow(query, coopID, userID).
		Scan(&m.ID, &m.CooperativeID, &m.UserID, &m.Status, &m.JoinDate,
			&m.TotalContribution, &m.LastContributionDate, &m.Penalties)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find membership: %w", err)
	}
	return m, nil
}

// UpdateMembership updates the mutable fields of a membership
func (r *Postgres) UpdateMembership(m *models.Membership) error {
	query := `
		UPDATE coop.memberships
		SET status = $1, total_contribution = $2, last_contribution_date = $3, penalties = $4
		WHERE id = $5`
	if _, err := r.db.Exec(query, m.Status, m.TotalContribution,
		m.LastContributionDate, m.Penalties, m.ID); err != nil {
		return fmt.Errorf("failed to update membership: %w", err)
	}
	return nil
}

// DeleteMembership removes the membership record for a (cooperative, user) pair
func (r *Postgres) DeleteMembership(coopID, userID int64) error {
	query := `DELETE FROM coop.memberships WHERE cooperative_id = $1 AND user_id = $2`
	res, err := r.db.Exec(query, coopID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListMemberships retrieves all memberships for a cooperative
func (r *Postgres) ListMemberships(coopID int64) ([]*models.Membership, error) {
	query := `
		SELECT id, cooperative_id, user_id, status, join_date,
		       total_contribution, last_contribution_date, penalties
		FROM coop.memberships
		WHERE cooperative_id = $1
		ORDER BY join_date`
	rows, err := r.db.Query(query, coopID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	var members []*models.Membership
	for rows.Next() {
		m := &models.Membership{}
		if err := rows.Scan(&m.ID, &m.CooperativeID, &m.UserID, &m.Status, &m.JoinDate,
			&m.TotalContribution, &m.LastContributionDate, &m.Penalties); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// CreateContribution appends a contribution to the ledger
func (r *Postgres) CreateContribution(c *models.Contribution) error {
	query := `
		INSERT INTO coop.contributions (cooperative_id, user_id, amount, date)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	err := r.db.QueryRow(query, c.CooperativeID, c.UserID, c.Amount, c.Date).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("failed to create contribution: %w", err)
	}
	return nil
}

// ListContributions retrieves the contribution ledger for a cooperative
func (r *Postgres) ListContributions(coopID int64) ([]*models.Contribution, error) {
	query := `
		SELECT id, cooperative_id, user_id, amount, date
		FROM coop.contributions
		WHERE cooperative_id = $1
		ORDER BY date, id`
	rows, err := r.db.Query(query, coopID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	defer rows.Close()

	var contributions []*models.Contribution
	for rows.Next() {
		c := &models.Contribution{}
		if err := rows.Scan(&c.ID, &c.CooperativeID, &c.UserID, &c.Amount, &c.Date); err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		contributions = append(contributions, c)
	}
	return contributions, rows.Err()
}

// SumContributions returns the total saved into a cooperative's pool
func (r *Postgres) SumContributions(coopID int64) (int64, error) {
	var total int64
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM coop.contributions
		WHERE cooperative_id = $1`
	if err := r.db.QueryRow(query, coopID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum contributions: %w", err)
	}
	return total, nil
}

// CreateLoan creates a new loan application
func (r *Postgres) CreateLoan(loan *models.Loan) error {
	query := `
		INSERT INTO coop.loans
			(cooperative_id, user_id, amount, purpose, repayment_period,
			 interest_rate, status, remaining_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query, loan.CooperativeID, loan.UserID, loan.Amount,
		loan.Purpose, loan.RepaymentPeriod, loan.InterestRate, loan.Status,
		loan.RemainingAmount).
		Scan(&loan.ID, &loan.CreatedAt, &loan.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create loan: %w", err)
	}
	return nil
}

// FindLoanByID retrieves a loan with its schedule and repayments
func (r *Postgres) FindLoanByID(id int64) (*models.Loan, error) {
	loan := &models.Loan{}
	query := `
		SELECT id, cooperative_id, user_id, amount, purpose, repayment_period,
		       interest_rate, status, remaining_amount, created_at, updated_at
		FROM coop.loans
		WHERE id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&loan.ID, &loan.CooperativeID, &loan.UserID, &loan.Amount, &loan.Purpose,
			&loan.RepaymentPeriod, &loan.InterestRate, &loan.Status,
			&loan.RemainingAmount, &loan.CreatedAt, &loan.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find loan: %w", err)
	}
	if err := r.loadLoanChildren(loan); err != nil {
		return nil, err
	}
	return loan, nil
}

func (r *Postgres) loadLoanChildren(loan *models.Loan) error {
	instRows, err := r.db.Query(`
		SELECT id, loan_id, due_date, amount, status
		FROM coop.installments
		WHERE loan_id = $1
		ORDER BY due_date, id`, loan.ID)
	if err != nil {
		return fmt.Errorf("failed to list installments: %w", err)
	}
	defer instRows.Close()
	for instRows.Next() {
		var inst models.Installment
		if err := instRows.Scan(&inst.ID, &inst.LoanID, &inst.DueDate, &inst.Amount, &inst.Status); err != nil {
			return fmt.Errorf("failed to scan installment: %w", err)
		}
		loan.Schedule = append(loan.Schedule, inst)
	}
	if err := instRows.Err(); err != nil {
		return err
	}

	repRows, err := r.db.Query(`
		SELECT id, loan_id, amount, date
		FROM coop.repayments
		WHERE loan_id = $1
		ORDER BY date, id`, loan.ID)
	if err != nil {
		return fmt.Errorf("failed to list repayments: %w", err)
	}
	defer repRows.Close()
	for repRows.Next() {
		var rep models.Repayment
		if err := repRows.Scan(&rep.ID, &rep.LoanID, &rep.Amount, &rep.Date); err != nil {
			return fmt.Errorf("failed to scan repayment: %w", err)
		}
		loan.Repayments = append(loan.Repayments, rep)
	}
	return repRows.Err()
}

// UpdateLoan updates the mutable fields of a loan
func (r *Postgres) UpdateLoan(loan *models.Loan) error {
	query := `
		UPDATE coop.loans
		SET status = $1, remaining_amount = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3`
	if _, err := r.db.Exec(query, loan.Status, loan.RemainingAmount, loan.ID); err != nil {
		return fmt.Errorf("failed to update loan: %w", err)
	}
	return nil
}

func (r *Postgres) listLoans(query string, args ...interface{}) ([]*models.Loan, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	var loans []*models.Loan
	for rows.Next() {
		loan := &models.Loan{}
		if err := rows.Scan(&loan.ID, &loan.CooperativeID, &loan.UserID, &loan.Amount,
			&loan.Purpose, &loan.RepaymentPeriod, &loan.InterestRate, &loan.Status,
			&loan.RemainingAmount, &loan.CreatedAt, &loan.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, loan)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, loan := range loans {
		if err := r.loadLoanChildren(loan); err != nil {
			return nil, err
		}
	}
	return loans, nil
}

// ListLoans retrieves all loans for a cooperative
func (r *Postgres) ListLoans(coopID int64) ([]*models.Loan, error) {
	return r.listLoans(`
		SELECT id, cooperative_id, user_id, amount, purpose, repayment_period,
		       interest_rate, status, remaining_amount, created_at, updated_at
		FROM coop.loans
		WHERE cooperative_id = $1
		ORDER BY created_at, id`, coopID)
}

// ListOpenLoans retrieves all approved loans that are not yet fully repaid
func (r *Postgres) ListOpenLoans() ([]*models.Loan, error) {
	return r.listLoans(`
		SELECT id, cooperative_id, user_id, amount, purpose, repayment_period,
		       interest_rate, status, remaining_amount, created_at, updated_at
		FROM coop.loans
		WHERE status = $1
		ORDER BY created_at, id`, models.LoanApproved)
}

// SumOutstandingPrincipal returns the principal of open approved loans
func (r *Postgres) SumOutstandingPrincipal(coopID int64) (int64, error) {
	var total int64
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM coop.loans
		WHERE cooperative_id = $1 AND status = $2`
	if err := r.db.QueryRow(query, coopID, models.LoanApproved).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum outstanding principal: %w", err)
	}
	return total, nil
}

// CreateInstallments stores a generated repayment schedule
func (r *Postgres) CreateInstallments(loanID int64, installments []models.Installment) error {
	query := `
		INSERT INTO coop.installments (loan_id, due_date, amount, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	for i := range installments {
		installments[i].LoanID = loanID
		if err := r.db.QueryRow(query, loanID, installments[i].DueDate,
			installments[i].Amount, installments[i].Status).Scan(&installments[i].ID); err != nil {
			return fmt.Errorf("failed to create installment: %w", err)
		}
	}
	return nil
}

// UpdateInstallment updates the status of an installment
func (r *Postgres) UpdateInstallment(inst *models.Installment) error {
	query := `UPDATE coop.installments SET status = $1 WHERE id = $2`
	if _, err := r.db.Exec(query, inst.Status, inst.ID); err != nil {
		return fmt.Errorf("failed to update installment: %w", err)
	}
	return nil
}

// CreateRepayment appends a repayment record to a loan
func (r *Postgres) CreateRepayment(rep *models.Repayment) error {
	query := `
		INSERT INTO coop.repayments (loan_id, amount, date)
		VALUES ($1, $2, $3)
		RETURNING id`
	if err := r.db.QueryRow(query, rep.LoanID, rep.Amount, rep.Date).Scan(&rep.ID); err != nil {
		return fmt.Errorf("failed to create repayment: %w", err)
	}
	return nil
}

// Close closes the underlying database connection
func (r *Postgres) Close() error {
	return r.db.Close()
}
