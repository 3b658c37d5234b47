package models

import "time"

// ContributionFrequency is the cadence at which members are expected to pay in.
type ContributionFrequency string

const (
	FrequencyWeekly  ContributionFrequency = "WEEKLY"
	FrequencyMonthly ContributionFrequency = "MONTHLY"
)

// Valid reports whether the frequency is one of the known cadences.
func (f ContributionFrequency) Valid() bool {
	return f == FrequencyWeekly || f == FrequencyMonthly
}

// ContributionSettings holds the standard contribution for a cooperative.
// The standard amount is a default for the UI, not a server-side constraint:
// any positive contribution is accepted.
type ContributionSettings struct {
	Amount    int64                 `json:"amount"` // RWF
	Frequency ContributionFrequency `json:"frequency"`
}

// LoanSettings holds loan pricing for a cooperative.
type LoanSettings struct {
	InterestRate float64 `json:"interest_rate"` // annual, simple, percent
}

// Cooperative represents a member-owned savings-and-loan pool (ikimina).
// CreatorID is immutable after creation and carries management privileges.
type Cooperative struct {
	ID                   int64                `json:"id"`
	Name                 string               `json:"name"`
	Description          string               `json:"description"`
	CreatorID            int64                `json:"creator_id"`
	ContributionSettings ContributionSettings `json:"contribution_settings"`
	LoanSettings         LoanSettings         `json:"loan_settings"`
	RequireAgreement     bool                 `json:"require_agreement"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

// CooperativeSummary represents the derived aggregate values for a cooperative.
// These are computed from the contribution ledger and the loan book on every
// read; they are never stored.
type CooperativeSummary struct {
	CooperativeID    int64 `json:"cooperative_id"`
	TotalSavings     int64 `json:"total_savings"`
	TotalLoans       int64 `json:"total_loans"` // outstanding principal of open approved loans
	AvailableForLoan int64 `json:"available_for_loan"`
	MemberCount      int   `json:"member_count"`
}
