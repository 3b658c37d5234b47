package models

import "time"

// MembershipStatus represents the lifecycle state of a membership
type MembershipStatus string

const (
	MembershipPending           MembershipStatus = "PENDING_APPROVAL"
	MembershipAwaitingAgreement MembershipStatus = "AWAITING_AGREEMENT"
	MembershipActive            MembershipStatus = "ACTIVE"
	MembershipInactive          MembershipStatus = "INACTIVE" // reserved, not set by any operation
)

// Membership represents one user's standing in one cooperative.
// At most one membership exists per (cooperative, user) pair.
type Membership struct {
	ID                   int64            `json:"id"`
	CooperativeID        int64            `json:"cooperative_id"`
	UserID               int64            `json:"user_id"`
	Status               MembershipStatus `json:"status"`
	JoinDate             time.Time        `json:"join_date"`
	TotalContribution    int64            `json:"total_contribution"` // monotonically non-decreasing
	LastContributionDate *time.Time       `json:"last_contribution_date,omitempty"`
	Penalties            int64            `json:"penalties"` // reserved, never written by current operations
}
