package service

import (
	"context"
	"errors"
	"time"

	"github.com/kazicoop/coop-service/internal/models"
	"github.com/kazicoop/coop-service/internal/repository"
)

// CreateCooperativeInput carries the fields for creating a cooperative
type CreateCooperativeInput struct {
	Name                 string                      `json:"name"`
	Description          string                      `json:"description"`
	ContributionSettings models.ContributionSettings `json:"contribution_settings"`
	LoanSettings         models.LoanSettings         `json:"loan_settings"`
	RequireAgreement     bool                        `json:"require_agreement"`
}

// CreateCooperative creates a cooperative with the acting user as creator.
// The creator becomes an active member immediately, bypassing the join flow.
func (s *Service) CreateCooperative(ctx context.Context, in CreateCooperativeInput) (*models.Cooperative, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, &ValidationError{Msg: "cooperative name is required"}
	}
	if in.ContributionSettings.Amount <= 0 {
		return nil, &ValidationError{Msg: "contribution amount must be positive"}
	}
	if !in.ContributionSettings.Frequency.Valid() {
		return nil, &ValidationError{Msg: "contribution frequency must be WEEKLY or MONTHLY"}
	}
	if in.LoanSettings.InterestRate < 0 {
		return nil, &ValidationError{Msg: "interest rate must not be negative"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coop := &models.Cooperative{
		Name:                 in.Name,
		Description:          in.Description,
		CreatorID:            userID,
		ContributionSettings: in.ContributionSettings,
		LoanSettings:         in.LoanSettings,
		RequireAgreement:     in.RequireAgreement,
	}
	if err := s.repo.CreateCooperative(coop); err != nil {
		return nil, err
	}

	creatorMembership := &models.Membership{
		CooperativeID: coop.ID,
		UserID:        userID,
		Status:        models.MembershipActive,
		JoinDate:      time.Now(),
	}
	if err := s.repo.CreateMembership(creatorMembership); err != nil {
		return nil, err
	}

	s.log.Infof("Cooperative created: %s (id %d, creator %d)", coop.Name, coop.ID, userID)
	return coop, nil
}

// ListCooperatives returns all cooperatives
func (s *Service) ListCooperatives() ([]*models.Cooperative, error) {
	return s.repo.ListCooperatives()
}

// GetCooperative returns one cooperative by id
func (s *Service) GetCooperative(id int64) (*models.Cooperative, error) {
	coop, err := s.repo.FindCooperativeByID(id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Resource: "cooperative"}
	}
	return coop, err
}

// Summary computes the derived aggregate values for a cooperative from the
// contribution ledger and the loan book. Nothing here is stored: total savings
// is the ledger sum, total loans is the outstanding principal of open approved
// loans, and available-for-loan is their difference.
func (s *Service) Summary(coopID int64) (*models.CooperativeSummary, error) {
	if _, err := s.GetCooperative(coopID); err != nil {
		return nil, err
	}

	totalSavings, err := s.repo.SumContributions(coopID)
	if err != nil {
		return nil, err
	}
	totalLoans, err := s.repo.SumOutstandingPrincipal(coopID)
	if err != nil {
		return nil, err
	}
	members, err := s.repo.ListMemberships(coopID)
	if err != nil {
		return nil, err
	}
	active := 0
	for _, m := range members {
		if m.Status == models.MembershipActive {
			active++
		}
	}

	return &models.CooperativeSummary{
		CooperativeID:    coopID,
		TotalSavings:     totalSavings,
		TotalLoans:       totalLoans,
		AvailableForLoan: totalSavings - totalLoans,
		MemberCount:      active,
	}, nil
}

// RequestJoin creates a pending membership for the acting user
func (s *Service) RequestJoin(ctx context.Context, coopID int64) (*models.Membership, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.GetCooperative(coopID); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindMembership(coopID, userID)
	if err == nil {
		if existing.Status == models.MembershipPending {
			return nil, &ConflictError{Msg: "join request already pending"}
		}
		return nil, &ConflictError{Msg: "already a member of this cooperative"}
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	membership := &models.Membership{
		CooperativeID: coopID,
		UserID:        userID,
		Status:        models.MembershipPending,
		JoinDate:      time.Now(),
	}
	if err := s.repo.CreateMembership(membership); err != nil {
		return nil, err
	}

	s.log.Infof("Join requested: user %d, cooperative %d", userID, coopID)
	return membership, nil
}

// ApproveMember transitions a pending membership to active (or to awaiting
// agreement when the cooperative gates activation on a rules agreement). Only
// the cooperative creator may approve, and never their own request.
func (s *Service) ApproveMember(ctx context.Context, coopID, memberUserID int64) (*models.Membership, error) {
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
		return nil, &AuthorizationError{Msg: "only the cooperative creator can approve members"}
	}
	if memberUserID == actingUserID {
		return nil, &AuthorizationError{Msg: "cannot approve own join request"}
	}

	membership, err := s.repo.FindMembership(coopID, memberUserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Resource: "pending membership"}
	}
	if err != nil {
		return nil, err
	}
	if membership.Status != models.MembershipPending {
		return nil, &NotFoundError{Resource: "pending membership"}
	}

	if coop.RequireAgreement {
		membership.Status = models.MembershipAwaitingAgreement
	} else {
		membership.Status = models.MembershipActive
	}
	if err := s.repo.UpdateMembership(membership); err != nil {
		return nil, err
	}

	s.log.Infof("Member approved: user %d, cooperative %d (status %s)", memberUserID, coopID, membership.Status)
	if user, err := s.repo.FindUserByID(memberUserID); err == nil {
		s.notify(func() error {
			return s.notifier.MembershipApproved(user.Email, user.Username, coop.Name)
		})
	}
	return membership, nil
}

// AcceptRules confirms the cooperative rules agreement, activating a
// membership that approval left in the awaiting-agreement state
func (s *Service) AcceptRules(ctx context.Context, coopID int64) (*models.Membership, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	membership, err := s.repo.FindMembership(coopID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Resource: "membership"}
	}
	if err != nil {
		return nil, err
	}
	if membership.Status != models.MembershipAwaitingAgreement {
		return nil, &ConflictError{Msg: "membership is not awaiting agreement"}
	}

	membership.Status = models.MembershipActive
	if err := s.repo.UpdateMembership(membership); err != nil {
		return nil, err
	}

	s.log.Infof("Rules accepted: user %d, cooperative %d", userID, coopID)
	return membership, nil
}

// DenyMember removes a pending membership record entirely. Only the
// cooperative creator may deny. Non-pending memberships are never removed by
// this path, so the creator's own active membership cannot be deleted.
func (s *Service) DenyMember(ctx context.Context, coopID, memberUserID int64) error {
	actingUserID, err := userIDFromContext(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coop, err := s.GetCooperative(coopID)
	if err != nil {
		return err
	}
	if coop.CreatorID != actingUserID {
		return &AuthorizationError{Msg: "only the cooperative creator can deny members"}
	}

	membership, err := s.repo.FindMembership(coopID, memberUserID)
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Resource: "pending membership"}
	}
	if err != nil {
		return err
	}
	if membership.Status != models.MembershipPending {
		return &NotFoundError{Resource: "pending membership"}
	}

	if err := s.repo.DeleteMembership(coopID, memberUserID); err != nil {
		return err
	}

	s.log.Infof("Member denied: user %d, cooperative %d", memberUserID, coopID)
	if user, err := s.repo.FindUserByID(memberUserID); err == nil {
		s.notify(func() error {
			return s.notifier.MembershipDenied(user.Email, user.Username, coop.Name)
		})
	}
	return nil
}

// ListMembers returns all memberships for a cooperative
func (s *Service) ListMembers(coopID int64) ([]*models.Membership, error) {
	if _, err := s.GetCooperative(coopID); err != nil {
		return nil, err
	}
	return s.repo.ListMemberships(coopID)
}
