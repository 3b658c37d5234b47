package service

import (
	"context"
	"errors"
	"time"

	"github.com/kazicoop/coop-service/internal/models"
	"github.com/kazicoop/coop-service/internal/repository"
)

// PostContribution appends a payment to the cooperative's contribution ledger
// and updates the member's running totals in the same operation. Any positive
// amount is accepted: the standard contribution is a default, not a floor or a
// ceiling, and there is no notion of paying early.
func (s *Service) PostContribution(ctx context.Context, coopID, amount int64) (*models.Contribution, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, &ValidationError{Msg: models.ErrContributionAmount.Error()}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coop, err := s.GetCooperative(coopID)
	if err != nil {
		return nil, err
	}

	membership, err := s.repo.FindMembership(coopID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &AuthorizationError{Msg: "only active members can contribute"}
	}
	if err != nil {
		return nil, err
	}
	if membership.Status != models.MembershipActive {
		return nil, &AuthorizationError{Msg: "only active members can contribute"}
	}

	now := time.Now()
	contribution := &models.Contribution{
		CooperativeID: coopID,
		UserID:        userID,
		Amount:        amount,
		Date:          now,
	}
	if err := s.repo.CreateContribution(contribution); err != nil {
		return nil, err
	}

	membership.TotalContribution += amount
	membership.LastContributionDate = &now
	if err := s.repo.UpdateMembership(membership); err != nil {
		return nil, err
	}

	s.log.Infof("Contribution posted: RWF %d by user %d to cooperative %d", amount, userID, coopID)
	if user, err := s.repo.FindUserByID(userID); err == nil {
		total := membership.TotalContribution
		s.notify(func() error {
			return s.notifier.ContributionReceipt(user.Email, user.Username, coop.Name, amount, total)
		})
	}
	return contribution, nil
}

// ListContributions returns the contribution ledger for a cooperative
func (s *Service) ListContributions(coopID int64) ([]*models.Contribution, error) {
	if _, err := s.GetCooperative(coopID); err != nil {
		return nil, err
	}
	return s.repo.ListContributions(coopID)
}
