package service

import (
	"errors"
	"testing"

	"github.com/kazicoop/coop-service/internal/models"
)

func TestCreateCooperativeCreatorIsActiveMember(t *testing.T) {
	s := newTestService(t)
	creator := registerUser(t, s, "creator")
	coop := newCooperative(t, s, creator.ID)

	if coop.CreatorID != creator.ID {
		t.Errorf("expected creator id %d, got %d", creator.ID, coop.CreatorID)
	}

	members, err := s.ListMembers(coop.ID)
	if err != nil {
		t.Fatalf("failed to list members: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("expected 1 membership, got %d", len(members))
	}
	if members[0].UserID != creator.ID || members[0].Status != models.MembershipActive {
		t.Errorf("expected creator to be an active member, got user %d status %s",
			members[0].UserID, members[0].Status)
	}
}

func TestCreateCooperativeValidation(t *testing.T) {
	s := newTestService(t)
	creator := registerUser(t, s, "creator")

	cases := []struct {
		name string
		in   CreateCooperativeInput
	}{
		{"empty name", CreateCooperativeInput{
			ContributionSettings: models.ContributionSettings{Amount: 5000, Frequency: models.FrequencyMonthly},
		}},
		{"non-positive contribution", CreateCooperativeInput{
			Name:                 "c",
			ContributionSettings: models.ContributionSettings{Amount: 0, Frequency: models.FrequencyMonthly},
		}},
		{"unknown frequency", CreateCooperativeInput{
			Name:                 "c",
			ContributionSettings: models.ContributionSettings{Amount: 5000, Frequency: "DAILY"},
		}},
		{"negative interest rate", CreateCooperativeInput{
			Name:                 "c",
			ContributionSettings: models.ContributionSettings{Amount: 5000, Frequency: models.FrequencyMonthly},
			LoanSettings:         models.LoanSettings{InterestRate: -1},
		}},
	}
	for _, tc := range cases {
		_, err := s.CreateCooperative(ctxFor(creator.ID), tc.in)
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Errorf("%s: expected ValidationError, got %v", tc.name, err)
		}
	}
}

func TestJoinApproveFlow(t *testing.T) {
	s := newTestService(t)
	creator := registerUser(t, s, "creator")
	coop := newCooperative(t, s, creator.ID)
	member := registerUser(t, s, "member")

	membership, err := s.RequestJoin(ctxFor(member.ID), coop.ID)
	if err != nil {
		t.Fatalf("failed to request join: %v", err)
	}
	if membership.Status != models.MembershipPending {
		t.Errorf("expected status %s, got %s", models.MembershipPending, membership.Status)
	}

	membership, err = s.ApproveMember(ctxFor(creator.ID), coop.ID, member.ID)
	if err != nil {
		t.Fatalf("failed to approve member: %v", err)
	}
	if membership.Status != models.MembershipActive {
		t.Errorf("expected status %s, got %s", models.MembershipActive, membership.Status)
	}
}

func TestDuplicateJoinRequest(t *testing.T) {
	s := newTestService(t)
	creator := registerUser(t, s, "creator")
	coop := newCooperative(t, s, creator.ID)
	member := registerUser(t, s, "member")

	if _, err := s.RequestJoin(ctxFor(member.ID), coop.ID); err != nil {
		t.Fatalf("failed to request join: %v", err)
	}

	_, err := s.RequestJoin(ctxFor(member.ID), coop.ID)
	var conflictErr *ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("expected ConflictError on second join request, got %v", err)
	}

	// Same once the membership is active
	if _, err := s.ApproveMember(ctxFor(creator.ID), coop.ID, member.ID); err != nil {
		t.Fatalf("failed to approve member: %v", err)
	}
	if _, err := s.RequestJoin(ctxFor(member.ID), coop.ID); !errors.As(err, &conflictErr) {
		t.Fatalf("expected ConflictError for active member re-join, got %v", err)
	}

	members, err := s.ListMembers(coop.ID)
	if err != nil {
		t.Fatalf("failed to list members: %v", err)
	}
	if len(members) != 2 { // creator + member
		t.Errorf("expected 2 membership records, got %d", len(members))
	}
}

func TestApproveRequiresCreator(t *testing.T) {
	s := newTestService(t)
	creator := registerUser(t, s, "creator")
	coop := newCooperative(t, s, creator.ID)
	member := registerUser(t, s, "member")
	outsider := registerUser(t, s, "outsider")

	if _, err := s.RequestJoin(ctxFor(member.ID), coop.ID); err != nil {
		t.Fatalf("failed to request join: %v", err)
	}

	_, err := s.ApproveMember(ctxFor(outsider.ID), coop.ID, member.ID)
	var authErr *AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}
	if err := s.DenyMember(ctxFor(outsider.ID), coop.ID, member.ID); !errors.As(err, &authErr) {
		t.Fatalf("expected AuthorizationError on deny, got %v", err)
	}
}

func TestApproveWithoutPendingMembership(t *testing.T) {
	s := newTestService(t)
	creator := registerUser(t, s, "creator")
	coop := newCooperative(t, s, creator.ID)
	stranger := registerUser(t, s, "stranger")

	_, err := s.ApproveMember(ctxFor(creator.ID), coop.ID, stranger.ID)
	var notFoundErr *NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestCreatorCannotApproveSelf(t *testing.T) {
	s := newTestService(t)
	creator := registerUser(t, s, "creator")
	coop := newCooperative(t, s, creator.ID)

	_, err := s.ApproveMember(ctxFor(creator.ID), coop.ID, creator.ID)
	var authErr *AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}
}

func TestDenyRemovesMembership(t *testing.T) {
	s := newTestService(t)
	creator := registerUser(t, s, "creator")
	coop := newCooperative(t, s, creator.ID)
	member := registerUser(t, s, "member")

	if _, err := s.RequestJoin(ctxFor(member.ID), coop.ID); err != nil {
		t.Fatalf("failed to request join: %v", err)
	}
	if err := s.DenyMember(ctxFor(creator.ID), coop.ID, member.ID); err != nil {
		t.Fatalf("failed to deny member: %v", err)
	}

	// The record is gone, so the user can request again
	if _, err := s.RequestJoin(ctxFor(member.ID), coop.ID); err != nil {
		t.Fatalf("expected re-join after deny to succeed, got %v", err)
	}
}

func TestDenyCannotRemoveActiveMember(t *testing.T) {
	s := newTestService(t)
	creator := registerUser(t, s, "creator")
	coop := newCooperative(t, s, creator.ID)
	member := activeMember(t, s, coop, "member")

	err := s.DenyMember(ctxFor(creator.ID), coop.ID, member.ID)
	var notFoundErr *NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Fatalf("expected NotFoundError for active member, got %v", err)
	}

	// In particular the creator's own membership is untouchable
	if err := s.DenyMember(ctxFor(creator.ID), coop.ID, creator.ID); !errors.As(err, &notFoundErr) {
		t.Fatalf("expected NotFoundError for creator, got %v", err)
	}
}

func TestAgreementGate(t *testing.T) {
	s := newTestService(t)
	creator := registerUser(t, s, "creator")
	coop, err := s.CreateCooperative(ctxFor(creator.ID), CreateCooperativeInput{
		Name: "Gated",
		ContributionSettings: models.ContributionSettings{
			Amount:    5000,
			Frequency: models.FrequencyWeekly,
		},
		LoanSettings:     models.LoanSettings{InterestRate: 10},
		RequireAgreement: true,
	})
	if err != nil {
		t.Fatalf("failed to create cooperative: %v", err)
	}

	member := registerUser(t, s, "member")
	if _, err := s.RequestJoin(ctxFor(member.ID), coop.ID); err != nil {
		t.Fatalf("failed to request join: %v", err)
	}
	membership, err := s.ApproveMember(ctxFor(creator.ID), coop.ID, member.ID)
	if err != nil {
		t.Fatalf("failed to approve member: %v", err)
	}
	if membership.Status != models.MembershipAwaitingAgreement {
		t.Fatalf("expected status %s, got %s", models.MembershipAwaitingAgreement, membership.Status)
	}

	// Not active yet: contributions are rejected
	var authErr *AuthorizationError
	if _, err := s.PostContribution(ctxFor(member.ID), coop.ID, 5000); !errors.As(err, &authErr) {
		t.Fatalf("expected AuthorizationError before agreement, got %v", err)
	}

	membership, err = s.AcceptRules(ctxFor(member.ID), coop.ID)
	if err != nil {
		t.Fatalf("failed to accept rules: %v", err)
	}
	if membership.Status != models.MembershipActive {
		t.Fatalf("expected status %s, got %s", models.MembershipActive, membership.Status)
	}
	if _, err := s.PostContribution(ctxFor(member.ID), coop.ID, 5000); err != nil {
		t.Fatalf("expected contribution after agreement to succeed, got %v", err)
	}
}
