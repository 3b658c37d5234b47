package service

import (
	"errors"
	"testing"
)

// Scenario: creator sets a 5000/month standard, approves a member, member
// contributes the standard amount once.
func TestContributionUpdatesLedgerAndMembership(t *testing.T) {
	s := newTestService(t)
	creator := registerUser(t, s, "creator")
	coop := newCooperative(t, s, creator.ID)
	member := activeMember(t, s, coop, "member")

	contribution, err := s.PostContribution(ctxFor(member.ID), coop.ID, 5000)
	if err != nil {
		t.Fatalf("failed to post contribution: %v", err)
	}
	if contribution.Amount != 5000 {
		t.Errorf("expected amount 5000, got %d", contribution.Amount)
	}

	summary, err := s.Summary(coop.ID)
	if err != nil {
		t.Fatalf("failed to get summary: %v", err)
	}
	if summary.TotalSavings != 5000 {
		t.Errorf("expected total savings 5000, got %d", summary.TotalSavings)
	}

	members, err := s.ListMembers(coop.ID)
	if err != nil {
		t.Fatalf("failed to list members: %v", err)
	}
	for _, m := range members {
		if m.UserID != member.ID {
			continue
		}
		if m.TotalContribution != 5000 {
			t.Errorf("expected member total contribution 5000, got %d", m.TotalContribution)
		}
		if m.LastContributionDate == nil {
			t.Error("expected last contribution date to be set")
		}
	}
}

func TestContributionValidation(t *testing.T) {
	s := newTestService(t)
	creator := registerUser(t, s, "creator")
	coop := newCooperative(t, s, creator.ID)

	var validationErr *ValidationError
	for _, amount := range []int64{0, -100} {
		if _, err := s.PostContribution(ctxFor(creator.ID), coop.ID, amount); !errors.As(err, &validationErr) {
			t.Errorf("amount %d: expected ValidationError, got %v", amount, err)
		}
	}
}

func TestContributionRequiresActiveMembership(t *testing.T) {
	s := newTestService(t)
	creator := registerUser(t, s, "creator")
	coop := newCooperative(t, s, creator.ID)
	outsider := registerUser(t, s, "outsider")
	pending := registerUser(t, s, "pending")
	if _, err := s.RequestJoin(ctxFor(pending.ID), coop.ID); err != nil {
		t.Fatalf("failed to request join: %v", err)
	}

	var authErr *AuthorizationError
	if _, err := s.PostContribution(ctxFor(outsider.ID), coop.ID, 5000); !errors.As(err, &authErr) {
		t.Errorf("outsider: expected AuthorizationError, got %v", err)
	}
	if _, err := s.PostContribution(ctxFor(pending.ID), coop.ID, 5000); !errors.As(err, &authErr) {
		t.Errorf("pending member: expected AuthorizationError, got %v", err)
	}
}

// Any positive amount is accepted: the standard contribution is a UI default,
// not a server-side rule.
func TestContributionOfNonStandardAmount(t *testing.T) {
	s := newTestService(t)
	creator := registerUser(t, s, "creator")
	coop := newCooperative(t, s, creator.ID)

	for _, amount := range []int64{1, 3700, 250000} {
		if _, err := s.PostContribution(ctxFor(creator.ID), coop.ID, amount); err != nil {
			t.Errorf("amount %d: expected success, got %v", amount, err)
		}
	}
}

// Total savings always equals the sum over the contribution ledger.
func TestSummaryMatchesLedger(t *testing.T) {
	s := newTestService(t)
	creator := registerUser(t, s, "creator")
	coop := newCooperative(t, s, creator.ID)
	memberA := activeMember(t, s, coop, "memberA")
	memberB := activeMember(t, s, coop, "memberB")

	amounts := map[int64][]int64{
		creator.ID: {5000, 5000},
		memberA.ID: {5000, 2500, 7500},
		memberB.ID: {10000},
	}
	for userID, payments := range amounts {
		for _, amount := range payments {
			if _, err := s.PostContribution(ctxFor(userID), coop.ID, amount); err != nil {
				t.Fatalf("failed to post contribution: %v", err)
			}
		}
	}

	ledger, err := s.ListContributions(coop.ID)
	if err != nil {
		t.Fatalf("failed to list contributions: %v", err)
	}
	var ledgerSum int64
	for _, c := range ledger {
		ledgerSum += c.Amount
	}

	summary, err := s.Summary(coop.ID)
	if err != nil {
		t.Fatalf("failed to get summary: %v", err)
	}
	if summary.TotalSavings != ledgerSum {
		t.Errorf("total savings %d does not match ledger sum %d", summary.TotalSavings, ledgerSum)
	}
	if ledgerSum != 35000 {
		t.Errorf("expected ledger sum 35000, got %d", ledgerSum)
	}
	if summary.MemberCount != 3 {
		t.Errorf("expected 3 active members, got %d", summary.MemberCount)
	}
}
