package scheduler

import (
	"io"
	"testing"
	"time"

	"github.com/kazicoop/coop-service/internal/models"
	"github.com/kazicoop/coop-service/internal/repository"
	"github.com/sirupsen/logrus"
)

type installmentCall struct {
	to        string
	dueDate   time.Time
	amount    int64
	isOverdue bool
}

type contributionCall struct {
	to       string
	coopName string
	amount   int64
}

// recordingSink captures reminder calls instead of sending email
type recordingSink struct {
	installments  []installmentCall
	contributions []contributionCall
}

func (s *recordingSink) InstallmentReminder(to, username string, dueDate time.Time, amount int64, isOverdue bool) error {
	s.installments = append(s.installments, installmentCall{to: to, dueDate: dueDate, amount: amount, isOverdue: isOverdue})
	return nil
}

func (s *recordingSink) ContributionReminder(to, username, coopName string, amount int64) error {
	s.contributions = append(s.contributions, contributionCall{to: to, coopName: coopName, amount: amount})
	return nil
}

func newTestScheduler(t *testing.T) (*Scheduler, *repository.Memory, *recordingSink) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	repo := repository.NewMemory()
	sink := &recordingSink{}
	return NewScheduler(repo, sink, logger), repo, sink
}

func seedUser(t *testing.T, repo *repository.Memory, name string) *models.User {
	t.Helper()
	user := &models.User{Username: name, Email: name + "@example.com"}
	if err := repo.CreateUser(user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func TestInstallmentReminders(t *testing.T) {
	sched, repo, sink := newTestScheduler(t)
	borrower := seedUser(t, repo, "borrower")

	now := time.Now()
	loan := &models.Loan{
		CooperativeID:   1,
		UserID:          borrower.ID,
		Amount:          30000,
		Status:          models.LoanApproved,
		RemainingAmount: 33000,
	}
	if err := repo.CreateLoan(loan); err != nil {
		t.Fatalf("failed to seed loan: %v", err)
	}
	schedule := []models.Installment{
		{DueDate: now.Add(-5 * 24 * time.Hour), Amount: 11000, Status: models.InstallmentPending},
		{DueDate: now.Add(2 * 24 * time.Hour), Amount: 11000, Status: models.InstallmentPending},
		{DueDate: now.Add(60 * 24 * time.Hour), Amount: 11000, Status: models.InstallmentPending},
	}
	if err := repo.CreateInstallments(loan.ID, schedule); err != nil {
		t.Fatalf("failed to seed schedule: %v", err)
	}

	sched.RunInstallmentReminders()

	if len(sink.installments) != 2 {
		t.Fatalf("expected 2 reminders, got %d", len(sink.installments))
	}
	if !sink.installments[0].isOverdue {
		t.Error("expected the first reminder to be the overdue one")
	}
	if sink.installments[1].isOverdue {
		t.Error("expected the second reminder to be upcoming, not overdue")
	}
	for _, call := range sink.installments {
		if call.to != borrower.Email {
			t.Errorf("reminder sent to %s, expected %s", call.to, borrower.Email)
		}
		if call.amount != 11000 {
			t.Errorf("reminder amount = %d, expected 11000", call.amount)
		}
	}
}

func TestInstallmentRemindersSkipSettledLoans(t *testing.T) {
	sched, repo, sink := newTestScheduler(t)
	borrower := seedUser(t, repo, "borrower")

	now := time.Now()
	loan := &models.Loan{
		CooperativeID: 1,
		UserID:        borrower.ID,
		Amount:        30000,
		Status:        models.LoanFullyPaid,
	}
	if err := repo.CreateLoan(loan); err != nil {
		t.Fatalf("failed to seed loan: %v", err)
	}
	if err := repo.CreateInstallments(loan.ID, []models.Installment{
		{DueDate: now.Add(-5 * 24 * time.Hour), Amount: 11000, Status: models.InstallmentPaid},
	}); err != nil {
		t.Fatalf("failed to seed schedule: %v", err)
	}

	sched.RunInstallmentReminders()

	if len(sink.installments) != 0 {
		t.Errorf("expected no reminders for a settled loan, got %d", len(sink.installments))
	}
}

func TestContributionReminders(t *testing.T) {
	sched, repo, sink := newTestScheduler(t)
	lapsed := seedUser(t, repo, "lapsed")
	current := seedUser(t, repo, "current")
	pending := seedUser(t, repo, "pending")

	coop := &models.Cooperative{
		Name: "Umurava Savings",
		ContributionSettings: models.ContributionSettings{
			Amount:    5000,
			Frequency: models.FrequencyMonthly,
		},
	}
	if err := repo.CreateCooperative(coop); err != nil {
		t.Fatalf("failed to seed cooperative: %v", err)
	}

	now := time.Now()
	longAgo := now.Add(-40 * 24 * time.Hour)
	recently := now.Add(-10 * 24 * time.Hour)
	memberships := []*models.Membership{
		{CooperativeID: coop.ID, UserID: lapsed.ID, Status: models.MembershipActive, JoinDate: longAgo, LastContributionDate: &longAgo},
		{CooperativeID: coop.ID, UserID: current.ID, Status: models.MembershipActive, JoinDate: longAgo, LastContributionDate: &recently},
		{CooperativeID: coop.ID, UserID: pending.ID, Status: models.MembershipPending, JoinDate: longAgo},
	}
	for _, m := range memberships {
		if err := repo.CreateMembership(m); err != nil {
			t.Fatalf("failed to seed membership: %v", err)
		}
	}

	sched.RunContributionReminders()

	if len(sink.contributions) != 1 {
		t.Fatalf("expected 1 reminder, got %d", len(sink.contributions))
	}
	call := sink.contributions[0]
	if call.to != lapsed.Email {
		t.Errorf("reminder sent to %s, expected %s", call.to, lapsed.Email)
	}
	if call.coopName != coop.Name || call.amount != 5000 {
		t.Errorf("reminder carried %q / %d, expected %q / 5000", call.coopName, call.amount, coop.Name)
	}
}

func TestContributionRemindersUseJoinDateForNewMembers(t *testing.T) {
	sched, repo, sink := newTestScheduler(t)
	member := seedUser(t, repo, "newcomer")

	coop := &models.Cooperative{
		Name: "Umurava Savings",
		ContributionSettings: models.ContributionSettings{
			Amount:    2000,
			Frequency: models.FrequencyWeekly,
		},
	}
	if err := repo.CreateCooperative(coop); err != nil {
		t.Fatalf("failed to seed cooperative: %v", err)
	}
	if err := repo.CreateMembership(&models.Membership{
		CooperativeID: coop.ID,
		UserID:        member.ID,
		Status:        models.MembershipActive,
		JoinDate:      time.Now().Add(-10 * 24 * time.Hour),
	}); err != nil {
		t.Fatalf("failed to seed membership: %v", err)
	}

	sched.RunContributionReminders()

	if len(sink.contributions) != 1 {
		t.Fatalf("expected 1 reminder measured from the join date, got %d", len(sink.contributions))
	}
}
