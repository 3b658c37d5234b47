package scheduler

import (
	"time"

	"github.com/kazicoop/coop-service/internal/models"
	"github.com/kazicoop/coop-service/internal/repository"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// upcomingWindow is how far ahead installment reminders look.
const upcomingWindow = 3 * 24 * time.Hour

// ReminderSink is the subset of the notification sender the scheduler needs.
type ReminderSink interface {
	InstallmentReminder(to, username string, dueDate time.Time, amount int64, isOverdue bool) error
	ContributionReminder(to, username, coopName string, amount int64) error
}

// Scheduler runs the periodic reminder jobs. It only reads and emails: all
// ledger mutations stay with the cooperative service, which keeps the single
// logical writer intact.
type Scheduler struct {
	repo repository.Store
	sink ReminderSink
	log  *logrus.Logger
	cron *cron.Cron
}

// NewScheduler initializes a new reminder scheduler
func NewScheduler(repo repository.Store, sink ReminderSink, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		repo: repo,
		sink: sink,
		log:  log,
		cron: cron.New(),
	}
}

// Start registers the reminder jobs on the given cron spec and starts the cron
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.RunInstallmentReminders); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(spec, s.RunContributionReminders); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Infof("Reminder scheduler started (%s)", spec)
	return nil
}

// Stop stops the cron
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// RunInstallmentReminders emails borrowers about installments that are overdue
// or due within the upcoming window
func (s *Scheduler) RunInstallmentReminders() {
	loans, err := s.repo.ListOpenLoans()
	if err != nil {
		s.log.Errorf("Failed to list open loans for reminders: %v", err)
		return
	}

	now := time.Now()
	for _, loan := range loans {
		user, err := s.repo.FindUserByID(loan.UserID)
		if err != nil {
			s.log.Errorf("Failed to find borrower %d: %v", loan.UserID, err)
			continue
		}
		for _, inst := range loan.Schedule {
			if inst.Status != models.InstallmentPending {
				continue
			}
			switch {
			case inst.Overdue(now):
				if err := s.sink.InstallmentReminder(user.Email, user.Username, inst.DueDate, inst.Amount, true); err != nil {
					s.log.Errorf("Failed to send overdue reminder for loan %d: %v", loan.ID, err)
				}
			case inst.DueDate.Sub(now) <= upcomingWindow:
				if err := s.sink.InstallmentReminder(user.Email, user.Username, inst.DueDate, inst.Amount, false); err != nil {
					s.log.Errorf("Failed to send upcoming reminder for loan %d: %v", loan.ID, err)
				}
			}
		}
	}
}

// RunContributionReminders emails active members whose periodic contribution
// window has elapsed since their last payment
func (s *Scheduler) RunContributionReminders() {
	coops, err := s.repo.ListCooperatives()
	if err != nil {
		s.log.Errorf("Failed to list cooperatives for reminders: %v", err)
		return
	}

	now := time.Now()
	for _, coop := range coops {
		period := 30 * 24 * time.Hour
		if coop.ContributionSettings.Frequency == models.FrequencyWeekly {
			period = 7 * 24 * time.Hour
		}

		members, err := s.repo.ListMemberships(coop.ID)
		if err != nil {
			s.log.Errorf("Failed to list memberships for cooperative %d: %v", coop.ID, err)
			continue
		}
		for _, m := range members {
			if m.Status != models.MembershipActive {
				continue
			}
			last := m.JoinDate
			if m.LastContributionDate != nil {
				last = *m.LastContributionDate
			}
			if now.Sub(last) < period {
				continue
			}
			user, err := s.repo.FindUserByID(m.UserID)
			if err != nil {
				s.log.Errorf("Failed to find member %d: %v", m.UserID, err)
				continue
			}
			if err := s.sink.ContributionReminder(user.Email, user.Username, coop.Name, coop.ContributionSettings.Amount); err != nil {
				s.log.Errorf("Failed to send contribution reminder to user %d: %v", m.UserID, err)
			}
		}
	}
}
