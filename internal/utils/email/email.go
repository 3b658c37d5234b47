package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/kazicoop/coop-service/internal/config"
	"github.com/sirupsen/logrus"
)

// Sender handles sending notification emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Sender) send(to, subject, body string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body + "\nBest regards,\nKaziCoop")

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, subject)
	return nil
}

// MembershipApproved notifies a user their join request was approved
func (s *Sender) MembershipApproved(to, username, coopName string) error {
	body := fmt.Sprintf(
		"Dear %s,\n\nYour request to join %s has been approved.\n"+
			"You can now contribute to the pool and apply for loans.\n",
		username, coopName,
	)
	return s.send(to, "Membership Approved", body)
}

// MembershipDenied notifies a user their join request was denied
func (s *Sender) MembershipDenied(to, username, coopName string) error {
	body := fmt.Sprintf(
		"Dear %s,\n\nYour request to join %s was not approved.\n",
		username, coopName,
	)
	return s.send(to, "Membership Request Denied", body)
}

// LoanDecision notifies a borrower of an approval or rejection
func (s *Sender) LoanDecision(to, username, coopName string, amount int64, approved bool) error {
	if approved {
		body := fmt.Sprintf(
			"Dear %s,\n\nYour loan of RWF %d from %s has been approved.\n"+
				"Your repayment schedule is available in the app.\n",
			username, amount, coopName,
		)
		return s.send(to, fmt.Sprintf("Loan approved for RWF %d", amount), body)
	}
	body := fmt.Sprintf(
		"Dear %s,\n\nYour loan request of RWF %d from %s was rejected.\n",
		username, amount, coopName,
	)
	return s.send(to, "Loan Request Rejected", body)
}

// LoanRepaid congratulates a borrower on closing a loan
func (s *Sender) LoanRepaid(to, username, coopName string, amount int64) error {
	body := fmt.Sprintf(
		"Dear %s,\n\nYour loan of RWF %d from %s is now fully repaid.\n",
		username, amount, coopName,
	)
	return s.send(to, "Loan Fully Repaid", body)
}

// ContributionReceipt confirms a posted contribution
func (s *Sender) ContributionReceipt(to, username, coopName string, amount, total int64) error {
	body := fmt.Sprintf(
		"Dear %s,\n\nYour contribution of RWF %d to %s was recorded on %s.\n"+
			"Your total contribution is now RWF %d.\n",
		username, amount, coopName, time.Now().Format("2006-01-02"), total,
	)
	return s.send(to, "Contribution Received", body)
}

// InstallmentReminder reminds a borrower of an upcoming or overdue installment
func (s *Sender) InstallmentReminder(to, username string, dueDate time.Time, amount int64, isOverdue bool) error {
	if isOverdue {
		body := fmt.Sprintf(
			"Dear %s,\n\nYour loan installment of RWF %d was due on %s and is now overdue.\n"+
				"Please make the payment as soon as possible.\n",
			username, amount, dueDate.Format("2006-01-02"),
		)
		return s.send(to, "Overdue Loan Installment", body)
	}
	body := fmt.Sprintf(
		"Dear %s,\n\nThis is a reminder that your loan installment of RWF %d is due on %s.\n",
		username, amount, dueDate.Format("2006-01-02"),
	)
	return s.send(to, "Upcoming Loan Installment", body)
}

// ContributionReminder reminds a member their periodic contribution is due
func (s *Sender) ContributionReminder(to, username, coopName string, amount int64) error {
	body := fmt.Sprintf(
		"Dear %s,\n\nYour %s contribution of RWF %d is due.\n",
		username, coopName, amount,
	)
	return s.send(to, "Contribution Due", body)
}
