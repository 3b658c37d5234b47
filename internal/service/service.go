package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kazicoop/coop-service/internal/config"
	"github.com/kazicoop/coop-service/internal/models"
	"github.com/kazicoop/coop-service/internal/repository"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Notifier is the fire-and-forget notification sink. Send failures are logged
// and never fail the operation that triggered them.
type Notifier interface {
	MembershipApproved(to, username, coopName string) error
	MembershipDenied(to, username, coopName string) error
	LoanDecision(to, username, coopName string, amount int64, approved bool) error
	LoanRepaid(to, username, coopName string, amount int64) error
	ContributionReceipt(to, username, coopName string, amount, total int64) error
}

// Service handles business logic. All mutating operations are serialized
// behind a single mutex: the cooperative ledgers have one logical writer, which
// also prevents two racing loan approvals from overdrawing the pool.
type Service struct {
	mu       sync.Mutex
	repo     repository.Store
	log      *logrus.Logger
	config   *config.Config
	notifier Notifier
}

// NewService initializes a new service. notifier may be nil.
func NewService(repo repository.Store, log *logrus.Logger, cfg *config.Config, notifier Notifier) *Service {
	return &Service{repo: repo, log: log, config: cfg, notifier: notifier}
}

// Register creates a new user with hashed password
func (s *Service) Register(username, email, password string) (*models.User, error) {
	if username == "" || email == "" {
		return nil, &ValidationError{Msg: "username and email are required"}
	}
	if len(password) < 6 {
		return nil, &ValidationError{Msg: "password must be at least 6 characters"}
	}
	if _, err := s.repo.FindUserByEmail(email); err == nil {
		return nil, &ConflictError{Msg: "email already registered"}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.repo.CreateUser(user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(email, password string) (string, error) {
	user, err := s.repo.FindUserByEmail(email)
	if err != nil {
		return "", &AuthorizationError{Msg: "invalid credentials"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", &AuthorizationError{Msg: "invalid credentials"}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

// userIDFromContext extracts the authenticated user id set by the auth middleware
func userIDFromContext(ctx context.Context) (int64, error) {
	userIDStr, ok := ctx.Value("userID").(string)
	if !ok || userIDStr == "" {
		return 0, &AuthorizationError{Msg: "user ID not found in context"}
	}
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return 0, &AuthorizationError{Msg: "invalid user ID"}
	}
	return userID, nil
}

// notify runs a notification send and logs failures without surfacing them
func (s *Service) notify(send func() error) {
	if s.notifier == nil {
		return
	}
	if err := send(); err != nil {
		s.log.Errorf("Failed to send notification: %v", err)
	}
}
