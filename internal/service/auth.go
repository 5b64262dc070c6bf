package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"shiftboard-backend/internal/domain"
	"shiftboard-backend/internal/logger"
	"shiftboard-backend/internal/repository"
	"shiftboard-backend/internal/security"
)

type authService struct {
	users       repository.UserRepository
	departments repository.DepartmentRepository
	tokens      security.TokenManager
	logger      *slog.Logger
}

func NewAuthService(users repository.UserRepository, departments repository.DepartmentRepository, tokens security.TokenManager) AuthService {
	return &authService{
		users:       users,
		departments: departments,
		tokens:      tokens,
		logger:      logger.WithService("auth-service"),
	}
}

// Login verifies credentials and issues an access token. Unknown email and
// wrong password report the same message so the endpoint does not leak which
// accounts exist.
func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", domain.NewError(domain.KindValidation, "email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil, "", domain.NewError(domain.KindValidation, "invalid email or password")
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", domain.NewError(domain.KindValidation, "invalid email or password")
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		s.logger.Error("failed to generate access token", "user_id", user.ID, "error", err)
		return nil, "", err
	}

	now := time.Now().UTC()
	if err := s.users.UpdateLastLoggedIn(ctx, user.ID, now); err != nil {
		// login still succeeds; the timestamp is best effort
		s.logger.Warn("failed to update last login time", "user_id", user.ID, "error", err)
	} else {
		user.LastLoggedIn = &now
	}

	s.logger.Info("user logged in", "user_id", user.ID, "role", user.Role)
	return user, token, nil
}

func (s *authService) Profile(ctx context.Context, userID int32) (*domain.User, *domain.Department, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	var dept *domain.Department
	if user.DepartmentID != nil {
		dept, err = s.departments.GetByID(ctx, *user.DepartmentID)
		if err != nil && !domain.IsKind(err, domain.KindNotFound) {
			return nil, nil, err
		}
	}
	return user, dept, nil
}
