package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"shiftboard-backend/internal/domain"
	"shiftboard-backend/internal/service"
)

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &domain.User{ID: 1, Email: "staff@example.com", PasswordHash: string(hash), Role: domain.RoleStaff}

	t.Run("Success", func(t *testing.T) {
		users := new(MockUserRepo)
		tokens := new(MockTokenManager)
		svc := service.NewAuthService(users, new(MockDepartmentRepo), tokens)

		users.On("GetByEmail", ctx, "staff@example.com").Return(user, nil)
		tokens.On("GenerateAccessToken", int32(1), "staff@example.com", domain.RoleStaff).Return("signed-token", nil)
		users.On("UpdateLastLoggedIn", ctx, int32(1), mock.AnythingOfType("time.Time")).Return(nil)

		got, token, err := svc.Login(ctx, "Staff@Example.com ", "password123")
		assert.NoError(t, err)
		assert.Equal(t, "signed-token", token)
		assert.NotNil(t, got.LastLoggedIn)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		users := new(MockUserRepo)
		svc := service.NewAuthService(users, new(MockDepartmentRepo), new(MockTokenManager))

		users.On("GetByEmail", ctx, "staff@example.com").Return(user, nil)

		_, _, err := svc.Login(ctx, "staff@example.com", "wrong")
		assert.True(t, domain.IsKind(err, domain.KindValidation))
		assert.Contains(t, err.Error(), "invalid email or password")
	})

	t.Run("Unknown Email Reports Same Message", func(t *testing.T) {
		users := new(MockUserRepo)
		svc := service.NewAuthService(users, new(MockDepartmentRepo), new(MockTokenManager))

		users.On("GetByEmail", ctx, "ghost@example.com").Return(nil, domain.NewError(domain.KindNotFound, "user not found"))

		_, _, err := svc.Login(ctx, "ghost@example.com", "password123")
		assert.True(t, domain.IsKind(err, domain.KindValidation))
		assert.Contains(t, err.Error(), "invalid email or password")
	})

	t.Run("Missing Credentials", func(t *testing.T) {
		svc := service.NewAuthService(new(MockUserRepo), new(MockDepartmentRepo), new(MockTokenManager))
		_, _, err := svc.Login(ctx, "", "")
		assert.True(t, domain.IsKind(err, domain.KindValidation))
	})
}
