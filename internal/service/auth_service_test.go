package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/therone18/SmartParking/internal/domain"
)

func newAuthFixture() (*AuthService, *fakeUserRepo) {
	userRepo := newFakeUserRepo()
	svc := NewAuthService(userRepo, "test-secret", time.Hour)
	return svc, userRepo
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, userRepo := newAuthFixture()

	user, err := svc.Register(ctx, domain.RegisterUserDTO{
		Username: "nguyenvana",
		Email:    "a@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "user", user.Role)
	assert.True(t, user.IsActive)
	assert.Empty(t, user.Password, "không được trả về password hash")
	assert.NotEmpty(t, userRepo.users[user.ID].Password, "hash vẫn phải được lưu trong repo")

	// Trùng username.
	_, err = svc.Register(ctx, domain.RegisterUserDTO{
		Username: "nguyenvana",
		Email:    "b@example.com",
		Password: "secret456",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	resp, err := svc.Login(ctx, domain.LoginUserDTO{Username: "nguyenvana", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.UserID)
	assert.Equal(t, "user", resp.Role)
	assert.NotEmpty(t, resp.Token)

	_, err = svc.Login(ctx, domain.LoginUserDTO{Username: "nguyenvana", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, domain.LoginUserDTO{Username: "khongtontai", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginDeactivatedUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthFixture()

	user, err := svc.Register(ctx, domain.RegisterUserDTO{
		Username: "nguyenvana",
		Email:    "a@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeactivateUser(ctx, user.ID))

	_, err = svc.Login(ctx, domain.LoginUserDTO{Username: "nguyenvana", Password: "secret123"})
	assert.ErrorIs(t, err, ErrUserDeactivated)

	require.NoError(t, svc.ReactivateUser(ctx, user.ID))
	_, err = svc.Login(ctx, domain.LoginUserDTO{Username: "nguyenvana", Password: "secret123"})
	assert.NoError(t, err)
}

func TestValidateToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthFixture()

	user, err := svc.Register(ctx, domain.RegisterUserDTO{
		Username: "nguyenvana",
		Email:    "a@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, domain.LoginUserDTO{Username: "nguyenvana", Password: "secret123"})
	require.NoError(t, err)

	_, claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "nguyenvana", claims["username"])
	assert.Equal(t, "user", claims["role"])

	sub, err := claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%d", user.ID), sub)

	// Token ký bằng secret khác phải bị từ chối.
	other := NewAuthService(newFakeUserRepo(), "other-secret", time.Hour)
	_, _, err = other.ValidateToken(resp.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, _, err = svc.ValidateToken("khong-phai-jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthFixture()

	user, err := svc.Register(ctx, domain.RegisterUserDTO{
		Username: "nguyenvana",
		Email:    "a@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, user.ID, domain.UpdateProfileDTO{
		FirstName: "Văn A",
		LastName:  "Nguyễn",
	})
	require.NoError(t, err)
	assert.Equal(t, "Văn A", updated.FirstName)
	assert.Equal(t, "Nguyễn", updated.LastName)
	assert.Equal(t, "a@example.com", updated.Email, "email giữ nguyên khi không gửi lên")
	assert.Empty(t, updated.Password)
}
