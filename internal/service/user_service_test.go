package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thriftit/backend/internal/models"
)

func TestRegister(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, newTestJWT())

	user, token, err := svc.Register(&models.RegisterRequest{
		StudentID: "stu123",
		Email:     "Stu123@University.EDU",
		Password:  "secret99",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "stu123", user.StudentID)
	// Email is normalized to lower case
	assert.Equal(t, "stu123@university.edu", user.Email)
	// Password is stored hashed
	assert.NotEqual(t, "secret99", user.Password)
	assert.True(t, models.CheckPasswordHash("secret99", user.Password))
	assert.Equal(t, "default-avatar.png", user.ProfilePicture)
}

func TestRegisterValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, newTestJWT())

	tests := []struct {
		name    string
		req     models.RegisterRequest
		wantErr error
	}{
		{"student id too short", models.RegisterRequest{StudentID: "ab", Email: "a@b.edu", Password: "secret99"}, ErrInvalidStudentID},
		{"student id too long", models.RegisterRequest{StudentID: strings.Repeat("x", 51), Email: "a@b.edu", Password: "secret99"}, ErrInvalidStudentID},
		{"email without at", models.RegisterRequest{StudentID: "stu123", Email: "nodomain.edu", Password: "secret99"}, ErrInvalidEmail},
		{"email without dot", models.RegisterRequest{StudentID: "stu123", Email: "user@edu", Password: "secret99"}, ErrInvalidEmail},
		{"email too long", models.RegisterRequest{StudentID: "stu123", Email: strings.Repeat("x", 115) + "@b.edu", Password: "secret99"}, ErrInvalidEmail},
		{"password too short", models.RegisterRequest{StudentID: "stu123", Email: "a@b.edu", Password: "12345"}, ErrInvalidPassword},
		{"password too long", models.RegisterRequest{StudentID: "stu123", Email: "a@b.edu", Password: strings.Repeat("x", 129)}, ErrInvalidPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(&tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, newTestJWT())

	_, _, err := svc.Register(&models.RegisterRequest{StudentID: "stu123", Email: "stu123@uni.edu", Password: "secret99"})
	require.NoError(t, err)

	_, _, err = svc.Register(&models.RegisterRequest{StudentID: "stu123", Email: "other@uni.edu", Password: "secret99"})
	assert.ErrorIs(t, err, ErrStudentIDTaken)

	_, _, err = svc.Register(&models.RegisterRequest{StudentID: "stu456", Email: "stu123@uni.edu", Password: "secret99"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, newTestJWT())

	_, _, err := svc.Register(&models.RegisterRequest{StudentID: "stu123", Email: "stu123@uni.edu", Password: "secret99"})
	require.NoError(t, err)

	user, token, err := svc.Login(&models.LoginRequest{StudentID: "stu123", Password: "secret99"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "stu123", user.StudentID)

	_, _, err = svc.Login(&models.LoginRequest{StudentID: "stu123", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(&models.LoginRequest{StudentID: "nobody", Password: "secret99"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestListOthersExcludesViewer(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, newTestJWT())
	alice := seedUser(t, db, "alice01", "Alice")
	bob := seedUser(t, db, "bob02", "Bob")

	others, err := svc.ListOthers(alice.ID)
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, bob.ID, others[0].ID)
}

func TestUpdateProfile(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, newTestJWT())
	alice := seedUser(t, db, "alice01", "")

	updated, err := svc.UpdateProfile(alice.ID, "Alice Johnson", "/uploads/pic.png")
	require.NoError(t, err)
	assert.Equal(t, "Alice Johnson", updated.FullName)
	assert.Equal(t, "/uploads/pic.png", updated.ProfilePicture)

	// Empty arguments leave existing values alone
	updated, err = svc.UpdateProfile(alice.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, "Alice Johnson", updated.FullName)
	assert.Equal(t, "/uploads/pic.png", updated.ProfilePicture)

	_, err = svc.UpdateProfile(999, "Nobody", "")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, newTestJWT())

	user, _, err := svc.Register(&models.RegisterRequest{StudentID: "stu123", Email: "stu123@uni.edu", Password: "secret99"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(user.ID, "wrong", "newsecret", "newsecret"), ErrWrongCurrentPassword)
	assert.ErrorIs(t, svc.ChangePassword(user.ID, "secret99", "newsecret", "different"), ErrPasswordMismatch)
	assert.ErrorIs(t, svc.ChangePassword(user.ID, "secret99", "secret99", "secret99"), ErrPasswordUnchanged)
	assert.ErrorIs(t, svc.ChangePassword(user.ID, "secret99", "short", "short"), ErrInvalidPassword)

	require.NoError(t, svc.ChangePassword(user.ID, "secret99", "newsecret", "newsecret"))

	_, _, err = svc.Login(&models.LoginRequest{StudentID: "stu123", Password: "newsecret"})
	assert.NoError(t, err)
	_, _, err = svc.Login(&models.LoginRequest{StudentID: "stu123", Password: "secret99"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
