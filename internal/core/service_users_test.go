package core

import (
	"context"
	"testing"

	"github.com/JonMunkholm/bizsight/internal/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegistration() RegisterInput {
	return RegisterInput{
		FullName:     "Ada Lovelace",
		Username:     "  Ada ",
		Email:        "ADA@example.com",
		Password:     "correct horse",
		MobileNumber: "5551234567",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "ada", sess.User.Username)
	assert.Equal(t, "ada@example.com", sess.User.Email)
	assert.NotEmpty(t, sess.Token)

	userID, err := svc.Tokens().Verify(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, userID)

	login, err := svc.Login(ctx, "ADA", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, login.User.ID)

	_, err = svc.Login(ctx, "ada", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	me, err := svc.Profile(ctx, sess.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", me.FullName)

	_, err = svc.Profile(ctx, uuid.New())
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RegisterInput)
		wantMsg string
	}{
		{"missing field", func(in *RegisterInput) { in.FullName = " " }, "Please enter all fields"},
		{"bad email", func(in *RegisterInput) { in.Email = "ada.example.com" }, "Please enter a valid email address"},
		{"short mobile", func(in *RegisterInput) { in.MobileNumber = "12345" }, "Mobile number must be exactly 10 digits"},
		{"letters in mobile", func(in *RegisterInput) { in.MobileNumber = "55512345ab" }, "Mobile number must be exactly 10 digits"},
		{"short password", func(in *RegisterInput) { in.Password = "short" }, "Password must be at least 6 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			in := validRegistration()
			tt.mutate(&in)

			_, err := svc.Register(context.Background(), in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantMsg, verr.Message)
		})
	}
}

func TestRegister_Conflicts(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RegisterInput)
		wantMsg string
	}{
		{"username", func(in *RegisterInput) { in.Email = "other@example.com"; in.MobileNumber = "5550000000" }, "Username already taken"},
		{"email", func(in *RegisterInput) { in.Username = "other"; in.MobileNumber = "5550000000" }, "Email already registered"},
		{"mobile", func(in *RegisterInput) { in.Username = "other"; in.Email = "other@example.com" }, "Mobile number already registered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			ctx := context.Background()
			_, err := svc.Register(ctx, validRegistration())
			require.NoError(t, err)

			in := validRegistration()
			tt.mutate(&in)
			_, err = svc.Register(ctx, in)

			require.ErrorIs(t, err, ErrUserExists)
			um := MapError(err)
			assert.Equal(t, tt.wantMsg, um.Message)
			assert.Equal(t, "AUTH002", um.Code)
		})
	}
}
