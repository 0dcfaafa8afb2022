package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/bizsight/internal/auth"
	db "github.com/JonMunkholm/bizsight/internal/database"
	"github.com/JonMunkholm/bizsight/internal/store"
	"github.com/google/uuid"
)

// RegisterInput is a new account request.
type RegisterInput struct {
	FullName     string `json:"fullName"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	MobileNumber string `json:"mobileNumber"`
}

// Session is a signed-in user and the bearer token for later requests.
type Session struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

var userConflicts = map[string]string{
	"users_email_key":         "Email already registered",
	"users_username_key":      "Username already taken",
	"users_mobile_number_key": "Mobile number already registered",
}

// Register creates an account. Username and email are stored trimmed and
// lowercased, and each must be unused, as must the mobile number.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.MobileNumber = strings.TrimSpace(in.MobileNumber)

	if in.FullName == "" || in.Username == "" || in.Email == "" || in.Password == "" || in.MobileNumber == "" {
		return Session{}, &ValidationError{Message: "Please enter all fields"}
	}
	if !strings.Contains(in.Email, "@") {
		return Session{}, &ValidationError{Field: "email", Value: in.Email, Message: "Please enter a valid email address"}
	}
	if !isMobileNumber(in.MobileNumber) {
		return Session{}, &ValidationError{Field: "mobileNumber", Value: in.MobileNumber, Message: "Mobile number must be exactly 10 digits"}
	}

	hash, err := auth.HashPassword(in.Password)
	if errors.Is(err, auth.ErrPasswordTooShort) {
		return Session{}, &ValidationError{Field: "password", Message: fmt.Sprintf("Password must be at least %d characters", auth.MinPasswordLength)}
	}
	if err != nil {
		return Session{}, err
	}

	row, err := s.store.CreateUser(ctx, db.CreateUserParams{
		FullName:     in.FullName,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		MobileNumber: in.MobileNumber,
	})
	if name, ok := store.Violation(err, store.CodeUniqueViolation); ok {
		msg, known := userConflicts[name]
		if !known {
			msg = "Account details already registered"
		}
		return Session{}, &UserError{
			Technical: ErrUserExists,
			User:      UserMessage{Message: msg, Action: "Log in or use different details", Code: "AUTH002"},
		}
	}
	if err != nil {
		return Session{}, fmt.Errorf("create user: %w", err)
	}

	user := userFromDB(row)
	s.LogAudit(ctx, AuditLogParams{Action: ActionUserRegister, UserID: user.ID, Entity: user.ID.String()})
	return s.session(user), nil
}

// Login checks the password and issues a token. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return Session{}, &ValidationError{Message: "Please enter all fields"}
	}

	row, err := s.store.GetUserByUsername(ctx, username)
	if store.IsNotFound(err) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("get user: %w", err)
	}
	if !auth.CheckPassword(row.PasswordHash, password) {
		return Session{}, ErrInvalidCredentials
	}

	return s.session(userFromDB(row)), nil
}

// Profile returns the account for userID.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (User, error) {
	row, err := s.store.GetUserByID(ctx, userID)
	if store.IsNotFound(err) {
		return User{}, auth.ErrInvalidToken
	}
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return userFromDB(row), nil
}

func (s *Service) session(user User) Session {
	token, exp := s.tokens.Issue(user.ID)
	return Session{User: user, Token: token, ExpiresAt: exp}
}

func isMobileNumber(s string) bool {
	if len(s) != 10 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
