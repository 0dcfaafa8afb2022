package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Tokens signs and verifies bearer tokens of the form
// <user id>.<unix expiry>.<base64url HMAC-SHA256 of the first two parts>.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens returns a signer using secret with tokens valid for ttl.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a token for userID and its expiry.
func (t *Tokens) Issue(userID uuid.UUID) (string, time.Time) {
	exp := t.now().Add(t.ttl).Truncate(time.Second)
	payload := userID.String() + "." + strconv.FormatInt(exp.Unix(), 10)
	return payload + "." + t.sign(payload), exp
}

// Verify checks the signature and expiry and returns the user id.
func (t *Tokens) Verify(token string) (uuid.UUID, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return uuid.Nil, ErrInvalidToken
	}
	payload := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(parts[2]), []byte(t.sign(payload))) {
		return uuid.Nil, ErrInvalidToken
	}

	exp, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	if !t.now().Before(time.Unix(exp, 0)) {
		return uuid.Nil, ErrTokenExpired
	}

	id, err := uuid.Parse(parts[0])
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}

func (t *Tokens) sign(payload string) string {
	mac := hmac.New(sha256.New, t.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
