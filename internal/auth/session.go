package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// SessionIssuer mints bearer tokens for users that authenticated with Telegram
// init data, so the mini app does not have to resend the signed blob on every call.
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionIssuer creates an issuer signing HS256 tokens valid for ttl
func NewSessionIssuer(secret string, ttl time.Duration) *SessionIssuer {
	return &SessionIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token carrying the user's id and role
func (s *SessionIssuer) Issue(user *models.User) (string, time.Time, error) {
	if user == nil || user.ID == 0 {
		return "", time.Time{}, fmt.Errorf("cannot issue session: no user")
	}
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.ttl)

	claims := jwt.MapClaims{
		"uid":  strconv.FormatUint(uint64(user.ID), 10),
		"role": string(user.Role),
		"sub":  "telegram:" + strconv.FormatInt(user.TelegramID, 10),
		"iat":  issuedAt.Unix(),
		"exp":  expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

// TTL is the lifetime of issued tokens
func (s *SessionIssuer) TTL() time.Duration {
	return s.ttl
}
