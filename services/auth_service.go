package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// SessionDuration is how long an admin session stays valid after login.
const SessionDuration = 24 * time.Hour

// AuthService gates the admin panel behind the shared operator password.
// There is no per-admin identity: a successful login yields a signed session
// token carrying only issue and expiry times.
type AuthService interface {
	Login(password string) (token string, expiresAt time.Time, err error)
	Validate(token string) error
}

type authService struct {
	passwordHash []byte // bcrypt hash of the shared admin password
	secret       []byte
	now          func() time.Time
}

func NewAuthService(passwordHash, secret string, now func() time.Time) AuthService {
	if now == nil {
		now = time.Now
	}
	return &authService{
		passwordHash: []byte(passwordHash),
		secret:       []byte(secret),
		now:          now,
	}
}

func (s *authService) Login(password string) (string, time.Time, error) {
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", time.Time{}, ErrInvalidAdminPassword
	}

	issuedAt := s.now()
	expiresAt := issuedAt.Add(SessionDuration)

	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func (s *authService) Validate(tokenString string) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)

	claims := &jwt.RegisteredClaims{}
	_, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrSessionExpired
		}
		return ErrSessionInvalid
	}
	if claims.Subject != "admin" {
		return ErrSessionInvalid
	}
	return nil
}
