package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Service signs and verifies the three token kinds the API hands out:
// the bearer access token, the email-confirmation token and the
// password-reset token. All of them are HS256 over the same secret.
type Service struct {
	Secret            []byte
	ExpirationSeconds int
}

const EmailTokenTTL = 7 * 24 * time.Hour

func (s *Service) CreateAccessToken(username string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = time.Duration(s.ExpirationSeconds) * time.Second
	}
	claims := jwt.MapClaims{
		"sub": username,
		"exp": time.Now().Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.Secret)
}

func (s *Service) CreateEmailToken(email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": email,
		"iat": now.Unix(),
		"exp": now.Add(EmailTokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.Secret)
}

// CreateResetToken embeds the already-hashed replacement password next to
// the subject email, so no reset request has to be stored server-side. The
// hash is applied only when the token comes back via ConfirmResetPassword.
func (s *Service) CreateResetToken(email, passwordHash string) (string, error) {
	claims := jwt.MapClaims{
		"sub":      email,
		"password": passwordHash,
		"exp":      time.Now().Add(time.Duration(s.ExpirationSeconds) * time.Second).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.Secret)
}

func (s *Service) Parse(rawToken string) (jwt.MapClaims, error) {
	t, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signature method: %v", t.Header["alg"])
		}
		return s.Secret, nil
	})
	if err != nil || !t.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("cannot parse claims")
	}
	return claims, nil
}

func (s *Service) SubjectFromToken(rawToken string) (string, error) {
	claims, err := s.Parse(rawToken)
	if err != nil {
		return "", err
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("missing sub claim")
	}
	return sub, nil
}

func (s *Service) PasswordFromToken(rawToken string) (string, error) {
	claims, err := s.Parse(rawToken)
	if err != nil {
		return "", err
	}
	password, ok := claims["password"].(string)
	if !ok || password == "" {
		return "", fmt.Errorf("missing password claim")
	}
	return password, nil
}
