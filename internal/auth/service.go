package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid name or password")
	ErrNotConfigured      = errors.New("operator sign-in is not configured")
)

// TokenTTL is how long an issued operator token stays valid.
const TokenTTL = 12 * time.Hour

// Service signs in the single registry operator. The operator's password is
// configured as a bcrypt hash, never in plain text.
type Service struct {
	name   string
	hash   []byte
	secret []byte
	now    func() time.Time
}

func NewService(name, passwordHash, secret string) *Service {
	return &Service{name: name, hash: []byte(passwordHash), secret: []byte(secret), now: time.Now}
}

func (s *Service) Authenticate(name, password string) error {
	if s.name == "" || !looksLikeBcrypt(string(s.hash)) || len(s.secret) == 0 {
		return ErrNotConfigured
	}
	if name != s.name {
		return ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(s.hash, []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// IssueToken signs an HS256 token carrying the operator name.
func (s *Service) IssueToken(name string) (string, time.Time, error) {
	expires := s.now().Add(TokenTTL)
	claims := jwt.MapClaims{
		"operator": name,
		"exp":      expires.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// HashPassword produces the value expected in OPERATOR_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func looksLikeBcrypt(value string) bool {
	return len(value) > 4 && value[0:2] == "$2"
}
