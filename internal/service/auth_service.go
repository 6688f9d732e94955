package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"irrigation_node/internal/models"
	"irrigation_node/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = time.Hour

// AuthConfig holds the token settings from configuration.
type AuthConfig struct {
	SigningKey string
	TokenTTL   time.Duration
}

// Domain errors for auth flows.
var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrUserNotFound    = errors.New("operator not found")
	ErrInvalidToken    = errors.New("invalid token")
	ErrInvalidUsername = errors.New("username must be 1-32 characters of a-z, 0-9, '.', '_' or '-'")
)

// Operator names are typed on the node console and in the dashboard; keep
// them case-insensitive and shell-safe.
var usernamePattern = regexp.MustCompile(`^[a-z0-9._-]{1,32}$`)

func normalizeUsername(username string) (string, error) {
	u := strings.ToLower(strings.TrimSpace(username))
	if !usernamePattern.MatchString(u) {
		return "", ErrInvalidUsername
	}
	return u, nil
}

// AuthService handles operator auth for the diagnostics API.
type AuthService struct {
	authRepo   repository.Authorization
	signingKey []byte
	tokenTTL   time.Duration
	now        func() time.Time
}

func NewAuthService(repo repository.Authorization, cfg AuthConfig) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	return &AuthService{authRepo: repo, signingKey: []byte(cfg.SigningKey), tokenTTL: cfg.TokenTTL, now: time.Now}
}

// SignUp hashes password and creates a new operator. Only reachable from the CLI.
func (s *AuthService) SignUp(username, password string) (int, error) {
	username, err := normalizeUsername(username)
	if err != nil {
		return 0, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("invalid password: %w", err)
	}
	return s.authRepo.Create(username, hash)
}

// Claims defines JWT claims
type Claims struct {
	jwt.RegisteredClaims
	OperatorID int `json:"operator_id"`
}

// GenerateToken validates credentials, stamps the operator's last sign-in
// and returns JWT
func (s *AuthService) GenerateToken(username, password string) (string, error) {
	username, err := normalizeUsername(username)
	if err != nil {
		return "", ErrUserNotFound
	}
	u, err := s.authRepo.GetByUsername(username)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", ErrUserNotFound
	}

	if err := verifyPassword(u.PasswordHash, password); err != nil {
		return "", ErrInvalidPassword
	}

	token, err := s.issueToken(u.ID)
	if err != nil {
		return "", err
	}
	if err := s.authRepo.TouchLogin(u.ID, s.now()); err != nil {
		return "", fmt.Errorf("record sign-in: %w", err)
	}
	return token, nil
}

// Operators lists the node's operators with their last sign-in.
func (s *AuthService) Operators() ([]models.Operator, error) {
	return s.authRepo.List()
}

// ParseToken parses JWT and returns the operator id
func (s *AuthService) ParseToken(accessToken string) (int, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure HMAC signing is used
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return 0, ErrInvalidToken
	}

	return claims.OperatorID, nil
}

// helper: hash password safely
func hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// helper: verify password against hash
func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// helper: issue a signed JWT for an operator
func (s *AuthService) issueToken(operatorID int) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   "irrigation-node",
		},
		OperatorID: operatorID,
	})
	return token.SignedString(s.signingKey)
}
