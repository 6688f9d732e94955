package service

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"strings"
	"testing"
	"time"

	"irrigation_node/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const testSigningKey = "test-signing-key"

func newTestAuth(repo *mockAuthRepo) *AuthService {
	return NewAuthService(repo, AuthConfig{SigningKey: testSigningKey, TokenTTL: time.Minute})
}

// mockAuthRepo is a lightweight in-test mock for repository.Authorization.
type mockAuthRepo struct {
	CreateFn        func(username, hash string) (int, error)
	GetByUsernameFn func(username string) (*models.Operator, error)
	TouchLoginFn    func(id int, at time.Time) error
	ListFn          func() ([]models.Operator, error)

	touchCalls  []int
	createCalls []struct {
		username string
		hash     string
	}
	getCalls []string
}

func (m *mockAuthRepo) Create(username, hash string) (int, error) {
	m.createCalls = append(m.createCalls, struct {
		username string
		hash     string
	}{username: username, hash: hash})
	return m.CreateFn(username, hash)
}

func (m *mockAuthRepo) GetByUsername(username string) (*models.Operator, error) {
	m.getCalls = append(m.getCalls, username)
	return m.GetByUsernameFn(username)
}

func (m *mockAuthRepo) TouchLogin(id int, at time.Time) error {
	m.touchCalls = append(m.touchCalls, id)
	if m.TouchLoginFn == nil {
		return nil
	}
	return m.TouchLoginFn(id, at)
}

func (m *mockAuthRepo) List() ([]models.Operator, error) {
	return m.ListFn()
}

// --- SignUp tests ---

func TestAuthService_SignUp_SuccessHashesPasswordAndCallsRepo(t *testing.T) {
	mock := &mockAuthRepo{
		CreateFn: func(username, hash string) (int, error) {
			return 42, nil
		},
	}
	svc := newTestAuth(mock)

	id, err := svc.SignUp("nightshift", "s3cr3t")
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected id 42, got %d", id)
	}

	// Ensure Create called exactly once with hashed password (not equal to raw) and valid bcrypt.
	if len(mock.createCalls) != 1 {
		t.Fatalf("expected 1 Create call, got %d", len(mock.createCalls))
	}
	call := mock.createCalls[0]
	if call.username != "nightshift" {
		t.Errorf("expected username 'nightshift', got %q", call.username)
	}
	if call.hash == "s3cr3t" {
		t.Errorf("expected hashed password not equal to raw password")
	}
	if err := verifyPassword(call.hash, "s3cr3t"); err != nil {
		t.Errorf("stored hash does not verify with original password: %v", err)
	}
}

func TestAuthService_SignUp_EmptyPassword(t *testing.T) {
	mock := &mockAuthRepo{
		CreateFn: func(username, hash string) (int, error) {
			t.Fatal("Create should not be called for empty password")
			return 0, nil
		},
	}
	svc := newTestAuth(mock)

	_, err := svc.SignUp("dayshift", "   ")
	if err == nil {
		t.Fatalf("expected error for empty password, got nil")
	}
	if len(mock.createCalls) != 0 {
		t.Fatalf("expected no Create calls, got %d", len(mock.createCalls))
	}
}

func TestAuthService_SignUp_RepoError(t *testing.T) {
	mock := &mockAuthRepo{
		CreateFn: func(username, hash string) (int, error) {
			return 0, errors.New("db down")
		},
	}
	svc := newTestAuth(mock)

	_, err := svc.SignUp("tech", "pass123")
	if err == nil {
		t.Fatalf("expected repo error, got nil")
	}
}

// --- GenerateToken tests ---

func TestAuthService_GenerateToken_Success(t *testing.T) {
	// Operator with a valid bcrypt hash for the provided password.
	hash, err := hashPassword("letmein")
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	op := &models.Operator{ID: 7, Username: "agronomist", PasswordHash: hash}

	mock := &mockAuthRepo{
		GetByUsernameFn: func(username string) (*models.Operator, error) {
			if username != "agronomist" {
				t.Fatalf("expected username 'agronomist', got %q", username)
			}
			return op, nil
		},
	}
	svc := newTestAuth(mock)

	token, err := svc.GenerateToken("agronomist", "letmein")
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}
	if token == "" {
		t.Fatalf("expected non-empty token")
	}

	// Token must carry the operator id.
	uid, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if uid != 7 {
		t.Fatalf("expected operator id 7 from token, got %d", uid)
	}

	if len(mock.getCalls) != 1 {
		t.Fatalf("expected 1 GetByUsername call, got %d", len(mock.getCalls))
	}
	if len(mock.touchCalls) != 1 || mock.touchCalls[0] != 7 {
		t.Fatalf("expected sign-in stamped for operator 7, got %v", mock.touchCalls)
	}
}

func TestAuthService_GenerateToken_StampsSignInTime(t *testing.T) {
	hash, err := hashPassword("letmein")
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	at := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)
	var stamped time.Time
	mock := &mockAuthRepo{
		GetByUsernameFn: func(username string) (*models.Operator, error) {
			return &models.Operator{ID: 3, Username: username, PasswordHash: hash}, nil
		},
		TouchLoginFn: func(id int, got time.Time) error {
			stamped = got
			return nil
		},
	}
	svc := newTestAuth(mock)
	svc.now = func() time.Time { return at }

	if _, err := svc.GenerateToken("grower", "letmein"); err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}
	if !stamped.Equal(at) {
		t.Fatalf("expected sign-in at %v, got %v", at, stamped)
	}
}

func TestAuthService_GenerateToken_TouchError(t *testing.T) {
	hash, err := hashPassword("letmein")
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	mock := &mockAuthRepo{
		GetByUsernameFn: func(username string) (*models.Operator, error) {
			return &models.Operator{ID: 3, Username: username, PasswordHash: hash}, nil
		},
		TouchLoginFn: func(int, time.Time) error { return errors.New("disk full") },
	}
	svc := newTestAuth(mock)

	token, err := svc.GenerateToken("grower", "letmein")
	if err == nil || token != "" {
		t.Fatalf("expected no token when the sign-in cannot be recorded, got %q, %v", token, err)
	}
}

func TestAuthService_GenerateToken_WrongPasswordNotStamped(t *testing.T) {
	hash, err := hashPassword("correct")
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	mock := &mockAuthRepo{
		GetByUsernameFn: func(username string) (*models.Operator, error) {
			return &models.Operator{ID: 3, Username: username, PasswordHash: hash}, nil
		},
	}
	svc := newTestAuth(mock)

	if _, err := svc.GenerateToken("grower", "wrong"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
	if len(mock.touchCalls) != 0 {
		t.Fatalf("failed sign-in must not be stamped, got %v", mock.touchCalls)
	}
}

func TestAuthService_GenerateToken_UserNotFound(t *testing.T) {
	mock := &mockAuthRepo{
		GetByUsernameFn: func(username string) (*models.Operator, error) {
			return nil, nil
		},
	}
	svc := newTestAuth(mock)

	_, err := svc.GenerateToken("ghost", "pw")
	if err == nil {
		t.Fatalf("expected ErrUserNotFound, got nil")
	}
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got: %v", err)
	}
}

func TestAuthService_GenerateToken_InvalidPassword(t *testing.T) {
	// Stored hash for different password.
	correctHash, err := hashPassword("correct")
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	mock := &mockAuthRepo{
		GetByUsernameFn: func(username string) (*models.Operator, error) {
			return &models.Operator{ID: 1, Username: "intern", PasswordHash: correctHash}, nil
		},
	}
	svc := newTestAuth(mock)

	_, err = svc.GenerateToken("intern", "wrong")
	if err == nil {
		t.Fatalf("expected ErrInvalidPassword, got nil")
	}
	if !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got: %v", err)
	}
}

func TestAuthService_GenerateToken_RepoError(t *testing.T) {
	mock := &mockAuthRepo{
		GetByUsernameFn: func(username string) (*models.Operator, error) {
			return nil, errors.New("query failed")
		},
	}
	svc := newTestAuth(mock)

	_, err := svc.GenerateToken("greenhouse1", "pw")
	if err == nil {
		t.Fatalf("expected repo error, got nil")
	}
}

// --- ParseToken tests ---

func TestAuthService_ParseToken_Success(t *testing.T) {
	svc := newTestAuth(&mockAuthRepo{})
	token, err := svc.issueToken(99)
	if err != nil {
		t.Fatalf("issueToken failed: %v", err)
	}

	uid, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken returned error: %v", err)
	}
	if uid != 99 {
		t.Fatalf("expected operator id 99, got %d", uid)
	}
}

func TestAuthService_ParseToken_Malformed(t *testing.T) {
	svc := newTestAuth(&mockAuthRepo{})
	_, err := svc.ParseToken("not-a-jwt")
	if err == nil {
		t.Fatalf("expected error for malformed token")
	}
}

func TestAuthService_ParseToken_InvalidSignature(t *testing.T) {
	svc := newTestAuth(&mockAuthRepo{})

	// Create a token signed with a different key.
	now := time.Now()
	tk := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		OperatorID: 5,
	})
	otherKey := []byte("different-key")
	badToken, err := tk.SignedString(otherKey)
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	_, err = svc.ParseToken(badToken)
	if err == nil {
		t.Fatalf("expected signature verification error")
	}
}

func TestAuthService_ParseToken_Expired(t *testing.T) {
	svc := newTestAuth(&mockAuthRepo{})

	// Issue an already expired token using same signing key.
	past := time.Now().Add(-2 * time.Hour)
	tk := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(past),
			IssuedAt:  jwt.NewNumericDate(past.Add(-time.Minute)),
		},
		OperatorID: 11,
	})
	expiredToken, err := tk.SignedString([]byte(testSigningKey))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	_, err = svc.ParseToken(expiredToken)
	if err == nil {
		t.Fatalf("expected error for expired token")
	}
}

func TestAuthService_ParseToken_UnexpectedAlg(t *testing.T) {
	svc := newTestAuth(&mockAuthRepo{})

	now := time.Now()

	// Generate RSA key for RS256 signing
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa.GenerateKey failed: %v", err)
	}

	tk := jwt.NewWithClaims(jwt.SigningMethodRS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		OperatorID: 12,
	})

	// Sanity check: ensure the algorithm is RS256 (non-HMAC)
	if tk.Method.Alg() != jwt.SigningMethodRS256.Alg() {
		t.Fatalf("expected RS256 alg, got %s", tk.Method.Alg())
	}

	tokenStr, err := tk.SignedString(privateKey)
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	_, err = svc.ParseToken(tokenStr)
	if err == nil {
		t.Fatalf("expected error due to unexpected signing method")
	}
}

func TestAuthService_ParseToken_OtherNodeKey(t *testing.T) {
	issuer := NewAuthService(&mockAuthRepo{}, AuthConfig{SigningKey: "node-a"})
	verifier := NewAuthService(&mockAuthRepo{}, AuthConfig{SigningKey: "node-b"})

	token, err := issuer.issueToken(3)
	if err != nil {
		t.Fatalf("issueToken failed: %v", err)
	}
	if _, err := verifier.ParseToken(token); err == nil {
		t.Fatalf("expected token from another key to be rejected")
	}
}

func TestNewAuthService_DefaultTTL(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{}, AuthConfig{SigningKey: "k"})
	if svc.tokenTTL != defaultTokenTTL {
		t.Fatalf("expected default ttl %v, got %v", defaultTokenTTL, svc.tokenTTL)
	}
}

func TestNormalizeUsername(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"grower", "grower", false},
		{"  Grower ", "grower", false},
		{"night.shift_2-a", "night.shift_2-a", false},
		{"", "", true},
		{"   ", "", true},
		{"two words", "", true},
		{"rm;-rf", "", true},
		{"ёжик", "", true},
		{strings.Repeat("a", 32), strings.Repeat("a", 32), false},
		{strings.Repeat("a", 33), "", true},
	}
	for _, tc := range cases {
		got, err := normalizeUsername(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidUsername) {
				t.Fatalf("normalizeUsername(%q): expected ErrInvalidUsername, got %q, %v", tc.in, got, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("normalizeUsername(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}

func TestAuthService_SignUp_NormalizesUsername(t *testing.T) {
	mock := &mockAuthRepo{
		CreateFn: func(username, hash string) (int, error) { return 1, nil },
	}
	svc := newTestAuth(mock)

	if _, err := svc.SignUp(" Grower ", "pw"); err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if mock.createCalls[0].username != "grower" {
		t.Fatalf("expected normalized username, got %q", mock.createCalls[0].username)
	}

	if _, err := svc.SignUp("bad name", "pw"); !errors.Is(err, ErrInvalidUsername) {
		t.Fatalf("expected ErrInvalidUsername, got %v", err)
	}
	if len(mock.createCalls) != 1 {
		t.Fatalf("invalid username must not reach the repository")
	}
}

func TestAuthService_GenerateToken_CaseInsensitiveLookup(t *testing.T) {
	hash, err := hashPassword("pw")
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	mock := &mockAuthRepo{
		GetByUsernameFn: func(username string) (*models.Operator, error) {
			return &models.Operator{ID: 4, Username: username, PasswordHash: hash}, nil
		},
	}
	svc := newTestAuth(mock)

	if _, err := svc.GenerateToken("GROWER", "pw"); err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}
	if mock.getCalls[0] != "grower" {
		t.Fatalf("expected lookup by normalized name, got %q", mock.getCalls[0])
	}

	if _, err := svc.GenerateToken("no such/name", "pw"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for malformed name, got %v", err)
	}
	if len(mock.getCalls) != 1 {
		t.Fatalf("malformed name must not reach the repository")
	}
}

func TestAuthService_Operators(t *testing.T) {
	at := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)
	mock := &mockAuthRepo{
		ListFn: func() ([]models.Operator, error) {
			return []models.Operator{{ID: 1, Username: "grower", LastLoginAt: &at}}, nil
		},
	}
	svc := newTestAuth(mock)

	ops, err := svc.Operators()
	if err != nil {
		t.Fatalf("Operators returned error: %v", err)
	}
	if len(ops) != 1 || ops[0].Username != "grower" || !ops[0].LastLoginAt.Equal(at) {
		t.Fatalf("unexpected operators %+v", ops)
	}
}
