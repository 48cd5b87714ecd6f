package httpapi

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"dokanpos/backend/internal/domain"
)

type userStoreStub struct {
	mu      sync.Mutex
	users   map[string]domain.UserAccount
	updates int
}

func (s *userStoreStub) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users == nil {
		s.users = make(map[string]domain.UserAccount)
	}
	s.users[user.Username] = user
	return nil
}

func (s *userStoreStub) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.UserAccount, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	return out, nil
}

func (s *userStoreStub) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.users[username]
	user.Password = password
	s.users[username] = user
	s.updates++
	return nil
}

func TestAuthManagerUpgradesLegacyPlainPassword(t *testing.T) {
	stub := &userStoreStub{
		users: map[string]domain.UserAccount{
			"legacy": {
				Username:  "legacy",
				Password:  "plain-old-password",
				Role:      "cashier",
				Active:    true,
				CreatedAt: time.Now().UTC(),
			},
		},
	}

	auth := NewAuthManager("secret", time.Hour, "123456", stub)

	resp, err := auth.Login(domain.LoginRequest{Username: "legacy", Password: "plain-old-password"})
	if err != nil {
		t.Fatalf("login with legacy password failed: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatalf("expected access token")
	}

	stub.mu.Lock()
	stored := stub.users["legacy"].Password
	updates := stub.updates
	stub.mu.Unlock()

	if !strings.HasPrefix(stored, "$2") {
		t.Fatalf("expected stored password to be upgraded to bcrypt, got %q", stored)
	}
	if updates == 0 {
		t.Fatalf("expected an UpdateUserPassword call")
	}
}

func TestParseTokenRoundTrip(t *testing.T) {
	auth := NewAuthManager("secret", time.Hour, "123456", nil)

	token, err := auth.sign("admin", "admin", time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	actor, err := auth.ParseToken(token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if actor.Username != "admin" || actor.Role != "admin" {
		t.Fatalf("actor = %+v", actor)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewAuthManager("secret-a", time.Hour, "123456", nil)
	verifier := NewAuthManager("secret-b", time.Hour, "123456", nil)

	token, err := issuer.sign("admin", "admin", time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := verifier.ParseToken(token); err == nil {
		t.Fatalf("expected verification to fail with a different secret")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	auth := NewAuthManager("secret", time.Hour, "123456", nil)

	token, err := auth.sign("admin", "admin", time.Now().UTC().Add(-time.Minute))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := auth.ParseToken(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestCreateCashierValidation(t *testing.T) {
	auth := NewAuthManager("secret", time.Hour, "123456", &userStoreStub{})

	if _, err := auth.CreateCashier(domain.CashierCreateRequest{Username: "ab", Password: "secret789"}); err == nil {
		t.Fatalf("expected short username to be rejected")
	}
	if _, err := auth.CreateCashier(domain.CashierCreateRequest{Username: "kasirbaru", Password: "123"}); err == nil {
		t.Fatalf("expected short password to be rejected")
	}

	created, err := auth.CreateCashier(domain.CashierCreateRequest{Username: "KasirBaru", Password: "secret789"})
	if err != nil {
		t.Fatalf("create cashier failed: %v", err)
	}
	if created.Username != "kasirbaru" {
		t.Fatalf("username = %q, want lowercased", created.Username)
	}

	if _, err := auth.CreateCashier(domain.CashierCreateRequest{Username: "kasirbaru", Password: "secret789"}); err == nil {
		t.Fatalf("expected duplicate username to be rejected")
	}
}

func TestValidateManagerPIN(t *testing.T) {
	auth := NewAuthManager("secret", time.Hour, "123456", nil)

	if !auth.ValidateManagerPIN("123456") {
		t.Fatalf("expected correct PIN to validate")
	}
	if auth.ValidateManagerPIN("654321") {
		t.Fatalf("expected wrong PIN to fail")
	}
	if auth.ValidateManagerPIN("") {
		t.Fatalf("expected empty PIN to fail")
	}
}
