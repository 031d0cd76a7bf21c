package service

import (
	"testing"
	"time"

	"fieldtrack-backend/internal/config"
	"fieldtrack-backend/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

func testAuthService() AuthService {
	return AuthService{
		Config: config.Config{
			JWTSecret:       "test-secret",
			AccessTokenTTL:  time.Hour,
			RefreshTokenTTL: 24 * time.Hour,
		},
	}
}

func TestIssueTokensClaims(t *testing.T) {
	svc := testAuthService()
	user := domain.User{ID: 42, Email: "worker@example.com", Name: "Worker", Role: domain.RoleEmployee}

	res, err := svc.IssueTokens(&user)
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}
	if res.User.ID != 42 {
		t.Fatalf("result user: %+v", res.User)
	}

	keyFn := func(*jwt.Token) (interface{}, error) { return []byte("test-secret"), nil }

	access, err := jwt.Parse(res.AccessToken, keyFn)
	if err != nil || !access.Valid {
		t.Fatalf("access token invalid: %v", err)
	}
	claims := access.Claims.(jwt.MapClaims)
	if claims["sub"] != "42" || claims["token_type"] != "access" {
		t.Fatalf("access claims: %v", claims)
	}
	if claims["role"] != string(domain.RoleEmployee) {
		t.Fatalf("role claim: %v", claims["role"])
	}

	refresh, err := jwt.Parse(res.RefreshToken, keyFn)
	if err != nil || !refresh.Valid {
		t.Fatalf("refresh token invalid: %v", err)
	}
	rc := refresh.Claims.(jwt.MapClaims)
	if rc["token_type"] != "refresh" || rc["sub"] != "42" {
		t.Fatalf("refresh claims: %v", rc)
	}
}

func TestHashPasswordRoundTrip(t *testing.T) {
	svc := testAuthService()
	hash, err := svc.HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "" || hash == "s3cret-pass" {
		t.Fatalf("unexpected hash: %q", hash)
	}
	hash2, err := svc.HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash again: %v", err)
	}
	if hash == hash2 {
		t.Fatal("bcrypt hashes should be salted")
	}
}

func TestExpandUsername(t *testing.T) {
	ownerDomain := "shop.example"
	cases := []struct {
		in          string
		ownerDomain *string
		want        string
	}{
		{"ravi", nil, "ravi@fieldtrack.app"},
		{"ravi", &ownerDomain, "ravi@shop.example"},
		{"Ravi ", &ownerDomain, "ravi@shop.example"},
		{"ravi@other.com", &ownerDomain, "ravi@other.com"},
		{"", &ownerDomain, ""},
	}
	for _, tc := range cases {
		got := ExpandUsername(tc.in, tc.ownerDomain, "fieldtrack.app")
		if got != tc.want {
			t.Errorf("ExpandUsername(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
