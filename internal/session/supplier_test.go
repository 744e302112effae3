package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestSupplier(t *testing.T) (*Supplier, *SQLiteStore, *MemStore) {
	t.Helper()
	durable, err := OpenSQLite(t.TempDir())
	if err != nil {
		t.Fatalf("open durable store: %v", err)
	}
	t.Cleanup(func() { durable.Close() })

	ephemeral := NewMemStore()
	return NewSupplier(durable, ephemeral), durable, ephemeral
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestTokenSelfHeal(t *testing.T) {
	s, durable, ephemeral := newTestSupplier(t)

	// Token present only in the ephemeral store, the durable copy dropped.
	if err := ephemeral.Set(KeyToken, "tok-1"); err != nil {
		t.Fatal(err)
	}

	if got := s.Token(); got != "tok-1" {
		t.Fatalf("Token() = %q, want tok-1", got)
	}

	// The read must have written the token back into the durable store.
	healed, err := durable.Get(KeyToken)
	if err != nil {
		t.Fatal(err)
	}
	if healed != "tok-1" {
		t.Fatalf("durable store after self-heal = %q, want tok-1", healed)
	}
}

func TestTokenDurablePreferred(t *testing.T) {
	s, durable, ephemeral := newTestSupplier(t)

	if err := durable.Set(KeyToken, "tok-durable"); err != nil {
		t.Fatal(err)
	}
	if err := ephemeral.Set(KeyToken, "tok-ephemeral"); err != nil {
		t.Fatal(err)
	}

	if got := s.Token(); got != "tok-durable" {
		t.Fatalf("Token() = %q, want tok-durable", got)
	}
}

func TestTokenEmptyWhenLoggedOut(t *testing.T) {
	s, _, _ := newTestSupplier(t)
	if got := s.Token(); got != "" {
		t.Fatalf("Token() = %q, want empty", got)
	}
}

func TestEnsureMirrored(t *testing.T) {
	s, durable, ephemeral := newTestSupplier(t)

	if err := durable.Set(KeyToken, "tok-new"); err != nil {
		t.Fatal(err)
	}
	if err := ephemeral.Set(KeyToken, "tok-old"); err != nil {
		t.Fatal(err)
	}

	s.EnsureMirrored("tok-new")

	for name, store := range map[string]Store{"durable": durable, "ephemeral": ephemeral} {
		got, err := store.Get(KeyToken)
		if err != nil {
			t.Fatal(err)
		}
		if got != "tok-new" {
			t.Fatalf("%s store = %q, want tok-new", name, got)
		}
	}
}

func TestSetTokenCachesUserID(t *testing.T) {
	s, durable, _ := newTestSupplier(t)

	token := signedToken(t, jwt.MapClaims{"id": "U42"})
	if err := s.SetToken(token); err != nil {
		t.Fatal(err)
	}

	if got := s.UserID(); got != "U42" {
		t.Fatalf("UserID() = %q, want U42", got)
	}
	cached, err := durable.Get(KeyUserID)
	if err != nil {
		t.Fatal(err)
	}
	if cached != "U42" {
		t.Fatalf("cached user id = %q, want U42", cached)
	}
}

func TestUserIDFromSubjectClaim(t *testing.T) {
	s, _, ephemeral := newTestSupplier(t)

	token := signedToken(t, jwt.MapClaims{"sub": "U7"})
	if err := ephemeral.Set(KeyToken, token); err != nil {
		t.Fatal(err)
	}

	if got := s.UserID(); got != "U7" {
		t.Fatalf("UserID() = %q, want U7", got)
	}
}

func TestClear(t *testing.T) {
	s, durable, ephemeral := newTestSupplier(t)

	if err := s.SetToken(signedToken(t, jwt.MapClaims{"id": "U1"})); err != nil {
		t.Fatal(err)
	}
	s.Clear()

	if got := s.Token(); got != "" {
		t.Fatalf("Token() after Clear = %q, want empty", got)
	}
	for name, store := range map[string]Store{"durable": durable, "ephemeral": ephemeral} {
		got, err := store.Get(KeyToken)
		if err != nil {
			t.Fatal(err)
		}
		if got != "" {
			t.Fatalf("%s store after Clear = %q, want empty", name, got)
		}
	}
}

func TestExpiresSoon(t *testing.T) {
	s, _, _ := newTestSupplier(t)

	token := signedToken(t, jwt.MapClaims{
		"id":  "U1",
		"exp": time.Now().Add(2 * time.Minute).Unix(),
	})
	if err := s.SetToken(token); err != nil {
		t.Fatal(err)
	}

	if !s.ExpiresSoon(5 * time.Minute) {
		t.Fatal("ExpiresSoon(5m) = false for a token expiring in 2m")
	}
	if s.ExpiresSoon(1 * time.Minute) {
		t.Fatal("ExpiresSoon(1m) = true for a token expiring in 2m")
	}
}

func TestGarbageTokenHasNoUserID(t *testing.T) {
	s, _, ephemeral := newTestSupplier(t)
	if err := ephemeral.Set(KeyToken, "not-a-jwt"); err != nil {
		t.Fatal(err)
	}
	if got := s.UserID(); got != "" {
		t.Fatalf("UserID() for garbage token = %q, want empty", got)
	}
}
