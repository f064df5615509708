package nonce_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wp-media/background-processing/nonce"
)

func TestIssuer_VerifyOnce(t *testing.T) {
	i := nonce.NewIssuer(nonce.NewMemoryStore())
	ctx := context.Background()

	token, err := i.Issue(ctx, "wp_email_notify_1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	if err := i.Verify(ctx, token, "wp_email_notify_1"); err != nil {
		t.Fatalf("first Verify: %v", err)
	}
	if err := i.Verify(ctx, token, "wp_email_notify_1"); !errors.Is(err, nonce.ErrInvalid) {
		t.Errorf("second Verify error = %v, want ErrInvalid", err)
	}
}

func TestIssuer_ActionMismatch(t *testing.T) {
	i := nonce.NewIssuer(nonce.NewMemoryStore())
	ctx := context.Background()

	token, err := i.Issue(ctx, "action_a")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if err := i.Verify(ctx, token, "action_b"); !errors.Is(err, nonce.ErrInvalid) {
		t.Errorf("cross-action Verify error = %v, want ErrInvalid", err)
	}
	// The failed attempt must not have consumed it for the right action.
	if err := i.Verify(ctx, token, "action_a"); err != nil {
		t.Errorf("Verify for the issued action failed: %v", err)
	}
}

func TestIssuer_UnknownToken(t *testing.T) {
	i := nonce.NewIssuer(nonce.NewMemoryStore())
	if err := i.Verify(context.Background(), "never-issued", "a"); !errors.Is(err, nonce.ErrInvalid) {
		t.Errorf("Verify error = %v, want ErrInvalid", err)
	}
}

func TestIssuer_Expiry(t *testing.T) {
	i := nonce.NewIssuer(nonce.NewMemoryStore(), nonce.WithTTL(time.Millisecond))
	ctx := context.Background()

	token, err := i.Issue(ctx, "a")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if err := i.Verify(ctx, token, "a"); !errors.Is(err, nonce.ErrInvalid) {
		t.Errorf("expired Verify error = %v, want ErrInvalid", err)
	}
}

func TestIssuer_TokensAreUnique(t *testing.T) {
	i := nonce.NewIssuer(nonce.NewMemoryStore())
	ctx := context.Background()
	seen := make(map[string]bool)
	for range 100 {
		token, err := i.Issue(ctx, "a")
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		if seen[token] {
			t.Fatalf("duplicate token %q", token)
		}
		seen[token] = true
	}
}

func TestMemoryStore_SweepsExpired(t *testing.T) {
	s := nonce.NewMemoryStore()
	ctx := context.Background()

	if err := s.Save(ctx, "a", "t1", time.Millisecond); err != nil {
		t.Fatalf("Save: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	// A later Save sweeps; the expired token is gone either way.
	if err := s.Save(ctx, "a", "t2", time.Minute); err != nil {
		t.Fatalf("Save: %v", err)
	}
	ok, err := s.Consume(ctx, "a", "t1")
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if ok {
		t.Error("expired token consumed successfully")
	}
}
