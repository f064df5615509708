package async_test

import (
	"testing"

	async "github.com/wp-media/background-processing"
)

func TestNewIdentifier(t *testing.T) {
	tests := []struct {
		prefix, job, tenant string
		want                string
	}{
		{"wp", "email_notify", "1", "wp_email_notify_1"},
		{"wp", "cache_preload", "42", "wp_cache_preload_42"},
		{"acme", "sync", "site-7", "acme_sync_site-7"},
	}

	for _, tt := range tests {
		got := async.NewIdentifier(tt.prefix, tt.job, tt.tenant)
		if got.String() != tt.want {
			t.Errorf("NewIdentifier(%q, %q, %q) = %q, want %q",
				tt.prefix, tt.job, tt.tenant, got, tt.want)
		}
	}
}

func TestNewIdentifier_Deterministic(t *testing.T) {
	a := async.NewIdentifier("wp", "email_notify", "1")
	b := async.NewIdentifier("wp", "email_notify", "1")
	if a != b {
		t.Errorf("identifiers differ across constructions: %q vs %q", a, b)
	}
}

func TestTransportMode_String(t *testing.T) {
	if got := async.ModeLegacyCallback.String(); got != "legacy_callback" {
		t.Errorf("ModeLegacyCallback.String() = %q", got)
	}
	if got := async.ModeStructuredRoute.String(); got != "structured_route" {
		t.Errorf("ModeStructuredRoute.String() = %q", got)
	}
}
