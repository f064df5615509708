package ext_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/wp-media/background-processing/ext"
	"github.com/wp-media/background-processing/host"
)

func TestKey(t *testing.T) {
	if got := ext.Key("wp_email_notify_1", ext.PointQueryArgs); got != "wp_email_notify_1_query_args" {
		t.Errorf("Key = %q", got)
	}
	if got := ext.Key("wp_email_notify_1", ext.PointQueryURL); got != "wp_email_notify_1_query_url" {
		t.Errorf("Key = %q", got)
	}
	if got := ext.Key("wp_email_notify_1", ext.PointPostArgs); got != "wp_email_notify_1_post_args" {
		t.Errorf("Key = %q", got)
	}
}

func TestRegistry_AppliesInRegistrationOrder(t *testing.T) {
	r := ext.NewRegistry(nil)
	r.OnQueryURL("id", "first", func(_ context.Context, _ string, target string) (string, error) {
		return target + "/a", nil
	})
	r.OnQueryURL("id", "second", func(_ context.Context, _ string, target string) (string, error) {
		return target + "/b", nil
	})

	got := r.ApplyQueryURL(context.Background(), "id", "base")
	if got != "base/a/b" {
		t.Errorf("ApplyQueryURL = %q, want %q", got, "base/a/b")
	}
}

func TestRegistry_ScopedByIdentifier(t *testing.T) {
	r := ext.NewRegistry(nil)
	r.OnQueryArgs("other_id", "probe", func(_ context.Context, _ string, args url.Values) (url.Values, error) {
		args.Set("leaked", "1")
		return args, nil
	})

	got := r.ApplyQueryArgs(context.Background(), "id", url.Values{})
	if got.Get("leaked") != "" {
		t.Error("filter for a different identifier ran")
	}
}

func TestRegistry_FilterErrorKeepsValue(t *testing.T) {
	r := ext.NewRegistry(nil)
	r.OnPostArgs("id", "broken", func(_ context.Context, _ string, _ host.PostArgs) (host.PostArgs, error) {
		return host.PostArgs{}, errors.New("boom")
	})
	r.OnPostArgs("id", "working", func(_ context.Context, _ string, args host.PostArgs) (host.PostArgs, error) {
		args.SSLVerify = true
		return args, nil
	})

	in := host.PostArgs{Body: []byte("payload")}
	got := r.ApplyPostArgs(context.Background(), "id", in)
	if string(got.Body) != "payload" {
		t.Errorf("failing filter clobbered the value: %q", got.Body)
	}
	if !got.SSLVerify {
		t.Error("chain stopped at the failing filter")
	}
}

func TestRegistry_NoFiltersPassThrough(t *testing.T) {
	r := ext.NewRegistry(nil)
	args := url.Values{"k": {"v"}}
	got := r.ApplyQueryArgs(context.Background(), "id", args)
	if got.Get("k") != "v" {
		t.Errorf("pass-through altered args: %v", got)
	}
}
