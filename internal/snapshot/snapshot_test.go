package snapshot

import (
	"context"
	"strings"
	"testing"
)

func TestNewUnknownKind(t *testing.T) {
	t.Parallel()

	Register("fake", func(context.Context, Config) (Repository, error) { return nil, nil })

	_, err := New(context.Background(), "nope", Config{})
	if err == nil {
		t.Fatal("New() with unknown kind should fail")
	}
	// The error lists the registered kinds to help the caller.
	if !strings.Contains(err.Error(), "fake") {
		t.Errorf("error %q does not list registered kinds", err)
	}
}

func TestNewDispatchesToFactory(t *testing.T) {
	t.Parallel()

	var gotDSN string
	Register("capture", func(_ context.Context, cfg Config) (Repository, error) {
		gotDSN = cfg.DSN
		return nil, nil
	})

	if _, err := New(context.Background(), "capture", Config{DSN: "file.db"}); err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if gotDSN != "file.db" {
		t.Errorf("factory got DSN %q, want \"file.db\"", gotDSN)
	}
}
