package redis

import (
	"testing"

	"github.com/diskleads/leadmarket-backend/pkg/config"
)

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error without url or address")
	}
}

func TestOptionsFromConfigParsesURL(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://:secret@localhost:6380/2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6380" {
		t.Fatalf("unexpected addr %q", opts.Addr)
	}
	if opts.DB != 2 {
		t.Fatalf("unexpected db %d", opts.DB)
	}
}

func TestKeyBuilders(t *testing.T) {
	c := &Client{}
	if got := c.IdempotencyKey("payment-webhook", "evt-1"); got != "dl:idempotency:payment-webhook:evt-1" {
		t.Fatalf("unexpected idempotency key %q", got)
	}
	if got := c.LockKey("delivery-worker"); got != "dl:lock:delivery-worker" {
		t.Fatalf("unexpected lock key %q", got)
	}
}
