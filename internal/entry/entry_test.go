package entry

import (
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	now := time.Now()

	t.Run("zero ttl never expires", func(t *testing.T) {
		e := New([]byte("v"), 0, 1, now)
		if !e.ExpiresAt.IsZero() {
			t.Errorf("expected zero ExpiresAt, got %v", e.ExpiresAt)
		}
		if e.Expired(now.Add(24 * time.Hour)) {
			t.Errorf("entry with no ttl should never expire")
		}
	})

	t.Run("positive ttl sets deadline", func(t *testing.T) {
		e := New([]byte("v"), time.Second, 1, now)
		if e.ExpiresAt.Before(now) {
			t.Errorf("expected ExpiresAt after now, got %v", e.ExpiresAt)
		}
		if e.Expired(now) {
			t.Errorf("entry should not be expired immediately")
		}
		if !e.Expired(now.Add(2 * time.Second)) {
			t.Errorf("entry should be expired after ttl elapses")
		}
	})

	t.Run("version is preserved", func(t *testing.T) {
		e := New([]byte("v"), time.Second, 42, now)
		if e.Version != 42 {
			t.Errorf("expected version 42, got %d", e.Version)
		}
	})
}

func TestExpiredBoundary(t *testing.T) {
	now := time.Now()
	e := Entry{Value: []byte("v"), ExpiresAt: now}

	if !e.Expired(now) {
		t.Errorf("entry with expiresAt == now must be considered expired")
	}
	if e.Expired(now.Add(-time.Nanosecond)) {
		t.Errorf("entry must not be expired before its deadline")
	}
}
