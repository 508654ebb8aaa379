package order

import (
	"testing"
	"time"
)

func TestIsExpired(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		elapsed time.Duration
		want    bool
	}{
		{"fresh", 0, false},
		{"inside window", 1999 * time.Millisecond, false},
		{"at window", 2000 * time.Millisecond, false},
		{"past window", 2001 * time.Millisecond, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsExpired(base, base.Add(tt.elapsed), DefaultProtectionWindow); got != tt.want {
				t.Errorf("IsExpired(+%v) = %v, want %v", tt.elapsed, got, tt.want)
			}
		})
	}
}

func TestGuard_LazyExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	g := guard{window: time.Second}

	if g.isActive(now) {
		t.Fatal("zero guard should be inactive")
	}
	g.activate(now)
	if !g.isActive(now.Add(500 * time.Millisecond)) {
		t.Fatal("guard should be active inside the window")
	}
	if g.isActive(now.Add(1500 * time.Millisecond)) {
		t.Fatal("guard should expire after the window")
	}
	if g.active {
		t.Fatal("expired guard should deactivate itself on read")
	}

	g.activate(now)
	g.deactivate()
	if g.isActive(now) {
		t.Fatal("deactivated guard should be inactive")
	}
}
