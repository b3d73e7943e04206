package cache

import (
	"testing"
	"time"
)

func TestMemoryGetMissingKey(t *testing.T) {
	m := NewMemory(time.Minute)

	if _, ok := m.Get("AAPL"); ok {
		t.Error("Expected miss for key that was never stored")
	}
}

func TestMemoryPutThenGet(t *testing.T) {
	m := NewMemory(time.Minute)
	m.Put("AAPL", 42)

	v, ok := m.Get("AAPL")
	if !ok {
		t.Fatal("Expected hit immediately after Put")
	}
	if v.(int) != 42 {
		t.Errorf("Expected 42, got %v", v)
	}
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory(30 * time.Minute)
	current := time.Now()
	m.now = func() time.Time { return current }

	m.Put("AAPL", "analysis")

	current = current.Add(29 * time.Minute)
	if _, ok := m.Get("AAPL"); !ok {
		t.Error("Expected hit before TTL elapsed")
	}

	current = current.Add(2 * time.Minute)
	if _, ok := m.Get("AAPL"); ok {
		t.Error("Expected miss after TTL elapsed")
	}
}

func TestMemoryOverwriteResetsClock(t *testing.T) {
	m := NewMemory(10 * time.Minute)
	current := time.Now()
	m.now = func() time.Time { return current }

	m.Put("TSLA", 1)
	current = current.Add(9 * time.Minute)
	m.Put("TSLA", 2)
	current = current.Add(9 * time.Minute)

	v, ok := m.Get("TSLA")
	if !ok {
		t.Fatal("Expected hit, overwrite should reset the entry age")
	}
	if v.(int) != 2 {
		t.Errorf("Expected latest value 2, got %v", v)
	}
}
