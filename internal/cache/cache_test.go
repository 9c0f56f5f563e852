package cache

import (
	"testing"
	"time"
)

func TestKey_StablePerText(t *testing.T) {
	if Key("vitamin d") != Key("vitamin d") {
		t.Error("identical texts must produce identical keys")
	}
	if Key("vitamin d") == Key("vitamin c") {
		t.Error("different texts must produce different keys")
	}
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	vec := []float32{0.1, 0.2, 0.3}
	if err := c.Set("k", vec, 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, found := c.Get("k")
	if !found {
		t.Fatal("expected cache hit")
	}
	if len(got) != 3 || got[1] != 0.2 {
		t.Errorf("got %v, want %v", got, vec)
	}

	if _, found := c.Get("missing"); found {
		t.Error("expected miss for unknown key")
	}
}

func TestLayeredCache_PromotesFromDisk(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Hour)

	vec := []float32{1, 2}
	if err := c.Set(Key("clause"), vec, 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// A fresh layered cache over the same directory sees the disk entry
	c2 := NewLayeredCache(time.Minute, dir, time.Hour)
	got, found := c2.Get(Key("clause"))
	if !found {
		t.Fatal("expected disk hit after restart")
	}
	if len(got) != 2 || got[0] != 1 {
		t.Errorf("got %v, want %v", got, vec)
	}
}

func TestDiskCache_Expiration(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)

	if err := c.Set("k", []float32{1}, -time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("expired entries must not be returned")
	}
}
