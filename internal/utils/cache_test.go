package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCache_LookupMatchesStamp(t *testing.T) {
	cache := NewCache[string, int]()
	doc := "/**\n * @Service\n */"

	cache.Store("App\\Orders", 42, TextStamp(doc))
	value, ok := cache.Lookup("App\\Orders", TextStamp(doc))
	if !ok || value != 42 {
		t.Errorf("expected 42 for an unchanged stamp, got %d %v", value, ok)
	}

	if _, ok = cache.Lookup("nonexistent", TextStamp(doc)); ok {
		t.Error("expected nonexistent key to miss")
	}

	cache.Delete("App\\Orders")
	if _, ok = cache.Lookup("App\\Orders", TextStamp(doc)); ok {
		t.Error("expected deleted key to miss")
	}
}

func TestCache_StaleStampDropsEntry(t *testing.T) {
	cache := NewCache[string, string]()
	cache.Store("svc", "parsed", TextStamp("@Service(name='orders')"))

	if _, ok := cache.Lookup("svc", TextStamp("@Service(name='billing')")); ok {
		t.Fatal("expected a changed stamp to miss")
	}
	// The stale entry is gone even for its old stamp.
	if _, ok := cache.Lookup("svc", TextStamp("@Service(name='orders')")); ok {
		t.Error("expected stale entry to be dropped")
	}

	stats := cache.Stats()
	if stats.Entries != 0 || stats.Hits != 0 || stats.Misses != 2 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestStamps(t *testing.T) {
	if TextStamp("a") == TextStamp("b") {
		t.Error("expected different text to stamp differently")
	}
	if ContentStamp([]byte("<?php")) != Stamp(TextStamp("<?php")) {
		t.Error("expected content and text stamps of the same bytes to agree")
	}

	path := filepath.Join(t.TempDir(), "Service.php")
	if err := os.WriteFile(path, []byte("<?php"), 0644); err != nil {
		t.Fatal(err)
	}
	before, err := StatStamp(path)
	if err != nil {
		t.Fatalf("StatStamp failed: %v", err)
	}

	later := time.Now().Add(2 * time.Second)
	if err := os.WriteFile(path, []byte("<?php // changed"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	after, err := StatStamp(path)
	if err != nil {
		t.Fatal(err)
	}
	if before == after {
		t.Error("expected the stamp to follow the file")
	}

	if _, err := StatStamp(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}
