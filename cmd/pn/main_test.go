package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCacheIsStale(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "papers.db")
	src := filepath.Join(dir, "papers.jsonl")

	if !cacheIsStale(db, src) {
		t.Error("cacheIsStale() = false with no database")
	}

	writeFile(t, db, "")
	if cacheIsStale(db, src) {
		t.Error("cacheIsStale() = true with no source index")
	}

	writeFile(t, src, "")
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(db, old, old); err != nil {
		t.Fatal(err)
	}
	if !cacheIsStale(db, src) {
		t.Error("cacheIsStale() = false with newer source index")
	}

	if err := os.Chtimes(src, old.Add(-time.Hour), old.Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}
	if cacheIsStale(db, src) {
		t.Error("cacheIsStale() = true with older source index")
	}
}
