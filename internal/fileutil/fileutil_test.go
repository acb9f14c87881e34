package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"samplegraph/internal/fileutil"
)

func TestWriteAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	if err := fileutil.WriteAtomic(path, []byte(`{"nodes":1}`), 0o644); err != nil {
		t.Fatalf("WriteAtomic failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != `{"nodes":1}` {
		t.Fatalf("unexpected content %q", data)
	}

	// Overwrite replaces content without leaving temp files behind.
	if err := fileutil.WriteAtomic(path, []byte(`{"nodes":2}`), 0o644); err != nil {
		t.Fatalf("WriteAtomic overwrite failed: %v", err)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the target file, got %d entries", len(entries))
	}
}

func TestCopyFileVerified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.db")
	dst := filepath.Join(dir, "dst.db")
	if err := os.WriteFile(src, []byte("checkpoint payload"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	if err := fileutil.CopyFileVerified(src, dst); err != nil {
		t.Fatalf("CopyFileVerified failed: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if string(data) != "checkpoint payload" {
		t.Fatalf("unexpected copy content %q", data)
	}
}

func TestCopyFileVerifiedMissingSource(t *testing.T) {
	dir := t.TempDir()
	if err := fileutil.CopyFileVerified(filepath.Join(dir, "absent"), filepath.Join(dir, "out")); err == nil {
		t.Fatal("expected error for missing source")
	}
}
