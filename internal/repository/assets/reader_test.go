package assets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadAsset(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "images")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sub, "ring.jpg"), []byte("jpeg-bytes"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := New(dir)
	data, err := r.ReadAsset("images/ring.jpg")
	if err != nil {
		t.Fatalf("ReadAsset: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestReadAsset_Missing(t *testing.T) {
	r := New(t.TempDir())
	if _, err := r.ReadAsset("images/absent.jpg"); err == nil {
		t.Fatal("expected error for missing asset")
	}
}

func TestReadAsset_TraversalRejected(t *testing.T) {
	dir := t.TempDir()
	outside := filepath.Join(filepath.Dir(dir), "secret.txt")
	if err := os.WriteFile(outside, []byte("secret"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := New(dir)
	if _, err := r.ReadAsset("../secret.txt"); err == nil {
		t.Fatal("expected traversal to be rejected")
	}
}
