package upload

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wichananm65/drone-shop-backend/internal/apperror"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestStore_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, 1<<20)

	name, err := store.Save(bytes.NewReader(pngHeader), int64(len(pngHeader)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(name, "img_") || filepath.Ext(name) != ".png" {
		t.Fatalf("unexpected name %q", name)
	}
	got, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil || !bytes.Equal(got, pngHeader) {
		t.Fatalf("stored content mismatch: %v", err)
	}
	if files := listDir(t, dir); len(files) != 1 {
		t.Fatalf("expected only the stored file, got %v", files)
	}

	if err := store.Delete("../" + name); err != nil {
		t.Fatalf("delete by base name failed: %v", err)
	}
	if err := store.Delete(name); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_RejectsNonImages(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, 1<<20)

	_, err := store.Save(strings.NewReader("<?php echo 'hi'; ?>"), 19)
	if !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
	if files := listDir(t, dir); len(files) != 0 {
		t.Fatalf("nothing should be written, got %v", files)
	}
}

func TestStore_RejectsOversized(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, 32)
	payload := append(append([]byte{}, pngHeader...), make([]byte, 64)...)

	// Declared size within the limit but the body is larger.
	_, err := store.Save(bytes.NewReader(payload), 16)
	if apperror.KindOf(err) != apperror.KindValidation || !strings.HasPrefix(apperror.Message(err), "File too large") {
		t.Fatalf("expected size validation error, got %v", err)
	}
	if files := listDir(t, dir); len(files) != 0 {
		t.Fatalf("partial file left behind: %v", files)
	}

	if _, err := store.Save(bytes.NewReader(payload), int64(len(payload))); apperror.KindOf(err) != apperror.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestStore_DeleteRequiresName(t *testing.T) {
	store := NewStore(t.TempDir(), 1<<20)
	for _, name := range []string{"", "  ", "/"} {
		if err := store.Delete(name); !errors.Is(err, ErrNoFilename) {
			t.Fatalf("expected ErrNoFilename for %q, got %v", name, err)
		}
	}
}

func TestStore_DeleteStaysInsideDir(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "uploads")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	tmp := filepath.Join(dir, ".upload-123.tmp")
	if err := os.WriteFile(tmp, pngHeader, 0o644); err != nil {
		t.Fatal(err)
	}
	store := NewStore(dir, 1<<20)

	for _, name := range []string{"..", "../..", "uploads/..", ".upload-123.tmp", "../uploads/.upload-123.tmp"} {
		err := store.Delete(name)
		if !errors.Is(err, ErrBadFilename) || apperror.KindOf(err) != apperror.KindValidation {
			t.Fatalf("expected ErrBadFilename for %q, got %v", name, err)
		}
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("upload dir must survive: %v", err)
	}
	if _, err := os.Stat(tmp); err != nil {
		t.Fatalf("temp file must survive: %v", err)
	}
}
