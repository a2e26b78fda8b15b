package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/wichananm65/drone-shop-backend/internal/apperror"
)

// URLPrefix is where stored files are served from.
const URLPrefix = "/uploads/"

var (
	ErrNoFile      = apperror.Validation("No file uploaded")
	ErrInvalidType = apperror.Validation("Invalid file type. Only images are allowed.")
	ErrNoFilename  = apperror.Validation("Filename is required")
	ErrBadFilename = apperror.Validation("Invalid filename")
	ErrNotFound    = apperror.NotFound("File not found")
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Store keeps uploaded images in a single flat directory.
type Store struct {
	dir      string
	maxBytes int64
}

func NewStore(dir string, maxBytes int64) *Store {
	return &Store{dir: dir, maxBytes: maxBytes}
}

func (s *Store) MaxBytes() int64 { return s.maxBytes }

func (s *Store) tooLarge() error {
	return apperror.Validation(fmt.Sprintf("File too large. Maximum size is %dMB.", s.maxBytes>>20))
}

// Save sniffs the content type, then writes r under a fresh name. The file
// only appears under its final name once fully written.
func (s *Store) Save(r io.Reader, size int64) (string, error) {
	if size > s.maxBytes {
		return "", s.tooLarge()
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", apperror.Storage("read upload", err)
	}
	head = head[:n]
	ext, ok := allowedTypes[http.DetectContentType(head)]
	if !ok {
		return "", ErrInvalidType
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", apperror.Storage("create upload dir", err)
	}
	tmp, err := os.CreateTemp(s.dir, ".upload-*.tmp")
	if err != nil {
		return "", apperror.Storage("create temp file", err)
	}
	defer os.Remove(tmp.Name())

	body := io.MultiReader(bytes.NewReader(head), r)
	written, err := io.Copy(tmp, io.LimitReader(body, s.maxBytes+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", apperror.Storage("write upload", err)
	}
	if written > s.maxBytes {
		return "", s.tooLarge()
	}

	name := "img_" + uuid.NewString() + ext
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", apperror.Storage("store upload", err)
	}
	return name, nil
}

// Delete removes a stored file. Only the base name of filename is used, so
// callers cannot reach outside the upload directory. Stored names never
// start with a dot, which also keeps ".." and in-flight temp files out of
// reach.
func (s *Store) Delete(filename string) error {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return ErrNoFilename
	}
	if strings.HasPrefix(name, ".") {
		return ErrBadFilename
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return apperror.Storage("delete upload", err)
	}
	return nil
}
