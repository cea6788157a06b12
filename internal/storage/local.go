// Package storage persists uploaded images on local disk. Every file lands
// under root/<scope>/<scopeKey>/, so concurrent uploads for different
// questions or answers never collide.
package storage

import (
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrUnsupportedType is returned for anything that is not a JPEG or PNG
var ErrUnsupportedType = errors.New("only JPEG and PNG images are allowed")

// NewScopeKey mints a fresh storage scope for uploads that are not yet bound
// to a document id, e.g. question images uploaded before the question exists.
func NewScopeKey() string {
	return uuid.New().String()
}

const (
	ScopeQuestions = "questions"
	ScopeAnswers   = "answers"
)

// LocalStore writes images beneath a single root directory and hands back
// URL path references for serving.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// Root is the directory the store writes under
func (s *LocalStore) Root() string {
	return s.root
}

// Save stores one uploaded image under scope/scopeKey and returns its URL
// path reference.
func (s *LocalStore) Save(scope, scopeKey string, fh *multipart.FileHeader) (string, error) {
	if !allowedImage(fh) {
		return "", ErrUnsupportedType
	}

	dir := filepath.Join(s.root, scope, scopeKey)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := uuid.New().String() + "-" + filepath.Base(fh.Filename)

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return "/uploads/" + path.Join(scope, scopeKey, name), nil
}

func allowedImage(fh *multipart.FileHeader) bool {
	switch fh.Header.Get("Content-Type") {
	case "image/jpeg", "image/jpg", "image/png":
	default:
		return false
	}

	switch strings.ToLower(filepath.Ext(fh.Filename)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}
