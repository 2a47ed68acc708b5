package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore сохраняет ресурсы в каталог на диске, который раздается под publicPrefix
type LocalStore struct {
	dir          string
	publicPrefix string
}

// NewLocalStore создает хранилище и при необходимости создает каталог
func NewLocalStore(dir, publicPrefix string) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("local store directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create asset dir %s: %w", dir, err)
	}
	if publicPrefix == "" {
		publicPrefix = "/uploads"
	}
	return &LocalStore{dir: dir, publicPrefix: "/" + strings.Trim(publicPrefix, "/")}, nil
}

// Dir возвращает каталог хранилища
func (s *LocalStore) Dir() string {
	return s.dir
}

// PublicPrefix возвращает URL-префикс, под которым раздаются ресурсы
func (s *LocalStore) PublicPrefix() string {
	return s.publicPrefix
}

// Put записывает файл через временный файл и rename; существующий файл не перезаписывается
func (s *LocalStore) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid asset name %q", name)
	}

	target := filepath.Join(s.dir, name)
	ref := path.Join(s.publicPrefix, name)

	if _, err := os.Stat(target); err == nil {
		return ref, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("stat asset %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp asset: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write asset %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close asset %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("chmod asset %s: %w", name, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("store asset %s: %w", name, err)
	}
	return ref, nil
}
