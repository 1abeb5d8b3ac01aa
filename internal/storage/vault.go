// Package storage provides the durable boundaries for pomo: the vault
// document store and the persisted active-selection state.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Vault is the document store over a directory of markdown files.
// Paths are slash-separated and relative to the vault root. Writes are
// atomic (tmp file + rename) and read-after-write consistent within the
// process. UpdateDocument serializes read-modify-write sequences per
// document, which is the critical section the rewriter relies on.
type Vault interface {
	Root() string
	ReadDocument(path string) (string, error)
	WriteDocument(path string, content string) error
	// UpdateDocument reads the current text, applies fn, and writes the
	// result, all under the document's lock. A missing document reads
	// as empty. No write happens when fn errors or returns text
	// byte-identical to the current content.
	UpdateDocument(path string, apply func(current string) (string, error)) error
	// ListDocuments walks the vault and returns every .md file,
	// skipping dot-directories, in sorted order.
	ListDocuments() ([]string, error)
}

type fileVault struct {
	root string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewVault creates a Vault rooted at the given directory.
func NewVault(root string) Vault {
	return &fileVault{
		root:  root,
		locks: make(map[string]*sync.Mutex),
	}
}

func (v *fileVault) Root() string { return v.root }

// docLock returns the per-document mutex, creating it on first use.
func (v *fileVault) docLock(path string) *sync.Mutex {
	v.mu.Lock()
	defer v.mu.Unlock()
	l, ok := v.locks[path]
	if !ok {
		l = &sync.Mutex{}
		v.locks[path] = l
	}
	return l
}

func (v *fileVault) absPath(path string) string {
	return filepath.Join(v.root, filepath.FromSlash(path))
}

func (v *fileVault) ReadDocument(path string) (string, error) {
	data, err := os.ReadFile(v.absPath(path))
	if err != nil {
		return "", fmt.Errorf("reading document %s: %w", path, err)
	}
	return string(data), nil
}

// WriteDocument writes content atomically: a temp file in the same
// directory, then rename over the target.
func (v *fileVault) WriteDocument(path string, content string) error {
	abs := v.absPath(path)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(abs), ".pomo-write-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing document %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file for %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting mode for %s: %w", path, err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing document %s: %w", path, err)
	}
	return nil
}

func (v *fileVault) UpdateDocument(path string, apply func(current string) (string, error)) error {
	lock := v.docLock(path)
	lock.Lock()
	defer lock.Unlock()

	current := ""
	data, err := os.ReadFile(v.absPath(path))
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("reading document %s: %w", path, err)
		}
	} else {
		current = string(data)
	}

	next, err := apply(current)
	if err != nil {
		return err
	}
	if next == current {
		return nil
	}
	return v.WriteDocument(path, next)
}

func (v *fileVault) ListDocuments() ([]string, error) {
	var docs []string
	err := filepath.Walk(v.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != v.root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(info.Name()), ".md") {
			return nil
		}
		rel, err := filepath.Rel(v.root, path)
		if err != nil {
			return err
		}
		docs = append(docs, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking vault %s: %w", v.root, err)
	}
	sort.Strings(docs)
	return docs, nil
}
