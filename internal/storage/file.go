package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/althash-leandro/altmask/internal/constants"
	"github.com/althash-leandro/altmask/internal/securefile"
)

// File keeps every key in a single JSON document, rewritten atomically on each Set.
// With a passphrase the document is sealed with securefile.
type File struct {
	path       string
	passphrase []byte

	mu     sync.Mutex
	loaded bool
	doc    fileDoc
}

type fileDoc struct {
	Schema int                        `json:"schema"`
	Values map[string]json.RawMessage `json:"values"`
}

func OpenFile(path string, passphrase []byte) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), constants.DirectoryPerm); err != nil {
		return nil, fmt.Errorf("storage: mkdir %s: %w", filepath.Dir(path), err)
	}
	f := &File{path: path, passphrase: passphrase}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) Path() string { return f.path }

func (f *File) Get(_ context.Context, keys ...string) (map[string][]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.load(); err != nil {
		return nil, err
	}

	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok := f.doc.Values[k]; ok {
			out[k] = append([]byte(nil), v...)
		}
	}
	return out, nil
}

func (f *File) Set(_ context.Context, values map[string][]byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.load(); err != nil {
		return err
	}

	next := make(map[string]json.RawMessage, len(f.doc.Values)+len(values))
	for k, v := range f.doc.Values {
		next[k] = v
	}
	for k, v := range values {
		if !json.Valid(v) {
			return fmt.Errorf("storage: value for %q is not JSON", k)
		}
		next[k] = append(json.RawMessage(nil), v...)
	}

	doc := fileDoc{Schema: constants.SchemaV1, Values: next}
	if err := f.write(doc); err != nil {
		return err
	}
	f.doc = doc
	return nil
}

func (f *File) Close() error { return nil }

func (f *File) load() error {
	if f.loaded {
		return nil
	}

	doc := fileDoc{Schema: constants.SchemaV1, Values: map[string]json.RawMessage{}}
	switch {
	case len(f.passphrase) > 0:
		read, err := securefile.ReadEncryptedJSON[fileDoc](f.path, f.passphrase, f.sealOptions())
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("storage: read %s: %w", f.path, err)
		}
		if err == nil {
			doc = read
		}
	default:
		b, err := os.ReadFile(f.path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("storage: read %s: %w", f.path, err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &doc); err != nil {
				return fmt.Errorf("storage: unmarshal %s: %w", f.path, err)
			}
		}
	}
	if doc.Values == nil {
		doc.Values = map[string]json.RawMessage{}
	}

	f.doc = doc
	f.loaded = true
	return nil
}

func (f *File) write(doc fileDoc) error {
	if len(f.passphrase) > 0 {
		if err := securefile.WriteEncryptedJSON(f.path, doc, f.passphrase, f.sealOptions()); err != nil {
			return fmt.Errorf("storage: write %s: %w", f.path, err)
		}
		return nil
	}

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: marshal: %w", err)
	}
	if err := securefile.AtomicWriteFile(f.path, b, constants.FilePerm); err != nil {
		return fmt.Errorf("storage: write %s: %w", f.path, err)
	}
	return nil
}

func (f *File) sealOptions() securefile.Options {
	return securefile.Options{
		FilePerm:      constants.FilePerm,
		DirectoryPerm: constants.DirectoryPerm,
		AAD:           []byte(constants.StoreAAD),
	}
}
