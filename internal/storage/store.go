// Package storage is the durable key/value layer behind the controllers. Values are
// opaque JSON documents; a Queue serialises every read and write in submission order.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/althash-leandro/altmask/internal/constants"
)

// Store is a plain key/value store. Get omits keys that are not present.
type Store interface {
	Get(ctx context.Context, keys ...string) (map[string][]byte, error)
	Set(ctx context.Context, values map[string][]byte) error
	Close() error
}

const (
	DriverMemory  = "memory"
	DriverFile    = "file"
	DriverLevelDB = "leveldb"
	DriverSQLite  = "sqlite"
)

type Config struct {
	Driver string `json:"driver" yaml:"driver"`
	// Dir holds the driver's file(s). Ignored by the memory driver.
	Dir        string `json:"dir" yaml:"dir"`
	Passphrase string `json:"passphrase" yaml:"passphrase"`
}

// Open returns the store selected by cfg.Driver.
func Open(cfg Config) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver != DriverMemory && driver != "" && strings.TrimSpace(cfg.Dir) == "" {
		return nil, fmt.Errorf("storage: driver %q needs a directory", driver)
	}

	switch driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFile, "":
		return OpenFile(filepath.Join(cfg.Dir, constants.StoreFile), []byte(cfg.Passphrase))
	case DriverLevelDB:
		return OpenLevelDB(filepath.Join(cfg.Dir, constants.LevelDBDir))
	case DriverSQLite:
		return OpenSQLite(filepath.Join(cfg.Dir, constants.SQLiteFile))
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}

// Decode unmarshals values[key] into a T. ok is false when the key is absent.
func Decode[T any](values map[string][]byte, key string) (v T, ok bool, err error) {
	raw, ok := values[key]
	if !ok || len(raw) == 0 {
		return v, false, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, true, fmt.Errorf("storage: decode %q: %w", key, err)
	}
	return v, true, nil
}
