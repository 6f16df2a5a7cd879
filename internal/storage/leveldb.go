package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

type LevelDB struct {
	db *leveldb.DB
}

func OpenLevelDB(dir string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(dir, &opt.Options{})
	if err != nil {
		return nil, fmt.Errorf("storage: open leveldb %s: %w", dir, err)
	}
	return &LevelDB{db: db}, nil
}

func (l *LevelDB) Get(_ context.Context, keys ...string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		v, err := l.db.Get([]byte(k), nil)
		if errors.Is(err, leveldb.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("storage: leveldb get %q: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

func (l *LevelDB) Set(_ context.Context, values map[string][]byte) error {
	batch := new(leveldb.Batch)
	for k, v := range values {
		batch.Put([]byte(k), v)
	}
	if err := l.db.Write(batch, &opt.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("storage: leveldb write: %w", err)
	}
	return nil
}

func (l *LevelDB) Close() error { return l.db.Close() }
