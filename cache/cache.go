// Package cache provides a persistent store for derived contract identifier tables, so repeated CLI
// invocations against the same artifact do not recompute selector hashes.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.etcd.io/bbolt"
)

// ErrCacheMiss indicates the requested entry is in neither the memory cache nor the database.
var ErrCacheMiss = errors.New("cache miss")

// identifierBucket is the bbolt bucket holding serialized identifier tables.
var identifierBucket = []byte("identifiers")

// cacheDirName is the directory created under the working directory to hold the database file.
const cacheDirName = ".ethdebugcache"

// Store is a thread-safe cache of identifier tables that persists to disk. Reads are served from
// memory first; writes are buffered and flushed to the database in batches.
type Store struct {
	db *bbolt.DB

	memMutex sync.RWMutex
	mem      map[string]map[string]string

	pendingWriteMutex sync.Mutex
	pendingWrites     []pendingWrite
	flushThreshold    int
}

type pendingWrite struct {
	key   []byte
	value []byte
}

// Open creates the cache directory under workingDir if needed and opens the backing database.
func Open(workingDir string) (*Store, error) {
	cacheDir, err := createCacheDirectory(workingDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	cacheFile := filepath.Join(cacheDir, "identifiers.dat")
	db, err := bbolt.Open(cacheFile, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("could not open db: %v", err)
	}

	// create default bucket if it doesn't exist
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(identifierBucket)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &Store{
		db:             db,
		mem:            make(map[string]map[string]string),
		pendingWrites:  []pendingWrite{},
		flushThreshold: 25,
	}, nil
}

// IdentifierTable returns the identifier table stored under the given content checksum. A database
// hit is promoted into the memory cache. ErrCacheMiss is returned when the checksum is unknown.
func (s *Store) IdentifierTable(checksum string) (map[string]string, error) {
	s.memMutex.RLock()
	table, ok := s.mem[checksum]
	s.memMutex.RUnlock()
	if ok {
		return table, nil
	}

	table = map[string]string{}
	exists, err := s.getFromPersist([]byte(checksum), &table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrCacheMiss
	}

	s.memMutex.Lock()
	s.mem[checksum] = table
	s.memMutex.Unlock()
	return table, nil
}

// PutIdentifierTable stores an identifier table under the given content checksum. The write lands in
// the memory cache immediately and is flushed to the database once enough writes accumulate, or on
// Close.
func (s *Store) PutIdentifierTable(checksum string, table map[string]string) error {
	s.memMutex.Lock()
	s.mem[checksum] = table
	s.memMutex.Unlock()

	serialized, err := json.Marshal(table)
	if err != nil {
		return err
	}
	return s.writeToPersist([]byte(checksum), serialized)
}

// Close flushes buffered writes and closes the database.
func (s *Store) Close() error {
	s.pendingWriteMutex.Lock()
	err := s.flushWrites()
	s.pendingWriteMutex.Unlock()
	if err != nil {
		return err
	}
	return s.db.Close()
}

func (s *Store) getFromPersist(key []byte, value interface{}) (bool, error) {
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(identifierBucket)
		data := bucket.Get(key)
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &value)
	})
	if err != nil {
		return false, fmt.Errorf("could not get value: %v", err)
	}
	return found, nil
}

func (s *Store) writeToPersist(key []byte, value []byte) error {
	item := pendingWrite{
		key:   key,
		value: value,
	}
	s.pendingWriteMutex.Lock()
	defer s.pendingWriteMutex.Unlock()

	s.pendingWrites = append(s.pendingWrites, item)
	if len(s.pendingWrites) >= s.flushThreshold {
		return s.flushWrites()
	}
	return nil
}

// flushWrites commits buffered writes to the database. The caller must hold pendingWriteMutex.
func (s *Store) flushWrites() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(identifierBucket)
		for _, pw := range s.pendingWrites {
			err := bucket.Put(pw.key, pw.value)
			if err != nil {
				return err
			}
		}
		s.pendingWrites = s.pendingWrites[:0]
		return nil
	})
}

func createCacheDirectory(workingDir string) (string, error) {
	cachePath := filepath.Join(workingDir, cacheDirName)
	_, err := os.Stat(cachePath)
	if os.IsNotExist(err) {
		// Create directory with 0755 permissions if it doesn't exist
		err = os.Mkdir(cachePath, 0755)
		if err != nil {
			return "", fmt.Errorf("failed to create cache directory: %w", err)
		}
	} else if err != nil {
		return "", fmt.Errorf("failed to check cache directory: %w", err)
	}
	return cachePath, nil
}
