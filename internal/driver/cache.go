package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"sinc/internal/objfile"
)

// diskCacheSchemaVersion increments when DiskPayload's shape changes,
// invalidating stale entries rather than failing to decode them.
const diskCacheSchemaVersion uint16 = 1

// contentKey is the cache key for a translation unit's source text: its
// SHA-256 digest, hex-encoded, the same content-addressing scheme the
// teacher's disk cache uses keyed on ModuleHash.
type contentKey string

func contentKeyOf(source []byte) contentKey {
	sum := sha256.Sum256(source)
	return contentKey(hex.EncodeToString(sum[:]))
}

// DiskPayload is what Cache stores per translation unit: the assembled
// object file plus a schema tag for safe format migration.
type DiskPayload struct {
	Schema uint16
	File   objfile.File
}

// Cache memoizes assembled object files on disk keyed by a content
// hash of their .sinasm source, the direct analogue of the teacher's
// DiskCache/DiskPayload: sinc build skips re-assembling any unit whose
// source hasn't changed since the last run.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// OpenCache initializes a disk cache rooted at dir, creating it if
// necessary.
func OpenCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) pathFor(key contentKey) string {
	return filepath.Join(c.dir, "units", string(key)+".mp")
}

// Get reads and deserializes a cached object file, keyed by the
// source's content hash. The second return is false on a cache miss.
func (c *Cache) Get(key contentKey) (DiskPayload, bool, error) {
	if c == nil {
		return DiskPayload{}, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DiskPayload{}, false, nil
		}
		return DiskPayload{}, false, err
	}
	defer f.Close()

	var payload DiskPayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return DiskPayload{}, false, err
	}
	if payload.Schema != diskCacheSchemaVersion {
		return DiskPayload{}, false, nil
	}
	return payload, true, nil
}

// Put serializes and atomically writes payload to the disk cache.
func (c *Cache) Put(key contentKey, payload DiskPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	payload.Schema = diskCacheSchemaVersion
	dest := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := msgpack.NewEncoder(tmp).Encode(payload); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}
