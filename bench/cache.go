package bench

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/wippyai/chaincall/errors"
)

// Bump when cachePayload changes shape; older entries then read as misses.
const cacheSchemaVersion uint16 = 1

// Cache stores pallet/extrinsic listings on disk, keyed by the sha256 of
// the runtime build they were produced from. Safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

type cachePayload struct {
	Schema  uint16
	Listing Listing
}

// OpenCache initializes a cache rooted at dir, creating it if needed.
func OpenCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.PhaseBench, errors.KindInvalidData, err, dir)
	}
	return &Cache{dir: dir}, nil
}

// DefaultCacheDir resolves the conventional per-user cache location.
func DefaultCacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", errors.Wrap(errors.PhaseBench, errors.KindInvalidData, err, "cache dir")
	}
	return filepath.Join(base, "chaincall"), nil
}

// HashRuntime computes the cache key for a runtime build.
func HashRuntime(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(errors.PhaseBench, errors.KindNotFound, err, path)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrap(errors.PhaseBench, errors.KindInvalidData, err, path)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (c *Cache) pathFor(key string) string {
	return filepath.Join(c.dir, "listings", key+".mp")
}

// Get returns the cached listing for key, reporting absence without error.
// A schema mismatch is a miss, not a failure.
func (c *Cache) Get(key string) (Listing, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(errors.PhaseBench, errors.KindInvalidData, err, key)
	}
	defer f.Close()

	var payload cachePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, errors.Wrap(errors.PhaseBench, errors.KindInvalidData, err, key)
	}
	if payload.Schema != cacheSchemaVersion {
		return nil, false, nil
	}
	return payload.Listing, true, nil
}

// Put writes a listing for key. The write is atomic: a temp file in the
// target directory renamed over the final path.
func (c *Cache) Put(key string, listing Listing) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return errors.Wrap(errors.PhaseBench, errors.KindInvalidData, err, key)
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return errors.Wrap(errors.PhaseBench, errors.KindInvalidData, err, key)
	}
	defer os.Remove(f.Name())

	payload := cachePayload{Schema: cacheSchemaVersion, Listing: listing}
	if err := msgpack.NewEncoder(f).Encode(&payload); err != nil {
		f.Close()
		return errors.Wrap(errors.PhaseBench, errors.KindInvalidData, err, key)
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(errors.PhaseBench, errors.KindInvalidData, err, key)
	}
	if err := os.Rename(f.Name(), p); err != nil {
		return errors.Wrap(errors.PhaseBench, errors.KindInvalidData, err, key)
	}
	return nil
}

// DropAll discards every cached listing.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "listings"))
}
