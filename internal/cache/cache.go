// Package cache stores converted logs on disk so that re-running the
// converter with the same log and options skips parsing.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"fsyncprof/internal/timeline"
	"fsyncprof/internal/traceevent"
)

// Current schema version - increment when Payload format changes
const schemaVersion uint16 = 1

// Key identifies one conversion.
type Key [sha256.Size]byte

// String returns the hex form of the key.
func (k Key) String() string { return hex.EncodeToString(k[:]) }

// KeyFor derives a key from the identity of a log file and the options that
// influence the output. The file is identified by absolute path, size and
// modification time; its contents are not hashed.
func KeyFor(absPath string, size int64, modTime time.Time, options string) Key {
	h := sha256.New()
	var buf [8]byte
	binary.LittleEndian.PutUint16(buf[:2], schemaVersion)
	h.Write(buf[:2])
	h.Write([]byte(absPath))
	h.Write([]byte{0})
	binary.LittleEndian.PutUint64(buf[:], uint64(size))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(modTime.UnixNano()))
	h.Write(buf[:])
	h.Write([]byte(options))
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

// Payload is the cached result of a successful conversion.
type Payload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Source  string
	Options string
	Created time.Time

	Events []traceevent.Event
	Stats  timeline.Stats
	// Pending describes waits still open at end of log, for re-reporting.
	Pending []string
}

// DiskCache keeps payloads under a directory, one file per key.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// Open initializes the cache at $XDG_CACHE_HOME/<app> (or ~/.cache/<app>).
func Open(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDir(filepath.Join(base, app))
}

// OpenDir initializes the cache in dir.
func OpenDir(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *DiskCache) Dir() string { return c.dir }

func (c *DiskCache) pathFor(key Key) string {
	return filepath.Join(c.dir, "runs", key.String()+".mp")
}

// Put serializes and writes a payload, replacing any previous entry
// atomically.
func (c *DiskCache) Put(key Key, payload *Payload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	payload.Schema = schemaVersion
	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads a payload. It reports false for a missing entry or one written
// with another schema version.
func (c *DiskCache) Get(key Key, out *Payload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	var payload Payload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return false, err
	}
	if payload.Schema != schemaVersion {
		return false, nil
	}
	*out = payload
	return true, nil
}

// DropAll removes every cached entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "runs"))
}
