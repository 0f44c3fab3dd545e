package ttscache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofrs/flock"
)

const lockFileName = ".redub-tts-cache.lock"
const lockTimeout = 10 * time.Second

// Cache is a content-addressed directory of synthesised audio files,
// shared across runs.
type Cache struct {
	dir  string
	lock *flock.Flock
}

// Open prepares a Cache rooted at dir, creating it if necessary.
func Open(dir string) (*Cache, error) {
	if dir == "" {
		return nil, fmt.Errorf("tts cache: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("tts cache: create directory: %w", err)
	}
	return &Cache{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, lockFileName)),
	}, nil
}

// Key computes the content-address for a synthesis request.
func Key(text, voiceID string, sampleRateHz int) string {
	h := sha256.New()
	h.Write([]byte(text))
	h.Write([]byte{0})
	h.Write([]byte(voiceID))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(sampleRateHz)))
	return hex.EncodeToString(h.Sum(nil))
}

// Path returns the on-disk path a cache entry for the given cue index and
// key would occupy, whether or not it currently exists.
func (c *Cache) Path(cueIndex int, key string) string {
	shortHash := key
	if len(shortHash) > 8 {
		shortHash = shortHash[:8]
	}
	return filepath.Join(c.dir, fmt.Sprintf("tts_%d_%s.wav", cueIndex, shortHash))
}

// Lookup reports whether a non-empty cache entry already exists for the
// given cue index and key, and returns its path.
func (c *Cache) Lookup(cueIndex int, key string) (path string, hit bool) {
	path = c.Path(cueIndex, key)
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return path, false
	}
	return path, true
}

// Store writes srcPath's contents into the cache under the entry for
// cueIndex/key, atomically (write-temp-then-rename) and guarded by a
// cross-process file lock so concurrent runs never observe a partial
// write. Returns the final cache path.
func (c *Cache) Store(cueIndex int, key string, srcPath string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()
	locked, err := c.lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return "", fmt.Errorf("tts cache: acquire lock: %w", err)
	}
	if !locked {
		return "", fmt.Errorf("tts cache: lock timed out after %s", lockTimeout)
	}
	defer func() { _ = c.lock.Unlock() }()

	dst := c.Path(cueIndex, key)
	tmp := dst + ".tmp-" + strconv.FormatInt(time.Now().UnixNano(), 36)

	data, err := os.ReadFile(srcPath)
	if err != nil {
		return "", fmt.Errorf("tts cache: read source: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("tts cache: write temp file: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("tts cache: rename into place: %w", err)
	}
	return dst, nil
}

// Dir returns the cache's root directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Stats summarizes the cache directory's current contents.
type Stats struct {
	Entries   int
	TotalSize int64
}

// Stat walks the cache directory and reports entry count and total size.
func (c *Cache) Stat() (Stats, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return Stats{}, fmt.Errorf("tts cache: read directory: %w", err)
	}
	var stats Stats
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == lockFileName {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		stats.Entries++
		stats.TotalSize += info.Size()
	}
	return stats, nil
}

// Clear removes every cache entry. The lock file itself is left in place.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("tts cache: read directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == lockFileName {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil {
			return fmt.Errorf("tts cache: remove %s: %w", entry.Name(), err)
		}
	}
	return nil
}
