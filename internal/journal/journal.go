// Package journal records, per file, the content digest left behind by the
// last migration run. A file whose current digest matches its journal entry
// is already settled and can be skipped on re-runs.
package journal

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when Entry format changes.
const schemaVersion uint16 = 1

// Journal is a directory of msgpack entries keyed by file path hash.
// Thread-safe for concurrent access.
type Journal struct {
	mu  sync.RWMutex
	dir string
}

// Entry is the persisted record for one migrated file.
type Entry struct {
	Schema       uint16
	Path         string
	Digest       [sha256.Size]byte
	Replacements uint32
	UpdatedAt    time.Time
}

// Open initializes a journal at the standard cache location for app.
func Open(app string) (*Journal, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenAt(filepath.Join(base, app))
}

// OpenAt initializes a journal rooted at dir.
func OpenAt(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Journal{dir: dir}, nil
}

func (j *Journal) pathFor(path string) string {
	key := sha256.Sum256([]byte(filepath.Clean(path)))
	return filepath.Join(j.dir, "files", hex.EncodeToString(key[:])+".mp")
}

// Put records the digest of content as the settled state of path.
func (j *Journal) Put(path string, content []byte, replacements int) error {
	if j == nil {
		return nil
	}
	count, err := safecast.Conv[uint32](replacements)
	if err != nil {
		return fmt.Errorf("journal: replacement count: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	p := j.pathFor(path)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	entry := Entry{
		Schema:       schemaVersion,
		Path:         filepath.Clean(path),
		Digest:       sha256.Sum256(content),
		Replacements: count,
		UpdatedAt:    time.Now(),
	}
	if err := msgpack.NewEncoder(f).Encode(&entry); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Atomic replace.
	return os.Rename(f.Name(), p)
}

// Settled reports whether path's current content matches its journal entry.
// A missing, unreadable, or stale-schema entry counts as not settled.
func (j *Journal) Settled(path string, content []byte) bool {
	if j == nil {
		return false
	}
	j.mu.RLock()
	defer j.mu.RUnlock()

	f, err := os.Open(j.pathFor(path))
	if err != nil {
		return false
	}
	defer f.Close()

	var entry Entry
	if err := msgpack.NewDecoder(f).Decode(&entry); err != nil {
		return false
	}
	if entry.Schema != schemaVersion {
		return false
	}
	return entry.Digest == sha256.Sum256(content)
}
