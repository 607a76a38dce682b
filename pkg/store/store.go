package store

import (
	"bufio"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/hexhunt/keyminer/pkg/types"
)

// Delimiter separates the private and public key hex in a record line.
const Delimiter = ";"

// Store appends found keys to a flat text file, one record per line.
// Writes are serialized and synced so a crash right after a match
// cannot lose it. The file is created lazily on the first append.
type Store struct {
	path string
	mu   sync.Mutex
}

// New creates a store for the given file path
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path
func (s *Store) Path() string { return s.path }

// Append durably adds one record. Existing entries are never touched;
// the record is fsynced before Append returns.
func (s *Store) Append(rec types.FoundKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open result file: %w", err)
	}
	defer f.Close()

	line := rec.PrivateHex + Delimiter + " " + rec.PublicHex + "\n"
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync result file: %w", err)
	}
	return nil
}

// Records reads back all persisted records. Lines that do not parse
// are skipped rather than failing the whole read.
func (s *Store) Records() ([]types.FoundKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open result file: %w", err)
	}
	defer f.Close()

	var out []types.FoundKey
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		parts := strings.SplitN(sc.Text(), Delimiter, 2)
		if len(parts) != 2 {
			continue
		}
		out = append(out, types.FoundKey{
			PrivateHex: strings.TrimSpace(parts[0]),
			PublicHex:  strings.TrimSpace(parts[1]),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read result file: %w", err)
	}
	return out, nil
}

// DeleteAll destroys every persisted record. The file contents are
// overwritten with random bytes and synced before removal so the key
// material is not left on disk; a missing file is a successful no-op.
func (s *Store) DeleteAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat result file: %w", err)
	}

	if err := overwrite(s.path, info.Size()); err != nil {
		return fmt.Errorf("wipe result file: %w", err)
	}
	if err := os.Remove(s.path); err != nil {
		return fmt.Errorf("remove result file: %w", err)
	}
	return nil
}

// overwrite replaces size bytes of the file with random data and syncs.
func overwrite(path string, size int64) error {
	if size == 0 {
		return nil
	}
	f, err := os.OpenFile(path, os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, 32*1024)
	var written int64
	for written < size {
		n := int64(len(buf))
		if size-written < n {
			n = size - written
		}
		if _, err := rand.Read(buf[:n]); err != nil {
			return err
		}
		if _, err := f.Write(buf[:n]); err != nil {
			return err
		}
		written += n
	}
	return f.Sync()
}
