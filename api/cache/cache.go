/* cache.go
 * Contains the cache of finished imports. Entries are keyed by the digest of the workbook bytes and the sheet filter,
 * so re-importing an unchanged workbook skips decoding and reconstruction
 * Authors: Zachary Bower
 */

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
	"tournament-importer/api/shared"
)

// Entry is one cached import
type Entry struct {
	Organization string                  `json:"organization"`
	Record       shared.TournamentRecord `json:"record"`
	Diagnostics  []shared.Diagnostic     `json:"diagnostics"`
}

// Cache stores finished imports by digest
type Cache interface {
	Get(ctx context.Context, digest string) (Entry, bool, error)
	Set(ctx context.Context, digest string, entry Entry) error
	Delete(ctx context.Context, digest string) error
}

// Digest returns the cache key of a workbook imported with a sheet filter
func Digest(data []byte, sheetFilter string) string {
	h := sha256.New()
	h.Write(data)
	h.Write([]byte{0})
	h.Write([]byte(sheetFilter))
	return hex.EncodeToString(h.Sum(nil))
}

// Memory is an in process cache used when no Redis server is configured. It is safe for concurrent use
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

type memoryEntry struct {
	entry   Entry
	expires time.Time
}

var _ Cache = (*Memory)(nil)

// NewMemory creates an in process cache. A ttl of zero keeps entries forever
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, now: time.Now, entries: make(map[string]memoryEntry)}
}

// Get returns the entry of digest and whether it was present and not expired
func (m *Memory) Get(_ context.Context, digest string) (Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[digest]
	if !ok {
		return Entry{}, false, nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.entries, digest)
		return Entry{}, false, nil
	}
	return e.entry, true, nil
}

// Set stores an entry
func (m *Memory) Set(_ context.Context, digest string, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := memoryEntry{entry: entry}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}
	m.entries[digest] = e
	return nil
}

// Delete removes an entry
func (m *Memory) Delete(_ context.Context, digest string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, digest)
	return nil
}
