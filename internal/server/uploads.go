package server

import (
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// uploadStore holds webcam captures between upload and room join. Entries
// expire after the configured TTL; the store is best-effort by design and
// never survives a restart.
type uploadStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]uploadEntry
}

type uploadEntry struct {
	data        []byte
	contentType string
	storedAt    time.Time
}

func newUploadStore(ttl time.Duration) *uploadStore {
	return &uploadStore{
		ttl:     ttl,
		entries: make(map[string]uploadEntry),
	}
}

func (u *uploadStore) Put(data []byte, contentType string) string {
	id := uuid.NewString()
	now := time.Now().UTC()
	u.mu.Lock()
	defer u.mu.Unlock()
	u.sweepLocked(now)
	u.entries[id] = uploadEntry{
		data:        data,
		contentType: contentType,
		storedAt:    now,
	}
	return id
}

func (u *uploadStore) Get(id string) (uploadEntry, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	entry, ok := u.entries[id]
	if !ok {
		return uploadEntry{}, false
	}
	if u.ttl > 0 && time.Since(entry.storedAt) > u.ttl {
		delete(u.entries, id)
		return uploadEntry{}, false
	}
	return entry, true
}

func (u *uploadStore) sweepLocked(now time.Time) {
	if u.ttl <= 0 {
		return
	}
	for id, entry := range u.entries {
		if now.Sub(entry.storedAt) > u.ttl {
			delete(u.entries, id)
		}
	}
}

// decodeImageData accepts either plain base64 or a data URL.
func decodeImageData(data string) ([]byte, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, errors.New("no image data")
	}
	parts := strings.SplitN(data, ",", 2)
	if len(parts) == 2 {
		data = parts[1]
	}
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, err
	}
	return decoded, nil
}
