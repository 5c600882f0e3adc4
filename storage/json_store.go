package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	schemaVersion = "1.0"
	lockTimeout   = 5 * time.Second
)

// JSONStore implements DeliveryStore using a single JSON file.
type JSONStore struct {
	path string
	lock *FileLock
	data *storeData
	mu   sync.RWMutex
}

// storeData is the top-level JSON structure.
type storeData struct {
	Version    string      `json:"version"`
	UpdatedAt  time.Time   `json:"updated_at"`
	Deliveries []*Delivery `json:"deliveries"` // append order, oldest first
}

// NewJSONStore creates a new JSON file store at the given path.
// If the file exists, it is loaded; otherwise an empty store is created.
func NewJSONStore(path string) (*JSONStore, error) {
	s := &JSONStore{
		path: path,
		lock: NewFileLock(path),
	}

	if err := s.lock.Lock(lockTimeout); err != nil {
		return nil, err
	}

	if err := s.load(); err != nil {
		s.lock.Unlock()
		return nil, err
	}

	return s, nil
}

// load reads the JSON file into memory. Creates empty data if file doesn't exist.
func (s *JSONStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.data = &storeData{Version: schemaVersion, UpdatedAt: time.Now()}
			// Save immediately to catch permission errors early
			return s.save()
		}
		return &StorageError{Op: "read", Err: err}
	}

	s.data = &storeData{}
	if err := json.Unmarshal(data, s.data); err != nil {
		return &StorageError{Op: "read", Err: ErrStorageCorrupt}
	}

	return nil
}

// save persists the data to disk atomically.
func (s *JSONStore) save() error {
	s.data.UpdatedAt = time.Now()

	err := writeFileAtomic(s.path, func(w io.Writer) error {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(s.data)
	})
	if err != nil {
		return &StorageError{Op: "write", Err: err}
	}
	return nil
}

// Close releases resources held by the store.
func (s *JSONStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lock.Unlock()
}

// RecordDelivery appends a delivery record, assigning an ID and timestamp
// if unset.
func (s *JSONStore) RecordDelivery(ctx context.Context, d *Delivery) error {
	if d == nil || d.VideoID == "" {
		return &StorageError{Op: "record", Err: ErrInvalidInput}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.SentAt.IsZero() {
		d.SentAt = time.Now()
	}

	s.data.Deliveries = append(s.data.Deliveries, d)
	return s.save()
}

// LastDelivery returns the most recent delivery, or ErrNotFound.
func (s *JSONStore) LastDelivery(ctx context.Context) (*Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.data.Deliveries) == 0 {
		return nil, &StorageError{Op: "read", Err: ErrNotFound}
	}
	return s.data.Deliveries[len(s.data.Deliveries)-1], nil
}

// RecentDeliveries returns up to limit deliveries, newest first.
// limit <= 0 returns all deliveries.
func (s *JSONStore) RecentDeliveries(ctx context.Context, limit int) ([]*Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.data.Deliveries)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]*Delivery, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.data.Deliveries[i])
	}
	return out, nil
}

// RecentVideoIDs returns the video IDs of up to limit most recent deliveries.
func (s *JSONStore) RecentVideoIDs(ctx context.Context, limit int) (map[string]struct{}, error) {
	deliveries, err := s.RecentDeliveries(ctx, limit)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]struct{}, len(deliveries))
	for _, d := range deliveries {
		ids[d.VideoID] = struct{}{}
	}
	return ids, nil
}
