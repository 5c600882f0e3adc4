// Package storage persists the delivery history so recently sent videos
// are not repeated across process restarts.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common storage conditions.
var (
	// ErrNotFound indicates the requested record was not found.
	ErrNotFound = errors.New("storage: not found")
	// ErrInvalidInput indicates invalid or malformed input was provided.
	ErrInvalidInput = errors.New("storage: invalid input")
	// ErrStorageCorrupt indicates data corruption was detected.
	ErrStorageCorrupt = errors.New("storage: data corruption detected")
	// ErrLockTimeout indicates a timeout acquiring the file lock.
	ErrLockTimeout = errors.New("storage: lock acquisition timeout")
)

// Delivery records one sermon email that was sent.
type Delivery struct {
	ID          string    `json:"id"`           // Internal UUID
	VideoID     string    `json:"video_id"`     // YouTube video ID
	Title       string    `json:"title"`        // Video title
	ChannelName string    `json:"channel_name"` // Channel display name
	Recipient   string    `json:"recipient"`    // Address the email was sent to
	SentAt      time.Time `json:"sent_at"`
}

// DeliveryStore is the interface the orchestrator depends on.
type DeliveryStore interface {
	// RecordDelivery appends a delivery record, assigning an ID if unset.
	RecordDelivery(ctx context.Context, d *Delivery) error

	// LastDelivery returns the most recent delivery, or ErrNotFound if
	// nothing has been sent yet.
	LastDelivery(ctx context.Context) (*Delivery, error)

	// RecentDeliveries returns up to limit deliveries, newest first.
	RecentDeliveries(ctx context.Context, limit int) ([]*Delivery, error)

	// RecentVideoIDs returns the video IDs of up to limit most recent
	// deliveries, for use as a selection exclusion set.
	RecentVideoIDs(ctx context.Context, limit int) (map[string]struct{}, error)
}

// StorageError wraps storage errors with operation context.
// Use errors.As() to extract this error type and get operation details:
//
//	var storErr *storage.StorageError
//	if errors.As(err, &storErr) {
//		fmt.Printf("Failed to %s %s: %v\n", storErr.Op, storErr.ID, storErr.Err)
//	}
type StorageError struct {
	// Op is the operation that failed ("lock", "read", "write", "record").
	Op string
	// ID is the record or file ID if applicable.
	ID string
	// Err is the underlying error that occurred.
	Err error
}

// Error returns a string representation of the storage error.
func (e *StorageError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("storage: %s %s: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *StorageError) Unwrap() error { return e.Err }
