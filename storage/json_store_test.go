package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) (*JSONStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sermonmail.json")
	s, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("NewJSONStore() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestRecordDelivery(t *testing.T) {
	s, path := newTestStore(t)
	ctx := context.Background()

	d := &Delivery{
		VideoID:     "abc12345678",
		Title:       "Sunday Message",
		ChannelName: "Test Ministry",
		Recipient:   "to@example.com",
	}

	if err := s.RecordDelivery(ctx, d); err != nil {
		t.Fatalf("RecordDelivery() returned error = %v, want nil", err)
	}
	if d.ID == "" {
		t.Error("RecordDelivery() did not assign an ID")
	}
	if d.SentAt.IsZero() {
		t.Error("RecordDelivery() did not assign SentAt")
	}

	// The record must survive the file round trip.
	s.Close()
	s2, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("NewJSONStore() reopen failed: %v", err)
	}
	defer s2.Close()

	last, err := s2.LastDelivery(ctx)
	if err != nil {
		t.Fatalf("LastDelivery() returned error = %v, want nil", err)
	}
	if last.VideoID != "abc12345678" {
		t.Errorf("LastDelivery().VideoID = %q, want %q", last.VideoID, "abc12345678")
	}
	if last.ID != d.ID {
		t.Errorf("LastDelivery().ID = %q, want %q", last.ID, d.ID)
	}
}

func TestRecordDelivery_InvalidInput(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		d    *Delivery
	}{
		{"nil delivery", nil},
		{"missing video id", &Delivery{Title: "no id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.RecordDelivery(ctx, tt.d)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("RecordDelivery() returned error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestLastDelivery_Empty(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.LastDelivery(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("LastDelivery() on empty store returned error = %v, want ErrNotFound", err)
	}
}

func TestRecentDeliveries_NewestFirst(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"a", "b", "c"} {
		err := s.RecordDelivery(ctx, &Delivery{
			VideoID: id,
			SentAt:  time.Date(2024, 3, 1+i, 8, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("RecordDelivery(%q) failed: %v", id, err)
		}
	}

	got, err := s.RecentDeliveries(ctx, 2)
	if err != nil {
		t.Fatalf("RecentDeliveries() returned error = %v, want nil", err)
	}
	if len(got) != 2 {
		t.Fatalf("RecentDeliveries(2) returned %d records, want 2", len(got))
	}
	if got[0].VideoID != "c" || got[1].VideoID != "b" {
		t.Errorf("RecentDeliveries(2) order = [%q, %q], want [c, b]", got[0].VideoID, got[1].VideoID)
	}

	all, err := s.RecentDeliveries(ctx, 0)
	if err != nil {
		t.Fatalf("RecentDeliveries(0) returned error = %v, want nil", err)
	}
	if len(all) != 3 {
		t.Errorf("RecentDeliveries(0) returned %d records, want all 3", len(all))
	}
}

func TestRecentVideoIDs(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := s.RecordDelivery(ctx, &Delivery{VideoID: id}); err != nil {
			t.Fatalf("RecordDelivery(%q) failed: %v", id, err)
		}
	}

	ids, err := s.RecentVideoIDs(ctx, 2)
	if err != nil {
		t.Fatalf("RecentVideoIDs() returned error = %v, want nil", err)
	}
	if len(ids) != 2 {
		t.Fatalf("RecentVideoIDs(2) returned %d IDs, want 2", len(ids))
	}
	if _, ok := ids["c"]; !ok {
		t.Error("RecentVideoIDs(2) missing most recent ID c")
	}
	if _, ok := ids["a"]; ok {
		t.Error("RecentVideoIDs(2) should not contain the oldest ID a")
	}
}

func TestNewJSONStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sermonmail.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	_, err := NewJSONStore(path)
	if !errors.Is(err, ErrStorageCorrupt) {
		t.Errorf("NewJSONStore() on corrupt file returned error = %v, want ErrStorageCorrupt", err)
	}
}

func TestNewJSONStore_LockConflict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sermonmail.json")
	s, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("NewJSONStore() failed: %v", err)
	}
	defer s.Close()

	done := make(chan error, 1)
	go func() {
		s2, err := NewJSONStore(path)
		if s2 != nil {
			s2.Close()
		}
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, ErrLockTimeout) {
			t.Errorf("second NewJSONStore() returned error = %v, want ErrLockTimeout", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("second NewJSONStore() did not return within 10s")
	}
}
