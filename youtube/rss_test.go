package youtube

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sermonmail/internal/retry"
)

const testChannelID = "UCuAXFkgsw1L7xaCfnd5JJOw"

const testAtomFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015"
      xmlns:media="http://search.yahoo.com/mrss/"
      xmlns="http://www.w3.org/2005/Atom">
  <title>Test Ministry</title>
  <author><name>Test Ministry</name></author>
  <entry>
    <id>yt:video:abc12345678</id>
    <yt:videoId>abc12345678</yt:videoId>
    <yt:channelId>UCuAXFkgsw1L7xaCfnd5JJOw</yt:channelId>
    <title>Sunday Message</title>
    <author><name>Test Ministry</name></author>
    <published>2024-03-10T08:00:00+00:00</published>
    <updated>2024-03-10T09:00:00+00:00</updated>
  </entry>
  <entry>
    <id>yt:video:def12345678</id>
    <yt:videoId>def12345678</yt:videoId>
    <yt:channelId>UCuAXFkgsw1L7xaCfnd5JJOw</yt:channelId>
    <title>Midweek Message</title>
    <author><name>Test Ministry</name></author>
    <published>2024-03-06T08:00:00+00:00</published>
    <updated>2024-03-06T09:00:00+00:00</updated>
  </entry>
</feed>`

// fastRetry keeps test backoff short.
func fastRetry() retry.Config {
	return retry.Config{
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func newTestRSSLister(serverURL string) *RSSLister {
	lister := NewRSSLister()
	lister.feedURL = serverURL + "/feeds/videos.xml?channel_id=%s"
	lister.RetryConfig = fastRetry()
	return lister
}

func TestRSSListVideos(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("channel_id"); got != testChannelID {
			t.Errorf("request channel_id = %q, want %q", got, testChannelID)
		}
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(testAtomFeed))
	}))
	defer server.Close()

	lister := newTestRSSLister(server.URL)
	videos, err := lister.ListVideos(context.Background(), testChannelID, nil)
	if err != nil {
		t.Fatalf("ListVideos() returned error = %v, want nil", err)
	}

	if len(videos) != 2 {
		t.Fatalf("ListVideos() returned %d videos, want 2", len(videos))
	}
	if videos[0].ID != "abc12345678" {
		t.Errorf("videos[0].ID = %q, want %q", videos[0].ID, "abc12345678")
	}
	if videos[0].Title != "Sunday Message" {
		t.Errorf("videos[0].Title = %q, want %q", videos[0].Title, "Sunday Message")
	}
	if videos[0].ChannelName != "Test Ministry" {
		t.Errorf("videos[0].ChannelName = %q, want %q", videos[0].ChannelName, "Test Ministry")
	}
	if videos[0].ChannelID != testChannelID {
		t.Errorf("videos[0].ChannelID = %q, want %q", videos[0].ChannelID, testChannelID)
	}
	want := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	if !videos[0].Published.Equal(want) {
		t.Errorf("videos[0].Published = %v, want %v", videos[0].Published, want)
	}
}

func TestRSSListVideos_MaxResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testAtomFeed))
	}))
	defer server.Close()

	lister := newTestRSSLister(server.URL)
	videos, err := lister.ListVideos(context.Background(), testChannelID, &ListOptions{MaxResults: 1})
	if err != nil {
		t.Fatalf("ListVideos() returned error = %v, want nil", err)
	}
	if len(videos) != 1 {
		t.Errorf("ListVideos() returned %d videos, want 1", len(videos))
	}
}

func TestRSSListVideos_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	lister := newTestRSSLister(server.URL)
	_, err := lister.ListVideos(context.Background(), testChannelID, nil)
	if !errors.Is(err, ErrChannelNotFound) {
		t.Errorf("ListVideos() returned error = %v, want ErrChannelNotFound", err)
	}
}

func TestRSSListVideos_RetriesServerErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(testAtomFeed))
	}))
	defer server.Close()

	lister := newTestRSSLister(server.URL)
	videos, err := lister.ListVideos(context.Background(), testChannelID, nil)
	if err != nil {
		t.Fatalf("ListVideos() returned error = %v, want nil after retries", err)
	}
	if calls != 3 {
		t.Errorf("server received %d calls, want 3", calls)
	}
	if len(videos) != 2 {
		t.Errorf("ListVideos() returned %d videos, want 2", len(videos))
	}
}

func TestRSSListVideos_InvalidChannelID(t *testing.T) {
	lister := NewRSSLister()
	_, err := lister.ListVideos(context.Background(), "not-a-channel", nil)
	if !errors.Is(err, ErrInvalidChannelID) {
		t.Errorf("ListVideos() returned error = %v, want ErrInvalidChannelID", err)
	}
}

func TestRSSSupportsFullHistory(t *testing.T) {
	if NewRSSLister().SupportsFullHistory() {
		t.Error("SupportsFullHistory() should return false for the feed lister")
	}
}
