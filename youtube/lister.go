// Package youtube provides video listing for YouTube channels and random
// selection over the fetched candidates.
package youtube

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
)

// Sentinel errors for video listing operations.
var (
	ErrChannelNotFound  = errors.New("youtube: channel not found")
	ErrRateLimited      = errors.New("youtube: rate limited")
	ErrNetworkTimeout   = errors.New("youtube: network timeout")
	ErrInvalidChannelID = errors.New("youtube: invalid channel ID")
	ErrQuotaExhausted   = errors.New("youtube: API quota exhausted")
	ErrNoVideos         = errors.New("youtube: no videos found")
)

// VideoLister defines the interface for fetching video lists from YouTube
// channels. Implementations may use the Data API or the public Atom feed.
type VideoLister interface {
	// ListVideos fetches videos from the channel identified by channelID
	// (a UC... ID, optionally embedded in a channel URL).
	ListVideos(ctx context.Context, channelID string, opts *ListOptions) ([]VideoInfo, error)

	// SupportsFullHistory returns true if this lister can retrieve the
	// channel's full upload history rather than just recent videos.
	SupportsFullHistory() bool
}

// ListOptions configures video listing behavior.
type ListOptions struct {
	// MaxResults limits the number of videos returned. 0 means no limit.
	MaxResults int

	// PublishedAfter filters videos to only those published after this time.
	// Zero time means no filter.
	PublishedAfter time.Time
}

// VideoInfo contains metadata about a YouTube video.
type VideoInfo struct {
	// ID is the YouTube video ID (e.g., "dQw4w9WgXcQ").
	ID string `json:"id"`

	// Title is the video title.
	Title string `json:"title"`

	// ChannelID is the YouTube channel ID (e.g., "UCuAXFkgsw1L7xaCfnd5JJOw").
	ChannelID string `json:"channel_id"`

	// ChannelName is the display name of the channel.
	ChannelName string `json:"channel_name"`

	// Published is when the video was published.
	Published time.Time `json:"published"`

	// Description is the video description. May be truncated by some sources.
	Description string `json:"description,omitempty"`

	// Thumbnail is the URL to the video thumbnail image.
	Thumbnail string `json:"thumbnail,omitempty"`
}

// VideoURL returns the full YouTube URL for this video.
func (v VideoInfo) VideoURL() string {
	return "https://www.youtube.com/watch?v=" + v.ID
}

// ChannelURL returns the full YouTube URL for this video's channel.
func (v VideoInfo) ChannelURL() string {
	return "https://www.youtube.com/channel/" + v.ChannelID
}

// ListerError wraps listing errors with context about what failed.
// Use errors.As() to extract this error type and get operation details:
//
//	var listerErr *youtube.ListerError
//	if errors.As(err, &listerErr) {
//		fmt.Printf("Failed to list from %s: %v\n", listerErr.Source, listerErr.Err)
//	}
type ListerError struct {
	// Source indicates which lister produced the error ("api", "rss").
	Source string
	// Channel is the channel ID that was being listed.
	Channel string
	// Err is the underlying error that occurred.
	Err error
}

// Error returns a string representation of the listing error.
func (e *ListerError) Error() string {
	return "youtube: " + e.Source + " listing " + e.Channel + ": " + e.Err.Error()
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *ListerError) Unwrap() error { return e.Err }

// channelIDRegex matches YouTube channel IDs (UC followed by 22 base64 chars).
var channelIDRegex = regexp.MustCompile(`UC[a-zA-Z0-9_-]{22}`)

// ExtractChannelID extracts a UC... channel ID from a bare ID or a channel URL.
func ExtractChannelID(input string) (string, error) {
	if channelIDRegex.MatchString(input) {
		return channelIDRegex.FindString(input), nil
	}

	if strings.Contains(input, "youtube.com/channel/") {
		parts := strings.Split(input, "youtube.com/channel/")
		if len(parts) > 1 {
			id := strings.Split(parts[1], "/")[0]
			id = strings.Split(id, "?")[0]
			if channelIDRegex.MatchString(id) {
				return id, nil
			}
		}
	}

	return "", &ListerError{Source: "parse", Channel: input, Err: ErrInvalidChannelID}
}
