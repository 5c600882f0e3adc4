package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"sermonmail/internal/retry"
)

const (
	rssFeedURLTemplate = "https://www.youtube.com/feeds/videos.xml?channel_id=%s"
	rssTimeout         = 30 * time.Second
)

// RSSLister implements VideoLister using YouTube's public Atom feeds.
// Feeds need no API key but only carry the 15 most recent videos, so this
// lister works as a fallback when the Data API is unavailable.
type RSSLister struct {
	parser      *gofeed.Parser
	feedURL     string // URL template, overridable in tests
	RetryConfig retry.Config
}

// NewRSSLister creates a new Atom-feed-based video lister.
func NewRSSLister() *RSSLister {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: rssTimeout}
	parser.UserAgent = "sermonmail/1.0"

	return &RSSLister{
		parser:      parser,
		feedURL:     rssFeedURLTemplate,
		RetryConfig: retry.DefaultConfig(),
	}
}

// SupportsFullHistory returns false - feeds only carry recent videos.
func (r *RSSLister) SupportsFullHistory() bool {
	return false
}

// ListVideos fetches videos from the channel's Atom feed.
func (r *RSSLister) ListVideos(ctx context.Context, channelID string, opts *ListOptions) ([]VideoInfo, error) {
	id, err := ExtractChannelID(channelID)
	if err != nil {
		return nil, err
	}

	var feed *gofeed.Feed
	err = retry.Do(ctx, r.RetryConfig, rssErrorClassifier, func(ctx context.Context) error {
		var ferr error
		feed, ferr = r.parser.ParseURLWithContext(fmt.Sprintf(r.feedURL, id), ctx)
		if ferr != nil {
			if ctx.Err() != nil {
				return &ListerError{Source: "rss", Channel: id, Err: ErrNetworkTimeout}
			}
			var httpErr gofeed.HTTPError
			if errors.As(ferr, &httpErr) {
				switch httpErr.StatusCode {
				case http.StatusNotFound:
					return &ListerError{Source: "rss", Channel: id, Err: ErrChannelNotFound}
				case http.StatusTooManyRequests:
					return &ListerError{Source: "rss", Channel: id, Err: ErrRateLimited}
				}
			}
			return &ListerError{Source: "rss", Channel: id, Err: ferr}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	videos := feedToVideoInfo(feed, id)
	if opts != nil {
		videos = filterVideos(videos, opts)
	}
	return videos, nil
}

// feedToVideoInfo converts parsed Atom entries to VideoInfo records.
func feedToVideoInfo(feed *gofeed.Feed, channelID string) []VideoInfo {
	videos := make([]VideoInfo, 0, len(feed.Items))
	for _, item := range feed.Items {
		id := entryVideoID(item)
		if id == "" {
			continue
		}

		video := VideoInfo{
			ID:          id,
			Title:       item.Title,
			ChannelID:   channelID,
			ChannelName: feed.Title,
			Description: item.Description,
		}
		if item.Author != nil && item.Author.Name != "" {
			video.ChannelName = item.Author.Name
		}
		if item.PublishedParsed != nil {
			video.Published = *item.PublishedParsed
		}
		videos = append(videos, video)
	}
	return videos
}

// entryVideoID pulls the video ID from the yt:videoId extension, falling
// back to the yt:video:<id> GUID format.
func entryVideoID(item *gofeed.Item) string {
	if ext, ok := item.Extensions["yt"]; ok {
		if ids, ok := ext["videoId"]; ok && len(ids) > 0 {
			return ids[0].Value
		}
	}
	if strings.HasPrefix(item.GUID, "yt:video:") {
		return strings.TrimPrefix(item.GUID, "yt:video:")
	}
	return ""
}

// rssErrorClassifier determines if a feed error is retryable.
func rssErrorClassifier(err error) bool {
	if err == nil {
		return false
	}

	var listerErr *ListerError
	if errors.As(err, &listerErr) {
		switch {
		case errors.Is(listerErr.Err, ErrChannelNotFound), errors.Is(listerErr.Err, ErrInvalidChannelID):
			return false
		default:
			// Retryable: rate limit, timeout, network errors
			return true
		}
	}

	return true
}
