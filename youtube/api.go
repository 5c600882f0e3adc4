package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"sermonmail/internal/retry"
)

// Quota unit costs for the Data API calls this lister makes.
const (
	quotaChannelsList      = 1
	quotaPlaylistItemsList = 1
	dailyQuotaUnits        = 10000
	pageSize               = 50
)

// APILister implements VideoLister using YouTube Data API v3.
// It tracks estimated quota usage and can hand off to a fallback lister
// (typically the RSS lister) once quota runs out.
type APILister struct {
	service *youtube.Service
	limiter *rate.Limiter

	// RetryConfig controls per-request retry of transient API errors.
	RetryConfig retry.Config

	mu             sync.Mutex
	estimatedQuota int
	lastQuotaReset time.Time
	quotaExhausted bool
	fallback       VideoLister
}

// NewAPILister creates a new Data API v3 video lister.
func NewAPILister(ctx context.Context, apiKey string) (*APILister, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}

	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return &APILister{
		service:        service,
		limiter:        rate.NewLimiter(rate.Limit(5), 5), // cap API calls at 5/s
		RetryConfig:    retry.DefaultConfig(),
		estimatedQuota: dailyQuotaUnits,
		lastQuotaReset: time.Now(),
	}, nil
}

// SetFallback sets the lister used when the API quota is exhausted.
func (a *APILister) SetFallback(lister VideoLister) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fallback = lister
}

// SupportsFullHistory returns true - the API can page through all uploads.
func (a *APILister) SupportsFullHistory() bool {
	return true
}

// ListVideos fetches the channel's most recent uploads via the Data API.
// When the call fails with a quota or transient error and a fallback lister
// is configured, the fallback takes over for this and subsequent calls.
func (a *APILister) ListVideos(ctx context.Context, channelID string, opts *ListOptions) ([]VideoInfo, error) {
	id, err := ExtractChannelID(channelID)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	if a.quotaExhausted && a.fallback != nil {
		fb := a.fallback
		a.mu.Unlock()
		slog.Warn("api quota exhausted, using fallback lister", "channel", id)
		return fb.ListVideos(ctx, id, opts)
	}
	a.mu.Unlock()

	videos, err := a.listFromAPI(ctx, id, opts)
	if err == nil {
		return videos, nil
	}

	if isQuotaExceeded(err) {
		a.markQuotaExhausted()
		err = fmt.Errorf("%w: %v", ErrQuotaExhausted, err)
	}

	if fb := a.fallbackFor(err); fb != nil {
		slog.Warn("api listing failed, using fallback lister", "channel", id, "error", err)
		return fb.ListVideos(ctx, id, opts)
	}

	return nil, &ListerError{Source: "api", Channel: id, Err: err}
}

// listFromAPI resolves the uploads playlist and pages through it.
func (a *APILister) listFromAPI(ctx context.Context, id string, opts *ListOptions) ([]VideoInfo, error) {
	uploadsID, channelName, err := a.uploadsPlaylist(ctx, id)
	if err != nil {
		return nil, err
	}
	return a.playlistVideos(ctx, uploadsID, id, channelName, opts)
}

// fallbackFor returns the fallback lister when err is worth retrying through
// it. Permanent failures (unknown channel, bad ID, cancellation) stay with
// the API error - the fallback would fail the same way or mask a real
// configuration problem.
func (a *APILister) fallbackFor(err error) VideoLister {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.fallback == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrChannelNotFound),
		errors.Is(err, ErrInvalidChannelID),
		errors.Is(err, context.Canceled):
		return nil
	}
	return a.fallback
}

// uploadsPlaylist resolves a channel to its uploads playlist ID and title.
func (a *APILister) uploadsPlaylist(ctx context.Context, channelID string) (string, string, error) {
	var playlistID, channelName string

	err := retry.Do(ctx, a.RetryConfig, apiErrorClassifier, func(ctx context.Context) error {
		if err := a.limiter.Wait(ctx); err != nil {
			return err
		}

		call := a.service.Channels.List([]string{"contentDetails", "snippet"}).
			Id(channelID).
			Context(ctx)

		resp, err := call.Do()
		a.trackQuotaUsage(quotaChannelsList)
		if err != nil {
			if ctx.Err() != nil {
				return ErrNetworkTimeout
			}
			return err
		}

		if len(resp.Items) == 0 {
			return ErrChannelNotFound
		}

		channel := resp.Items[0]
		playlistID = channel.ContentDetails.RelatedPlaylists.Uploads
		if channel.Snippet != nil {
			channelName = channel.Snippet.Title
		}
		return nil
	})

	if err != nil {
		return "", "", err
	}
	return playlistID, channelName, nil
}

// playlistVideos pages through the uploads playlist until MaxResults is reached.
func (a *APILister) playlistVideos(ctx context.Context, playlistID, channelID, channelName string, opts *ListOptions) ([]VideoInfo, error) {
	var all []VideoInfo

	pageToken := ""
	for {
		if opts != nil && opts.MaxResults > 0 && len(all) >= opts.MaxResults {
			all = all[:opts.MaxResults]
			break
		}

		err := retry.Do(ctx, a.RetryConfig, apiErrorClassifier, func(ctx context.Context) error {
			if err := a.limiter.Wait(ctx); err != nil {
				return err
			}

			call := a.service.PlaylistItems.List([]string{"snippet", "contentDetails"}).
				PlaylistId(playlistID).
				MaxResults(pageSize).
				PageToken(pageToken).
				Context(ctx)

			resp, err := call.Do()
			a.trackQuotaUsage(quotaPlaylistItemsList)
			if err != nil {
				if ctx.Err() != nil {
					return ErrNetworkTimeout
				}
				return err
			}

			for _, item := range resp.Items {
				video := VideoInfo{
					ID:          item.ContentDetails.VideoId,
					ChannelID:   channelID,
					ChannelName: channelName,
				}
				if item.Snippet != nil {
					video.Title = item.Snippet.Title
					video.Description = item.Snippet.Description
					if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.Default != nil {
						video.Thumbnail = item.Snippet.Thumbnails.Default.Url
					}
					if t, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
						video.Published = t
					}
				}
				all = append(all, video)
			}

			pageToken = resp.NextPageToken
			return nil
		})

		if err != nil {
			return nil, err
		}

		if pageToken == "" {
			break
		}
	}

	if opts != nil {
		all = filterVideos(all, opts)
	}
	return all, nil
}

// trackQuotaUsage updates the daily quota estimate and flips the exhausted
// flag once the estimate reaches zero. The estimate resets every 24 hours.
func (a *APILister) trackQuotaUsage(units int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if time.Since(a.lastQuotaReset) > 24*time.Hour {
		a.estimatedQuota = dailyQuotaUnits
		a.lastQuotaReset = time.Now()
		a.quotaExhausted = false
	}

	a.estimatedQuota -= units
	if a.estimatedQuota <= 0 && !a.quotaExhausted {
		slog.Warn("estimated api quota exhausted")
		a.quotaExhausted = true
	}
}

// markQuotaExhausted records that the API reported its daily quota spent,
// regardless of what the local estimate says.
func (a *APILister) markQuotaExhausted() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.quotaExhausted {
		slog.Warn("api reported quota exhausted")
		a.quotaExhausted = true
	}
	a.estimatedQuota = 0
}

// isQuotaExceeded reports whether err is the API telling us the daily quota
// is spent, as opposed to a per-request rate limit or permission problem.
func isQuotaExceeded(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Code != http.StatusForbidden {
		return false
	}
	msg := gerr.Error()
	return strings.Contains(msg, "quotaExceeded") || strings.Contains(msg, "dailyLimitExceeded")
}

// EstimatedQuota returns the estimated remaining quota units.
func (a *APILister) EstimatedQuota() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.estimatedQuota
}

// QuotaExhausted reports whether the daily quota estimate has run out.
func (a *APILister) QuotaExhausted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.quotaExhausted
}

// apiErrorClassifier determines if a Data API error is retryable.
func apiErrorClassifier(err error) bool {
	if err == nil {
		return false
	}

	switch {
	case errors.Is(err, ErrChannelNotFound), errors.Is(err, ErrInvalidChannelID):
		return false
	case errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, context.DeadlineExceeded):
		return true
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == http.StatusTooManyRequests:
			return true
		case gerr.Code >= 500:
			return true
		case gerr.Code == http.StatusForbidden:
			// 403 covers both quota errors (retryable after backoff) and
			// key/permission errors (permanent).
			msg := gerr.Error()
			return strings.Contains(msg, "quotaExceeded") || strings.Contains(msg, "rateLimitExceeded")
		default:
			return false
		}
	}

	// Unknown errors (network level) default to retryable.
	return true
}

// filterVideos applies ListOptions filters to the video list.
func filterVideos(videos []VideoInfo, opts *ListOptions) []VideoInfo {
	if opts == nil {
		return videos
	}

	if !opts.PublishedAfter.IsZero() {
		filtered := make([]VideoInfo, 0, len(videos))
		for _, v := range videos {
			if v.Published.After(opts.PublishedAfter) {
				filtered = append(filtered, v)
			}
		}
		videos = filtered
	}

	if opts.MaxResults > 0 && len(videos) > opts.MaxResults {
		videos = videos[:opts.MaxResults]
	}

	return videos
}
