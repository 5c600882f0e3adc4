// Package emailer orchestrates a delivery run: fetch candidate videos,
// pick one at random, send the email, record the delivery.
package emailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"sermonmail/mail"
	"sermonmail/storage"
	"sermonmail/youtube"
)

// ErrAlreadySentToday indicates a sermon was already delivered today and
// the run did nothing.
var ErrAlreadySentToday = errors.New("emailer: sermon already sent today")

// Options configures an Emailer.
type Options struct {
	// ChannelIDs are the YouTube channels to draw sermons from.
	ChannelIDs []string
	// MaxVideosPerChannel caps how many videos are fetched per channel.
	MaxVideosPerChannel int
	// HistoryLimit is how many recent deliveries are excluded from selection.
	HistoryLimit int
	// Recipient is recorded with each delivery.
	Recipient string
}

// Emailer runs the fetch-pick-send-record sequence.
type Emailer struct {
	opts   Options
	lister youtube.VideoLister
	picker *youtube.Picker
	sender mail.Sender
	store  storage.DeliveryStore
	log    *slog.Logger

	now func() time.Time // injectable clock for tests
}

// New creates an Emailer. A nil logger uses slog.Default().
func New(opts Options, lister youtube.VideoLister, sender mail.Sender, store storage.DeliveryStore, log *slog.Logger) *Emailer {
	if log == nil {
		log = slog.Default()
	}
	return &Emailer{
		opts:   opts,
		lister: lister,
		picker: youtube.NewPicker(),
		sender: sender,
		store:  store,
		log:    log,
		now:    time.Now,
	}
}

// Run performs one delivery attempt. Failures are returned for the caller
// to log and drop; the next scheduled run starts fresh.
func (e *Emailer) Run(ctx context.Context) error {
	e.log.Info("delivery run started", "channels", len(e.opts.ChannelIDs))

	sent, err := e.sentToday(ctx)
	if err != nil {
		return err
	}
	if sent {
		e.log.Info("sermon already sent today, skipping run")
		return ErrAlreadySentToday
	}

	videos := e.fetchAll(ctx)
	if len(videos) == 0 {
		e.log.Error("no videos found in configured channels")
		return youtube.ErrNoVideos
	}

	exclude, err := e.store.RecentVideoIDs(ctx, e.opts.HistoryLimit)
	if err != nil {
		return fmt.Errorf("load delivery history: %w", err)
	}

	selected, err := e.picker.Pick(videos, exclude)
	if err != nil {
		return err
	}
	e.log.Info("sermon selected",
		"video_id", selected.ID,
		"title", selected.Title,
		"channel", selected.ChannelName)

	if err := e.sender.Send(ctx, composeMessage(selected)); err != nil {
		e.log.Error("sermon email failed", "video_id", selected.ID, "error", err)
		return err
	}

	delivery := &storage.Delivery{
		VideoID:     selected.ID,
		Title:       selected.Title,
		ChannelName: selected.ChannelName,
		Recipient:   e.opts.Recipient,
		SentAt:      e.now(),
	}
	if err := e.store.RecordDelivery(ctx, delivery); err != nil {
		// The email went out; a history write failure only risks a repeat pick.
		e.log.Warn("failed to record delivery", "video_id", selected.ID, "error", err)
	}

	e.log.Info("sermon sent", "video_id", selected.ID, "title", selected.Title)
	return nil
}

// fetchAll lists videos from every configured channel, tolerating
// per-channel failures.
func (e *Emailer) fetchAll(ctx context.Context) []youtube.VideoInfo {
	opts := &youtube.ListOptions{MaxResults: e.opts.MaxVideosPerChannel}

	var all []youtube.VideoInfo
	for _, channelID := range e.opts.ChannelIDs {
		videos, err := e.lister.ListVideos(ctx, channelID, opts)
		if err != nil {
			e.log.Error("channel listing failed", "channel", channelID, "error", err)
			continue
		}
		e.log.Debug("channel listed", "channel", channelID, "videos", len(videos))
		all = append(all, videos...)
	}
	return all
}

// sentToday reports whether a delivery was already recorded today,
// comparing calendar days in local time.
func (e *Emailer) sentToday(ctx context.Context) (bool, error) {
	last, err := e.store.LastDelivery(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load last delivery: %w", err)
	}

	now := e.now()
	y1, m1, d1 := last.SentAt.Local().Date()
	y2, m2, d2 := now.Local().Date()
	return y1 == y2 && m1 == m2 && d1 == d2, nil
}
