// sermonmail sends a randomly selected sermon video from configured
// YouTube channels to a fixed recipient by email, once per interval.
//
// Configuration comes from the environment (a .env file is honored):
// YOUTUBE_API_KEY, YOUTUBE_CHANNEL_IDS, SENDGRID_API_KEY, SENDER_EMAIL
// and RECIPIENT_EMAIL are required; see the config package for the
// optional knobs.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"sermonmail/config"
	"sermonmail/emailer"
	"sermonmail/internal/logging"
	"sermonmail/mail"
	"sermonmail/storage"
	"sermonmail/youtube"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "sermonmail: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, closeLog, err := logging.Setup(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	for _, w := range cfg.Warnings {
		log.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, store, err := buildEmailer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	log.Info("sermonmail starting",
		"channels", len(cfg.ChannelIDs),
		"interval", cfg.CheckInterval,
		"recipient", cfg.RecipientEmail)

	return e.RunEvery(ctx, cfg.CheckInterval)
}

// buildEmailer wires the lister, sender and history store from config.
func buildEmailer(ctx context.Context, cfg *config.Config, log *slog.Logger) (*emailer.Emailer, *storage.JSONStore, error) {
	apiLister, err := youtube.NewAPILister(ctx, cfg.YouTubeAPIKey)
	if err != nil {
		return nil, nil, err
	}
	apiLister.RetryConfig = cfg.Retry

	rssLister := youtube.NewRSSLister()
	rssLister.RetryConfig = cfg.Retry
	apiLister.SetFallback(rssLister)

	sender, err := mail.NewSendGridSender(cfg.SendGridAPIKey, cfg.SenderEmail, cfg.RecipientEmail)
	if err != nil {
		return nil, nil, err
	}

	store, err := storage.NewJSONStore(cfg.HistoryPath)
	if err != nil {
		return nil, nil, err
	}

	e := emailer.New(emailer.Options{
		ChannelIDs:          cfg.ChannelIDs,
		MaxVideosPerChannel: cfg.MaxVideosPerChannel,
		HistoryLimit:        cfg.HistoryLimit,
		Recipient:           cfg.RecipientEmail,
	}, apiLister, sender, store, log)

	return e, store, nil
}
