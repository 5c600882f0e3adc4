// Command sermonmailctl provides one-off operation of the sermon emailer:
// send a sermon immediately, list candidate videos, show delivery history.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"sermonmail/config"
	"sermonmail/emailer"
	"sermonmail/internal/logging"
	"sermonmail/mail"
	"sermonmail/storage"
	"sermonmail/youtube"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "send":
		cmdSend(args)
	case "list":
		cmdList(args)
	case "history":
		cmdHistory(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `sermonmailctl - one-off sermon emailer operations

Usage:
  sermonmailctl send                  Run one delivery now
  sermonmailctl list [flags]          List candidate videos per channel
  sermonmailctl history [flags]       Show recent deliveries
  sermonmailctl help                  Show this help message

Configuration comes from the environment (and an optional .env file),
the same as the sermonmail daemon.

For help on a specific command: sermonmailctl <command> -h
`)
}

func cmdSend(args []string) {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sermonmailctl send\n\nRuns one fetch-pick-send cycle immediately.\n")
	}
	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}
	log, closeLog, err := logging.Setup(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		fatal(err)
	}
	defer closeLog()
	for _, w := range cfg.Warnings {
		log.Warn(w)
	}

	ctx := context.Background()

	apiLister, err := youtube.NewAPILister(ctx, cfg.YouTubeAPIKey)
	if err != nil {
		fatal(err)
	}
	apiLister.RetryConfig = cfg.Retry
	rssLister := youtube.NewRSSLister()
	rssLister.RetryConfig = cfg.Retry
	apiLister.SetFallback(rssLister)

	sender, err := mail.NewSendGridSender(cfg.SendGridAPIKey, cfg.SenderEmail, cfg.RecipientEmail)
	if err != nil {
		fatal(err)
	}

	store, err := storage.NewJSONStore(cfg.HistoryPath)
	if err != nil {
		fatal(err)
	}
	defer store.Close()

	e := emailer.New(emailer.Options{
		ChannelIDs:          cfg.ChannelIDs,
		MaxVideosPerChannel: cfg.MaxVideosPerChannel,
		HistoryLimit:        cfg.HistoryLimit,
		Recipient:           cfg.RecipientEmail,
	}, apiLister, sender, store, log)

	switch err := e.Run(ctx); {
	case err == nil:
		fmt.Println("Sermon sent.")
	case errors.Is(err, emailer.ErrAlreadySentToday):
		fmt.Println("A sermon was already sent today; nothing to do.")
	default:
		fatal(err)
	}
}

func cmdList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	useRSS := fs.Bool("rss", false, "Use the Atom feed instead of the Data API")
	maxVideos := fs.Int("max", 0, "Maximum videos per channel (0 = config default)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sermonmailctl list [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}

	ctx := context.Background()

	var lister youtube.VideoLister
	if *useRSS {
		rss := youtube.NewRSSLister()
		rss.RetryConfig = cfg.Retry
		lister = rss
	} else {
		api, err := youtube.NewAPILister(ctx, cfg.YouTubeAPIKey)
		if err != nil {
			fatal(err)
		}
		api.RetryConfig = cfg.Retry
		lister = api
	}

	max := cfg.MaxVideosPerChannel
	if *maxVideos > 0 {
		max = *maxVideos
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VIDEO ID\tPUBLISHED\tCHANNEL\tTITLE")
	for _, channelID := range cfg.ChannelIDs {
		videos, err := lister.ListVideos(ctx, channelID, &youtube.ListOptions{MaxResults: max})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", channelID, err)
			continue
		}
		for _, v := range videos {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				v.ID, v.Published.Format("2006-01-02"), v.ChannelName, v.Title)
		}
	}
	w.Flush()
}

func cmdHistory(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.Int("limit", 10, "Number of deliveries to show (0 = all)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sermonmailctl history [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}

	store, err := storage.NewJSONStore(cfg.HistoryPath)
	if err != nil {
		fatal(err)
	}
	defer store.Close()

	deliveries, err := store.RecentDeliveries(context.Background(), *limit)
	if err != nil {
		fatal(err)
	}
	if len(deliveries) == 0 {
		fmt.Println("No deliveries recorded yet.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SENT AT\tVIDEO ID\tCHANNEL\tTITLE")
	for _, d := range deliveries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			d.SentAt.Local().Format(time.RFC3339), d.VideoID, d.ChannelName, d.Title)
	}
	w.Flush()
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
