package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.uber.org/zap"

	"campusevents/internal/config"
	"campusevents/internal/domain"
	"campusevents/internal/engage"
	"campusevents/internal/fetcher"
	"campusevents/internal/links"
	"campusevents/internal/logging"
	"campusevents/internal/logic"
	"campusevents/internal/search"
)

// Headless companion: one fetch cycle, filtered, printed to stdout.
func main() {
	var (
		configPath string
		query      string
		asJSON     bool
		platform   string
		debug      bool
	)
	flag.StringVar(&configPath, "config", "", "Path to config file (default: user config dir)")
	flag.StringVar(&query, "query", "", "Only show events matching this text")
	flag.BoolVar(&asJSON, "json", false, "Print events as JSON")
	flag.StringVar(&platform, "links", "", "Print campus app links resolved for a platform (ios or android) and exit")
	flag.BoolVar(&debug, "debug", false, "Log at debug level to stderr")
	flag.Parse()

	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.NewConfigService(configPath).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if debug {
		cfg.Log.Level = "debug"
		cfg.Log.File = "stderr"
		cfg.Log.Encoding = "console"
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if platform != "" {
		if err := printLinks(os.Stdout, cfg, platform, links.NewOpener(logger)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := engage.NewClient(nil, cfg.API.BaseURL, cfg.API.ImageBaseURL, cfg.API.Timeout(), logger)
	f := fetcher.New(client, cfg.API.Timeout(), logger)
	f.PageSize = cfg.API.PageSize
	store := logic.NewFeedStore(f, nil, logger)

	view, err := run(ctx, store, query, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, logic.FailureMessage)
		fmt.Fprintf(os.Stderr, "(%v)\n", err)
		os.Exit(1)
	}

	if asJSON {
		err = printJSON(os.Stdout, view.Events)
	} else {
		err = printTable(os.Stdout, view, client, cfg.UI.Location())
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
}

// run performs one reset fetch cycle and filters the result synchronously
func run(ctx context.Context, feed *logic.FeedStore, query string, logger *zap.Logger) (search.View, error) {
	if err := feed.Refresh(ctx, true); err != nil {
		return search.View{}, err
	}
	index := search.NewIndex(0, nil, logger)
	defer index.Close()
	index.SetEvents(feed.Snapshot().Events)
	index.SetQuery(query)
	return index.View(), nil
}

func printJSON(w io.Writer, events []domain.Event) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(events)
}

func printTable(w io.Writer, view search.View, client *engage.Client, loc *time.Location) error {
	if view.Empty() {
		msg := "No upcoming events found"
		if view.Filtered() {
			msg = fmt.Sprintf("No events match %q", view.Query)
		}
		_, err := fmt.Fprintln(w, msg)
		return err
	}

	rows := make([][]string, 0, len(view.Events))
	for _, e := range view.Events {
		rows = append(rows, []string{
			e.FormatWhen(loc),
			e.DisplayName(),
			e.LocationLabel(),
			e.OrganizationName(),
			client.EventURL(e.ID),
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("241"))).
		Headers("WHEN", "EVENT", "WHERE", "HOST", "LINK").
		Rows(rows...)

	_, err := fmt.Fprintf(w, "%s\n%d / %d Events\n", t.Render(), len(view.Events), view.Total)
	return err
}

// printLinks resolves every configured campus app link for one platform
func printLinks(w io.Writer, cfg *config.Config, platformName string, opener *links.Opener) error {
	p, err := links.ParsePlatform(platformName)
	if err != nil {
		return err
	}
	for _, name := range links.Names(cfg.Links) {
		res := links.Resolve(cfg.Links[name], p, opener.CanOpen)
		kind := "web"
		switch {
		case res.Store:
			kind = "store"
		case res.Fallback:
			kind = "fallback"
		}
		if _, err := fmt.Fprintf(w, "%-18s %-8s %s\n", name, kind, res.URL); err != nil {
			return err
		}
	}
	return nil
}
