package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"

	"github.com/fatih/color"
	"github.com/jessevdk/go-flags"
	"github.com/larkwiot/bookexplorer/internal/ads"
	"github.com/larkwiot/bookexplorer/internal/config"
	"github.com/larkwiot/bookexplorer/internal/export"
	"github.com/larkwiot/bookexplorer/internal/logger"
	"github.com/larkwiot/bookexplorer/internal/metrics"
	"github.com/larkwiot/bookexplorer/internal/notify"
	"github.com/larkwiot/bookexplorer/internal/providers"
	"github.com/larkwiot/bookexplorer/internal/render"
	"github.com/larkwiot/bookexplorer/internal/session"
	"github.com/larkwiot/bookexplorer/internal/theme"
	"github.com/larkwiot/bookexplorer/internal/tui"
	"github.com/larkwiot/bookexplorer/internal/util"
)

type options struct {
	ConfigPath    string `short:"c" long:"config" description:"filepath to configuration file" default:"~/.config/bookexplorer/config.toml"`
	Query         string `short:"q" long:"query" description:"search once for this query and print the results"`
	JSON          bool   `long:"json" description:"print results of --query as JSON"`
	Theme         string `long:"theme" description:"color theme" choice:"light" choice:"dark"`
	Batch         string `long:"batch" description:"file with one query per line to look up"`
	OutputPath    string `short:"o" long:"output" description:"filepath to write --batch JSON output to" default:"./books.json"`
	Threads       int    `short:"t" long:"threads" description:"number of threads for --batch, set to 0 to automatically determine best count" default:"0"`
	Metrics       string `long:"metrics" description:"address to serve prometheus metrics on, e.g. :9090"`
	NoInteractive bool   `long:"no-interactive" description:"never start the interactive explorer"`
	NoColor       bool   `long:"no-color" description:"disable colored output"`
	Version       bool   `long:"version" description:"print version"`
}

func main() {
	log.SetFlags(0)

	var opts options
	_, err := flags.Parse(&opts)
	if err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			log.Fatal("error: unable to get build info")
		}
		log.Println(info)
		os.Exit(0)
	}

	util.InitColor(opts.NoColor)

	conf, err := config.NewConfig(opts.ConfigPath)
	if err != nil {
		log.Fatal(err)
	}
	if opts.Metrics != "" {
		conf.Metrics.Listen = opts.Metrics
	}
	if opts.Theme != "" {
		conf.Display.Theme = opts.Theme
	}

	interactive := opts.Query == "" && opts.Batch == "" && !opts.NoInteractive && util.IsTTY()
	if opts.Query == "" && opts.Batch == "" && !interactive {
		log.Fatal("error: nothing to do, pass --query or --batch or run in a terminal")
	}

	logCloser, err := logger.Setup(conf.Log.Level, conf.Log.File, interactive)
	if err != nil {
		log.Fatal(err)
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if conf.Metrics.Listen != "" {
		metrics.Serve(ctx, conf.Metrics.Listen)
	}

	provider := providers.NewLimited(providers.NewGoogle(&conf.Google), conf.Google.MillisecondsPerRequest)

	switch {
	case opts.Batch != "":
		err = runBatch(ctx, provider, opts)
	case opts.Query != "":
		err = runQuery(ctx, provider, conf, opts)
	default:
		err = runExplorer(ctx, provider, conf)
	}
	if err != nil {
		log.Printf("%s %s\n", color.RedString("error:"), err)
		logCloser.Close()
		os.Exit(1)
	}
}

func runBatch(ctx context.Context, provider providers.Provider, opts options) error {
	output, err := filepath.Abs(util.ExpandUser(opts.OutputPath))
	if err != nil {
		return fmt.Errorf("could not get absolute output path: %w", err)
	}
	if exists, _ := util.PathExists(output); exists {
		return fmt.Errorf("output filepath %s already exists, refusing to overwrite", output)
	}

	in, err := os.Open(util.ExpandUser(opts.Batch))
	if err != nil {
		return fmt.Errorf("opening batch file: %w", err)
	}
	defer in.Close()

	queries, err := export.ReadQueries(in)
	if err != nil {
		return err
	}

	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("unable to open output path %s: %w", output, err)
	}
	defer out.Close()

	ex := export.NewExporter(provider, export.Options{Threads: opts.Threads, Progress: os.Stderr})
	report, err := ex.Run(ctx, queries, out)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "%s %d queries written to %s (%d found, %d empty, %d failed)\n",
		color.GreenString("ok"), report.Queries, output, report.Found, report.Empty, report.Failed)
	return nil
}

func newNotifier(ctx context.Context, conf *config.Config, sink notify.Sink) session.Notifier {
	if !conf.Notify.Enable {
		return nil
	}
	dispatcher := notify.NewDispatcher(sink, notify.Allow(conf.Notify.Allow))
	if err := dispatcher.RequestPermission(ctx); err != nil {
		logger.For(ctx).Infof("notifications off: %v", err)
	}
	return dispatcher
}

func runQuery(ctx context.Context, provider providers.Provider, conf *config.Config, opts options) error {
	var dispatcher *notify.Dispatcher
	var notifier session.Notifier
	if !opts.JSON {
		notifier = newNotifier(ctx, conf, notify.NewWriterSink(os.Stderr))
		dispatcher, _ = notifier.(*notify.Dispatcher)
	}

	s := session.New(provider, notifier)
	s.SetQuery(opts.Query)
	s.Search(ctx, opts.Query)
	if dispatcher != nil {
		dispatcher.Wait()
	}

	state := s.Snapshot()
	if state.LastFailure != nil {
		fmt.Fprintf(os.Stderr, "%s search failed: %v\n", color.YellowString("warn"), state.LastFailure)
	}

	if opts.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(state.Results)
	}

	screen := render.Render(state, nil, conf.Display.DescriptionClip)
	if !util.IsTTY() || color.NoColor {
		fmt.Print(render.Plain(screen))
		return nil
	}

	t, err := theme.ByName(conf.Display.Theme)
	if err != nil {
		return err
	}
	fmt.Print(render.Draw(screen, t.Styles(), 80, -1))
	return nil
}

func runExplorer(ctx context.Context, provider providers.Provider, conf *config.Config) error {
	t, err := theme.ByName(conf.Display.Theme)
	if err != nil {
		return err
	}

	sink := notify.NewChanSink(8)
	notifier := newNotifier(ctx, conf, sink)

	var adService *ads.Service
	if conf.Ads.Enable {
		adService = ads.NewService(ads.Static(conf.Ads.Banners, conf.Ads.Interstitials))
		adService.Initialize(ctx)
	}

	return tui.Run(ctx, tui.Options{
		Session:           session.New(provider, notifier),
		Theme:             t,
		DescriptionClip:   conf.Display.DescriptionClip,
		Ads:               adService,
		InterstitialEvery: conf.Ads.InterstitialEvery,
		Toasts:            sink.C,
	})
}
