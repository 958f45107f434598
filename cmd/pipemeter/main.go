package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bamsammich/pipemeter/internal/config"
	"github.com/bamsammich/pipemeter/internal/event"
	"github.com/bamsammich/pipemeter/internal/meter"
	"github.com/bamsammich/pipemeter/internal/stats"
	"github.com/bamsammich/pipemeter/internal/transfer"
	"github.com/bamsammich/pipemeter/internal/ui"
	"github.com/bamsammich/pipemeter/internal/units"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

// options holds every command-line setting.
type options struct {
	lineMode    bool
	null        bool
	directIO    bool
	stopAtSize  bool
	quiet       bool
	debug       bool
	showVersion bool
	size        units.SizeFlag
	rateLimit   units.SizeFlag
	interval    time.Duration
	hash        string
	logFile     string
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

func run(args []string) int {
	cmd := newRootCmd(&options{})
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "pipemeter: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pipemeter [flags] [FILE]...",
		Short: "Monitor the progress of data through a pipe",
		Long: "pipemeter copies each FILE, or standard input, to standard output\n" +
			"while showing progress, throughput and ETA on standard error.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				fmt.Fprintf(cmd.OutOrStdout(), "pipemeter %s\n", version)
				return nil
			}

			cfg, err := config.Load()
			if err != nil {
				slog.Warn("failed to load config", "path", config.Path(), "error", err)
			}
			if err := applyConfigDefaults(cmd, cfg.Defaults, opts); err != nil {
				return fmt.Errorf("config %s: %w", config.Path(), err)
			}
			if err := transfer.ValidateHash(opts.hash); err != nil {
				return err
			}

			closeLog, err := setupLogging(opts)
			if err != nil {
				return err
			}
			defer closeLog()

			if len(args) == 0 {
				args = []string{meter.StdinPath}
			}
			return transferInputs(cmd.Context(), opts, args)
		},
	}

	f := rootCmd.Flags()
	f.BoolVarP(&opts.lineMode, "line-mode", "l", false, "count lines instead of bytes")
	f.BoolVarP(&opts.null, "null", "0", false, "lines are terminated by NUL, not newline")
	f.BoolVarP(&opts.directIO, "direct-io", "K", false, "use uncached reads where supported")
	f.VarP(&opts.size, "size", "s", "assume the total is SIZE (bytes, or lines with --line-mode)")
	f.BoolVarP(&opts.stopAtSize, "stop-at-size", "S", false, "stop after --size has been transferred")
	f.VarP(&opts.rateLimit, "rate-limit", "L", "limit transfer to RATE bytes per second (e.g. 100K, 1M)")
	f.DurationVarP(&opts.interval, "interval", "i", ui.DefaultInterval, "progress update interval")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "show no progress, only errors")
	f.StringVar(&opts.hash, "hash", "", "print a digest of the stream to stderr (blake3 or xxhash)")
	f.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	f.StringVar(&opts.logFile, "log", "", "write structured JSON log to FILE")
	f.BoolVar(&opts.showVersion, "version", false, "print version and exit")

	rootCmd.AddCommand(newDocsCmd())
	return rootCmd
}

// setupLogging installs the default slog logger: text on stderr, plus a
// JSON file when --log is set. The returned func closes the log file.
func setupLogging(opts *options) (func(), error) {
	level := slog.LevelWarn
	if opts.debug {
		level = slog.LevelDebug
	}
	textHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})

	var handler slog.Handler = textHandler
	closeFn := func() {}
	if opts.logFile != "" {
		lf, err := os.Create(opts.logFile)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		closeFn = func() { lf.Close() }
		jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{Level: slog.LevelDebug})
		handler = ui.NewMultiHandler(textHandler, jsonHandler)
	}
	slog.SetDefault(slog.New(handler))
	return closeFn, nil
}

func transferInputs(parent context.Context, opts *options, inputs []string) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := stats.NewCollector()
	presenter := ui.NewPresenter(ui.Config{
		Writer:   os.Stderr,
		Stats:    collector,
		Interval: opts.interval,
		Width:    ui.TermWidth(os.Stderr),
		IsTTY:    ui.IsTTY(os.Stderr),
		Quiet:    opts.quiet,
	})

	st := meter.NewState(inputs)
	st.LineMode = opts.lineMode
	st.NullDelimited = opts.null
	st.DirectIO = opts.directIO
	st.Reporter = presenter
	st.Logger = slog.Default()

	events := make(chan event.Event, 64)
	presenterEvents := (<-chan event.Event)(events)
	if opts.logFile != "" {
		presenterEvents = teeEvents(events)
	}

	var presenterErr error
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		presenterErr = presenter.Run(presenterEvents)
	}()

	res := transfer.Run(ctx, st, transfer.Options{
		Size:       opts.size.Bytes,
		StopAtSize: opts.stopAtSize,
		RateLimit:  opts.rateLimit.Bytes,
		Hash:       opts.hash,
		Stats:      collector,
		Events:     events,
	})
	stop()
	close(events)
	wg.Wait()
	if presenterErr != nil {
		slog.Warn("presenter failed", "error", presenterErr)
	}

	if summary := presenter.Summary(); summary != "" {
		fmt.Fprintln(os.Stderr, summary)
	}
	if res.Digest != "" {
		fmt.Fprintf(os.Stderr, "%s  %s\n", opts.hash, res.Digest)
	}
	slog.Debug("transfer finished",
		"written", res.Written,
		"lines", res.Lines,
		"stopped", res.Stopped,
		"status", st.Status.String(),
	)

	return exitFor(&st.Status, res.Err)
}

// exitFor maps the accumulated status and the transfer error to an exit error.
func exitFor(status *meter.Status, err error) error {
	code := status.ExitCode()
	if err != nil && code == 0 {
		if !errors.Is(err, context.Canceled) {
			slog.Error("transfer failed", "error", err)
		}
		code = 1
	}
	if code == 0 {
		return nil
	}
	return &exitError{code: code}
}

// teeEvents logs each event as a structured record before forwarding it.
func teeEvents(in <-chan event.Event) <-chan event.Event {
	out := make(chan event.Event, cap(in))
	go func() {
		defer close(out)
		for ev := range in {
			logEvent(slog.Default(), ev)
			out <- ev
		}
	}()
	return out
}

func logEvent(logger *slog.Logger, ev event.Event) {
	attrs := []slog.Attr{
		slog.String("type", ev.Type.String()),
		slog.String("input", ev.Input),
		slog.Int("index", ev.Index),
	}
	switch ev.Type {
	case event.SizeEstimated:
		attrs = append(attrs, slog.Int64("total", ev.Total), slog.Bool("line_mode", ev.LineMode))
	case event.InputFinished:
		attrs = append(attrs, slog.Int64("size", ev.Size))
	case event.InputOpened, event.InputFailed, event.SizeReached:
	}
	if ev.Error != nil {
		attrs = append(attrs, slog.String("error", ev.Error.Error()))
	}
	logger.LogAttrs(context.Background(), slog.LevelInfo, "pipemeter.event", attrs...)
}

// applyConfigDefaults applies config file defaults for flags not explicitly set on the CLI.
func applyConfigDefaults(cmd *cobra.Command, defaults config.DefaultsConfig, opts *options) error {
	changed := cmd.Flags().Changed

	if !changed("line-mode") && defaults.LineMode != nil {
		opts.lineMode = *defaults.LineMode
	}
	if !changed("null") && defaults.Null != nil {
		opts.null = *defaults.Null
	}
	if !changed("direct-io") && defaults.DirectIO != nil {
		opts.directIO = *defaults.DirectIO
	}
	if !changed("hash") && defaults.Hash != nil {
		opts.hash = *defaults.Hash
	}
	if !changed("rate-limit") && defaults.RateLimit != nil {
		if err := opts.rateLimit.Set(*defaults.RateLimit); err != nil {
			return fmt.Errorf("rate_limit: %w", err)
		}
	}
	if !changed("interval") && defaults.Interval != nil {
		d, err := time.ParseDuration(*defaults.Interval)
		if err != nil {
			return fmt.Errorf("interval: %w", err)
		}
		opts.interval = d
	}
	return nil
}
