package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ytget/ydownloader/internal/compress"
	"github.com/ytget/ydownloader/internal/config"
	"github.com/ytget/ydownloader/internal/download"
	"github.com/ytget/ydownloader/internal/errs"
	"github.com/ytget/ydownloader/internal/fetch"
	"github.com/ytget/ydownloader/internal/model"
	"github.com/ytget/ydownloader/internal/platform"
	"github.com/ytget/ydownloader/internal/ui"
)

// AppName is used in usage and version output
const AppName = "ydownloader"

// Exit codes
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// EngineFactory builds the engine for a run
type EngineFactory func(name string, cfg fetch.Config) (fetch.Engine, error)

// App wires configuration, the engine and the console together for one run
type App struct {
	Version   string
	Streams   platform.Streams
	NewEngine EngineFactory
	Getenv    func(string) string
}

// Run parses args and executes one download. It returns the process exit code.
func Run(ctx context.Context, args []string, streams platform.Streams, version string) int {
	app := &App{Version: version, Streams: streams, NewEngine: fetch.New}
	return app.Run(ctx, args)
}

// Run parses args and executes one download
func (a *App) Run(ctx context.Context, args []string) int {
	opts, fs, err := parseFlags(args, a.Streams.Err)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitOK
		}
		return ExitUsage
	}

	if opts.ShowVersion {
		fmt.Fprintf(a.Streams.Out, "%s %s\n", AppName, a.Version)
		return ExitOK
	}

	if strings.TrimSpace(opts.URL) == "" {
		fmt.Fprintln(a.Streams.Err, "flag --url is required")
		fs.Usage()
		return ExitUsage
	}

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(a.Streams.Err, "Error: %v\n", err)
		return ExitUsage
	}
	opts.apply(settings)
	if err := settings.Validate(); err != nil {
		fmt.Fprintf(a.Streams.Err, "Error: %v\n", err)
		return ExitUsage
	}

	logger := newLogger(a.Streams, settings)

	loc := ui.NewLocalization()
	if a.Getenv != nil {
		loc.SetEnvLookup(a.Getenv)
	}
	loc.SetLanguage(settings.Language)

	progress := ui.NewProgressRenderer(a.Streams.Out, loc, a.Streams.Interactive)
	reporter := ui.NewReporter(a.Streams.Out, loc, progress, settings.AudioCodec)

	req := buildRequest(opts.URL, settings)

	fetcher, err := a.buildEngine(settings, logger, progress)
	if err != nil {
		logger.Debug("engine setup failed", "engine", settings.Engine, "error", err)
		reporter.Failed(req, err)
		return exitCode(err, settings.StrictExit)
	}

	svc := download.NewService(fetcher, download.Options{
		RetryDelay:       settings.RetryDelay,
		SocketTimeout:    settings.SocketTimeout,
		FilenameTemplate: settings.FilenameTemplate,
		MergeFormat:      settings.MergeFormat,
		AudioCodec:       settings.AudioCodec,
	})
	svc.SetReporter(reporter)
	svc.SetProgressHandler(progress)
	svc.SetLogger(logger.With("engine", fetcher.Name()))

	_, err = svc.Run(ctx, req)
	return exitCode(err, settings.StrictExit)
}

func (a *App) buildEngine(settings *config.Settings, logger *slog.Logger, progress model.ProgressHandler) (fetch.Engine, error) {
	if !compress.IsSupportedCodec(settings.AudioCodec) {
		return nil, &errs.InvalidInputError{
			Field:  "audio codec",
			Value:  settings.AudioCodec,
			Reason: "must be one of " + strings.Join(compress.SupportedCodecs(), ", "),
			Err:    errs.ErrUnsupportedSelection,
		}
	}

	transcoder := compress.NewService()
	transcoder.SetLogger(logger)
	transcoder.SetProgressHandler(progress)

	newEngine := a.NewEngine
	if newEngine == nil {
		newEngine = fetch.New
	}
	return newEngine(settings.Engine, fetch.Config{
		AutoInstall: settings.AutoInstall,
		Transcoder:  transcoder,
		Logger:      logger,
	})
}

// buildRequest turns merged settings into the immutable request. An invalid
// quality is passed through so the service reports it like any other input.
func buildRequest(url string, settings *config.Settings) model.DownloadRequest {
	quality, err := model.ParseQuality(settings.Quality)
	if err != nil {
		quality = model.Quality(settings.Quality)
	}
	return model.DownloadRequest{
		URL:        strings.TrimSpace(url),
		OutputDir:  settings.SavePath,
		Quality:    quality,
		AudioOnly:  settings.AudioOnly,
		MaxRetries: settings.Retries,
	}
}

func newLogger(streams platform.Streams, settings *config.Settings) *slog.Logger {
	return slog.New(slog.NewTextHandler(streams.Err, &slog.HandlerOptions{Level: settings.SlogLevel()}))
}

// exitCode maps a run outcome to a status. Without strict mode every handled
// outcome exits 0; failures are only visible in the output.
func exitCode(err error, strict bool) int {
	if err == nil || !strict {
		return ExitOK
	}
	if errs.IsInvalidInput(err) {
		return ExitUsage
	}
	return ExitFailure
}
